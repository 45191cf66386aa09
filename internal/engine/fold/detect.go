package fold

import "strings"

// maxScanLines caps every forward scan. A block whose end lies beyond the
// cap is treated as not foldable rather than scanned to the end of a huge
// document.
const maxScanLines = 10000

// Source provides line access for fold detection.
type Source interface {
	LineCount() uint32
	LineText(line uint32) (string, error)
}

// templateKeywords are the block-opening tag names matched by the
// template heuristic. The closing tag is "end" + keyword.
var templateKeywords = map[string]bool{
	"if":     true,
	"for":    true,
	"block":  true,
	"macro":  true,
	"filter": true,
	"with":   true,
	"while":  true,
}

// voidElements never take a closing tag and are skipped by the markup
// heuristic.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true,
	"embed": true, "hr": true, "img": true, "input": true,
	"link": true, "meta": true, "param": true, "source": true,
	"track": true, "wbr": true,
}

// detect runs the heuristics in priority order and returns the fold range
// opened at line, if any. Malformed or unmatched input is never an error,
// just "not foldable".
func detect(src Source, line uint32) (*FoldRange, bool) {
	if line >= src.LineCount() {
		return nil, false
	}
	text, err := src.LineText(line)
	if err != nil {
		return nil, false
	}

	if end, ok := matchTemplate(src, line, text); ok {
		return &FoldRange{StartLine: line, EndLine: end, Kind: KindTemplate}, true
	}
	if end, ok := matchMarkup(src, line, text); ok {
		return &FoldRange{StartLine: line, EndLine: end, Kind: KindMarkup}, true
	}
	if end, ok := matchBracket(src, line, text); ok {
		return &FoldRange{StartLine: line, EndLine: end, Kind: KindBracket}, true
	}
	if end, ok := matchIndent(src, line, text); ok {
		return &FoldRange{StartLine: line, EndLine: end, Kind: KindIndent}, true
	}
	return nil, false
}

func scanLimit(src Source, line uint32) uint32 {
	limit := src.LineCount() - 1
	if capped := line + maxScanLines; capped < limit {
		limit = capped
	}
	return limit
}

// templateTags extracts the tag name of each {% ... %} span in a line,
// in order of appearance.
func templateTags(s string) []string {
	var tags []string
	for {
		i := strings.Index(s, "{%")
		if i < 0 {
			break
		}
		rest := s[i+2:]
		j := strings.Index(rest, "%}")
		if j < 0 {
			break
		}
		if fields := strings.Fields(rest[:j]); len(fields) > 0 {
			tags = append(tags, fields[0])
		}
		s = rest[j+2:]
	}
	return tags
}

// matchTemplate matches {% keyword %} ... {% endkeyword %} blocks,
// tracking nesting depth of same-named tags. Returns the last hidden
// line; the end-tag line stays visible.
func matchTemplate(src Source, line uint32, text string) (uint32, bool) {
	tags := templateTags(text)
	start := -1
	var keyword string
	for i, tag := range tags {
		if templateKeywords[tag] {
			start = i
			keyword = tag
			break
		}
	}
	if start < 0 {
		return 0, false
	}

	endTag := "end" + keyword
	depth := 0
	for _, tag := range tags[start:] {
		switch tag {
		case keyword:
			depth++
		case endTag:
			depth--
			if depth == 0 {
				return 0, false // closes on the opening line
			}
		}
	}

	limit := scanLimit(src, line)
	for j := line + 1; j <= limit; j++ {
		lt, err := src.LineText(j)
		if err != nil {
			return 0, false
		}
		for _, tag := range templateTags(lt) {
			switch tag {
			case keyword:
				depth++
			case endTag:
				depth--
				if depth == 0 {
					if j-1 > line {
						return j - 1, true
					}
					return 0, false
				}
			}
		}
	}
	return 0, false
}

type markupTag struct {
	name        string
	closing     bool
	selfClosing bool
}

// markupTags extracts element tags from a line. A tag whose '>' is not on
// this line is treated as open and ends the parse.
func markupTags(s string) []markupTag {
	var tags []markupTag
	for {
		i := strings.IndexByte(s, '<')
		if i < 0 || i+1 >= len(s) {
			break
		}
		s = s[i+1:]

		var tag markupTag
		if s[0] == '/' {
			tag.closing = true
			s = s[1:]
		}

		n := 0
		for n < len(s) && isTagNameByte(s[n]) {
			n++
		}
		if n == 0 {
			continue // <!-- comments, <? directives, stray '<'
		}
		tag.name = strings.ToLower(s[:n])
		s = s[n:]

		gt := strings.IndexByte(s, '>')
		if gt < 0 {
			tags = append(tags, tag)
			break
		}
		tag.selfClosing = gt > 0 && s[gt-1] == '/'
		s = s[gt+1:]
		tags = append(tags, tag)
	}
	return tags
}

func isTagNameByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' ||
		b >= '0' && b <= '9' || b == '-'
}

// matchMarkup matches <tag> ... </tag> element blocks, excluding
// self-closing and void elements. The closing-tag line stays visible.
func matchMarkup(src Source, line uint32, text string) (uint32, bool) {
	tags := markupTags(text)
	start := -1
	var name string
	for i, tag := range tags {
		if !tag.closing && !tag.selfClosing && !voidElements[tag.name] {
			start = i
			name = tag.name
			break
		}
	}
	if start < 0 {
		return 0, false
	}

	depth := 0
	advance := func(tag markupTag) (closed bool) {
		if tag.name != name || tag.selfClosing {
			return false
		}
		if tag.closing {
			depth--
			return depth == 0
		}
		depth++
		return false
	}

	for _, tag := range tags[start:] {
		if advance(tag) {
			return 0, false // closes on the opening line
		}
	}

	limit := scanLimit(src, line)
	for j := line + 1; j <= limit; j++ {
		lt, err := src.LineText(j)
		if err != nil {
			return 0, false
		}
		for _, tag := range markupTags(lt) {
			if advance(tag) {
				if j-1 > line {
					return j - 1, true
				}
				return 0, false
			}
		}
	}
	return 0, false
}

// stripTemplateSpans blanks {% ... %} and {{ ... }} spans so bracket
// matching ignores delimiters inside them. An unterminated span blanks
// the rest of the line.
func stripTemplateSpans(s string) string {
	if !strings.ContainsRune(s, '{') {
		return s
	}
	b := []byte(s)
	for i := 0; i+1 < len(b); i++ {
		if b[i] != '{' || (b[i+1] != '%' && b[i+1] != '{') {
			continue
		}
		closer := "%}"
		if b[i+1] == '{' {
			closer = "}}"
		}
		end := strings.Index(string(b[i+2:]), closer)
		if end < 0 {
			for j := i; j < len(b); j++ {
				b[j] = ' '
			}
			break
		}
		for j := i; j < i+2+end+2; j++ {
			b[j] = ' '
		}
		i += 2 + end + 1
	}
	return string(b)
}

var bracketPairs = map[byte]byte{'{': '}', '(': ')', '[': ']'}

// matchBracket matches a bracket opened on this line and closed on a
// later line. The outermost unmatched opener wins; the closing-bracket
// line stays visible.
func matchBracket(src Source, line uint32, text string) (uint32, bool) {
	stripped := stripTemplateSpans(text)

	var stack []byte
	openAt := -1
	for i := 0; i < len(stripped); i++ {
		c := stripped[i]
		if _, ok := bracketPairs[c]; ok {
			if len(stack) == 0 {
				openAt = i
			}
			stack = append(stack, c)
			continue
		}
		if len(stack) > 0 && c == bracketPairs[stack[len(stack)-1]] {
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				openAt = -1
			}
		}
	}
	if len(stack) == 0 {
		return 0, false
	}

	open := stack[0]
	close := bracketPairs[open]
	depth := 0
	for i := openAt; i < len(stripped); i++ {
		switch stripped[i] {
		case open:
			depth++
		case close:
			depth--
		}
	}

	limit := scanLimit(src, line)
	for j := line + 1; j <= limit; j++ {
		lt, err := src.LineText(j)
		if err != nil {
			return 0, false
		}
		s := stripTemplateSpans(lt)
		for i := 0; i < len(s); i++ {
			switch s[i] {
			case open:
				depth++
			case close:
				depth--
				if depth == 0 {
					if j-1 > line {
						return j - 1, true
					}
					return 0, false
				}
			}
		}
	}
	return 0, false
}

// matchIndent matches an indentation block: the line ends with ':' and
// the region extends while following non-blank lines are indented
// strictly deeper. All deeper lines are hidden.
func matchIndent(src Source, line uint32, text string) (uint32, bool) {
	if !strings.HasSuffix(strings.TrimRight(text, " \t"), ":") {
		return 0, false
	}
	base, blank := indentWidth(text)
	if blank {
		return 0, false
	}

	last := line
	limit := scanLimit(src, line)
	for j := line + 1; j <= limit; j++ {
		lt, err := src.LineText(j)
		if err != nil {
			break
		}
		w, isBlank := indentWidth(lt)
		if isBlank {
			continue
		}
		if w <= base {
			break
		}
		last = j
	}
	if last > line {
		return last, true
	}
	return 0, false
}

// indentWidth returns the leading-whitespace width of a line, with tabs
// counted as 4 columns. The second return is true for blank lines.
func indentWidth(s string) (int, bool) {
	w := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ':
			w++
		case '\t':
			w += 4
		default:
			return w, false
		}
	}
	return w, true
}
