// Package main is a small inspection tool for the buffer engine: it
// loads a file into a session and prints lines, document statistics, or
// the fold structure.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dshills/bufcore/internal/engine/session"
)

var (
	version = "dev"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		lineFlag    = flag.Int("line", -1, "Print a single line by number (0-based)")
		statsFlag   = flag.Bool("stats", false, "Print document statistics")
		foldFlag    = flag.Bool("fold", false, "Fold all top-level ranges and print visible lines")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Printf("bufcat %s\n", version)
		return 0
	}

	if flag.NArg() != 1 {
		usage()
		return 2
	}
	path := flag.Arg(0)

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer f.Close()

	sess, err := session.NewFromReader(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading %s: %v\n", path, err)
		return 1
	}
	defer sess.Close()

	switch {
	case *lineFlag >= 0:
		return printLine(sess, uint32(*lineFlag))
	case *statsFlag:
		return printStats(sess, path)
	case *foldFlag:
		return printFolded(sess)
	default:
		return printAll(sess)
	}
}

func printLine(sess *session.Session, line uint32) int {
	text, err := sess.LineText(line)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Println(text)
	return 0
}

func printStats(sess *session.Session, path string) int {
	fmt.Printf("file:     %s\n", path)
	fmt.Printf("bytes:    %d\n", sess.Len())
	fmt.Printf("lines:    %d\n", sess.LineCount())
	fmt.Printf("version:  %d\n", sess.DocumentVersion())
	fmt.Printf("session:  %s\n", sess.ID())

	foldable := 0
	for line := uint32(0); line < sess.LineCount(); line++ {
		if _, ok := sess.FoldRangeAt(line); ok {
			foldable++
		}
	}
	fmt.Printf("foldable: %d\n", foldable)
	return 0
}

func printFolded(sess *session.Session) int {
	sess.FoldAll()

	hidden := sess.HiddenLineCount()
	for line := uint32(0); line < sess.LineCount(); line++ {
		if sess.IsLineHidden(line) {
			continue
		}
		text, err := sess.LineText(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if _, ok := sess.FoldRangeAt(line); ok {
			fmt.Printf("%s ...\n", text)
		} else {
			fmt.Println(text)
		}
	}
	fmt.Fprintf(os.Stderr, "%d of %d lines hidden\n", hidden, sess.LineCount())
	return 0
}

func printAll(sess *session.Session) int {
	for line := uint32(0); line < sess.LineCount(); line++ {
		text, err := sess.LineText(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Println(text)
	}
	return 0
}

func usage() {
	fmt.Fprintf(os.Stderr, `bufcat - inspect a file through the buffer engine

Usage:
  bufcat [flags] <file>

Flags:
  -line N    print a single line by number (0-based)
  -stats     print document statistics
  -fold      fold all top-level ranges and print visible lines
  -version   print version and exit
`)
}
