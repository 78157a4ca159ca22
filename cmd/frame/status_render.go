package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const ansiReset = "\x1b[0m"

var statusStyles = map[statusKind]struct{ tag, color string }{
	statusInfo:  {"INFO", "\x1b[34m"},
	statusOK:    {"OK", "\x1b[32m"},
	statusWarn:  {"WARN", "\x1b[33m"},
	statusError: {"ERROR", "\x1b[31m"},
}

const labelWidth = 20

// statusWriter prints "== Section ==" headers and aligned label lines,
// colouring them only when out is a terminal.
type statusWriter struct {
	out      io.Writer
	colorize bool
}

func newStatusWriter(out io.Writer) *statusWriter {
	return &statusWriter{out: out, colorize: isTerminal(out)}
}

func (w *statusWriter) section(title string) {
	header := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	w.println(header, statusInfo)
	w.println(strings.Repeat("-", len(header)), statusInfo)
}

func (w *statusWriter) line(label string, kind statusKind, detail string) {
	w.println(formatStatusLine(label, kind, detail), kind)
}

func (w *statusWriter) info(label, detail string) {
	w.line(label, statusInfo, detail)
}

func (w *statusWriter) println(text string, kind statusKind) {
	if w.colorize {
		text = statusStyles[kind].color + text + ansiReset
	}
	fmt.Fprintln(w.out, text)
}

func formatStatusLine(label string, kind statusKind, detail string) string {
	tag := "[" + statusStyles[kind].tag + "]"
	if detail != "" {
		tag += " " + detail
	}
	return fmt.Sprintf("  %-*s %s", labelWidth, label+":", tag)
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
