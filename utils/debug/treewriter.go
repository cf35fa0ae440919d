// Package debug has helpers producing human readable dumps of document
// structures.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// TreeWriter accumulates indented lines, two spaces per depth level.
type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// TextBlock writes quoted character data so whitespace and control
// characters stay visible.
func (tw TreeWriter) TextBlock(depth int, label, value string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// Attr writes name and value pair as is.
func (tw TreeWriter) Attr(depth int, name, value string) {
	tw.indent(depth)
	tw.w.WriteString("@")
	tw.w.WriteString(name)
	tw.w.WriteString(" = ")
	tw.w.WriteString(value)
	tw.w.WriteByte('\n')
}

// Rule writes horizontal separator.
func (tw TreeWriter) Rule(width int) {
	tw.w.WriteString(strings.Repeat("=", width))
	tw.w.WriteByte('\n')
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
