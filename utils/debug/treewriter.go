// Package debug renders human readable dumps of program structures, used by
// debug reports and verbose command output.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

const indent = "  "

// TreeWriter accumulates indented lines.
type TreeWriter struct {
	b *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{b: &strings.Builder{}}
}

func (tw *TreeWriter) String() string {
	return tw.b.String()
}

// Bytes returns accumulated text, handy for report.StoreData.
func (tw *TreeWriter) Bytes() []byte {
	return []byte(tw.b.String())
}

// Line writes formatted line at depth.
func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.pad(depth)
	fmt.Fprintf(tw.b, format, args...)
	tw.b.WriteByte('\n')
}

// TextBlock writes label and quoted free text value (descriptions, editable
// page content), so embedded line breaks do not break the tree.
func (tw *TreeWriter) TextBlock(depth int, label, value string) {
	tw.pad(depth)
	tw.b.WriteString(label)
	tw.b.WriteString(": ")
	if len(value) > 0 {
		tw.b.WriteString(strconv.Quote(value))
	}
	tw.b.WriteByte('\n')
}

// Range writes label with page span, single page spans are written as one
// number.
func (tw *TreeWriter) Range(depth int, label string, start, end int) {
	if start == end {
		tw.Line(depth, "%s [%d]", label, start)
		return
	}
	tw.Line(depth, "%s [%d-%d]", label, start, end)
}

func (tw *TreeWriter) pad(depth int) {
	tw.b.WriteString(strings.Repeat(indent, max(depth, 0)))
}
