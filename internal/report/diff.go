// Package report renders the difference between expected and actual output.
package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultContext is the number of unchanged lines shown around each change
const DefaultContext = 3

const noNewline = "\\ No newline at end of file\n"

// Reporter renders unified diffs
type Reporter struct {
	fromName string
	toName   string
	context  int
}

// NewReporter creates a Reporter labelling the sides "expected" and "actual"
func NewReporter() *Reporter {
	return &Reporter{fromName: "expected", toName: "actual", context: DefaultContext}
}

// WithLabels returns a copy of the reporter using different side labels
func (r *Reporter) WithLabels(from, to string) *Reporter {
	c := *r
	c.fromName, c.toName = from, to
	return &c
}

// Diff renders the difference with the default reporter.
func Diff(expected, actual []byte) string {
	return NewReporter().Diff(expected, actual)
}

// Diff returns a unified diff of expected and actual, or a size summary when
// either side is not text. It returns "" for equal inputs.
func (r *Reporter) Diff(expected, actual []byte) string {
	if bytes.Equal(expected, actual) {
		return ""
	}
	if isBinary(expected) || isBinary(actual) {
		return binarySummary(expected, actual)
	}

	a := splitLines(expected)
	b := splitLines(actual)

	var buf strings.Builder
	fmt.Fprintf(&buf, "--- %s\n+++ %s\n", r.fromName, r.toName)

	matcher := difflib.NewMatcher(a, b)
	for _, group := range matcher.GetGroupedOpCodes(r.context) {
		first, last := group[0], group[len(group)-1]
		fmt.Fprintf(&buf, "@@ -%s +%s @@\n", unifiedRange(first.I1, last.I2), unifiedRange(first.J1, last.J2))

		for _, op := range group {
			if op.Tag == 'e' {
				writeLines(&buf, ' ', a[op.I1:op.I2])
				continue
			}
			if op.Tag == 'r' || op.Tag == 'd' {
				writeLines(&buf, '-', a[op.I1:op.I2])
			}
			if op.Tag == 'r' || op.Tag == 'i' {
				writeLines(&buf, '+', b[op.J1:op.J2])
			}
		}
	}

	return buf.String()
}

// splitLines keeps the line terminators so that a missing final newline is a difference
func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	lines := strings.SplitAfter(string(data), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func writeLines(buf *strings.Builder, marker byte, lines []string) {
	for _, line := range lines {
		buf.WriteByte(marker)
		buf.WriteString(line)
		if !strings.HasSuffix(line, "\n") {
			buf.WriteString("\n")
			buf.WriteString(noNewline)
		}
	}
}

// unifiedRange formats a hunk range the way diff -u does
func unifiedRange(start, stop int) string {
	beginning := start + 1
	length := stop - start
	if length == 1 {
		return strconv.Itoa(beginning)
	}
	if length == 0 {
		beginning--
	}
	return fmt.Sprintf("%d,%d", beginning, length)
}

func isBinary(data []byte) bool {
	return !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0
}

func binarySummary(expected, actual []byte) string {
	return fmt.Sprintf("Binary contents differ: sizes %d vs %d bytes, first difference at offset %d\n",
		len(expected), len(actual), firstDifference(expected, actual))
}

func firstDifference(a, b []byte) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
