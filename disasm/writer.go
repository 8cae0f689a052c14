package disasm

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const tab = `  `

// Writer is an append-only text sink. Writes appear in the output in call order.
type Writer interface {
	Write(s string)
}

// StringWriter collects output in memory.
type StringWriter struct {
	b strings.Builder
}

func (w *StringWriter) Write(s string) {
	w.b.WriteString(s)
}

func (w *StringWriter) String() string {
	return w.b.String()
}

// Reset discards the collected output.
func (w *StringWriter) Reset() {
	w.b.Reset()
}

// TextWriter is a buffered Writer over an io.Writer. The first write error is retained and
// all later writes are dropped; Flush reports it.
type TextWriter struct {
	bw     *bufio.Writer
	err    error
	indent int
}

func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{bw: bufio.NewWriter(w)}
}

func (w *TextWriter) Write(s string) {
	if w.err != nil {
		return
	}
	_, w.err = w.bw.WriteString(s)
}

func (w *TextWriter) Print(format string, args ...interface{}) {
	w.Write(fmt.Sprintf(format, args...))
}

// Indent increases the indentation applied by Newline.
func (w *TextWriter) Indent() {
	w.indent++
}

// Dedent decreases the indentation applied by Newline.
func (w *TextWriter) Dedent() {
	if w.indent > 0 {
		w.indent--
	}
}

// Newline ends the current line and indents the next one.
func (w *TextWriter) Newline() {
	w.Write("\n" + strings.Repeat(tab, w.indent))
}

// Err returns the first error encountered while writing, if any.
func (w *TextWriter) Err() error {
	return w.err
}

func (w *TextWriter) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.bw.Flush()
	return w.err
}
