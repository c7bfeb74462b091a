package drizzle

import (
	"bytes"
	"strings"
)

const indentSize = 2

// printer accumulates generated source with indentation.
type printer struct {
	output      *bytes.Buffer
	depth       int
	atLineStart bool
}

func newPrinter() *printer {
	return &printer{
		output:      &bytes.Buffer{},
		atLineStart: true,
	}
}

// String returns the generated source with exactly one trailing newline.
func (p *printer) String() string {
	return strings.TrimRight(p.output.String(), "\n") + "\n"
}

func (p *printer) write(s string) {
	if p.atLineStart && len(s) > 0 && s[0] != '\n' {
		p.writeIndent()
	}
	p.output.WriteString(s)
	p.atLineStart = false
}

func (p *printer) writeln() {
	p.output.WriteByte('\n')
	p.atLineStart = true
}

// line writes s followed by a newline.
func (p *printer) line(s string) {
	p.write(s)
	p.writeln()
}

// blank ends the current paragraph with an empty line.
func (p *printer) blank() {
	p.writeln()
}

func (p *printer) writeIndent() {
	for i := 0; i < p.depth*indentSize; i++ {
		p.output.WriteByte(' ')
	}
	p.atLineStart = false
}

func (p *printer) indent() {
	p.depth++
}

func (p *printer) dedent() {
	if p.depth > 0 {
		p.depth--
	}
}

// section writes a boxed heading comment.
func (p *printer) section(title string) {
	inner := "    " + title + "    "
	width := len([]rune(inner))
	p.line("// ┌" + strings.Repeat("─", width) + "┐")
	p.line("// │" + inner + "│")
	p.line("// └" + strings.Repeat("─", width) + "┘")
	p.blank()
}
