package markdown

import "strings"

// Document is the block-level token tree of one markdown source.
type Document struct {
	Blocks []Block
}

// Block is one of Heading, Paragraph, List, Table, Code, Blockquote, Rule or HTML.
type Block interface {
	block()
}

// Inline is one of Text, Escape, Space, Break, Strong, Em, Codespan, Link,
// Image or RawHTML.
type Inline interface {
	inline()
}

type Heading struct {
	Level   int
	Inlines []Inline
}

type Paragraph struct {
	Inlines []Inline
}

type List struct {
	Ordered bool
	Start   int
	Items   []*ListItem
}

type ListItem struct {
	Blocks []Block
}

// Table keeps the header row and body rows as parsed; rows may be ragged.
type Table struct {
	Header []*Cell
	Rows   [][]*Cell
}

type Cell struct {
	Inlines []Inline
}

type Code struct {
	Lang string
	Text string
}

type Blockquote struct {
	Blocks []Block
}

type Rule struct{}

// HTML is a raw HTML block.
type HTML struct {
	Raw string
}

func (*Heading) block()    {}
func (*Paragraph) block()  {}
func (*List) block()       {}
func (*Table) block()      {}
func (*Code) block()       {}
func (*Blockquote) block() {}
func (*Rule) block()       {}
func (*HTML) block()       {}

// ColumnCount is max(len(Header), len(Rows[0])).
func (t *Table) ColumnCount() int {
	n := len(t.Header)
	if len(t.Rows) > 0 && len(t.Rows[0]) > n {
		n = len(t.Rows[0])
	}
	return n
}

type Text struct {
	Value string
}

// Escape is a backslash escape of one ASCII punctuation character.
type Escape struct {
	Char string
}

// Raw returns the escape as written in the source, e.g. `\[`.
func (e *Escape) Raw() string { return `\` + e.Char }

// Space is a soft line break.
type Space struct{}

// Break is a hard line break.
type Break struct{}

type Strong struct {
	Children []Inline
}

type Em struct {
	Children []Inline
}

type Codespan struct {
	Value string
}

type Link struct {
	Href     string
	Title    string
	Children []Inline
}

type Image struct {
	Src string
	Alt string
}

type RawHTML struct {
	Value string
}

func (*Text) inline()     {}
func (*Escape) inline()   {}
func (*Space) inline()    {}
func (*Break) inline()    {}
func (*Strong) inline()   {}
func (*Em) inline()       {}
func (*Codespan) inline() {}
func (*Link) inline()     {}
func (*Image) inline()    {}
func (*RawHTML) inline()  {}

// PlainText concatenates the visible text of inlines. Escapes contribute their
// character, soft and hard breaks a space.
func PlainText(inlines []Inline) string {
	var b strings.Builder
	writePlain(&b, inlines)
	return b.String()
}

func writePlain(b *strings.Builder, inlines []Inline) {
	for _, in := range inlines {
		switch t := in.(type) {
		case *Text:
			b.WriteString(t.Value)
		case *Escape:
			b.WriteString(t.Char)
		case *Space, *Break:
			b.WriteByte(' ')
		case *Strong:
			writePlain(b, t.Children)
		case *Em:
			writePlain(b, t.Children)
		case *Codespan:
			b.WriteString(t.Value)
		case *Link:
			writePlain(b, t.Children)
		case *Image:
			b.WriteString(t.Alt)
		case *RawHTML:
			writePlain(b, htmlInlines(t.Value, false))
		}
	}
}
