package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var engine = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Parse tokenizes markdown into the closed block/inline token tree.
func Parse(src string) *Document {
	source := []byte(src)
	root := engine.Parser().Parse(text.NewReader(source))
	return &Document{Blocks: convertBlocks(root, source)}
}

func convertBlocks(parent gast.Node, source []byte) []Block {
	var blocks []Block
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if b := convertBlock(n, source); b != nil {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

func convertBlock(n gast.Node, source []byte) Block {
	switch node := n.(type) {
	case *gast.Heading:
		return &Heading{Level: node.Level, Inlines: convertInlines(node, source)}
	case *gast.Paragraph, *gast.TextBlock:
		return &Paragraph{Inlines: convertInlines(node, source)}
	case *gast.List:
		list := &List{Ordered: node.IsOrdered(), Start: node.Start}
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			list.Items = append(list.Items, &ListItem{Blocks: convertBlocks(item, source)})
		}
		return list
	case *gast.FencedCodeBlock:
		return &Code{Lang: string(node.Language(source)), Text: linesText(node.Lines(), source)}
	case *gast.CodeBlock:
		return &Code{Text: linesText(node.Lines(), source)}
	case *gast.Blockquote:
		return &Blockquote{Blocks: convertBlocks(node, source)}
	case *gast.ThematicBreak:
		return &Rule{}
	case *gast.HTMLBlock:
		raw := linesText(node.Lines(), source)
		if node.HasClosure() {
			raw += "\n" + string(node.ClosureLine.Value(source))
		}
		return &HTML{Raw: raw}
	case *extast.Table:
		return convertTable(node, source)
	default:
		if n.HasChildren() {
			return &Paragraph{Inlines: convertInlines(n, source)}
		}
		return nil
	}
}

func convertTable(node *extast.Table, source []byte) *Table {
	table := &Table{}
	for row := node.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []*Cell
		for c := row.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, &Cell{Inlines: convertInlines(c, source)})
		}
		if _, ok := row.(*extast.TableHeader); ok {
			table.Header = cells
			continue
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}

func convertInlines(parent gast.Node, source []byte) []Inline {
	var out []Inline
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		out = append(out, convertInline(n, source)...)
	}
	return out
}

func convertInline(n gast.Node, source []byte) []Inline {
	switch node := n.(type) {
	case *gast.Text:
		value := string(node.Segment.Value(source))
		if node.HardLineBreak() {
			value = strings.TrimSuffix(strings.TrimRight(value, " "), `\`)
		}
		var out []Inline
		if node.IsRaw() {
			out = append(out, &Text{Value: value})
		} else {
			out = splitEscapes(value)
		}
		switch {
		case node.HardLineBreak():
			out = append(out, &Break{})
		case node.SoftLineBreak():
			out = append(out, &Space{})
		}
		return out
	case *gast.String:
		return []Inline{&Text{Value: string(node.Value)}}
	case *gast.CodeSpan:
		var b bytes.Buffer
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *gast.Text:
				b.Write(t.Segment.Value(source))
			case *gast.String:
				b.Write(t.Value)
			}
		}
		return []Inline{&Codespan{Value: b.String()}}
	case *gast.Emphasis:
		children := convertInlines(node, source)
		if node.Level >= 2 {
			return []Inline{&Strong{Children: children}}
		}
		return []Inline{&Em{Children: children}}
	case *gast.Link:
		return []Inline{&Link{
			Href:     string(node.Destination),
			Title:    string(node.Title),
			Children: convertInlines(node, source),
		}}
	case *gast.AutoLink:
		return []Inline{&Link{
			Href:     string(node.URL(source)),
			Children: []Inline{&Text{Value: string(node.Label(source))}},
		}}
	case *gast.Image:
		return []Inline{&Image{
			Src: string(node.Destination),
			Alt: PlainText(convertInlines(node, source)),
		}}
	case *gast.RawHTML:
		var b bytes.Buffer
		for i := 0; i < node.Segments.Len(); i++ {
			seg := node.Segments.At(i)
			b.Write(seg.Value(source))
		}
		return []Inline{&RawHTML{Value: b.String()}}
	case *extast.TaskCheckBox:
		if node.IsChecked {
			return []Inline{&Text{Value: "[x] "}}
		}
		return []Inline{&Text{Value: "[ ] "}}
	default:
		// Strikethrough 等扩展节点退化为其子节点
		return convertInlines(n, source)
	}
}

// splitEscapes keeps goldmark's raw text but lifts backslash escapes of ASCII
// punctuation into Escape tokens, so `\[` and `\]` become sibling tokens.
func splitEscapes(s string) []Inline {
	var out []Inline
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			out = append(out, &Text{Value: b.String()})
			b.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) && isASCIIPunct(s[i+1]) {
			flush()
			out = append(out, &Escape{Char: string(s[i+1])})
			i++
			continue
		}
		b.WriteByte(c)
	}
	flush()
	return out
}

func isASCIIPunct(c byte) bool {
	return strings.IndexByte("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", c) >= 0
}

func linesText(lines *text.Segments, source []byte) string {
	var b bytes.Buffer
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return strings.TrimRight(b.String(), "\n")
}
