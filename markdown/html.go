package markdown

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// htmlInlines reduces raw HTML to text and hard breaks. Tags themselves are
// dropped; <br> and the end of block-level elements become Break tokens.
// Whitespace between tags survives as a single space; only a block trims its
// line edges and trailing breaks.
func htmlInlines(raw string, block bool) []Inline {
	var out []Inline
	skip := 0
	z := html.NewTokenizer(strings.NewReader(raw))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				// 非法 HTML 原样保留为文本
				return []Inline{&Text{Value: raw}}
			}
			if block {
				return tidyLines(out)
			}
			return out
		case html.TextToken:
			if skip > 0 {
				continue
			}
			if s := collapseSpace(string(z.Text())); s != "" {
				out = append(out, &Text{Value: s})
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Br:
				out = append(out, &Break{})
			case atom.Script, atom.Style:
				if tt == html.StartTagToken {
					skip++
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Script, atom.Style:
				if skip > 0 {
					skip--
				}
			case atom.P, atom.Div, atom.Li, atom.Tr, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
				out = append(out, &Break{})
			}
		}
	}
}

// Inlines returns the block as text runs separated by hard breaks.
func (h *HTML) Inlines() []Inline {
	return htmlInlines(h.Raw, true)
}

// collapseSpace 把连续空白压成一个空格，但保留首尾各一个，避免标签两侧的词粘连。
func collapseSpace(s string) string {
	if s == "" {
		return ""
	}
	body := strings.Join(strings.Fields(s), " ")
	if body == "" {
		return " "
	}
	if isSpace(s[0]) {
		body = " " + body
	}
	if isSpace(s[len(s)-1]) {
		body += " "
	}
	return body
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// tidyLines 去掉每行首尾的空格和空文本，并丢弃开头与结尾的换行。
func tidyLines(in []Inline) []Inline {
	out := make([]Inline, 0, len(in))
	trimTail := func() {
		for len(out) > 0 {
			t, ok := out[len(out)-1].(*Text)
			if !ok {
				return
			}
			t.Value = strings.TrimRight(t.Value, " ")
			if t.Value != "" {
				return
			}
			out = out[:len(out)-1]
		}
	}
	for _, n := range in {
		switch v := n.(type) {
		case *Break:
			trimTail()
			if len(out) == 0 {
				continue
			}
			out = append(out, v)
		case *Text:
			if len(out) == 0 {
				v.Value = strings.TrimLeft(v.Value, " ")
			} else if _, ok := out[len(out)-1].(*Break); ok {
				v.Value = strings.TrimLeft(v.Value, " ")
			}
			if v.Value != "" {
				out = append(out, v)
			}
		default:
			out = append(out, n)
		}
	}
	trimTail()
	return trimBreaks(out)
}

func trimBreaks(in []Inline) []Inline {
	for len(in) > 0 {
		if _, ok := in[len(in)-1].(*Break); !ok {
			break
		}
		in = in[:len(in)-1]
	}
	return in
}

// Inlines returns the fragment as text runs and hard breaks.
func (r *RawHTML) Inlines() []Inline {
	return htmlInlines(r.Value, false)
}
