package layout

import (
	"math"
	"strconv"
	"strings"

	"github.com/ByLCY/folio/internal/logging"
	"github.com/ByLCY/folio/markdown"
	"github.com/ByLCY/folio/mathtex"
)

// flattener 把行内 token 树展开为 Segment 序列。
type flattener struct {
	m         measurer
	math      MathRenderer
	cites     *CitationTracker
	lineWidth float64
	// cell 为真时按表格单元格规则生成角标
	cell bool
}

// flatten 展开 inlines，font/size 为当前继承的字体与字号。
func (f *flattener) flatten(inlines []markdown.Inline, font FontRef, size float64) []Segment {
	var out []Segment
	for i := 0; i < len(inlines); i++ {
		switch t := inlines[i].(type) {
		case *markdown.Text:
			out = append(out, f.text(t.Value, font, size)...)
		case *markdown.Escape:
			switch t.Char {
			case "[", "(":
				closer := "]"
				if t.Char == "(" {
					closer = ")"
				}
				end, source, ok := scanMath(inlines, i+1, closer)
				if !ok {
					out = append(out, f.plain(t.Char, font, size)...)
					continue
				}
				if t.Char == "[" {
					out = append(out, BreakSeg{}, f.displayMath(source, size), BreakSeg{})
				} else {
					out = append(out, f.inlineMath(source, size))
				}
				i = end
			default:
				out = append(out, f.plain(t.Char, font, size)...)
			}
		case *markdown.Space:
			out = append(out, f.plain(" ", font, size)...)
		case *markdown.Break:
			out = append(out, BreakSeg{})
		case *markdown.Strong:
			out = append(out, f.flatten(t.Children, FontBold, size)...)
		case *markdown.Em:
			out = append(out, f.flatten(t.Children, FontItalic, size)...)
		case *markdown.Codespan:
			out = append(out, f.plain(t.Value, FontMono, math.Max(8, size-1))...)
		case *markdown.Link:
			label := markdown.PlainText(t.Children)
			if label == "" && t.Href == "" {
				continue
			}
			n := f.cites.Resolve(t.Href, label)
			out = append(out, BadgeSeg{Label: strconv.Itoa(n), Size: f.badgeSize(size), Href: t.Href})
		case *markdown.Image:
			f.cites.Collect(t.Src, t.Alt)
			if t.Alt != "" {
				out = append(out, f.plain(t.Alt, font, size)...)
			}
		case *markdown.RawHTML:
			out = append(out, f.flatten(t.Inlines(), font, size)...)
		}
	}
	return out
}

func (f *flattener) badgeSize(size float64) float64 {
	if f.cell {
		return math.Max(6, math.Round(size*0.7))
	}
	return size * 0.7
}

// scanMath 在兄弟 token 中向后查找 `\]` 或 `\)`，返回闭合位置与中间内容。
func scanMath(inlines []markdown.Inline, from int, closer string) (int, string, bool) {
	var b strings.Builder
	for j := from; j < len(inlines); j++ {
		switch t := inlines[j].(type) {
		case *markdown.Escape:
			if t.Char == closer {
				return j, strings.TrimSpace(normalizeWhitespace(b.String())), true
			}
			b.WriteString(t.Raw())
		case *markdown.Text:
			b.WriteString(t.Value)
		case *markdown.Space, *markdown.Break:
			b.WriteByte(' ')
		case *markdown.Codespan:
			b.WriteString(t.Value)
		default:
			b.WriteString(markdown.PlainText([]markdown.Inline{t}))
		}
	}
	return 0, "", false
}

// text 先用数学切分器处理正文，再按字形覆盖拆分。
func (f *flattener) text(s string, font FontRef, size float64) []Segment {
	s = normalizeWhitespace(s)
	pieces := mathtex.SplitInline(s)
	if !mathtex.HasMath(pieces) {
		return f.plain(s, font, size)
	}
	var out []Segment
	for _, p := range pieces {
		if p.Kind == mathtex.PieceMath {
			out = append(out, f.inlineMath(p.Text, size))
			continue
		}
		out = append(out, f.plain(p.Text, font, size)...)
	}
	return out
}

// plain 输出不经过数学切分的文本。
func (f *flattener) plain(s string, font FontRef, size float64) []Segment {
	var out []Segment
	for _, r := range f.m.splitRuns(s, font) {
		out = append(out, TextSeg{Text: r.text, Font: r.font, Size: size, Color: colorText})
	}
	return out
}

func (f *flattener) render(source string, display bool) *mathtex.Image {
	if f.math == nil {
		return nil
	}
	img, err := f.math.Render(source, display)
	if err != nil {
		logging.Logger().Warn("公式渲染失败，改用文本", "source", source, "display", display, "error", err)
		return nil
	}
	if img == nil || img.PixelWidth <= 0 || img.PixelHeight <= 0 {
		return nil
	}
	return img
}

func (f *flattener) inlineMath(source string, size float64) Segment {
	img := f.render(source, false)
	if img == nil {
		return f.mathFallback(source, size, false)
	}
	s := mathtex.InlineSize(img.Aspect(), size, f.lineWidth)
	return MathSeg{Source: source, Image: img, W: s.W, H: s.H, Base: size}
}

func (f *flattener) displayMath(source string, size float64) Segment {
	img := f.render(source, true)
	if img == nil {
		return f.mathFallback(source, size+2, true)
	}
	return DisplayMathSeg{Source: source, Image: img, Base: size}
}

// mathFallback 用斜体 ASCII 文本替代渲染失败的公式。
func (f *flattener) mathFallback(source string, size float64, center bool) Segment {
	text := f.m.sanitize(mathtex.Simplify(source), FontItalic)
	return TextSeg{Text: text, Font: FontItalic, Size: size, Color: colorText, Center: center}
}
