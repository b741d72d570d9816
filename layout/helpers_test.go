package layout

import (
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ByLCY/folio/markdown"
	"github.com/ByLCY/folio/mathtex"
)

// stubTypesetter 按字符数估算宽度：每个字符 0.5 * size。常规字体只支持可打印 ASCII，
// 符号字体额外支持 U+2000 以上的标点和箭头。
type stubTypesetter struct{}

func (stubTypesetter) TextWidth(font FontRef, text string, size float64) (float64, error) {
	return float64(utf8.RuneCountInString(text)) * size * 0.5, nil
}

func (stubTypesetter) Supports(font FontRef, r rune) bool {
	if r >= 0x20 && r < 0x7f {
		return true
	}
	return font == FontSymbol && r >= 0x2000 && r < 0x2400
}

// stubMath 返回 5:1 的空白图片；源码为 "fail" 时报错。
type stubMath struct{}

func (stubMath) Render(source string, display bool) (*mathtex.Image, error) {
	if source == "fail" {
		return nil, errors.New("render failed")
	}
	return &mathtex.Image{PixelWidth: 300, PixelHeight: 60}, nil
}

func newTestBuilder() *builder {
	spec := DefaultPageSpec()
	return &builder{
		ctx:   newFlowContext(spec),
		m:     measurer{ts: stubTypesetter{}},
		spec:  spec,
		cites: NewCitationTracker(),
		math:  stubMath{},
	}
}

func buildMarkdown(src string) (*Result, error) {
	doc := markdown.Parse(markdown.Preprocess(src))
	return Build(doc, BuildOptions{Typesetter: stubTypesetter{}, Math: stubMath{}, Header: Header{Title: "Title"}})
}

func textCell(s string) *markdown.Cell {
	return &markdown.Cell{Inlines: []markdown.Inline{&markdown.Text{Value: s}}}
}

// pageLines 把同一基线上的文本按 X 顺序拼接，按 Y 排序返回。
func pageLines(p Page) []string {
	byY := map[float64][]TextBox{}
	var ys []float64
	for _, tb := range p.Texts {
		if _, ok := byY[tb.Y]; !ok {
			ys = append(ys, tb.Y)
		}
		byY[tb.Y] = append(byY[tb.Y], tb)
	}
	sort.Float64s(ys)
	out := make([]string, 0, len(ys))
	for _, y := range ys {
		boxes := byY[y]
		sort.SliceStable(boxes, func(i, j int) bool { return boxes[i].X < boxes[j].X })
		var b strings.Builder
		for _, tb := range boxes {
			b.WriteString(tb.Content)
		}
		out = append(out, b.String())
	}
	return out
}

func containsLine(lines []string, want string) bool {
	for _, l := range lines {
		if strings.Contains(l, want) {
			return true
		}
	}
	return false
}
