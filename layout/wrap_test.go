package layout

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func lineText(l wrappedLine) string {
	var b strings.Builder
	for _, it := range l.items {
		b.WriteString(it.text)
	}
	return b.String()
}

// 每一行的宽度都不超过可用宽度，除非该行只有一个字符。
func TestWrapWidthWithinMax(t *testing.T) {
	m := measurer{ts: stubTypesetter{}}
	text := strings.Repeat("lorem ipsum dolor sit amet ", 20) + strings.Repeat("x", 200)
	for _, max := range []float64{3, 40, 100, 495} {
		lines := m.wrapSegments([]Segment{TextSeg{Text: text, Size: 12}}, wrapOptions{maxWidth: max})
		if len(lines) == 0 {
			t.Fatalf("max=%g 未生成任何行", max)
		}
		for i, l := range lines {
			if l.width > max && utf8.RuneCountInString(lineText(l)) > 1 {
				t.Fatalf("max=%g 第 %d 行超宽: %g %q", max, i, l.width, lineText(l))
			}
		}
	}
}

func TestWrapDropsLeadingSpaces(t *testing.T) {
	m := measurer{ts: stubTypesetter{}}
	lines := m.wrapSegments([]Segment{TextSeg{Text: "aaaa bbbb", Size: 10}}, wrapOptions{maxWidth: 25})
	if len(lines) != 2 {
		t.Fatalf("期望 2 行，实际 %d", len(lines))
	}
	if got := lineText(lines[1]); got != "bbbb" {
		t.Fatalf("第二行不应以空格开头: %q", got)
	}
}

func TestWrapBreakAndHanging(t *testing.T) {
	m := measurer{ts: stubTypesetter{}}
	segs := []Segment{
		TextSeg{Text: "[1] ", Size: 10},
		TextSeg{Text: "first", Size: 10, Color: colorLink, Href: "https://a.example"},
		BreakSeg{},
		TextSeg{Text: "second", Size: 10},
	}
	lines := m.wrapSegments(segs, wrapOptions{maxWidth: 200, hanging: 20, hasHanging: true})
	if len(lines) != 2 {
		t.Fatalf("期望 2 行，实际 %d", len(lines))
	}
	if lines[0].indent != 0 || lines[1].indent != 20 {
		t.Fatalf("悬挂缩进错误: %g %g", lines[0].indent, lines[1].indent)
	}
	if len(lines[0].items) != 2 || lines[0].items[1].href == "" {
		t.Fatalf("链接样式不同的文本不应合并: %+v", lines[0].items)
	}
}

func TestWrapAtomicBadgeAndMath(t *testing.T) {
	m := measurer{ts: stubTypesetter{}}
	img, _ := stubMath{}.Render("x", false)
	segs := []Segment{
		TextSeg{Text: "abcd", Size: 10},
		BadgeSeg{Label: "12", Size: 7},
		MathSeg{Source: "x", Image: img, W: 500, H: 20, Base: 10},
	}
	lines := m.wrapSegments(segs, wrapOptions{maxWidth: 100})
	if len(lines) != 2 {
		t.Fatalf("期望 2 行，实际 %d", len(lines))
	}
	if lines[0].items[1].kind != itemBadge || lines[0].items[1].width != 8 {
		t.Fatalf("角标宽度应为 2*3.5+1: %+v", lines[0].items[1])
	}
	math := lines[1].items[0]
	if math.kind != itemMath || math.width > 100 {
		t.Fatalf("超宽公式应缩小到行宽内: %+v", math)
	}
}

func TestWrapCenteredFallback(t *testing.T) {
	m := measurer{ts: stubTypesetter{}}
	segs := []Segment{
		TextSeg{Text: "before", Size: 10},
		TextSeg{Text: "x^2", Font: FontItalic, Size: 12, Center: true},
		TextSeg{Text: "after", Size: 10},
	}
	lines := m.wrapSegments(segs, wrapOptions{maxWidth: 200})
	if len(lines) != 3 {
		t.Fatalf("居中文本应独占一行，实际 %d 行", len(lines))
	}
	if lines[0].center || !lines[1].center || lines[2].center {
		t.Fatalf("居中标记错误: %v %v %v", lines[0].center, lines[1].center, lines[2].center)
	}
}
