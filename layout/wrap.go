package layout

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ByLCY/folio/mathtex"
)

type itemKind int

const (
	itemText itemKind = iota
	itemBadge
	itemMath
)

// lineItem 是已经确定宽度的行内元素。
type lineItem struct {
	kind  itemKind
	text  string
	font  FontRef
	size  float64
	color Color
	href  string
	image *mathtex.Image
	h     float64
	width float64 // 占用的水平宽度
}

// wrappedLine 是一行排好的内容，或一个独立公式。
type wrappedLine struct {
	items   []lineItem
	width   float64
	indent  float64
	center  bool
	display *DisplayMathSeg
}

// wrapOptions 控制折行：首行缩进 indent，之后各行使用 hanging（hasHanging 为真时）。
type wrapOptions struct {
	maxWidth   float64
	indent     float64
	hanging    float64
	hasHanging bool
}

// lineWrapper 实现贪心折行：放得下就追加，放不下先换行再重试，
// 单个词比整行还宽时按字符切分。
type lineWrapper struct {
	m       measurer
	opts    wrapOptions
	lines   []wrappedLine
	cur     wrappedLine
	avail   float64
	started bool
	// centering 为真时新行都标记为居中
	centering bool
}

func (m measurer) wrapSegments(segs []Segment, opts wrapOptions) []wrappedLine {
	w := &lineWrapper{m: m, opts: opts}
	w.reset()
	for _, seg := range segs {
		switch s := seg.(type) {
		case BreakSeg:
			w.flush()
		case DisplayMathSeg:
			w.flush()
			d := s
			w.emit(wrappedLine{display: &d, indent: w.cur.indent})
		case MathSeg:
			w.addMath(s)
		case BadgeSeg:
			width := m.width(FontBold, s.Label, s.Size) + 1
			w.addAtomic(lineItem{kind: itemBadge, text: s.Label, font: FontBold, size: s.Size, color: colorBadge, href: s.Href, width: width})
		case TextSeg:
			if s.Center {
				w.flush()
				w.centering = true
				w.cur.center = true
				w.addText(s)
				w.flush()
				w.centering = false
				w.cur.center = false
				continue
			}
			w.addText(s)
		}
	}
	w.flush()
	return w.lines
}

func (w *lineWrapper) indent() float64 {
	if w.started && w.opts.hasHanging {
		return w.opts.hanging
	}
	return w.opts.indent
}

func (w *lineWrapper) reset() {
	ind := w.indent()
	w.cur = wrappedLine{indent: ind, center: w.centering}
	w.avail = w.opts.maxWidth - ind
}

func (w *lineWrapper) emit(l wrappedLine) {
	w.lines = append(w.lines, l)
	w.started = true
	w.reset()
}

// flush 结束当前行；空行不输出。
func (w *lineWrapper) flush() {
	if len(w.cur.items) == 0 {
		return
	}
	w.emit(w.cur)
}

func (w *lineWrapper) push(it lineItem) {
	if n := len(w.cur.items); n > 0 && it.kind == itemText {
		last := &w.cur.items[n-1]
		if last.kind == itemText && last.font == it.font && last.size == it.size && last.color == it.color && last.href == it.href {
			last.text += it.text
			last.width += it.width
			w.cur.width += it.width
			w.avail -= it.width
			return
		}
	}
	w.cur.items = append(w.cur.items, it)
	w.cur.width += it.width
	w.avail -= it.width
}

func (w *lineWrapper) addAtomic(it lineItem) {
	if it.width <= w.avail {
		w.push(it)
		return
	}
	w.flush()
	w.push(it)
}

func (w *lineWrapper) addMath(s MathSeg) {
	it := lineItem{kind: itemMath, text: s.Source, image: s.Image, h: s.H, width: s.W}
	if it.width <= w.avail {
		w.push(it)
		return
	}
	w.flush()
	if it.width > w.avail {
		// 比整行还宽：缩小高度直到放得下
		size := mathtex.InlineSize(s.Image.Aspect(), s.Base, w.avail)
		it.width, it.h = size.W, size.H
	}
	w.push(it)
}

func (w *lineWrapper) addText(s TextSeg) {
	for _, token := range splitTokens(s.Text) {
		space := isSpaceToken(token)
		if space && len(w.cur.items) == 0 {
			continue
		}
		width := w.m.width(s.Font, token, s.Size)
		if width <= w.avail {
			w.push(textItem(s, token, width))
			continue
		}
		w.flush()
		if space {
			continue
		}
		if width <= w.avail {
			w.push(textItem(s, token, width))
			continue
		}
		w.splitLong(s, token)
	}
}

// splitLong 把超宽的词按字符切开，每行尽量多放；单个字符比整行还宽时也独占一行。
func (w *lineWrapper) splitLong(s TextSeg, token string) {
	for token != "" {
		cut, width := 0, 0.0
		for i := range token {
			if i == 0 {
				continue
			}
			cw := w.m.width(s.Font, token[:i], s.Size)
			if cw > w.avail {
				break
			}
			cut, width = i, cw
		}
		if full := w.m.width(s.Font, token, s.Size); full <= w.avail {
			cut, width = len(token), full
		}
		if cut == 0 {
			if len(w.cur.items) > 0 {
				w.flush()
				continue
			}
			_, n := utf8.DecodeRuneInString(token)
			cut, width = n, w.m.width(s.Font, token[:n], s.Size)
		}
		w.push(textItem(s, token[:cut], width))
		token = token[cut:]
		if token != "" {
			w.flush()
		}
	}
}

func textItem(s TextSeg, text string, width float64) lineItem {
	return lineItem{kind: itemText, text: text, font: s.Font, size: s.Size, color: s.Color, href: s.Href, width: width}
}

// splitTokens 把文本切成交替的空白/非空白片段。
func splitTokens(s string) []string {
	var tokens []string
	start := 0
	lastSpace := false
	for i, r := range s {
		sp := unicode.IsSpace(r)
		if i > start && sp != lastSpace {
			tokens = append(tokens, s[start:i])
			start = i
		}
		lastSpace = sp
	}
	if start < len(s) {
		tokens = append(tokens, s[start:])
	}
	return tokens
}

func isSpaceToken(s string) bool {
	return strings.TrimSpace(s) == ""
}
