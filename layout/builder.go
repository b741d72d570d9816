package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ByLCY/folio/markdown"
	"github.com/ByLCY/folio/mathtex"
)

// 文档头、代码块与参考文献的排版常量（pt）。
const (
	defaultTitle   = "Folio"
	titleSize      = 16.0
	metaLineSize   = 10.0
	codePadX       = 10.0
	codePadY       = 8.0
	quoteIndent    = 12.0
	listBulletGap  = 10.0
	referenceTitle = "References"
	hangingIndent  = 20.0
)

var (
	codeBackground = rgb(0.965, 0.97, 0.985)
	codeBorder     = rgb(0.88, 0.9, 0.94)
	ruleColor      = gray(0.6)
)

// Build 将 markdown token 树排版为分页结果。
func Build(doc *markdown.Document, opts BuildOptions) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	spec := opts.Page
	if spec.Width <= 0 || spec.Height <= 0 || spec.FontSize <= 0 {
		spec = DefaultPageSpec()
	}
	if 2*spec.Margin >= spec.Width || 2*spec.Margin >= spec.Height {
		return nil, fmt.Errorf("页面边距过大: %gpt", spec.Margin)
	}

	b := &builder{
		ctx:   newFlowContext(spec),
		m:     measurer{ts: opts.Typesetter},
		spec:  spec,
		cites: NewCitationTracker(),
		math:  opts.Math,
	}
	b.header(opts.Header)
	for i, blk := range doc.Blocks {
		var next markdown.Block
		if i+1 < len(doc.Blocks) {
			next = doc.Blocks[i+1]
		}
		b.block(blk, next)
	}
	b.references()

	meta := opts.Meta
	if meta.Title == "" {
		meta.Title = b.title(opts.Header)
	}
	if meta.Creator == "" {
		meta.Creator = "folio"
	}
	return &Result{Pages: b.ctx.collector.pages(), Meta: meta}, nil
}

type builder struct {
	ctx   *flowContext
	m     measurer
	spec  PageSpec
	cites *CitationTracker
	math  MathRenderer
}

func (b *builder) flattener() *flattener {
	return &flattener{m: b.m, math: b.math, cites: b.cites, lineWidth: b.ctx.width}
}

func (b *builder) title(h Header) string {
	if t := strings.TrimSpace(h.Title); t != "" {
		return t
	}
	return defaultTitle
}

// header 绘制标题、说明行与分隔线。
func (b *builder) header(h Header) {
	segs := b.styled(b.title(h), FontBold, titleSize, colorText, "")
	b.drawLines(b.m.wrapSegments(segs, wrapOptions{maxWidth: b.ctx.width}), titleSize)
	b.ctx.advance(12 - b.spec.LineGap)

	if meta := strings.TrimSpace(h.MetaLine); meta != "" {
		segs = b.styled(meta, FontRegular, metaLineSize, colorMuted, "")
		b.drawLines(b.m.wrapSegments(segs, wrapOptions{maxWidth: b.ctx.width}), metaLineSize)
		b.ctx.advance(16 - b.spec.LineGap)
	}

	y := b.ctx.cursorY - 8
	b.ctx.acc().appendLine(Line{X1: b.ctx.baseX, Y1: y, X2: b.ctx.baseX + b.ctx.width, Y2: y, Color: colorSeparator, Width: 0.5})
	b.ctx.advance(16)
}

func (b *builder) block(blk markdown.Block, next markdown.Block) {
	base := b.spec.FontSize
	switch t := blk.(type) {
	case *markdown.Heading:
		b.heading(t, next)
	case *markdown.Paragraph:
		b.paragraph(b.flattener().flatten(t.Inlines, FontRegular, base), base)
	case *markdown.HTML:
		b.paragraph(b.flattener().flatten(t.Inlines(), FontRegular, base), base)
	case *markdown.List:
		b.list(t, 0)
		b.ctx.advance(SpaceAfterList)
	case *markdown.Blockquote:
		segs := b.inlineBlocks(t.Blocks, FontItalic, base)
		b.drawLines(b.m.wrapSegments(segs, wrapOptions{maxWidth: b.ctx.width, indent: quoteIndent}), base)
		b.ctx.advance(SpaceAfterBlockquote)
	case *markdown.Code:
		b.code(t)
	case *markdown.Table:
		b.ctx.advance(SpaceBeforeTable)
		b.table(t)
		b.ctx.advance(SpaceAfterTable)
	case *markdown.Rule:
		b.rule()
	}
}

// heading 先执行 keep-with-next：剩余空间放不下标题加最小跟随空间时先换页。
func (b *builder) heading(h *markdown.Heading, next markdown.Block) {
	size := HeadingSize(h.Level)
	minSpace := KeepWithNextGeneric
	if _, ok := next.(*markdown.Table); ok {
		minSpace = KeepWithNextTable
	}
	b.ctx.ensureSpace(SpaceBeforeHeading + size + minSpace)
	b.ctx.advance(SpaceBeforeHeading)

	segs := b.flattener().flatten(h.Inlines, FontBold, size)
	b.drawLines(b.m.wrapSegments(segs, wrapOptions{maxWidth: b.ctx.width}), size)
	if SpaceAfterHeading > b.spec.LineGap {
		b.ctx.advance(SpaceAfterHeading - b.spec.LineGap)
	}
}

func (b *builder) paragraph(segs []Segment, base float64) {
	b.drawLines(b.m.wrapSegments(segs, wrapOptions{maxWidth: b.ctx.width}), base)
	b.ctx.advance(SpaceAfterParagraph)
}

func (b *builder) list(l *markdown.List, baseIndent float64) {
	n := l.Start
	if n == 0 {
		n = 1
	}
	for _, item := range l.Items {
		label := "•"
		if l.Ordered {
			label = strconv.Itoa(n) + "."
			n++
		}
		b.listItem(item, label, baseIndent)
	}
}

// listItem 在 baseIndent 处画项目符号，正文缩进到符号宽度 + 10；嵌套列表递归处理。
func (b *builder) listItem(item *markdown.ListItem, label string, baseIndent float64) {
	base := b.spec.FontSize
	bulletW := b.drawRuns(b.ctx.baseX+baseIndent, b.ctx.cursorY, label, FontRegular, base, colorText)
	indent := baseIndent + bulletW + listBulletGap

	drawn := false
	var segs []Segment
	flush := func() {
		segs = trimBreaks(segs)
		if len(segs) == 0 {
			return
		}
		b.drawLines(b.m.wrapSegments(segs, wrapOptions{maxWidth: b.ctx.width, indent: indent}), base)
		segs = nil
		drawn = true
	}
	for _, blk := range item.Blocks {
		if nested, ok := blk.(*markdown.List); ok {
			flush()
			b.list(nested, indent)
			drawn = true
			continue
		}
		segs = append(segs, b.inlineBlock(blk, FontRegular, base)...)
		segs = append(segs, BreakSeg{})
	}
	flush()
	if !drawn {
		b.ctx.advance(base + b.spec.LineGap)
	}
}

// inlineBlocks 把若干块级 token 展开为一串行内片段，块之间以强制换行分隔。
func (b *builder) inlineBlocks(blocks []markdown.Block, font FontRef, size float64) []Segment {
	var out []Segment
	for _, blk := range blocks {
		out = append(out, b.inlineBlock(blk, font, size)...)
		out = append(out, BreakSeg{})
	}
	return trimBreaks(out)
}

func (b *builder) inlineBlock(blk markdown.Block, font FontRef, size float64) []Segment {
	f := b.flattener()
	switch t := blk.(type) {
	case *markdown.Paragraph:
		return f.flatten(t.Inlines, font, size)
	case *markdown.Heading:
		return f.flatten(t.Inlines, FontBold, size)
	case *markdown.HTML:
		return f.flatten(t.Inlines(), font, size)
	case *markdown.Blockquote:
		return b.inlineBlocks(t.Blocks, FontItalic, size)
	case *markdown.List:
		var out []Segment
		for _, item := range t.Items {
			out = append(out, b.inlineBlocks(item.Blocks, font, size)...)
			out = append(out, BreakSeg{})
		}
		return out
	case *markdown.Code:
		var out []Segment
		for _, line := range strings.Split(t.Text, "\n") {
			out = append(out, f.plain(line, FontMono, math.Max(8, size-1))...)
			out = append(out, BreakSeg{})
		}
		return out
	case *markdown.Table:
		var out []Segment
		for _, row := range append([][]*markdown.Cell{t.Header}, t.Rows...) {
			var cells []string
			for _, c := range row {
				cells = append(cells, markdown.PlainText(c.Inlines))
			}
			out = append(out, f.plain(strings.Join(cells, " | "), font, size)...)
			out = append(out, BreakSeg{})
		}
		return out
	}
	return nil
}

func trimBreaks(segs []Segment) []Segment {
	for len(segs) > 0 {
		if _, ok := segs[len(segs)-1].(BreakSeg); !ok {
			break
		}
		segs = segs[:len(segs)-1]
	}
	return segs
}

// code 绘制带底色的等宽代码块；比剩余空间高时拆到后续页面。
func (b *builder) code(c *markdown.Code) {
	size := math.Max(9, b.spec.FontSize-1)
	step := size + 4
	lines := b.codeLines(c.Text, b.ctx.width-2*codePadX, size)
	blockHeight := func(n int) float64 { return float64(n)*step + 2*codePadY }
	pageContent := b.ctx.collector.contentBottom() - b.ctx.collector.contentTop()

	if !b.ctx.fits(blockHeight(len(lines))) && (blockHeight(len(lines)) < pageContent || !b.ctx.fits(blockHeight(1))) {
		b.ctx.pageBreak()
	}
	for {
		n := len(lines)
		for n > 1 && !b.ctx.hasRoom(blockHeight(n)) {
			n--
		}
		b.codeChunk(lines[:n], size, step)
		lines = lines[n:]
		if len(lines) == 0 {
			break
		}
		b.ctx.pageBreak()
	}
	b.ctx.advance(SpaceAfterCode)
}

func (b *builder) codeChunk(lines []string, size, step float64) {
	top := b.ctx.cursorY
	height := float64(len(lines))*step + codePadY
	fill := codeBackground
	acc := b.ctx.acc()
	acc.appendRect(Rect{X: b.ctx.baseX, Y: top, Width: b.ctx.width, Height: height, StrokeColor: codeBorder, StrokeWidth: 0.5, FillColor: &fill})
	y := top + codePadY + size
	for _, line := range lines {
		if line != "" {
			acc.appendText(TextBox{Content: line, X: b.ctx.baseX + codePadX, Y: y, Width: b.m.width(FontMono, line, size), Font: FontMono, FontSize: size, Color: colorCode})
		}
		y += step
	}
	b.ctx.cursorY = top + height
}

// codeLines 按内容宽度逐字符折行，保留空行。
func (b *builder) codeLines(text string, width, size float64) []string {
	var out []string
	for _, raw := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		line := b.m.sanitize(strings.TrimRight(raw, "\r"), FontMono)
		if line == "" {
			out = append(out, "")
			continue
		}
		for line != "" {
			cut := len(line)
			for cut > 0 && b.m.width(FontMono, line[:cut], size) > width {
				_, n := utf8.DecodeLastRuneInString(line[:cut])
				cut -= n
			}
			if cut == 0 {
				_, cut = utf8.DecodeRuneInString(line)
			}
			out = append(out, line[:cut])
			line = line[cut:]
		}
	}
	return out
}

func (b *builder) rule() {
	fill := ruleColor
	b.ctx.acc().appendRect(Rect{X: b.ctx.baseX, Y: b.ctx.cursorY + 3, Width: b.ctx.width, Height: 1, FillColor: &fill})
	b.ctx.advance(4 + b.spec.FontSize + b.spec.LineGap)
}

// references 输出按编号排序的参考文献，之后是只收集未编号的链接（[-]）。
func (b *builder) references() {
	refs := b.cites.Referenced()
	extra := b.cites.Unreferenced()
	if len(refs)+len(extra) == 0 {
		return
	}
	b.ctx.advance(20)
	if b.ctx.remaining() <= 100 && !b.ctx.atTop() {
		b.ctx.pageBreak()
	}
	b.drawRuns(b.ctx.baseX, b.ctx.cursorY, referenceTitle, FontBold, 14, colorText)
	b.ctx.advance(14 + 12)
	y := b.ctx.cursorY - 4
	b.ctx.acc().appendLine(Line{X1: b.ctx.baseX, Y1: y, X2: b.ctx.baseX + b.ctx.width, Y2: y, Color: ruleColor, Width: 0.5})
	b.ctx.advance(8)

	size := b.spec.FontSize - 1
	entry := func(marker string, c Citation) {
		label := c.Display
		if label == "" {
			label = c.Target
		}
		var segs []Segment
		segs = append(segs, b.styled(marker+" ", FontRegular, size, colorText, "")...)
		segs = append(segs, b.styled(label, FontRegular, size, colorLink, c.Target)...)
		segs = append(segs, b.styled(" ("+Hostname(c.Target)+")", FontRegular, size-1, colorHostname, "")...)
		opts := wrapOptions{maxWidth: b.ctx.width, hanging: hangingIndent, hasHanging: true}
		b.drawLines(b.m.wrapSegments(segs, opts), size)
	}
	for _, c := range refs {
		entry("["+strconv.Itoa(c.Index)+"]", c)
	}
	for _, c := range extra {
		entry("[-]", c)
	}
}

// styled 按字形覆盖拆分文本并附加颜色与链接。
func (b *builder) styled(s string, font FontRef, size float64, color Color, href string) []Segment {
	var out []Segment
	for _, r := range b.m.splitRuns(s, font) {
		out = append(out, TextSeg{Text: r.text, Font: r.font, Size: size, Color: color, Href: href})
	}
	return out
}

// drawRuns 在 (x, 基线 y) 处直接绘制一段不折行的文本，返回总宽度。
func (b *builder) drawRuns(x, y float64, s string, font FontRef, size float64, color Color) float64 {
	start := x
	acc := b.ctx.acc()
	for _, r := range b.m.splitRuns(s, font) {
		w := b.m.width(r.font, r.text, size)
		acc.appendText(TextBox{Content: r.text, X: x, Y: y, Width: w, Font: r.font, FontSize: size, Color: color})
		x += w
	}
	return x - start
}

// drawLines 逐行绘制折行结果：每行画在当前基线上，然后下移 base + lineGap。
func (b *builder) drawLines(lines []wrappedLine, base float64) {
	for _, l := range lines {
		if l.display != nil {
			b.displayMath(*l.display)
			continue
		}
		x := b.ctx.baseX + l.indent
		if l.center {
			x = b.ctx.baseX + math.Max(0, (b.ctx.width-l.width)/2)
		}
		b.drawLineAt(l, x, b.ctx.cursorY)
		b.ctx.advance(base + b.spec.LineGap)
	}
}

// drawLineAt 把一行的元素放到 (x, 基线 y)。
func (b *builder) drawLineAt(l wrappedLine, x, y float64) {
	acc := b.ctx.acc()
	for _, it := range l.items {
		switch it.kind {
		case itemText:
			acc.appendText(TextBox{Content: it.text, X: x, Y: y, Width: it.width, Font: it.font, FontSize: it.size, Color: it.color})
			if it.href != "" {
				acc.appendLink(LinkBox{X: x, Y: y - it.size, Width: it.width, Height: it.size, URL: it.href})
			}
		case itemBadge:
			by := y - it.size*0.35
			acc.appendText(TextBox{Content: it.text, X: x, Y: by, Width: it.width - 1, Font: it.font, FontSize: it.size, Color: it.color})
			if it.href != "" {
				acc.appendLink(LinkBox{X: x, Y: by - it.size, Width: it.width, Height: it.size, URL: it.href})
			}
		case itemMath:
			acc.appendImage(ImageBox{Source: it.text, PNG: it.image.PNG, X: x, Y: y - it.h*0.8, Width: it.width, Height: it.h})
		}
		x += it.width
	}
}

// displayMath 居中放置独立公式，前后各留 max(10, 0.6*base)。
func (b *builder) displayMath(d DisplayMathSeg) {
	size := mathtex.DisplaySize(d.Image.PixelWidth, d.Image.PixelHeight, d.Base, b.ctx.width, b.spec.Height)
	if size.W <= 0 || size.H <= 0 {
		return
	}
	space := mathtex.DisplaySpacing(d.Base)
	b.ctx.advance(space)
	b.ctx.ensureSpace(size.H)
	x := b.ctx.baseX + (b.ctx.width-size.W)/2
	b.ctx.acc().appendImage(ImageBox{Source: d.Source, PNG: d.Image.PNG, X: x, Y: b.ctx.cursorY, Width: size.W, Height: size.H})
	b.ctx.advance(size.H + space)
}
