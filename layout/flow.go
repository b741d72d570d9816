package layout

// pageAccumulator 收集单页上的绘制元素。
type pageAccumulator struct {
	texts  []TextBox
	images []ImageBox
	tables []TableBox
	lines  []Line
	rects  []Rect
	links  []LinkBox
}

func (p *pageAccumulator) appendText(tb TextBox) {
	p.texts = append(p.texts, tb)
}

func (p *pageAccumulator) appendImage(img ImageBox) {
	p.images = append(p.images, img)
}

func (p *pageAccumulator) appendTable(t TableBox) {
	p.tables = append(p.tables, t)
}

func (p *pageAccumulator) appendLine(l Line) {
	p.lines = append(p.lines, l)
}

func (p *pageAccumulator) appendRect(r Rect) {
	p.rects = append(p.rects, r)
}

func (p *pageAccumulator) appendLink(l LinkBox) {
	p.links = append(p.links, l)
}

type pageCollector struct {
	width   float64
	height  float64
	margin  Margin
	accs    []*pageAccumulator
	current int
}

func newPageCollector(width, height float64, margin Margin) *pageCollector {
	pc := &pageCollector{
		width:  width,
		height: height,
		margin: margin,
	}
	pc.newPage()
	return pc
}

func (pc *pageCollector) newPage() *pageAccumulator {
	acc := &pageAccumulator{}
	pc.accs = append(pc.accs, acc)
	pc.current = len(pc.accs) - 1
	return acc
}

func (pc *pageCollector) curr() *pageAccumulator {
	if len(pc.accs) == 0 {
		return pc.newPage()
	}
	return pc.accs[pc.current]
}

func (pc *pageCollector) contentTop() float64 { return pc.margin.Top }

func (pc *pageCollector) contentBottom() float64 { return pc.height - pc.margin.Bottom }

func (pc *pageCollector) pages() []Page {
	out := make([]Page, len(pc.accs))
	for i, acc := range pc.accs {
		out[i] = Page{
			Width:  pc.width,
			Height: pc.height,
			Margin: pc.margin,
			Texts:  acc.texts,
			Images: acc.images,
			Tables: acc.tables,
			Lines:  acc.lines,
			Rects:  acc.rects,
			Links:  acc.links,
		}
	}
	return out
}

// flowContext 持有文档游标：当前页与纵向位置。cursorY 是下一行文本的基线。
//
// 每一步布局后游标都位于 [top, bottom) 内；越界即换页并回到顶部。
type flowContext struct {
	baseX     float64
	width     float64
	cursorY   float64
	collector *pageCollector
}

func newFlowContext(spec PageSpec) *flowContext {
	m := Margin{Top: spec.Margin, Right: spec.Margin, Bottom: spec.Margin, Left: spec.Margin}
	pc := newPageCollector(spec.Width, spec.Height, m)
	return &flowContext{
		baseX:     m.Left,
		width:     spec.Width - m.Left - m.Right,
		cursorY:   pc.contentTop(),
		collector: pc,
	}
}

// ensureSpace 在剩余空间不足 height 时换页：cursorY+height 落在下边距上或之下即视为不足。
// 已在页顶时不再换页，比整页还高的内容只能溢出。
func (ctx *flowContext) ensureSpace(height float64) bool {
	if ctx.fits(height) {
		return false
	}
	ctx.pageBreak()
	return true
}

// fits 报告当前页能否再放下 height；页顶总是视为放得下。
func (ctx *flowContext) fits(height float64) bool {
	return ctx.cursorY+height < ctx.collector.contentBottom() || ctx.atTop()
}

// hasRoom 与 fits 相同，但不对页顶放宽。
func (ctx *flowContext) hasRoom(height float64) bool {
	return ctx.cursorY+height < ctx.collector.contentBottom()
}

func (ctx *flowContext) atTop() bool {
	return ctx.cursorY <= ctx.collector.contentTop()
}

// advance 下移游标；移动后落在下边距上或之下时换页。
func (ctx *flowContext) advance(dy float64) bool {
	ctx.cursorY += dy
	if ctx.cursorY < ctx.collector.contentBottom() {
		return false
	}
	ctx.pageBreak()
	return true
}

// remaining 返回当前页剩余的纵向空间。
func (ctx *flowContext) remaining() float64 {
	return ctx.collector.contentBottom() - ctx.cursorY
}

func (ctx *flowContext) pageBreak() {
	ctx.collector.newPage()
	ctx.cursorY = ctx.collector.contentTop()
}

func (ctx *flowContext) acc() *pageAccumulator {
	return ctx.collector.curr()
}

func (ctx *flowContext) pageIndex() int {
	return ctx.collector.current
}
