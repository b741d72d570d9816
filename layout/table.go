package layout

import (
	"math"

	"github.com/ByLCY/folio/markdown"
	"github.com/ByLCY/folio/mathtex"
)

const (
	tableCellPadX     = 8.0
	tableCellPadY     = 4.0
	tableBorderWidth  = 0.75
	tableAccentWidth  = 1.2
	tableMinLineSpace = 11.0
)

var (
	tableHeaderFill = rgb(0.94, 0.94, 0.98)
	tableStripeFill = rgb(0.98, 0.98, 0.995)
	tableBorder     = rgb(0.85, 0.85, 0.88)
	tableAccent     = rgb(0.7, 0.7, 0.8)
)

type tableCell struct {
	lines    []wrappedLine
	contentH float64
}

// measuredRow 是预先折好行的一行表格。
type measuredRow struct {
	cells       []tableCell
	size        float64
	lineSpacing float64
	height      float64
	header      bool
	fill        *Color
}

// tableLayout 负责表格分页：每页一个 TableBox，跨页时在新页重画表头。
type tableLayout struct {
	b      *builder
	cols   int
	colW   float64
	header *measuredRow
	box    *TableBox
}

// table 按等宽列排版 t：先预排所有行，表头与首行放不下时整体移到下一页，
// 之后逐行检查剩余空间。
func (b *builder) table(t *markdown.Table) {
	cols := t.ColumnCount()
	if cols == 0 {
		return
	}
	tl := &tableLayout{b: b, cols: cols, colW: math.Floor(b.ctx.width / float64(cols))}

	base := b.spec.FontSize
	bodySize := math.Max(9, base-1)
	if len(t.Header) > 0 {
		h := tl.measure(t.Header, FontBold, base)
		h.header = true
		fill := tableHeaderFill
		h.fill = &fill
		tl.header = &h
	}
	rows := make([]measuredRow, len(t.Rows))
	for i, cells := range t.Rows {
		rows[i] = tl.measure(cells, FontRegular, bodySize)
		if i%2 == 1 {
			fill := tableStripeFill
			rows[i].fill = &fill
		}
	}

	if tl.header != nil {
		need := tl.header.height
		if len(rows) > 0 {
			need += rows[0].height
		}
		b.ctx.ensureSpace(need)
		tl.place(*tl.header)
	}
	for _, r := range rows {
		tl.place(r)
	}
	tl.flush()
}

// measure 折行一行单元格；缺失的单元格按空内容处理。
func (tl *tableLayout) measure(cells []*markdown.Cell, font FontRef, size float64) measuredRow {
	b := tl.b
	ls := math.Max(tableMinLineSpace, math.Round(size*1.08))
	row := measuredRow{size: size, lineSpacing: ls, cells: make([]tableCell, tl.cols)}
	width := tl.colW - 2*tableCellPadX
	f := &flattener{m: b.m, math: b.math, cites: b.cites, lineWidth: width, cell: true}
	for c := 0; c < tl.cols; c++ {
		var segs []Segment
		if c < len(cells) && cells[c] != nil {
			segs = inlineDisplayMath(f.flatten(cells[c].Inlines, font, size), size, width)
		}
		lines := b.m.wrapSegments(segs, wrapOptions{maxWidth: width})
		contentH := size + math.Max(0, float64(len(lines)-1))*ls
		row.cells[c] = tableCell{lines: lines, contentH: contentH}
		row.height = math.Max(row.height, 2*tableCellPadY+contentH)
	}
	return row
}

// inlineDisplayMath 把单元格里的独立公式改为行内公式。
func inlineDisplayMath(segs []Segment, size, width float64) []Segment {
	out := segs[:0]
	for _, s := range segs {
		if d, ok := s.(DisplayMathSeg); ok {
			sz := mathtex.InlineSize(d.Image.Aspect(), size, width)
			s = MathSeg{Source: d.Source, Image: d.Image, W: sz.W, H: sz.H, Base: size}
		}
		out = append(out, s)
	}
	return out
}

// place 放置一行；当前页放不下时结束本页的 TableBox，换页并先重画表头。
func (tl *tableLayout) place(r measuredRow) {
	ctx := tl.b.ctx
	if !ctx.fits(r.height) {
		tl.flush()
		ctx.pageBreak()
		if !r.header && tl.header != nil {
			tl.draw(*tl.header)
		}
	}
	tl.draw(r)
}

func (tl *tableLayout) draw(r measuredRow) {
	b := tl.b
	ctx := b.ctx
	top := ctx.cursorY
	if tl.box == nil {
		widths := make([]float64, tl.cols)
		for i := range widths {
			widths[i] = tl.colW
		}
		tl.box = &TableBox{
			X:            ctx.baseX,
			Y:            top,
			Width:        tl.colW * float64(tl.cols),
			ColumnWidths: widths,
			BorderColor:  tableBorder,
			BorderWidth:  tableBorderWidth,
			AccentColor:  tableAccent,
			AccentWidth:  tableAccentWidth,
		}
	}
	tl.box.Rows = append(tl.box.Rows, TableRow{Y: top, Height: r.height, IsHeader: r.header, Fill: r.fill})

	for c, cell := range r.cells {
		free := r.height - 2*tableCellPadY - cell.contentH
		vOff := math.Max(0, math.Floor(free/2))
		x := ctx.baseX + float64(c)*tl.colW + tableCellPadX
		y := top + tableCellPadY + vOff + r.size
		for _, line := range cell.lines {
			b.drawLineAt(line, x, y)
			y += r.lineSpacing
		}
	}
	ctx.cursorY = top + r.height
}

// flush 把当前页的 TableBox 交给页面。
func (tl *tableLayout) flush() {
	if tl.box == nil {
		return
	}
	tl.b.ctx.acc().appendTable(*tl.box)
	tl.box = nil
}
