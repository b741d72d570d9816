package layout

import (
	"testing"

	"github.com/ByLCY/folio/markdown"
)

func TestTableColumnsAreUniform(t *testing.T) {
	b := newTestBuilder()
	tbl := &markdown.Table{
		Header: []*markdown.Cell{textCell("A"), textCell("B")},
		Rows:   [][]*markdown.Cell{{textCell("1"), textCell("2"), textCell("3")}},
	}
	b.table(tbl)
	pages := b.ctx.collector.pages()
	if len(pages[0].Tables) != 1 {
		t.Fatalf("期望 1 个表格，实际 %d", len(pages[0].Tables))
	}
	box := pages[0].Tables[0]
	if len(box.ColumnWidths) != 3 {
		t.Fatalf("列数应为 max(表头, 首行) = 3，实际 %d", len(box.ColumnWidths))
	}
	for _, w := range box.ColumnWidths {
		if w != 165 {
			t.Fatalf("列宽应为 floor(495/3)，实际 %g", w)
		}
	}
	if len(box.Rows) != 2 || !box.Rows[0].IsHeader || box.Rows[0].Fill == nil || box.Rows[1].Fill != nil {
		t.Fatalf("行信息错误: %+v", box.Rows)
	}
	if box.Rows[0].Height != 20 || box.Rows[1].Height != 19 {
		t.Fatalf("单行高度应为 2*padY + size: %g %g", box.Rows[0].Height, box.Rows[1].Height)
	}
}

func TestTableRepeatsHeaderOnContinuation(t *testing.T) {
	b := newTestBuilder()
	tbl := &markdown.Table{Header: []*markdown.Cell{textCell("Name"), textCell("Value")}}
	for i := 0; i < 60; i++ {
		tbl.Rows = append(tbl.Rows, []*markdown.Cell{textCell("row"), textCell("v")})
	}
	b.table(tbl)
	pages := b.ctx.collector.pages()
	if len(pages) != 2 {
		t.Fatalf("期望 2 页，实际 %d", len(pages))
	}
	body := 0
	for i, p := range pages {
		if len(p.Tables) != 1 {
			t.Fatalf("第 %d 页应有 1 个表格，实际 %d", i+1, len(p.Tables))
		}
		rows := p.Tables[0].Rows
		if !rows[0].IsHeader {
			t.Fatalf("第 %d 页首行应为表头", i+1)
		}
		for _, r := range rows {
			if r.Y+r.Height > 792 {
				t.Fatalf("第 %d 页的行越过下边距: %+v", i+1, r)
			}
			if !r.IsHeader {
				body++
			}
		}
	}
	if body != 60 {
		t.Fatalf("正文行数应为 60，实际 %d", body)
	}
	// 斑马纹按正文行号计算，跨页不重置
	if rows := pages[0].Tables[0].Rows; rows[1].Fill != nil || rows[2].Fill == nil {
		t.Fatalf("奇数正文行应有底色: %+v %+v", rows[1], rows[2])
	}
}

func TestTableAvoidsOrphanHeader(t *testing.T) {
	b := newTestBuilder()
	b.ctx.cursorY = b.ctx.collector.contentBottom() - 30
	tbl := &markdown.Table{
		Header: []*markdown.Cell{textCell("H")},
		Rows:   [][]*markdown.Cell{{textCell("r")}},
	}
	b.table(tbl)
	pages := b.ctx.collector.pages()
	if len(pages) != 2 {
		t.Fatalf("表头与首行放不下时应整体换页，实际 %d 页", len(pages))
	}
	if len(pages[0].Tables) != 0 {
		t.Fatalf("第一页不应留下孤立表头")
	}
	if rows := pages[1].Tables[0].Rows; len(rows) != 2 || !rows[0].IsHeader {
		t.Fatalf("第二页应包含表头和首行: %+v", rows)
	}
}

func TestTableCellLinksBecomeBadges(t *testing.T) {
	b := newTestBuilder()
	link := &markdown.Link{Href: "https://go.dev", Children: []markdown.Inline{&markdown.Text{Value: "Go"}}}
	tbl := &markdown.Table{
		Header: []*markdown.Cell{textCell("Site")},
		Rows:   [][]*markdown.Cell{{{Inlines: []markdown.Inline{&markdown.Text{Value: "see "}, link}}}},
	}
	b.table(tbl)
	page := b.ctx.collector.pages()[0]
	var badge *TextBox
	for i := range page.Texts {
		if page.Texts[i].Content == "1" {
			badge = &page.Texts[i]
		}
	}
	if badge == nil || badge.Font != FontBold || badge.FontSize != 8 {
		t.Fatalf("单元格链接应渲染为 round(11*0.7) 的角标: %+v", badge)
	}
	if len(page.Links) != 1 || page.Links[0].URL != "https://go.dev" {
		t.Fatalf("角标应带链接区域: %+v", page.Links)
	}
}
