package layout

import "testing"

// 下边界：cursorY 恰好落在下边距上即换页，差一点则不换。
func TestAdvanceBreaksAtBottomMargin(t *testing.T) {
	ctx := newFlowContext(DefaultPageSpec())
	bottom := ctx.collector.contentBottom()
	if bottom != 792 {
		t.Fatalf("A4 下边界应为 792pt，实际 %g", bottom)
	}

	if ctx.advance(bottom - ctx.cursorY - 0.1) {
		t.Fatalf("距离下边界 0.1pt 时不应换页")
	}
	if ctx.advance(0.1) == false {
		t.Fatalf("落在下边界上应换页")
	}
	if ctx.pageIndex() != 1 || ctx.cursorY != 50 {
		t.Fatalf("换页后应位于第 2 页顶部，实际 page=%d y=%g", ctx.pageIndex(), ctx.cursorY)
	}
}

func TestEnsureSpace(t *testing.T) {
	ctx := newFlowContext(DefaultPageSpec())
	ctx.cursorY = 100

	if ctx.ensureSpace(691.9) {
		t.Fatalf("691.9pt 应该放得下")
	}
	if !ctx.ensureSpace(692) {
		t.Fatalf("恰好到达下边界时应换页")
	}
	if len(ctx.collector.pages()) != 2 {
		t.Fatalf("期望 2 页，实际 %d", len(ctx.collector.pages()))
	}
	// 页顶不再换页：比整页还高的内容只能溢出
	if ctx.ensureSpace(10000) {
		t.Fatalf("页顶不应继续换页")
	}
	if len(ctx.collector.pages()) != 2 {
		t.Fatalf("页顶 ensureSpace 不应产生空白页")
	}
}

func TestCursorStaysInsideContentArea(t *testing.T) {
	ctx := newFlowContext(DefaultPageSpec())
	for i := 0; i < 500; i++ {
		ctx.advance(17)
		if ctx.cursorY < ctx.collector.contentTop() || ctx.cursorY >= ctx.collector.contentBottom() {
			t.Fatalf("第 %d 步后游标越界: %g", i, ctx.cursorY)
		}
	}
}
