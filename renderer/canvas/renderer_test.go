package canvasrenderer

import (
	"bytes"
	"testing"

	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/markdown"
	"github.com/ByLCY/folio/mathtex"
)

func TestTextWidthIsInPoints(t *testing.T) {
	r := NewRenderer()
	w12, err := r.TextWidth(layout.FontRegular, "hello world", 12)
	if err != nil {
		t.Fatalf("TextWidth error: %v", err)
	}
	w24, err := r.TextWidth(layout.FontRegular, "hello world", 24)
	if err != nil {
		t.Fatalf("TextWidth error: %v", err)
	}
	// 12pt 的 Go Regular 每个字符大约 6pt
	if w12 < 30 || w12 > 100 {
		t.Fatalf("unexpected width at 12pt: %g", w12)
	}
	if diff := w24 - 2*w12; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("width should scale with size: %g vs %g", w24, w12)
	}
	mono, _ := r.TextWidth(layout.FontMono, "iiii", 10)
	wide, _ := r.TextWidth(layout.FontMono, "WWWW", 10)
	if mono != wide {
		t.Fatalf("mono font should be fixed width: %g vs %g", mono, wide)
	}
}

func TestSupportsUsesFontCoverage(t *testing.T) {
	r := NewRenderer()
	if !r.Supports(layout.FontRegular, 'A') {
		t.Fatalf("regular font should support 'A'")
	}
	// U+1D538 MATHEMATICAL DOUBLE-STRUCK CAPITAL A
	if r.Supports(layout.FontRegular, '\U0001D538') {
		t.Fatalf("Go Regular should not cover U+1D538")
	}
	if !r.Supports(layout.FontSymbol, '\U0001D538') {
		t.Fatalf("symbol font should cover U+1D538")
	}
}

func TestRenderProducesPDF(t *testing.T) {
	r := NewRenderer()
	src := "# Report\n\nSome **bold** text with a [link](https://go.dev) and $x^2$ inline.\n\n" +
		"| a | b |\n|---|---|\n| 1 | 2 |\n\n```\ncode\n```\n\n---\n"
	res, err := layout.Build(markdown.Parse(markdown.Preprocess(src)), layout.BuildOptions{
		Typesetter: r,
		Math:       mathtex.NewRenderer(),
		Header:     layout.Header{Title: "Report", MetaLine: "Model: test"},
	})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	data, err := r.Render(res)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", data[:min(len(data), 16)])
	}
}

func TestRenderRejectsEmptyResult(t *testing.T) {
	r := NewRenderer()
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("expected error for nil result")
	}
	if _, err := r.Render(&layout.Result{}); err == nil {
		t.Fatalf("expected error for result without pages")
	}
}

func TestInjectedFontFallsBackOnBadPath(t *testing.T) {
	r := NewRendererWithOptions(Options{Fonts: map[string]Resource{"bold": {Path: "/nonexistent/font.ttf"}}})
	if _, err := r.TextWidth(layout.FontBold, "x", 12); err != nil {
		t.Fatalf("missing font file should fall back to embedded font: %v", err)
	}
}
