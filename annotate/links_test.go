package annotate

import (
	"bytes"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/folio/layout"
	canvasrenderer "github.com/ByLCY/folio/renderer/canvas"
)

func renderPages(t *testing.T, n int) ([]byte, []layout.Page) {
	t.Helper()
	spec := layout.DefaultPageSpec()
	res := &layout.Result{Meta: layout.DocumentMeta{Title: "t", Creator: "folio"}}
	for i := 0; i < n; i++ {
		res.Pages = append(res.Pages, layout.Page{
			Width:  spec.Width,
			Height: spec.Height,
			Texts:  []layout.TextBox{{Content: "link", X: 50, Y: 100, FontSize: 12}},
		})
	}
	pdf, err := canvasrenderer.NewRenderer().Render(res)
	require.NoError(t, err)
	return pdf, res.Pages
}

func annotsOf(t *testing.T, pdf []byte, pageNr int) types.Array {
	t.Helper()
	ctx, err := api.ReadContext(bytes.NewReader(pdf), model.NewDefaultConfiguration())
	require.NoError(t, err)
	require.NoError(t, ctx.EnsurePageCount())
	pageDict, _, _, err := ctx.PageDict(pageNr, false)
	require.NoError(t, err)
	obj, found := pageDict.Find("Annots")
	if !found {
		return nil
	}
	arr, err := ctx.DereferenceArray(obj)
	require.NoError(t, err)
	return arr
}

func TestLinksWithoutBoxesReturnsInput(t *testing.T) {
	pdf, pages := renderPages(t, 1)
	out, err := Links(pdf, pages)
	require.NoError(t, err)
	assert.Equal(t, pdf, out)
}

func TestLinksAddsAnnotationsPerPage(t *testing.T) {
	pdf, pages := renderPages(t, 2)
	pages[1].Links = []layout.LinkBox{
		{X: 50, Y: 88, Width: 30, Height: 12, URL: "https://go.dev/doc?a=(1)"},
		{X: 90, Y: 88, Width: 30, Height: 12, URL: "https://example.com"},
	}

	out, err := Links(pdf, pages)
	require.NoError(t, err)

	assert.Empty(t, annotsOf(t, out, 1))
	assert.Len(t, annotsOf(t, out, 2), 2)

	n, err := api.PageCount(bytes.NewReader(out), model.NewDefaultConfiguration())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestLinkDictUsesPDFCoordinates(t *testing.T) {
	d, err := linkDict(layout.LinkBox{X: 10, Y: 20, Width: 30, Height: 5, URL: "https://a.example"}, 842)
	require.NoError(t, err)

	rect, ok := d["Rect"].(types.Array)
	require.True(t, ok)
	assert.Equal(t, types.NewNumberArray(10, 817, 40, 822), rect)
	assert.Equal(t, types.Name("Link"), d["Subtype"])
}

func TestLinksRejectsPageMismatch(t *testing.T) {
	pdf, pages := renderPages(t, 1)
	pages = append(pages, layout.Page{Links: []layout.LinkBox{{URL: "https://x.example"}}})
	_, err := Links(pdf, pages)
	assert.Error(t, err)
}
