// Package annotate adds URI link annotations to a rendered PDF.
package annotate

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/ByLCY/folio/layout"
)

// Links 为每个 layout.LinkBox 在对应页面上添加一个 /Link 注释。
// pages 与 PDF 页面一一对应；链接框坐标为左上角原点的 pt，这里换算到 PDF 用户空间。
func Links(pdf []byte, pages []layout.Page) ([]byte, error) {
	total := 0
	for _, p := range pages {
		total += len(p.Links)
	}
	if total == 0 {
		return pdf, nil
	}

	ctx, err := api.ReadContext(bytes.NewReader(pdf), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("读取 PDF 失败: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("读取页数失败: %w", err)
	}
	if ctx.PageCount < len(pages) {
		return nil, fmt.Errorf("PDF 页数 %d 少于布局页数 %d", ctx.PageCount, len(pages))
	}

	for i, page := range pages {
		if len(page.Links) == 0 {
			continue
		}
		if err := addPageLinks(ctx, i+1, page); err != nil {
			return nil, fmt.Errorf("第 %d 页: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func addPageLinks(ctx *model.Context, pageNr int, page layout.Page) error {
	pageDict, _, _, err := ctx.PageDict(pageNr, false)
	if err != nil {
		return err
	}
	if pageDict == nil {
		return fmt.Errorf("页面字典不存在")
	}

	var annots types.Array
	if obj, found := pageDict.Find("Annots"); found {
		annots, err = ctx.DereferenceArray(obj)
		if err != nil {
			return fmt.Errorf("解析 Annots 失败: %w", err)
		}
	}
	for _, l := range page.Links {
		d, err := linkDict(l, page.Height)
		if err != nil {
			return err
		}
		ref, err := ctx.IndRefForNewObject(d)
		if err != nil {
			return fmt.Errorf("登记注释对象失败: %w", err)
		}
		annots = append(annots, *ref)
	}
	pageDict.Update("Annots", annots)
	return nil
}

// linkDict 构造无边框的 URI 链接注释。
func linkDict(l layout.LinkBox, pageHeight float64) (types.Dict, error) {
	uri, err := types.Escape(l.URL)
	if err != nil {
		return nil, fmt.Errorf("转义链接 %q 失败: %w", l.URL, err)
	}
	x1, y1 := l.X, pageHeight-(l.Y+l.Height)
	x2, y2 := l.X+l.Width, pageHeight-l.Y
	return types.Dict(map[string]types.Object{
		"Type":    types.Name("Annot"),
		"Subtype": types.Name("Link"),
		"Rect":    types.NewNumberArray(x1, y1, x2, y2),
		"Border":  types.NewIntegerArray(0, 0, 0),
		"A": types.Dict(map[string]types.Object{
			"Type": types.Name("Action"),
			"S":    types.Name("URI"),
			"URI":  types.StringLiteral(*uri),
		}),
	}), nil
}
