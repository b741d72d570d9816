package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/internal/logging"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/renderer"
)

const defaultStrokeWidth = 0.5

// Renderer draws layout results via github.com/tdewolff/canvas and doubles as
// the layout's Typesetter, so measured widths match what ends up in the PDF.
type Renderer struct {
	baseDir string
	blobs   map[string][]byte // 覆盖内置字体，按 fonts 包中的字体名

	mu       sync.Mutex
	families map[layout.FontRef]*canvas.FontFamily
	coverage map[layout.FontRef]*fonts.Coverage
	faces    map[faceKey]*canvas.FontFace
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

type faceKey struct {
	font  layout.FontRef
	size  float64
	color layout.Color
}

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Fonts   map[string]Resource // 以 regular/bold/italic/mono/symbol 为键替换内置字体
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a renderer backed by the embedded font set.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a renderer with injected fonts; relative
// font paths are resolved against BaseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:  opts.BaseDir,
		blobs:    map[string][]byte{},
		families: map[layout.FontRef]*canvas.FontFamily{},
		coverage: map[layout.FontRef]*fonts.Coverage{},
		faces:    map[faceKey]*canvas.FontFace{},
	}
	for name, res := range opts.Fonts {
		name = strings.ToLower(name)
		if len(res.Bytes) > 0 {
			r.blobs[name] = res.Bytes
			continue
		}
		if res.Path == "" {
			continue
		}
		path := res.Path
		if !filepath.IsAbs(path) && r.baseDir != "" {
			path = filepath.Join(r.baseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			// 读不到就回退到内置字体
			logging.Logger().Warn("读取字体文件失败，使用内置字体", "font", name, "path", path, "error", err)
			continue
		}
		r.blobs[name] = data
	}
	return r
}

// Render renders the result into a PDF byte slice. Layout coordinates are pt
// with a top-left origin; canvas works in mm with a bottom-left origin.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	first := result.Pages[0]
	writer := pdf.New(&buf, layout.ToMM(first.Width), layout.ToMM(first.Height), nil)
	applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		w, h := layout.ToMM(page.Width), layout.ToMM(page.Height)
		if i > 0 {
			writer.NewPage(w, h)
		}
		c := canvas.New(w, h)
		ctx := canvas.NewContext(c)
		if err := r.drawPage(ctx, page); err != nil {
			return nil, fmt.Errorf("渲染第 %d 页失败: %w", i+1, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// TextWidth 实现 layout.Typesetter：返回 text 在 size（pt）下的宽度（pt）。
func (r *Renderer) TextWidth(font layout.FontRef, text string, size float64) (float64, error) {
	face, err := r.face(font, size, layout.Color{})
	if err != nil {
		return 0, err
	}
	return layout.ToPT(face.TextWidth(text)), nil
}

// Supports 实现 layout.Typesetter：字体存在该字形且 advance 大于 0。
func (r *Renderer) Supports(font layout.FontRef, ch rune) bool {
	cov, err := r.fontCoverage(font)
	if err != nil {
		return false
	}
	return cov.Supports(ch)
}

// drawPage 依次绘制底色与线条、表格网格、文本和图片；链接注释由 annotate 包在 PDF 上补充。
func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page) error {
	pageH := layout.ToMM(page.Height)
	r.drawRects(ctx, pageH, page.Rects)
	r.drawLines(ctx, pageH, page.Lines)
	r.drawTables(ctx, pageH, page.Tables)
	for _, tb := range page.Texts {
		if err := r.drawText(ctx, pageH, tb); err != nil {
			return err
		}
	}
	r.drawImages(ctx, pageH, page.Images)
	return nil
}

// drawText 在基线位置绘制单行文本。
func (r *Renderer) drawText(ctx *canvas.Context, pageH float64, tb layout.TextBox) error {
	if tb.Content == "" {
		return nil
	}
	face, err := r.face(tb.Font, tb.FontSize, tb.Color)
	if err != nil {
		return err
	}
	line := canvas.NewTextLine(face, tb.Content, canvas.Left)
	ctx.DrawText(layout.ToMM(tb.X), pageH-layout.ToMM(tb.Y), line)
	return nil
}

// drawImages 绘制公式位图；缺少数据或解码失败时跳过该图片。
func (r *Renderer) drawImages(ctx *canvas.Context, pageH float64, images []layout.ImageBox) {
	for _, img := range images {
		if len(img.PNG) == 0 || img.Width <= 0 || img.Height <= 0 {
			continue
		}
		data, _, err := image.Decode(bytes.NewReader(img.PNG))
		if err != nil {
			logging.Logger().Warn("解码公式图片失败", "source", img.Source, "error", err)
			continue
		}
		width := layout.ToMM(img.Width)
		dpmm := float64(data.Bounds().Dx()) / width
		if dpmm <= 0 {
			continue
		}
		bottom := pageH - layout.ToMM(img.Y+img.Height)
		ctx.DrawImage(layout.ToMM(img.X), bottom, data, canvas.DPMM(dpmm))
	}
}

// drawTables 按行绘制单元格边框与底色，表头下方加一条强调线。
func (r *Renderer) drawTables(ctx *canvas.Context, pageH float64, tables []layout.TableBox) {
	for _, table := range tables {
		for _, row := range table.Rows {
			x := table.X
			for _, w := range table.ColumnWidths {
				r.drawRect(ctx, pageH, layout.Rect{
					X: x, Y: row.Y, Width: w, Height: row.Height,
					StrokeColor: table.BorderColor, StrokeWidth: table.BorderWidth,
					FillColor: row.Fill,
				})
				x += w
			}
			if row.IsHeader && table.AccentWidth > 0 {
				y := row.Y + row.Height
				r.drawLine(ctx, pageH, layout.Line{X1: table.X, Y1: y, X2: x, Y2: y, Color: table.AccentColor, Width: table.AccentWidth})
			}
		}
	}
}

func (r *Renderer) drawLines(ctx *canvas.Context, pageH float64, lines []layout.Line) {
	for _, ln := range lines {
		r.drawLine(ctx, pageH, ln)
	}
}

func (r *Renderer) drawLine(ctx *canvas.Context, pageH float64, ln layout.Line) {
	w := ln.Width
	if w <= 0 {
		w = defaultStrokeWidth
	}
	ctx.SetFillColor(color.RGBA{})
	ctx.SetStrokeColor(colorFromLayout(ln.Color))
	ctx.SetStrokeWidth(layout.ToMM(w))
	p := &canvas.Path{}
	p.MoveTo(0, 0)
	p.LineTo(layout.ToMM(ln.X2-ln.X1), -layout.ToMM(ln.Y2-ln.Y1))
	ctx.DrawPath(layout.ToMM(ln.X1), pageH-layout.ToMM(ln.Y1), p)
}

func (r *Renderer) drawRects(ctx *canvas.Context, pageH float64, rects []layout.Rect) {
	for _, rc := range rects {
		r.drawRect(ctx, pageH, rc)
	}
}

// drawRect 绘制矩形；StrokeWidth 为 0 时只填充。
func (r *Renderer) drawRect(ctx *canvas.Context, pageH float64, rc layout.Rect) {
	if rc.FillColor != nil {
		ctx.SetFillColor(colorFromLayout(*rc.FillColor))
	} else {
		ctx.SetFillColor(color.RGBA{})
	}
	if rc.StrokeWidth > 0 {
		ctx.SetStrokeColor(colorFromLayout(rc.StrokeColor))
		ctx.SetStrokeWidth(layout.ToMM(rc.StrokeWidth))
	} else {
		ctx.SetStrokeColor(color.RGBA{})
		ctx.SetStrokeWidth(0)
	}
	bottom := pageH - layout.ToMM(rc.Y+rc.Height)
	ctx.DrawPath(layout.ToMM(rc.X), bottom, canvas.Rectangle(layout.ToMM(rc.Width), layout.ToMM(rc.Height)))
}

func (r *Renderer) face(font layout.FontRef, size float64, col layout.Color) (*canvas.FontFace, error) {
	key := faceKey{font: font, size: size, color: col}
	r.mu.Lock()
	if f, ok := r.faces[key]; ok {
		r.mu.Unlock()
		return f, nil
	}
	r.mu.Unlock()

	family, err := r.family(font)
	if err != nil {
		return nil, err
	}
	f := family.Face(size, colorFromLayout(col), canvas.FontRegular, canvas.FontNormal)
	r.mu.Lock()
	r.faces[key] = f
	r.mu.Unlock()
	return f, nil
}

func (r *Renderer) family(font layout.FontRef) (*canvas.FontFamily, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if fam, ok := r.families[font]; ok {
		return fam, nil
	}
	data, err := r.fontBytes(font)
	if err != nil {
		return nil, err
	}
	fam := canvas.NewFontFamily("folio-" + font.String())
	if err := fam.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", font, err)
	}
	r.families[font] = fam
	return fam, nil
}

func (r *Renderer) fontCoverage(font layout.FontRef) (*fonts.Coverage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cov, ok := r.coverage[font]; ok {
		return cov, nil
	}
	data, err := r.fontBytes(font)
	if err != nil {
		return nil, err
	}
	cov, err := fonts.NewCoverage(data)
	if err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", font, err)
	}
	r.coverage[font] = cov
	return cov, nil
}

// fontBytes 优先使用注入的字体，否则读取内置字体。调用方需持有 r.mu。
func (r *Renderer) fontBytes(font layout.FontRef) ([]byte, error) {
	if blob, ok := r.blobs[font.String()]; ok {
		return blob, nil
	}
	return fonts.Load(font.String())
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
