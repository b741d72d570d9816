package mathtex

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"regexp"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/svg"
)

const (
	// Oversample 是栅格化时相对目标分辨率的放大倍数。
	Oversample = 3.0
	// RasterPPI 是未放大前的栅格分辨率。
	RasterPPI = 96.0

	maxRasterSide = 4096
)

var (
	// ErrEmptyImage 表示转换结果没有可见尺寸。
	ErrEmptyImage = errors.New("数学公式渲染结果为空")
	// ErrUnsupported 表示源码含有排版器无法处理的宏或环境，调用方应改用文本。
	ErrUnsupported = errors.New("数学公式含有不支持的命令")
)

// Image 是渲染好的公式位图。
type Image struct {
	PNG         []byte
	PixelWidth  int
	PixelHeight int
}

// Aspect 返回宽高比。
func (img *Image) Aspect() float64 {
	if img == nil || img.PixelHeight == 0 {
		return 1
	}
	return float64(img.PixelWidth) / float64(img.PixelHeight)
}

// Renderer 把 LaTeX 源码转换为 PNG：canvas 生成矢量路径并写出 SVG，
// 清理描边后由 oksvg/rasterx 栅格化。
type Renderer struct {
	Oversample float64
	PPI        float64
}

// NewRenderer 返回使用默认参数的渲染器。
func NewRenderer() *Renderer {
	return &Renderer{Oversample: Oversample, PPI: RasterPPI}
}

// Render 渲染一段数学源码。display 为 true 时按独立公式处理。
func (r *Renderer) Render(source string, display bool) (*Image, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, ErrEmptyImage
	}
	source, err := prepareTeX(source)
	if err != nil {
		return nil, err
	}
	doc, err := toSVG(source)
	if err != nil {
		return nil, err
	}
	return r.rasterize(CleanSVG(doc), display)
}

var (
	// 排版器只认识 plain TeX，amsmath 的文本命令改写为对应的数学字体
	textMacroPattern = regexp.MustCompile(`\\(text|textrm|textnormal|textbf|textit|operatorname)\s*\{([^{}]*)\}`)
	textMacroFonts   = map[string]string{"textbf": `\mathbf`, "textit": `\mathit`}
	fracAliasPattern = regexp.MustCompile(`\\[dt]frac\b`)

	// 无法改写的宏和环境直接拒绝，否则排版器会把错误日志打到标准输出
	unsupportedPattern = regexp.MustCompile(`\\(?:begin|end|mathbb|mathfrak|mathscr|boldsymbol|substack|xrightarrow|xleftarrow|tag|label)\b`)
)

// prepareTeX 把常见的 amsmath 写法改写成排版器支持的形式；仍不支持时返回 ErrUnsupported。
func prepareTeX(source string) (string, error) {
	source = textMacroPattern.ReplaceAllStringFunc(source, func(m string) string {
		sub := textMacroPattern.FindStringSubmatch(m)
		font, ok := textMacroFonts[sub[1]]
		if !ok {
			font = `\mathrm`
		}
		return font + "{" + strings.ReplaceAll(strings.TrimSpace(sub[2]), " ", `\ `) + "}"
	})
	source = fracAliasPattern.ReplaceAllString(source, `\frac`)
	if m := unsupportedPattern.FindString(source); m != "" {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, m)
	}
	return source, nil
}

func toSVG(source string) (data []byte, err error) {
	// 第三方排版器对个别输入会 panic，统一转为错误
	defer func() {
		if rec := recover(); rec != nil {
			data, err = nil, fmt.Errorf("转换数学公式失败: %v", rec)
		}
	}()

	path, err := canvas.ParseLaTeX("$" + source + "$")
	if err != nil {
		return nil, fmt.Errorf("转换数学公式失败: %w", err)
	}
	if path == nil || path.Empty() {
		return nil, ErrEmptyImage
	}

	c := canvas.New(1, 1)
	ctx := canvas.NewContext(c)
	ctx.DrawPath(0, 0, path)
	c.Fit(0.5)
	if c.W <= 0 || c.H <= 0 {
		return nil, ErrEmptyImage
	}

	var buf bytes.Buffer
	w := svg.New(&buf, c.W, c.H, nil)
	c.RenderTo(w)
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("写出 SVG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) rasterize(doc []byte, display bool) (*Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(doc), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("解析 SVG 失败: %w", err)
	}
	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 || math.IsNaN(vw) || math.IsNaN(vh) {
		return nil, ErrEmptyImage
	}

	// canvas 的 SVG 以毫米为单位
	scale := r.PPI / 25.4 * r.Oversample
	if display {
		scale *= 1.5
	}
	if side := math.Max(vw, vh) * scale; side > maxRasterSide {
		scale *= maxRasterSide / side
	}
	pw := max(1, int(math.Ceil(vw*scale)))
	ph := max(1, int(math.Ceil(vh*scale)))

	icon.SetTarget(0, 0, float64(pw), float64(ph))
	rgba := image.NewRGBA(image.Rect(0, 0, pw, ph))
	icon.Draw(rasterx.NewDasher(pw, ph, rasterx.NewScannerGV(pw, ph, rgba, rgba.Bounds())), 1)

	var out bytes.Buffer
	if err := png.Encode(&out, rgba); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return &Image{PNG: out.Bytes(), PixelWidth: pw, PixelHeight: ph}, nil
}

var (
	strokeAttrPattern  = regexp.MustCompile(`\s*stroke(?:-[a-z]+)?="[^"]*"`)
	outlineAttrPattern = regexp.MustCompile(`\s*(?:outline|border)="[^"]*"`)
	opacityAttrPattern = regexp.MustCompile(`\s*(?:fill-)?opacity="[^"]*"`)
	rectPattern        = regexp.MustCompile(`<rect[^>]*>(?:\s*</rect>)?`)
	linePattern        = regexp.MustCompile(`<line[^>]*>(?:\s*</line>)?`)
	styleAttrPattern   = regexp.MustCompile(`\s*style="([^"]*)"`)
	styleDeclPattern   = regexp.MustCompile(`(?:stroke|border|outline)[^;]*;?`)
)

// CleanSVG 去掉描边、边框、透明度属性以及所有 rect/line 元素，
// 这些是栅格化后出现多余线条的来源。
func CleanSVG(doc []byte) []byte {
	s := string(doc)
	s = strokeAttrPattern.ReplaceAllString(s, "")
	s = outlineAttrPattern.ReplaceAllString(s, "")
	s = opacityAttrPattern.ReplaceAllString(s, "")
	s = rectPattern.ReplaceAllString(s, "")
	s = linePattern.ReplaceAllString(s, "")
	s = styleAttrPattern.ReplaceAllStringFunc(s, func(m string) string {
		styles := styleAttrPattern.FindStringSubmatch(m)[1]
		styles = styleDeclPattern.ReplaceAllString(styles, "")
		styles = strings.Trim(strings.ReplaceAll(styles, ";;", ";"), "; ")
		if styles == "" {
			return ""
		}
		return ` style="` + styles + `"`
	})
	return []byte(s)
}
