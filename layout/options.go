package layout

import (
	"fmt"

	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/mathtex"
)

// FontRef 是文档使用的五种逻辑字体之一。
type FontRef int

const (
	FontRegular FontRef = iota
	FontBold
	FontItalic
	FontMono
	FontSymbol
)

// fontNames 按 FontRef 顺序排列，与 fonts.Names 一致。
var fontNames = fonts.Names()

// String 返回 fonts 包中的字体名。
func (f FontRef) String() string {
	if f < 0 || int(f) >= len(fontNames) {
		return fmt.Sprintf("font(%d)", int(f))
	}
	return fontNames[f]
}

// MarshalText 让调试 JSON 输出字体名而不是数字。
func (f FontRef) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText 解析 MarshalText 的输出，用于读回调试 JSON。
func (f *FontRef) UnmarshalText(text []byte) error {
	for i, name := range fontNames {
		if name == string(text) {
			*f = FontRef(i)
			return nil
		}
	}
	return fmt.Errorf("未知字体: %q", text)
}

// Typesetter 提供字体度量：测量宽度与查询字形覆盖。
type Typesetter interface {
	TextWidth(font FontRef, text string, size float64) (float64, error)
	Supports(font FontRef, r rune) bool
}

// MathRenderer 把数学源码转换为位图。
type MathRenderer interface {
	Render(source string, display bool) (*mathtex.Image, error)
}

// PageSpec 描述页面几何与正文字号（pt）。
type PageSpec struct {
	Width    float64
	Height   float64
	Margin   float64
	FontSize float64
	LineGap  float64
}

// DefaultPageSpec 返回 A4、50pt 边距、12pt 正文。
func DefaultPageSpec() PageSpec {
	return PageSpec{Width: 595, Height: 842, Margin: 50, FontSize: 12, LineGap: 6}
}

// Header 是文档顶部的标题与说明行。
type Header struct {
	Title    string
	MetaLine string
}

// BuildOptions 配置布局阶段所需的依赖。
type BuildOptions struct {
	Typesetter Typesetter
	Math       MathRenderer // 为空时所有公式走 ASCII 降级
	Page       PageSpec     // 零值时使用 DefaultPageSpec
	Header     Header
	Meta       DocumentMeta
}

// 块间距（pt）。
const (
	SpaceBeforeHeading   = 10.0
	SpaceAfterHeading    = 8.0
	SpaceAfterParagraph  = 8.0
	SpaceBeforeTable     = 10.0
	SpaceAfterTable      = 18.0
	SpaceAfterList       = 8.0
	SpaceAfterBlockquote = 8.0
	SpaceAfterCode       = 24.0
	KeepWithNextTable    = 140.0
	KeepWithNextGeneric  = 60.0
)

// HeadingSizes 对应 h1..h6。
var HeadingSizes = [6]float64{20, 18, 16, 14, 13, 12}

// HeadingSize 返回标题级别对应的字号。
func HeadingSize(level int) float64 {
	if level < 1 {
		level = 1
	}
	if level > len(HeadingSizes) {
		level = len(HeadingSizes)
	}
	return HeadingSizes[level-1]
}
