package layout

import "github.com/ByLCY/folio/mathtex"

// Segment 是行内排版的最小单元：文本、引用角标、行内公式、独立公式或强制换行。
type Segment interface {
	segment()
}

// TextSeg 是单字体文本；Center 为真时独占一行并水平居中。
type TextSeg struct {
	Text   string
	Font   FontRef
	Size   float64
	Color  Color
	Href   string
	Center bool
}

// BadgeSeg 是链接转换成的上标编号。
type BadgeSeg struct {
	Label string
	Size  float64
	Href  string
}

// MathSeg 是已栅格化的行内公式。W/H 为绘制尺寸，Base 为所在行的正文字号。
type MathSeg struct {
	Source string
	Image  *mathtex.Image
	W, H   float64
	Base   float64
}

// DisplayMathSeg 是独立公式，由布局阶段按页面尺寸决定大小并居中。Base 为所在块的正文字号。
type DisplayMathSeg struct {
	Source string
	Image  *mathtex.Image
	Base   float64
}

// BreakSeg 强制结束当前行。
type BreakSeg struct{}

func (TextSeg) segment()        {}
func (BadgeSeg) segment()       {}
func (MathSeg) segment()        {}
func (DisplayMathSeg) segment() {}
func (BreakSeg) segment()       {}

var (
	colorText      = Color{}
	colorBadge     = gray(0.4)
	colorLink      = rgb(0.2, 0.4, 0.8)
	colorMuted     = gray(0.4)
	colorHostname  = gray(0.3)
	colorCode      = rgb(0.2, 0.2, 0.25)
	colorSeparator = gray(0.85)
)
