package mathtex

import "math"

// Size 是公式在页面上的绘制尺寸（pt）。
type Size struct {
	W, H float64
}

// InlineSize 计算行内公式尺寸：高度贴近正文字高，宽度不超过 2.5 倍字号。
// 若结果仍宽于整行，则改用 max(8, round(0.9*base)) 的高度并继续按行宽收缩。
func InlineSize(aspect, base, lineWidth float64) Size {
	if aspect <= 0 || math.IsNaN(aspect) || math.IsInf(aspect, 0) {
		aspect = 1
	}
	targetH := math.Min(base-1, base*0.82)
	h := math.Max(targetH, base*0.6)
	w := h * aspect
	if maxW := base * 2.5; w > maxW {
		w = maxW
		h = w / aspect
	}
	if lineWidth > 0 && w > lineWidth {
		h = math.Max(8, math.Round(base*0.9))
		w = h * aspect
		if w > lineWidth {
			w = lineWidth
			h = w / aspect
		}
	}
	return Size{W: w, H: h}
}

// DisplaySize 计算独立公式尺寸，pw/ph 为位图像素尺寸。
func DisplaySize(pw, ph int, base, lineWidth, pageHeight float64) Size {
	if pw <= 0 || ph <= 0 {
		return Size{}
	}
	fw, fh := float64(pw), float64(ph)
	maxW := lineWidth * 0.75
	maxH := math.Min(pageHeight*0.25, base*2.5)
	minH := base * 1.2
	natural := base * 2
	scale := math.Min(math.Min(maxW/fw, maxH/fh), math.Max(natural/fh, minH/fh))
	return Size{W: fw * scale, H: fh * scale}
}

// DisplaySpacing 是独立公式前后的留白。
func DisplaySpacing(base float64) float64 {
	return math.Max(10, base*0.6)
}
