package layout

import (
	"math"
	"unicode/utf8"

	"github.com/ByLCY/folio/internal/logging"
)

// fallbackWidthFactor 用于无法测量时按字符数估算宽度。
const fallbackWidthFactor = 0.5

// measurer 包装 Typesetter，保证测量总能返回一个可用数值。
type measurer struct {
	ts Typesetter
}

func (m measurer) width(font FontRef, s string, size float64) float64 {
	if s == "" {
		return 0
	}
	if m.ts != nil {
		w, err := m.ts.TextWidth(font, s, size)
		if err == nil && !math.IsNaN(w) && !math.IsInf(w, 0) && w >= 0 {
			return w
		}
		if err != nil {
			logging.Logger().Warn("测量文本宽度失败，改用估算", "font", font.String(), "error", err)
		}
	}
	return estimateWidth(s, size)
}

func estimateWidth(s string, size float64) float64 {
	return float64(utf8.RuneCountInString(s)) * size * fallbackWidthFactor
}

// supports 报告 font 能否绘制 r；没有 Typesetter 时只接受可打印 ASCII。
func (m measurer) supports(font FontRef, r rune) bool {
	if m.ts == nil {
		return r >= 0x20 && r < 0x7f
	}
	return m.ts.Supports(font, r)
}
