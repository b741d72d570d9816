package layout

import (
	"strings"

	"github.com/ByLCY/folio/internal/logging"
)

// run 是一段可以完全用同一字体绘制的文本。
type run struct {
	font FontRef
	text string
}

// normalizeWhitespace 把制表符换成两个空格、换行换成一个空格。
func normalizeWhitespace(s string) string {
	if !strings.ContainsAny(s, "\t\r\n") {
		return s
	}
	s = strings.ReplaceAll(s, "\t", "  ")
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

// sanitize 去掉 font 无法绘制的字符，保证结果可以由该字体完整绘制。
func (m measurer) sanitize(s string, font FontRef) string {
	s = normalizeWhitespace(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if m.supports(font, r) {
			b.WriteRune(r)
			continue
		}
		logging.Logger().Debug("字体不支持该字符，已跳过", "font", font.String(), "char", string(r), "code", int(r))
	}
	return b.String()
}

// splitRuns 按字形覆盖把文本切成若干段：首选字体不支持的字符改用符号字体，
// 两者都不支持时丢弃并记录日志。
func (m measurer) splitRuns(s string, font FontRef) []run {
	s = normalizeWhitespace(s)
	var out []run
	var b strings.Builder
	cur := font
	flush := func() {
		if b.Len() == 0 {
			return
		}
		out = append(out, run{font: cur, text: b.String()})
		b.Reset()
	}
	for _, r := range s {
		target := font
		switch {
		case m.supports(font, r):
		case font != FontSymbol && m.supports(FontSymbol, r):
			target = FontSymbol
		default:
			logging.Logger().Debug("字体不支持该字符，已跳过", "font", font.String(), "char", string(r), "code", int(r))
			continue
		}
		if target != cur {
			flush()
			cur = target
		}
		b.WriteRune(r)
	}
	flush()
	return out
}
