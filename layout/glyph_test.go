package layout

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/ByLCY/folio/internal/logging"
)

// brokenTypesetter 模拟测量失败或返回无效数值的字体后端。
type brokenTypesetter struct {
	width float64
	err   error
}

func (b brokenTypesetter) TextWidth(FontRef, string, float64) (float64, error) {
	return b.width, b.err
}

func (brokenTypesetter) Supports(FontRef, rune) bool { return true }

func TestSanitizeDropsUnsupported(t *testing.T) {
	buf, restore := logging.Capture()
	defer restore()

	m := measurer{ts: stubTypesetter{}}
	if got := m.sanitize("a\tb\ncé→", FontRegular); got != "a  b c" {
		t.Fatalf("sanitize 结果错误: %q", got)
	}
	logs := buf.String()
	if strings.Count(logs, "字体不支持该字符") != 2 {
		t.Fatalf("每个被丢弃的字符都应记录日志: %s", logs)
	}
	if !strings.Contains(logs, `"char":"é"`) || !strings.Contains(logs, `"char":"→"`) {
		t.Fatalf("日志缺少字符信息: %s", logs)
	}
}

func TestSplitRunsFallsBackToSymbol(t *testing.T) {
	buf, restore := logging.Capture()
	defer restore()

	m := measurer{ts: stubTypesetter{}}
	runs := m.splitRuns("a→b é", FontBold)
	want := []run{{FontBold, "a"}, {FontSymbol, "→"}, {FontBold, "b "}}
	if len(runs) != len(want) {
		t.Fatalf("期望 %d 段，实际 %+v", len(want), runs)
	}
	for i := range want {
		if runs[i] != want[i] {
			t.Fatalf("第 %d 段错误: %+v", i, runs[i])
		}
	}
	if !strings.Contains(buf.String(), `"char":"é"`) {
		t.Fatalf("é 两种字体都不支持，应记录日志: %s", buf.String())
	}

	// 符号字体本身不再回退
	runs = m.splitRuns("x→", FontSymbol)
	if len(runs) != 1 || runs[0].text != "x→" {
		t.Fatalf("符号字体应整段保留: %+v", runs)
	}
}

func TestSupportsWithoutTypesetter(t *testing.T) {
	m := measurer{}
	if !m.supports(FontRegular, 'a') || m.supports(FontRegular, 'é') || m.supports(FontRegular, '\n') {
		t.Fatalf("没有 Typesetter 时只接受可打印 ASCII")
	}
}

func TestWidthFallback(t *testing.T) {
	buf, restore := logging.Capture()
	defer restore()

	failing := measurer{ts: brokenTypesetter{err: errors.New("no face")}}
	if w := failing.width(FontRegular, "abcd", 10); w != 20 {
		t.Fatalf("测量失败应按字符数估算为 20，实际 %g", w)
	}
	if !strings.Contains(buf.String(), `"level":"WARN"`) || !strings.Contains(buf.String(), "no face") {
		t.Fatalf("测量失败应记录 Warn 日志: %s", buf.String())
	}

	for _, bad := range []float64{math.NaN(), math.Inf(1), -3} {
		m := measurer{ts: brokenTypesetter{width: bad}}
		if w := m.width(FontRegular, "ab", 12); w != 12 {
			t.Fatalf("无效宽度 %g 应回退为 12，实际 %g", bad, w)
		}
	}
	if w := (measurer{}).width(FontMono, "héllo", 8); w != 20 {
		t.Fatalf("没有 Typesetter 时按字符数估算，实际 %g", w)
	}
	if w := failing.width(FontRegular, "", 10); w != 0 {
		t.Fatalf("空字符串宽度应为 0，实际 %g", w)
	}
}
