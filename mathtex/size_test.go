package mathtex

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInlineSize(t *testing.T) {
	// 窄公式：高度为 min(11, 9.84)
	s := InlineSize(1, 12, 495)
	assert.InDelta(t, 9.84, s.H, 1e-9)
	assert.InDelta(t, 9.84, s.W, 1e-9)

	// 宽公式：宽度被限制为 2.5 倍字号
	s = InlineSize(10, 12, 495)
	assert.InDelta(t, 30, s.W, 1e-9)
	assert.InDelta(t, 3, s.H, 1e-9)

	// 比整行还宽：高度改为 max(8, round(10.8))，再按行宽收缩
	s = InlineSize(4, 12, 20)
	assert.InDelta(t, 20, s.W, 1e-9)
	assert.InDelta(t, 5, s.H, 1e-9)
}

func TestDisplaySize(t *testing.T) {
	s := DisplaySize(300, 100, 12, 495, 842)
	// natural = 24 → scale = min(371.25/300, 30/100, max(0.24, 0.144)) = 0.24
	assert.InDelta(t, 72, s.W, 1e-9)
	assert.InDelta(t, 24, s.H, 1e-9)

	// 极宽公式受 75% 行宽限制
	s = DisplaySize(10000, 100, 12, 400, 842)
	assert.InDelta(t, 300, s.W, 1e-9)
	assert.True(t, s.H < 24)

	assert.Equal(t, Size{}, DisplaySize(0, 10, 12, 400, 842))
	assert.Equal(t, 10.0, DisplaySpacing(12))
	assert.Equal(t, 12.0, DisplaySpacing(20))
	assert.False(t, math.IsNaN(InlineSize(0, 12, 100).W))
}
