package fonts

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// referencePPEM is the size at which single glyph advances are probed.
const referencePPEM = fixed.Int26_6(10 << 6)

// Coverage answers glyph support questions for one parsed font.
// Results are memoized per rune.
type Coverage struct {
	mu    sync.Mutex
	font  *sfnt.Font
	buf   sfnt.Buffer
	cache map[rune]bool
}

// NewCoverage parses TrueType or OpenType (CFF) font data.
func NewCoverage(data []byte) (*Coverage, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &Coverage{font: f, cache: map[rune]bool{}}, nil
}

// Supports reports whether the font maps r to a real glyph with a strictly
// positive advance. Any lookup error counts as unsupported.
func (c *Coverage) Supports(r rune) bool {
	if c == nil || c.font == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ok, hit := c.cache[r]; hit {
		return ok
	}
	ok := c.probe(r)
	c.cache[r] = ok
	return ok
}

func (c *Coverage) probe(r rune) bool {
	idx, err := c.font.GlyphIndex(&c.buf, r)
	if err != nil || idx == 0 {
		return false
	}
	adv, err := c.font.GlyphAdvance(&c.buf, idx, referencePPEM, font.HintingNone)
	if err != nil {
		return false
	}
	return adv > 0
}
