package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocessFootnotes(t *testing.T) {
	out := Preprocess("# Title\n\nHello *world* [^a]\n\n[^a]: A note.")

	assert.Contains(t, out, "Hello *world* [1]")
	assert.NotContains(t, out, "[^a]:")
	require.Contains(t, out, "## Notes")
	assert.Contains(t, out, "\n- [1] A note.")
	assert.NotContains(t, out, "## Citations")
}

func TestPreprocessFootnoteOrderAndMultiline(t *testing.T) {
	src := strings.Join([]string{
		"First [^b], then [^a], again [^b].",
		"",
		"[^a]: Alpha line one",
		"continues here.",
		"[^b]: Beta.",
	}, "\n")
	out := Preprocess(src)

	assert.Contains(t, out, "First [1], then [2], again [1].")
	assert.Contains(t, out, "- [1] Beta.")
	assert.Contains(t, out, "- [2] Alpha line one continues here.")
}

func TestPreprocessUndefinedFootnoteUsesLabel(t *testing.T) {
	out := Preprocess("See [^missing].")
	assert.Contains(t, out, "- [1] missing")
}

func TestPreprocessCitationsIndependentCounter(t *testing.T) {
	out := Preprocess("A [^n] and [@smith2020] and [@doe] and [@smith2020].\n\n[^n]: note")

	assert.Contains(t, out, "A [1] and [1] and [2] and [1].")
	notes := strings.Index(out, "## Notes")
	cites := strings.Index(out, "## Citations")
	require.True(t, notes >= 0 && cites > notes, "Notes must precede Citations: %q", out)
	assert.Contains(t, out[cites:], "- [1] smith2020")
	assert.Contains(t, out[cites:], "- [2] doe")
}

func TestPreprocessDisplayMath(t *testing.T) {
	out := Preprocess("before\n\n$$\n  E = mc^2\n$$\n\nafter")
	assert.Contains(t, out, `\[E = mc^2\]`)
	assert.NotContains(t, out, "$$")
}

func TestPreprocessMatrices(t *testing.T) {
	out := Preprocess(`$$A = \begin{bmatrix}1&2\\3&4\end{bmatrix}$$ and \begin{pmatrix}a&b\end{pmatrix}`)
	assert.Contains(t, out, `\[A = [1, 2; 3, 4]\]`)
	assert.Contains(t, out, "(a, b)")
}

func TestPreprocessSecondPassKeepsNumberedReferences(t *testing.T) {
	once := Preprocess("x [^a]\n\n[^a]: note")
	twice := Preprocess(once)
	assert.Equal(t, strings.Count(once, "## Notes"), 1)
	// 第二次运行不会再识别已编号的引用，因此附录保持不变
	assert.Equal(t, once, twice)
}

func TestPreprocessEmpty(t *testing.T) {
	assert.Equal(t, "", Preprocess(""))
}
