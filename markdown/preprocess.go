package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/folio/mathtex"
)

var (
	footnoteDefPattern = regexp.MustCompile(`^\[\^([^\]]+)\]:\s*(.*)$`)
	footnoteRefPattern = regexp.MustCompile(`\[\^([^\]]+)\]`)
	citationPattern    = regexp.MustCompile(`\[@([^\]]+)\]`)
	displayMathPattern = regexp.MustCompile(`(?s)\$\$(.*?)\$\$`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
)

// Preprocess rewrites footnotes, pandoc citations and display math into forms the
// tokenizer and layout understand, and appends Notes / Citations sections.
//
// It is a one-shot pass: running it twice renumbers the already numbered
// references.
func Preprocess(md string) string {
	if md == "" {
		return ""
	}
	md = norm.NFC.String(strings.ReplaceAll(md, "\r\n", "\n"))

	body, defs := extractFootnotes(md)

	footnotes := newOrder()
	body = footnoteRefPattern.ReplaceAllStringFunc(body, func(m string) string {
		label := footnoteRefPattern.FindStringSubmatch(m)[1]
		return fmt.Sprintf("[%d]", footnotes.index(label))
	})

	citations := newOrder()
	body = citationPattern.ReplaceAllStringFunc(body, func(m string) string {
		key := citationPattern.FindStringSubmatch(m)[1]
		return fmt.Sprintf("[%d]", citations.index(key))
	})

	body = displayMathPattern.ReplaceAllStringFunc(body, func(m string) string {
		inner := displayMathPattern.FindStringSubmatch(m)[1]
		return `\[` + strings.TrimSpace(inner) + `\]`
	})
	body = mathtex.FlattenMatrices(body)

	var appendix strings.Builder
	if len(footnotes.keys) > 0 {
		appendix.WriteString("\n\n## Notes")
		for i, label := range footnotes.keys {
			text, ok := defs[label]
			if !ok || text == "" {
				text = label
			}
			fmt.Fprintf(&appendix, "\n- [%d] %s", i+1, text)
		}
	}
	if len(citations.keys) > 0 {
		appendix.WriteString("\n\n## Citations")
		for i, key := range citations.keys {
			fmt.Fprintf(&appendix, "\n- [%d] %s", i+1, key)
		}
	}
	return body + appendix.String()
}

// extractFootnotes removes `[^label]: text` definitions. A definition runs until
// a blank line, the next line starting with "[^", or the end of the input.
func extractFootnotes(md string) (string, map[string]string) {
	defs := map[string]string{}
	lines := strings.Split(md, "\n")
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		m := footnoteDefPattern.FindStringSubmatch(lines[i])
		if m == nil {
			out = append(out, lines[i])
			continue
		}
		parts := []string{m[2]}
		for i+1 < len(lines) {
			next := lines[i+1]
			if strings.TrimSpace(next) == "" || strings.HasPrefix(next, "[^") {
				break
			}
			parts = append(parts, next)
			i++
		}
		text := whitespacePattern.ReplaceAllString(strings.Join(parts, " "), " ")
		defs[m[1]] = strings.TrimSpace(text)
	}
	return strings.Join(out, "\n"), defs
}

// order hands out 1-based indices in first-seen order.
type order struct {
	keys []string
	pos  map[string]int
}

func newOrder() *order { return &order{pos: map[string]int{}} }

func (o *order) index(key string) int {
	if n, ok := o.pos[key]; ok {
		return n
	}
	o.keys = append(o.keys, key)
	o.pos[key] = len(o.keys)
	return len(o.keys)
}
