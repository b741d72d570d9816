// Package mathtex 负责正文中的数学片段：切分、渲染为位图以及失败时的 ASCII 降级。
package mathtex

import (
	"regexp"
	"strings"
)

// PieceKind 区分普通文本与数学源码。
type PieceKind int

const (
	PieceText PieceKind = iota
	PieceMath
)

// Piece 是 SplitInline 的输出单元。
type Piece struct {
	Kind PieceKind
	Text string
}

// 形如 $5、$1,200.50、$3 billion、$10k 的金额不是数学。
var monetaryPattern = regexp.MustCompile(`^\d+(?:,\d{3})*(?:\.\d+)?(?:[kKmMbBtT]|\s+(?:thousand|million|billion|trillion|k|K|M|B|T))?`)

// SplitInline 把一段正文切成文本与行内数学。
//
// 识别 $...$ 与 \(...\)；$ 后紧跟金额时按普通文本处理；\frac{}{} 与 \sqrt{}
// 带花括号分组读取，其余 \command 视为单个宏。未闭合的定界符原样保留为文本。
func SplitInline(s string) []Piece {
	var out []Piece
	pushText := func(t string) {
		if t == "" {
			return
		}
		if n := len(out); n > 0 && out[n-1].Kind == PieceText {
			out[n-1].Text += t
			return
		}
		out = append(out, Piece{Kind: PieceText, Text: t})
	}
	pushMath := func(m string) {
		out = append(out, Piece{Kind: PieceMath, Text: m})
	}

	i := 0
	for i < len(s) {
		next := strings.IndexAny(s[i:], `$\`)
		if next < 0 {
			pushText(s[i:])
			break
		}
		next += i
		pushText(s[i:next])

		if s[next] == '$' {
			if m := monetaryPattern.FindString(s[next+1:]); m != "" {
				pushText("$" + m)
				i = next + 1 + len(m)
				continue
			}
			end := strings.IndexByte(s[next+1:], '$')
			if end < 0 {
				pushText(s[next:])
				break
			}
			end += next + 1
			if content := strings.TrimSpace(s[next+1 : end]); content != "" {
				pushMath(content)
			} else {
				pushText(s[next : end+1])
			}
			i = end + 1
			continue
		}

		// s[next] == '\\'
		if strings.HasPrefix(s[next:], `\(`) {
			end := strings.Index(s[next+2:], `\)`)
			if end < 0 {
				pushText(s[next:])
				break
			}
			end += next + 2
			pushMath(strings.TrimSpace(s[next+2 : end]))
			i = end + 2
			continue
		}

		j := next + 1
		for j < len(s) && isLetter(s[j]) {
			j++
		}
		if j == next+1 {
			// 单独的反斜杠
			pushText(`\`)
			i = next + 1
			continue
		}
		cmd := s[next:j]
		switch cmd {
		case `\sqrt`:
			grp, after, ok := readGroup(s, j)
			if ok {
				pushMath(cmd + "{" + grp + "}")
			} else {
				pushMath(cmd)
			}
			i = after
		case `\frac`:
			num, p1, _ := readGroup(s, j)
			den, p2, _ := readGroup(s, p1)
			pushMath(cmd + "{" + num + "}{" + den + "}")
			i = p2
		default:
			pushMath(cmd)
			i = j
		}
	}
	return out
}

// HasMath 报告切分结果中是否包含数学。
func HasMath(pieces []Piece) bool {
	for _, p := range pieces {
		if p.Kind == PieceMath {
			return true
		}
	}
	return false
}

// readGroup 读取 start 处以 { 开头的平衡分组；未闭合时吞到末尾。
func readGroup(s string, start int) (string, int, bool) {
	if start >= len(s) || s[start] != '{' {
		return "", start, false
	}
	depth := 0
	for j := start; j < len(s); j++ {
		switch s[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start+1 : j], j + 1, true
			}
		}
	}
	return s[start+1:], len(s), true
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
