package mathtex

import (
	"regexp"
	"strings"
)

var greekNames = map[string]bool{
	"alpha": true, "beta": true, "gamma": true, "delta": true, "epsilon": true,
	"varepsilon": true, "zeta": true, "eta": true, "theta": true, "vartheta": true,
	"iota": true, "kappa": true, "lambda": true, "mu": true, "nu": true, "xi": true,
	"pi": true, "rho": true, "sigma": true, "tau": true, "upsilon": true, "phi": true,
	"varphi": true, "chi": true, "psi": true, "omega": true,
	"Gamma": true, "Delta": true, "Theta": true, "Lambda": true, "Xi": true, "Pi": true,
	"Sigma": true, "Phi": true, "Psi": true, "Omega": true,
}

var symbolText = map[string]string{
	"times": "x", "cdot": "*", "div": "/", "pm": "+/-", "mp": "-/+",
	"leq": "<=", "le": "<=", "geq": ">=", "ge": ">=", "neq": "!=", "ne": "!=",
	"approx": "~", "sim": "~", "equiv": "==", "infty": "inf",
	"to": "->", "rightarrow": "->", "Rightarrow": "=>", "leftarrow": "<-",
	"ldots": "...", "cdots": "...", "dots": "...",
	"partial": "d", "nabla": "grad", "in": "in",
	"lbrace": "{", "rbrace": "}", "langle": "<", "rangle": ">",
}

// 只保留内容的命令。
var contentCommands = map[string]bool{
	"text": true, "textrm": true, "textbf": true, "textit": true, "mathrm": true,
	"mathbf": true, "mathit": true, "mathsf": true, "mathtt": true, "mathbb": true,
	"mathcal": true, "operatorname": true, "boldsymbol": true, "hat": true,
	"bar": true, "vec": true, "tilde": true, "overline": true, "underline": true,
}

// 直接丢弃的命令。
var droppedCommands = map[string]bool{
	"displaystyle": true, "textstyle": true, "scriptstyle": true, "left": true,
	"right": true, "big": true, "Big": true, "bigg": true, "Bigg": true,
	"limits": true, "nolimits": true, "!": true,
}

var spacingCommands = map[string]bool{
	",": true, ";": true, ":": true, " ": true, "quad": true, "qquad": true,
}

// Simplify 把数学源码降级为可读的 ASCII 文本，不会失败。
//
// \frac{a}{b} → a/b，\sqrt{x} → sqrt(x)，希腊字母 → 名称，\text{} 等保留内容，
// 间距命令 → 空格。语法树解析失败时改用正则替换。
func Simplify(src string) string {
	src = FlattenMatrices(src)
	expr, err := Parse(src)
	if err != nil {
		return collapse(simplifyRegexp(src))
	}
	p := &printer{}
	p.nodes(expr.Nodes)
	return collapse(p.b.String())
}

type printer struct {
	b strings.Builder
}

func (p *printer) nodes(nodes []*Node) {
	for i := 0; i < len(nodes); i++ {
		n := nodes[i]
		switch {
		case n.Text != nil:
			p.b.WriteString(*n.Text)
		case n.Group != nil:
			p.nodes(n.Group.Nodes)
		case n.Script != nil:
			arg, used := argument(nodes, i+1)
			i += used
			if *n.Script == "^" {
				p.b.WriteString("^")
			} else {
				p.b.WriteString("_")
			}
			p.b.WriteString(atom(arg))
		case n.Command != nil:
			i += p.command(strings.TrimPrefix(*n.Command, `\`), nodes, i+1)
		}
	}
}

// command 输出一个命令，返回消耗掉的后续兄弟节点数。
func (p *printer) command(name string, nodes []*Node, next int) int {
	switch {
	case name == "frac" || name == "dfrac" || name == "tfrac":
		num, u1 := argument(nodes, next)
		den, u2 := argument(nodes, next+u1)
		p.b.WriteString(atom(num) + "/" + atom(den))
		return u1 + u2
	case name == "sqrt":
		arg, used := argument(nodes, next)
		p.b.WriteString("sqrt(" + strings.TrimSpace(arg) + ")")
		return used
	case name == "begin" || name == "end":
		_, used := argument(nodes, next)
		return used
	case contentCommands[name]:
		arg, used := argument(nodes, next)
		p.b.WriteString(arg)
		return used
	case droppedCommands[name]:
		return 0
	case spacingCommands[name]:
		p.b.WriteString(" ")
		return 0
	case name == `\`:
		p.b.WriteString("; ")
		return 0
	case greekNames[name]:
		p.b.WriteString(name)
		return 0
	}
	if s, ok := symbolText[name]; ok {
		p.b.WriteString(" " + s + " ")
		return 0
	}
	if len(name) == 1 && !isLetter(name[0]) {
		// \{ \} \% \$ \& \# \_
		p.b.WriteString(name)
		return 0
	}
	p.b.WriteString(name)
	return 0
}

// argument 取 nodes[i] 作为命令参数并打印；越界时返回空。
func argument(nodes []*Node, i int) (string, int) {
	if i >= len(nodes) {
		return "", 0
	}
	n := nodes[i]
	sub := &printer{}
	switch {
	case n.Group != nil:
		sub.nodes(n.Group.Nodes)
	case n.Text != nil:
		// 非分组参数只取首个字符，剩余部分留给后续输出
		t := strings.TrimLeft(*n.Text, " \t\n")
		if t == "" {
			arg, used := argument(nodes, i+1)
			return arg, used + 1
		}
		r := []rune(t)
		if len(r) > 1 {
			rest := string(r[1:])
			n.Text = &rest
			return string(r[0]), 0
		}
		sub.b.WriteString(t)
	case n.Command != nil:
		sub.nodes([]*Node{n})
	default:
		return "", 0
	}
	return collapse(sub.b.String()), 1
}

// atom 在多字符表达式外加括号。
func atom(s string) string {
	s = strings.TrimSpace(s)
	if len([]rune(s)) <= 1 || isWord(s) {
		return s
	}
	return "(" + s + ")"
}

func isWord(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isLetter(c) && (c < '0' || c > '9') && c != '.' {
			return false
		}
	}
	return true
}

var (
	fracPattern    = regexp.MustCompile(`\\[dt]?frac\s*\{([^{}]*)\}\s*\{([^{}]*)\}`)
	sqrtPattern    = regexp.MustCompile(`\\sqrt\s*\{([^{}]*)\}`)
	contentPattern = regexp.MustCompile(`\\(?:text|textrm|textbf|textit|mathrm|mathbf|mathit|mathsf|mathtt|mathbb|mathcal|operatorname)\s*\{([^{}]*)\}`)
	spacingPattern = regexp.MustCompile(`\\(?:quad|qquad|[,;: ])`)
	commandPattern = regexp.MustCompile(`\\([A-Za-z]+)`)
	escapedPattern = regexp.MustCompile(`\\([^A-Za-z])`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// simplifyRegexp 是不平衡输入的兜底路径。
func simplifyRegexp(s string) string {
	for {
		prev := s
		s = fracPattern.ReplaceAllString(s, "($1)/($2)")
		s = sqrtPattern.ReplaceAllString(s, "sqrt($1)")
		s = contentPattern.ReplaceAllString(s, "$1")
		if s == prev {
			break
		}
	}
	s = spacingPattern.ReplaceAllString(s, " ")
	s = commandPattern.ReplaceAllStringFunc(s, func(m string) string {
		name := m[1:]
		switch {
		case droppedCommands[name]:
			return ""
		case greekNames[name]:
			return name
		}
		if t, ok := symbolText[name]; ok {
			return " " + t + " "
		}
		return name
	})
	s = escapedPattern.ReplaceAllString(s, "$1")
	s = strings.NewReplacer("{", "", "}", "", `\`, "").Replace(s)
	return s
}

func collapse(s string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}
