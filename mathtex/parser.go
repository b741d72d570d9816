package mathtex

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	texLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Command", Pattern: `\\(?:[A-Za-z]+|[^A-Za-z])`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
		{Name: "Script", Pattern: `[\^_]`},
		{Name: "Text", Pattern: `[^\\{}^_]+`},
	})

	exprParser = participle.MustBuild[Expr](
		participle.Lexer(texLexer),
	)
)

// Expr 是 TeX 子集的语法树根。
type Expr struct {
	Nodes []*Node `parser:"@@*"`
}

// Node 是一个命令、分组、上下标标记或一段文本。
type Node struct {
	Command *string `parser:"  @Command"`
	Group   *Group  `parser:"| @@"`
	Script  *string `parser:"| @Script"`
	Text    *string `parser:"| @Text"`
}

// Group 对应一对花括号。
type Group struct {
	Nodes []*Node `parser:"'{' @@* '}'"`
}

// Parse 把数学源码解析为语法树；花括号不平衡或末尾孤立反斜杠会报错。
func Parse(src string) (*Expr, error) {
	expr, err := exprParser.ParseString("", src)
	if err != nil {
		return nil, fmt.Errorf("解析数学表达式失败: %w", err)
	}
	return expr, nil
}
