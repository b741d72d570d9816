package fonts

import (
	"fmt"
	"strings"

	"github.com/go-fonts/latin-modern/lmmath"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体名称，与 layout.FontRef 一一对应。
const (
	Regular = "regular"
	Bold    = "bold"
	Italic  = "italic"
	Mono    = "mono"
	Symbol  = "symbol"
)

var builtin = map[string][]byte{
	Regular: goregular.TTF,
	Bold:    gobold.TTF,
	Italic:  goitalic.TTF,
	Mono:    gomono.TTF,
	// Latin Modern Math 覆盖希腊字母与大部分数学符号，作为兜底字体。
	Symbol: lmmath.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "embed:bold" 或直接 "bold"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimPrefix(name, "embed:"))
	data, ok := builtin[key]
	if !ok || len(data) == 0 {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 未知字体", name)
	}
	return data, nil
}

// Names 返回全部内置字体名称（固定顺序）。
func Names() []string {
	return []string{Regular, Bold, Italic, Mono, Symbol}
}
