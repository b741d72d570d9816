package layout

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// Citation 记录一个链接目标及其编号；Index 为 0 表示只被收集、从未被引用。
type Citation struct {
	Target  string `json:"target"`
	Index   int    `json:"index"`
	Display string `json:"display"`
}

// CitationTracker 为链接目标按首次出现顺序分配稳定编号。
type CitationTracker struct {
	byTarget map[string]*Citation
	order    []*Citation
	next     int
}

// NewCitationTracker 创建空的引用表。
func NewCitationTracker() *CitationTracker {
	return &CitationTracker{byTarget: map[string]*Citation{}}
}

// Resolve 返回 target 的编号，首次出现时分配 count+1。非空 display 覆盖之前的显示文本。
func (t *CitationTracker) Resolve(target, display string) int {
	c := t.lookup(target)
	if c.Index == 0 {
		t.next++
		c.Index = t.next
	}
	if display != "" {
		c.Display = display
	}
	return c.Index
}

// Collect 只登记链接目标而不分配编号（例如图片地址），用于参考文献末尾的 [-] 条目。
func (t *CitationTracker) Collect(target, display string) {
	if target == "" {
		return
	}
	c := t.lookup(target)
	if c.Display == "" {
		c.Display = display
	}
}

func (t *CitationTracker) lookup(target string) *Citation {
	if c, ok := t.byTarget[target]; ok {
		return c
	}
	c := &Citation{Target: target}
	t.byTarget[target] = c
	t.order = append(t.order, c)
	return c
}

// Referenced 返回按编号排序的已引用条目。
func (t *CitationTracker) Referenced() []Citation {
	var out []Citation
	for _, c := range t.order {
		if c.Index > 0 {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Unreferenced 按首次出现顺序返回只被收集、从未编号的条目。
func (t *CitationTracker) Unreferenced() []Citation {
	var out []Citation
	for _, c := range t.order {
		if c.Index == 0 {
			out = append(out, *c)
		}
	}
	return out
}

var schemePrefix = regexp.MustCompile(`^https?://(www\.)?`)

// Hostname 从链接目标中取主机名；无法解析时去掉协议前缀并取第一段。
func Hostname(target string) string {
	if u, err := url.Parse(target); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	rest := schemePrefix.ReplaceAllString(target, "")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
