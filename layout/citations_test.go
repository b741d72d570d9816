package layout

import "testing"

func TestCitationNumbersAreStable(t *testing.T) {
	tr := NewCitationTracker()
	if n := tr.Resolve("https://b.example", "B"); n != 1 {
		t.Fatalf("首个链接应为 1，实际 %d", n)
	}
	if n := tr.Resolve("https://a.example", ""); n != 2 {
		t.Fatalf("第二个链接应为 2，实际 %d", n)
	}
	if n := tr.Resolve("https://b.example", "B again"); n != 1 {
		t.Fatalf("重复链接应复用编号，实际 %d", n)
	}
	refs := tr.Referenced()
	if len(refs) != 2 || refs[0].Target != "https://b.example" || refs[0].Display != "B again" {
		t.Fatalf("引用列表错误: %+v", refs)
	}
	if refs[1].Display != "" {
		t.Fatalf("空的显示文本不应被填充: %+v", refs[1])
	}
}

func TestCitationCollectedOnly(t *testing.T) {
	tr := NewCitationTracker()
	tr.Collect("img.png", "alt")
	tr.Collect("", "ignored")
	tr.Resolve("https://a.example", "A")
	tr.Collect("https://a.example", "other")

	if refs := tr.Referenced(); len(refs) != 1 {
		t.Fatalf("只有一个编号，实际 %d", len(refs))
	}
	extra := tr.Unreferenced()
	if len(extra) != 1 || extra[0].Target != "img.png" || extra[0].Display != "alt" {
		t.Fatalf("未编号条目错误: %+v", extra)
	}
	// 收集图片后再以链接引用，升级为编号条目
	if n := tr.Resolve("img.png", ""); n != 2 || len(tr.Unreferenced()) != 0 {
		t.Fatalf("升级为编号条目失败: n=%d", n)
	}
}

func TestHostname(t *testing.T) {
	cases := map[string]string{
		"https://www.example.com/a/b": "www.example.com",
		"http://docs.go.dev":          "docs.go.dev",
		"example.org/path":            "example.org",
		"https://www.%zz/bad":         "%zz",
	}
	for in, want := range cases {
		if got := Hostname(in); got != want {
			t.Fatalf("Hostname(%q) = %q, want %q", in, got, want)
		}
	}
}
