package layout

// 该文件定义布局结果，供布局计算、渲染、链接注释与调试 JSON 共用。
// 所有坐标与尺寸均以 pt 为单位，原点位于页面左上角。

// Result 保存布局后的页面与文档元信息。
type Result struct {
	Pages []Page       `json:"pages"`
	Meta  DocumentMeta `json:"meta"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Page 记录页面尺寸、边距与最终可以直接渲染的元素。
// 绘制顺序：矩形、表格、线段、图片、文本；链接区域由后处理写成 PDF 注释。
type Page struct {
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Margin Margin     `json:"margin"`
	Texts  []TextBox  `json:"texts"`
	Images []ImageBox `json:"images"`
	Tables []TableBox `json:"tables,omitempty"`
	Lines  []Line     `json:"lines,omitempty"`
	Rects  []Rect     `json:"rects,omitempty"`
	Links  []LinkBox  `json:"links,omitempty"`
}

// Margin 以 pt 为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// TextBox 是一段单字体、单行的文本，Y 为基线位置。
type TextBox struct {
	Content  string  `json:"content"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Font     FontRef `json:"font"`
	FontSize float64 `json:"fontSize"`
	Color    Color   `json:"color"`
}

// ImageBox 描述一张已栅格化的图片（目前只有公式），Y 为图片上沿。
type ImageBox struct {
	Source string  `json:"source"`
	PNG    []byte  `json:"-"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TableBox 保存表格的网格信息（平均列宽）；单元格内容以 TextBox/ImageBox 形式放在页面上。
type TableBox struct {
	X            float64    `json:"x"`
	Y            float64    `json:"y"`
	Width        float64    `json:"width"`
	ColumnWidths []float64  `json:"columnWidths"`
	Rows         []TableRow `json:"rows"`
	BorderColor  Color      `json:"borderColor"`
	BorderWidth  float64    `json:"borderWidth"`
	AccentColor  Color      `json:"accentColor"`
	AccentWidth  float64    `json:"accentWidth"`
}

// TableRow 记录每一行的位置、高度与底色。
type TableRow struct {
	Y        float64 `json:"y"`
	Height   float64 `json:"height"`
	IsHeader bool    `json:"isHeader"`
	Fill     *Color  `json:"fill,omitempty"`
}

// Line 表示一条线段。
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color Color   `json:"color"`
	Width float64 `json:"width"` // <=0 时由渲染器给默认值
}

// Rect 表示一个矩形（不包含圆角）。
type Rect struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	StrokeColor Color   `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"`         // 0 表示不描边
	FillColor   *Color  `json:"fillColor,omitempty"` // 为空表示不填充
}

// LinkBox 是一块可点击区域，Y 为区域上沿。
type LinkBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	URL    string  `json:"url"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}

// gray 与 rgb 把 0-1 的分量换算为 Color。
func gray(v float64) Color { return rgb(v, v, v) }

func rgb(r, g, b float64) Color {
	return Color{R: channel(r), G: channel(g), B: channel(b)}
}

func channel(v float64) int {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return int(v*255 + 0.5)
}
