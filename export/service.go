// Package export turns a JSON export request into a PDF: markdown is
// preprocessed, laid out into pages, rendered with canvas and annotated with
// link rectangles.
package export

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ByLCY/folio/annotate"
	"github.com/ByLCY/folio/binding"
	"github.com/ByLCY/folio/internal/logging"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/markdown"
	"github.com/ByLCY/folio/mathtex"
	canvasrenderer "github.com/ByLCY/folio/renderer/canvas"
)

// ErrInvalidContent 表示请求缺少可用的 markdown 内容。
var ErrInvalidContent = errors.New("invalid content")

// Meta 是显示在标题下方的说明信息。CreatedAt 可以是 RFC3339 字符串、任意字符串或毫秒时间戳。
type Meta struct {
	ModelLabel string `json:"modelLabel,omitempty"`
	CreatedAt  any    `json:"createdAt,omitempty"`
}

// Request 是导出接口的请求体。Content 必须是非空字符串。
type Request struct {
	Title   *string `json:"title,omitempty"`
	Content any     `json:"content"`
	Meta    *Meta   `json:"meta,omitempty"`
}

// Options 配置导出流程。
type Options struct {
	Page          layout.PageSpec
	DefaultTitle  string
	MetaTemplates []string // 以 ${modelLabel} / ${createdAt} 为占位符
	MetaSeparator string
	DateLayout    string
	Filename      string
	MaxBodyBytes  int64
}

// DefaultOptions 返回 A4 页面、"Folio" 标题与 folio-export.pdf 文件名。
func DefaultOptions() Options {
	return Options{
		Page:          layout.DefaultPageSpec(),
		DefaultTitle:  "Folio",
		MetaTemplates: []string{"Model: ${modelLabel}", "Date: ${createdAt}"},
		MetaSeparator: " • ",
		DateLayout:    "2006-01-02 15:04:05 MST",
		Filename:      "folio-export.pdf",
		MaxBodyBytes:  10 << 20,
	}
}

// Service 串联预处理、布局、渲染与链接注释。
type Service struct {
	opts     Options
	renderer *canvasrenderer.Renderer
	math     layout.MathRenderer
}

// NewService 使用内置字体与 mathtex 渲染器创建服务；零值字段取 DefaultOptions 的值。
func NewService(opts Options) *Service {
	def := DefaultOptions()
	if opts.Page == (layout.PageSpec{}) {
		opts.Page = def.Page
	}
	if opts.DefaultTitle == "" {
		opts.DefaultTitle = def.DefaultTitle
	}
	if opts.MetaTemplates == nil {
		opts.MetaTemplates = def.MetaTemplates
	}
	if opts.MetaSeparator == "" {
		opts.MetaSeparator = def.MetaSeparator
	}
	if opts.DateLayout == "" {
		opts.DateLayout = def.DateLayout
	}
	if opts.Filename == "" {
		opts.Filename = def.Filename
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = def.MaxBodyBytes
	}
	return &Service{opts: opts, renderer: canvasrenderer.NewRenderer(), math: mathtex.NewRenderer()}
}

// Options 返回生效的配置。
func (s *Service) Options() Options { return s.opts }

// Export 生成 PDF。内容无效时返回 ErrInvalidContent，其它错误原样包装返回。
func (s *Service) Export(ctx context.Context, req Request) ([]byte, error) {
	pdf, _, err := s.Generate(ctx, req)
	return pdf, err
}

// Generate 与 Export 相同，并返回用于生成 PDF 的布局结果。
func (s *Service) Generate(ctx context.Context, req Request) ([]byte, *layout.Result, error) {
	content, ok := req.Content.(string)
	if !ok || strings.TrimSpace(content) == "" {
		return nil, nil, ErrInvalidContent
	}

	title := s.opts.DefaultTitle
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		title = strings.TrimSpace(*req.Title)
	}

	doc := markdown.Parse(markdown.Preprocess(content))
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	res, err := layout.Build(doc, layout.BuildOptions{
		Typesetter: s.renderer,
		Math:       s.math,
		Page:       s.opts.Page,
		Header:     layout.Header{Title: title, MetaLine: s.metaLine(req.Meta)},
		Meta:       layout.DocumentMeta{Title: title, Subject: "Markdown export", Creator: "folio"},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("布局失败: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	pdf, err := s.renderer.Render(res)
	if err != nil {
		return nil, nil, fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	annotated, err := annotate.Links(pdf, res.Pages)
	if err != nil {
		logging.Logger().Warn("添加链接注释失败，返回无注释的 PDF", "error", err)
		return pdf, res, nil
	}
	return annotated, res, nil
}

// metaLine 用模板拼出说明行；缺失的字段对应的部分整体省略。
func (s *Service) metaLine(meta *Meta) string {
	if meta == nil {
		return ""
	}
	data := map[string]any{}
	if label := strings.TrimSpace(meta.ModelLabel); label != "" {
		data["modelLabel"] = label
	}
	if created := formatCreatedAt(meta.CreatedAt, s.opts.DateLayout); created != "" {
		data["createdAt"] = created
	}
	return binding.Join(s.opts.MetaTemplates, data, s.opts.MetaSeparator)
}

// formatCreatedAt 接受 RFC3339 字符串、其它字符串（原样）或毫秒时间戳（JSON 数字）。
func formatCreatedAt(v any, layoutStr string) string {
	switch t := v.(type) {
	case string:
		t = strings.TrimSpace(t)
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return ts.UTC().Format(layoutStr)
		}
		return t
	case float64:
		if t <= 0 || math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		return time.UnixMilli(int64(t)).UTC().Format(layoutStr)
	case time.Time:
		return t.UTC().Format(layoutStr)
	}
	return ""
}
