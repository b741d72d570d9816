package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ByLCY/folio/export"
	"github.com/ByLCY/folio/internal/logging"
	"github.com/ByLCY/folio/layout"
)

func main() {
	input := flag.String("in", "", "Markdown 文件路径")
	output := flag.String("out", "output/folio.pdf", "PDF 输出路径")
	title := flag.String("title", "", "文档标题（默认 Folio）")
	model := flag.String("model", "", "说明行中的模型名称")
	date := flag.String("date", "", "说明行中的日期（RFC3339 或任意文本）")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	serve := flag.String("serve", "", "HTTP 监听地址，例如 :8080；设置后进入服务模式")
	filename := flag.String("filename", "folio-export.pdf", "HTTP 响应中的附件文件名")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	svc := export.NewService(export.Options{Filename: *filename})
	if *serve != "" {
		if err := listen(*serve, svc); err != nil {
			log.Fatalf("HTTP 服务退出: %v", err)
		}
		return
	}

	if *input == "" {
		log.Fatalf("需要 -in 指定 Markdown 文件，或用 -serve 启动 HTTP 服务")
	}
	req := export.Request{Meta: &export.Meta{ModelLabel: *model}}
	if *title != "" {
		req.Title = title
	}
	if *date != "" {
		req.Meta.CreatedAt = *date
	}
	if err := run(*input, *output, *debug, req, svc); err != nil {
		log.Fatalf("生成 PDF 失败: %v", err)
	}
	fmt.Printf("已生成 PDF：%s\n", *output)
}

// run 读取 Markdown，生成 PDF 并按需输出布局调试 JSON。
func run(inputPath, outputPath, debugPath string, req export.Request, svc *export.Service) error {
	src, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("无法读取 Markdown 文件 %s: %w", inputPath, err)
	}
	req.Content = string(src)

	pdfBytes, result, err := svc.Generate(context.Background(), req)
	if err != nil {
		return err
	}

	if debugPath != "" {
		if err := writeDebug(result, debugPath); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(outputPath, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

// listen 启动导出接口，收到 SIGINT/SIGTERM 后优雅退出。
func listen(addr string, svc *export.Service) error {
	mux := http.NewServeMux()
	mux.Handle("/api/export/pdf", export.Handler(svc))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 1)
	go func() {
		logging.Logger().Info("HTTP 服务已启动", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
