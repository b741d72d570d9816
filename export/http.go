package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ByLCY/folio/internal/logging"
)

type errorBody struct {
	Error string `json:"error"`
}

// Handler 返回 POST 导出接口：请求体为 JSON Request，成功时以附件形式返回 PDF。
func Handler(s *Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		var req Request
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		start := time.Now()
		pdf, res, err := s.Generate(r.Context(), req)
		switch {
		case errors.Is(err, ErrInvalidContent):
			writeError(w, http.StatusBadRequest, "Invalid content")
			return
		case err != nil:
			logging.Logger().Error("生成 PDF 失败", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		logging.Logger().Info("已生成 PDF", "bytes", len(pdf), "pages", len(res.Pages), "duration", time.Since(start))

		h := w.Header()
		h.Set("Content-Type", "application/pdf")
		h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.opts.Filename))
		h.Set("Content-Length", fmt.Sprint(len(pdf)))
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate")
		h.Set("Pragma", "no-cache")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(pdf)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg})
}
