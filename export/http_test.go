package export

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ByLCY/folio/internal/logging"
	"github.com/ByLCY/folio/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestHandlerRejectsNonPost(t *testing.T) {
	h := Handler(NewService(Options{}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/export/pdf", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestHandlerBadRequests(t *testing.T) {
	h := Handler(NewService(Options{MaxBodyBytes: 64}))
	cases := []struct {
		name string
		body string
		want string
	}{
		{"malformed", `{"content":`, "Invalid request body"},
		{"too large", `{"content":"` + strings.Repeat("a", 100) + `"}`, "Invalid request body"},
		{"missing content", `{"title":"x"}`, "Invalid content"},
		{"non-string content", `{"content":12}`, "Invalid content"},
		{"empty content", `{"content":""}`, "Invalid content"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tc.want, decodeError(t, rec))
		})
	}
}

func TestHandlerReturnsAttachment(t *testing.T) {
	h := Handler(NewService(Options{}))
	body := `{"title":"Notes","content":"Hello *world* [^a]\n\n[^a]: A note.","meta":{"modelLabel":"m","createdAt":1714557600000}}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	hdr := rec.Header()
	assert.Equal(t, "application/pdf", hdr.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="folio-export.pdf"`, hdr.Get("Content-Disposition"))
	assert.Equal(t, "no-store, no-cache, must-revalidate", hdr.Get("Cache-Control"))
	assert.Equal(t, "no-cache", hdr.Get("Pragma"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestHandlerInternalError(t *testing.T) {
	buf, restore := logging.Capture()
	defer restore()

	page := layout.DefaultPageSpec()
	page.Margin = page.Width / 2
	h := Handler(NewService(Options{Page: page}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":"Hello"}`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	msg := decodeError(t, rec)
	assert.Contains(t, msg, "布局失败")
	assert.Contains(t, msg, "页面边距过大")
	assert.Contains(t, buf.String(), "生成 PDF 失败")
}
