package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai_news_agent/config"
	"ai_news_agent/generator"
)

type fakeGenerator struct {
	mu          sync.Mutex
	art         generator.Article
	err         error
	topics      []string
	cancellable []bool
}

func (f *fakeGenerator) Generate(ctx context.Context, topic string) (generator.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	f.cancellable = append(f.cancellable, ctx.Done() != nil)
	return f.art, f.err
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.topics)
}

func newTestRouter(t *testing.T, gen Generator, cfg config.ServerConfig) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv, err := New(gen, cfg)
	require.NoError(t, err)
	return srv.Routes()
}

func post(h http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(w, req)
	return w
}

func decodeDetail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Detail
}

func TestNew_RequiresGenerator(t *testing.T) {
	_, err := New(nil, config.ServerConfig{})
	assert.Error(t, err)
}

func TestGenerate_Success(t *testing.T) {
	gen := &fakeGenerator{art: generator.Article{
		Title:    "T",
		Subtitle: "S",
		Sections: []generator.Section{{Heading: "H", Content: "C"}},
	}}
	r := newTestRouter(t, gen, config.ServerConfig{})

	w := post(r, "/generate", `{"topic": "  ai regulation "}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"title":"T","subtitle":"S","sections":[{"heading":"H","content":"C"}]}`, w.Body.String())
	assert.Equal(t, []string{"ai regulation"}, gen.topics)
	assert.NotEmpty(t, w.Header().Get(headerRequestID))
}

func TestGenerate_NilSectionsSerializeAsEmptyArray(t *testing.T) {
	gen := &fakeGenerator{art: generator.Article{Title: "T"}}
	r := newTestRouter(t, gen, config.ServerConfig{})

	w := post(r, "/generate", `{"topic": "x"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"title":"T","subtitle":"","sections":[]}`, w.Body.String())
}

func TestGenerate_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty topic", body: `{"topic": ""}`},
		{name: "whitespace topic", body: `{"topic": "   "}`},
		{name: "missing topic", body: `{}`},
		{name: "wrong type", body: `{"topic": 5}`},
		{name: "malformed json", body: `{"topic":`},
		{name: "empty body", body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{}
			r := newTestRouter(t, gen, config.ServerConfig{})

			w := post(r, "/generate", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, decodeDetail(t, w))
			assert.Equal(t, 0, gen.calls(), "no generation call on invalid input")
		})
	}
}

func TestGenerate_PipelineFailure(t *testing.T) {
	gen := &fakeGenerator{err: &generator.GenerationFailedError{
		Stage: generator.StageWriter,
		Err:   context.DeadlineExceeded,
	}}
	r := newTestRouter(t, gen, config.ServerConfig{})

	w := post(r, "/generate", `{"topic": "x"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "generation failed at writer stage: context deadline exceeded", decodeDetail(t, w))
	assert.NotContains(t, w.Body.String(), "title")
}

func TestGenerate_EmptyOutputIsServerError(t *testing.T) {
	gen := &fakeGenerator{err: &generator.GenerationFailedError{Stage: generator.StageEditor, Err: generator.ErrEmptyOutput}}
	r := newTestRouter(t, gen, config.ServerConfig{})

	w := post(r, "/generate", `{"topic": "x"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decodeDetail(t, w), "no usable output")
}

func TestGenerate_DetachedFromClientCancellation(t *testing.T) {
	gen := &fakeGenerator{art: generator.Article{Title: "T"}}
	r := newTestRouter(t, gen, config.ServerConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"topic": "x"}`)).WithContext(ctx)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []bool{false}, gen.cancellable)
}

func TestGenerate_RenderedFormats(t *testing.T) {
	gen := &fakeGenerator{art: generator.Article{
		Title:    "Title",
		Sections: []generator.Section{{Heading: "Body", Content: "Text"}},
	}}
	r := newTestRouter(t, gen, config.ServerConfig{})

	w := post(r, "/generate/markdown", `{"topic": "x"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "# Title\n\n## Body\n\nText\n", w.Body.String())

	w = post(r, "/generate/html", `{"topic": "x"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<h1>Title</h1>")

	w = post(r, "/generate/html", `{"topic": ""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerate_RateLimit(t *testing.T) {
	gen := &fakeGenerator{art: generator.Article{Title: "T"}}
	r := newTestRouter(t, gen, config.ServerConfig{RateLimitRPM: 1})

	w := post(r, "/generate", `{"topic": "x"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = post(r, "/generate", `{"topic": "x"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate limit exceeded", decodeDetail(t, w))
	assert.Equal(t, 1, gen.calls())
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t, &fakeGenerator{}, config.ServerConfig{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	post(r, "/generate", `{"topic": ""}`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "news_agent_http_requests_total")
}

func TestRequestIDIsPropagated(t *testing.T) {
	r := newTestRouter(t, &fakeGenerator{}, config.ServerConfig{})

	const id = "7d444840-9dc0-11d1-b245-5ffdce74fad2"
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, id)
	r.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get(headerRequestID))
}

func TestRequestIDRejectsNonUUID(t *testing.T) {
	r := newTestRouter(t, &fakeGenerator{}, config.ServerConfig{})

	tests := []struct {
		name   string
		header string
	}{
		{"free text", "req-123"},
		{"oversized", strings.Repeat("a", 4096)},
		{"log injection", "x\nlevel=error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set(headerRequestID, tt.header)
			r.ServeHTTP(w, req)

			got := w.Header().Get(headerRequestID)
			assert.NotEqual(t, tt.header, got)
			assert.Len(t, got, 36)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t, &fakeGenerator{}, config.ServerConfig{AllowedOrigins: []string{"http://localhost:3000"}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/generate", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
