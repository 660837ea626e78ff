package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/richtext/internal/config"
	"github.com/vango-dev/richtext/pkg/preview"
)

const docBody = `{"document": {"type": "doc", "content": [
	{"type": "heading", "attrs": {"level": 2}, "content": [{"type": "text", "text": "Hello"}]},
	{"type": "paragraph", "content": [{"type": "text", "text": "world", "marks": [{"type": "bold"}]}]}
]}}`

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.New()
	cfg.Bridge.Enabled = true
	if mutate != nil {
		mutate(cfg)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, WithLogger(logger), WithPrometheusRegistry(prometheus.NewRegistry()))
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Location *struct {
		Line   int `json:"line"`
		Column int `json:"column"`
	} `json:"location"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("error Content-Type = %q", ct)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %v\n%s", err, rec.Body.String())
	}
	return body
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestServer(t, nil).Handler(), "GET", "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestRenderHTML(t *testing.T) {
	rec := do(t, newTestServer(t, nil).Handler(), "POST", "/api/render", docBody)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	want := `<div><h2>Hello</h2><p><b>world</b></p></div>`
	if rec.Body.String() != want {
		t.Errorf("body = %s\nwant %s", rec.Body.String(), want)
	}
	if rec.Header().Get("Content-Type") != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
	if rec.Header().Get("X-Richtext-Placeholders") != "0" {
		t.Errorf("placeholders header = %q", rec.Header().Get("X-Richtext-Placeholders"))
	}
}

func TestRenderFormats(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	tests := []struct {
		name      string
		target    string
		wantType  string
		wantInfix string
	}{
		{name: "json", target: "/api/render?format=json", wantType: "application/json", wantInfix: `"tag":"h2"`},
		{name: "pretty json", target: "/api/render?format=json&pretty=1", wantType: "application/json", wantInfix: "\n  "},
		{name: "binary", target: "/api/render?format=binary", wantType: "application/octet-stream", wantInfix: "RT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, "POST", tt.target, docBody)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			if got := rec.Header().Get("Content-Type"); got != tt.wantType {
				t.Errorf("Content-Type = %q, want %q", got, tt.wantType)
			}
			if !strings.Contains(rec.Body.String(), tt.wantInfix) {
				t.Errorf("body missing %q: %q", tt.wantInfix, rec.Body.String())
			}
		})
	}
}

func TestRenderOptions(t *testing.T) {
	body := `{"document": {"type": "paragraph", "content": [{"type": "text", "text": "x"}]},
		"options": {"classes": {"paragraph": "lead"}}}`
	rec := do(t, newTestServer(t, nil).Handler(), "POST", "/api/render", body)
	if rec.Body.String() != `<p class="lead">x</p>` {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRenderErrors(t *testing.T) {
	h := newTestServer(t, func(c *config.Config) { c.Server.MaxBodyBytes = 256 }).Handler()

	tests := []struct {
		name       string
		target     string
		body       string
		wantStatus int
		wantCode   string
		wantLine   int
	}{
		{name: "unknown format", target: "/api/render?format=pdf", body: docBody, wantStatus: 400, wantCode: "E150"},
		{name: "malformed", target: "/api/render", body: "{\n  \"document\": {\n    \"type\": }\n}", wantStatus: 400, wantCode: "E101", wantLine: 3},
		{name: "scalar root", target: "/api/render", body: `{"document": 5}`, wantStatus: 400, wantCode: "E100"},
		{name: "missing document", target: "/api/render", body: `{}`, wantStatus: 400, wantCode: "E100"},
		{name: "too large", target: "/api/render", body: `{"document": "` + strings.Repeat("x", 512) + `"}`, wantStatus: 413, wantCode: "E171"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, "POST", tt.target, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			got := decodeError(t, rec)
			if got.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", got.Code, tt.wantCode)
			}
			if tt.wantLine > 0 && (got.Location == nil || got.Location.Line != tt.wantLine) {
				t.Errorf("location = %+v, want line %d", got.Location, tt.wantLine)
			}
		})
	}
}

func TestRenderEditable(t *testing.T) {
	body := `{"document": {"type": "blok", "attrs": {"id": "9", "body": [{
		"component": "teaser", "_uid": "u1",
		"_editable": "<!--#storyblok#{\"name\":\"teaser\",\"space\":\"1\",\"uid\":\"u1\",\"id\":\"9\"}-->"
	}]}}, "options": {"components": {"teaser": "section"}}}`
	h := newTestServer(t, nil).Handler()

	plain := do(t, h, "POST", "/api/render", body).Body.String()
	if strings.Contains(plain, "data-blok-uid") {
		t.Errorf("editable attributes outside preview mode: %s", plain)
	}

	edit := do(t, h, "POST", "/api/render?_storyblok=1", body).Body.String()
	for _, want := range []string{`<section`, `data-blok-uid="9-u1"`, `storyblok__outline`} {
		if !strings.Contains(edit, want) {
			t.Errorf("preview render missing %s: %s", want, edit)
		}
	}
}

func TestEditorShell(t *testing.T) {
	tests := []struct {
		name       string
		host       string
		previewURL string
		want       string
	}{
		{name: "localhost", host: "localhost:3000", want: `STORYBLOK_PREVIEW_URL = "http://localhost:3000/";`},
		{name: "public host", host: "blog.example.com", want: `STORYBLOK_PREVIEW_URL = "https://blog.example.com/";`},
		{name: "configured", host: "localhost", previewURL: "https://preview.example.com", want: `"https://preview.example.com/"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, func(c *config.Config) { c.Server.PreviewURL = tt.previewURL })
			req := httptest.NewRequest("GET", "/editor", nil)
			req.Host = tt.host
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			body := rec.Body.String()
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			for _, want := range []string{tt.want, `<div id="app"></div>`, EditorScriptURL} {
				if !strings.Contains(body, want) {
					t.Errorf("editor shell missing %q:\n%s", want, body)
				}
			}
		})
	}
}

func TestEditorPathFromConfig(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Server.EditorPath = "/admin/cms" })
	if rec := do(t, s.Handler(), "GET", "/admin/cms", ""); rec.Code != http.StatusOK {
		t.Errorf("custom editor path status = %d", rec.Code)
	}
	if rec := do(t, s.Handler(), "GET", "/editor", ""); rec.Code != http.StatusNotFound {
		t.Errorf("default editor path status = %d", rec.Code)
	}
}

func TestPreviewURL(t *testing.T) {
	tests := map[string]string{
		"localhost":         "http://localhost",
		"localhost:8080":    "http://localhost:8080",
		"app.localhost:80":  "http://app.localhost:80",
		"example.com":       "https://example.com",
		"localhost.example": "https://localhost.example",
	}
	for host, want := range tests {
		if got := PreviewURL(host); got != want {
			t.Errorf("PreviewURL(%q) = %q, want %q", host, got, want)
		}
	}
}

func TestBridgeDisabled(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Bridge.Enabled = false })
	if rec := do(t, s.Handler(), "POST", "/api/preview/home", docBody); rec.Code != http.StatusNotFound {
		t.Errorf("preview push status = %d, want 404", rec.Code)
	}
}

func TestPreviewBridge(t *testing.T) {
	s := newTestServer(t, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	defer s.Hub().Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + WebSocketPath + "?story=home"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.Hub().ClientCount("home") != 1 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	resp, err := http.Post(ts.URL+"/api/preview/home", "application/json", strings.NewReader(docBody))
	if err != nil {
		t.Fatal(err)
	}
	var ack struct {
		Story       string `json:"story"`
		Subscribers int    `json:"subscribers"`
	}
	json.NewDecoder(resp.Body).Decode(&ack)
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted || ack.Story != "home" || ack.Subscribers != 1 {
		t.Errorf("push = %d %+v", resp.StatusCode, ack)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg preview.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if msg.Type != preview.TypeInput || msg.Story != "home" || !strings.Contains(msg.HTML, "<h2>Hello</h2>") {
		t.Errorf("message = %+v", msg)
	}

	// The page shows the last pushed document.
	page := do(t, s.Handler(), "GET", "/preview/home", "").Body.String()
	for _, want := range []string{`id="` + preview.ContainerID + `"`, `data-story="home"`, "<h2>Hello</h2>", "new WebSocket"} {
		if !strings.Contains(page, want) {
			t.Errorf("preview page missing %q", want)
		}
	}

	// Broken documents reach subscribers as errors.
	do(t, s.Handler(), "POST", "/api/preview/home", `{"document": 1}`)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if msg.Type != preview.TypeError || !strings.Contains(msg.Error, "E100") {
		t.Errorf("error message = %+v", msg)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	do(t, h, "POST", "/api/render", docBody)

	body := do(t, h, "GET", "/metrics", "").Body.String()
	for _, want := range []string{
		`richtext_renders_total{format="html"} 1`,
		`richtext_http_requests_total{method="POST",route="/api/render",status="2xx"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %s", want)
		}
	}

	disabled := newTestServer(t, func(c *config.Config) { c.Metrics.Enabled = false })
	if rec := do(t, disabled.Handler(), "GET", "/metrics", ""); rec.Code != http.StatusNotFound {
		t.Errorf("disabled metrics status = %d", rec.Code)
	}
}

func TestRunShutdown(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Server.Addr = "127.0.0.1:0" })
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
