package server

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/richtext/pkg/preview"
	"github.com/vango-dev/richtext/pkg/render"
	"github.com/vango-dev/richtext/pkg/vdom"
)

// EditorScriptURL is the visual editor application loaded by the editor
// shell.
const EditorScriptURL = "https://app.storyblok.com/f/app-latest.js"

// handleEditor serves the editor shell. The editor loads the preview URL
// in a frame; it is taken from the configuration or derived from the
// request host.
func (s *Server) handleEditor(w http.ResponseWriter, r *http.Request) {
	previewURL := s.config.Server.PreviewURL
	if previewURL == "" {
		previewURL = PreviewURL(r.Host)
	}
	if !strings.HasSuffix(previewURL, "/") {
		previewURL += "/"
	}
	quoted, _ := json.Marshal(previewURL)

	s.writePage(w, render.PageData{
		Title: "Richtext Editor",
		Body:  vdom.Div(vdom.ID("app")),
		Scripts: []render.ScriptTag{
			{Type: "text/javascript", Inline: "STORYBLOK_PREVIEW_URL = " + string(quoted) + ";"},
			{Type: "text/javascript", Src: EditorScriptURL},
		},
	})
}

// PreviewURL derives the preview base URL from a Host header: plain HTTP
// for localhost, HTTPS for everything else.
func PreviewURL(host string) string {
	hostname := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		hostname = h
	}
	if hostname == "localhost" || strings.HasSuffix(hostname, ".localhost") {
		return "http://" + host
	}
	return "https://" + host
}

// handlePreviewPage serves a page showing the latest document pushed for a
// story. The client script keeps it current.
func (s *Server) handlePreviewPage(w http.ResponseWriter, r *http.Request) {
	story := chi.URLParam(r, "story")

	s.mu.RLock()
	html := s.stories[story]
	s.mu.RUnlock()

	s.writePage(w, render.PageData{
		Title: "Preview: " + story,
		Body: vdom.Div(
			vdom.ID(preview.ContainerID),
			vdom.Data("story", story),
			vdom.Data("ws", WebSocketPath),
			vdom.Raw(html),
		),
		Scripts: []render.ScriptTag{{Inline: preview.ClientScript}},
	})
}

func (s *Server) writePage(w http.ResponseWriter, page render.PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.engine.Page().RenderPage(w, page); err != nil {
		s.logger.Error("page render failed", "title", page.Title, "error", err)
	}
}
