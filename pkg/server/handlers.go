package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/richtext/internal/errors"
	"github.com/vango-dev/richtext/pkg/engine"
	"github.com/vango-dev/richtext/pkg/richtext"
)

// PreviewParam is the query parameter the visual editor adds to preview
// requests. Its presence turns on editable attributes.
const PreviewParam = "_storyblok"

// renderRequest is the body of the render and preview endpoints.
type renderRequest struct {
	Document json.RawMessage   `json:"document"`
	Options  *richtext.Options `json:"options,omitempty"`
}

// handleRender serves POST /api/render.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, err := engine.ParseFormat(q.Get("format"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, errors.New("E150").Wrap(err))
		return
	}

	root, opts, rerr := s.readDocument(w, r)
	if rerr != nil {
		s.writeError(w, r, statusOf(rerr), rerr)
		return
	}
	if q.Has(PreviewParam) {
		opts = editable(opts)
	}

	res, err := s.engine.Render(r.Context(), engine.Request{
		Root:    root,
		Options: opts,
		Format:  format,
		Pretty:  isTrue(q.Get("pretty")),
	})
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, errors.FromError(err, "E151"))
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("X-Richtext-Nodes", strconv.Itoa(res.Stats.Nodes))
	w.Header().Set("X-Richtext-Placeholders", strconv.Itoa(res.Stats.Placeholders))
	w.Write(res.Body)
}

// handlePreviewPush serves POST /api/preview/{story}: it renders the
// pushed document and broadcasts it to the story's subscribers.
func (s *Server) handlePreviewPush(w http.ResponseWriter, r *http.Request) {
	story := chi.URLParam(r, "story")

	root, opts, rerr := s.readDocument(w, r)
	if rerr != nil {
		s.hub.NotifyError(story, rerr.Error())
		s.writeError(w, r, statusOf(rerr), rerr)
		return
	}

	html, err := s.engine.HTML(root, editable(opts))
	if err != nil {
		rerr := errors.FromError(err, "E151")
		s.hub.NotifyError(story, rerr.Error())
		s.writeError(w, r, http.StatusInternalServerError, rerr)
		return
	}

	s.mu.Lock()
	s.stories[story] = html
	s.mu.Unlock()

	n := s.hub.NotifyInput(story, html)
	s.metrics.RecordBroadcast()
	s.logger.Debug("preview pushed", "story", story, "subscribers", n)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{"story": story, "subscribers": n})
}

// readDocument decodes a render request body. Errors are coded for the
// response.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (richtext.Root, *richtext.Options, *errors.RichtextError) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.Server.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return richtext.Root{}, nil, errors.New("E171").
				WithDetail("Request bodies are limited to " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes")
		}
		return richtext.Root{}, nil, errors.New("E170").Wrap(err)
	}

	var req renderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return richtext.Root{}, nil, errors.FromDocument(err, "request", body)
	}
	root, err := richtext.ParseRoot(req.Document)
	if err != nil {
		return richtext.Root{}, nil, errors.FromDocument(err, "document", req.Document).
			WithSuggestion(`Send {"document": {"type": "doc", "content": [...]}}`)
	}
	return root, req.Options, nil
}

// writeError writes err as a JSON error body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err *errors.RichtextError) {
	s.logger.Warn("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"code", err.Code,
		"error", err,
	)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	io.WriteString(w, err.FormatJSON())
}

func statusOf(err *errors.RichtextError) int {
	if err.Code == "E171" {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// editable returns opts with editable attributes turned on.
func editable(opts *richtext.Options) *richtext.Options {
	out := richtext.Options{}
	if opts != nil {
		out = *opts
	}
	out.Editable = richtext.Bool(true)
	return &out
}

func isTrue(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes":
		return true
	}
	return false
}
