package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-genui/pkg/extract"
	"github.com/goliatone/go-genui/pkg/model"
	"github.com/goliatone/go-genui/pkg/orchestrator"
	"github.com/goliatone/go-genui/pkg/render"
)

type healthResponse struct {
	Status    string   `json:"status"`
	Version   string   `json:"version"`
	Renderers []string `json:"renderers"`
}

type extractRequest struct {
	Text string `json:"text"`
}

type extractResponse struct {
	Nodes  []model.Node   `json:"nodes"`
	Report extract.Report `json:"report"`
}

type renderRequest struct {
	Text     string       `json:"text,omitempty"`
	Nodes    []model.Node `json:"nodes,omitempty"`
	Renderer string       `json:"renderer,omitempty"`
	Theme    string       `json:"theme,omitempty"`
	Variant  string       `json:"variant,omitempty"`
	Document bool         `json:"document,omitempty"`
}

type generateRequest struct {
	Prompt string `json:"prompt"`
	// Text bypasses the generator with a prepared model response.
	Text     string `json:"text,omitempty"`
	Renderer string `json:"renderer,omitempty"`
	Theme    string `json:"theme,omitempty"`
	Variant  string `json:"variant,omitempty"`
	Document bool   `json:"document,omitempty"`
	Model    string `json:"model,omitempty"`
}

type generateResponse struct {
	RequestID   string         `json:"requestId"`
	Session     string         `json:"session"`
	Nodes       []model.Node   `json:"nodes"`
	Grid        []model.Node   `json:"grid"`
	Output      string         `json:"output"`
	Renderer    string         `json:"renderer"`
	ContentType string         `json:"contentType"`
	Stats       render.Stats   `json:"stats"`
	Extraction  extract.Report `json:"extraction"`
	Fallback    bool           `json:"fallback"`
}

type sessionResponse struct {
	Session string       `json:"session"`
	Grid    []model.Node `json:"grid"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Version:   s.version,
		Renderers: s.orchestrator.Registry().List(),
	})
}

func (s *Server) handleCatalogue(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.orchestrator.Catalogue())
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	nodes, report := s.orchestrator.Extract(req.Text)
	if nodes == nil {
		nodes = []model.Node{}
	}
	s.writeJSON(w, http.StatusOK, extractResponse{Nodes: nodes, Report: report})
}

// handleRender writes the renderer output directly with its content type.
// Render statistics travel in X-Genui-* headers.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	nodes := req.Nodes
	if nodes == nil {
		if strings.TrimSpace(req.Text) == "" {
			s.writeError(w, http.StatusBadRequest, "MISSING_INPUT", "text or nodes is required")
			return
		}
		nodes, _ = s.orchestrator.Extract(req.Text)
	}

	rendered, err := s.orchestrator.Render(r.Context(), orchestrator.RenderRequest{
		Nodes:        nodes,
		Renderer:     req.Renderer,
		ThemeName:    req.Theme,
		ThemeVariant: req.Variant,
		Document:     req.Document,
	})
	if errors.Is(err, render.ErrRendererNotFound) {
		s.writeError(w, http.StatusBadRequest, "UNKNOWN_RENDERER", err.Error())
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	header := w.Header()
	header.Set("Content-Type", rendered.ContentType)
	header.Set("X-Genui-Renderer", rendered.Renderer)
	header.Set("X-Genui-Nodes", strconv.Itoa(rendered.Stats.Nodes))
	header.Set("X-Genui-Degraded", strconv.FormatBool(rendered.Stats.Degraded()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rendered.Output)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	session := chi.URLParam(r, "id")
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if strings.TrimSpace(req.Prompt) == "" && strings.TrimSpace(req.Text) == "" {
		s.writeError(w, http.StatusBadRequest, "MISSING_PROMPT", "prompt is required")
		return
	}

	result, err := s.orchestrator.Generate(r.Context(), orchestrator.Request{
		Prompt:       req.Prompt,
		Text:         req.Text,
		Session:      session,
		Renderer:     req.Renderer,
		ThemeName:    req.Theme,
		ThemeVariant: req.Variant,
		Document:     req.Document,
		Model:        req.Model,
	})
	switch {
	case errors.Is(err, render.ErrRendererNotFound):
		s.writeError(w, http.StatusBadRequest, "UNKNOWN_RENDERER", err.Error())
		return
	case err != nil:
		s.internalError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, generateResponse{
		RequestID:   result.RequestID,
		Session:     session,
		Nodes:       nonNil(result.Nodes),
		Grid:        nonNil(result.Grid),
		Output:      string(result.Output),
		Renderer:    result.Renderer,
		ContentType: result.ContentType,
		Stats:       result.Stats,
		Extraction:  result.Extraction,
		Fallback:    result.Fallback,
	})
}

func (s *Server) handleSessionGrid(w http.ResponseWriter, r *http.Request) {
	session := chi.URLParam(r, "id")
	grid, err := s.orchestrator.SessionGrid(r.Context(), session)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sessionResponse{Session: session, Grid: nonNil(grid)})
}

func (s *Server) handleSessionReset(w http.ResponseWriter, r *http.Request) {
	if err := s.orchestrator.ResetSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func nonNil(nodes []model.Node) []model.Node {
	if nodes == nil {
		return []model.Node{}
	}
	return nodes
}
