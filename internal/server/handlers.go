package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/folio/pkg/buildinfo"
	"github.com/matzehuels/folio/pkg/errors"
	"github.com/matzehuels/folio/pkg/layout"
	"github.com/matzehuels/folio/pkg/manifest"
	"github.com/matzehuels/folio/pkg/pipeline"
	"github.com/matzehuels/folio/pkg/render"
	"github.com/matzehuels/folio/pkg/session"
	"github.com/matzehuels/folio/pkg/sim"
	"github.com/matzehuels/folio/pkg/viewer"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

// =============================================================================
// Layouts
// =============================================================================

type layoutRequest struct {
	Manifest *manifest.Manifest `json:"manifest"`
	Options  pipeline.Options   `json:"options"`
}

type layoutResponse struct {
	Layout layout.Document `json:"layout"`
	Cached bool            `json:"cached"`
}

func (s *Server) computeLayout(w http.ResponseWriter, r *http.Request) (*layoutRequest, layout.Document, bool, bool) {
	req := layoutRequest{Options: pipeline.DefaultOptions()}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return nil, layout.Document{}, false, false
	}
	if req.Manifest == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidManifest, "manifest is required"))
		return nil, layout.Document{}, false, false
	}
	req.Options.Logger = s.logger
	doc, hit, err := s.runner.ComputeLayout(r.Context(), req.Manifest, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return nil, layout.Document{}, false, false
	}
	return &req, doc, hit, true
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	_, doc, hit, ok := s.computeLayout(w, r)
	if !ok {
		return
	}
	setCacheHeader(w, hit)
	writeJSON(w, http.StatusOK, layoutResponse{Layout: doc, Cached: hit})
}

// handleRender returns the first requested format, SVG by default.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, doc, _, ok := s.computeLayout(w, r)
	if !ok {
		return
	}
	opts := req.Options
	format := render.FormatSVG
	if len(opts.Formats) > 0 {
		format = opts.Formats[0]
	}
	opts.Formats = []string{format}

	artifacts, hit, err := s.runner.Render(r.Context(), doc, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
}

// =============================================================================
// Sessions
// =============================================================================

type createSessionRequest struct {
	Manifest *manifest.Manifest `json:"manifest"`
	Config   *viewer.Config     `json:"config,omitempty"`
	Viewport struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	} `json:"viewport"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Manifest == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidManifest, "manifest is required"))
		return
	}
	cfg := viewer.DefaultConfig()
	if req.Config != nil {
		cfg = *req.Config
	}
	opts := sim.Options{ContainerWidth: req.Viewport.Width, ContainerHeight: req.Viewport.Height}

	sess, err := session.New(req.Manifest, cfg, opts, s.ttl, s.logger)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Set(r.Context(), sess); err != nil {
		sess.Close()
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("session created", "id", sess.ID, "pages", req.Manifest.Len())
	w.Header().Set("Location", "/sessions/"+sess.ID)
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleSessionEvent(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var action sim.Action
	if err := decode(w, r, &action); err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := sess.Apply(action)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("session deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
