// Package server provides the HTTP API for tabula.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nconklindev/tabula/internal/config"
	"github.com/nconklindev/tabula/internal/converter"
	"github.com/nconklindev/tabula/internal/session"
	"github.com/nconklindev/tabula/internal/template"
	"go.uber.org/zap"
)

const sessionCookie = "tabula_session"

// multipartOverhead is allowed on top of the file limit for form boundaries and headers.
const multipartOverhead = 1 << 20

// Server is the HTTP server for the tabula API.
type Server struct {
	converter *converter.Converter
	builder   *template.Builder
	sessions  *session.Store
	config    *config.ServerConfig
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	conv *converter.Converter,
	builder *template.Builder,
	sessions *session.Store,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		converter: conv,
		builder:   builder,
		sessions:  sessions,
		config:    cfg,
		logger:    logger,
	}
}

// Router returns the API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/template/columns", s.handleListColumns)
		r.Post("/template/columns", s.handleAddColumn)
		r.Delete("/template/columns", s.handleClearColumns)
		r.Get("/template", s.handleSessionTemplate)
		r.Post("/template", s.handleBuildTemplate)

		r.Post("/convert", s.handleConvert)
		r.Get("/convert/download", s.handleDownload)

		r.Post("/help", s.handleHelp)
		r.Get("/help/faq", s.handleFAQ)
	})

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// session returns the caller's state, issuing a cookie for new sessions.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session.State {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}

	newID, st, created := s.sessions.GetOrCreate(id)
	if created {
		s.logger.Debug("session created", zap.String("session", newID))
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    newID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return st
}
