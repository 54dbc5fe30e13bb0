// internal/server/server.go
package server

import (
	"fmt"
	"html/template"
	"log"
	"net/http"

	"gatelog/internal/auth"
	"gatelog/internal/database"
	"gatelog/internal/session"
)

type Config struct {
	UseHTTPS bool
}

type Server struct {
	db            *database.DB
	logger        *log.Logger
	auth          *auth.Service
	sessions      *session.Manager
	config        Config
	templateCache map[string]*template.Template
}

func NewServer(db *database.DB, logger *log.Logger, authService *auth.Service, sessions *session.Manager, config Config) (*Server, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	return &Server{
		db:            db,
		logger:        logger,
		auth:          authService,
		sessions:      sessions,
		config:        config,
		templateCache: templates,
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/login/", s.handleLogin)
	mux.HandleFunc("/witaj", s.handleWelcome)
	mux.HandleFunc("/witaj/", s.handleWelcome)
	mux.HandleFunc("/logout", s.handleLogout)
	mux.HandleFunc("/logout/", s.handleLogout)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/healthz/", s.handleHealthz)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			s.handle404(w, r)
			return
		}
		s.handleIndex(w, r)
	})

	return s.securityHeaders(mux)
}

func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if s.config.UseHTTPS {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000")
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, status int, data any) {
	tmpl, ok := s.templateCache[name]
	if !ok {
		s.logger.Printf("Unknown template requested: %s", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Printf("Error rendering template %s: %v", name, err)
	}
}

func (s *Server) handle404(w http.ResponseWriter, r *http.Request) {
	s.logger.Printf("404 error for path: %s", r.URL.Path)
	s.renderTemplate(w, "404.html", http.StatusNotFound, nil)
}

func (s *Server) Start(addr string) error {
	s.logger.Printf("Starting server on %s", addr)
	return http.ListenAndServe(addr, s.Routes())
}
