// internal/server/handlers.go
package server

import (
	"net"
	"net/http"
)

type loginPageData struct {
	Error string
}

type welcomePageData struct {
	Username string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.sessions.Current(r); ok {
		http.Redirect(w, r, "/witaj", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		data := loginPageData{Error: r.URL.Query().Get("error")}
		s.renderTemplate(w, "login.html", http.StatusOK, data)

	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			s.logger.Printf("Failed to parse login form: %v", err)
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		username := r.PostFormValue("username")
		password := r.PostFormValue("password")

		result, err := s.auth.Login(r.Context(), username, password, clientIP(r))
		if err != nil {
			s.logger.Printf("Login error for %q: %v", username, err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if !result.OK {
			s.logger.Printf("Failed login for %q from %s", username, clientIP(r))
			s.renderTemplate(w, "login.html", http.StatusUnauthorized, loginPageData{Error: result.Reason})
			return
		}

		if err := s.sessions.Establish(w, result.Username); err != nil {
			s.logger.Printf("Error establishing session for %q: %v", username, err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/witaj", http.StatusSeeOther)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	username, ok := s.sessions.Current(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	s.renderTemplate(w, "witaj.html", http.StatusOK, welcomePageData{Username: username})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Printf("Health check failed: %v", err)
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("OK"))
}

// clientIP strips the port from the peer address. The raw address is
// what lands in the attempt log, proxies are not unwrapped.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
