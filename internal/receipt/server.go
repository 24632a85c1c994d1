package receipt

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"github.com/google/uuid"
)

const rateLimitMessage = "Too many requests, please try again later."

// Server handles HTTP requests for bill uploads and splits
type Server struct {
	service    *Service
	config     ServerConfig
	mux        *http.ServeMux
	httpServer *http.Server
	newID      func() string
}

// ServerConfig holds the HTTP level settings
type ServerConfig struct {
	// AllowedOrigin is sent as Access-Control-Allow-Origin; empty means "*"
	AllowedOrigin string
	// RateLimit is the number of uploads allowed per client address within
	// RateWindow; zero disables the limit
	RateLimit  int
	RateWindow time.Duration
	// MaxUploadSize caps the request body of an upload
	MaxUploadSize int64
	BasicAuth     BasicAuth
}

// BasicAuth holds basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// NewServer creates a new Server with default mux
func NewServer(service *Service, config ServerConfig) *Server {
	return NewServerWithMux(service, config, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(service *Service, config ServerConfig, mux *http.ServeMux) *Server {
	if config.MaxUploadSize <= 0 {
		config.MaxUploadSize = 50 << 20
	}
	if config.RateWindow <= 0 {
		config.RateWindow = 15 * time.Minute
	}
	s := &Server{
		service: service,
		config:  config,
		mux:     mux,
		newID:   uuid.NewString,
	}
	s.registerRoutes()
	return s
}

// authenticate checks basic auth credentials
func (s *Server) authenticate(r *http.Request) bool {
	auth := s.config.BasicAuth
	if auth.Username == "" && auth.Password == "" {
		return true // No auth required if not configured
	}

	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Basic ") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, "Basic "))
	if err != nil {
		return false
	}

	credentials := strings.SplitN(string(decoded), ":", 2)
	if len(credentials) != 2 {
		return false
	}

	return credentials[0] == auth.Username && credentials[1] == auth.Password
}

// corsMiddleware adds CORS headers and answers preflight requests
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.setCORSHeaders(w)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requireAuth middleware
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			w.Header().Set("WWW-Authenticate", `Basic realm="SmartBill"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// rateLimit rejects clients that exceed the upload ceiling. Rejected
// requests are answered immediately; nothing is queued.
func (s *Server) rateLimit(next http.HandlerFunc) http.Handler {
	if s.config.RateLimit <= 0 {
		return next
	}
	return httprate.Limit(
		s.config.RateLimit,
		s.config.RateWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			slog.Warn("Rate limit exceeded", "remote_addr", r.RemoteAddr)
			http.Error(w, rateLimitMessage, http.StatusTooManyRequests)
		}),
	)(next)
}

// setCORSHeaders sets CORS headers on a response
func (s *Server) setCORSHeaders(w http.ResponseWriter) {
	origin := s.config.AllowedOrigin
	if origin == "" {
		origin = "*"
	} else {
		w.Header().Add("Vary", "Origin")
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// registerRoutes registers all routes on the server's mux
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /static/app.css", s.requireAuth(s.handleStaticCSS))
	s.mux.HandleFunc("GET /static/app.js", s.requireAuth(s.handleStaticJS))

	s.mux.Handle("POST /upload-bill", s.rateLimit(s.requireAuth(s.handleUploadBill)))
	s.mux.HandleFunc("POST /bill", s.requireAuth(s.handleBill))
	s.mux.HandleFunc("POST /split", s.requireAuth(s.handleSplit))
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("GET /{$}", s.requireAuth(s.handleIndex))
	s.mux.HandleFunc("GET /index.html", s.requireAuth(s.handleIndex))
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.corsMiddleware(s.mux).ServeHTTP(w, r)
}
