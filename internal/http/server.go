package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Jvagarinho/Domestik/internal/cache"
	"github.com/Jvagarinho/Domestik/internal/core"
	"github.com/Jvagarinho/Domestik/internal/i18n"
	"github.com/Jvagarinho/Domestik/internal/services"
	appweb "github.com/Jvagarinho/Domestik/web"
)

// Options configures a Server.
type Options struct {
	Addr           string
	JWTSecret      string
	DefaultLocale  i18n.Locale
	RateLimitRPS   float64
	RateLimitBurst int
}

type Server struct {
	http.Server
	ledger        *services.Ledger
	templates     *template.Template
	jwtSecret     string
	defaultLocale i18n.Locale
	rateLimiter   *rateLimiter

	// Month-keyed caches, invalidated per owner on every mutation.
	servicesCache *cache.LRUCache[[]core.Service]
	statsCache    *cache.LRUCache[core.DashboardStats]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once

	requestsTotal    atomic.Int64
	responseErrors   atomic.Int64
	rateLimitedTotal atomic.Int64
}

// NewServer configures routes and templates, returning a ready-to-run
// server.
func NewServer(opts Options, ledger *services.Ledger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    opts.Addr,
			Handler: mux,
		},
		ledger:           ledger,
		jwtSecret:        opts.JWTSecret,
		defaultLocale:    opts.DefaultLocale,
		rateLimiter:      newRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
		servicesCache:    cache.NewLRUCache[[]core.Service](200, 5*time.Minute),
		statsCache:       cache.NewLRUCache[core.DashboardStats](100, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	funcs := template.FuncMap{
		"t":      i18n.T,
		"symbol": i18n.CurrencySymbol,
		"money":  func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"hours":  func(v float64) string { return fmt.Sprintf("%.1f", v) },
		"neg":    func(v float64) float64 { return -v },
	}
	t, err := template.New("").Funcs(funcs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /{$}", s.protected(s.handleIndex))

	// UI partials
	mux.HandleFunc("GET /ui/dashboard", s.protected(s.handleDashboard))
	mux.HandleFunc("GET /ui/analytics", s.protected(s.handleAnalytics))
	mux.HandleFunc("GET /ui/clients", s.protected(s.handleClientList))
	mux.HandleFunc("GET /ui/services", s.protected(s.handleServiceList))

	// Mutations
	mux.HandleFunc("POST /clients", s.protected(s.handleCreateClient))
	mux.HandleFunc("POST /clients/{id}", s.protected(s.handleUpdateClient))
	mux.HandleFunc("POST /clients/{id}/archive", s.protected(s.handleArchiveClient))
	mux.HandleFunc("POST /services", s.protected(s.handleCreateService))
	mux.HandleFunc("POST /services/{id}", s.protected(s.handleUpdateService))
	mux.HandleFunc("DELETE /services/{id}", s.protected(s.handleDeleteService))

	// Exports
	mux.HandleFunc("GET /export/csv", s.protected(s.handleExportCSV))
	mux.HandleFunc("GET /export/document", s.protected(s.handleExportDocument))
	mux.HandleFunc("GET /export/clients/{id}/csv", s.protected(s.handleExportClientCSV))
	mux.HandleFunc("GET /export/clients/{id}/document", s.protected(s.handleExportClientDocument))

	return s
}

func (s *Server) protected(next http.HandlerFunc) http.HandlerFunc {
	return s.withSecurityHeaders(s.withAuth(next))
}

// withSecurityHeaders adds security headers, rate limiting on mutating
// methods, and request trace logging.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.requestsTotal.Add(1)

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		if mutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			s.rateLimitedTotal.Add(1)
			slog.WarnContext(ctx, "rate limit exceeded",
				"client_ip", clientIP,
				"method", r.Method,
				"path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		if rw.statusCode >= 500 {
			s.responseErrors.Add(1)
		}

		slog.InfoContext(ctx, "request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			servicesCleaned := s.servicesCache.CleanExpired()
			statsCleaned := s.statsCache.CleanExpired()
			if servicesCleaned > 0 || statsCleaned > 0 {
				slog.Debug("cache cleanup completed",
					"services_entries_removed", servicesCleaned,
					"stats_entries_removed", statsCleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// invalidateOwner drops every cached view for one owner. Called after each
// confirmed mutation so the next partial render re-fetches from storage.
func (s *Server) invalidateOwner(owner string) {
	s.servicesCache.DeletePrefix(owner + ":")
	s.statsCache.DeletePrefix(owner + ":")
}

// Shutdown stops the cleanup goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "domestik_http_requests_total %d\n", s.requestsTotal.Load())
	fmt.Fprintf(w, "domestik_http_response_errors_total %d\n", s.responseErrors.Load())
	fmt.Fprintf(w, "domestik_http_rate_limited_total %d\n", s.rateLimitedTotal.Load())
	fmt.Fprintf(w, "domestik_cache_services_entries %d\n", s.servicesCache.Size())
	fmt.Fprintf(w, "domestik_cache_stats_entries %d\n", s.statsCache.Size())
}
