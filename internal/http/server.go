// Package http exposes the bill splitting API: ledger calculation, bill
// history, groups, templates, statistics, and receipt scan sessions.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"splitinvoice/internal/cache"
	applog "splitinvoice/internal/log"
	"splitinvoice/internal/scan"
	"splitinvoice/internal/services"
	"splitinvoice/internal/storage"
)

// statsCacheKey is the single key under which the stats aggregate is cached.
const statsCacheKey = "stats"

type Server struct {
	http.Server

	bills     *services.BillService
	stats     *services.StatsService
	groups    storage.GroupStore
	templates storage.TemplateStore
	scans     *scan.Service

	rateLimiter *rateLimiter
	metrics     *securityMetrics

	// Stats are recomputed from the full history, so cache them and
	// invalidate on any bill write.
	statsCache   *cache.LRUCache[services.Stats]
	cacheManager *cache.Manager
	logs         *applog.StructuredLogger

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, bills *services.BillService, stats *services.StatsService, groups storage.GroupStore, templates storage.TemplateStore, scans *scan.Service) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		bills:        bills,
		stats:        stats,
		groups:       groups,
		templates:    templates,
		scans:        scans,
		rateLimiter:  newRateLimiter(),
		metrics:      &securityMetrics{},
		statsCache:   cache.NewLRUCache[services.Stats](1, 5*time.Minute),
		cacheManager: cache.NewManager(),
		logs:         applog.NewStructuredLogger(applog.New(applog.Config{Component: applog.ComponentHTTP})),
	}

	s.cacheManager.Register(s.statsCache)
	if scans != nil {
		s.cacheManager.Register(scans)
	}
	s.cacheManager.StartCleanup(time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /calculate", s.secured(s.handleCalculate))

	mux.HandleFunc("POST /bills", s.secured(s.handleSaveBill))
	mux.HandleFunc("GET /bills", s.secured(s.handleListBills))
	mux.HandleFunc("GET /bills/{id}", s.secured(s.handleGetBill))
	mux.HandleFunc("DELETE /bills/{id}", s.secured(s.handleDeleteBill))

	mux.HandleFunc("POST /groups", s.secured(s.handleSaveGroup))
	mux.HandleFunc("GET /groups", s.secured(s.handleListGroups))
	mux.HandleFunc("GET /groups/{name}", s.secured(s.handleGetGroup))
	mux.HandleFunc("DELETE /groups/{name}", s.secured(s.handleDeleteGroup))

	mux.HandleFunc("POST /templates", s.secured(s.handleSaveTemplate))
	mux.HandleFunc("GET /templates", s.secured(s.handleListTemplates))
	mux.HandleFunc("GET /templates/{name}", s.secured(s.handleGetTemplate))
	mux.HandleFunc("DELETE /templates/{name}", s.secured(s.handleDeleteTemplate))

	mux.HandleFunc("GET /stats", s.secured(s.handleStats))

	mux.HandleFunc("POST /scan", s.secured(s.handleStartScan))
	mux.HandleFunc("GET /scan/{id}", s.secured(s.handleGetScan))
	mux.HandleFunc("POST /scan/{id}/assign", s.secured(s.handleAssignScan))
	mux.HandleFunc("POST /scan/{id}/apply", s.secured(s.handleApplyScan))
	mux.HandleFunc("POST /scan/{id}/rescan", s.secured(s.handleRescan))
	mux.HandleFunc("DELETE /scan/{id}", s.secured(s.handleCancelScan))

	return s
}

// secured adds security headers, rate limiting, and request logging.
func (s *Server) secured(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		s.logs.LogHTTPStart(ctx, r, clientIP, requestID)

		if detectSuspiciousRequest(r, s.metrics) {
			slog.WarnContext(ctx, "Suspicious request detected",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
		}

		// Rate limit mutating requests only; reads stay cheap.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP, s.metrics) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		s.logs.LogHTTPEnd(ctx, r, rw.statusCode, duration.Milliseconds(), clientIP, requestID)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) invalidateStats() {
	s.statsCache.Delete(statsCacheKey)
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
