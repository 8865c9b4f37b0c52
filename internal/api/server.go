package api

import (
	"errors"
	"log/slog"
	"net/http"
)

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger      *slog.Logger
	Chat        ChatFunc    // Required
	Index       IndexStatus // Required: backs the readiness probe
	ModelName   string      // Surfaced by GET /api/v1/config
	TopK        int         // Surfaced by GET /api/v1/config
	CORSOrigins []string    // Allowed origins for CORS
	TrustProxy  bool        // Trust X-Real-IP/X-Forwarded-For headers
	RateBurst   int         // Rate limiter burst size per IP (0 = default 60)
	RateRefill  float64     // Rate limiter tokens per second per IP (0 = default 1)
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a new API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Chat == nil {
		return nil, errors.New("chat function is required")
	}
	if cfg.Index == nil {
		return nil, errors.New("index status is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ch := &chatHandler{chat: cfg.Chat, logger: logger}
	mh := &metaHandler{model: cfg.ModelName, topK: cfg.TopK, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/chat", ch.send)
	mux.HandleFunc("GET /api/v1/profiles", mh.profiles)
	mux.HandleFunc("GET /api/v1/domains", mh.domains)
	mux.HandleFunc("GET /api/v1/config", mh.config)

	// Rate limiter: per-IP token bucket
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	refill := cfg.RateRefill
	if refill <= 0 {
		refill = 1.0
	}
	rl := newRateLimiter(refill, burst)

	// Build middleware stack (outermost first):
	//   Recovery → RequestID → Logging → CORS → RateLimit → Routes
	// RequestID must be before Logging so request_id is available in log
	// attributes. CORS must be before RateLimit so preflight OPTIONS gets
	// proper CORS headers.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setSecurityHeaders(w)
		handler.ServeHTTP(w, r)
	})

	// Health probes bypass the middleware stack
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health(logger))
	topMux.Handle("GET /ready", readiness(cfg.Index, logger))
	topMux.Handle("/", final)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
