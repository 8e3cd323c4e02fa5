// Package server exposes the dataset operations over a small JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/KaramelBytes/tabsight/internal/ai"
	"github.com/KaramelBytes/tabsight/internal/dataset"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxBodyBytes caps request bodies, uploads included.
const DefaultMaxBodyBytes = 32 << 20

// Config wires the server to its collaborators.
type Config struct {
	Coercion    dataset.Coercion
	PreviewRows int
	// Runtime answers /api/summarize. Nil means no API key is configured.
	Runtime      ai.Runtime
	Summary      ai.SummaryOptions
	Logger       *zap.Logger
	MaxBodyBytes int64
	// SummaryTimeout bounds one model call; 0 leaves it to the request context.
	SummaryTimeout time.Duration
}

// Server routes requests to the stats, preprocess, plot and summary handlers.
type Server struct {
	cfg    Config
	logger *zap.Logger
	mux    *http.ServeMux
}

// New builds a Server. Zero Config fields fall back to defaults.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = 10
	}
	s := &Server{cfg: cfg, logger: cfg.Logger.Named("server"), mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", only(http.MethodGet, s.handleHealth))
	s.mux.HandleFunc("/api/datasets", only(http.MethodPost, s.handleUpload))
	s.mux.HandleFunc("/api/stats", only(http.MethodPost, s.handleStats))
	s.mux.HandleFunc("/api/preprocess", only(http.MethodPost, s.handlePreprocess))
	s.mux.HandleFunc("/api/plot", only(http.MethodPost, s.handlePlot))
	s.mux.HandleFunc("/api/summarize", only(http.MethodPost, s.handleSummarize))
}

// Handler returns the routed handler wrapped with request IDs, body limits
// and access logging.
func (s *Server) Handler() http.Handler {
	return s.withRequestID(s.withLogging(s.withBodyLimit(s.mux)))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("Listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("Shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

type ctxKey struct{}

// RequestID returns the ID assigned to the request, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func (s *Server) withBodyLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		s.logger.Info("Request handled",
			zap.String("requestId", RequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("duration", time.Since(start)))
	})
}

// only rejects other methods with 405 and an Allow header.
func only(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h(w, r)
	}
}
