package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/devantler-tech/msail/pkg/scoring"
	"github.com/sirupsen/logrus"
)

// shutdownTimeout caps how long in-flight requests may run during shutdown.
const shutdownTimeout = 5 * time.Second

// readHeaderTimeout caps the wait for request headers.
const readHeaderTimeout = 5 * time.Second

// Server hosts a scoring runtime behind an HTTP endpoint.
type Server struct {
	config     Config
	runtime    *scoring.Runtime
	logger     *logrus.Logger
	handler    http.Handler
	httpServer *http.Server
}

// New initializes the scoring runtime for the configured model and script and
// returns a server ready to run. Initialization failures surface here so a
// broken image fails at container start rather than on the first request.
func New(config Config, logger *logrus.Logger) (*Server, error) {
	err := config.Validate()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	runtime := scoring.New(config.ModelPath, config.ScriptPath)

	err = runtime.Init()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize scoring runtime: %w", err)
	}

	server := &Server{
		config:  config,
		runtime: runtime,
		logger:  logger,
	}
	server.handler = server.routes()
	server.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Port),
		Handler:           server.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return server, nil
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve runs the HTTP server until the context ends, then shuts down
// gracefully. TLS is used when the configuration carries a cert and key.
func (s *Server) Serve(ctx context.Context) error {
	serveErr := make(chan error, 1)

	s.logger.WithFields(logrus.Fields{
		"port":  s.config.Port,
		"model": s.config.ModelPath,
		"tls":   s.config.TLSEnabled(),
		"auth":  s.config.AuthEnabled,
	}).Info("scoring server listening")

	go func() {
		if s.config.TLSEnabled() {
			serveErr <- s.httpServer.ListenAndServeTLS(s.config.TLSCertFile, s.config.TLSKeyFile)

			return
		}

		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := s.httpServer.Shutdown(shutdownCtx)
		if err != nil {
			return fmt.Errorf("failed to shut down scoring server: %w", err)
		}

		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("failed to serve: %w", err)
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("POST /score", s.requireKey(http.HandlerFunc(s.handleScore)))

	return s.logRequests(mux)
}

// handleScore forwards the raw request body to the runtime and writes the
// response it produces. Script failures still answer 200 with an error
// payload in the body, matching what scoring clients expect.
func (s *Server) handleScore(writer http.ResponseWriter, request *http.Request) {
	input, err := io.ReadAll(request.Body)
	if err != nil {
		writeJSON(writer, http.StatusBadRequest, `{"error":"failed to read request body"}`)

		return
	}

	body := s.runtime.Run(string(input))

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write(body)
}

// handleHealth answers liveness probes. It stays open when auth is enabled so
// platform probes keep working.
func (s *Server) handleHealth(writer http.ResponseWriter, _ *http.Request) {
	writeJSON(writer, http.StatusOK, `{"status":"healthy"}`)
}

// requireKey enforces bearer key auth when the configuration enables it.
func (s *Server) requireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if !s.config.AuthEnabled {
			next.ServeHTTP(writer, request)

			return
		}

		key, found := strings.CutPrefix(request.Header.Get("Authorization"), "Bearer ")
		if !found || !s.keyMatches(key) {
			writeJSON(writer, http.StatusUnauthorized, `{"error":"unauthorized"}`)

			return
		}

		next.ServeHTTP(writer, request)
	})
}

func (s *Server) keyMatches(key string) bool {
	for _, accepted := range []string{s.config.PrimaryKey, s.config.SecondaryKey} {
		if accepted == "" {
			continue
		}

		if subtle.ConstantTimeCompare([]byte(key), []byte(accepted)) == 1 {
			return true
		}
	}

	return false
}

// logRequests emits one structured log line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}

		next.ServeHTTP(recorder, request)

		s.logger.WithFields(logrus.Fields{
			"method":   request.Method,
			"path":     request.URL.Path,
			"status":   recorder.status,
			"duration": time.Since(started).String(),
		}).Info("request handled")
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(writer http.ResponseWriter, status int, body string) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_, _ = io.WriteString(writer, body)
}
