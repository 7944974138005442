// Package server exposes the PresetForge upload, download and apply
// endpoints over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"presetforge/cmd/presetforge/cubelut"
	"presetforge/cmd/presetforge/imaging"
	"presetforge/cmd/presetforge/store"
)

// MaxUploadBytes caps multipart request bodies.
const MaxUploadBytes = 32 << 20

// Options configure a Server.
type Options struct {
	ProjectName string
	LUTSize     int
	LUTTitle    string
}

// Server holds the handlers' dependencies.
type Server struct {
	opts  Options
	store *store.Store
	log   logrus.FieldLogger
}

// New validates opts and returns a Server backed by st.
func New(opts Options, st *store.Store, log logrus.FieldLogger) (*Server, error) {
	if opts.LUTSize < 2 {
		return nil, fmt.Errorf("%w: %d (must be at least 2)", cubelut.ErrInvalidGridSize, opts.LUTSize)
	}
	if err := cubelut.ValidateTitle(opts.LUTTitle); err != nil {
		return nil, err
	}
	if opts.LUTTitle == "" {
		opts.LUTTitle = cubelut.DefaultTitle
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{opts: opts, store: st, log: log}, nil
}

// Handler returns the routed, logged handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /upload-image", s.handleUpload)
	mux.HandleFunc("GET /download-lut/{filename}", s.handleDownload)
	mux.HandleFunc("POST /apply-lut", s.handleApply)
	return s.logRequests(mux)
}

// ListenAndServe serves on addr until ctx is done, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		}).Info("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Detail string `json:"detail"`
}

// httpError sends detail with a status taken from err.
func (s *Server) httpError(w http.ResponseWriter, err error, detail string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.WithError(err).Error("request failed")
		detail = "Internal server error."
	} else {
		s.log.WithError(err).Debug(detail)
	}
	writeJSON(w, status, errorBody{Detail: detail})
}

var errBadRequest = errors.New("bad request")

func statusFor(err error) int {
	var pe *cubelut.ParseError
	switch {
	case errors.Is(err, cubelut.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &pe),
		errors.Is(err, cubelut.ErrInvalidGridSize),
		errors.Is(err, cubelut.ErrInvalidTitle),
		errors.Is(err, imaging.ErrInvalidImage),
		errors.Is(err, store.ErrInvalidName),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
