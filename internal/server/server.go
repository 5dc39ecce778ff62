// Package server serves blockfall animations over HTTP.
//
// Routes:
//
//	GET /healthz           liveness probe
//	GET /{login}.svg       animated SVG
//	GET /{login}.json      placement timeline
//
// Query parameters theme, policy, runs, weeks and static override the
// server defaults per request. Rendered artifacts go through the runner's
// cache, so repeated requests for the same calendar are cheap.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"

	"github.com/matzehuels/blockfall/pkg/cache"
	bferrors "github.com/matzehuels/blockfall/pkg/errors"
	"github.com/matzehuels/blockfall/pkg/pipeline"
)

const (
	cacheControl    = "public, max-age=3600"
	shutdownTimeout = 5 * time.Second
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatJSON: "application/json",
}

// Server renders calendars on request.
type Server struct {
	runner *pipeline.Runner
	base   pipeline.Options
	logger *log.Logger
}

// New returns a server that runs requests through runner, starting from
// base for every option a request does not override.
func New(runner *pipeline.Runner, base pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, base: base, logger: logger}
}

// Handler returns the routed, compressed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/{file}", s.handleCalendar)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, bferrors.New(bferrors.ErrCodeNotFound, "no route for %s", r.URL.Path))
	})

	return gzhttp.GzipHandler(r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(ctx2)
	}()

	s.logger.Info("listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	ext := path.Ext(file)
	format := strings.TrimPrefix(ext, ".")
	contentType, ok := contentTypes[format]
	if !ok {
		writeError(w, bferrors.New(bferrors.ErrCodeNotFound, "unknown resource %q (use /{login}.svg or /{login}.json)", file))
		return
	}

	opts, err := s.options(strings.TrimSuffix(file, ext), format, r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		if r.Context().Err() == nil {
			s.logger.Warn("render failed", "login", opts.Login, "id", requestIDFrom(r.Context()), "err", err)
		}
		writeError(w, err)
		return
	}

	body := result.Artifacts[format]
	etag := `"` + cache.Hash(body)[:16] + `"`
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", cacheControl)
	w.Header().Set("ETag", etag)
	if result.CacheInfo.FromArchive {
		w.Header().Set("X-Blockfall-Source", "archive")
	}
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	_, _ = w.Write(body)
}

// options applies query overrides to a copy of the base options.
func (s *Server) options(login, format string, r *http.Request) (pipeline.Options, error) {
	opts := s.base
	opts.Login = login
	opts.Input = ""
	opts.Refresh = false
	opts.Formats = []string{format}

	q := r.URL.Query()
	if v := q.Get("theme"); v != "" {
		opts.Theme = v
	}
	if v := q.Get("policy"); v != "" {
		opts.Policy = v
	}
	if v := q.Get("runs"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return opts, bferrors.New(bferrors.ErrCodeInvalidInput, "runs must be a positive integer, got %q", v)
		}
		opts.Timeline.Runs = n
	}
	if v := q.Get("weeks"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, bferrors.New(bferrors.ErrCodeInvalidInput, "weeks must be an integer, got %q", v)
		}
		opts.Weeks = n
	}
	if v := q.Get("static"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, bferrors.New(bferrors.ErrCodeInvalidInput, "static must be a boolean, got %q", v)
		}
		opts.Static = b
	}
	return opts, nil
}

type errorBody struct {
	Error string        `json:"error"`
	Code  bferrors.Code `json:"code"`
}

func writeError(w http.ResponseWriter, err error) {
	code := bferrors.GetCode(err)
	if code == "" {
		code = bferrors.ErrCodeInternal
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(bferrors.HTTPStatus(err))
	_ = json.NewEncoder(w).Encode(errorBody{Error: bferrors.UserMessage(err), Code: code})
}
