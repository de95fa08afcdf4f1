// Package server exposes the conversion pipeline over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/places-geojson/internal/bookmark"
	"github.com/sells-group/places-geojson/internal/feature"
	"github.com/sells-group/places-geojson/internal/pipeline"
	"github.com/sells-group/places-geojson/pkg/google"
)

const defaultMaxBodyBytes = 10 << 20

// GeoJSONContentType is the media type of conversion responses.
const GeoJSONContentType = "application/geo+json"

// Options configures the HTTP API.
type Options struct {
	Concurrency    int
	SkipUnresolved bool // default when the request does not set skip_unresolved
	Encoding       string
	CORSOrigins    []string
	MaxBodyBytes   int64
}

// Server serves CSV → GeoJSON conversions.
type Server struct {
	client google.Client
	opts   Options
}

// New creates a Server that resolves places through client.
func New(client google.Client, opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	return &Server{client: client, opts: opts}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"X-Run-Id", "X-Skipped-Count"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/v1/convert", s.handleConvert)

	return r
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	log := zap.L().With(zap.String("request_id", middleware.GetReqID(r.Context())))

	skip := s.opts.SkipUnresolved
	if raw := r.URL.Query().Get("skip_unresolved"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "skip_unresolved must be a boolean")
			return
		}
		skip = v
	}

	encoding := s.opts.Encoding
	if e := r.URL.Query().Get("encoding"); e != "" {
		encoding = e
	}

	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	records, err := bookmark.Read(r.Context(), body, bookmark.ReadOptions{Encoding: encoding})
	if err != nil {
		log.Warn("server: read csv", zap.Error(err))
		writeError(w, readStatus(err), err.Error())
		return
	}

	p := pipeline.New(s.client,
		pipeline.WithConcurrency(s.opts.Concurrency),
		pipeline.WithSkipUnresolved(skip),
	)
	res, err := p.Run(r.Context(), records)
	if err != nil {
		log.Error("server: convert", zap.Error(err))
		writeError(w, runStatus(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", GeoJSONContentType)
	w.Header().Set("X-Run-Id", res.RunID)
	w.Header().Set("X-Skipped-Count", strconv.Itoa(len(res.Skipped)))
	w.WriteHeader(http.StatusOK)
	if err := feature.Encode(w, res.Collection, false); err != nil {
		log.Error("server: write response", zap.Error(err))
	}
}

func readStatus(err error) int {
	var tooLarge *http.MaxBytesError
	var malformed *bookmark.MalformedRecordError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &malformed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func runStatus(err error) int {
	var missing *pipeline.MissingIdentifierError
	var lookup *google.LookupError
	switch {
	case errors.As(err, &missing):
		return http.StatusUnprocessableEntity
	case errors.As(err, &lookup):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
