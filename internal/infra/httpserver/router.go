package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalysis "github.com/bryanwahyu/resume-analyzer/internal/application/analysis"
	appdocs "github.com/bryanwahyu/resume-analyzer/internal/application/documents"
	"github.com/bryanwahyu/resume-analyzer/internal/config"
	domain "github.com/bryanwahyu/resume-analyzer/internal/domain/analysis"
	"github.com/bryanwahyu/resume-analyzer/internal/domain/document"
	"github.com/bryanwahyu/resume-analyzer/internal/middleware"
)

// PersistedHeader is set to "false" when an analysis succeeded but could not be stored.
const PersistedHeader = "X-Analysis-Persisted"

type Options struct {
	MaxUploadBytes int64
	AllowedOrigins []string
	Logger         *slog.Logger
	Metrics        *middleware.Metrics
	Health         map[string]middleware.HealthChecker
}

type Router struct {
	analysisSvc *appanalysis.Service
	docsSvc     *appdocs.Service
	maxBytes    int64
	log         *slog.Logger
}

func NewRouter(analysisSvc *appanalysis.Service, docsSvc *appdocs.Service, opts Options) http.Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = config.DefaultMaxUploadBytes
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	r := &Router{
		analysisSvc: analysisSvc,
		docsSvc:     docsSvc,
		maxBytes:    opts.MaxUploadBytes,
		log:         opts.Logger,
	}
	mux := chi.NewRouter()

	mux.Use(middleware.Logging(opts.Logger))
	if opts.Metrics != nil {
		mux.Use(opts.Metrics.Middleware)
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{PersistedHeader, middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	mux.Get("/health", middleware.HealthHandler(opts.Health))
	mux.Get("/healthz", middleware.LivenessHandler)
	mux.Get("/readyz", middleware.ReadinessHandler)
	if opts.Metrics != nil {
		mux.Handle("/metrics", opts.Metrics.Handler())
	}

	mux.Post("/extract-pdf", r.wrap(r.handleExtract))
	mux.Post("/analyze", r.wrap(r.handleAnalyze))
	mux.Get("/analyses", r.wrap(r.handleRecent))

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			code := statusFor(err)
			var xe *document.ExtractionError
			switch {
			case code >= http.StatusInternalServerError:
				r.log.Error("request failed",
					"request_id", middleware.RequestIDFromContext(req.Context()),
					"path", req.URL.Path,
					"status", code,
					"err", err)
			case errors.As(err, &xe):
				r.log.Warn("document rejected",
					"request_id", middleware.RequestIDFromContext(req.Context()),
					"err", err)
			}
			writeJSON(w, code, payloadFor(err))
		}
	}
}

// statusFor maps the error taxonomy to HTTP status codes.
func statusFor(err error) int {
	var (
		mbe *http.MaxBytesError
		ve  *domain.ValidationError
		xe  *document.ExtractionError
		ne  *domain.NormalizationError
		te  *domain.TransportError
		se  *domain.StorageError
	)
	switch {
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &ve),
		errors.Is(err, document.ErrEmptyContent),
		errors.As(err, &xe):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.As(err, &ne), errors.As(err, &te):
		return http.StatusBadGateway
	case errors.As(err, &se):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func payloadFor(err error) domain.ErrorPayload {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return domain.ErrorPayload{Error: fmt.Sprintf("Request body exceeds the %d byte limit", mbe.Limit)}
	}
	return domain.Payload(err)
}

// POST /extract-pdf (multipart, field "file")
func (r *Router) handleExtract(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxBytes)

	file, header, err := req.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return err
		}
		return &domain.ValidationError{Field: "file", Message: "No file provided"}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	text, err := r.docsSvc.Extract(req.Context(), header.Filename, data)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
	return nil
}

// POST /analyze
// Body: {"resume_text": "...", "job_description": "..."}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxBytes)

	var body domain.Request
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return err
		}
		return &domain.ValidationError{Message: "Request body must be a JSON object"}
	}

	result, err := r.analysisSvc.Analyze(req.Context(), body)
	if err != nil {
		return err
	}

	if _, err := r.analysisSvc.Record(req.Context(), body, result); err != nil {
		r.log.Error("analysis not persisted",
			"request_id", middleware.RequestIDFromContext(req.Context()),
			"err", err)
		w.Header().Set(PersistedHeader, "false")
	}

	writeJSON(w, http.StatusOK, result)
	return nil
}

// GET /analyses?limit=10
func (r *Router) handleRecent(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.analysisSvc.Recent(req.Context(), limit)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
