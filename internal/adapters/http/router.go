package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/kirillkom/resume-router/internal/config"
	"github.com/kirillkom/resume-router/internal/core/domain"
	"github.com/kirillkom/resume-router/internal/core/ports"
	"github.com/kirillkom/resume-router/internal/observability/metrics"
)

const (
	serviceName        = "api"
	multipartOverhead  = 1 << 20
	multipartMaxMemory = 8 << 20
	acceptedMessage    = "Resume received, processing started"
)

type Router struct {
	submitter ports.DocumentSubmitter
	previewer ports.ClassificationPreviewer
	runs      ports.RunReader
	logger    *slog.Logger

	httpMetrics    *metrics.HTTPServerMetrics
	metricsHandler http.Handler
	openAPI        *openapi3.T

	maxBodyBytes     int64
	rateLimitRPS     float64
	rateLimitBurst   int
	maxInFlight      int
	backpressureWait time.Duration
}

type Option func(*Router)

func WithLogger(logger *slog.Logger) Option {
	return func(rt *Router) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// WithMetrics instruments every request and serves handler on GET /metrics.
func WithMetrics(m *metrics.HTTPServerMetrics, handler http.Handler) Option {
	return func(rt *Router) {
		rt.httpMetrics = m
		rt.metricsHandler = handler
	}
}

func WithOpenAPI(doc *openapi3.T) Option {
	return func(rt *Router) {
		rt.openAPI = doc
	}
}

func NewRouter(
	cfg config.Config,
	submitter ports.DocumentSubmitter,
	previewer ports.ClassificationPreviewer,
	runs ports.RunReader,
	opts ...Option,
) *Router {
	rt := &Router{
		submitter:        submitter,
		previewer:        previewer,
		runs:             runs,
		logger:           slog.Default(),
		maxBodyBytes:     cfg.MaxFileSize + multipartOverhead,
		rateLimitRPS:     cfg.APIRateLimitRPS,
		rateLimitBurst:   cfg.APIRateLimitBurst,
		maxInFlight:      cfg.APIMaxInFlight,
		backpressureWait: cfg.APIBackpressureWait,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", rt.health)
	mux.HandleFunc("POST /webhook/document", rt.submitDocument)
	mux.HandleFunc("POST /test/classify", rt.previewClassification)
	mux.HandleFunc("GET /runs", rt.listRuns)
	mux.HandleFunc("GET /runs/{id}", rt.getRun)
	mux.HandleFunc("GET /openapi.json", rt.openAPIDocument)
	if rt.metricsHandler != nil {
		mux.Handle("GET /metrics", rt.metricsHandler)
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.maxInFlight, rt.backpressureWait)
	handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	handler = recoverMiddleware(rt.logger, handler)
	if rt.httpMetrics != nil {
		handler = rt.httpMetrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Resume router is running",
	})
}

func (rt *Router) submitDocument(w http.ResponseWriter, r *http.Request) {
	upload, cleanup, err := rt.readUpload(w, r)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	defer cleanup()

	submission, err := rt.submitter.Submit(r.Context(), upload)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": acceptedMessage,
		"run_id":  submission.RunID,
	})
}

func (rt *Router) previewClassification(w http.ResponseWriter, r *http.Request) {
	upload, cleanup, err := rt.readUpload(w, r)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	defer cleanup()

	preview, err := rt.previewer.Preview(r.Context(), upload)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func (rt *Router) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	runs, err := rt.runs.ListRuns(r.Context(), limit)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (rt *Router) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := rt.runs.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (rt *Router) openAPIDocument(w http.ResponseWriter, _ *http.Request) {
	if rt.openAPI == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "api description is not available"})
		return
	}
	writeJSON(w, http.StatusOK, rt.openAPI)
}

// readUpload caps the request body and returns the multipart "file" part.
// cleanup closes the part and removes any temp files the multipart reader spilled to disk.
func (rt *Router) readUpload(w http.ResponseWriter, r *http.Request) (domain.Upload, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.maxBodyBytes)
	if err := r.ParseMultipartForm(multipartMaxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.Upload{}, nil, domain.WrapError(domain.ErrRejectedInput, "read upload",
				fmt.Errorf("file too large: request body exceeds %d bytes", tooLarge.Limit))
		}
		return domain.Upload{}, nil, domain.WrapError(domain.ErrRejectedInput, "read upload",
			fmt.Errorf("invalid multipart body: %w", err))
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		removeMultipartFiles(r.MultipartForm)
		return domain.Upload{}, nil, domain.WrapError(domain.ErrRejectedInput, "read upload",
			errors.New("multipart field 'file' is required"))
	}

	cleanup := func() {
		_ = file.Close()
		removeMultipartFiles(r.MultipartForm)
	}
	return domain.Upload{
		Filename: header.Filename,
		Size:     header.Size,
		Body:     file,
	}, cleanup, nil
}

func removeMultipartFiles(form *multipart.Form) {
	if form != nil {
		_ = form.RemoveAll()
	}
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		rt.logger.Error("http_request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}
	writeJSON(w, status, map[string]string{"error": publicErrorMessage(err, status)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
