package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/daangn/permalink"
	"github.com/daangn/permalink/country"
	"github.com/daangn/permalink/internal/batch"
	"github.com/daangn/permalink/internal/logger"
	"github.com/daangn/permalink/internal/metrics"
	"github.com/daangn/permalink/slug"
	"github.com/go-playground/validator/v10"
)

// Request body limit for POST endpoints.
const maxBodyBytes = 1 << 20

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	log         logger.Logger
	validate    *validator.Validate
	concurrency int
}

// NewHandler creates a new handler. concurrency bounds batch workers.
func NewHandler(log logger.Logger, concurrency int) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Handler{
		log:         log,
		validate:    validator.New(),
		concurrency: concurrency,
	}
}

// RegisterRoutes sets up all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Health)

	mux.HandleFunc("GET /api/v1/parse", h.Parse)
	mux.HandleFunc("GET /api/v1/normalize", h.Normalize)
	mux.HandleFunc("POST /api/v1/canonicalize", h.Canonicalize)
	mux.HandleFunc("GET /api/v1/slugify", h.Slugify)
	mux.HandleFunc("POST /api/v1/batch", h.Batch)
	mux.HandleFunc("GET /api/v1/countries", h.Countries)
}

// --- Request and response types ---

type ParseResponse struct {
	Input      string              `json:"input"`
	Permalink  permalink.Permalink `json:"permalink"`
	Normalized string              `json:"normalized"`
}

type NormalizeResponse struct {
	Input      string `json:"input"`
	Normalized string `json:"normalized"`
}

// CanonicalizeRequest is the body of POST /api/v1/canonicalize. A nil
// Title falls back to the title in the URL.
type CanonicalizeRequest struct {
	URL   string  `json:"url" validate:"required,max=4096"`
	Title *string `json:"title,omitempty" validate:"omitempty,max=1024"`
}

type CanonicalizeResponse struct {
	Input     string `json:"input"`
	Canonical string `json:"canonical"`
}

type SlugifyResponse struct {
	Input string `json:"input"`
	Slug  string `json:"slug"`
}

type BatchRequest struct {
	Items []batch.Item `json:"items" validate:"required,min=1,max=1000,dive"`
}

type BatchResponse struct {
	Results []batch.Result `json:"results"`
	Summary batch.Summary  `json:"summary"`
}

// CountryInfo is one row of the registry.
type CountryInfo struct {
	Code     country.Country  `json:"code"`
	Language country.Language `json:"language"`
	Origin   string           `json:"origin"`
}

type CountriesResponse struct {
	Countries []CountryInfo             `json:"countries"`
	Origins   []country.WellKnownOrigin `json:"origins"`
	Neutral   string                    `json:"neutral_origin"`
}

// --- Operations shared by HTTP and WebSocket ---

func (h *Handler) doParse(rawURL string) (ParseResponse, error) {
	p, err := permalink.Parse(rawURL)
	metrics.ObserveOperation("parse", permalink.ErrorKind(err))
	if err != nil {
		return ParseResponse{}, err
	}
	return ParseResponse{Input: rawURL, Permalink: p, Normalized: p.Normalize()}, nil
}

func (h *Handler) doNormalize(rawURL string) (NormalizeResponse, error) {
	p, err := permalink.Parse(rawURL)
	metrics.ObserveOperation("normalize", permalink.ErrorKind(err))
	if err != nil {
		return NormalizeResponse{}, err
	}
	return NormalizeResponse{Input: rawURL, Normalized: p.Normalize()}, nil
}

func (h *Handler) doCanonicalize(req CanonicalizeRequest) (CanonicalizeResponse, error) {
	if err := h.validate.Struct(req); err != nil {
		return CanonicalizeResponse{}, err
	}

	p, err := permalink.Parse(req.URL)
	metrics.ObserveOperation("canonicalize", permalink.ErrorKind(err))
	if err != nil {
		return CanonicalizeResponse{}, err
	}

	var title string
	if req.Title != nil {
		title = *req.Title
	} else {
		title, _ = p.Title()
	}
	return CanonicalizeResponse{Input: req.URL, Canonical: p.Canonicalize(title)}, nil
}

func (h *Handler) doSlugify(text string) SlugifyResponse {
	metrics.ObserveOperation("slugify", "")
	return SlugifyResponse{Input: text, Slug: slug.Slugify(text)}
}

func (h *Handler) doBatch(ctx context.Context, req BatchRequest) (BatchResponse, error) {
	if err := h.validate.Struct(req); err != nil {
		return BatchResponse{}, err
	}

	results, err := batch.Run(ctx, req.Items, h.concurrency)
	if err != nil {
		return BatchResponse{}, err
	}
	return BatchResponse{Results: results, Summary: batch.Summarize(results)}, nil
}

func countries() CountriesResponse {
	resp := CountriesResponse{
		Origins: country.WellKnownOrigins(),
		Neutral: country.NeutralOrigin,
	}
	for _, c := range country.All() {
		resp.Countries = append(resp.Countries, CountryInfo{
			Code:     c,
			Language: c.Language(),
			Origin:   c.Origin(),
		})
	}
	return resp
}

// --- HTTP handlers ---

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Parse returns the parsed record for ?url=.
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		BadRequest(w, "url query parameter is required")
		return
	}

	resp, err := h.doParse(rawURL)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}

// Normalize returns the country-neutral short form of ?url=.
func (h *Handler) Normalize(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		BadRequest(w, "url query parameter is required")
		return
	}

	resp, err := h.doNormalize(rawURL)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}

// Canonicalize returns the branded URL for a {url, title} body.
func (h *Handler) Canonicalize(w http.ResponseWriter, r *http.Request) {
	var req CanonicalizeRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.doCanonicalize(req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}

// Slugify returns the slug of ?text=. An empty text yields an empty slug.
func (h *Handler) Slugify(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, h.doSlugify(r.URL.Query().Get("text")))
}

// Batch resolves many {url, title} items. Per-item failures are reported
// in the results, not as an HTTP error.
func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.doBatch(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}

// Countries returns the country registry and well-known origins.
func (h *Handler) Countries(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, countries())
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		BadRequest(w, "invalid JSON body")
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if status, _ := errorResponse(err); status >= http.StatusInternalServerError {
		h.log.Error("request failed",
			logger.String("request_id", RequestID(r.Context())),
			logger.Error(err),
		)
	}
	Error(w, err)
}
