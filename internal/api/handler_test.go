package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/daangn/permalink"
	"github.com/daangn/permalink/internal/config"
	"github.com/daangn/permalink/internal/logger"
	"github.com/daangn/permalink/testutil"
)

// setupTestServer returns the fully wrapped handler of a server built from
// the default config.
func setupTestServer(t *testing.T) http.Handler {
	t.Helper()

	s, err := NewServer(config.Default(), logger.Nop(), "")
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return s.Handler()
}

func doRequest(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			if err := json.NewEncoder(&buf).Encode(b); err != nil {
				t.Fatalf("failed to encode body: %v", err)
			}
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func query(path, key, value string) string {
	return path + "?" + url.Values{key: {value}}.Encode()
}

func TestHealth(t *testing.T) {
	h := setupTestServer(t)

	rec := doRequest(t, h, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get(HeaderRequestID) == "" {
		t.Error("expected a generated request id header")
	}
}

func TestRequestID_Propagated(t *testing.T) {
	h := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "client-supplied")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get(HeaderRequestID); got != "client-supplied" {
		t.Errorf("request id = %q, want client-supplied", got)
	}
}

func TestParse(t *testing.T) {
	h := setupTestServer(t)

	rec := doRequest(t, h, http.MethodGet, query("/api/v1/parse", "url", testutil.FullPermalink), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	resp := decodeBody[struct {
		Input     string `json:"input"`
		Permalink struct {
			Country     string  `json:"country"`
			Language    string  `json:"language"`
			ServiceType string  `json:"service_type"`
			Title       *string `json:"title"`
			ID          string  `json:"id"`
		} `json:"permalink"`
		Normalized string `json:"normalized"`
	}](t, rec)

	if resp.Permalink.Country != "kr" || resp.Permalink.Language != "ko" {
		t.Errorf("country/language = %s/%s", resp.Permalink.Country, resp.Permalink.Language)
	}
	if resp.Permalink.Title == nil || *resp.Permalink.Title != testutil.KoreanTitle {
		t.Errorf("title = %v", resp.Permalink.Title)
	}
	if resp.Permalink.ID != "id1018769995" {
		t.Errorf("id = %q", resp.Permalink.ID)
	}
	if resp.Normalized != testutil.NormalizedKR {
		t.Errorf("normalized = %q", resp.Normalized)
	}
}

func TestParse_Errors(t *testing.T) {
	h := setupTestServer(t)

	tests := []struct {
		name   string
		target string
		status int
		kind   string
	}{
		{"missing url", "/api/v1/parse", http.StatusBadRequest, KindValidation},
		{"relative url", query("/api/v1/parse", "url", testutil.RelativeURL), http.StatusBadRequest, permalink.KindInvalidURL},
		{"foreign url", query("/api/v1/parse", "url", testutil.ForeignURL), http.StatusUnprocessableEntity, permalink.KindInvalidPermalink},
		{"unknown country", query("/api/v1/parse", "url", testutil.UnknownCountryURL), http.StatusUnprocessableEntity, permalink.KindUnknownCountry},
		{"normalize missing url", "/api/v1/normalize", http.StatusBadRequest, KindValidation},
		{"normalize foreign", query("/api/v1/normalize", "url", testutil.ForeignURL), http.StatusUnprocessableEntity, permalink.KindInvalidPermalink},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodGet, tt.target, nil)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			resp := decodeBody[ErrorResponse](t, rec)
			if resp.Kind != tt.kind {
				t.Errorf("kind = %q, want %q", resp.Kind, tt.kind)
			}
			if resp.Error == "" {
				t.Error("expected error message")
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	h := setupTestServer(t)

	rec := doRequest(t, h, http.MethodGet, query("/api/v1/normalize", "url", testutil.USBikePermalink), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp := decodeBody[NormalizeResponse](t, rec); resp.Normalized != testutil.USBikeNormalized {
		t.Errorf("normalized = %q", resp.Normalized)
	}
}

func TestCanonicalize(t *testing.T) {
	h := setupTestServer(t)

	override := "Red Bike!"
	tests := []struct {
		name     string
		body     CanonicalizeRequest
		expected string
	}{
		{"title from url", CanonicalizeRequest{URL: testutil.FullPermalink}, testutil.CanonicalKR},
		{"explicit title", CanonicalizeRequest{URL: testutil.USBikePermalink, Title: &override}, testutil.USBikeCanonicalNew},
		{"korean title", CanonicalizeRequest{URL: testutil.IDOnlyPermalink, Title: ptr("당근마켓 대한민국 1등 동네 앱")}, testutil.CanonicalKR},
		{"empty title", CanonicalizeRequest{URL: testutil.FullPermalink, Title: ptr("")}, testutil.IDOnlyPermalink},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, "/api/v1/canonicalize", tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			if resp := decodeBody[CanonicalizeResponse](t, rec); resp.Canonical != tt.expected {
				t.Errorf("canonical = %q, want %q", resp.Canonical, tt.expected)
			}
		})
	}
}

func TestCanonicalize_BadRequests(t *testing.T) {
	h := setupTestServer(t)

	tests := []struct {
		name   string
		body   any
		status int
		kind   string
	}{
		{"invalid json", "{not json", http.StatusBadRequest, KindValidation},
		{"unknown field", `{"url":"x","slug":"y"}`, http.StatusBadRequest, KindValidation},
		{"missing url", CanonicalizeRequest{}, http.StatusBadRequest, KindValidation},
		{"title too long", CanonicalizeRequest{URL: testutil.IDOnlyPermalink, Title: ptr(strings.Repeat("a", 1025))}, http.StatusBadRequest, KindValidation},
		{"foreign url", CanonicalizeRequest{URL: testutil.ForeignURL}, http.StatusUnprocessableEntity, permalink.KindInvalidPermalink},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, "/api/v1/canonicalize", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			if resp := decodeBody[ErrorResponse](t, rec); resp.Kind != tt.kind {
				t.Errorf("kind = %q, want %q", resp.Kind, tt.kind)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	h := setupTestServer(t)

	rec := doRequest(t, h, http.MethodGet, query("/api/v1/slugify", "text", "Hello, World!"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp := decodeBody[SlugifyResponse](t, rec); resp.Slug != "hello-world" {
		t.Errorf("slug = %q", resp.Slug)
	}
}

func TestBatch(t *testing.T) {
	h := setupTestServer(t)

	body := map[string]any{
		"items": []map[string]string{
			{"url": testutil.FullPermalink},
			{"url": testutil.ForeignURL},
			{"url": testutil.USBikePermalink, "title": "Red Bike!"},
		},
	}

	rec := doRequest(t, h, http.MethodPost, "/api/v1/batch", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	resp := decodeBody[struct {
		Results []struct {
			Input     string `json:"input"`
			Canonical string `json:"canonical"`
			Kind      string `json:"kind"`
		} `json:"results"`
		Summary struct {
			Total  int `json:"total"`
			OK     int `json:"ok"`
			Failed int `json:"failed"`
		} `json:"summary"`
	}](t, rec)

	if len(resp.Results) != 3 {
		t.Fatalf("got %d results", len(resp.Results))
	}
	if resp.Results[0].Canonical != testutil.CanonicalKR {
		t.Errorf("results[0].canonical = %q", resp.Results[0].Canonical)
	}
	if resp.Results[1].Kind != permalink.KindInvalidPermalink {
		t.Errorf("results[1].kind = %q", resp.Results[1].Kind)
	}
	if resp.Results[2].Canonical != testutil.USBikeCanonicalNew {
		t.Errorf("results[2].canonical = %q", resp.Results[2].Canonical)
	}
	if resp.Summary.Total != 3 || resp.Summary.OK != 2 || resp.Summary.Failed != 1 {
		t.Errorf("summary = %+v", resp.Summary)
	}
}

func TestBatch_Validation(t *testing.T) {
	h := setupTestServer(t)

	tests := []struct {
		name string
		body any
	}{
		{"no items", map[string]any{"items": []any{}}},
		{"missing items", map[string]any{}},
		{"item without url", map[string]any{"items": []map[string]string{{"title": "x"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, "/api/v1/batch", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCountries(t *testing.T) {
	h := setupTestServer(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/countries", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	resp := decodeBody[struct {
		Countries []struct {
			Code     string `json:"code"`
			Language string `json:"language"`
			Origin   string `json:"origin"`
		} `json:"countries"`
		Origins []struct {
			Origin  string `json:"origin"`
			Country string `json:"country"`
		} `json:"origins"`
		Neutral string `json:"neutral_origin"`
	}](t, rec)

	if len(resp.Countries) != 5 {
		t.Fatalf("got %d countries", len(resp.Countries))
	}
	if c := resp.Countries[2]; c.Code != "kr" || c.Language != "ko" || c.Origin != "https://www.daangn.com" {
		t.Errorf("countries[2] = %+v", c)
	}
	if len(resp.Origins) != 7 {
		t.Errorf("got %d origins", len(resp.Origins))
	}
	if resp.Neutral != "https://www.karrotmarket.com" {
		t.Errorf("neutral = %q", resp.Neutral)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := setupTestServer(t)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/parse", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestCors_Preflight(t *testing.T) {
	h := setupTestServer(t)

	// httptest requests target example.com
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/canonicalize", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Errorf("allow-origin = %q", got)
	}
}

func TestCors_AllowedOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed string
		origin  string
		want    string
	}{
		{"no origin header", "", "", ""},
		{"same host by default", "", "http://example.com", "http://example.com"},
		{"other host by default", "", "https://evil.example", ""},
		{"configured origin", "https://www.daangn.com", "https://www.daangn.com", "https://www.daangn.com"},
		{"configured keeps same host", "https://www.daangn.com", "http://example.com", "http://example.com"},
		{"not configured", "https://www.daangn.com", "https://evil.example", ""},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/countries", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			Cors(tt.allowed, next).ServeHTTP(rec, req)

			if rec.Code != http.StatusNoContent {
				t.Errorf("status = %d", rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("allow-origin = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := setupTestServer(t)

	doRequest(t, h, http.MethodGet, query("/api/v1/parse", "url", testutil.FullPermalink), nil)

	rec := doRequest(t, h, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{"permalink_operations_total", "permalink_http_request_duration_seconds"} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}

func TestErrorResponse_Internal(t *testing.T) {
	status, body := errorResponse(errInternalForTest)
	if status != http.StatusInternalServerError {
		t.Errorf("status = %d", status)
	}
	if body.Kind != permalink.KindInternal || body.Error != "internal error" {
		t.Errorf("body = %+v", body)
	}
}

var errInternalForTest = &json.UnsupportedValueError{Str: "boom"}

func ptr[T any](v T) *T {
	return &v
}
