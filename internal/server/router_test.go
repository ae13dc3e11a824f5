package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/carbontrack/internal/cache"
	"github.com/sadopc/carbontrack/internal/carbon"
	"github.com/sadopc/carbontrack/internal/config"
	"github.com/sadopc/carbontrack/internal/store"
)

func newRouterUnderTest(t *testing.T) http.Handler {
	t.Helper()
	s, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := carbon.NewService(s, cache.NewMemory(), carbon.Options{CacheTTL: time.Minute}, logger)
	return newRouterWithService(t, svc)
}

func newRouterWithService(t *testing.T, svc EmissionService) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := NewMetrics()
	return NewEngine(config.Default(), NewHandler(svc, metrics, logger), metrics, logger)
}

func performRequest(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func logEmission(t *testing.T, h http.Handler, body string) map[string]any {
	t.Helper()
	rec := performRequest(h, http.MethodPost, "/api/log-emission", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody(t, rec)
}

func TestRouter_Health(t *testing.T) {
	rec := performRequest(newRouterUnderTest(t), http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "healthy", body["status"])
	require.Equal(t, "1.0.0", body["version"])
	require.NotEmpty(t, body["timestamp"])
}

func TestRouter_ActivityTypes(t *testing.T) {
	rec := performRequest(newRouterUnderTest(t), http.MethodGet, "/api/activity-types", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got carbon.Catalog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Contains(t, got.Types, "electricity")
	require.Equal(t, 0.92, got.Factors["electricity"])
}

func TestRouter_LogEmission(t *testing.T) {
	h := newRouterUnderTest(t)
	body := logEmission(t, h, `{"type":"car","category":"transport","value":"40","date":"2024-06-10","notes":"commute"}`)
	require.Equal(t, true, body["success"])
	require.Equal(t, 8.4, body["emissions_kg_co2"])

	entry := body["entry"].(map[string]any)
	require.Equal(t, "car", entry["type"])
	require.Equal(t, "commute", entry["notes"])
	require.NotEmpty(t, entry["id"])
}

func TestRouter_LogEmissionValidation(t *testing.T) {
	h := newRouterUnderTest(t)
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown type", `{"type":"rocket","value":1}`, "Invalid activity type"},
		{"negative", `{"type":"car","value":-3}`, "Value must be positive"},
		{"non numeric", `{"type":"car","value":"lots"}`, "Invalid input"},
		{"malformed", `{"type":`, "Invalid input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := performRequest(h, http.MethodPost, "/api/log-emission", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeBody(t, rec)
			require.Contains(t, body["error"], tt.want)
			require.Equal(t, "invalid_input", body["code"])
		})
	}
}

func TestRouter_GetEmissionsFiltersAndSorts(t *testing.T) {
	h := newRouterUnderTest(t)
	today := time.Now().UTC()
	logEmission(t, h, `{"type":"car","value":10,"date":"`+today.AddDate(0, 0, -1).Format("2006-01-02")+`"}`)
	logEmission(t, h, `{"type":"bus","value":10,"date":"`+today.AddDate(0, 0, -20).Format("2006-01-02")+`"}`)
	logEmission(t, h, `{"type":"car","value":10,"date":"`+today.AddDate(-2, 0, 0).Format("2006-01-02")+`"}`)

	tests := []struct {
		query string
		count float64
	}{
		{"", 3},
		{"?period=all", 3},
		{"?period=week", 1},
		{"?period=month", 2},
		{"?period=year", 2},
		{"?period=bogus", 3},
		{"?type=car", 2},
		{"?period=month&type=bus", 1},
	}
	for _, tt := range tests {
		rec := performRequest(h, http.MethodGet, "/api/get-emissions"+tt.query, "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		require.Equal(t, tt.count, body["count"], tt.query)
	}

	rec := performRequest(h, http.MethodGet, "/api/get-emissions", "")
	records := decodeBody(t, rec)["records"].([]any)
	first := records[0].(map[string]any)["date"].(string)
	last := records[2].(map[string]any)["date"].(string)
	require.Greater(t, first, last)
}

func TestRouter_SummaryAndRecommendations(t *testing.T) {
	h := newRouterUnderTest(t)

	rec := performRequest(h, http.MethodGet, "/api/get-summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Nil(t, body["top_contributor"])
	require.Equal(t, float64(0), body["total_records"])

	logEmission(t, h, `{"type":"meat","category":"food","value":2}`)
	logEmission(t, h, `{"type":"car","category":"transport","value":10}`)

	body = decodeBody(t, performRequest(h, http.MethodGet, "/api/get-summary", ""))
	require.Equal(t, "meat", body["top_contributor"])
	require.Equal(t, 56.1, body["total_emissions_kg"])
	require.Equal(t, float64(2), body["total_records"])

	body = decodeBody(t, performRequest(h, http.MethodGet, "/api/get-recommendations", ""))
	recs := body["recommendations"].([]any)
	require.Len(t, recs, 2)
	top := recs[0].(map[string]any)
	require.Equal(t, "meat", top["current_activity"])
	require.Equal(t, "Vegetarian Days", top["alternative"])
	require.Equal(t, 43.2, top["potential_savings_kg"])
}

func TestRouter_PredictEmissions(t *testing.T) {
	h := newRouterUnderTest(t)

	body := decodeBody(t, performRequest(h, http.MethodGet, "/api/predict-emissions?days=30", ""))
	require.Equal(t, false, body["success"])
	require.Equal(t, "Need at least 5 records to make predictions", body["message"])
	require.Empty(t, body["predictions"])

	for i := 1; i <= 5; i++ {
		day := time.Now().UTC().AddDate(0, 0, -i).Format("2006-01-02")
		logEmission(t, h, `{"type":"car","value":10,"date":"`+day+`"}`)
	}
	body = decodeBody(t, performRequest(h, http.MethodGet, "/api/predict-emissions?days=7", ""))
	require.Equal(t, true, body["success"])
	require.Equal(t, float64(7), body["days_ahead"])
	require.Len(t, body["predictions"], 7)

	rec := performRequest(h, http.MethodGet, "/api/predict-emissions?days=abc", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_DeleteEmission(t *testing.T) {
	h := newRouterUnderTest(t)
	body := logEmission(t, h, `{"type":"water","value":100}`)
	id := body["entry"].(map[string]any)["id"].(string)

	rec := performRequest(h, http.MethodDelete, "/api/delete-emission/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Emission record deleted", decodeBody(t, rec)["message"])

	rec = performRequest(h, http.MethodDelete, "/api/delete-emission/"+id, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "not_found", decodeBody(t, rec)["code"])
}

func TestRouter_ExportAndStats(t *testing.T) {
	h := newRouterUnderTest(t)
	logEmission(t, h, `{"type":"meat","value":1}`)
	logEmission(t, h, `{"type":"water","value":1}`)

	body := decodeBody(t, performRequest(h, http.MethodGet, "/api/export-data", ""))
	require.Len(t, body["data"], 2)

	body = decodeBody(t, performRequest(h, http.MethodGet, "/api/stats", ""))
	require.Equal(t, float64(2), body["total_records"])
	require.Equal(t, 27.34, body["total_emissions_kg"])
	require.Equal(t, 0.34, body["min_emission_kg"])
	require.Equal(t, float64(27), body["max_emission_kg"])
}

func TestRouter_NotFound(t *testing.T) {
	rec := performRequest(newRouterUnderTest(t), http.MethodGet, "/api/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "Endpoint not found", body["error"])
}

func TestRouter_CORSPreflight(t *testing.T) {
	h := newRouterUnderTest(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/log-emission", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)
}

func TestRouter_CORSUnlistedOrigin(t *testing.T) {
	h := newRouterUnderTest(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "Origin", rec.Header().Get("Vary"))
}

func TestCORSMiddlewareWildcard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(corsMiddleware([]string{"*"}))
	engine.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://anywhere.example")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_Metrics(t *testing.T) {
	h := newRouterUnderTest(t)
	logEmission(t, h, `{"type":"bus","value":10}`)

	rec := performRequest(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	text := rec.Body.String()
	require.True(t, strings.Contains(text, "carbontrack_http_requests_total"))
	require.True(t, strings.Contains(text, `carbontrack_emissions_logged_total{type="bus"} 1`))
}

type failingService struct {
	EmissionService
}

func (failingService) Summary(context.Context) (carbon.Summary, error) {
	return carbon.Summary{}, errors.New("disk on fire")
}

func TestRouter_InternalErrorHidesDetails(t *testing.T) {
	h := newRouterWithService(t, failingService{})
	rec := performRequest(h, http.MethodGet, "/api/get-summary", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "Internal server error", body["error"])
	require.Equal(t, "internal_error", body["code"])
}
