package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sadopc/carbontrack/internal/carbon"
	apperrors "github.com/sadopc/carbontrack/pkg/errors"
)

const (
	apiVersion     = "1.0.0"
	maxPredictDays = 365
)

// EmissionService is the domain surface the handlers depend on.
type EmissionService interface {
	ActivityTypes() carbon.Catalog
	LogEmission(ctx context.Context, in carbon.NewEmission) (carbon.Record, error)
	ListEmissions(ctx context.Context, period carbon.Period, activity string) (carbon.EmissionList, error)
	Summary(ctx context.Context) (carbon.Summary, error)
	Predict(ctx context.Context, days int) (carbon.Forecast, error)
	Recommendations(ctx context.Context) ([]carbon.Recommendation, error)
	DeleteEmission(ctx context.Context, id string) error
	Export(ctx context.Context) ([]carbon.Record, error)
	Statistics(ctx context.Context) (carbon.Statistics, error)
}

var _ EmissionService = (*carbon.Service)(nil)

// Handler wires the HTTP transport to the emission service.
type Handler struct {
	svc     EmissionService
	metrics *Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewHandler(svc EmissionService, metrics *Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		svc:     svc,
		metrics: metrics,
		logger:  logger.With("component", "http.handler"),
		now:     time.Now,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": h.now().Format(time.RFC3339),
		"version":   apiVersion,
	})
}

func (h *Handler) ActivityTypes(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ActivityTypes())
}

// flexFloat accepts a JSON number or a numeric string.
type flexFloat struct {
	value float64
	set   bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("value %q is not a number", s)
		}
		f.value, f.set = v, true
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("value is not a number")
	}
	f.value, f.set = v, true
	return nil
}

type logEmissionRequest struct {
	Type     string    `json:"type"`
	Category string    `json:"category"`
	Value    flexFloat `json:"value"`
	Date     string    `json:"date"`
	Notes    string    `json:"notes"`
}

func (h *Handler) LogEmission(c *gin.Context) {
	var req logEmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "Invalid input: "+err.Error(), err))
		return
	}
	if math.IsNaN(req.Value.value) || math.IsInf(req.Value.value, 0) {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "Invalid input: value must be finite", nil))
		return
	}

	rec, err := h.svc.LogEmission(c.Request.Context(), carbon.NewEmission{
		Type:     req.Type,
		Category: req.Category,
		Value:    req.Value.value,
		Date:     req.Date,
		Notes:    req.Notes,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.metrics.recordLogged(rec.Type, rec.Emissions)

	c.JSON(http.StatusCreated, gin.H{
		"success":          true,
		"emissions_kg_co2": math.Round(rec.Emissions*100) / 100,
		"entry":            rec,
	})
}

func (h *Handler) GetEmissions(c *gin.Context) {
	period := carbon.ParsePeriod(c.Query("period"))
	list, err := h.svc.ListEmissions(c.Request.Context(), period, c.Query("type"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetSummary(c *gin.Context) {
	sum, err := h.svc.Summary(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *Handler) PredictEmissions(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > maxPredictDays {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput,
				fmt.Sprintf("days must be an integer between 1 and %d", maxPredictDays), err))
			return
		}
		days = v
	}
	fc, err := h.svc.Predict(c.Request.Context(), days)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, fc)
}

func (h *Handler) GetRecommendations(c *gin.Context) {
	recs, err := h.svc.Recommendations(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

func (h *Handler) DeleteEmission(c *gin.Context) {
	if err := h.svc.DeleteEmission(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	h.metrics.recordDeleted()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Emission record deleted",
	})
}

func (h *Handler) ExportData(c *gin.Context) {
	records, err := h.svc.Export(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Statistics(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) NotFound(c *gin.Context) {
	abortWithError(c, NewHTTPError(http.StatusNotFound, apperrors.CodeNotFound, "Endpoint not found", nil))
}
