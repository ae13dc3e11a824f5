package carbon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/sadopc/carbontrack/pkg/errors"
)

const (
	keySummary         = "summary"
	keyRecommendations = "recommendations"
	maxRecommendations = 3
)

// Options tunes a Service.
type Options struct {
	MinRecords  int
	DefaultDays int
	CacheTTL    time.Duration
	Now         func() time.Time
}

// Service implements the emission tracking use cases on top of a Repository.
type Service struct {
	repo   Repository
	cache  Cache
	opts   Options
	logger *slog.Logger
}

// NewService constructs a Service. cache may be nil.
func NewService(repo Repository, cache Cache, opts Options, logger *slog.Logger) *Service {
	if opts.MinRecords <= 0 {
		opts.MinRecords = 5
	}
	if opts.DefaultDays <= 0 {
		opts.DefaultDays = 30
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, opts: opts, logger: logger.With("component", "carbon")}
}

func (s *Service) ActivityTypes() Catalog {
	return NewCatalog()
}

// LogEmission validates input, computes emissions and stores a new record.
func (s *Service) LogEmission(ctx context.Context, in NewEmission) (Record, error) {
	factor, ok := Factor(in.Type)
	if !ok {
		return Record{}, apperrors.Wrap(apperrors.CodeInvalidInput,
			fmt.Sprintf("Invalid activity type. Valid types: [%s]", strings.Join(activityOrder, ", ")), nil)
	}
	if in.Value < 0 {
		return Record{}, apperrors.Wrap(apperrors.CodeInvalidInput, "Value must be positive", nil)
	}

	now := s.opts.Now()
	date := now
	if strings.TrimSpace(in.Date) != "" {
		parsed, err := ParseDate(in.Date)
		if err != nil {
			return Record{}, apperrors.Wrap(apperrors.CodeInvalidInput, "Invalid input: date", err)
		}
		date = parsed
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = DefaultCategory
	}

	rec := Record{
		ID:        uuid.NewString(),
		Type:      in.Type,
		Category:  category,
		Value:     in.Value,
		Date:      date,
		Emissions: in.Value * factor,
		Notes:     in.Notes,
		CreatedAt: now.UTC(),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return Record{}, apperrors.Wrap(apperrors.CodeStorage, "store emission", err)
	}
	s.invalidate(ctx)
	s.logger.Info("emission logged", "id", rec.ID, "type", rec.Type, "emissions", round2(rec.Emissions))
	return rec, nil
}

// ListEmissions returns records in period, optionally restricted to one type.
func (s *Service) ListEmissions(ctx context.Context, period Period, activity string) (EmissionList, error) {
	f := Filter{Type: activity}
	if cutoff, ok := period.Cutoff(s.opts.Now()); ok {
		f.After = &cutoff
	}
	records, err := s.repo.List(ctx, f)
	if err != nil {
		return EmissionList{}, apperrors.Wrap(apperrors.CodeStorage, "list emissions", err)
	}

	var total float64
	for _, r := range records {
		total += r.Emissions
	}
	var avg float64
	if len(records) > 0 {
		avg = total / float64(len(records))
	}
	if records == nil {
		records = []Record{}
	}
	return EmissionList{
		TotalEmissionsKg:      round2(total),
		AverageDailyEmissions: round2(avg),
		Count:                 len(records),
		Records:               records,
	}, nil
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	if s.cached(ctx, keySummary, &sum) {
		return sum, nil
	}

	records, err := s.repo.List(ctx, Filter{})
	if err != nil {
		return Summary{}, apperrors.Wrap(apperrors.CodeStorage, "list emissions", err)
	}

	sum = Summary{ByCategory: map[string]float64{}, ByType: map[string]float64{}}
	months := make(map[string]struct{})
	var total float64
	for _, r := range records {
		total += r.Emissions
		sum.ByCategory[r.Category] += r.Emissions
		sum.ByType[r.Type] += r.Emissions
		months[r.Date.Format("2006-01")] = struct{}{}
	}
	if len(records) > 0 {
		top := rankTypes(sum.ByType)[0]
		sum.TopContributor = &top
	}
	for k, v := range sum.ByCategory {
		sum.ByCategory[k] = round2(v)
	}
	for k, v := range sum.ByType {
		sum.ByType[k] = round2(v)
	}
	sum.TotalEmissionsKg = round2(total)
	sum.MonthlyAverageKg = round2(total / float64(max(1, len(months))))
	sum.TotalRecords = len(records)

	s.store(ctx, keySummary, sum)
	return sum, nil
}

// Predict forecasts daily emissions. days <= 0 uses the configured default.
func (s *Service) Predict(ctx context.Context, days int) (Forecast, error) {
	if days <= 0 {
		days = s.opts.DefaultDays
	}
	records, err := s.repo.List(ctx, Filter{})
	if err != nil {
		return Forecast{}, apperrors.Wrap(apperrors.CodeStorage, "list emissions", err)
	}
	if len(records) < s.opts.MinRecords {
		return Forecast{
			Success:     false,
			Message:     fmt.Sprintf("Need at least %d records to make predictions", s.opts.MinRecords),
			Predictions: []Prediction{},
		}, nil
	}
	return forecast(records, days), nil
}

// Recommendations suggests alternatives for the highest emitting types.
func (s *Service) Recommendations(ctx context.Context) ([]Recommendation, error) {
	var recs []Recommendation
	if s.cached(ctx, keyRecommendations, &recs) {
		return recs, nil
	}

	records, err := s.repo.List(ctx, Filter{})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "list emissions", err)
	}
	byType := make(map[string]float64)
	for _, r := range records {
		byType[r.Type] += r.Emissions
	}

	recs = []Recommendation{}
	ranked := rankTypes(byType)
	if len(ranked) > maxRecommendations {
		ranked = ranked[:maxRecommendations]
	}
	for _, t := range ranked {
		alt, ok := alternatives[t]
		if !ok {
			continue
		}
		total := byType[t]
		recs = append(recs, Recommendation{
			CurrentActivity:    t,
			CurrentEmissionsKg: round2(total),
			Alternative:        alt.Name,
			ReductionPercent:   alt.ReductionPercent,
			Description:        alt.Description,
			PotentialSavingsKg: round2(total * float64(alt.ReductionPercent) / 100),
			CostBenefit:        alt.CostSavings,
			ImplementationTime: alt.ImplementationTime,
		})
	}

	s.store(ctx, keyRecommendations, recs)
	return recs, nil
}

func (s *Service) DeleteEmission(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperrors.Wrap(apperrors.CodeNotFound, "Emission record not found", err)
		}
		return apperrors.Wrap(apperrors.CodeStorage, "delete emission", err)
	}
	s.invalidate(ctx)
	s.logger.Info("emission deleted", "id", id)
	return nil
}

// Export returns every stored record.
func (s *Service) Export(ctx context.Context) ([]Record, error) {
	records, err := s.repo.List(ctx, Filter{})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "export emissions", err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func (s *Service) Statistics(ctx context.Context) (Statistics, error) {
	records, err := s.repo.List(ctx, Filter{})
	if err != nil {
		return Statistics{}, apperrors.Wrap(apperrors.CodeStorage, "list emissions", err)
	}
	if len(records) == 0 {
		return Statistics{}, nil
	}
	minE, maxE := records[0].Emissions, records[0].Emissions
	var total float64
	for _, r := range records {
		total += r.Emissions
		minE = min(minE, r.Emissions)
		maxE = max(maxE, r.Emissions)
	}
	return Statistics{
		TotalRecords:      len(records),
		TotalEmissionsKg:  round2(total),
		AverageEmissionKg: round2(total / float64(len(records))),
		MinEmissionKg:     round2(minE),
		MaxEmissionKg:     round2(maxE),
	}, nil
}

// rankTypes orders keys by descending total, ties broken by name.
func rankTypes(totals map[string]float64) []string {
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if totals[keys[i]] != totals[keys[j]] {
			return totals[keys[i]] > totals[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

func (s *Service) cached(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache get failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.Warn("cache decode failed", "key", key, "error", err)
		return false
	}
	return true
}

func (s *Service) store(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.opts.CacheTTL); err != nil {
		s.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keySummary, keyRecommendations); err != nil {
		s.logger.Warn("cache invalidate failed", "error", err)
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate accepts RFC 3339 timestamps, naive ISO timestamps and plain dates.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("parse date %q: %w", s, lastErr)
}
