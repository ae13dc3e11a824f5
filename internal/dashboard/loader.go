package dashboard

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/sadopc/carbontrack/internal/gateway"
)

// Source names one of the five data sources of a full load.
type Source string

const (
	SourceActivityTypes   Source = "activity-types"
	SourceSummary         Source = "summary"
	SourceEmissions       Source = "emissions"
	SourcePredictions     Source = "predictions"
	SourceRecommendations Source = "recommendations"
)

var allSources = []Source{SourceActivityTypes, SourceSummary, SourceEmissions, SourcePredictions, SourceRecommendations}

// Gateway is the subset of the gateway client the loader reads from.
type Gateway interface {
	ActivityTypes(ctx context.Context) (gateway.Catalog, error)
	Summary(ctx context.Context) (gateway.Summary, error)
	Emissions(ctx context.Context, period, activity string) (gateway.EmissionList, error)
	Predict(ctx context.Context, days int) (gateway.Forecast, error)
	Recommendations(ctx context.Context) ([]gateway.Recommendation, error)
}

// LoadResult carries one full load. A nil field means that source failed and
// its error is in Errors.
type LoadResult struct {
	Period          Period
	Catalog         *gateway.Catalog
	Summary         *gateway.Summary
	Emissions       *gateway.EmissionList
	Forecast        *gateway.Forecast
	Recommendations *[]gateway.Recommendation
	Errors          map[Source]error
}

// AllFailed reports whether no source succeeded.
func (r LoadResult) AllFailed() bool {
	return len(r.Errors) == len(allSources)
}

// EmissionsResult carries a period-filtered emissions reload.
type EmissionsResult struct {
	Period Period
	List   *gateway.EmissionList
	Err    error
}

const defaultPredictionDays = 30

// Loader fetches dashboard data from the gateway.
type Loader struct {
	gw          Gateway
	logger      *slog.Logger
	predictDays int
}

func NewLoader(gw Gateway, logger *slog.Logger) *Loader {
	return &Loader{gw: gw, logger: logger.With("component", "loader"), predictDays: defaultPredictionDays}
}

// LoadAll fetches all five sources concurrently. A failing source never
// cancels the others.
func (l *Loader) LoadAll(ctx context.Context, period Period) LoadResult {
	var (
		g        errgroup.Group
		catalog  gateway.Catalog
		summary  gateway.Summary
		list     gateway.EmissionList
		forecast gateway.Forecast
		recs     []gateway.Recommendation
		errs     [5]error
	)

	g.Go(func() error {
		catalog, errs[0] = l.gw.ActivityTypes(ctx)
		return nil
	})
	g.Go(func() error {
		summary, errs[1] = l.gw.Summary(ctx)
		return nil
	})
	g.Go(func() error {
		list, errs[2] = l.gw.Emissions(ctx, string(period), "")
		return nil
	})
	g.Go(func() error {
		forecast, errs[3] = l.gw.Predict(ctx, l.predictDays)
		return nil
	})
	g.Go(func() error {
		recs, errs[4] = l.gw.Recommendations(ctx)
		return nil
	})
	_ = g.Wait()

	res := LoadResult{Period: period, Errors: map[Source]error{}}
	for i, err := range errs {
		if err != nil {
			res.Errors[allSources[i]] = err
			l.logger.Error("load failed", "source", allSources[i], "error", err)
		}
	}
	if errs[0] == nil {
		res.Catalog = &catalog
	}
	if errs[1] == nil {
		res.Summary = &summary
	}
	if errs[2] == nil {
		res.Emissions = &list
	}
	if errs[3] == nil {
		res.Forecast = &forecast
	}
	if errs[4] == nil {
		res.Recommendations = &recs
	}
	return res
}

// LoadEmissions re-fetches only the emissions list for period.
func (l *Loader) LoadEmissions(ctx context.Context, period Period) EmissionsResult {
	list, err := l.gw.Emissions(ctx, string(period), "")
	if err != nil {
		l.logger.Error("load failed", "source", SourceEmissions, "period", period, "error", err)
		return EmissionsResult{Period: period, Err: err}
	}
	return EmissionsResult{Period: period, List: &list}
}
