package dashboard

import (
	"github.com/sadopc/carbontrack/internal/gateway"
)

// Period is the history filter sent to the gateway.
type Period string

const (
	PeriodAll   Period = "all"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Periods in filter-bar order.
var Periods = []Period{PeriodAll, PeriodWeek, PeriodMonth, PeriodYear}

// Label is the filter-bar caption.
func (p Period) Label() string {
	switch p {
	case PeriodWeek:
		return "This Week"
	case PeriodMonth:
		return "This Month"
	case PeriodYear:
		return "This Year"
	default:
		return "All Time"
	}
}

// State holds the last successful fetch of every data source. It is owned by
// the UI event loop and never touched from fetch goroutines.
type State struct {
	Period          Period
	ActivityTypes   []string
	Factors         map[string]float64
	Emissions       []gateway.Record
	Summary         gateway.Summary
	Forecast        gateway.Forecast
	Recommendations []gateway.Recommendation
}

func NewState() *State {
	return &State{
		Period:          PeriodAll,
		ActivityTypes:   []string{},
		Factors:         map[string]float64{},
		Emissions:       []gateway.Record{},
		Summary:         gateway.Summary{ByCategory: map[string]float64{}, ByType: map[string]float64{}},
		Forecast:        gateway.Forecast{Predictions: []gateway.Prediction{}},
		Recommendations: []gateway.Recommendation{},
	}
}

// Apply copies every source that succeeded into s. Failed sources keep their
// previous value.
func (s *State) Apply(r LoadResult) {
	if r.Catalog != nil {
		s.ActivityTypes = nonNil(r.Catalog.Types)
		if r.Catalog.Factors != nil {
			s.Factors = r.Catalog.Factors
		}
	}
	if r.Summary != nil {
		sum := *r.Summary
		if sum.ByCategory == nil {
			sum.ByCategory = map[string]float64{}
		}
		if sum.ByType == nil {
			sum.ByType = map[string]float64{}
		}
		s.Summary = sum
	}
	if r.Emissions != nil {
		s.applyEmissions(r.Period, r.Emissions.Records)
	}
	if r.Forecast != nil {
		fc := *r.Forecast
		fc.Predictions = nonNil(fc.Predictions)
		s.Forecast = fc
	}
	if r.Recommendations != nil {
		s.Recommendations = nonNil(*r.Recommendations)
	}
}

// ApplyEmissions stores a filtered listing. Results for a period other than
// the selected one are stale and dropped.
func (s *State) ApplyEmissions(r EmissionsResult) bool {
	if r.Err != nil || r.List == nil {
		return false
	}
	return s.applyEmissions(r.Period, r.List.Records)
}

func (s *State) applyEmissions(period Period, records []gateway.Record) bool {
	if period != s.Period {
		return false
	}
	s.Emissions = nonNil(records)
	return true
}

// SetPeriod selects a filter and reports whether it changed.
func (s *State) SetPeriod(p Period) bool {
	if p == s.Period {
		return false
	}
	s.Period = p
	return true
}

// Record returns the record with id from the current listing.
func (s *State) Record(id string) (gateway.Record, bool) {
	for _, r := range s.Emissions {
		if r.ID == id {
			return r, true
		}
	}
	return gateway.Record{}, false
}

func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
