package carbon

import (
	"errors"
	"time"
)

// ErrNotFound is returned by a Repository when no record matches an id.
var ErrNotFound = errors.New("record not found")

// Record is a single logged activity with its computed emissions.
type Record struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Category  string    `json:"category"`
	Value     float64   `json:"value"`
	Date      time.Time `json:"date"`
	Emissions float64   `json:"emissions"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEmission is the input accepted by Service.LogEmission.
type NewEmission struct {
	Type     string
	Category string
	Value    float64
	Date     string
	Notes    string
}

// Filter narrows Repository.List. Zero values match everything.
type Filter struct {
	After *time.Time // strictly after
	Type  string
}

// EmissionList is the result of a filtered listing.
type EmissionList struct {
	TotalEmissionsKg      float64  `json:"total_emissions_kg"`
	AverageDailyEmissions float64  `json:"average_daily_emissions"`
	Count                 int      `json:"count"`
	Records               []Record `json:"records"`
}

type Summary struct {
	TotalEmissionsKg float64            `json:"total_emissions_kg"`
	MonthlyAverageKg float64            `json:"monthly_average_kg"`
	ByCategory       map[string]float64 `json:"by_category"`
	ByType           map[string]float64 `json:"by_type"`
	TopContributor   *string            `json:"top_contributor"`
	TotalRecords     int                `json:"total_records"`
}

type Prediction struct {
	Date                 string  `json:"date"`
	PredictedEmissionsKg float64 `json:"predicted_emissions_kg"`
}

// Forecast is the response of Service.Predict. When Success is false only
// Message and an empty Predictions slice are meaningful.
type Forecast struct {
	Success            bool         `json:"success"`
	Message            string       `json:"message,omitempty"`
	DaysAhead          int          `json:"days_ahead,omitempty"`
	AveragePredictedKg float64      `json:"average_predicted_kg,omitempty"`
	Trend              string       `json:"trend,omitempty"`
	Predictions        []Prediction `json:"predictions"`
}

type Recommendation struct {
	CurrentActivity    string  `json:"current_activity"`
	CurrentEmissionsKg float64 `json:"current_emissions_kg"`
	Alternative        string  `json:"alternative"`
	ReductionPercent   int     `json:"reduction_percent"`
	Description        string  `json:"description"`
	PotentialSavingsKg float64 `json:"potential_savings_kg"`
	CostBenefit        string  `json:"cost_benefit"`
	ImplementationTime string  `json:"implementation_time"`
}

type Statistics struct {
	TotalRecords      int     `json:"total_records"`
	TotalEmissionsKg  float64 `json:"total_emissions_kg"`
	AverageEmissionKg float64 `json:"average_emission_kg"`
	MinEmissionKg     float64 `json:"min_emission_kg"`
	MaxEmissionKg     float64 `json:"max_emission_kg"`
}

// Catalog enumerates the accepted activity types.
type Catalog struct {
	Types   []string           `json:"types"`
	Factors map[string]float64 `json:"factors"`
}
