package gateway

import "encoding/json"

// Record mirrors an emission record returned by the gateway.
type Record struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Category  string  `json:"category"`
	Value     float64 `json:"value"`
	Date      string  `json:"date"`
	Emissions float64 `json:"emissions"`
	Notes     string  `json:"notes,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
}

// Catalog lists the activity types the gateway accepts.
type Catalog struct {
	Types   []string           `json:"types"`
	Factors map[string]float64 `json:"factors"`
}

// Summary is an aggregate snapshot. Scalars are pointers because the
// gateway may omit them.
type Summary struct {
	TotalEmissionsKg *float64           `json:"total_emissions_kg"`
	MonthlyAverageKg *float64           `json:"monthly_average_kg"`
	TopContributor   *string            `json:"top_contributor"`
	TotalRecords     *int               `json:"total_records"`
	ByCategory       map[string]float64 `json:"by_category"`
	ByType           map[string]float64 `json:"by_type"`
}

type EmissionList struct {
	Records               []Record `json:"records"`
	TotalEmissionsKg      float64  `json:"total_emissions_kg"`
	AverageDailyEmissions float64  `json:"average_daily_emissions"`
	Count                 int      `json:"count"`
}

type Prediction struct {
	Date                 string  `json:"date"`
	PredictedEmissionsKg float64 `json:"predicted_emissions_kg"`
}

type Forecast struct {
	Success            bool         `json:"success"`
	Message            string       `json:"message"`
	DaysAhead          int          `json:"days_ahead"`
	AveragePredictedKg float64      `json:"average_predicted_kg"`
	Trend              string       `json:"trend"`
	Predictions        []Prediction `json:"predictions"`
}

// Recommendation keeps numeric fields as json.Number so they render
// exactly as the gateway sent them.
type Recommendation struct {
	CurrentActivity    string      `json:"current_activity"`
	Alternative        string      `json:"alternative"`
	Description        string      `json:"description"`
	CurrentEmissionsKg json.Number `json:"current_emissions_kg"`
	PotentialSavingsKg json.Number `json:"potential_savings_kg"`
	ReductionPercent   json.Number `json:"reduction_percent"`
	CostBenefit        string      `json:"cost_benefit"`
	ImplementationTime string      `json:"implementation_time,omitempty"`
}

type Statistics struct {
	TotalRecords      int     `json:"total_records"`
	TotalEmissionsKg  float64 `json:"total_emissions_kg"`
	AverageEmissionKg float64 `json:"average_emission_kg"`
	MinEmissionKg     float64 `json:"min_emission_kg"`
	MaxEmissionKg     float64 `json:"max_emission_kg"`
}

// Entry is the payload of a log-emission request.
type Entry struct {
	Type     string  `json:"type"`
	Category string  `json:"category"`
	Value    float64 `json:"value"`
	Date     string  `json:"date"`
	Notes    string  `json:"notes"`
}

type LogResult struct {
	Success        bool    `json:"success"`
	EmissionsKgCO2 float64 `json:"emissions_kg_co2"`
	Entry          Record  `json:"entry"`
}

// Export carries the raw export payload plus its decoded records, when the
// payload is a record list.
type Export struct {
	Data    json.RawMessage
	Records []Record
}

type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}
