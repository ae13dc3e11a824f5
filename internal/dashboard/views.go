package dashboard

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/carbontrack/internal/gateway"
)

// Placeholders shown when a view has nothing to render.
const (
	NoActivities      = "No activities logged yet"
	NoRecommendations = "No recommendations yet"
	NoCategoryData    = "No category data yet"
	NoTypeData        = "No activity data yet"
	NoPredictions     = "Not enough data for predictions"
	NotAvailable      = "N/A"
)

// DateFormat is the display layout for record dates.
const DateFormat = "Jan 02, 2006"

// Palette is cycled by category index in the distribution chart.
var Palette = []string{"#4CAF50", "#2196F3", "#FF9800", "#F44336", "#9C27B0"}

// Tiles are the four summary figures on the overview tab.
type Tiles struct {
	Total          string
	MonthlyAverage string
	TopContributor string
	Records        string
}

func SummaryTiles(s gateway.Summary) Tiles {
	t := Tiles{
		Total:          kg(s.TotalEmissionsKg),
		MonthlyAverage: kg(s.MonthlyAverageKg),
		TopContributor: NotAvailable,
		Records:        "0",
	}
	if s.TopContributor != nil && *s.TopContributor != "" {
		t.TopContributor = strings.ToUpper(*s.TopContributor)
	}
	if s.TotalRecords != nil {
		t.Records = strconv.Itoa(*s.TotalRecords)
	}
	return t
}

func kg(v *float64) string {
	if v == nil {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", *v)
}

// ActivityRow is one line of the history list.
type ActivityRow struct {
	ID        string
	Type      string
	Value     string
	Date      string
	Category  string
	Emissions string
}

// ActivityRows builds the history list. The placeholder is non-empty only
// when there are no rows.
func ActivityRows(records []gateway.Record) ([]ActivityRow, string) {
	if len(records) == 0 {
		return nil, NoActivities
	}
	rows := make([]ActivityRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, ActivityRow{
			ID:        r.ID,
			Type:      r.Type,
			Value:     strconv.FormatFloat(r.Value, 'f', -1, 64),
			Date:      FormatDate(r.Date),
			Category:  r.Category,
			Emissions: fmt.Sprintf("%.2f", r.Emissions),
		})
	}
	return rows, ""
}

var recordDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// FormatDate renders a gateway date as "Jan 02, 2006". Unparseable input is
// returned unchanged.
func FormatDate(s string) string {
	if t, ok := parseDate(s); ok {
		return t.Format(DateFormat)
	}
	return s
}

// parseDate accepts plain dates as well as RFC 3339 and naive ISO timestamps.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range recordDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Stat is one labelled figure on a recommendation card. Value is the source
// field as received; Unit is appended by the renderer.
type Stat struct {
	Label string
	Value string
	Unit  string
}

type Card struct {
	Title       string
	Description string
	Stats       [4]Stat
	Timeframe   string
}

func RecommendationCards(recs []gateway.Recommendation) ([]Card, string) {
	if len(recs) == 0 {
		return nil, NoRecommendations
	}
	cards := make([]Card, 0, len(recs))
	for _, r := range recs {
		cards = append(cards, Card{
			Title:       fmt.Sprintf("%s → %s", r.CurrentActivity, r.Alternative),
			Description: r.Description,
			Stats: [4]Stat{
				{Label: "Current", Value: r.CurrentEmissionsKg.String(), Unit: " kg CO2"},
				{Label: "Savings", Value: r.PotentialSavingsKg.String(), Unit: " kg CO2"},
				{Label: "Reduction", Value: r.ReductionPercent.String(), Unit: "%"},
				{Label: "Benefit", Value: r.CostBenefit},
			},
			Timeframe: r.ImplementationTime,
		})
	}
	return cards, ""
}

// Slice is one category in the distribution chart.
type Slice struct {
	Label   string
	Value   float64
	Percent float64
	Color   string
}

// CategorySeries orders categories by name and assigns palette colors by
// index.
func CategorySeries(byCategory map[string]float64) []Slice {
	labels := sortedKeys(byCategory)
	var total float64
	for _, l := range labels {
		total += byCategory[l]
	}
	out := make([]Slice, 0, len(labels))
	for i, l := range labels {
		var pct float64
		if total > 0 {
			pct = byCategory[l] / total * 100
		}
		out = append(out, Slice{
			Label:   l,
			Value:   byCategory[l],
			Percent: pct,
			Color:   Palette[i%len(Palette)],
		})
	}
	return out
}

// Bar is one type total.
type Bar struct {
	Label string
	Value float64
}

// TypeSeries orders type totals largest first, ties by name.
func TypeSeries(byType map[string]float64) []Bar {
	labels := sortedKeys(byType)
	sort.SliceStable(labels, func(i, j int) bool {
		return byType[labels[i]] > byType[labels[j]]
	})
	out := make([]Bar, 0, len(labels))
	for _, l := range labels {
		out = append(out, Bar{Label: l, Value: byType[l]})
	}
	return out
}

type Point struct {
	Time  time.Time
	Value float64
}

// PredictionSeries converts the forecast to chronological points, skipping
// entries with unparseable dates.
func PredictionSeries(preds []gateway.Prediction) []Point {
	out := make([]Point, 0, len(preds))
	for _, p := range preds {
		t, ok := parseDate(p.Date)
		if !ok {
			continue
		}
		out = append(out, Point{Time: t, Value: p.PredictedEmissionsKg})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

// ForecastCaption is the line shown above the prediction chart.
func ForecastCaption(f gateway.Forecast) string {
	if !f.Success {
		if f.Message != "" {
			return f.Message
		}
		return NoPredictions
	}
	caption := fmt.Sprintf("Next %d days: avg %.2f kg/day", f.DaysAhead, f.AveragePredictedKg)
	if f.Trend != "" {
		caption += ", " + f.Trend
	}
	return caption
}

// StatRow is a label/value pair of the statistics table.
type StatRow struct {
	Label string
	Value string
}

// StatisticsRows restates the summary as a table, categories and types in
// chart order.
func StatisticsRows(s gateway.Summary) []StatRow {
	tiles := SummaryTiles(s)
	rows := []StatRow{
		{"Total emissions (kg CO2)", tiles.Total},
		{"Monthly average (kg CO2)", tiles.MonthlyAverage},
		{"Top contributor", tiles.TopContributor},
		{"Activities logged", tiles.Records},
	}
	for _, c := range CategorySeries(s.ByCategory) {
		rows = append(rows, StatRow{
			Label: "Category: " + c.Label,
			Value: fmt.Sprintf("%.2f (%.1f%%)", c.Value, c.Percent),
		})
	}
	for _, b := range TypeSeries(s.ByType) {
		rows = append(rows, StatRow{Label: "Type: " + b.Label, Value: fmt.Sprintf("%.2f", b.Value)})
	}
	return rows
}

// RecordStatsRows formats per-record statistics from the stats endpoint.
func RecordStatsRows(st gateway.Statistics) []StatRow {
	return []StatRow{
		{"Records", strconv.Itoa(st.TotalRecords)},
		{"Average per record (kg CO2)", fmt.Sprintf("%.2f", st.AverageEmissionKg)},
		{"Smallest record (kg CO2)", fmt.Sprintf("%.2f", st.MinEmissionKg)},
		{"Largest record (kg CO2)", fmt.Sprintf("%.2f", st.MaxEmissionKg)},
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
