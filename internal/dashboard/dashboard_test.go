package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sadopc/carbontrack/internal/gateway"
)

type fakeGateway struct {
	mu      sync.Mutex
	fail    map[Source]bool
	periods []string
	list    gateway.EmissionList
	summary gateway.Summary
	recs    []gateway.Recommendation
}

func (f *fakeGateway) err(s Source) error {
	if f.fail[s] {
		return errors.New(string(s) + " down")
	}
	return nil
}

func (f *fakeGateway) ActivityTypes(context.Context) (gateway.Catalog, error) {
	return gateway.Catalog{Types: []string{"car", "bus"}}, f.err(SourceActivityTypes)
}

func (f *fakeGateway) Summary(context.Context) (gateway.Summary, error) {
	return f.summary, f.err(SourceSummary)
}

func (f *fakeGateway) Emissions(_ context.Context, period, _ string) (gateway.EmissionList, error) {
	f.mu.Lock()
	f.periods = append(f.periods, period)
	f.mu.Unlock()
	return f.list, f.err(SourceEmissions)
}

func (f *fakeGateway) Predict(_ context.Context, days int) (gateway.Forecast, error) {
	return gateway.Forecast{Success: true, DaysAhead: days, Predictions: []gateway.Prediction{{Date: "2024-06-16", PredictedEmissionsKg: 1}}}, f.err(SourcePredictions)
}

func (f *fakeGateway) Recommendations(context.Context) ([]gateway.Recommendation, error) {
	return f.recs, f.err(SourceRecommendations)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

// ============================================================
// State
// ============================================================

func TestNewStateDefaults(t *testing.T) {
	s := NewState()
	if s.Period != PeriodAll {
		t.Fatalf("expected period all, got %q", s.Period)
	}
	if s.Emissions == nil || s.Recommendations == nil || s.ActivityTypes == nil {
		t.Fatal("containers should be initialized")
	}
	if s.Summary.ByCategory == nil || s.Summary.ByType == nil {
		t.Fatal("summary maps should be initialized")
	}
}

func TestApplyKeepsFailedSourcesStale(t *testing.T) {
	s := NewState()
	s.Emissions = []gateway.Record{{ID: "old"}}
	s.ActivityTypes = []string{"water"}

	s.Apply(LoadResult{
		Period:  PeriodAll,
		Summary: &gateway.Summary{TotalEmissionsKg: ptr(4.2)},
		Errors:  map[Source]error{SourceEmissions: errors.New("x"), SourceActivityTypes: errors.New("y")},
	})

	if len(s.Emissions) != 1 || s.Emissions[0].ID != "old" {
		t.Fatal("failed emissions fetch must not touch the list")
	}
	if s.ActivityTypes[0] != "water" {
		t.Fatal("failed catalog fetch must not touch the types")
	}
	if s.Summary.TotalEmissionsKg == nil || *s.Summary.TotalEmissionsKg != 4.2 {
		t.Fatal("summary should be replaced")
	}
	if s.Summary.ByType == nil {
		t.Fatal("summary maps should never be nil")
	}
}

func TestApplyEmissionsDropsStalePeriod(t *testing.T) {
	s := NewState()
	s.SetPeriod(PeriodWeek)

	if s.ApplyEmissions(EmissionsResult{Period: PeriodAll, List: &gateway.EmissionList{Records: []gateway.Record{{ID: "a"}}}}) {
		t.Fatal("result for a different period should be dropped")
	}
	if !s.ApplyEmissions(EmissionsResult{Period: PeriodWeek, List: &gateway.EmissionList{Records: []gateway.Record{{ID: "b"}}}}) {
		t.Fatal("result for the selected period should apply")
	}
	if s.Emissions[0].ID != "b" {
		t.Fatalf("unexpected emissions %+v", s.Emissions)
	}
	if s.ApplyEmissions(EmissionsResult{Period: PeriodWeek, Err: errors.New("down")}) {
		t.Fatal("error result should not apply")
	}
}

func TestSetPeriod(t *testing.T) {
	s := NewState()
	if s.SetPeriod(PeriodAll) {
		t.Fatal("selecting the current period is not a change")
	}
	if !s.SetPeriod(PeriodYear) || s.Period != PeriodYear {
		t.Fatal("period should change")
	}
}

func TestPeriodLabels(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range Periods {
		label := p.Label()
		if label == "" || seen[label] {
			t.Fatalf("bad label %q for %q", label, p)
		}
		seen[label] = true
	}
}

// ============================================================
// Loader
// ============================================================

func TestLoadAllSucceeds(t *testing.T) {
	gw := &fakeGateway{list: gateway.EmissionList{Records: []gateway.Record{{ID: "1"}}, Count: 1}}
	l := NewLoader(gw, quietLogger())

	res := l.LoadAll(context.Background(), PeriodMonth)
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors %v", res.Errors)
	}
	if res.AllFailed() {
		t.Fatal("nothing failed")
	}
	if res.Catalog == nil || res.Summary == nil || res.Emissions == nil || res.Forecast == nil || res.Recommendations == nil {
		t.Fatal("every source should be set")
	}
	if res.Forecast.DaysAhead != 30 {
		t.Fatalf("expected 30 prediction days, got %d", res.Forecast.DaysAhead)
	}
	if len(gw.periods) != 1 || gw.periods[0] != "month" {
		t.Fatalf("expected one emissions fetch for month, got %v", gw.periods)
	}
}

func TestLoadAllIsolatesFailures(t *testing.T) {
	gw := &fakeGateway{fail: map[Source]bool{SourceSummary: true, SourcePredictions: true}}
	res := NewLoader(gw, quietLogger()).LoadAll(context.Background(), PeriodAll)

	if len(res.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %v", res.Errors)
	}
	if res.Summary != nil || res.Forecast != nil {
		t.Fatal("failed sources should be nil")
	}
	if res.Catalog == nil || res.Emissions == nil || res.Recommendations == nil {
		t.Fatal("healthy sources should still load")
	}
	if res.AllFailed() {
		t.Fatal("not all sources failed")
	}
}

func TestLoadAllEverythingFails(t *testing.T) {
	fail := map[Source]bool{}
	for _, s := range allSources {
		fail[s] = true
	}
	res := NewLoader(&fakeGateway{fail: fail}, quietLogger()).LoadAll(context.Background(), PeriodAll)
	if !res.AllFailed() {
		t.Fatal("expected every source to fail")
	}
}

func TestLoadEmissions(t *testing.T) {
	gw := &fakeGateway{list: gateway.EmissionList{Records: []gateway.Record{{ID: "x"}}}}
	res := NewLoader(gw, quietLogger()).LoadEmissions(context.Background(), PeriodWeek)
	if res.Err != nil || res.List == nil || res.Period != PeriodWeek {
		t.Fatalf("unexpected result %+v", res)
	}

	gw.fail = map[Source]bool{SourceEmissions: true}
	res = NewLoader(gw, quietLogger()).LoadEmissions(context.Background(), PeriodWeek)
	if res.Err == nil || res.List != nil {
		t.Fatal("expected failure")
	}
}

func TestLoadAllOverHTTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/activity-types", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"types":["car"],"factors":{"car":0.21}}`))
	})
	mux.HandleFunc("/api/get-summary", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom","code":"internal_error"}`, http.StatusInternalServerError)
	})
	mux.HandleFunc("/api/get-emissions", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"records": []any{}, "count": 0})
	})
	mux.HandleFunc("/api/predict-emissions", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"Need at least 5 records to make predictions","predictions":[]}`))
	})
	mux.HandleFunc("/api/get-recommendations", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"recommendations":[]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	l := NewLoader(gateway.New(srv.URL+"/api", time.Second), quietLogger())
	res := l.LoadAll(context.Background(), PeriodAll)
	if len(res.Errors) != 1 || res.Errors[SourceSummary] == nil {
		t.Fatalf("expected only the summary to fail, got %v", res.Errors)
	}

	s := NewState()
	s.Apply(res)
	if len(s.ActivityTypes) != 1 || s.Factors["car"] != 0.21 {
		t.Fatalf("catalog not applied: %+v", s.ActivityTypes)
	}
	if ForecastCaption(s.Forecast) != "Need at least 5 records to make predictions" {
		t.Fatalf("unexpected caption %q", ForecastCaption(s.Forecast))
	}
}

// ============================================================
// Views
// ============================================================

func TestActivityRowsEmpty(t *testing.T) {
	s := NewState()
	rows, placeholder := ActivityRows(s.Emissions)
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
	if placeholder != "No activities logged yet" {
		t.Fatalf("unexpected placeholder %q", placeholder)
	}
}

func TestActivityRows(t *testing.T) {
	rows, placeholder := ActivityRows([]gateway.Record{
		{ID: "a", Type: "car", Value: 42.5, Date: "2024-06-10T08:30:00Z", Category: "transport", Emissions: 8.926},
		{ID: "b", Type: "bus", Value: 3, Date: "2024-06-09", Category: "transport", Emissions: 0.27},
	})
	if placeholder != "" {
		t.Fatalf("unexpected placeholder %q", placeholder)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	want := ActivityRow{ID: "a", Type: "car", Value: "42.5", Date: "Jun 10, 2024", Category: "transport", Emissions: "8.93"}
	if rows[0] != want {
		t.Fatalf("got %+v, want %+v", rows[0], want)
	}
	if rows[1].Date != "Jun 09, 2024" || rows[1].Value != "3" {
		t.Fatalf("unexpected row %+v", rows[1])
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2024-01-05", "Jan 05, 2024"},
		{"2024-01-05T10:00:00", "Jan 05, 2024"},
		{"2024-01-05T10:00:00.123456", "Jan 05, 2024"},
		{"2024-12-31T23:00:00+00:00", "Dec 31, 2024"},
		{"yesterday", "yesterday"},
	}
	for _, tt := range tests {
		if got := FormatDate(tt.in); got != tt.want {
			t.Errorf("FormatDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSummaryTilesMissingFields(t *testing.T) {
	tiles := SummaryTiles(gateway.Summary{})
	if tiles.Total != "0.00" {
		t.Fatalf("expected 0.00 total, got %q", tiles.Total)
	}
	if tiles.MonthlyAverage != "0.00" {
		t.Fatalf("expected 0.00 average, got %q", tiles.MonthlyAverage)
	}
	if tiles.TopContributor != "N/A" {
		t.Fatalf("expected N/A, got %q", tiles.TopContributor)
	}
	if tiles.Records != "0" {
		t.Fatalf("expected 0 records, got %q", tiles.Records)
	}
}

func TestSummaryTiles(t *testing.T) {
	tiles := SummaryTiles(gateway.Summary{
		TotalEmissionsKg: ptr(123.456),
		MonthlyAverageKg: ptr(10.0),
		TopContributor:   ptr("meat"),
		TotalRecords:     ptr(7),
	})
	want := Tiles{Total: "123.46", MonthlyAverage: "10.00", TopContributor: "MEAT", Records: "7"}
	if tiles != want {
		t.Fatalf("got %+v, want %+v", tiles, want)
	}
}

func TestRecommendationCards(t *testing.T) {
	recs := []gateway.Recommendation{
		{CurrentActivity: "car", Alternative: "Electric Car", CurrentEmissionsKg: "21.5", PotentialSavingsKg: "15.05", ReductionPercent: "70", CostBenefit: "Save $500-800/year on fuel"},
		{CurrentActivity: "meat", Alternative: "Vegetarian Days", CurrentEmissionsKg: "54", PotentialSavingsKg: "43.2", ReductionPercent: "80", CostBenefit: "Save $30-50/month"},
	}
	cards, placeholder := RecommendationCards(recs)
	if placeholder != "" {
		t.Fatalf("unexpected placeholder %q", placeholder)
	}
	if len(cards) != len(recs) {
		t.Fatalf("expected %d cards, got %d", len(recs), len(cards))
	}
	for i, c := range cards {
		r := recs[i]
		want := []string{string(r.CurrentEmissionsKg), string(r.PotentialSavingsKg), string(r.ReductionPercent), r.CostBenefit}
		for j, s := range c.Stats {
			if s.Value != want[j] {
				t.Errorf("card %d stat %d = %q, want %q", i, j, s.Value, want[j])
			}
		}
	}
	if cards[0].Title != "car → Electric Car" {
		t.Fatalf("unexpected title %q", cards[0].Title)
	}
}

func TestRecommendationCardsEmpty(t *testing.T) {
	cards, placeholder := RecommendationCards(nil)
	if len(cards) != 0 || placeholder != "No recommendations yet" {
		t.Fatalf("got %d cards, placeholder %q", len(cards), placeholder)
	}
}

func TestCategorySeries(t *testing.T) {
	cats := map[string]float64{"transport": 30, "energy": 50, "food": 10, "waste": 5, "water": 3, "general": 2}
	series := CategorySeries(cats)
	if len(series) != 6 {
		t.Fatalf("expected 6 slices, got %d", len(series))
	}
	if series[0].Label != "energy" || series[0].Color != Palette[0] {
		t.Fatalf("unexpected first slice %+v", series[0])
	}
	if series[5].Color != Palette[0] {
		t.Fatal("palette should cycle after five categories")
	}
	var pct float64
	for _, s := range series {
		pct += s.Percent
	}
	if pct < 99.99 || pct > 100.01 {
		t.Fatalf("percentages should add to 100, got %f", pct)
	}
	if len(CategorySeries(nil)) != 0 {
		t.Fatal("nil map should give no slices")
	}
}

func TestTypeSeriesOrder(t *testing.T) {
	bars := TypeSeries(map[string]float64{"bus": 2, "car": 9, "water": 2})
	got := []string{bars[0].Label, bars[1].Label, bars[2].Label}
	want := []string{"car", "bus", "water"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestPredictionSeries(t *testing.T) {
	pts := PredictionSeries([]gateway.Prediction{
		{Date: "2024-06-17", PredictedEmissionsKg: 2},
		{Date: "bad", PredictedEmissionsKg: 9},
		{Date: "2024-06-16", PredictedEmissionsKg: 1},
	})
	if len(pts) != 2 {
		t.Fatalf("expected 2 points, got %d", len(pts))
	}
	if !pts[0].Time.Before(pts[1].Time) || pts[0].Value != 1 {
		t.Fatalf("points not chronological: %+v", pts)
	}
}

func TestPredictionSeriesTimestamps(t *testing.T) {
	pts := PredictionSeries([]gateway.Prediction{
		{Date: "2024-06-16T00:00:00", PredictedEmissionsKg: 4},
		{Date: "2024-06-15T00:00:00", PredictedEmissionsKg: 3},
		{Date: "2024-06-17T00:00:00Z", PredictedEmissionsKg: 5},
	})
	if len(pts) != 3 {
		t.Fatalf("expected 3 points, got %d", len(pts))
	}
	want := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	if !pts[0].Time.Equal(want) || pts[0].Value != 3 || pts[2].Value != 5 {
		t.Fatalf("unexpected points %+v", pts)
	}
}

func TestForecastCaption(t *testing.T) {
	if got := ForecastCaption(gateway.Forecast{}); got != NoPredictions {
		t.Fatalf("unexpected caption %q", got)
	}
	got := ForecastCaption(gateway.Forecast{Success: true, DaysAhead: 7, AveragePredictedKg: 3.456, Trend: "increasing"})
	if got != "Next 7 days: avg 3.46 kg/day, increasing" {
		t.Fatalf("unexpected caption %q", got)
	}
}

func TestStatisticsRows(t *testing.T) {
	rows := StatisticsRows(gateway.Summary{
		TotalEmissionsKg: ptr(10.0),
		ByCategory:       map[string]float64{"food": 10},
		ByType:           map[string]float64{"meat": 10},
	})
	if len(rows) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(rows))
	}
	if rows[0].Value != "10.00" || rows[2].Value != "N/A" {
		t.Fatalf("unexpected rows %+v", rows[:3])
	}
	if rows[4].Value != "10.00 (100.0%)" {
		t.Fatalf("unexpected category row %+v", rows[4])
	}
}

func TestRecordStatsRows(t *testing.T) {
	rows := RecordStatsRows(gateway.Statistics{TotalRecords: 3, AverageEmissionKg: 1.25, MinEmissionKg: 0.34, MaxEmissionKg: 27})
	want := []string{"3", "1.25", "0.34", "27.00"}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, w := range want {
		if rows[i].Value != w {
			t.Fatalf("row %d (%s): got %q want %q", i, rows[i].Label, rows[i].Value, w)
		}
	}
}

// ============================================================
// Slots
// ============================================================

type fakeHandle struct {
	released int
}

func (h *fakeHandle) Release() { h.released++ }

func TestSlotsAcquireReleasesPrevious(t *testing.T) {
	s := NewSlots()
	first, second := &fakeHandle{}, &fakeHandle{}

	s.Acquire("category", first)
	s.Acquire("category", second)

	if s.Live() != 1 {
		t.Fatalf("expected 1 live handle, got %d", s.Live())
	}
	if first.released != 1 {
		t.Fatalf("first handle released %d times", first.released)
	}
	if second.released != 0 {
		t.Fatal("current handle must stay live")
	}
	if h, _ := s.Get("category"); h != second {
		t.Fatal("slot should hold the newest handle")
	}
}

func TestSlotsIndependent(t *testing.T) {
	s := NewSlots()
	a, b := &fakeHandle{}, &fakeHandle{}
	s.Acquire("types", a)
	s.Acquire("predictions", b)
	if s.Live() != 2 {
		t.Fatalf("expected 2 live, got %d", s.Live())
	}
	s.Release("types")
	if a.released != 1 || s.Live() != 1 {
		t.Fatal("release should free only that slot")
	}
	s.ReleaseAll()
	if b.released != 1 || s.Live() != 0 {
		t.Fatal("release all should free everything")
	}
}

// ============================================================
// Notifier
// ============================================================

func TestNotifierLifecycle(t *testing.T) {
	var n Notifier
	a := n.Push(KindSuccess, "saved")
	b := n.Push("", "hello")

	if n.Len() != 2 {
		t.Fatalf("notifications should stack, got %d", n.Len())
	}
	active := n.Active()
	if active[1].Kind != KindInfo {
		t.Fatalf("default kind should be info, got %q", active[1].Kind)
	}

	if !n.BeginExit(a) {
		t.Fatal("begin exit should find the notification")
	}
	active = n.Active()
	if !active[0].Exiting || active[1].Exiting {
		t.Fatal("only the first notification should be exiting")
	}

	n.Remove(a)
	if n.Len() != 1 || n.Active()[0].ID != b {
		t.Fatal("removal should be independent")
	}
	if n.Remove(a) {
		t.Fatal("second removal should be a no-op")
	}
}

func TestNotifierNoDedup(t *testing.T) {
	var n Notifier
	n.Push(KindError, "oops")
	n.Push(KindError, "oops")
	if n.Len() != 2 {
		t.Fatal("identical notifications are not merged")
	}
}

func TestNotificationTimings(t *testing.T) {
	if DisplayDuration != 3*time.Second || ExitDuration != 300*time.Millisecond {
		t.Fatal("unexpected notification timings")
	}
}

// ============================================================
// Validation
// ============================================================

func TestValidateEntry(t *testing.T) {
	today := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		in      FormInput
		wantErr error
	}{
		{"missing type", FormInput{Value: "3"}, ErrTypeRequired},
		{"empty value", FormInput{Type: "car"}, ErrInvalidValue},
		{"non numeric", FormInput{Type: "car", Value: "lots"}, ErrInvalidValue},
		{"nan", FormInput{Type: "car", Value: "NaN"}, ErrInvalidValue},
		{"bad date", FormInput{Type: "car", Value: "3", Date: "15/06/2024"}, ErrInvalidDate},
		{"ok", FormInput{Type: "car", Value: " 12.5 ", Notes: " commute "}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := ValidateEntry(tt.in, today)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got error %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if entry.Value != 12.5 || entry.Date != "2024-06-15" || entry.Notes != "commute" {
				t.Fatalf("unexpected entry %+v", entry)
			}
		})
	}
}
