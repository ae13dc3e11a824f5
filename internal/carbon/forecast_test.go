package carbon

import (
	"context"
	"testing"
	"time"
)

func TestPredictNeedsMinimumRecords(t *testing.T) {
	svc, _ := newTestService(t)
	for i := 0; i < 4; i++ {
		mustLog(t, svc, "car", 10, "2024-06-10")
	}
	fc, err := svc.Predict(context.Background(), 30)
	if err != nil {
		t.Fatal(err)
	}
	if fc.Success {
		t.Fatal("expected unsuccessful forecast")
	}
	if fc.Message != "Need at least 5 records to make predictions" {
		t.Fatalf("unexpected message %q", fc.Message)
	}
	if fc.Predictions == nil || len(fc.Predictions) != 0 {
		t.Fatalf("expected empty predictions, got %v", fc.Predictions)
	}
}

func TestPredictIncreasingTrend(t *testing.T) {
	svc, _ := newTestService(t)
	// 1, 2, 3, 4, 5 kg on consecutive days.
	for i := 1; i <= 5; i++ {
		day := time.Date(2024, 6, i, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		mustLog(t, svc, "vegetables", float64(i)/2, day)
	}

	fc, err := svc.Predict(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if !fc.Success || fc.DaysAhead != 3 || len(fc.Predictions) != 3 {
		t.Fatalf("unexpected forecast: %+v", fc)
	}
	want := []Prediction{
		{Date: "2024-06-06", PredictedEmissionsKg: 6},
		{Date: "2024-06-07", PredictedEmissionsKg: 7},
		{Date: "2024-06-08", PredictedEmissionsKg: 8},
	}
	for i, p := range fc.Predictions {
		if p != want[i] {
			t.Errorf("prediction %d: expected %+v, got %+v", i, want[i], p)
		}
	}
	if fc.Trend != TrendIncreasing {
		t.Fatalf("expected increasing trend, got %s", fc.Trend)
	}
	if fc.AveragePredictedKg != 7 {
		t.Fatalf("expected average 7, got %v", fc.AveragePredictedKg)
	}
}

func TestPredictClampsAtZero(t *testing.T) {
	svc, _ := newTestService(t)
	for i := 1; i <= 5; i++ {
		day := time.Date(2024, 6, i, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		mustLog(t, svc, "dairy", float64(6-i), day)
	}

	fc, err := svc.Predict(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if fc.DaysAhead != 30 {
		t.Fatalf("expected default horizon 30, got %d", fc.DaysAhead)
	}
	for _, p := range fc.Predictions {
		if p.PredictedEmissionsKg < 0 {
			t.Fatalf("negative prediction %+v", p)
		}
	}
	if last := fc.Predictions[len(fc.Predictions)-1]; last.PredictedEmissionsKg != 0 {
		t.Fatalf("expected clamped tail, got %+v", last)
	}
	if fc.Trend != TrendDecreasing {
		t.Fatalf("expected decreasing trend, got %s", fc.Trend)
	}
}

func TestPredictSingleDay(t *testing.T) {
	svc, _ := newTestService(t)
	for i := 0; i < 5; i++ {
		mustLog(t, svc, "car", 10, "2024-06-10")
	}
	fc, err := svc.Predict(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range fc.Predictions {
		if p.PredictedEmissionsKg != 10.5 {
			t.Fatalf("expected flat 10.5 forecast, got %+v", p)
		}
	}
	if fc.Trend != TrendDecreasing {
		t.Fatalf("flat forecast reports %s", fc.Trend)
	}
}

func TestFitLine(t *testing.T) {
	a, b := fitLine([]float64{0, 1, 2}, []float64{1, 3, 5})
	if a != 1 || b != 2 {
		t.Fatalf("expected y = 1 + 2x, got y = %v + %vx", a, b)
	}
}
