package carbon

import (
	"math"
	"sort"
	"time"
)

const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
)

// dailyTotals sums emissions per calendar day, oldest first.
func dailyTotals(records []Record) ([]time.Time, []float64) {
	totals := make(map[time.Time]float64)
	for _, r := range records {
		d := r.Date
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		totals[day] += r.Emissions
	}
	days := make([]time.Time, 0, len(totals))
	for d := range totals {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	ys := make([]float64, len(days))
	for i, d := range days {
		ys[i] = totals[d]
	}
	return days, ys
}

// fitLine returns intercept and slope of the least-squares line through
// (xs[i], ys[i]). With a single distinct x the slope is zero.
func fitLine(xs, ys []float64) (float64, float64) {
	n := float64(len(xs))
	if n == 0 {
		return 0, 0
	}
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var sxx, sxy float64
	for i := range xs {
		dx := xs[i] - meanX
		sxx += dx * dx
		sxy += dx * (ys[i] - meanY)
	}
	if sxx == 0 {
		return meanY, 0
	}
	slope := sxy / sxx
	return meanY - slope*meanX, slope
}

// forecast projects daysAhead daily totals past the last recorded day.
func forecast(records []Record, daysAhead int) Forecast {
	days, ys := dailyTotals(records)
	first, last := days[0], days[len(days)-1]

	xs := make([]float64, len(days))
	for i, d := range days {
		xs[i] = d.Sub(first).Hours() / 24
	}
	intercept, slope := fitLine(xs, ys)
	lastX := last.Sub(first).Hours() / 24

	preds := make([]Prediction, 0, daysAhead)
	var sum float64
	for i := 1; i <= daysAhead; i++ {
		y := round2(math.Max(0, intercept+slope*(lastX+float64(i))))
		sum += y
		preds = append(preds, Prediction{
			Date:                 last.AddDate(0, 0, i).Format("2006-01-02"),
			PredictedEmissionsKg: y,
		})
	}

	trend := TrendDecreasing
	if preds[len(preds)-1].PredictedEmissionsKg > preds[0].PredictedEmissionsKg {
		trend = TrendIncreasing
	}
	return Forecast{
		Success:            true,
		DaysAhead:          daysAhead,
		AveragePredictedKg: round2(sum / float64(daysAhead)),
		Trend:              trend,
		Predictions:        preds,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
