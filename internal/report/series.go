package report

import (
	"time"

	"github.com/dltrack/dltrack/internal/history"
)

const (
	dailyWindow   = 30
	monthlyWindow = 12
)

// Point is one chart-ready bucket.
type Point struct {
	Label string
	Value int64
}

// DailySeries buckets the daily counts of the 30 days ending on the day of
// now. Days without an observation are zero.
func DailySeries(store *history.Store, now time.Time) []Point {
	return TrailingDaily(store, now, dailyWindow)
}

// TrailingDaily buckets the daily counts of the last days days, ending on the
// day of now.
func TrailingDaily(store *history.Store, now time.Time, days int) []Point {
	end := history.DateOf(now)

	counts := make(map[string]int64, store.Len())
	for _, rec := range store.Records() {
		counts[rec.Date.String()] = rec.DailyCount
	}

	points := make([]Point, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := history.DateOf(end.AddDate(0, 0, -i))
		points = append(points, Point{Label: day.String(), Value: counts[day.String()]})
	}
	return points
}

// MonthlySeries buckets the monthly counts of the 12 calendar months ending
// with the month of now. The figure for a month is the latest observation
// made in it; months without observations are zero.
func MonthlySeries(store *history.Store, now time.Time) []Point {
	year, month, _ := now.UTC().Date()
	end := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)

	// records are date-ordered, so the last write per month wins
	latest := make(map[string]int64)
	for _, rec := range store.Records() {
		latest[rec.Date.Format("2006-01")] = rec.MonthlyCount
	}

	points := make([]Point, 0, monthlyWindow)
	for i := monthlyWindow - 1; i >= 0; i-- {
		key := end.AddDate(0, -i, 0).Format("2006-01")
		points = append(points, Point{Label: key, Value: latest[key]})
	}
	return points
}

// maxValue returns the largest value in the series, at least 1 so an all-zero
// series still yields a drawable axis range.
func maxValue(points []Point) int64 {
	max := int64(1)
	for _, p := range points {
		if p.Value > max {
			max = p.Value
		}
	}
	return max
}
