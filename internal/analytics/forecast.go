package analytics

import (
	"math"
	"time"
)

// DefaultHorizon is the number of days projected past the history window.
const DefaultHorizon = 7

// Point is one day of a metric series.
type Point struct {
	Date  time.Time
	Value float64
}

// Forecast fits an additive model (linear trend plus day-of-week
// seasonality) to a daily series and projects horizon days past the last
// observation. Series with fewer than two points return empty slices;
// that is the defined behavior, not an error.
func Forecast(series []Point, horizon int) ([]string, []float64) {
	if len(series) < 2 || horizon <= 0 {
		return []string{}, []float64{}
	}

	first := series[0].Date
	xs := make([]float64, len(series))
	for i, p := range series {
		xs[i] = p.Date.Sub(first).Hours() / 24
	}

	slope, intercept := linearFit(xs, series)

	// Seasonal component: mean residual per weekday.
	var seasonal [7]float64
	var counts [7]int
	for i, p := range series {
		dow := int(p.Date.Weekday())
		seasonal[dow] += p.Value - (intercept + slope*xs[i])
		counts[dow]++
	}
	for dow := range seasonal {
		if counts[dow] > 0 {
			seasonal[dow] /= float64(counts[dow])
		}
	}

	last := series[len(series)-1].Date
	dates := make([]string, 0, horizon)
	values := make([]float64, 0, horizon)
	for j := 1; j <= horizon; j++ {
		date := last.AddDate(0, 0, j)
		x := date.Sub(first).Hours() / 24
		yhat := intercept + slope*x + seasonal[int(date.Weekday())]
		dates = append(dates, date.Format("2006-01-02"))
		values = append(values, math.Round(yhat*100)/100)
	}
	return dates, values
}

func linearFit(xs []float64, series []Point) (slope, intercept float64) {
	n := float64(len(series))
	var sumX, sumY, sumXY, sumXX float64
	for i, p := range series {
		sumX += xs[i]
		sumY += p.Value
		sumXY += xs[i] * p.Value
		sumXX += xs[i] * xs[i]
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
