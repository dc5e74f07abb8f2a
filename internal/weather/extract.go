package weather

import (
	"errors"
	"math"
	"regexp"
)

// ErrNoSample means the series held no 14:00 entry. This is a semantic empty
// result, not a transport failure.
var ErrNoSample = errors.New("no temperature data available for the requested time")

// timePattern matches the local 2 PM slot regardless of date component.
var timePattern = regexp.MustCompile(`T14:00$`)

// averageAt14 reduces a series to the arithmetic mean of every sample whose
// timestamp reads 14:00 local, rounded to two decimals. A series spanning
// several days contributes one sample per day.
func averageAt14(series HourlySeries) (float64, error) {
	n := len(series.Time)
	if len(series.TemperatureC) < n {
		n = len(series.TemperatureC)
	}

	var sum float64
	var matched int
	for i := 0; i < n; i++ {
		if timePattern.MatchString(series.Time[i]) {
			sum += series.TemperatureC[i]
			matched++
		}
	}
	if matched == 0 {
		return 0, ErrNoSample
	}
	return round2(sum / float64(matched)), nil
}

// firstAt14 returns the first 14:00 sample only. Single-day windows have at
// most one match; first-match resolves any ambiguity beyond that.
func firstAt14(series HourlySeries) (float64, error) {
	n := len(series.Time)
	if len(series.TemperatureC) < n {
		n = len(series.TemperatureC)
	}

	for i := 0; i < n; i++ {
		if timePattern.MatchString(series.Time[i]) {
			return round2(series.TemperatureC[i]), nil
		}
	}
	return 0, ErrNoSample
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
