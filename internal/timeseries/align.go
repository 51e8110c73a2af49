// Package timeseries aligns irregular alert timestamps onto the fixed
// sampling grid of an external price series.
//
// All arithmetic happens on grid timestamps: epoch seconds rounded down
// to the series step. There is no interpolation; a marker that has no
// exact grid match is dropped.
package timeseries

import (
	"time"

	"dexsignal/internal/domain"
)

// Step is the sampling granularity of a price series.
type Step time.Duration

const (
	Step5Min = Step(5 * time.Minute)
	StepHour = Step(time.Hour)
)

// StepFor picks the chart granularity for a token: tokens younger than
// one day use 5-minute candles, everything else hourly.
func StepFor(launchedDays float64) Step {
	if launchedDays < 1 {
		return Step5Min
	}
	return StepHour
}

// APIType returns the provider's interval name for the step.
func (s Step) APIType() string {
	if s == Step5Min {
		return "5m"
	}
	return "1H"
}

// RoundDown rounds an epoch-seconds timestamp down to the start of its
// containing grid interval.
func RoundDown(unix int64, step Step) int64 {
	sec := int64(time.Duration(step) / time.Second)
	if sec <= 0 {
		return unix
	}
	if unix < 0 {
		// Floor division for negative timestamps.
		return ((unix - sec + 1) / sec) * sec
	}
	return (unix / sec) * sec
}

// Align snaps each raw marker timestamp onto the series grid and looks
// up the exact price at that grid point. Markers without a matching
// point are dropped, so every returned marker references a price that
// is actually on the rendered line.
//
// Align is pure: it never mutates its inputs and the same inputs always
// produce the same output.
func Align(raw []domain.AlertMarker, series []domain.PricePoint, step Step) []domain.AlertMarker {
	if len(raw) == 0 || len(series) == 0 {
		return nil
	}

	prices := make(map[int64]float64, len(series))
	for _, p := range series {
		prices[p.Unix] = p.Price
	}

	out := make([]domain.AlertMarker, 0, len(raw))
	for _, m := range raw {
		ts := RoundDown(m.Unix, step)
		price, ok := prices[ts]
		if !ok {
			continue
		}
		out = append(out, domain.AlertMarker{Unix: ts, Price: price})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
