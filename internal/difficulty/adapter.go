// Package difficulty picks the effective quiz difficulty from a learner's
// recent results.
package difficulty

import "github.com/abhisek/edugenie/internal/store"

// Adapter moves the requested level one step up or down based on the
// average score ratio of the most recent attempts.
type Adapter struct {
	// Window is how many of the newest records are considered.
	Window int

	// RaiseAbove bumps the level up when the average ratio exceeds it.
	RaiseAbove float64

	// LowerBelow drops the level when the average ratio is under it.
	LowerBelow float64
}

// DefaultAdapter returns the standard 5 / 0.85 / 0.5 adapter.
func DefaultAdapter() Adapter {
	return Adapter{Window: 5, RaiseAbove: 0.85, LowerBelow: 0.5}
}

// Adapt returns the effective level. history must be newest first and
// belong to one user; records from every topic count.
func (a Adapter) Adapt(history []store.QuizRecord, requested Level) Level {
	window := a.Window
	if window <= 0 {
		window = DefaultAdapter().Window
	}
	if len(history) > window {
		history = history[:window]
	}
	if len(history) == 0 {
		return requested
	}

	var sum float64
	for _, rec := range history {
		sum += rec.Ratio()
	}
	avg := sum / float64(len(history))

	switch {
	case avg > a.RaiseAbove:
		return requested.Up()
	case avg < a.LowerBelow:
		return requested.Down()
	default:
		return requested
	}
}
