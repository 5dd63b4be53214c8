// Package history persists one record per finished dispatch. Records are
// immutable once written.
package history

import (
	"context"
	"time"

	"github.com/swiftresponder/swiftresponder/core/model"
)

// Outcome describes how a dispatch ended.
type Outcome string

const (
	OutcomeCompleted   Outcome = "completed"
	OutcomeCancelled   Outcome = "cancelled"
	OutcomeTransferred Outcome = "transferred"
)

// Record captures one finished dispatch.
type Record struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	Ambulance   model.Ambulance `json:"ambulance"`
	Hospital    model.Hospital  `json:"hospital"`
	DurationMin float64         `json:"duration_min"`
	Outcome     Outcome         `json:"outcome"`
	Notes       string          `json:"notes,omitempty"`
}

// Query defines filters for retrieving records.
type Query struct {
	Start   time.Time
	End     time.Time
	Outcome Outcome
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

func (q Query) matches(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Outcome != "" && r.Outcome != q.Outcome {
		return false
	}
	return true
}
