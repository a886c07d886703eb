// Package metrics keeps in-memory statistics about transform requests:
// totals, per-style aggregates and a short history of recent requests.
package metrics

import "time"

// Outcome is how a transform request ended.
type Outcome string

const (
	OutcomeSuccess      Outcome = "success"
	OutcomeInputError   Outcome = "input_error"
	OutcomeBackendError Outcome = "backend_error"
)

// TransformRecord is a single finished transform request.
type TransformRecord struct {
	CorrelationID string        `json:"correlation_id"`
	Style         string        `json:"style"`
	Family        string        `json:"family,omitempty"`
	Outcome       Outcome       `json:"outcome"`
	Duration      time.Duration `json:"-"`
	InputBytes    int           `json:"input_bytes"`
	OutputBytes   int           `json:"output_bytes,omitempty"`
	Persisted     bool          `json:"persisted"`
	FinishedAt    time.Time     `json:"finished_at"`
}

// StyleStats aggregates the requests for one style.
type StyleStats struct {
	Count       int64         `json:"count"`
	Errors      int64         `json:"errors"`
	SuccessRate float64       `json:"success_rate"`
	AvgDuration time.Duration `json:"-"`
}

// Snapshot is a point-in-time copy of the store.
type Snapshot struct {
	Version       string                `json:"version"`
	Uptime        time.Duration         `json:"-"`
	Total         int64                 `json:"total"`
	Succeeded     int64                 `json:"succeeded"`
	InputErrors   int64                 `json:"input_errors"`
	BackendErrors int64                 `json:"backend_errors"`
	ByStyle       map[string]StyleStats `json:"by_style"`
	Recent        []TransformRecord     `json:"recent"`
}
