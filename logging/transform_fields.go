package logging

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TransformMetrics describes one completed style transformation.
type TransformMetrics struct {
	CorrelationID string
	Style         string
	Family        string
	InputBytes    int
	OutputBytes   int
	Duration      time.Duration
	// Persistence is "persisted", "skipped" or "failed".
	Persistence string
}

// MarshalLogObject implements zapcore.ObjectMarshaler. Duration is in milliseconds.
func (m TransformMetrics) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("correlation_id", m.CorrelationID)
	enc.AddString("style", m.Style)
	if m.Family != "" {
		enc.AddString("family", m.Family)
	}
	enc.AddInt("input_bytes", m.InputBytes)
	enc.AddInt("output_bytes", m.OutputBytes)
	enc.AddInt64("duration_ms", m.Duration.Milliseconds())
	enc.AddString("persistence", m.Persistence)
	return nil
}

// TransformFields wraps m as a nested "transform" field.
//
//	logger.Info("transform complete", logging.TransformFields(m))
func TransformFields(m TransformMetrics) zap.Field {
	return zap.Object("transform", m)
}

// TimingFields returns start, end and duration fields for an operation.
func TimingFields(start, end time.Time) []zap.Field {
	return []zap.Field{
		zap.Time("start_time", start),
		zap.Time("end_time", end),
		zap.Duration("duration", end.Sub(start)),
	}
}
