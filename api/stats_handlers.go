package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/KK-2k06/DreamInk/metrics"
)

const (
	defaultRecentStats = 20
	maxRecentStats     = 100
)

// StatsSource reports transform statistics. *metrics.Store satisfies it.
type StatsSource interface {
	Snapshot(recentLimit int) metrics.Snapshot
}

type styleStatsBody struct {
	metrics.StyleStats
	AvgDurationMs int64 `json:"avg_duration_ms"`
}

type recentBody struct {
	metrics.TransformRecord
	DurationMs int64 `json:"duration_ms"`
}

type statsBody struct {
	Version       string                    `json:"version"`
	UptimeSeconds int64                     `json:"uptime_seconds"`
	Total         int64                     `json:"total"`
	Succeeded     int64                     `json:"succeeded"`
	InputErrors   int64                     `json:"input_errors"`
	BackendErrors int64                     `json:"backend_errors"`
	ByStyle       map[string]styleStatsBody `json:"by_style"`
	Recent        []recentBody              `json:"recent"`
}

// Stats handles GET /api/stats?recent=N.
func (s *Server) Stats(r *http.Request) (any, error) {
	if s.stats == nil {
		return nil, CodedErrorf(http.StatusNotFound, "Not found")
	}

	limit := defaultRecentStats
	if v := r.URL.Query().Get("recent"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, CodedErrorf(http.StatusBadRequest, "Invalid recent '%s'", v)
		}
		limit = min(n, maxRecentStats)
	}

	snap := s.stats.Snapshot(limit)
	body := statsBody{
		Version:       snap.Version,
		UptimeSeconds: int64(snap.Uptime / time.Second),
		Total:         snap.Total,
		Succeeded:     snap.Succeeded,
		InputErrors:   snap.InputErrors,
		BackendErrors: snap.BackendErrors,
		ByStyle:       make(map[string]styleStatsBody, len(snap.ByStyle)),
		Recent:        make([]recentBody, 0, len(snap.Recent)),
	}
	for name, st := range snap.ByStyle {
		body.ByStyle[name] = styleStatsBody{StyleStats: st, AvgDurationMs: st.AvgDuration.Milliseconds()}
	}
	for _, rec := range snap.Recent {
		body.Recent = append(body.Recent, recentBody{TransformRecord: rec, DurationMs: rec.Duration.Milliseconds()})
	}
	return body, nil
}
