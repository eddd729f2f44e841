package models

import "time"

// SystemMetrics represents runtime figures captured from instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	ApplicationsCreated      uint64    `json:"applications_created"`
	RosterRowsImported       uint64    `json:"roster_rows_imported"`
	RosterRowsSkipped        uint64    `json:"roster_rows_skipped"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
