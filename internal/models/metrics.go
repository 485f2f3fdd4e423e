package models

import "time"

// MetricsSnapshot summarises in-process instrumentation for the admin metrics endpoint.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	ConflictsReported        uint64    `json:"conflicts_reported"`
	ClassesDuplicated        uint64    `json:"classes_duplicated"`
	AssignmentDecisions      uint64    `json:"assignment_decisions"`
	SemestersActivated       uint64    `json:"semesters_activated"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
