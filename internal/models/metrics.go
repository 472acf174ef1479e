package models

import "time"

// SeatingMetricsSnapshot summarises allocation traffic since process start.
type SeatingMetricsSnapshot struct {
	Allocations         map[AllocationState]uint64 `json:"allocations"`
	AverageCommitLockMs float64                    `json:"average_commit_lock_ms"`
	CandidateLookups    uint64                     `json:"candidate_lookups"`
	CacheHits           uint64                     `json:"cache_hits"`
	CacheMisses         uint64                     `json:"cache_misses"`
	CacheHitRatio       float64                    `json:"cache_hit_ratio"`
	RequestsTotal       uint64                     `json:"requests_total"`
	AverageRequestMs    float64                    `json:"average_request_ms"`
	Goroutines          int                        `json:"goroutines"`
	GeneratedAt         time.Time                  `json:"generated_at"`
}
