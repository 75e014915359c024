package models

import "time"

// SystemMetrics represents runtime figures captured from instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	AvailabilityDates        uint64    `json:"availability_dates"`
	AvailabilityDateFailures uint64    `json:"availability_date_failures"`
	NotificationsSent        uint64    `json:"notifications_sent"`
	NotificationsDropped     uint64    `json:"notifications_dropped"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
