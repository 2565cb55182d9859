package domain

import "time"

type HealthStatus struct {
	DatabaseHealthy bool      `json:"database_healthy"`
	RedisHealthy    bool      `json:"redis_healthy"`
	QueueDepth      int       `json:"queue_depth"`
	ServerTime      time.Time `json:"server_time"`
}
