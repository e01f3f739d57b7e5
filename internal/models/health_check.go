package models

import "time"

type HealthCheck struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Services  map[string]string      `json:"services"`
	Workers   map[string]interface{} `json:"workers,omitempty"`
}
