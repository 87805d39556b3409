package model

import (
	"time"
)

const (
	AuditStatusOK    = "ok"
	AuditStatusError = "error"
)

// AuditRecord is one proxied command call. It is written once to the audit sink and not kept locally.
// RequestID is minted per record; CorrelationID carries the inbound X-Request-ID and may repeat.
type AuditRecord struct {
	RequestID       string    `json:"request_id" gorm:"primaryKey;type:text"`
	CorrelationID   string    `json:"correlation_id,omitempty" gorm:"index;type:text"`
	Command         string    `json:"command" gorm:"index;type:text"`
	RequestTime     time.Time `json:"request_time" gorm:"index"`
	ResponseTime    time.Time `json:"response_time"`
	LatencyMs       int64     `json:"latency_ms"`
	RequestBody     string    `json:"request_body" gorm:"type:text"`
	ResponseContent string    `json:"response_content" gorm:"type:text"`
	Status          string    `json:"status" gorm:"type:text"`
	Error           string    `json:"error,omitempty" gorm:"type:text"`
}
