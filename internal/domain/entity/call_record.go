package entity

import (
	"time"
)

// CallRecord is a journal entry describing one tool invocation
type CallRecord struct {
	ID         string    `json:"id"`
	Tool       string    `json:"tool"`
	Status     string    `json:"status"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Message    string    `json:"message,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	RequestID  string    `json:"request_id,omitempty"`
	At         time.Time `json:"at"`
}
