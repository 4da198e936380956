// Package common holds the primitive shared types used across ComplyTrack
// domains and interface layers.
package common

import (
	"time"

	"github.com/google/uuid"
)

// ID is a string alias for UUID v4.
type ID string

// NewID returns a fresh random ID.
func NewID() ID { return ID(uuid.New().String()) }

// ClientID identifies a CRM client (the obligated party).
type ClientID string

// ActivityID identifies a compliance activity (e.g. "GST", "Income Tax").
type ActivityID string

// SubactivityID identifies one obligation within an activity.
type SubactivityID string

// BranchID identifies the servicing branch responsible for a client.
type BranchID string

// Metadata is an open-ended key-value bag persisted alongside records.
type Metadata map[string]interface{}

// Status represents the lifecycle state of a platform entity.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// Pagination defines parameters for paginated listings.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total,omitempty"`
}

// Limit returns the page size, zero meaning "no limit".
func (p Pagination) Limit() int { return p.PageSize }

// Offset returns the number of rows to skip for the requested page.
func (p Pagination) Offset() int {
	if p.Page <= 1 || p.PageSize <= 0 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// DateRange defines a half-open interval [From, To).
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}

// ErrorDetail provides structured error information for API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the generic wrapper for admin API responses.
type APIResponse[T any] struct {
	Success   bool         `json:"success"`
	Data      T            `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}
