package types

import "time"

// LogEntry is one sanitized request/response pair queued for persistence.
type LogEntry struct {
	RequestID       string
	UserID          string
	Method          string
	URL             string
	RequestBody     string
	ResponseBody    string
	RequestHeaders  string
	ResponseHeaders string
	StatusCode      int
	DurationMs      int64
	CreatedAt       time.Time
}
