package logger

import (
	"fmt"
	"sync"

	logModel "vizhaa-backend/models/log"
	"vizhaa-backend/types"

	"gorm.io/gorm"
)

// AsyncLogger persists request logs off the request path.
type AsyncLogger struct {
	db      *gorm.DB
	channel chan types.LogEntry
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
}

func NewAsyncLogger(db *gorm.DB) *AsyncLogger {
	return &AsyncLogger{
		db:      db,
		channel: make(chan types.LogEntry, 100),
	}
}

// Start launches the consumer goroutine.
func (l *AsyncLogger) Start() {
	l.wg.Add(1)
	go l.ProcessLog()
}

func (l *AsyncLogger) ProcessLog() {
	defer l.wg.Done()
	Debug("Starting asynchronous request logger")

	for entry := range l.channel {
		row := logModel.RequestLog{
			RequestID:       entry.RequestID,
			UserID:          entry.UserID,
			Method:          entry.Method,
			URL:             entry.URL,
			RequestBody:     entry.RequestBody,
			ResponseBody:    entry.ResponseBody,
			RequestHeaders:  entry.RequestHeaders,
			ResponseHeaders: entry.ResponseHeaders,
			StatusCode:      entry.StatusCode,
			DurationMs:      entry.DurationMs,
			CreatedAt:       entry.CreatedAt,
		}
		if err := l.db.Create(&row).Error; err != nil {
			Error(fmt.Sprintf("Failed to insert request log %s %s", entry.Method, entry.URL), err)
		}
	}
}

// Log queues an entry. When the buffer is full the entry is dropped.
func (l *AsyncLogger) Log(entry types.LogEntry) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	select {
	case l.channel <- entry:
	default:
		Warning(fmt.Sprintf("Request log buffer full, dropping %s %s", entry.Method, entry.URL))
	}
}

// Close drains pending entries and stops the consumer.
func (l *AsyncLogger) Close() {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.channel)
	}
	l.mu.Unlock()
	l.wg.Wait()
}
