package http

import (
	"sync/atomic"
	"time"
)

// appMetrics counts business events for /metrics.
type appMetrics struct {
	started         time.Time
	calculations    int64
	receiptsIssued  int64
	pdfDownloads    int64
	emailsSent      int64
	emailsFailed    int64
	apiCalculations int64
	sessionsStarted int64
}

func newAppMetrics() *appMetrics {
	return &appMetrics{started: time.Now()}
}

func (m *appMetrics) inc(counter *int64) {
	atomic.AddInt64(counter, 1)
}

func (m *appMetrics) load(counter *int64) int64 {
	return atomic.LoadInt64(counter)
}
