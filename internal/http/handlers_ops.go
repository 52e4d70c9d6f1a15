package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type sizer interface {
	Size() int
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.started).Round(time.Second).String(),
	})
}

// handleReady reports whether templates are loaded and the session store
// answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if p, ok := s.sessions.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			checks["sessions"] = fmt.Sprintf("failed: %v", err)
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["sessions"] = "ok"
		}
	} else {
		checks["sessions"] = "ok"
	}

	// Mail is optional, so a broken queue degrades the check without
	// failing readiness.
	switch p, ok := s.mailer.(pinger); {
	case s.mailer == nil:
		checks["mail"] = "disabled"
	case ok:
		if err := p.Ping(ctx); err != nil {
			checks["mail"] = fmt.Sprintf("degraded: %v", err)
		} else {
			checks["mail"] = "ok"
		}
	default:
		checks["mail"] = "enabled"
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var b strings.Builder
	traceMetrics := s.traceMiddleware.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.securityDetector.GetMetrics()
	m := s.appMetrics

	write := func(name, kind, help string, value any) {
		fmt.Fprintf(&b, "# HELP %s %s\n", name, help)
		fmt.Fprintf(&b, "# TYPE %s %s\n", name, kind)
		fmt.Fprintf(&b, "%s %v\n\n", name, value)
	}

	write("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	write("http_client_errors_total", "counter", "HTTP responses with a 4xx status", traceMetrics.ClientErrors)
	write("http_server_errors_total", "counter", "HTTP responses with a 5xx status", traceMetrics.ServerErrors)
	write("http_response_time_avg_ms", "gauge", "Average response time in milliseconds", traceMetrics.AverageResponseTime().Milliseconds())

	write("accruals_calculated_total", "counter", "Wizard calculations", m.load(&m.calculations))
	write("api_accruals_calculated_total", "counter", "JSON API calculations", m.load(&m.apiCalculations))
	write("receipts_issued_total", "counter", "Receipts generated", m.load(&m.receiptsIssued))
	write("receipt_pdf_downloads_total", "counter", "Receipt PDF downloads", m.load(&m.pdfDownloads))
	write("receipt_emails_sent_total", "counter", "Receipt emails sent", m.load(&m.emailsSent))
	write("receipt_emails_failed_total", "counter", "Receipt emails that failed", m.load(&m.emailsFailed))
	write("sessions_started_total", "counter", "Wizard sessions started", m.load(&m.sessionsStarted))
	if sz, ok := s.sessions.(sizer); ok {
		write("sessions_active", "gauge", "Sessions held in memory", sz.Size())
	}

	write("rate_limit_rejected_total", "counter", "Requests rejected by the rate limiter", rateLimitMetrics.Rejected)
	write("rate_limit_active_clients", "gauge", "Clients tracked by the rate limiter", rateLimitMetrics.ClientCount)
	write("security_suspicious_requests_total", "counter", "Requests matching probe patterns", securityMetrics.SuspiciousRequests)

	write("uptime_seconds", "gauge", "Process uptime in seconds", int64(time.Since(m.started).Seconds()))

	NewHTMXResponse().
		Header("Content-Type", "text/plain; charset=utf-8").
		BodyString(b.String()).
		Write(w)
}
