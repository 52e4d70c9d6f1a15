package log

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// Middleware creates HTTP middleware that adds a logger to the request context
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := NewContext(r.Context(), logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from the request context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides domain-level log events
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogAccrualCalculated logs a successful calculation step of the wizard
func (sl *StructuredLogger) LogAccrualCalculated(ctx context.Context, sessionID string, principal decimal.Decimal, start, end string, months int, interest, payable decimal.Decimal) {
	fields := NewFields().
		WithSessionID(sessionID).
		WithLoan(principal, start, end).
		WithAccrual(months, interest, payable).
		WithOperation(OpCalculate)

	sl.logger.WithComponent(ComponentAccrual).InfoContext(ctx, "Loan accrual calculated", fields.ToSlice()...)
}

// LogReceiptIssued logs a receipt preview, download or email
func (sl *StructuredLogger) LogReceiptIssued(ctx context.Context, sessionID, number, operation string) {
	fields := NewFields().
		WithSessionID(sessionID).
		WithOperation(operation)
	fields[FieldReceiptNumber] = number

	sl.logger.WithComponent(ComponentReceipt).InfoContext(ctx, "Receipt issued", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation)

	sl.logger.WithComponent(component).ErrorContext(ctx, msg, allFields.ToSlice()...)
}
