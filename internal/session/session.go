// Package session holds the two-step calculator wizard for one visitor.
//
// A Session moves from AwaitingInput to Calculated when a loan is
// calculated, and back to AwaitingInput on Reset. Customer details for the
// receipt can only be attached once a calculation exists.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"goldloan/internal/core"
)

// WizardState is the step the visitor is on.
type WizardState int

const (
	AwaitingInput WizardState = iota
	Calculated
)

func (s WizardState) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting_input"
	case Calculated:
		return "calculated"
	}
	return fmt.Sprintf("WizardState(%d)", int(s))
}

var (
	ErrNotFound   = errors.New("session not found")
	ErrWrongState = errors.New("action not allowed in current wizard state")
)

// Session is the transient state of one visitor's calculation.
type Session struct {
	ID            string             `json:"id"`
	State         WizardState        `json:"state"`
	Principal     decimal.Decimal    `json:"principal"`
	Period        core.LoanPeriod    `json:"period"`
	Result        core.AccrualResult `json:"result"`
	Customer      *core.Customer     `json:"customer,omitempty"`
	ReceiptNumber string             `json:"receipt_number,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// New starts a session awaiting loan input.
func New() *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		State:     AwaitingInput,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Calculate records a calculation and advances to Calculated.
func (s *Session) Calculate(principal decimal.Decimal, period core.LoanPeriod, result core.AccrualResult) error {
	if s.State != AwaitingInput {
		return fmt.Errorf("calculate in state %s: %w", s.State, ErrWrongState)
	}
	s.State = Calculated
	s.Principal = principal
	s.Period = period
	s.Result = result
	s.touch()
	return nil
}

// AttachCustomer stores the receipt details and assigns a receipt number
// the first time.
func (s *Session) AttachCustomer(c core.Customer) error {
	if s.State != Calculated {
		return fmt.Errorf("attach customer in state %s: %w", s.State, ErrWrongState)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	s.Customer = &c
	if s.ReceiptNumber == "" {
		s.ReceiptNumber = newReceiptNumber()
	}
	s.touch()
	return nil
}

// Reset discards the calculation and returns to AwaitingInput.
func (s *Session) Reset() {
	s.State = AwaitingInput
	s.Principal = decimal.Zero
	s.Period = core.LoanPeriod{}
	s.Result = core.AccrualResult{}
	s.Customer = nil
	s.ReceiptNumber = ""
	s.touch()
}

// HasReceipt reports whether a receipt can be produced.
func (s *Session) HasReceipt() bool {
	return s.State == Calculated && s.Customer != nil
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now()
}

// newReceiptNumber returns a short, human-readable receipt reference.
func newReceiptNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "GL-" + strings.ToUpper(id[:10])
}

// Store keeps sessions between requests.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

func encode(s *Session) ([]byte, error) {
	return json.Marshal(s)
}

func decode(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}
