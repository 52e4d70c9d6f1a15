package core

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for dates accepted from forms and the API.
const DateLayout = "2006-01-02"

type (
	Date struct {
		time.Time
	}

	// LoanPeriod is the span between taking the loan and returning it.
	LoanPeriod struct {
		Start Date
		End   Date
	}

	// AccrualResult is the outcome of one accrual computation.
	AccrualResult struct {
		TotalMonths   int
		TotalInterest decimal.Decimal // rounded to 2 fractional digits
		TotalPayable  decimal.Decimal // original principal + TotalInterest, rounded
	}

	// Cycle is one compounding block of at most Policy.CycleMonths months.
	Cycle struct {
		Months           int
		RatePercent      decimal.Decimal
		OpeningPrincipal decimal.Decimal
		Interest         decimal.Decimal
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidPeriod = errors.New("return date must be after the loan date")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// Display formats the date the way receipts print it (dd-mm-yyyy).
func (d Date) Display() string {
	return d.Format("02-01-2006")
}

// NewLoanPeriod builds a period and checks that the end falls after the start.
func NewLoanPeriod(start, end Date) (LoanPeriod, error) {
	p := LoanPeriod{Start: start, End: end}
	if err := p.Validate(); err != nil {
		return LoanPeriod{}, err
	}
	return p, nil
}

func (p LoanPeriod) Validate() error {
	if err := p.Start.Validate(); err != nil {
		return err
	}
	if err := p.End.Validate(); err != nil {
		return err
	}
	if !p.End.After(p.Start.Time) {
		return ErrInvalidPeriod
	}
	return nil
}
