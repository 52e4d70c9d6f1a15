package core

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Policy holds the tunable constants of the accrual rules.
type Policy struct {
	// RateThreshold is the running principal at or above which HighRatePercent applies.
	RateThreshold decimal.Decimal
	// HighRatePercent is the monthly rate for principals >= RateThreshold.
	HighRatePercent decimal.Decimal
	// LowRatePercent is the monthly rate for principals below RateThreshold.
	LowRatePercent decimal.Decimal
	// CycleMonths caps the length of one compounding cycle.
	CycleMonths int
	// CutoffDay: returning on or before this day of the month skips that month's charge.
	CutoffDay int
}

// DefaultPolicy is the gold loan policy: 2% a month from 5000 up, 3% below,
// compounded every 12 months, with returns up to the 10th not charged for
// the month.
var DefaultPolicy = Policy{
	RateThreshold:   decimal.NewFromInt(5000),
	HighRatePercent: decimal.NewFromInt(2),
	LowRatePercent:  decimal.NewFromInt(3),
	CycleMonths:     12,
	CutoffDay:       10,
}

// Validate reports the first inconsistency in the policy.
func (p Policy) Validate() error {
	if !p.RateThreshold.IsPositive() {
		return errors.New("rate threshold must be positive")
	}
	if p.HighRatePercent.IsNegative() || p.LowRatePercent.IsNegative() {
		return errors.New("rates cannot be negative")
	}
	if p.CycleMonths < 1 {
		return fmt.Errorf("cycle length %d must be at least 1 month", p.CycleMonths)
	}
	if p.CutoffDay < 0 || p.CutoffDay > 31 {
		return fmt.Errorf("cutoff day %d must be between 0 and 31", p.CutoffDay)
	}
	return nil
}
