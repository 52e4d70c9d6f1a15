package core

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MonthsChargeable counts the calendar months between start and end,
// inclusive, dropping the final month when end falls on or before the
// policy's cutoff day. Argument order is not checked: an end before start
// yields zero or a negative count.
func (p Policy) MonthsChargeable(start, end Date) int {
	months := (end.Year()-start.Year())*12 + end.Month() - start.Month() + 1
	if end.Day() <= p.CutoffDay {
		months--
	}
	return months
}

// InterestRatePercent returns the monthly rate, in percent, for the given
// running principal.
func (p Policy) InterestRatePercent(principal decimal.Decimal) decimal.Decimal {
	if principal.GreaterThanOrEqual(p.RateThreshold) {
		return p.HighRatePercent
	}
	return p.LowRatePercent
}

// Schedule splits the chargeable months into compounding cycles. Each cycle
// fixes its rate from the principal at its start, charges that rate for
// every month in the cycle, then adds the cycle's interest to the principal.
// Amounts are unrounded. A non-positive month count yields no cycles.
func (p Policy) Schedule(principal decimal.Decimal, start, end Date) []Cycle {
	total := p.MonthsChargeable(start, end)
	var cycles []Cycle

	running := principal
	for done := 0; done < total; {
		months := min(p.CycleMonths, total-done)
		rate := p.InterestRatePercent(running)
		interest := running.Mul(rate).Div(hundred).Mul(decimal.NewFromInt(int64(months)))

		cycles = append(cycles, Cycle{
			Months:           months,
			RatePercent:      rate,
			OpeningPrincipal: running,
			Interest:         interest,
		})

		running = running.Add(interest)
		done += months
	}
	return cycles
}

// Accrue computes months charged, total interest and total payable for a
// loan of principal taken on start and returned on end. It never fails: a
// zero or negative month count accrues nothing and the payable equals the
// principal.
func (p Policy) Accrue(principal decimal.Decimal, start, end Date) AccrualResult {
	interest := decimal.Zero
	for _, c := range p.Schedule(principal, start, end) {
		interest = interest.Add(c.Interest)
	}
	return AccrualResult{
		TotalMonths:   p.MonthsChargeable(start, end),
		TotalInterest: interest.Round(2),
		TotalPayable:  principal.Add(interest).Round(2),
	}
}

// AccrueStrict is Accrue with input checks: the principal must be positive
// and the period must end after it starts.
func (p Policy) AccrueStrict(principal decimal.Decimal, period LoanPeriod) (AccrualResult, error) {
	if !principal.IsPositive() {
		return AccrualResult{}, ErrInvalidAmount
	}
	if err := period.Validate(); err != nil {
		return AccrualResult{}, err
	}
	return p.Accrue(principal, period.Start, period.End), nil
}

// MonthsChargeable applies DefaultPolicy.
func MonthsChargeable(start, end Date) int {
	return DefaultPolicy.MonthsChargeable(start, end)
}

// InterestRatePercent applies DefaultPolicy.
func InterestRatePercent(principal decimal.Decimal) decimal.Decimal {
	return DefaultPolicy.InterestRatePercent(principal)
}

// Accrue applies DefaultPolicy.
func Accrue(principal decimal.Decimal, start, end Date) AccrualResult {
	return DefaultPolicy.Accrue(principal, start, end)
}

// AccrueStrict applies DefaultPolicy.
func AccrueStrict(principal decimal.Decimal, period LoanPeriod) (AccrualResult, error) {
	return DefaultPolicy.AccrueStrict(principal, period)
}
