package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2023-03-20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2023 || d.Month() != 3 || d.Day() != 20 {
		t.Fatalf("got %s", d)
	}
	if d.Display() != "20-03-2023" {
		t.Fatalf("display = %q", d.Display())
	}

	for _, in := range []string{"", "20-03-2023", "2023-13-01", "2023-02-30"} {
		if _, err := ParseDate(in); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", in, err)
		}
	}
}

func TestNewLoanPeriod(t *testing.T) {
	if _, err := NewLoanPeriod(NewDate(2024, 1, 1), NewDate(2024, 1, 2)); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		start, end Date
		want       error
	}{
		{NewDate(2024, 1, 2), NewDate(2024, 1, 2), ErrInvalidPeriod},
		{NewDate(2024, 1, 15), NewDate(2024, 1, 5), ErrInvalidPeriod},
		{Date{}, NewDate(2024, 1, 5), ErrInvalidDate},
		{NewDate(2024, 1, 5), Date{}, ErrInvalidDate},
	}
	for i, tc := range bads {
		if _, err := NewLoanPeriod(tc.start, tc.end); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestCustomerValidate(t *testing.T) {
	good := Customer{Name: "Ravi", Item: "Gold Chain", Weight: "10g", Address: "Vijayawada"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Customer{
		{Item: "Ring", Weight: "5g", Address: "x"},
		{Name: "a", Weight: "5g", Address: "x"},
		{Name: "a", Item: "Ring", Address: "x"},
		{Name: "a", Item: "Ring", Weight: "5g", Address: "   "},
	}
	for i, c := range bads {
		if err := c.Validate(); !errors.Is(err, ErrMissingCustomerDetails) {
			t.Fatalf("case %d expected ErrMissingCustomerDetails, got %v", i, err)
		}
	}

	long := good
	long.Address = strings.Repeat("x", 201)
	if err := long.Validate(); err == nil {
		t.Fatal("expected error for overlong field")
	}
}
