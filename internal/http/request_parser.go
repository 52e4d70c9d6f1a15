// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Form posts from the wizard and JSON bodies from the API go through the same
// loan and customer parsing so both surfaces report identical messages.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"goldloan/internal/core"
)

// Field names shared by the HTML forms and the JSON API.
const (
	fieldAmount    = "amount"
	fieldStartDate = "start_date"
	fieldEndDate   = "end_date"
	fieldName      = "name"
	fieldItem      = "item"
	fieldWeight    = "weight"
	fieldAddress   = "address"
	fieldEmail     = "email"
)

// maxBodyBytes caps request bodies; the largest legitimate one is the
// customer form.
const maxBodyBytes = 16 << 10

// MinPrincipal is the smallest loan the calculator accepts.
var MinPrincipal = decimal.NewFromInt(100)

// valueGetter is satisfied by url.Values and *RequestBodyParser.
type valueGetter interface {
	Get(key string) string
}

// ValidationError carries a message that is safe to show the visitor.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Err }

// LoanInput is the first wizard step as submitted, before validation.
type LoanInput struct {
	Amount    string
	StartDate string
	EndDate   string
}

// LoanRequest is a validated LoanInput.
type LoanRequest struct {
	Principal decimal.Decimal
	Period    core.LoanPeriod
}

// ParseLoanInput reads the loan fields from a form or JSON body.
func ParseLoanInput(v valueGetter) LoanInput {
	return LoanInput{
		Amount:    strings.TrimSpace(sanitizeInput(v.Get(fieldAmount))),
		StartDate: strings.TrimSpace(sanitizeInput(v.Get(fieldStartDate))),
		EndDate:   strings.TrimSpace(sanitizeInput(v.Get(fieldEndDate))),
	}
}

// Validate checks the input and converts it. Failures are *ValidationError
// wrapping the matching core sentinel.
func (in LoanInput) Validate(minPrincipal decimal.Decimal, currencySymbol string) (LoanRequest, error) {
	if in.Amount == "" {
		return LoanRequest{}, &ValidationError{Field: fieldAmount, Message: "Please enter the loan amount.", Err: core.ErrInvalidAmount}
	}
	principal, err := core.ParseAmount(in.Amount)
	if err != nil {
		return LoanRequest{}, &ValidationError{Field: fieldAmount, Message: "Please enter a valid loan amount.", Err: err}
	}
	if principal.LessThan(minPrincipal) {
		return LoanRequest{}, &ValidationError{
			Field:   fieldAmount,
			Message: fmt.Sprintf("Loan amount must be at least %s.", core.FormatAmount(currencySymbol, minPrincipal)),
			Err:     core.ErrInvalidAmount,
		}
	}

	start, err := core.ParseDate(in.StartDate)
	if err != nil {
		return LoanRequest{}, &ValidationError{Field: fieldStartDate, Message: "Please enter a valid loan date (YYYY-MM-DD).", Err: err}
	}
	end, err := core.ParseDate(in.EndDate)
	if err != nil {
		return LoanRequest{}, &ValidationError{Field: fieldEndDate, Message: "Please enter a valid return date (YYYY-MM-DD).", Err: err}
	}

	period, err := core.NewLoanPeriod(start, end)
	if err != nil {
		return LoanRequest{}, &ValidationError{Field: fieldEndDate, Message: "Return date must be after the loan date.", Err: err}
	}

	return LoanRequest{Principal: principal, Period: period}, nil
}

// ParseCustomer reads the receipt details form.
func ParseCustomer(v valueGetter) core.Customer {
	return core.Customer{
		Name:    strings.TrimSpace(sanitizeInput(v.Get(fieldName))),
		Item:    strings.TrimSpace(sanitizeInput(v.Get(fieldItem))),
		Weight:  strings.TrimSpace(sanitizeInput(v.Get(fieldWeight))),
		Address: strings.TrimSpace(sanitizeInput(v.Get(fieldAddress))),
	}
}

// validationMessage returns the visitor-facing text for err.
func validationMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	if errors.Is(err, core.ErrMissingCustomerDetails) {
		return "Please enter all customer details."
	}
	if errors.Is(err, core.ErrCustomerDetailTooLong) {
		return "Customer details must be at most 200 characters each."
	}
	return "Invalid input."
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(r.Body)
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// JSON when declared or when the body looks like an object
	if strings.HasPrefix(p.contentType, "application/json") || p.body[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// stringValue converts a decoded JSON value to string. Numbers keep the
// shortest representation so 4000.5 stays "4000.5".
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format.")
	}
	return nil
}

// sanitizeInput strips control characters other than tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// isHTMX reports whether the request was issued by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
