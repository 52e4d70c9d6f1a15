package core

import (
	"errors"
	"strings"
)

const maxCustomerField = 200

var (
	ErrMissingCustomerDetails = errors.New("please enter all customer details")
	ErrCustomerDetailTooLong  = errors.New("customer detail too long (max 200 characters)")
)

// Customer identifies who pledged the item and what was pledged.
type Customer struct {
	Name    string `json:"name"`
	Item    string `json:"item"`
	Weight  string `json:"weight"`
	Address string `json:"address"`
}

// Validate requires every field, as a receipt is meaningless without them.
func (c Customer) Validate() error {
	for _, v := range []string{c.Name, c.Item, c.Weight, c.Address} {
		if strings.TrimSpace(v) == "" {
			return ErrMissingCustomerDetails
		}
		if len(v) > maxCustomerField {
			return ErrCustomerDetailTooLong
		}
	}
	return nil
}
