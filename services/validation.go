package services

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var deadlineLayouts = []string{time.RFC3339, "2006-01-02"}

// maxAmount is the first value that no longer fits a numeric(12,2) column
var maxAmount = decimal.New(1, 10)

// ParseDeadline accepts an RFC 3339 timestamp or a plain date
func ParseDeadline(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, Invalid("deadline must be a date (YYYY-MM-DD) or an RFC 3339 timestamp")
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return Invalid(field + " is required")
	}
	return nil
}

func requireAmount(field string, value decimal.Decimal) error {
	if !value.IsPositive() {
		return Invalid(field + " must be greater than zero")
	}
	if value.GreaterThanOrEqual(maxAmount) {
		return Invalid(field + " must be less than " + maxAmount.String())
	}
	return nil
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return Invalid("rating must be between 1 and 5")
	}
	return nil
}
