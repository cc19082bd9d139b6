package util

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxAmount caps a single amount at 10 billion cents.
const MaxAmount int64 = 10_000_000_000

// ValidateAmount checks an amount in cents: positive and below MaxAmount.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %d", amount)
	}
	if amount >= MaxAmount {
		return fmt.Errorf("amount too large, got %d", amount)
	}
	return nil
}

// ValidateDate checks a YYYY-MM-DD date.
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	_, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}

// ValidateName checks a display name: non-blank and at most max runes.
func ValidateName(name string, max int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is empty")
	}
	if utf8.RuneCountInString(name) > max {
		return fmt.Errorf("name too long, max %d characters", max)
	}
	return nil
}
