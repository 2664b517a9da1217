package domain

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Validation errors
var (
	ErrInvalidSynonym  = fmt.Errorf("%w: invalid synonym", ErrValidation)
	ErrInvalidCurrency = fmt.Errorf("%w: invalid currency code", ErrValidation)
	ErrInvalidUserID   = fmt.Errorf("%w: invalid user id", ErrValidation)
	ErrAmountTooLarge  = fmt.Errorf("%w: amount exceeds maximum allowed", ErrValidation)
)

// Validation constants
const (
	MaxSynonymLength = 64

	// MaxOperationAmount caps a single payment, withdrawal or transfer in minor units.
	MaxOperationAmount int64 = 100_000_000_000_00
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "RUB": true, "TRY": true, "HKD": true,
	"KZT": true, "UAH": true,
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a supported ISO 4217 code", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidateUserID checks that id is a UUID issued by the identity service.
func ValidateUserID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidUserID, id)
	}

	return nil
}

// ValidateSynonym validates the public display name of a member.
// An empty synonym is allowed.
func ValidateSynonym(synonym string) error {
	if synonym != strings.TrimSpace(synonym) {
		return fmt.Errorf("%w: leading or trailing spaces", ErrInvalidSynonym)
	}

	if len(synonym) > MaxSynonymLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidSynonym, MaxSynonymLength)
	}

	for _, r := range synonym {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' && r != '.' {
			return fmt.Errorf("%w: contains forbidden characters", ErrInvalidSynonym)
		}
	}

	return nil
}

// ValidateOperationAmount checks the amount of a single ledger operation.
func ValidateOperationAmount(amount Money) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	if amount.Amount() > MaxOperationAmount {
		return ErrAmountTooLarge
	}

	return nil
}

func validateDigits(s string, n int) error {
	if len(s) != n {
		return fmt.Errorf("%w: expected %d digits", ErrInvalidCardFragment, n)
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: expected digits only", ErrInvalidCardFragment)
		}
	}

	return nil
}
