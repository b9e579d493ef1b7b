package phone

import (
	"errors"
	"strings"
)

const defaultCountryCode = "1"

// Normalization failures. Handlers map these to 400.
var (
	ErrRequired = errors.New("phone is required")
	ErrInvalid  = errors.New("phone must be 10 digits (US) or 11 digits starting with country code 1")
)

// Normalize converts a raw phone number into canonical +1XXXXXXXXXX form.
// Ten digits are assumed US; eleven digits must start with the country code.
func Normalize(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrRequired
	}

	var b strings.Builder
	for _, ch := range raw {
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	digits := b.String()

	switch {
	case len(digits) == 10:
		digits = defaultCountryCode + digits
	case len(digits) == 11 && strings.HasPrefix(digits, defaultCountryCode):
	default:
		return "", ErrInvalid
	}
	return "+" + digits, nil
}

// Mask hides all but the last four digits of a phone number for display.
func Mask(phone string) string {
	if phone == "" {
		return phone
	}
	var b strings.Builder
	for _, ch := range phone {
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	digits := b.String()
	if len(digits) < 4 {
		return "***"
	}
	return "***" + digits[len(digits)-4:]
}
