// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when a number has no international prefix and the
// caller does not know the user's region.
const DefaultRegion = "US"

// ErrInvalidNumber is returned for input that is not a valid phone number.
var ErrInvalidNumber = errors.New("invalid phone number")

// NormalizeE164 formats a phone number to E.164, interpreting national
// numbers in region. Empty input yields an empty result.
func NormalizeE164(input, region string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", nil
	}
	if region == "" {
		region = DefaultRegion
	}

	number, err := phonenumbers.Parse(trimmed, strings.ToUpper(region))
	if err != nil {
		return "", ErrInvalidNumber
	}

	if !phonenumbers.IsValidNumber(number) {
		return "", ErrInvalidNumber
	}

	return phonenumbers.Format(number, phonenumbers.E164), nil
}

// RegionFromLocale extracts the region from a BCP 47 style locale such as
// "en-GB" or "nl_NL". It returns "" when the locale carries no region.
func RegionFromLocale(locale string) string {
	locale = strings.ReplaceAll(strings.TrimSpace(locale), "_", "-")
	parts := strings.Split(locale, "-")
	if len(parts) < 2 || len(parts[len(parts)-1]) != 2 {
		return ""
	}
	return strings.ToUpper(parts[len(parts)-1])
}
