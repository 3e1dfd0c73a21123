// Package phone normalizes phone numbers for storage and comparison.
package phone

import (
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// MinComparableDigits is the fewest digits a number must have before it is
// considered meaningful for duplicate comparison.
const MinComparableDigits = 4

// Digits strips every non-digit character from raw. This is the canonical
// form used for duplicate comparison between leads.
func Digits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Comparable reports whether the digit form of raw is long enough to be
// meaningful for duplicate detection.
func Comparable(raw string) bool {
	return len(Digits(raw)) >= MinComparableDigits
}

// NormalizeE164 parses raw against the default region and returns the E.164
// representation. Unparseable input falls back to the trimmed original so a
// lead with an odd number is still storable.
func NormalizeE164(raw, defaultRegion string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	parsed, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return trimmed
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

// CountryCode returns the calling code of raw (for example "971") when the
// number parses against the default region, otherwise "".
func CountryCode(raw, defaultRegion string) string {
	parsed, err := phonenumbers.Parse(strings.TrimSpace(raw), defaultRegion)
	if err != nil {
		return ""
	}
	code := parsed.GetCountryCode()
	if code == 0 {
		return ""
	}
	return strconv.Itoa(int(code))
}
