package phoneutil

import (
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when a raw phone string carries no country code.
// Cashier phones arrive from Brazilian operations.
const DefaultRegion = "BR"

// Normalize parses a raw phone string and returns it in E.164 form.
// Whitespace and common separators are handled by the parser; an empty input
// or an unparseable/invalid number is an error.
func Normalize(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("phone number cannot be empty")
	}
	if region == "" {
		region = DefaultRegion
	}

	parsed, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", fmt.Errorf("failed to parse phone number: %w", err)
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return "", fmt.Errorf("invalid phone number")
	}

	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

// Same reports whether two raw phone strings normalize to the same E.164
// number. Falls back to a digits-only comparison when either side does not
// parse, so legacy rows with loose formatting still match.
func Same(a, b, region string) bool {
	na, errA := Normalize(a, region)
	nb, errB := Normalize(b, region)
	if errA == nil && errB == nil {
		return na == nb
	}
	da, db := digitsOnly(a), digitsOnly(b)
	return da != "" && da == db
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
