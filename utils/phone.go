package utils

import (
	"regexp"
	"strings"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// ValidatePhoneNumber accepts exactly ten digits.
func ValidatePhoneNumber(phone string) bool {
	return phonePattern.MatchString(strings.TrimSpace(phone))
}

// NormalizePhone strips everything but digits and drops a leading 91 or 0
// from numbers longer than ten digits.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return digits[2:]
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		return digits[1:]
	}
	return digits
}

// ToE164India converts a ten digit number into 91XXXXXXXXXX.
func ToE164India(phone string) string {
	n := NormalizePhone(phone)
	if len(n) == 10 {
		return "91" + n
	}
	return n
}
