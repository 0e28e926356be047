package helpers

import (
	"crypto/rand"
	"regexp"
	"strings"
)

// OTPLength is the number of decimal digits in a one-time passcode.
const OTPLength = 6

var otpPattern = regexp.MustCompile(`^\d{6}$`)

// GenOTPCode generates a secure random 6-digit OTP code as a zero-padded
// string. Each digit is drawn independently from crypto/rand.
func GenOTPCode() (string, error) {
	b := make([]byte, OTPLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	digits := make([]byte, OTPLength)
	for i, v := range b {
		digits[i] = '0' + v%10
	}
	return string(digits), nil
}

// NormalizeOTPCode strips whitespace from a user-submitted code and returns
// it if it is exactly six digits, otherwise an empty string.
func NormalizeOTPCode(input string) string {
	normalized := strings.Join(strings.Fields(input), "")
	if !otpPattern.MatchString(normalized) {
		return ""
	}
	return normalized
}
