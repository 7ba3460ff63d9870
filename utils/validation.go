// utils/validation.go
package utils

import (
	"regexp"
	"strings"
)

// ValidatePhone checks if a phone number is in a valid international format
func ValidatePhone(phone string) bool {
	// Clean the phone number
	cleaned := strings.ReplaceAll(phone, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	cleaned = strings.ReplaceAll(cleaned, "(", "")
	cleaned = strings.ReplaceAll(cleaned, ")", "")

	// Regular expression for international phone numbers
	// Allows + prefix followed by 7-15 digits
	regex := `^\+?[1-9]\d{1,14}$`
	match, _ := regexp.MatchString(regex, cleaned)
	return match
}

// gstinRegex matches the 15-character GSTIN layout: 2-digit state code,
// 10-character PAN, entity digit, 'Z', checksum character.
var gstinRegex = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][0-9A-Z]Z[0-9A-Z]$`)

// ValidateGSTIN checks the GSTIN format. An empty value is valid: both the
// business profile and customers may be unregistered.
func ValidateGSTIN(gstin string) bool {
	if gstin == "" {
		return true
	}
	return gstinRegex.MatchString(strings.ToUpper(strings.TrimSpace(gstin)))
}
