package validator

import (
	"strings"
)

// phoneSeparators are stripped before a contact number is checked
var phoneSeparators = strings.NewReplacer(
	" ", "",
	"-", "",
	"(", "",
	")", "",
	".", "",
)

// SanitizePhone removes common separators from a contact number.
// A leading + is kept for international numbers.
func SanitizePhone(phone string) string {
	return phoneSeparators.Replace(strings.TrimSpace(phone))
}
