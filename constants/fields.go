package constants

import (
	"strings"
	"unicode"
)

// SupportedFields is the canonical list of fields the localizer is asked to
// find, in prompt order. Every ItemResult accounts for each of these exactly
// once.
var SupportedFields = []string{
	"identityNumber",
	"titleTh",
	"firstNameTh",
	"lastNameTh",
	"titleEn",
	"firstNameEn",
	"lastNameEn",
	"dateOfBirthEn",
	"dateOfBirthTh",
}

// The synthesized dateOfBirth field prefers the English reading and falls
// back to the Thai one.
const (
	FieldDateOfBirthPrimary   = "dateOfBirthEn"
	FieldDateOfBirthSecondary = "dateOfBirthTh"
)

// FieldLabel turns a camelCase field name into the human-readable label used
// in OCR prompts: "firstNameEn" -> "first name en".
func FieldLabel(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// IsSupportedField reports whether name is in SupportedFields.
func IsSupportedField(name string) bool {
	for _, f := range SupportedFields {
		if f == name {
			return true
		}
	}
	return false
}
