package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayName derives a printable name from the local part of an e-mail:
// "maria.silva_2@x.com" -> "Maria Silva 2".
func DisplayName(email string) string {
	local := strings.TrimSpace(email)
	if i := strings.IndexByte(local, '@'); i >= 0 {
		local = local[:i]
	}
	local = strings.NewReplacer(".", " ", "_", " ", "-", " ", "+", " ").Replace(local)
	// a Caser keeps state, so one per call
	return cases.Title(language.BrazilianPortuguese).String(strings.Join(strings.Fields(local), " "))
}

// MaskEmail hides most of the local part for logs and public pages.
func MaskEmail(email string) string {
	i := strings.IndexByte(email, '@')
	if i <= 1 {
		return email
	}
	return email[:1] + strings.Repeat("*", i-1) + email[i:]
}
