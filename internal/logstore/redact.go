package logstore

import "regexp"

var (
	emailRe  = regexp.MustCompile(`(?i)\b[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}\b`)
	numberRe = regexp.MustCompile(`\b\d{6,}\b`)
)

// Redact masks e-mail addresses and runs of six or more digits. Emails go first
// so digits inside an address are not masked separately.
func Redact(s string) string {
	s = emailRe.ReplaceAllString(s, "[REDACTED_EMAIL]")
	return numberRe.ReplaceAllString(s, "[REDACTED_NUMBER]")
}
