// Package redact strips sensitive fragments from strings before they
// are logged. Error messages routinely embed connection strings, API
// keys, file paths and hostnames; redacting them at the logging
// boundary keeps them out of log aggregation.
package redact

import "regexp"

// Redaction placeholders.
const (
	RedactedCredential = "[REDACTED_CREDENTIAL]"
	RedactedKey        = "[REDACTED_KEY]"
	RedactedPath       = "[REDACTED_PATH]"
	RedactedHost       = "[REDACTED_HOST]"
	RedactedSQL        = "[REDACTED_SQL]"
)

var (
	connStringRegex = regexp.MustCompile(`(?i)(postgres|redis|mysql|db|database)://[^@\s]+@`)
	passwordRegex   = regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`)
	apiKeyRegex     = regexp.MustCompile(
		`(?i)(api[_-]?key|token|secret|key|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
	)
	unixPathRegex = regexp.MustCompile(`(/[\w.-]+){2,}`)
	sqlRegex      = regexp.MustCompile(
		`(?i)(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP)[\s\w,*()]+(?:FROM|INTO|SET|TABLE|INDEX)(?:[\s\w,*()='"]+)?`,
	)
	hostPortRegex = regexp.MustCompile(
		`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`,
	)
)

// Patterns apply in order; credentials before paths so a connection
// string is not half-eaten by the path rule first.
var replacements = []struct {
	pattern     *regexp.Regexp
	placeholder string
}{
	{connStringRegex, RedactedCredential},
	{passwordRegex, RedactedCredential},
	{apiKeyRegex, RedactedKey},
	{unixPathRegex, RedactedPath},
	{sqlRegex, RedactedSQL},
	{hostPortRegex, RedactedHost},
}

// String redacts sensitive fragments from the input.
func String(input string) string {
	if input == "" {
		return input
	}
	result := input
	for _, r := range replacements {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts an error's message. Returns "" for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
