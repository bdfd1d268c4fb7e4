package logging

import "regexp"

// RedactedText is the replacement text for sensitive data.
const RedactedText = "[REDACTED]"

var (
	// Matches password=xxx, pwd=xxx, pass=xxx in key/value DSNs
	// (Postgres keyword form, SQL Server ODBC form).
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// Matches user:pass@host credentials in URL-form DSNs.
	credentialURLPattern = regexp.MustCompile(`://[^:/@]+:[^@]+@`)

	// Matches api_key=xxx style parameters.
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey)=[A-Za-z0-9-_]{8,}`)
)

// SanitizeDSN removes credentials from a datasource connection string
// before it reaches a log line. Handles both keyword DSNs
// ("host=... password=...") and URL DSNs ("postgres://u:p@host/db").
func SanitizeDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	s := passwordPattern.ReplaceAllString(dsn, "${1}="+RedactedText)
	s = credentialURLPattern.ReplaceAllString(s, "://"+RedactedText+"@")
	return s
}

// SanitizeError sanitizes an error message that might embed a DSN or
// API key, e.g. driver connection failures.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	s := passwordPattern.ReplaceAllString(err.Error(), "${1}="+RedactedText)
	s = credentialURLPattern.ReplaceAllString(s, "://"+RedactedText+"@")
	s = apiKeyPattern.ReplaceAllString(s, "${1}="+RedactedText)
	return s
}
