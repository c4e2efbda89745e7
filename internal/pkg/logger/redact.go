package logger

import (
	"regexp"
	"strings"
)

var (
	emailRegex  = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	bearerRegex = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._\-]+`)
)

var secretKeys = []string{"token", "secret", "password", "authorization"}

func redactValue(key, val string) string {
	key = strings.ToLower(key)
	for _, s := range secretKeys {
		if strings.Contains(key, s) {
			return RedactSecret(val)
		}
	}
	if strings.Contains(key, "email") {
		return RedactEmail(val)
	}
	val = bearerRegex.ReplaceAllString(val, "Bearer ***")
	return emailRegex.ReplaceAllStringFunc(val, RedactEmail)
}

// RedactSecret keeps the last four characters of a credential.
// "1//0gAbCdEf" → "***CdEf"; values of four characters or fewer are fully masked.
func RedactSecret(s string) string {
	if len(s) <= 4 {
		return "***"
	}
	return "***" + s[len(s)-4:]
}

// RedactEmail masks an email address for safe logging.
// "john.doe@example.com" → "jo***@example.com"
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}
