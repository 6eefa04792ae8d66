package redact

import "strings"

// Email оставляет два первых символа локальной части и домен.
func Email(s string) string {
	parts := strings.Split(s, "@")
	if len(parts) != 2 {
		return "***"
	}

	local, domain := parts[0], parts[1]
	if len(local) > 2 {
		local = local[:2] + "***"
	} else {
		local = "***"
	}

	return local + "@" + domain
}

func Token() string    { return "[REDACTED_TOKEN]" }
func Password() string { return "[REDACTED_PASSWORD]" }

// TokenTail — последние 4 символа токена, чтобы различать пары в логах.
func TokenTail(tok string) string {
	if len(tok) <= 8 {
		return Token()
	}

	return "..." + tok[len(tok)-4:]
}
