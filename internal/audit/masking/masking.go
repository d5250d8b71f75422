// Package masking redacts credentials before they reach the audit trail.
package masking

import "strings"

const (
	redacted   = "****"
	tokenTail  = 4
	emailField = "email"
)

// Token keeps the last four characters of an API token so two trail entries
// can be matched without storing the credential.
func Token(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	if len(v) <= tokenTail*2 {
		return redacted
	}
	return redacted + v[len(v)-tokenTail:]
}

// Email keeps the first letter of the local part and the whole domain.
func Email(value string) string {
	v := strings.TrimSpace(value)
	at := strings.LastIndex(v, "@")
	if at <= 0 {
		return Token(v)
	}
	return v[:1] + redacted + v[at:]
}

// Fields masks every string in secrets. Keys naming an email address get
// Email, everything else is treated as a token. Nested maps and lists are
// walked.
func Fields(secrets map[string]any) map[string]any {
	if len(secrets) == 0 {
		return nil
	}
	out := make(map[string]any, len(secrets))
	for key, value := range secrets {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out[key] = mask(key, value)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mask(key string, value any) any {
	switch v := value.(type) {
	case string:
		if strings.Contains(strings.ToLower(key), emailField) {
			return Email(v)
		}
		return Token(v)
	case map[string]any:
		return Fields(v)
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = mask(key, item)
		}
		return items
	default:
		return value
	}
}
