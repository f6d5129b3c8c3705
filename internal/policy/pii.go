package policy

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	emailPattern  = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	phonePattern  = regexp.MustCompile(`(?:\+?\d[\d()\-\s.]{7,}\d)`)
	cardPattern   = regexp.MustCompile(`\b(?:\d[ -]*?){13,16}\b`)
	apiKeyPattern = regexp.MustCompile(`(?i)\b(?:sk|pk|rk)-[a-z0-9\-_]{16,}\b`)
	bearerPattern = regexp.MustCompile(`(?i)bearer\s+[a-z0-9\-._~+/]{12,}=*`)
)

// MaskSecrets redacts credentials that gateways sometimes echo back in error
// bodies. Applied before any error message is persisted or logged.
func MaskSecrets(value string) string {
	masked := apiKeyPattern.ReplaceAllString(value, "[key_redacted]")
	return bearerPattern.ReplaceAllString(masked, "[token_redacted]")
}

// MaskPIIString redacts personal contact data alongside secrets. Task error
// records and exported history pass through here so stored state never holds
// raw credentials or third-party contact details picked up from responses.
// Secrets go first: the digit tail of an api key would otherwise match the
// phone pattern and leave the key prefix behind.
func MaskPIIString(value string) string {
	masked := MaskSecrets(value)
	masked = emailPattern.ReplaceAllStringFunc(masked, func(_ string) string {
		return "[email_redacted]"
	})
	masked = phonePattern.ReplaceAllStringFunc(masked, func(_ string) string {
		return "[phone_redacted]"
	})
	return cardPattern.ReplaceAllStringFunc(masked, maskCardNumber)
}

func MaskPIIJSON(payload json.RawMessage) json.RawMessage {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" {
		return append(json.RawMessage(nil), payload...)
	}

	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return json.RawMessage(MaskPIIString(string(payload)))
	}

	sanitized := maskValue(decoded)
	encoded, err := json.Marshal(sanitized)
	if err != nil {
		return append(json.RawMessage(nil), payload...)
	}

	return encoded
}

func maskValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		cloned := make(map[string]any, len(typed))
		for key, child := range typed {
			cloned[key] = maskValue(child)
		}
		return cloned
	case []any:
		cloned := make([]any, 0, len(typed))
		for _, child := range typed {
			cloned = append(cloned, maskValue(child))
		}
		return cloned
	case string:
		return MaskPIIString(typed)
	default:
		return value
	}
}

func maskCardNumber(value string) string {
	digits := make([]rune, 0, len(value))
	for _, char := range value {
		if char >= '0' && char <= '9' {
			digits = append(digits, char)
		}
	}
	if len(digits) < 8 {
		return "[card_redacted]"
	}

	last4 := string(digits[len(digits)-4:])
	return "**** **** **** " + last4
}
