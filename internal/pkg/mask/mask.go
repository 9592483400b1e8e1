package mask

import "strings"

// Token hides all but the last four characters of a device or refresh token.
func Token(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "****" + value
	}
	return "****" + value[len(value)-4:]
}

// Authorization masks a bearer header value, keeping the scheme.
func Authorization(value string) string {
	parts := strings.Fields(value)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return "Bearer " + Token(parts[1])
	}
	return Token(value)
}
