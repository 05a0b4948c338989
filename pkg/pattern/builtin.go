package pattern

import "github.com/ssargent/sq/pkg/config"

// builtinPatterns returns the named expressions available without configuration.
// All expressions are RE2 syntax.
func builtinPatterns() map[string]config.Pattern {
	return map[string]config.Pattern{
		"email": {
			Pattern:     `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9]+(?:[.-][A-Za-z0-9]+)*\.[A-Za-z]{2,63}\b`,
			Description: "Email addresses",
		},
		"ipv4": {
			Pattern:     `\b(?:(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)\.){3}(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)\b`,
			Description: "IPv4 addresses",
		},
		"ssn_us": {
			Pattern:     `\b\d{3}-\d{2}-\d{4}\b`,
			Description: "US social security numbers",
		},
		"phone_us": {
			Pattern:     `(?:\+1[ .-]?)?(?:\(\d{3}\)|\b\d{3})[ .-]?\d{3}[ .-]\d{4}\b`,
			Description: "US phone numbers",
		},
		"credit_card": {
			Pattern:     `\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`,
			Description: "Payment card numbers",
		},
		"url": {
			Pattern:     `\bhttps?://[^\s"'<>]+`,
			Description: "HTTP(S) URLs",
		},
		"uuid": {
			Pattern:     `\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`,
			Description: "UUIDs",
		},
		"aws_access_key": {
			Pattern:     `\b(?:AKIA|ASIA)[A-Z0-9]{16}\b`,
			Description: "AWS access key ids",
		},
	}
}

// builtinGroups returns predefined groups. Member order is alternation order,
// so earlier members win when two match at the same position.
func builtinGroups() map[string][]string {
	return map[string][]string{
		"pii":     {"email", "ssn_us", "credit_card", "phone_us"}, // Personal data
		"network": {"url", "email", "ipv4"},                       // Addresses
		"secrets": {"aws_access_key", "uuid"},                     // Credentials and tokens
	}
}
