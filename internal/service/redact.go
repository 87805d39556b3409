package service

import (
	"strings"
)

const redactedValue = "***"

// redactParams returns a copy of params with credential-like values masked.
func redactParams(params map[string]string) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		if isSensitiveKey(k) {
			v = redactedValue
		}
		out[k] = v
	}
	return out
}

func isSensitiveKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "apikey",
		"api_key",
		"api_secret",
		"secret",
		"signature",
		"x-gateway-key":
		return true
	default:
		return false
	}
}
