package pid

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// ParseNumber reads a mode or PID written in hex, with or without a 0x prefix.
func ParseNumber(s string) (byte, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	n, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid hex byte %q: %w", s, err)
	}
	return byte(n), nil
}

// ParsePayload reads hex bytes, ignoring spaces and an optional 0x prefix on
// every field, e.g. "1A F8", "0x1af8", "0x1A 0xF8".
func ParsePayload(parts ...string) ([]byte, error) {
	var sb strings.Builder
	for _, part := range parts {
		for _, field := range strings.Fields(part) {
			sb.WriteString(strings.TrimPrefix(strings.ToLower(field), "0x"))
		}
	}
	s := sb.String()
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid payload %q: %w", s, err)
	}
	return raw, nil
}
