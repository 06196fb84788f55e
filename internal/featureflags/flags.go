package featureflags

import (
	"os"
	"strings"
)

// ExclusiveBidAccept makes bid acceptance refuse a second accepted bid on the same listing
const ExclusiveBidAccept = "exclusive_bid_accept"

// Enabled returns true if a flag is enabled via environment variable.
// Flags are read from env as FLAG_<NAME>=true/1/yes/on (case-insensitive).
func Enabled(name string) bool {
	return parse(os.Getenv(envKey(name)))
}

func envKey(name string) string {
	return "FLAG_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func parse(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
