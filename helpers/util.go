package helpers

import (
	"strings"
)

// LastSplitPart returns the final segment of target split on separate,
// or an empty string when target contains no separator.
func LastSplitPart(target string, separate string) string {
	parts := strings.Split(target, separate)
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-1]
}
