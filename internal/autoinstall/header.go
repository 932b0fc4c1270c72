package autoinstall

import "strings"

// EnsureHeader returns text starting with marker and whether the marker had to be added.
func EnsureHeader(text, marker string) (string, bool) {
	if strings.HasPrefix(text, marker) {
		return text, false
	}
	return marker + "\n" + text, true
}
