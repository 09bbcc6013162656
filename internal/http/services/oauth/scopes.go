package oauth

import (
	"slices"
	"strings"
)

// splitScope separa por espacios y elimina duplicados conservando el orden.
func splitScope(raw string) []string {
	fields := strings.Fields(raw)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// scopeSubset: todos los requested están en allowed.
func scopeSubset(requested, allowed []string) bool {
	for _, s := range requested {
		if !slices.Contains(allowed, s) {
			return false
		}
	}
	return true
}
