// Package validation reúne las reglas de forma que comparten el admin API
// y el validator de los DTOs.
package validation

import (
	"net/url"
	"regexp"
)

// Nombres de scope: minúsculas, 1..64, empiezan y terminan en [a-z0-9],
// en el medio se permite [a-z0-9:_.-]. Nada de espacios ni ';'.
var scopeNameRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9:_.-]{0,62}[a-z0-9])?$`)

func ValidScopeName(name string) bool {
	return scopeNameRe.MatchString(name)
}

// ValidRedirectURI: URI absoluta, sin fragmento. https obligatorio salvo
// loopback (apps nativas y desarrollo).
func ValidRedirectURI(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" || u.Fragment != "" {
		return false
	}
	switch u.Scheme {
	case "https":
		return true
	case "http":
		h := u.Hostname()
		return h == "localhost" || h == "127.0.0.1" || h == "::1"
	default:
		return false
	}
}

// FirstInvalid devuelve el primer valor que no cumple ok, o "" si todos cumplen.
func FirstInvalid(values []string, ok func(string) bool) (string, bool) {
	for _, v := range values {
		if !ok(v) {
			return v, true
		}
	}
	return "", false
}
