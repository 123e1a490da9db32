// Package validator checks host strings before any network call is made.
package validator

import "regexp"

// hostPattern accepts http(s)://<domain>.<tld>[/path]. Ports and query strings
// are not recognised, so "https://example.com:8443" is rejected.
var hostPattern = regexp.MustCompile(`^(https?)://([a-zA-Z0-9.-]+)(\.[a-zA-Z]{2,})(/[^\s]*)?$`)

// Validate reports whether url is a well-formed HTTP or HTTPS host URL.
func Validate(url string) bool {
	return hostPattern.MatchString(url)
}

// URLValidator adapts Validate to interfaces that expect a validator value.
type URLValidator struct{}

// Validate reports whether host is a well-formed HTTP or HTTPS host URL.
func (URLValidator) Validate(host string) bool {
	return Validate(host)
}
