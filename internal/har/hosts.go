package har

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// Options filter the entries that become hosts.
type Options struct {
	// IncludeHosts keeps only these URL hosts (empty = all hosts)
	IncludeHosts []string
	// ExcludeHosts drops these URL hosts
	ExcludeHosts []string
	// ExcludeStatic drops static assets (.js, .css, images, fonts)
	ExcludeStatic bool
}

// DefaultOptions skips static assets.
func DefaultOptions() Options {
	return Options{ExcludeStatic: true}
}

var staticExtensions = []string{
	".js", ".css", ".png", ".jpg", ".jpeg", ".gif", ".svg",
	".woff", ".woff2", ".ttf", ".eot", ".ico", ".map",
}

// Hosts returns the distinct GET targets of h in capture order. Query strings
// and fragments are dropped, so repeated calls to one page count once.
func Hosts(h *HAR, opts Options) ([]string, error) {
	if h == nil || h.Log == nil {
		return nil, fmt.Errorf("HAR is nil or has nil Log")
	}

	seen := make(map[string]struct{})
	var hosts []string
	for _, entry := range h.Log.Entries {
		if entry == nil || entry.Request == nil || !strings.EqualFold(entry.Request.Method, "GET") {
			continue
		}
		u, err := url.Parse(entry.Request.URL)
		if err != nil || u.Host == "" {
			continue
		}
		if !include(u, opts) {
			continue
		}
		target := targetOf(u)
		if _, dup := seen[target]; dup {
			continue
		}
		seen[target] = struct{}{}
		hosts = append(hosts, target)
	}
	return hosts, nil
}

// ReadFile parses the HAR at path and returns its hosts with DefaultOptions.
func ReadFile(path string) ([]string, error) {
	h, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return Hosts(h, DefaultOptions())
}

func include(u *url.URL, opts Options) bool {
	if len(opts.IncludeHosts) > 0 && !slices.Contains(opts.IncludeHosts, u.Host) {
		return false
	}
	if slices.Contains(opts.ExcludeHosts, u.Host) {
		return false
	}
	if opts.ExcludeStatic && isStaticAsset(u.Path) {
		return false
	}
	return true
}

func isStaticAsset(path string) bool {
	lowerPath := strings.ToLower(path)
	for _, ext := range staticExtensions {
		if strings.HasSuffix(lowerPath, ext) {
			return true
		}
	}
	return false
}

func targetOf(u *url.URL) string {
	t := url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path}
	return t.String()
}
