package main

import (
	"net/url"
	"strings"
)

// matchCORSOrigin reports whether origin is allowed by one of patterns.
// Supported forms: "*", an exact origin, and "scheme://*.domain" which allows
// any subdomain of domain (but not domain itself) over the same scheme.
func matchCORSOrigin(origin string, patterns []string) bool {
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		switch {
		case p == "":
			continue
		case p == "*":
			return true
		case strings.EqualFold(p, origin):
			return true
		case strings.Contains(p, "://*."):
			pu, err := url.Parse(strings.Replace(p, "*.", "wildcard.", 1))
			if err != nil {
				continue
			}
			ou, err := url.Parse(origin)
			if err != nil {
				continue
			}
			if !strings.EqualFold(pu.Scheme, ou.Scheme) || pu.Port() != ou.Port() {
				continue
			}
			suffix := strings.TrimPrefix(strings.ToLower(pu.Hostname()), "wildcard")
			if strings.HasSuffix(strings.ToLower(ou.Hostname()), suffix) {
				return true
			}
		}
	}
	return false
}
