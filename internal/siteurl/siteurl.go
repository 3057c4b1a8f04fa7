// Package siteurl canonicalizes raw site URLs into stable site keys.
//
// Marketing redirects append affiliate path segments or r_c query parameters
// to the base site URL. Every downstream API path is built fresh from the
// base, so the canonical form is bare scheme://host with no path, query,
// fragment, or trailing slash.
package siteurl

import (
	"net/url"
	"strings"
)

// Normalize reduces a raw URL to its scheme://host site key.
// It never fails: unparseable input falls back to a naive string strip.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return naiveStrip(raw)
	}
	return u.Scheme + "://" + u.Host
}

// naiveStrip drops query, fragment, and trailing slashes without parsing.
func naiveStrip(raw string) string {
	s := strings.SplitN(raw, "?", 2)[0]
	s = strings.SplitN(s, "#", 2)[0]
	return strings.TrimRight(s, "/")
}
