package origin

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// hostProfile maps hosts to their lowercase ASCII form. Lookup validation is
// relaxed so that hosts such as "my_host" still produce a stable key.
var hostProfile = idna.New(
	idna.MapForLookup(),
	idna.Transitional(false),
	idna.StrictDomainName(false),
)

// Key returns the origin key of u. Path, query, fragment and user info are
// ignored. A nil URL yields the empty key.
func Key(u *url.URL) string {
	if u == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(strings.ToLower(u.Scheme))
	b.WriteString("://")
	b.WriteString(canonicalHost(u))
	if port := u.Port(); port != "" {
		b.WriteByte(':')
		b.WriteString(port)
	}
	b.WriteByte('/')
	return b.String()
}

// canonicalHost returns the host of u: lowercase, IDNA ASCII, and bracketed
// when it is an IPv6 literal.
func canonicalHost(u *url.URL) string {
	host := u.Hostname()
	if host == "" {
		return ""
	}
	if strings.Contains(host, ":") {
		return "[" + strings.ToLower(host) + "]"
	}
	if ascii, err := hostProfile.ToASCII(host); err == nil && ascii != "" {
		host = ascii
	}
	return strings.ToLower(host)
}
