package availability

import (
	"net"
	"strings"
)

const (
	DefaultStagingBase    = "https://dev-moh-f3a4edb2.vaxx.nz"
	DefaultProductionBase = "https://moh.vaxx.nz"
)

// Proxies holds the two availability proxy roots a request can be routed to.
type Proxies struct {
	Staging    string
	Production string
}

func DefaultProxies() Proxies {
	return Proxies{Staging: DefaultStagingBase, Production: DefaultProductionBase}
}

// IsStagingHost reports whether a request host belongs to a development or
// preview deployment: localhost, 127.0.0.1, or any netlify.app host.
func IsStagingHost(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")

	switch {
	case host == "localhost", host == "127.0.0.1":
		return true
	case strings.HasSuffix(host, "netlify.app"):
		return true
	default:
		return false
	}
}

// BaseFor picks the proxy root for the host a page was served from.
func (p Proxies) BaseFor(host string) string {
	if IsStagingHost(host) {
		return p.Staging
	}
	return p.Production
}
