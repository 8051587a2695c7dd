// Package clientip resolves the caller's IP for the rate limiters.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the client IP from r.RemoteAddr. Proxy headers are
// deliberately ignored: they are caller-controlled, and traffic reaches this
// backend directly, so trusting them would let clients dodge the limiters.
func RealClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return strings.TrimSpace(host)
}
