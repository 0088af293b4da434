package utils

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP extracts the caller's address from a request. Proxy chains in
// X-Forwarded-For are stripped down to the first forwarded address; with no
// forwarding header the socket's remote address is used.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}

// IsAllowedIP reports whether the caller IP appears in the allow-list. Exact
// string match. An empty allow-list returns false; the caller decides whether
// that fails open and logs the configuration gap.
func IsAllowedIP(callerIP string, allowedIPs []string) bool {
	callerIP = strings.TrimSpace(callerIP)
	for _, allowed := range allowedIPs {
		if strings.TrimSpace(allowed) == callerIP {
			return true
		}
	}
	return false
}
