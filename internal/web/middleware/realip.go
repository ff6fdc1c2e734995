package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// RealIP rewrites r.RemoteAddr to the bare client IP, without port, so the
// rate limiter and request logs key on the client rather than the connection.
//
// X-Real-IP and then the first X-Forwarded-For entry are honored only when
// the connection comes from one of the trusted proxy CIDRs. A bare IP in
// trusted is treated as a single-host network.
func RealIP(trusted []string) func(http.Handler) http.Handler {
	nets := parseNetworks(trusted)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := hostIP(r.RemoteAddr)

			if ip != nil && contains(nets, ip) {
				if fwd := forwardedIP(r.Header); fwd != nil {
					ip = fwd
				}
			}
			if ip != nil {
				r.RemoteAddr = ip.String()
			}

			next.ServeHTTP(w, r)
		})
	}
}

func parseNetworks(cidrs []string) []*net.IPNet {
	var nets []*net.IPNet
	for _, cidr := range cidrs {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		if !strings.Contains(cidr, "/") {
			if ip := net.ParseIP(cidr); ip != nil {
				bits := 128
				if ip.To4() != nil {
					bits = 32
				}
				cidr = ip.String() + "/" + strconv.Itoa(bits)
			}
		}
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			slog.Warn("realip: ignoring invalid trusted proxy", "cidr", cidr, "error", err)
			continue
		}
		nets = append(nets, network)
	}
	return nets
}

// forwardedIP returns the client named by proxy headers, if valid.
func forwardedIP(h http.Header) net.IP {
	if v := strings.TrimSpace(h.Get("X-Real-IP")); v != "" {
		return net.ParseIP(v)
	}
	if v := h.Get("X-Forwarded-For"); v != "" {
		first, _, _ := strings.Cut(v, ",")
		return net.ParseIP(strings.TrimSpace(first))
	}
	return nil
}

// hostIP parses "host:port" or a plain IP.
func hostIP(addr string) net.IP {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(addr)
}

func contains(nets []*net.IPNet, ip net.IP) bool {
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
