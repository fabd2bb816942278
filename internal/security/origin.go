package security

import (
	"net/url"
	"slices"
	"strings"
)

// privateHostPrefixes are the development address ranges accepted when
// AllowPrivateNetwork is set
var privateHostPrefixes = []string{"192.168.", "10.", "172."}

// OriginPolicy decides which browser origins may call the API with credentials
type OriginPolicy struct {
	Allowed             []string
	AllowPrivateNetwork bool
	DevPorts            []string
}

// NewOriginPolicy creates an origin policy. Empty devPorts defaults to the
// Vite dev server ports.
func NewOriginPolicy(allowed []string, allowPrivateNetwork bool, devPorts []string) *OriginPolicy {
	if len(devPorts) == 0 {
		devPorts = []string{"5173", "5174"}
	}
	return &OriginPolicy{
		Allowed:             allowed,
		AllowPrivateNetwork: allowPrivateNetwork,
		DevPorts:            devPorts,
	}
}

// Allow reports whether origin is permitted. Requests without an Origin
// (curl, mobile clients) are allowed.
func (p *OriginPolicy) Allow(origin string) bool {
	if origin == "" {
		return true
	}
	if slices.Contains(p.Allowed, origin) {
		return true
	}
	return p.AllowPrivateNetwork && p.isDevelopmentOrigin(origin)
}

func (p *OriginPolicy) isDevelopmentOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}

	host := u.Hostname()
	validHost := host == "localhost" || host == "127.0.0.1"
	for _, prefix := range privateHostPrefixes {
		if strings.HasPrefix(host, prefix) {
			validHost = true
			break
		}
	}
	if !validHost {
		return false
	}

	port := u.Port()
	return port == "" || slices.Contains(p.DevPorts, port)
}
