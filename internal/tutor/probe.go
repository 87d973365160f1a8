package tutor

import (
	"context"
	"net"
	"time"
)

// DialProbe is a ConnectivityProbe that attempts a TCP dial to a well-known
// host. Used to short-circuit with the localized offline message before any
// generation attempt when the host has no connectivity.
type DialProbe struct {
	// Address is host:port, defaults to the generation API endpoint.
	Address string
	Timeout time.Duration
}

// NewDialProbe creates a probe against the generation API host.
func NewDialProbe() *DialProbe {
	return &DialProbe{
		Address: "generativelanguage.googleapis.com:443",
		Timeout: 2 * time.Second,
	}
}

// Online reports whether the dial succeeds within the timeout.
func (p *DialProbe) Online(ctx context.Context) bool {
	dialer := net.Dialer{Timeout: p.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", p.Address)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
