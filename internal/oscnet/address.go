// Package oscnet implements the three OSC transport variants (UDP, TCP
// with length framing, Unix-domain) behind one send/receive interface,
// plus the osc.(udp|tcp|unix)://host:port/ endpoint URL grammar.
package oscnet

/*------------------------------------------------------------------
 *
 * Purpose:	Parse and format osc.<scheme>://host:port/ endpoint URLs.
 *		Address equality is defined on the parsed (scheme, host,
 *		port) tuple rather than the literal string.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/oscmex/engine/internal/oscerr"
)

// Scheme is the transport variant named in an Address.
type Scheme string

const (
	SchemeUDP  Scheme = "udp"
	SchemeTCP  Scheme = "tcp"
	SchemeUnix Scheme = "unix"
)

// Address is a parsed osc.<scheme>://host:port/ endpoint.
type Address struct {
	Scheme Scheme
	Host   string
	Port   int
}

// ParseAddress parses an osc.(udp|tcp|unix)://host:port/ endpoint URL.
func ParseAddress(raw string) (Address, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Address{}, oscerr.New(oscerr.AddressError, raw, err)
	}
	if u.Scheme != "osc.udp" && u.Scheme != "osc.tcp" && u.Scheme != "osc.unix" {
		return Address{}, oscerr.New(oscerr.AddressError, raw, fmt.Errorf("oscnet: unrecognized scheme %q", u.Scheme))
	}
	scheme := Scheme(strings.TrimPrefix(u.Scheme, "osc."))

	if scheme == SchemeUnix {
		// For unix sockets, host carries the socket path.
		path := u.Host + u.Path
		if path == "" {
			return Address{}, oscerr.New(oscerr.AddressError, raw, fmt.Errorf("oscnet: unix address missing path"))
		}
		return Address{Scheme: scheme, Host: path}, nil
	}

	host := u.Hostname()
	portStr := u.Port()
	if host == "" {
		return Address{}, oscerr.New(oscerr.AddressError, raw, fmt.Errorf("oscnet: address missing host"))
	}
	port := 0
	if portStr != "" {
		port, err = strconv.Atoi(portStr)
		if err != nil {
			return Address{}, oscerr.New(oscerr.AddressError, raw, fmt.Errorf("oscnet: invalid port %q", portStr))
		}
	}
	return Address{Scheme: scheme, Host: host, Port: port}, nil
}

// URL formats the address back into the grammar ParseAddress accepts.
// Address.(url) round-trips through ParseAddress for every value this
// package constructs.
func (a Address) URL() string {
	if a.Scheme == SchemeUnix {
		return "osc.unix://" + a.Host
	}
	return fmt.Sprintf("osc.%s://%s:%d/", a.Scheme, a.Host, a.Port)
}

func (a Address) String() string { return a.URL() }

// NetworkAddr is the net package dial/listen string for this address
// (host:port, or the bare path for unix sockets).
func (a Address) NetworkAddr() string {
	if a.Scheme == SchemeUnix {
		return a.Host
	}
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}
