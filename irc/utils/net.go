// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2016 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package utils

import (
	"net"
	"regexp"
	"strings"
)

var (
	IPv4LoopbackAddress = net.ParseIP("127.0.0.1").To16()

	validHostnameLabelRegexp = regexp.MustCompile(`^[0-9A-Za-z.\-]+$`)
)

// AddrToIP returns the IP address for a net.Addr; unix domain sockets are treated as IPv4 loopback
func AddrToIP(addr net.Addr) net.IP {
	switch addr := addr.(type) {
	case *net.TCPAddr:
		return addr.IP.To16()
	case *net.UnixAddr:
		return IPv4LoopbackAddress
	default:
		return nil
	}
}

// IPStringToHostname converts a string representation of an IP address to a prefix-ready hostname
func IPStringToHostname(ipStr string) string {
	if 0 < len(ipStr) && ipStr[0] == ':' {
		// IPv6 hostnames must not start with a colon, or they'd be read as a trailing parameter
		ipStr = "0" + ipStr
	}
	return ipStr
}

// AddrToHostname is the hostname shown in a session's prefix: the peer IP
// where there is one, otherwise the address string of the transport.
func AddrToHostname(addr net.Addr) string {
	if addr == nil {
		return "unknown"
	}
	if ip := AddrToIP(addr); ip != nil {
		if ip4 := ip.To4(); ip4 != nil {
			ip = ip4
		}
		return IPStringToHostname(ip.String())
	}
	return IPStringToHostname(strings.ReplaceAll(addr.String(), " ", ""))
}

// IsHostname returns whether we consider `name` a valid hostname.
func IsHostname(name string) bool {
	name = strings.TrimSuffix(name, ".")
	if len(name) < 1 || len(name) > 253 {
		return false
	}

	// ensure each part of hostname is valid
	for _, part := range strings.Split(name, ".") {
		if len(part) < 1 || len(part) > 63 || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
		if !validHostnameLabelRegexp.MatchString(part) {
			return false
		}
	}

	return true
}
