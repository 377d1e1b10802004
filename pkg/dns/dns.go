// Package dns resolves the address a service advertises to its registry.
package dns

import (
	"errors"
	"net"
	"os"
	"strconv"
)

// ErrNoIPv4 is returned when a host resolves to IPv6 addresses only.
var ErrNoIPv4 = errors.New("no IPv4 address found")

// HostnameToIP returns the first IPv4 address of hostname.
func HostnameToIP(hostname string) (net.IP, error) {
	ips, err := net.LookupIP(hostname)
	if err != nil {
		return nil, err
	}
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			return v4, nil
		}
	}
	return nil, ErrNoIPv4
}

// AdvertiseAddress returns the host:port other services should use to reach
// this process on port. An empty hostname means the machine's own name.
// The name itself is used when it does not resolve to an IPv4 address.
func AdvertiseAddress(hostname string, port int) (string, error) {
	if hostname == "" {
		h, err := os.Hostname()
		if err != nil {
			return "", err
		}
		hostname = h
	}
	host := hostname
	if ip, err := HostnameToIP(hostname); err == nil {
		host = ip.String()
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}
