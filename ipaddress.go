// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package pkivalidate

import (
	"bytes"
	"net/netip"
)

// IPAddress is a 4- or 16-octet network-order address, per spec.md §3.
type IPAddress struct {
	octets []byte
}

// NewIPAddressFromString parses addr's canonical textual form (RFC 1123
// for IPv4, RFC 5952 for IPv6), grounded on the same netip.ParseAddr use
// as boulder's ValidIP.
func NewIPAddressFromString(addr string) (IPAddress, error) {
	parsed, err := netip.ParseAddr(addr)
	if err != nil {
		return IPAddress{}, wrapErr(ErrMalformedCertificate, err, "parsing IP address %q", addr)
	}
	if parsed.Zone() != "" {
		return IPAddress{}, newErr(ErrMalformedCertificate, "IP address must not carry a zone")
	}
	return NewIPAddressFromBytes(parsed.AsSlice())
}

// NewIPAddressFromBytes constructs an IPAddress from raw octets, which
// must be exactly 4 (IPv4) or 16 (IPv6) bytes long.
func NewIPAddressFromBytes(octets []byte) (IPAddress, error) {
	if len(octets) != 4 && len(octets) != 16 {
		return IPAddress{}, newErr(ErrMalformedCertificate, "IP address must be 4 or 16 octets, got %d", len(octets))
	}
	return IPAddress{octets: append([]byte(nil), octets...)}, nil
}

// Bytes returns the address's raw octets.
func (ip IPAddress) Bytes() []byte {
	return append([]byte(nil), ip.octets...)
}

// Equal compares two IPAddresses octet-wise.
func (ip IPAddress) Equal(o IPAddress) bool {
	return bytes.Equal(ip.octets, o.octets)
}

// String renders the address in its canonical textual form.
func (ip IPAddress) String() string {
	addr, ok := netip.AddrFromSlice(ip.octets)
	if !ok {
		return ""
	}
	return addr.String()
}
