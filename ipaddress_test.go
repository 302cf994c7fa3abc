// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package pkivalidate

import "testing"

func TestNewIPAddressFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"ipv4", "192.0.2.1", false},
		{"ipv6", "2001:db8::1", false},
		{"invalid", "not-an-ip", true},
		{"zone forbidden", "fe80::1%eth0", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewIPAddressFromString(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewIPAddressFromString(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestIPAddressEqualAndBytes(t *testing.T) {
	a, err := NewIPAddressFromString("192.0.2.1")
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewIPAddressFromBytes([]byte{192, 0, 2, 1})
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Fatal("expected equal IP addresses")
	}
	if a.String() != "192.0.2.1" {
		t.Fatalf("got %q, want 192.0.2.1", a.String())
	}
}

func TestNewIPAddressFromBytesRejectsBadLength(t *testing.T) {
	if _, err := NewIPAddressFromBytes([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for 3-byte address")
	}
}
