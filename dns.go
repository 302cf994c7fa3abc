// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package pkivalidate

import (
	"strings"

	"golang.org/x/text/encoding/idna"
	"golang.org/x/text/unicode/norm"
)

// DNS length limits per RFC 1035 and spec.md §3.
const (
	maxDNSLabelLength = 63
	maxDNSNameLength  = 253
)

func isDNSLabelCharacter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') ||
		('A' <= ch && ch <= 'Z') ||
		('0' <= ch && ch <= '9') ||
		ch == '-'
}

// DNSName is a validated ASCII (IA5) domain name, per spec.md §3: total
// length 1..253; labels split on '.'; each label 1..63 octets; labels
// contain only [A-Za-z0-9-]; labels must not start or end with '-'.
// Internal consecutive '-' (e.g. the IDN "xn--" prefix) is allowed.
type DNSName struct {
	name string
}

// NewDNSName validates name against spec.md §3's DNSName grammar and
// returns the validated value. Equality on the result is ASCII
// case-insensitive; String returns the name with its original casing.
func NewDNSName(name string) (DNSName, error) {
	if err := validateDNSName(name); err != nil {
		return DNSName{}, err
	}
	return DNSName{name: name}, nil
}

func validateDNSName(name string) error {
	if name == "" {
		return newErr(ErrMalformedCertificate, "DNS name is empty")
	}
	if len(name) > maxDNSNameLength {
		return newErr(ErrMalformedCertificate, "DNS name longer than %d octets", maxDNSNameLength)
	}

	labels := strings.Split(name, ".")
	for _, label := range labels {
		if err := validateDNSLabel(label); err != nil {
			return err
		}
	}
	return nil
}

// validateDNSLabel checks a single DNS label, including the xn-- IDN
// punycode case, grounded on boulder's validNonWildcardDomain (the R-LDH
// and P-Label checks).
func validateDNSLabel(label string) error {
	if len(label) < 1 {
		return newErr(ErrMalformedCertificate, "DNS name contains an empty label")
	}
	if len(label) > maxDNSLabelLength {
		return newErr(ErrMalformedCertificate, "DNS label longer than %d octets", maxDNSLabelLength)
	}
	for i := 0; i < len(label); i++ {
		if !isDNSLabelCharacter(label[i]) {
			return newErr(ErrMalformedCertificate, "DNS label contains an invalid character")
		}
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return newErr(ErrMalformedCertificate, "DNS label starts or ends with a hyphen")
	}

	if len(label) >= 4 && label[2:4] == "--" {
		if !strings.EqualFold(label[0:2], "xn") {
			// Reserved-LDH label (third/fourth chars "--") that isn't an
			// xn-- label; spec.md only requires tolerating xn--, so this
			// and any other R-LDH form is left to the caller's judgment
			// and is not itself rejected here.
			return nil
		}
		ulabel, err := idna.ToUnicode(label)
		if err != nil {
			return wrapErr(ErrMalformedCertificate, err, "DNS label contains malformed punycode")
		}
		if !norm.NFC.IsNormalString(ulabel) {
			return newErr(ErrMalformedCertificate, "DNS label punycode is not NFC-normalized")
		}
	}
	return nil
}

// String returns the original name.
func (d DNSName) String() string { return d.name }

// Equal compares two DNSNames ASCII-case-insensitively.
func (d DNSName) Equal(o DNSName) bool {
	return strings.EqualFold(d.name, o.name)
}

// Parent returns the suffix after the first '.', if any, per spec.md §3.
func (d DNSName) Parent() (DNSName, bool) {
	idx := strings.IndexByte(d.name, '.')
	if idx < 0 {
		return DNSName{}, false
	}
	return DNSName{name: d.name[idx+1:]}, true
}

// DNSPatternKind distinguishes the two DNSPattern alternatives.
type DNSPatternKind int

const (
	PatternExact DNSPatternKind = iota
	PatternWildcard
)

// DNSPattern is either Exact(DNSName) or Wildcard(DNSName), per spec.md §3.
// Wildcards are only permitted as a single leading "*." label.
type DNSPattern struct {
	Kind DNSPatternKind
	Name DNSName
}

// NewDNSPattern parses pattern as a DNSPattern. A leading "*." label marks
// it as Wildcard; any other "*" occurrence (partial-label or non-leftmost)
// is rejected.
func NewDNSPattern(pattern string) (DNSPattern, error) {
	if !strings.Contains(pattern, "*") {
		name, err := NewDNSName(pattern)
		if err != nil {
			return DNSPattern{}, err
		}
		return DNSPattern{Kind: PatternExact, Name: name}, nil
	}
	if !strings.HasPrefix(pattern, "*.") {
		return DNSPattern{}, newErr(ErrMalformedCertificate, "wildcard must be a single leading label")
	}
	rest := strings.TrimPrefix(pattern, "*.")
	if strings.Contains(rest, "*") {
		return DNSPattern{}, newErr(ErrMalformedCertificate, "wildcard must be a single leading label")
	}
	name, err := NewDNSName(rest)
	if err != nil {
		return DNSPattern{}, err
	}
	return DNSPattern{Kind: PatternWildcard, Name: name}, nil
}

// Matches reports whether input satisfies p, per spec.md §3: exact
// patterns compare the whole name case-insensitively; wildcard patterns
// compare against input's parent and fail if input has no parent (i.e. is
// a single label).
func (p DNSPattern) Matches(input DNSName) bool {
	switch p.Kind {
	case PatternExact:
		return p.Name.Equal(input)
	case PatternWildcard:
		parent, ok := input.Parent()
		if !ok {
			return false
		}
		return p.Name.Equal(parent)
	default:
		return false
	}
}
