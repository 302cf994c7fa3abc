// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package pkivalidate

import (
	"bytes"
	"encoding/asn1"
	"fmt"
)

// AttributeTypeAndValue is a single RDN component (spec.md §3's "ordered
// sequence of RDNs").
type AttributeTypeAndValue struct {
	Type  asn1.ObjectIdentifier
	Value asn1.RawValue
}

// RelativeDistinguishedName is a SET OF AttributeTypeAndValue.
type RelativeDistinguishedName []AttributeTypeAndValue

// DistinguishedName is an RDNSequence: an ordered sequence of RDNs. A DN
// with zero RDNs is "empty" per spec.md §3.
type DistinguishedName struct {
	RDNs []RelativeDistinguishedName

	// raw holds the original DER encoding, when parsed, so that issuer/
	// subject name-chaining comparisons (RFC 5280's "byte-for-byte")
	// don't depend on this package's own re-encoding being canonical.
	raw []byte
}

type attributeTypeAndValueASN1 struct {
	Type  asn1.ObjectIdentifier
	Value asn1.RawValue
}

// ParseDistinguishedName decodes a DER RDNSequence.
func ParseDistinguishedName(der []byte) (DistinguishedName, error) {
	var rdnSeq []asn1.RawValue
	rest, err := asn1.Unmarshal(der, &rdnSeq)
	if err != nil {
		return DistinguishedName{}, wrapErr(ErrMalformedCertificate, err, "parsing Name")
	}
	if len(rest) != 0 {
		return DistinguishedName{}, newErr(ErrMalformedCertificate, "trailing data after Name")
	}

	dn := DistinguishedName{raw: append([]byte(nil), der...)}
	for _, rdnRaw := range rdnSeq {
		var atvs []attributeTypeAndValueASN1
		if _, err := asn1.Unmarshal(rdnRaw.FullBytes, &atvs); err != nil {
			return DistinguishedName{}, wrapErr(ErrMalformedCertificate, err, "parsing RDN")
		}
		rdn := make(RelativeDistinguishedName, 0, len(atvs))
		for _, atv := range atvs {
			rdn = append(rdn, AttributeTypeAndValue{Type: atv.Type, Value: atv.Value})
		}
		dn.RDNs = append(dn.RDNs, rdn)
	}
	return dn, nil
}

// IsEmpty reports whether dn has zero RDNs.
func (dn DistinguishedName) IsEmpty() bool {
	return len(dn.RDNs) == 0
}

// MarshalDER re-encodes dn. If dn was produced by ParseDistinguishedName,
// the original bytes are returned verbatim to guarantee round-trip
// fidelity for issuer/subject chaining comparisons.
func (dn DistinguishedName) MarshalDER() ([]byte, error) {
	if dn.raw != nil {
		return dn.raw, nil
	}
	rdnSeq := make([]interface{}, 0, len(dn.RDNs))
	for _, rdn := range dn.RDNs {
		atvs := make([]attributeTypeAndValueASN1, 0, len(rdn))
		for _, atv := range rdn {
			atvs = append(atvs, attributeTypeAndValueASN1{Type: atv.Type, Value: atv.Value})
		}
		encoded, err := asn1.Marshal(atvs)
		if err != nil {
			return nil, err
		}
		var raw asn1.RawValue
		if _, err := asn1.Unmarshal(encoded, &raw); err != nil {
			return nil, err
		}
		raw.Class, raw.Tag, raw.FullBytes = asn1.ClassUniversal, asn1.TagSet, nil
		reencoded, err := asn1.Marshal(raw)
		if err != nil {
			return nil, err
		}
		var setRaw asn1.RawValue
		if _, err := asn1.Unmarshal(reencoded, &setRaw); err != nil {
			return nil, err
		}
		rdnSeq = append(rdnSeq, setRaw)
	}
	return asn1.Marshal(rdnSeq)
}

// Equal reports whether dn and o are byte-for-byte identical encodings, per
// RFC 5280's requirement that issuer/subject chaining compare DER
// encodings exactly.
func (dn DistinguishedName) Equal(o DistinguishedName) bool {
	a, errA := dn.MarshalDER()
	b, errB := o.MarshalDER()
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(a, b)
}

// String renders a best-effort human-readable form for logging and error
// context, in the usual "CN=...,O=...,C=..." style.
func (dn DistinguishedName) String() string {
	if dn.IsEmpty() {
		return "(empty)"
	}
	var parts []string
	for i := len(dn.RDNs) - 1; i >= 0; i-- {
		for _, atv := range dn.RDNs[i] {
			var value string
			if _, err := asn1.Unmarshal(atv.Value.FullBytes, &value); err != nil {
				value = fmt.Sprintf("#%x", atv.Value.Bytes)
			}
			parts = append(parts, fmt.Sprintf("%s=%s", shortAttributeName(atv.Type), value))
		}
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}

var (
	oidCommonName         = asn1.ObjectIdentifier{2, 5, 4, 3}
	oidCountry            = asn1.ObjectIdentifier{2, 5, 4, 6}
	oidOrganization       = asn1.ObjectIdentifier{2, 5, 4, 10}
	oidOrganizationalUnit = asn1.ObjectIdentifier{2, 5, 4, 11}
)

func shortAttributeName(oid asn1.ObjectIdentifier) string {
	switch {
	case oid.Equal(oidCommonName):
		return "CN"
	case oid.Equal(oidCountry):
		return "C"
	case oid.Equal(oidOrganization):
		return "O"
	case oid.Equal(oidOrganizationalUnit):
		return "OU"
	}
	return oid.String()
}

// GeneralNameKind identifies which alternative of the GeneralName tagged
// union (RFC 5280 §4.2.1.6) a GeneralName holds.
type GeneralNameKind int

const (
	GeneralNameOtherName GeneralNameKind = iota
	GeneralNameRFC822Name
	GeneralNameDNSName
	GeneralNameDirectoryName
	GeneralNameURI
	GeneralNameIPAddress
	GeneralNameRegisteredID
)

// GeneralName is the tagged union described in spec.md §3: DNS, IP, URI,
// rfc822, directoryName, otherName, registeredID. This package's SAN and
// name-constraint logic only interprets DNSName, IPAddress, and
// directoryName; the rest round-trip as opaque values.
type GeneralName struct {
	Kind GeneralNameKind

	// DNSName, RFC822Name, and URI hold their IA5String content for the
	// respectively-kinded GeneralName.
	DNSName    string
	RFC822Name string
	URI        string

	// IPAddress holds the raw 4- or 16-octet address for
	// GeneralNameIPAddress.
	IPAddress []byte

	// DirectoryName holds the parsed Name for GeneralNameDirectoryName.
	DirectoryName DistinguishedName

	// OtherNameTypeID and RegisteredID hold the OID for their respective
	// kinds; OtherNameValue holds the otherName's [0] EXPLICIT value TLV.
	OtherNameTypeID asn1.ObjectIdentifier
	OtherNameValue  []byte
	RegisteredID    asn1.ObjectIdentifier
}

const (
	tagOtherName     = 0
	tagRFC822Name    = 1
	tagDNSName       = 2
	tagDirectoryName = 4
	tagURI           = 6
	tagIPAddress     = 7
	tagRegisteredID  = 8
)

// ParseGeneralName decodes a single context-tagged GeneralName value.
func ParseGeneralName(raw asn1.RawValue) (GeneralName, error) {
	if raw.Class != asn1.ClassContextSpecific {
		return GeneralName{}, newErr(ErrMalformedCertificate, "GeneralName has unexpected class %d", raw.Class)
	}
	switch raw.Tag {
	case tagRFC822Name:
		return GeneralName{Kind: GeneralNameRFC822Name, RFC822Name: string(raw.Bytes)}, nil
	case tagDNSName:
		return GeneralName{Kind: GeneralNameDNSName, DNSName: string(raw.Bytes)}, nil
	case tagURI:
		return GeneralName{Kind: GeneralNameURI, URI: string(raw.Bytes)}, nil
	case tagIPAddress:
		if len(raw.Bytes) != 4 && len(raw.Bytes) != 16 {
			return GeneralName{}, newErr(ErrMalformedCertificate, "iPAddress GeneralName has invalid length %d", len(raw.Bytes))
		}
		return GeneralName{Kind: GeneralNameIPAddress, IPAddress: append([]byte(nil), raw.Bytes...)}, nil
	case tagRegisteredID:
		var oid asn1.ObjectIdentifier
		if _, err := asn1.UnmarshalWithParams(raw.FullBytes, &oid, fmt.Sprintf("tag:%d", tagRegisteredID)); err != nil {
			return GeneralName{}, wrapErr(ErrMalformedCertificate, err, "parsing registeredID GeneralName")
		}
		return GeneralName{Kind: GeneralNameRegisteredID, RegisteredID: oid}, nil
	case tagDirectoryName:
		// directoryName is [4] EXPLICIT Name, i.e. the outer tag wraps a
		// normal RDNSequence SEQUENCE.
		var inner asn1.RawValue
		if _, err := asn1.Unmarshal(raw.Bytes, &inner); err != nil {
			return GeneralName{}, wrapErr(ErrMalformedCertificate, err, "parsing directoryName GeneralName")
		}
		dn, err := ParseDistinguishedName(inner.FullBytes)
		if err != nil {
			return GeneralName{}, err
		}
		return GeneralName{Kind: GeneralNameDirectoryName, DirectoryName: dn}, nil
	case tagOtherName:
		// otherName ::= SEQUENCE { type-id OID, value [0] EXPLICIT ANY }
		var seq struct {
			TypeID asn1.ObjectIdentifier
			Value  asn1.RawValue
		}
		if _, err := asn1.UnmarshalWithParams(raw.FullBytes, &seq, fmt.Sprintf("tag:%d", tagOtherName)); err != nil {
			return GeneralName{}, wrapErr(ErrMalformedCertificate, err, "parsing otherName GeneralName")
		}
		return GeneralName{Kind: GeneralNameOtherName, OtherNameTypeID: seq.TypeID, OtherNameValue: seq.Value.FullBytes}, nil
	default:
		return GeneralName{}, newErr(ErrMalformedCertificate, "unsupported GeneralName tag %d", raw.Tag)
	}
}
