// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package pkivalidate

import (
	"encoding/asn1"
)

// Well-known extension OIDs, per RFC 5280 §4.2.
var (
	oidExtKeyUsage                  = asn1.ObjectIdentifier{2, 5, 29, 15}
	oidExtBasicConstraints          = asn1.ObjectIdentifier{2, 5, 29, 19}
	oidExtSubjectAltName            = asn1.ObjectIdentifier{2, 5, 29, 17}
	oidExtNameConstraints           = asn1.ObjectIdentifier{2, 5, 29, 30}
	oidExtAuthorityKeyIdentifier    = asn1.ObjectIdentifier{2, 5, 29, 35}
	oidExtSubjectKeyIdentifier      = asn1.ObjectIdentifier{2, 5, 29, 14}
	oidExtPolicyConstraints         = asn1.ObjectIdentifier{2, 5, 29, 36}
	oidExtExtendedKeyUsage          = asn1.ObjectIdentifier{2, 5, 29, 37}
	oidExtAuthorityInfoAccess       = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 1, 1}
	oidExtSubjectDirectoryAttrs     = asn1.ObjectIdentifier{2, 5, 29, 9}

	oidEKUServerAuth = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 1}
	oidEKUClientAuth = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 2}

	oidAIAOCSP      = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 48, 1}
	oidAIACAIssuers = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 48, 2}
)

// Extension is a single {OID, critical, value} record, per spec.md §3.
type Extension struct {
	OID      asn1.ObjectIdentifier
	Critical bool
	Value    []byte
}

type extensionASN1 struct {
	ID       asn1.ObjectIdentifier
	Critical bool `asn1:"optional"`
	Value    []byte
}

// Extensions is the Sequence of Extension described in spec.md §3.
// Uniqueness of OIDs is required; lookup by OID is a linear scan since
// certificates carry only a handful of extensions.
type Extensions struct {
	list []Extension
}

// ParseExtensions decodes a DER `[3] EXPLICIT Extensions` payload (the
// inner SEQUENCE OF Extension, without the outer context tag) and rejects
// duplicate OIDs.
func ParseExtensions(der []byte) (Extensions, error) {
	var raw []extensionASN1
	rest, err := asn1.Unmarshal(der, &raw)
	if err != nil {
		return Extensions{}, wrapErr(ErrMalformedCertificate, err, "parsing Extensions")
	}
	if len(rest) != 0 {
		return Extensions{}, newErr(ErrMalformedCertificate, "trailing data after Extensions")
	}

	exts := Extensions{}
	seen := make(map[string]bool, len(raw))
	for _, e := range raw {
		key := e.ID.String()
		if seen[key] {
			return Extensions{}, newErr(ErrDuplicateOID, "duplicate extension OID %s", key)
		}
		seen[key] = true
		exts.list = append(exts.list, Extension{OID: e.ID, Critical: e.Critical, Value: e.Value})
	}
	return exts, nil
}

// All returns every extension, in encoded order.
func (e Extensions) All() []Extension {
	return e.list
}

// Get returns the extension with the given OID, if present.
func (e Extensions) Get(oid asn1.ObjectIdentifier) (Extension, bool) {
	for _, ext := range e.list {
		if ext.OID.Equal(oid) {
			return ext, true
		}
	}
	return Extension{}, false
}

// BasicConstraints is RFC 5280 §4.2.1.9.
type BasicConstraints struct {
	IsCA                 bool
	PathLenConstraint    int
	HasPathLenConstraint bool
}

type basicConstraintsASN1 struct {
	IsCA       bool `asn1:"optional"`
	MaxPathLen int  `asn1:"optional,default:-1"`
}

// ParseBasicConstraints decodes ext's value as a BasicConstraints. The
// default:-1 tag on MaxPathLen (mirroring crypto/x509's own
// basicConstraints type) lets an explicit pathLenConstraint of 0 be told
// apart from an absent one.
func ParseBasicConstraints(ext Extension) (BasicConstraints, error) {
	var raw basicConstraintsASN1
	if _, err := asn1.Unmarshal(ext.Value, &raw); err != nil {
		return BasicConstraints{}, wrapErr(ErrMalformedCertificate, err, "parsing BasicConstraints")
	}
	return BasicConstraints{
		IsCA:                 raw.IsCA,
		PathLenConstraint:    raw.MaxPathLen,
		HasPathLenConstraint: raw.MaxPathLen >= 0,
	}, nil
}

// KeyUsage is RFC 5280 §4.2.1.3's BIT STRING, exposed as named booleans.
type KeyUsage struct {
	DigitalSignature bool
	ContentCommitment bool
	KeyEncipherment  bool
	DataEncipherment bool
	KeyAgreement     bool
	KeyCertSign      bool
	CRLSign          bool
	EncipherOnly     bool
	DecipherOnly     bool
}

// ParseKeyUsage decodes ext's value as a KeyUsage bit string.
func ParseKeyUsage(ext Extension) (KeyUsage, error) {
	var bits asn1.BitString
	if _, err := asn1.Unmarshal(ext.Value, &bits); err != nil {
		return KeyUsage{}, wrapErr(ErrMalformedCertificate, err, "parsing KeyUsage")
	}
	return KeyUsage{
		DigitalSignature:  bits.At(0) != 0,
		ContentCommitment: bits.At(1) != 0,
		KeyEncipherment:   bits.At(2) != 0,
		DataEncipherment:  bits.At(3) != 0,
		KeyAgreement:      bits.At(4) != 0,
		KeyCertSign:       bits.At(5) != 0,
		CRLSign:           bits.At(6) != 0,
		EncipherOnly:      bits.At(7) != 0,
		DecipherOnly:      bits.At(8) != 0,
	}, nil
}

// ExtendedKeyUsage is RFC 5280 §4.2.1.12: a SEQUENCE OF OID.
type ExtendedKeyUsage struct {
	OIDs []asn1.ObjectIdentifier
}

// ParseExtendedKeyUsage decodes ext's value as an ExtendedKeyUsage.
func ParseExtendedKeyUsage(ext Extension) (ExtendedKeyUsage, error) {
	var oids []asn1.ObjectIdentifier
	if _, err := asn1.Unmarshal(ext.Value, &oids); err != nil {
		return ExtendedKeyUsage{}, wrapErr(ErrMalformedCertificate, err, "parsing ExtendedKeyUsage")
	}
	return ExtendedKeyUsage{OIDs: oids}, nil
}

// Contains reports whether eku lists oid.
func (eku ExtendedKeyUsage) Contains(oid asn1.ObjectIdentifier) bool {
	for _, candidate := range eku.OIDs {
		if candidate.Equal(oid) {
			return true
		}
	}
	return false
}

// SubjectAlternativeName is RFC 5280 §4.2.1.6: a SEQUENCE OF GeneralName.
type SubjectAlternativeName struct {
	Names []GeneralName
}

// ParseSubjectAlternativeName decodes ext's value as a
// SubjectAlternativeName.
func ParseSubjectAlternativeName(ext Extension) (SubjectAlternativeName, error) {
	var raws []asn1.RawValue
	if _, err := asn1.Unmarshal(ext.Value, &raws); err != nil {
		return SubjectAlternativeName{}, wrapErr(ErrMalformedCertificate, err, "parsing SubjectAlternativeName")
	}
	san := SubjectAlternativeName{}
	for _, raw := range raws {
		gn, err := ParseGeneralName(raw)
		if err != nil {
			// Skip GeneralName kinds this package doesn't interpret
			// (e.g. x400Address, ediPartyName) rather than rejecting the
			// whole SAN; spec.md §4.B only requires matching DNS/IP
			// entries.
			continue
		}
		san.Names = append(san.Names, gn)
	}
	return san, nil
}

// GeneralSubtree is RFC 5280 §4.2.1.10's NameConstraints element, reduced
// to the DNSName/IPAddress base kinds spec.md requires.
type GeneralSubtree struct {
	Base GeneralName
}

// NameConstraints is RFC 5280 §4.2.1.10.
type NameConstraints struct {
	Permitted []GeneralSubtree
	Excluded  []GeneralSubtree
}

type generalSubtreeASN1 struct {
	Base    asn1.RawValue
	Minimum int           `asn1:"optional,tag:0,default:0"`
	Maximum asn1.RawValue `asn1:"optional,tag:1"`
}

// ParseNameConstraints decodes ext's value as a NameConstraints and
// enforces the well-formedness spec.md §4.C requires of each subtree:
// minimum must be 0 and maximum must be absent.
func ParseNameConstraints(ext Extension) (NameConstraints, error) {
	var raw struct {
		Permitted []generalSubtreeASN1 `asn1:"optional,tag:0"`
		Excluded  []generalSubtreeASN1 `asn1:"optional,tag:1"`
	}
	if _, err := asn1.Unmarshal(ext.Value, &raw); err != nil {
		return NameConstraints{}, wrapErr(ErrMalformedCertificate, err, "parsing NameConstraints")
	}
	nc := NameConstraints{}
	for _, st := range raw.Permitted {
		subtree, err := parseWellFormedSubtree(st)
		if err != nil {
			return NameConstraints{}, err
		}
		nc.Permitted = append(nc.Permitted, subtree)
	}
	for _, st := range raw.Excluded {
		subtree, err := parseWellFormedSubtree(st)
		if err != nil {
			return NameConstraints{}, err
		}
		nc.Excluded = append(nc.Excluded, subtree)
	}
	return nc, nil
}

func parseWellFormedSubtree(st generalSubtreeASN1) (GeneralSubtree, error) {
	if st.Minimum != 0 {
		return GeneralSubtree{}, newErr(ErrMalformedCertificate, "GeneralSubtree minimum must be 0")
	}
	if len(st.Maximum.FullBytes) != 0 {
		return GeneralSubtree{}, newErr(ErrMalformedCertificate, "GeneralSubtree maximum must be absent")
	}
	base, err := ParseGeneralName(st.Base)
	if err != nil {
		return GeneralSubtree{}, err
	}
	return GeneralSubtree{Base: base}, nil
}

// AuthorityKeyIdentifier is RFC 5280 §4.2.1.1.
type AuthorityKeyIdentifier struct {
	KeyIdentifier []byte
}

type authorityKeyIdentifierASN1 struct {
	KeyIdentifier []byte `asn1:"optional,tag:0"`
}

// ParseAuthorityKeyIdentifier decodes ext's value.
func ParseAuthorityKeyIdentifier(ext Extension) (AuthorityKeyIdentifier, error) {
	var raw authorityKeyIdentifierASN1
	if _, err := asn1.Unmarshal(ext.Value, &raw); err != nil {
		return AuthorityKeyIdentifier{}, wrapErr(ErrMalformedCertificate, err, "parsing AuthorityKeyIdentifier")
	}
	return AuthorityKeyIdentifier{KeyIdentifier: raw.KeyIdentifier}, nil
}

// SubjectKeyIdentifier is RFC 5280 §4.2.1.2: a bare OCTET STRING.
type SubjectKeyIdentifier struct {
	KeyIdentifier []byte
}

// ParseSubjectKeyIdentifier decodes ext's value.
func ParseSubjectKeyIdentifier(ext Extension) (SubjectKeyIdentifier, error) {
	var id []byte
	if _, err := asn1.Unmarshal(ext.Value, &id); err != nil {
		return SubjectKeyIdentifier{}, wrapErr(ErrMalformedCertificate, err, "parsing SubjectKeyIdentifier")
	}
	return SubjectKeyIdentifier{KeyIdentifier: id}, nil
}

// PolicyConstraints is RFC 5280 §4.2.1.11. This package only checks
// structural validity (spec.md §4.C); it does not evaluate policy
// mapping/inhibit semantics.
type PolicyConstraints struct {
	RequireExplicitPolicy int
	HasRequireExplicitPolicy bool
	InhibitPolicyMapping  int
	HasInhibitPolicyMapping bool
}

type policyConstraintsASN1 struct {
	RequireExplicitPolicy int `asn1:"optional,tag:0"`
	InhibitPolicyMapping  int `asn1:"optional,tag:1"`
}

// ParsePolicyConstraints decodes ext's value, enforcing that it is a
// structurally valid SEQUENCE of the two optional SkipCerts integers.
func ParsePolicyConstraints(ext Extension) (PolicyConstraints, error) {
	var seq asn1.RawValue
	if _, err := asn1.Unmarshal(ext.Value, &seq); err != nil {
		return PolicyConstraints{}, wrapErr(ErrMalformedCertificate, err, "parsing PolicyConstraints")
	}
	var raw policyConstraintsASN1
	if _, err := asn1.Unmarshal(ext.Value, &raw); err != nil {
		return PolicyConstraints{}, wrapErr(ErrMalformedCertificate, err, "parsing PolicyConstraints")
	}
	return PolicyConstraints{RequireExplicitPolicy: raw.RequireExplicitPolicy, InhibitPolicyMapping: raw.InhibitPolicyMapping}, nil
}

// AccessDescription is one element of an AuthorityInformationAccess.
type AccessDescription struct {
	AccessMethod   asn1.ObjectIdentifier
	AccessLocation GeneralName
}

// AuthorityInformationAccess is RFC 5280 §4.2.2.1.
type AuthorityInformationAccess struct {
	Descriptions []AccessDescription
}

type accessDescriptionASN1 struct {
	AccessMethod   asn1.ObjectIdentifier
	AccessLocation asn1.RawValue
}

// ParseAuthorityInformationAccess decodes ext's value and enforces the
// validator rule from spec.md §4.C: each accessMethod must be OCSP or
// caIssuers, and accessLocation must be a URI GeneralName with a
// non-empty scheme.
func ParseAuthorityInformationAccess(ext Extension) (AuthorityInformationAccess, error) {
	var raw []accessDescriptionASN1
	if _, err := asn1.Unmarshal(ext.Value, &raw); err != nil {
		return AuthorityInformationAccess{}, wrapErr(ErrMalformedCertificate, err, "parsing AuthorityInformationAccess")
	}
	aia := AuthorityInformationAccess{}
	for _, ad := range raw {
		if !ad.AccessMethod.Equal(oidAIAOCSP) && !ad.AccessMethod.Equal(oidAIACAIssuers) {
			return AuthorityInformationAccess{}, newErr(ErrMalformedCertificate, "AuthorityInformationAccess accessMethod is not OCSP or caIssuers")
		}
		loc, err := ParseGeneralName(ad.AccessLocation)
		if err != nil {
			return AuthorityInformationAccess{}, err
		}
		if loc.Kind != GeneralNameURI || !hasNonEmptyScheme(loc.URI) {
			return AuthorityInformationAccess{}, newErr(ErrMalformedCertificate, "AuthorityInformationAccess accessLocation must be a URI with a scheme")
		}
		aia.Descriptions = append(aia.Descriptions, AccessDescription{AccessMethod: ad.AccessMethod, AccessLocation: loc})
	}
	return aia, nil
}

func hasNonEmptyScheme(uri string) bool {
	for i := 0; i < len(uri); i++ {
		if uri[i] == ':' {
			return i > 0
		}
		if !isSchemeCharacter(uri[i]) {
			return false
		}
	}
	return false
}

func isSchemeCharacter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ('0' <= ch && ch <= '9') || ch == '+' || ch == '-' || ch == '.'
}

// SubjectDirectoryAttributes is RFC 5280 §4.2.1.8, carried opaquely: this
// package neither validates nor acts on its contents beyond DER
// well-formedness.
type SubjectDirectoryAttributes struct {
	Raw []byte
}

// ParseSubjectDirectoryAttributes decodes ext's value only enough to
// confirm it is a well-formed SEQUENCE; its Attribute contents are kept
// opaque.
func ParseSubjectDirectoryAttributes(ext Extension) (SubjectDirectoryAttributes, error) {
	var seq []asn1.RawValue
	if _, err := asn1.Unmarshal(ext.Value, &seq); err != nil {
		return SubjectDirectoryAttributes{}, wrapErr(ErrMalformedCertificate, err, "parsing SubjectDirectoryAttributes")
	}
	return SubjectDirectoryAttributes{Raw: ext.Value}, nil
}
