// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package pkivalidate

import "encoding/asn1"

// Presence constrains whether an extension may appear on a certificate.
type Presence int

const (
	// Present requires the extension to appear.
	Present Presence = iota
	// MaybePresent places no requirement on the extension's presence.
	MaybePresent
	// NotPresent forbids the extension from appearing.
	NotPresent
)

// Criticality constrains an extension's critical bit, when present.
type Criticality int

const (
	// Critical requires the critical bit to be true.
	Critical Criticality = iota
	// NonCritical requires the critical bit to be false.
	NonCritical
	// CriticalityAgnostic accepts either value.
	CriticalityAgnostic
)

// ExtensionValidator inspects a present extension in the context of the
// policy and certificate it belongs to. It is invoked only when the
// extension is present.
type ExtensionValidator func(policy *Policy, cert *Certificate, ext Extension) error

// ExtensionPolicy is {oid, presence, criticality, validator?}, per spec.md
// §4.C.
type ExtensionPolicy struct {
	OID         asn1.ObjectIdentifier
	Presence    Presence
	Criticality Criticality
	Validator   ExtensionValidator
}

// apply runs ep's presence/criticality/validator rules against cert,
// returning the first violated rule as a ValidationError. It implements
// the four numbered application rules of spec.md §4.C exactly.
func (ep ExtensionPolicy) apply(policy *Policy, cert *Certificate) error {
	ext, present := cert.TBS.Extensions.Get(ep.OID)

	if !present {
		if ep.Presence == Present {
			return newErr(ErrExtensionRequired, "extension %s is required", ep.OID)
		}
		return nil
	}
	if ep.Presence == NotPresent {
		return newErr(ErrExtensionForbidden, "extension %s is forbidden", ep.OID)
	}

	switch ep.Criticality {
	case Critical:
		if !ext.Critical {
			return newErr(ErrCriticalityMismatch, "extension %s must be critical", ep.OID)
		}
	case NonCritical:
		if ext.Critical {
			return newErr(ErrCriticalityMismatch, "extension %s must not be critical", ep.OID)
		}
	}

	if ep.Validator != nil {
		if err := ep.Validator(policy, cert, ext); err != nil {
			return err
		}
	}
	return nil
}

// applyExtensionPolicies runs every policy in list against cert, in order,
// returning the first error.
func applyExtensionPolicies(policy *Policy, cert *Certificate, list []ExtensionPolicy) error {
	for _, ep := range list {
		if err := ep.apply(policy, cert); err != nil {
			return err
		}
	}
	return nil
}

// checkUnhandledCriticalExtensions enforces spec.md §4.C's final rule:
// every critical extension OID on cert must be registered in one of the
// given policy lists (the union of common, and whichever of ca/ee
// applies), or validation fails as ErrUnhandledCritical.
func checkUnhandledCriticalExtensions(cert *Certificate, lists ...[]ExtensionPolicy) error {
	registered := make(map[string]bool)
	for _, list := range lists {
		for _, ep := range list {
			registered[ep.OID.String()] = true
		}
	}
	for _, ext := range cert.TBS.Extensions.All() {
		if ext.Critical && !registered[ext.OID.String()] {
			return newErr(ErrUnhandledCritical, "unhandled critical extension %s", ext.OID)
		}
	}
	return nil
}

// --- Registered validators (spec.md §4.C) ---

func validateAuthorityInformationAccess(_ *Policy, _ *Certificate, ext Extension) error {
	_, err := ParseAuthorityInformationAccess(ext)
	return err
}

func validateExtendedKeyUsageCommon(policy *Policy, cert *Certificate, ext Extension) error {
	eku, err := ParseExtendedKeyUsage(ext)
	if err != nil {
		return err
	}
	if isLeafCertificate(cert) && len(policy.ExtendedKeyUsage) > 0 && !eku.Contains(policy.ExtendedKeyUsage) {
		return newErr(ErrEkuMissing, "leaf does not assert required extended key usage %s", policy.ExtendedKeyUsage)
	}
	return nil
}

func validateAuthorityKeyIdentifier(_ *Policy, cert *Certificate, ext Extension) error {
	aki, err := ParseAuthorityKeyIdentifier(ext)
	if err != nil {
		return err
	}
	if !cert.IsSelfIssued() && len(aki.KeyIdentifier) == 0 {
		return newErr(ErrMalformedCertificate, "AuthorityKeyIdentifier.keyIdentifier required on non-self-signed certificate")
	}
	return nil
}

func validateCAKeyUsage(_ *Policy, _ *Certificate, ext Extension) error {
	ku, err := ParseKeyUsage(ext)
	if err != nil {
		return err
	}
	if !ku.KeyCertSign {
		return newErr(ErrMalformedCertificate, "CA certificate KeyUsage must assert keyCertSign")
	}
	return nil
}

func validateCABasicConstraints(_ *Policy, _ *Certificate, ext Extension) error {
	bc, err := ParseBasicConstraints(ext)
	if err != nil {
		return err
	}
	if !bc.IsCA {
		return newErr(ErrMalformedCertificate, "CA certificate BasicConstraints.cA must be true")
	}
	return nil
}

func validateEEBasicConstraints(_ *Policy, _ *Certificate, ext Extension) error {
	bc, err := ParseBasicConstraints(ext)
	if err != nil {
		return err
	}
	if bc.IsCA {
		return newErr(ErrMalformedCertificate, "end-entity certificate BasicConstraints.cA must be false")
	}
	return nil
}

func validateCANameConstraints(_ *Policy, _ *Certificate, ext Extension) error {
	_, err := ParseNameConstraints(ext)
	return err
}

func validateCAPolicyConstraints(_ *Policy, _ *Certificate, ext Extension) error {
	_, err := ParsePolicyConstraints(ext)
	return err
}

func validateSubjectAlternativeName(policy *Policy, _ *Certificate, ext Extension) error {
	san, err := ParseSubjectAlternativeName(ext)
	if err != nil {
		return err
	}
	if len(san.Names) == 0 {
		return newErr(ErrSubjectMismatch, "SubjectAlternativeName has no entries")
	}
	if !policy.Subject.matchesSAN(san) {
		return newErr(ErrSubjectMismatch, "no SubjectAlternativeName entry matches %s", policy.Subject)
	}
	return nil
}

func isLeafCertificate(cert *Certificate) bool {
	ku, present := cert.TBS.Extensions.Get(oidExtKeyUsage)
	if !present {
		return true
	}
	parsed, err := ParseKeyUsage(ku)
	if err != nil {
		return true
	}
	return !parsed.KeyCertSign
}

// defaultCommonExtensionPolicies returns the extension policies applied to
// every certificate regardless of its position, per spec.md §4.C and
// policy/mod.rs's Policy::new common_extension_policies (RFC 5280
// references kept as in the original).
func defaultCommonExtensionPolicies() []ExtensionPolicy {
	return []ExtensionPolicy{
		// 5280 4.2.1.8: Subject Directory Attributes
		{OID: oidExtSubjectDirectoryAttrs, Presence: MaybePresent, Criticality: NonCritical},
		// 5280 4.2.2.1: Authority Information Access
		{OID: oidExtAuthorityInfoAccess, Presence: MaybePresent, Criticality: NonCritical, Validator: validateAuthorityInformationAccess},
		// 5280 4.2.1.12: Extended Key Usage
		{OID: oidExtExtendedKeyUsage, Presence: MaybePresent, Criticality: NonCritical, Validator: validateExtendedKeyUsageCommon},
	}
}

// defaultCAExtensionPolicies returns the extension policies applied to CA
// certificates, per spec.md §4.C and policy/mod.rs's Policy::new
// ca_extension_policies.
func defaultCAExtensionPolicies() []ExtensionPolicy {
	return []ExtensionPolicy{
		// 5280 4.2.1.1: Authority Key Identifier
		{OID: oidExtAuthorityKeyIdentifier, Presence: MaybePresent, Criticality: NonCritical, Validator: validateAuthorityKeyIdentifier},
		// 5280 4.2.1.2: Subject Key Identifier
		{OID: oidExtSubjectKeyIdentifier, Presence: MaybePresent, Criticality: NonCritical},
		// 5280 4.2.1.3: Key Usage
		{OID: oidExtKeyUsage, Presence: Present, Criticality: CriticalityAgnostic, Validator: validateCAKeyUsage},
		// 5280 4.2.1.9: Basic Constraints
		{OID: oidExtBasicConstraints, Presence: Present, Criticality: Critical, Validator: validateCABasicConstraints},
		// 5280 4.2.1.10: Name Constraints
		{OID: oidExtNameConstraints, Presence: MaybePresent, Criticality: CriticalityAgnostic, Validator: validateCANameConstraints},
		// 5280 4.2.1.11: Policy Constraints
		{OID: oidExtPolicyConstraints, Presence: MaybePresent, Criticality: Critical, Validator: validateCAPolicyConstraints},
	}
}

// defaultEEExtensionPolicies returns the extension policies applied to
// end-entity certificates, per spec.md §4.C and policy/mod.rs's Policy::new
// ee_extension_policies.
func defaultEEExtensionPolicies() []ExtensionPolicy {
	return []ExtensionPolicy{
		// 5280 4.2.1.1: Authority Key Identifier
		{OID: oidExtAuthorityKeyIdentifier, Presence: Present, Criticality: NonCritical},
		// 5280 4.2.1.3: Key Usage
		{OID: oidExtKeyUsage, Presence: MaybePresent, Criticality: CriticalityAgnostic},
		// CA/B 7.1.2.7.12: Subscriber Certificate Subject Alternative Name
		{OID: oidExtSubjectAltName, Presence: Present, Criticality: CriticalityAgnostic, Validator: validateSubjectAlternativeName},
		// 5280 4.2.1.9: Basic Constraints
		{OID: oidExtBasicConstraints, Presence: MaybePresent, Criticality: CriticalityAgnostic, Validator: validateEEBasicConstraints},
		// 5280 4.2.1.10: Name Constraints
		{OID: oidExtNameConstraints, Presence: NotPresent, Criticality: CriticalityAgnostic},
	}
}
