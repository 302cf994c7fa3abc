// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package pkivalidate

import (
	"encoding/asn1"
	"time"
)

// SubjectKind discriminates the two Subject alternatives.
type SubjectKind int

const (
	SubjectDNS SubjectKind = iota
	SubjectIP
)

// Subject is the DNS name or IP literal a leaf certificate is being
// validated against, per spec.md §4.B. Cross-kind matches (DNS vs IP) are
// definitionally false.
type Subject struct {
	Kind SubjectKind
	DNS  DNSName
	IP   IPAddress
}

// NewDNSSubject builds a Subject matching the given DNS name.
func NewDNSSubject(name DNSName) Subject {
	return Subject{Kind: SubjectDNS, DNS: name}
}

// NewIPSubject builds a Subject matching the given IP address.
func NewIPSubject(addr IPAddress) Subject {
	return Subject{Kind: SubjectIP, IP: addr}
}

// String renders s for error context and logging.
func (s Subject) String() string {
	switch s.Kind {
	case SubjectDNS:
		return s.DNS.String()
	case SubjectIP:
		return s.IP.String()
	default:
		return "(invalid subject)"
	}
}

// matchesSAN reports whether san contains a GeneralName matching s, per the
// matching law of spec.md §4.B:
//
//	Subject::DNS(name).matches(san) ≡ ∃ g ∈ san : g is DNSName(p) ∧ DNSPattern::from(p).matches(name)
//	Subject::IP(addr).matches(san)  ≡ ∃ g ∈ san : g is IPAddress(b) ∧ IPAddress::from(b) = addr
func (s Subject) matchesSAN(san SubjectAlternativeName) bool {
	switch s.Kind {
	case SubjectDNS:
		for _, gn := range san.Names {
			if gn.Kind != GeneralNameDNSName {
				continue
			}
			pattern, err := NewDNSPattern(gn.DNSName)
			if err != nil {
				continue
			}
			if pattern.Matches(s.DNS) {
				return true
			}
		}
		return false
	case SubjectIP:
		for _, gn := range san.Names {
			if gn.Kind != GeneralNameIPAddress {
				continue
			}
			addr, err := NewIPAddressFromBytes(gn.IPAddress)
			if err != nil {
				continue
			}
			if addr.Equal(s.IP) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// defaultMaxChainDepth is the default bound on non-self-issued
// intermediates (spec.md §4.D).
const defaultMaxChainDepth = 8

// Policy aggregates everything a path-validation call needs: the
// crypto-ops handle, algorithm allow-lists, subject, validation time,
// required EKU, and the three ExtensionPolicy lists (spec.md §4.D).
// Construct with NewPolicy; Policy is immutable once built and may be
// shared freely across goroutines (spec.md §5).
type Policy struct {
	Ops             CryptoOps
	MaxChainDepth   int
	Subject         Subject
	ValidationTime  time.Time
	ExtendedKeyUsage asn1.ObjectIdentifier

	PermittedSPKIAlgorithms      []AlgorithmIdentifier
	PermittedSignatureAlgorithms []AlgorithmIdentifier

	CommonExtensionPolicies []ExtensionPolicy
	CAExtensionPolicies     []ExtensionPolicy
	EEExtensionPolicies     []ExtensionPolicy
}

// Option configures a Policy under construction, in go-mail's client.go
// functional-option style.
type Option func(*Policy)

// WithMaxChainDepth overrides the default maximum chain depth (8).
func WithMaxChainDepth(n int) Option {
	return func(p *Policy) { p.MaxChainDepth = n }
}

// WithSubject sets the subject the leaf certificate must match.
func WithSubject(s Subject) Option {
	return func(p *Policy) { p.Subject = s }
}

// WithValidationTime sets the time membership of the validity window is
// checked against.
func WithValidationTime(t time.Time) Option {
	return func(p *Policy) { p.ValidationTime = t }
}

// WithExtendedKeyUsage sets the EKU OID the leaf must assert, when the
// leaf carries an ExtendedKeyUsage extension at all.
func WithExtendedKeyUsage(oid asn1.ObjectIdentifier) Option {
	return func(p *Policy) { p.ExtendedKeyUsage = oid }
}

// WithPermittedSPKIAlgorithms overrides the default CA/B Forum SPKI
// allow-list.
func WithPermittedSPKIAlgorithms(algs []AlgorithmIdentifier) Option {
	return func(p *Policy) { p.PermittedSPKIAlgorithms = algs }
}

// WithPermittedSignatureAlgorithms overrides the default CA/B Forum
// signature-algorithm allow-list.
func WithPermittedSignatureAlgorithms(algs []AlgorithmIdentifier) Option {
	return func(p *Policy) { p.PermittedSignatureAlgorithms = algs }
}

// WithExtensionPolicies overrides all three ExtensionPolicy lists at once.
func WithExtensionPolicies(common, ca, ee []ExtensionPolicy) Option {
	return func(p *Policy) {
		p.CommonExtensionPolicies = common
		p.CAExtensionPolicies = ca
		p.EEExtensionPolicies = ee
	}
}

// NewPolicy builds a Policy with the CA/B Baseline Requirements defaults
// from spec.md §4.D, applying opts in order.
func NewPolicy(ops CryptoOps, opts ...Option) *Policy {
	p := &Policy{
		Ops:                          ops,
		MaxChainDepth:                defaultMaxChainDepth,
		ValidationTime:               ops.Now(),
		PermittedSPKIAlgorithms:      defaultPermittedSPKIAlgorithms(),
		PermittedSignatureAlgorithms: defaultPermittedSignatureAlgorithms(),
		CommonExtensionPolicies:      defaultCommonExtensionPolicies(),
		CAExtensionPolicies:          defaultCAExtensionPolicies(),
		EEExtensionPolicies:          defaultEEExtensionPolicies(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// permitsBasic implements spec.md §4.D's permits_basic: structural
// invariants (already enforced at parse time by ParseCertificate), the
// validity-window membership check, the common extension set, and the
// unhandled-critical-extension check (the latter deferred until the
// caller knows whether cert will be checked as CA or EE, since that
// determines the second extension list in the union).
func (p *Policy) permitsBasic(cert *Certificate) error {
	if cert.TBS.NotBefore.After(p.ValidationTime) {
		return newErr(ErrNotYetValid, "validation time %s precedes notBefore %s", p.ValidationTime, cert.TBS.NotBefore.Value)
	}
	if cert.TBS.NotAfter.Before(p.ValidationTime) {
		return newErr(ErrExpired, "validation time %s follows notAfter %s", p.ValidationTime, cert.TBS.NotAfter.Value)
	}
	return applyExtensionPolicies(p, cert, p.CommonExtensionPolicies)
}

// permitsCA implements spec.md §4.D's permits_ca: permits_basic plus the CA
// extension set plus the path-length check against currentDepth.
func (p *Policy) permitsCA(cert *Certificate, currentDepth int) error {
	if err := p.permitsBasic(cert); err != nil {
		return err
	}
	if err := applyExtensionPolicies(p, cert, p.CAExtensionPolicies); err != nil {
		return err
	}
	if err := checkUnhandledCriticalExtensions(cert, p.CommonExtensionPolicies, p.CAExtensionPolicies); err != nil {
		return err
	}
	if bcExt, present := cert.TBS.Extensions.Get(oidExtBasicConstraints); present {
		bc, err := ParseBasicConstraints(bcExt)
		if err != nil {
			return err
		}
		if bc.HasPathLenConstraint && currentDepth > bc.PathLenConstraint {
			return newErr(ErrPathLengthExceeded, "pathLenConstraint %d exceeded at depth %d", bc.PathLenConstraint, currentDepth)
		}
	}
	return nil
}

// permitsEE implements spec.md §4.D's permits_ee: permits_basic plus the EE
// extension set, which includes the SAN subject match.
func (p *Policy) permitsEE(cert *Certificate) error {
	if err := p.permitsBasic(cert); err != nil {
		return err
	}
	if err := applyExtensionPolicies(p, cert, p.EEExtensionPolicies); err != nil {
		return err
	}
	return checkUnhandledCriticalExtensions(cert, p.CommonExtensionPolicies, p.EEExtensionPolicies)
}

// permitsLeaf implements spec.md §4.D's permits_leaf: a leaf whose
// KeyUsage, if present, asserts keyCertSign is treated as a CA (a
// single-certificate chain, or a self-signed certificate masquerading as a
// CA); otherwise it is treated as an EE. The two arms are never combined:
// error messages always come from exactly one arm.
func (p *Policy) permitsLeaf(cert *Certificate) error {
	if isLeafCertificate(cert) {
		return p.permitsEE(cert)
	}
	return p.permitsCA(cert, 0)
}

// validIssuer implements spec.md §4.D's valid_issuer: the per-link check
// run by the chain builder for every candidate (issuer, child) pair.
// Precondition (enforced by the caller): issuer.Subject == child.Issuer.
func (p *Policy) validIssuer(issuer, child *Certificate, currentDepth int) error {
	if err := p.permitsCA(issuer, currentDepth); err != nil {
		return err
	}
	if !containsAlgorithm(p.PermittedSPKIAlgorithms, child.TBS.SPKI.Algorithm) {
		return newErr(ErrForbiddenPublicKeyAlgorithm, "public key algorithm %s is not permitted", child.TBS.SPKI.Algorithm.OID)
	}
	if !containsAlgorithm(p.PermittedSignatureAlgorithms, child.SignatureAlgorithm) {
		return newErr(ErrForbiddenSignatureAlgorithm, "signature algorithm %s is not permitted", child.SignatureAlgorithm.OID)
	}
	issuerKey, err := p.Ops.PublicKey(issuer)
	if err != nil {
		return wrapErr(ErrMalformedIssuer, err, "decoding issuer public key")
	}
	if err := p.Ops.VerifySignedBy(child, issuerKey); err != nil {
		return wrapErr(ErrSignatureMismatch, err, "verifying signature of %s under issuer %s", child.TBS.Subject, issuer.TBS.Subject)
	}
	return nil
}
