// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package pkivalidate

import (
	"encoding/asn1"
	"math/big"
)

// SubjectPublicKeyInfo is RFC 5280 §4.1.2.7.
type SubjectPublicKeyInfo struct {
	Algorithm AlgorithmIdentifier
	PublicKey asn1.BitString
}

type subjectPublicKeyInfoASN1 struct {
	Algorithm algorithmIdentifierASN1
	PublicKey asn1.BitString
}

// TBSCertificate is the "to be signed" body of a Certificate, per
// spec.md §3.
type TBSCertificate struct {
	Version      int // internal integer value; v3 == 2
	SerialNumber *big.Int
	Signature    AlgorithmIdentifier
	Issuer       DistinguishedName
	NotBefore    Time
	NotAfter     Time
	Subject      DistinguishedName
	SPKI         SubjectPublicKeyInfo
	IssuerUID    asn1.BitString
	SubjectUID   asn1.BitString
	Extensions   Extensions

	raw []byte
}

// Certificate is a parsed X.509 certificate: TBSCertificate plus the outer
// signatureAlgorithm and signatureValue, per spec.md §3.
type Certificate struct {
	TBS                TBSCertificate
	SignatureAlgorithm AlgorithmIdentifier
	SignatureValue     asn1.BitString

	raw []byte
}

// Raw returns the original DER encoding, if this Certificate was produced
// by ParseCertificate.
func (c *Certificate) Raw() []byte {
	return c.raw
}

// RawTBS returns the original DER encoding of the TBSCertificate, the
// exact bytes the outer signature is computed over.
func (c *Certificate) RawTBS() []byte {
	return c.TBS.raw
}

type validityASN1 struct {
	NotBefore asn1.RawValue
	NotAfter  asn1.RawValue
}

type tbsCertificateASN1 struct {
	Raw          asn1.RawContent
	Version      int `asn1:"optional,explicit,default:0,tag:0"`
	SerialNumber *big.Int
	Signature    algorithmIdentifierASN1
	Issuer       asn1.RawValue
	Validity     validityASN1
	Subject      asn1.RawValue
	SPKI         subjectPublicKeyInfoASN1
	IssuerUID    asn1.BitString `asn1:"optional,tag:1"`
	SubjectUID   asn1.BitString `asn1:"optional,tag:2"`
	Extensions   asn1.RawValue  `asn1:"optional,explicit,tag:3"`
}

type certificateASN1 struct {
	Raw                asn1.RawContent
	TBSCertificate     asn1.RawValue
	SignatureAlgorithm algorithmIdentifierASN1
	SignatureValue     asn1.BitString
}

// ParseCertificate decodes a DER X.509 Certificate, enforcing the
// structural invariants from spec.md §3:
//   - version must be v3 (internal value 2)
//   - the outer signatureAlgorithm and tbsCertificate.signature must be
//     byte-equal
//   - the serial number must be positive, its DER encoding 1..21 octets,
//     with the high bit of the first octet clear
//   - the issuer DN must be non-empty
//   - validity dates must obey the 2050 UTCTime/GeneralizedTime cutoff
//   - every critical extension OID must later be accounted for by a
//     registered ExtensionPolicy (checked by Policy.permitsBasic, not here)
func ParseCertificate(der []byte) (*Certificate, error) {
	var raw certificateASN1
	rest, err := asn1.Unmarshal(der, &raw)
	if err != nil {
		return nil, wrapErr(ErrMalformedCertificate, err, "parsing Certificate")
	}
	if len(rest) != 0 {
		return nil, newErr(ErrMalformedCertificate, "trailing data after Certificate")
	}

	var tbsRaw tbsCertificateASN1
	if _, err := asn1.Unmarshal(raw.TBSCertificate.FullBytes, &tbsRaw); err != nil {
		return nil, wrapErr(ErrMalformedCertificate, err, "parsing TBSCertificate")
	}

	if tbsRaw.Version != 2 {
		return nil, newErr(ErrMalformedCertificate, "certificate version must be v3, got internal value %d", tbsRaw.Version)
	}

	if err := validateSerialEncoding(tbsRaw); err != nil {
		return nil, err
	}

	sig, err := ParseAlgorithmIdentifier(mustReencode(tbsRaw.Signature))
	if err != nil {
		return nil, err
	}
	outerSig, err := ParseAlgorithmIdentifier(mustReencode(raw.SignatureAlgorithm))
	if err != nil {
		return nil, err
	}
	if !sig.Equal(outerSig) {
		return nil, newErr(ErrMalformedCertificate, "outer signatureAlgorithm does not match tbsCertificate.signature")
	}

	issuer, err := ParseDistinguishedName(tbsRaw.Issuer.FullBytes)
	if err != nil {
		return nil, err
	}
	if issuer.IsEmpty() {
		return nil, newErr(ErrMalformedCertificate, "issuer DN is empty")
	}
	subject, err := ParseDistinguishedName(tbsRaw.Subject.FullBytes)
	if err != nil {
		return nil, err
	}

	notBefore, err := unmarshalTime(tbsRaw.Validity.NotBefore)
	if err != nil {
		return nil, err
	}
	if err := permitsValidityDate(notBefore); err != nil {
		return nil, err
	}
	notAfter, err := unmarshalTime(tbsRaw.Validity.NotAfter)
	if err != nil {
		return nil, err
	}
	if err := permitsValidityDate(notAfter); err != nil {
		return nil, err
	}

	spkiAlg, err := ParseAlgorithmIdentifier(mustReencode(tbsRaw.SPKI.Algorithm))
	if err != nil {
		return nil, err
	}

	var exts Extensions
	if len(tbsRaw.Extensions.FullBytes) != 0 {
		var seq asn1.RawValue
		if _, err := asn1.Unmarshal(tbsRaw.Extensions.Bytes, &seq); err != nil {
			return nil, wrapErr(ErrMalformedCertificate, err, "parsing extensions")
		}
		exts, err = ParseExtensions(seq.FullBytes)
		if err != nil {
			return nil, err
		}
	}

	cert := &Certificate{
		TBS: TBSCertificate{
			Version:      tbsRaw.Version,
			SerialNumber: tbsRaw.SerialNumber,
			Signature:    sig,
			Issuer:       issuer,
			NotBefore:    notBefore,
			NotAfter:     notAfter,
			Subject:      subject,
			SPKI:         SubjectPublicKeyInfo{Algorithm: spkiAlg, PublicKey: tbsRaw.SPKI.PublicKey},
			IssuerUID:    tbsRaw.IssuerUID,
			SubjectUID:   tbsRaw.SubjectUID,
			Extensions:   exts,
			raw:          append([]byte(nil), tbsRaw.Raw...),
		},
		SignatureAlgorithm: outerSig,
		SignatureValue:     raw.SignatureValue,
		raw:                append([]byte(nil), raw.Raw...),
	}
	return cert, nil
}

func mustReencode(alg algorithmIdentifierASN1) []byte {
	b, _ := asn1.Marshal(alg)
	return b
}

// validateSerialEncoding enforces spec.md §3's serial-number invariant:
// positive, 1..21 DER octets, high bit of the first octet clear.
func validateSerialEncoding(tbs tbsCertificateASN1) error {
	if tbs.SerialNumber.Sign() <= 0 {
		return newErr(ErrMalformedCertificate, "serial number must be positive")
	}
	encoded, err := asn1.Marshal(tbs.SerialNumber)
	if err != nil {
		return wrapErr(ErrMalformedCertificate, err, "re-encoding serial number")
	}
	var raw asn1.RawValue
	if _, err := asn1.Unmarshal(encoded, &raw); err != nil {
		return wrapErr(ErrMalformedCertificate, err, "re-encoding serial number")
	}
	if len(raw.Bytes) < 1 || len(raw.Bytes) > 21 {
		return newErr(ErrMalformedCertificate, "serial number encoding occupies %d octets, want 1..21", len(raw.Bytes))
	}
	if raw.Bytes[0]&0x80 != 0 {
		return newErr(ErrMalformedCertificate, "serial number high bit of first octet must be clear")
	}
	return nil
}

// MarshalDER re-encodes c. If c was produced by ParseCertificate, the
// original bytes are returned verbatim.
func (c *Certificate) MarshalDER() ([]byte, error) {
	if c.raw != nil {
		return c.raw, nil
	}
	tbsDER, err := c.TBS.marshalDER()
	if err != nil {
		return nil, err
	}
	var tbsRaw asn1.RawValue
	if _, err := asn1.Unmarshal(tbsDER, &tbsRaw); err != nil {
		return nil, err
	}
	sigAlgDER, err := c.SignatureAlgorithm.MarshalDER()
	if err != nil {
		return nil, err
	}
	var sigAlgRaw asn1.RawValue
	if _, err := asn1.Unmarshal(sigAlgDER, &sigAlgRaw); err != nil {
		return nil, err
	}
	return asn1.Marshal(struct {
		TBSCertificate     asn1.RawValue
		SignatureAlgorithm asn1.RawValue
		SignatureValue     asn1.BitString
	}{tbsRaw, sigAlgRaw, c.SignatureValue})
}

func (t TBSCertificate) marshalDER() ([]byte, error) {
	if t.raw != nil {
		return t.raw, nil
	}
	sigDER, err := t.Signature.MarshalDER()
	if err != nil {
		return nil, err
	}
	var sigRaw asn1.RawValue
	if _, err := asn1.Unmarshal(sigDER, &sigRaw); err != nil {
		return nil, err
	}
	issuerDER, err := t.Issuer.MarshalDER()
	if err != nil {
		return nil, err
	}
	var issuerRaw asn1.RawValue
	if _, err := asn1.Unmarshal(issuerDER, &issuerRaw); err != nil {
		return nil, err
	}
	subjectDER, err := t.Subject.MarshalDER()
	if err != nil {
		return nil, err
	}
	var subjectRaw asn1.RawValue
	if _, err := asn1.Unmarshal(subjectDER, &subjectRaw); err != nil {
		return nil, err
	}
	notBefore, err := t.NotBefore.marshalASN1()
	if err != nil {
		return nil, err
	}
	notAfter, err := t.NotAfter.marshalASN1()
	if err != nil {
		return nil, err
	}
	spkiAlgDER, err := t.SPKI.Algorithm.MarshalDER()
	if err != nil {
		return nil, err
	}
	var spkiAlgRaw asn1.RawValue
	if _, err := asn1.Unmarshal(spkiAlgDER, &spkiAlgRaw); err != nil {
		return nil, err
	}

	return asn1.Marshal(struct {
		Version      int `asn1:"explicit,tag:0"`
		SerialNumber *big.Int
		Signature    asn1.RawValue
		Issuer       asn1.RawValue
		Validity     validityASN1
		Subject      asn1.RawValue
		SPKI         struct {
			Algorithm asn1.RawValue
			PublicKey asn1.BitString
		}
	}{
		Version:      t.Version,
		SerialNumber: t.SerialNumber,
		Signature:    sigRaw,
		Issuer:       issuerRaw,
		Validity:     validityASN1{NotBefore: notBefore, NotAfter: notAfter},
		Subject:      subjectRaw,
		SPKI: struct {
			Algorithm asn1.RawValue
			PublicKey asn1.BitString
		}{spkiAlgRaw, t.SPKI.PublicKey},
	})
}

// IsSelfIssued reports whether c's subject equals its issuer, per the
// chain builder's self-issued/non-self-issued depth accounting (§4.E).
func (c *Certificate) IsSelfIssued() bool {
	return c.TBS.Subject.Equal(c.TBS.Issuer)
}
