// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package pkivalidate

import (
	"bytes"
	"encoding/asn1"
)

// Well-known OIDs used by the AlgorithmIdentifier "defined-by" dispatch
// (spec.md §4.A) and elsewhere in the model. Named the way
// internal/pkcs7/pkcs7.go names its own OID vars.
var (
	oidSHA1   = asn1.ObjectIdentifier{1, 3, 14, 3, 2, 26}
	oidSHA224 = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 4}
	oidSHA256 = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 1}
	oidSHA384 = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 2}
	oidSHA512 = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 3}
	oidSHA3_224 = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 7}
	oidSHA3_256 = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 8}
	oidSHA3_384 = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 9}
	oidSHA3_512 = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 10}

	oidRSAEncryption    = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 1}
	oidRSAWithSHA1      = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 5}
	oidRSAWithSHA224    = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 14}
	oidRSAWithSHA256    = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 11}
	oidRSAWithSHA384    = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 12}
	oidRSAWithSHA512    = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 13}
	oidRSASSAPSS        = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 10}
	oidMGF1             = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 8}

	oidECPublicKey  = asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}
	oidSecp256r1    = asn1.ObjectIdentifier{1, 2, 840, 10045, 3, 1, 7}
	oidSecp384r1    = asn1.ObjectIdentifier{1, 3, 132, 0, 34}
	oidSecp521r1    = asn1.ObjectIdentifier{1, 3, 132, 0, 35}
	oidECDSAWithSHA224 = asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 1}
	oidECDSAWithSHA256 = asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 2}
	oidECDSAWithSHA384 = asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 3}
	oidECDSAWithSHA512 = asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 4}

	oidDSAWithSHA224 = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 3, 1}
	oidDSAWithSHA256 = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 3, 2}
	oidDSAWithSHA384 = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 3, 3}
	oidDSAWithSHA512 = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 3, 4}

	oidEd25519 = asn1.ObjectIdentifier{1, 3, 101, 112}
	oidEd448   = asn1.ObjectIdentifier{1, 3, 101, 113}

	oidAES128CBC = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 1, 2}
	oidAES192CBC = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 1, 22}
	oidAES256CBC = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 1, 42}
)

// AlgorithmVariant identifies which of the admitted AlgorithmIdentifier
// shapes (spec.md §3) a value holds.
type AlgorithmVariant int

const (
	AlgOther AlgorithmVariant = iota
	AlgSHA1
	AlgSHA224
	AlgSHA256
	AlgSHA384
	AlgSHA512
	AlgSHA3_224
	AlgSHA3_256
	AlgSHA3_384
	AlgSHA3_512
	AlgRSAPKCS1SHA1
	AlgRSAPKCS1SHA224
	AlgRSAPKCS1SHA256
	AlgRSAPKCS1SHA384
	AlgRSAPKCS1SHA512
	AlgRSASSAPSS
	AlgECDSAWithSHA224
	AlgECDSAWithSHA256
	AlgECDSAWithSHA384
	AlgECDSAWithSHA512
	AlgDSAWithSHA224
	AlgDSAWithSHA256
	AlgDSAWithSHA384
	AlgDSAWithSHA512
	AlgEd25519
	AlgEd448
	AlgRSAEncryption
	AlgECPublicKey
	AlgVariantAES128CBC
	AlgVariantAES192CBC
	AlgVariantAES256CBC
)

// RsaPssParameters is RFC 4055's RSASSA-PSS-params, with the RFC 4055
// defaults (SHA-1 hash, MGF1-SHA-1 mask, salt length 20, trailer 1) applied
// when a field is absent on parse.
type RsaPssParameters struct {
	HashAlgorithm  AlgorithmVariant
	MaskGenHash    AlgorithmVariant
	SaltLength     int
	TrailerField   int
}

// DefaultRsaPssParameters returns the RFC 4055 default parameter set.
func DefaultRsaPssParameters() RsaPssParameters {
	return RsaPssParameters{
		HashAlgorithm: AlgSHA1,
		MaskGenHash:   AlgSHA1,
		SaltLength:    20,
		TrailerField:  1,
	}
}

// Equal reports structural equality of two RsaPssParameters.
func (p RsaPssParameters) Equal(o RsaPssParameters) bool {
	return p == o
}

// AlgorithmIdentifier models an X.509 AlgorithmIdentifier: an OID plus a
// parameter payload whose shape is dispatched by that OID (spec.md §4.A's
// "defined-by" pattern). Unknown OIDs, and OIDs whose parameters this
// package doesn't special-case, parse into Variant == AlgOther with the raw
// parameter TLV preserved in RawParams so that re-emission stays byte-exact.
type AlgorithmIdentifier struct {
	Variant AlgorithmVariant
	OID     asn1.ObjectIdentifier

	// HasNullParams records whether a NULL parameter was present, for
	// variants that carry an optional NULL (hash algorithms, RSA PKCS#1
	// signature algorithms). The legacy NULL after an ECDSA OID (spec.md §9)
	// is accepted on parse but not recorded here, so it is never re-emitted.
	HasNullParams bool

	// PSSParams is populated only when Variant == AlgRSASSAPSS.
	PSSParams RsaPssParameters

	// IV is populated only for the AES-*-CBC variants.
	IV []byte

	// RawParams holds the raw parameter TLV for AlgOther (the OID itself is
	// in OID), preserving DER round-trip fidelity for unrecognized but
	// well-formed algorithm identifiers.
	RawParams []byte
}

type algorithmIdentifierASN1 struct {
	Algorithm  asn1.ObjectIdentifier
	Parameters asn1.RawValue `asn1:"optional"`
}

// MarshalDER emits a's DER encoding. Per spec.md §9, a legacy NULL that was
// tolerated on parse for an ECDSA AlgorithmIdentifier is never re-emitted.
func (a AlgorithmIdentifier) MarshalDER() ([]byte, error) {
	raw := algorithmIdentifierASN1{Algorithm: a.OID}
	switch a.Variant {
	case AlgSHA1, AlgSHA224, AlgSHA256, AlgSHA384, AlgSHA512,
		AlgSHA3_224, AlgSHA3_256, AlgSHA3_384, AlgSHA3_512,
		AlgRSAPKCS1SHA1, AlgRSAPKCS1SHA224, AlgRSAPKCS1SHA256, AlgRSAPKCS1SHA384, AlgRSAPKCS1SHA512,
		AlgRSAEncryption:
		if a.HasNullParams {
			raw.Parameters = asn1.NullRawValue
		}
		return asn1.Marshal(raw)
	case AlgECDSAWithSHA224, AlgECDSAWithSHA256, AlgECDSAWithSHA384, AlgECDSAWithSHA512,
		AlgDSAWithSHA224, AlgDSAWithSHA256, AlgDSAWithSHA384, AlgDSAWithSHA512,
		AlgEd25519, AlgEd448:
		type noParams struct {
			Algorithm asn1.ObjectIdentifier
		}
		return asn1.Marshal(noParams{Algorithm: a.OID})
	case AlgRSASSAPSS:
		return marshalRSAPSSAlgorithmIdentifier(a.PSSParams)
	case AlgVariantAES128CBC, AlgVariantAES192CBC, AlgVariantAES256CBC:
		type aesParams struct {
			Algorithm asn1.ObjectIdentifier
			IV        []byte
		}
		return asn1.Marshal(aesParams{Algorithm: a.OID, IV: a.IV})
	default:
		if len(a.RawParams) == 0 {
			return asn1.Marshal(struct{ Algorithm asn1.ObjectIdentifier }{a.OID})
		}
		var rv asn1.RawValue
		if _, err := asn1.Unmarshal(a.RawParams, &rv); err != nil {
			return nil, err
		}
		raw.Parameters = rv
		return asn1.Marshal(raw)
	}
}

// ParseAlgorithmIdentifier decodes a DER AlgorithmIdentifier SEQUENCE,
// dispatching its parameter shape by OID.
func ParseAlgorithmIdentifier(der []byte) (AlgorithmIdentifier, error) {
	var raw algorithmIdentifierASN1
	rest, err := asn1.Unmarshal(der, &raw)
	if err != nil {
		return AlgorithmIdentifier{}, wrapErr(ErrMalformedCertificate, err, "parsing AlgorithmIdentifier")
	}
	if len(rest) != 0 {
		return AlgorithmIdentifier{}, newErr(ErrMalformedCertificate, "trailing data after AlgorithmIdentifier")
	}

	hasNull := raw.Parameters.Tag == asn1.TagNull && raw.Parameters.Class == asn1.ClassUniversal

	switch {
	case raw.Algorithm.Equal(oidSHA1):
		return AlgorithmIdentifier{Variant: AlgSHA1, OID: raw.Algorithm, HasNullParams: hasNull}, nil
	case raw.Algorithm.Equal(oidSHA224):
		return AlgorithmIdentifier{Variant: AlgSHA224, OID: raw.Algorithm, HasNullParams: hasNull}, nil
	case raw.Algorithm.Equal(oidSHA256):
		return AlgorithmIdentifier{Variant: AlgSHA256, OID: raw.Algorithm, HasNullParams: hasNull}, nil
	case raw.Algorithm.Equal(oidSHA384):
		return AlgorithmIdentifier{Variant: AlgSHA384, OID: raw.Algorithm, HasNullParams: hasNull}, nil
	case raw.Algorithm.Equal(oidSHA512):
		return AlgorithmIdentifier{Variant: AlgSHA512, OID: raw.Algorithm, HasNullParams: hasNull}, nil
	case raw.Algorithm.Equal(oidSHA3_224):
		return AlgorithmIdentifier{Variant: AlgSHA3_224, OID: raw.Algorithm, HasNullParams: hasNull}, nil
	case raw.Algorithm.Equal(oidSHA3_256):
		return AlgorithmIdentifier{Variant: AlgSHA3_256, OID: raw.Algorithm, HasNullParams: hasNull}, nil
	case raw.Algorithm.Equal(oidSHA3_384):
		return AlgorithmIdentifier{Variant: AlgSHA3_384, OID: raw.Algorithm, HasNullParams: hasNull}, nil
	case raw.Algorithm.Equal(oidSHA3_512):
		return AlgorithmIdentifier{Variant: AlgSHA3_512, OID: raw.Algorithm, HasNullParams: hasNull}, nil
	case raw.Algorithm.Equal(oidRSAEncryption):
		return AlgorithmIdentifier{Variant: AlgRSAEncryption, OID: raw.Algorithm, HasNullParams: hasNull}, nil
	case raw.Algorithm.Equal(oidRSAWithSHA1):
		return AlgorithmIdentifier{Variant: AlgRSAPKCS1SHA1, OID: raw.Algorithm, HasNullParams: hasNull}, nil
	case raw.Algorithm.Equal(oidRSAWithSHA224):
		return AlgorithmIdentifier{Variant: AlgRSAPKCS1SHA224, OID: raw.Algorithm, HasNullParams: hasNull}, nil
	case raw.Algorithm.Equal(oidRSAWithSHA256):
		return AlgorithmIdentifier{Variant: AlgRSAPKCS1SHA256, OID: raw.Algorithm, HasNullParams: hasNull}, nil
	case raw.Algorithm.Equal(oidRSAWithSHA384):
		return AlgorithmIdentifier{Variant: AlgRSAPKCS1SHA384, OID: raw.Algorithm, HasNullParams: hasNull}, nil
	case raw.Algorithm.Equal(oidRSAWithSHA512):
		return AlgorithmIdentifier{Variant: AlgRSAPKCS1SHA512, OID: raw.Algorithm, HasNullParams: hasNull}, nil
	case raw.Algorithm.Equal(oidRSASSAPSS):
		params, err := parseRSAPSSParameters(raw.Parameters)
		if err != nil {
			return AlgorithmIdentifier{}, err
		}
		return AlgorithmIdentifier{Variant: AlgRSASSAPSS, OID: raw.Algorithm, PSSParams: params}, nil
	case raw.Algorithm.Equal(oidECDSAWithSHA224):
		// Some legacy producers (Java <= 11.0.19) emit a spurious NULL here;
		// tolerated on parse, never re-emitted (spec.md §9).
		return AlgorithmIdentifier{Variant: AlgECDSAWithSHA224, OID: raw.Algorithm}, nil
	case raw.Algorithm.Equal(oidECDSAWithSHA256):
		return AlgorithmIdentifier{Variant: AlgECDSAWithSHA256, OID: raw.Algorithm}, nil
	case raw.Algorithm.Equal(oidECDSAWithSHA384):
		return AlgorithmIdentifier{Variant: AlgECDSAWithSHA384, OID: raw.Algorithm}, nil
	case raw.Algorithm.Equal(oidECDSAWithSHA512):
		return AlgorithmIdentifier{Variant: AlgECDSAWithSHA512, OID: raw.Algorithm}, nil
	case raw.Algorithm.Equal(oidDSAWithSHA224):
		return AlgorithmIdentifier{Variant: AlgDSAWithSHA224, OID: raw.Algorithm}, nil
	case raw.Algorithm.Equal(oidDSAWithSHA256):
		return AlgorithmIdentifier{Variant: AlgDSAWithSHA256, OID: raw.Algorithm}, nil
	case raw.Algorithm.Equal(oidDSAWithSHA384):
		return AlgorithmIdentifier{Variant: AlgDSAWithSHA384, OID: raw.Algorithm}, nil
	case raw.Algorithm.Equal(oidDSAWithSHA512):
		return AlgorithmIdentifier{Variant: AlgDSAWithSHA512, OID: raw.Algorithm}, nil
	case raw.Algorithm.Equal(oidEd25519):
		return AlgorithmIdentifier{Variant: AlgEd25519, OID: raw.Algorithm}, nil
	case raw.Algorithm.Equal(oidEd448):
		return AlgorithmIdentifier{Variant: AlgEd448, OID: raw.Algorithm}, nil
	case raw.Algorithm.Equal(oidECPublicKey):
		return AlgorithmIdentifier{Variant: AlgECPublicKey, OID: raw.Algorithm, RawParams: raw.Parameters.FullBytes}, nil
	case raw.Algorithm.Equal(oidAES128CBC):
		iv, err := parseCBCIV(raw.Parameters)
		if err != nil {
			return AlgorithmIdentifier{}, err
		}
		return AlgorithmIdentifier{Variant: AlgVariantAES128CBC, OID: raw.Algorithm, IV: iv}, nil
	case raw.Algorithm.Equal(oidAES192CBC):
		iv, err := parseCBCIV(raw.Parameters)
		if err != nil {
			return AlgorithmIdentifier{}, err
		}
		return AlgorithmIdentifier{Variant: AlgVariantAES192CBC, OID: raw.Algorithm, IV: iv}, nil
	case raw.Algorithm.Equal(oidAES256CBC):
		iv, err := parseCBCIV(raw.Parameters)
		if err != nil {
			return AlgorithmIdentifier{}, err
		}
		return AlgorithmIdentifier{Variant: AlgVariantAES256CBC, OID: raw.Algorithm, IV: iv}, nil
	default:
		return AlgorithmIdentifier{Variant: AlgOther, OID: raw.Algorithm, RawParams: raw.Parameters.FullBytes}, nil
	}
}

func parseCBCIV(params asn1.RawValue) ([]byte, error) {
	var iv []byte
	if _, err := asn1.Unmarshal(params.FullBytes, &iv); err != nil {
		return nil, wrapErr(ErrMalformedCertificate, err, "parsing AES-CBC IV")
	}
	return iv, nil
}

type rsaPSSParamsASN1 struct {
	Hash       algorithmIdentifierASN1 `asn1:"optional,explicit,tag:0"`
	MGF        algorithmIdentifierASN1 `asn1:"optional,explicit,tag:1"`
	SaltLength int                     `asn1:"optional,explicit,tag:2"`
	Trailer    int                     `asn1:"optional,explicit,tag:3,default:1"`
}

func parseRSAPSSParameters(params asn1.RawValue) (RsaPssParameters, error) {
	out := DefaultRsaPssParameters()
	if len(params.FullBytes) == 0 {
		return out, nil
	}
	var raw rsaPSSParamsASN1
	if _, err := asn1.Unmarshal(params.FullBytes, &raw); err != nil {
		return RsaPssParameters{}, wrapErr(ErrMalformedCertificate, err, "parsing RSASSA-PSS parameters")
	}
	if len(raw.Hash.Algorithm) > 0 {
		hashAlg, err := hashVariantForOID(raw.Hash.Algorithm)
		if err != nil {
			return RsaPssParameters{}, err
		}
		out.HashAlgorithm = hashAlg
	}
	if len(raw.MGF.Algorithm) > 0 {
		if !raw.MGF.Algorithm.Equal(oidMGF1) {
			return RsaPssParameters{}, newErr(ErrMalformedCertificate, "unsupported mask generation function")
		}
		var inner algorithmIdentifierASN1
		if _, err := asn1.Unmarshal(raw.MGF.Parameters.FullBytes, &inner); err != nil {
			return RsaPssParameters{}, wrapErr(ErrMalformedCertificate, err, "parsing MGF1 parameters")
		}
		mgfHash, err := hashVariantForOID(inner.Algorithm)
		if err != nil {
			return RsaPssParameters{}, err
		}
		out.MaskGenHash = mgfHash
	}
	if raw.SaltLength != 0 {
		out.SaltLength = raw.SaltLength
	}
	if raw.Trailer != 0 {
		out.TrailerField = raw.Trailer
	}
	return out, nil
}

func marshalRSAPSSAlgorithmIdentifier(p RsaPssParameters) ([]byte, error) {
	hashOID, err := oidForHashVariant(p.HashAlgorithm)
	if err != nil {
		return nil, err
	}
	mgfHashOID, err := oidForHashVariant(p.MaskGenHash)
	if err != nil {
		return nil, err
	}
	mgfHashIdentifier, err := asn1.Marshal(algorithmIdentifierASN1{Algorithm: mgfHashOID, Parameters: asn1.NullRawValue})
	if err != nil {
		return nil, err
	}
	var mgfHashRaw asn1.RawValue
	if _, err := asn1.Unmarshal(mgfHashIdentifier, &mgfHashRaw); err != nil {
		return nil, err
	}

	raw := rsaPSSParamsASN1{
		Hash:       algorithmIdentifierASN1{Algorithm: hashOID, Parameters: asn1.NullRawValue},
		MGF:        algorithmIdentifierASN1{Algorithm: oidMGF1, Parameters: mgfHashRaw},
		SaltLength: p.SaltLength,
		Trailer:    p.TrailerField,
	}
	params, err := asn1.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var paramsRaw asn1.RawValue
	if _, err := asn1.Unmarshal(params, &paramsRaw); err != nil {
		return nil, err
	}
	return asn1.Marshal(algorithmIdentifierASN1{Algorithm: oidRSASSAPSS, Parameters: paramsRaw})
}

func hashVariantForOID(oid asn1.ObjectIdentifier) (AlgorithmVariant, error) {
	switch {
	case oid.Equal(oidSHA1):
		return AlgSHA1, nil
	case oid.Equal(oidSHA224):
		return AlgSHA224, nil
	case oid.Equal(oidSHA256):
		return AlgSHA256, nil
	case oid.Equal(oidSHA384):
		return AlgSHA384, nil
	case oid.Equal(oidSHA512):
		return AlgSHA512, nil
	case oid.Equal(oidSHA3_256):
		return AlgSHA3_256, nil
	case oid.Equal(oidSHA3_384):
		return AlgSHA3_384, nil
	case oid.Equal(oidSHA3_512):
		return AlgSHA3_512, nil
	}
	return 0, newErr(ErrMalformedCertificate, "unrecognized hash OID %s", oid)
}

func oidForHashVariant(v AlgorithmVariant) (asn1.ObjectIdentifier, error) {
	switch v {
	case AlgSHA1:
		return oidSHA1, nil
	case AlgSHA224:
		return oidSHA224, nil
	case AlgSHA256:
		return oidSHA256, nil
	case AlgSHA384:
		return oidSHA384, nil
	case AlgSHA512:
		return oidSHA512, nil
	case AlgSHA3_256:
		return oidSHA3_256, nil
	case AlgSHA3_384:
		return oidSHA3_384, nil
	case AlgSHA3_512:
		return oidSHA3_512, nil
	}
	return nil, newErr(ErrMalformedCertificate, "unsupported hash variant")
}

// Equal reports whether a and o are the same AlgorithmIdentifier, per
// spec.md §3 ("equality is structural").
func (a AlgorithmIdentifier) Equal(o AlgorithmIdentifier) bool {
	if a.Variant != o.Variant || !a.OID.Equal(o.OID) {
		return false
	}
	switch a.Variant {
	case AlgRSASSAPSS:
		return a.PSSParams.Equal(o.PSSParams)
	case AlgVariantAES128CBC, AlgVariantAES192CBC, AlgVariantAES256CBC:
		return bytes.Equal(a.IV, o.IV)
	case AlgOther:
		return bytes.Equal(a.RawParams, o.RawParams)
	default:
		return true
	}
}

// SPKI algorithm allow-list per CA/B Forum BRs §7.1.3.1.
func defaultPermittedSPKIAlgorithms() []AlgorithmIdentifier {
	return []AlgorithmIdentifier{
		{Variant: AlgECPublicKey, OID: oidECPublicKey, RawParams: mustMarshalOID(oidSecp256r1)},
		{Variant: AlgECPublicKey, OID: oidECPublicKey, RawParams: mustMarshalOID(oidSecp384r1)},
		{Variant: AlgECPublicKey, OID: oidECPublicKey, RawParams: mustMarshalOID(oidSecp521r1)},
		{Variant: AlgRSAEncryption, OID: oidRSAEncryption, HasNullParams: true},
	}
}

// Signature algorithm allow-list per CA/B Forum BRs §7.1.3.2: RSASSA-PKCS1v1.5
// with SHA-{256,384,512}; RSASSA-PSS with MGF1 matching hash and salt length
// equal to hash length; ECDSA with SHA-{256,384,512}.
func defaultPermittedSignatureAlgorithms() []AlgorithmIdentifier {
	return []AlgorithmIdentifier{
		{Variant: AlgRSAPKCS1SHA256, OID: oidRSAWithSHA256, HasNullParams: true},
		{Variant: AlgRSAPKCS1SHA384, OID: oidRSAWithSHA384, HasNullParams: true},
		{Variant: AlgRSAPKCS1SHA512, OID: oidRSAWithSHA512, HasNullParams: true},
		{Variant: AlgRSASSAPSS, OID: oidRSASSAPSS, PSSParams: RsaPssParameters{HashAlgorithm: AlgSHA256, MaskGenHash: AlgSHA256, SaltLength: 32, TrailerField: 1}},
		{Variant: AlgRSASSAPSS, OID: oidRSASSAPSS, PSSParams: RsaPssParameters{HashAlgorithm: AlgSHA384, MaskGenHash: AlgSHA384, SaltLength: 48, TrailerField: 1}},
		{Variant: AlgRSASSAPSS, OID: oidRSASSAPSS, PSSParams: RsaPssParameters{HashAlgorithm: AlgSHA512, MaskGenHash: AlgSHA512, SaltLength: 64, TrailerField: 1}},
		{Variant: AlgECDSAWithSHA256, OID: oidECDSAWithSHA256},
		{Variant: AlgECDSAWithSHA384, OID: oidECDSAWithSHA384},
		{Variant: AlgECDSAWithSHA512, OID: oidECDSAWithSHA512},
	}
}

func mustMarshalOID(oid asn1.ObjectIdentifier) []byte {
	b, err := asn1.Marshal(oid)
	if err != nil {
		panic(err)
	}
	return b
}

func containsAlgorithm(set []AlgorithmIdentifier, a AlgorithmIdentifier) bool {
	for _, candidate := range set {
		if candidate.Equal(a) {
			return true
		}
	}
	return false
}
