// SPDX-FileCopyrightText: Copyright (c) 2015 Andrew Smith
// SPDX-FileCopyrightText: Copyright (c) 2017-2024 The mozilla services project (https://github.com/mozilla-services)
// SPDX-FileCopyrightText: Copyright (c) The go-mail Authors
//
// Partially forked from https://github.com/mozilla-services/pkcs7, which in turn is also a fork
// of https://github.com/fullsailor/pkcs7.
// Use of the forked source code is, same as go-mail, governed by a MIT license.
//
// go-mail specific modifications by the go-mail Authors.
// Licensed under the MIT License.
// See [PROJECT ROOT]/LICENSES directory for more information.
//
// SPDX-License-Identifier: MIT

// Package cms implements the low-level RFC 5652 ASN.1 codec for PKCS#7
// ContentInfo, SignedData, and EnvelopedData. It knows nothing about X.509
// policy or certificate semantics; it works over raw DER fragments supplied
// by the caller (the root pkivalidate package), which is also where
// AlgorithmIdentifier/Certificate values live, to avoid an import cycle.
package cms

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"encoding/asn1"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// Well-known PKCS#7/CMS OIDs (RFC 2315, RFC 5652, RFC 2985).
var (
	OIDData          = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 1}
	OIDSignedData    = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 2}
	OIDEnvelopedData = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 3}

	OIDAttributeContentType      = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 3}
	OIDAttributeMessageDigest    = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 4}
	OIDAttributeSigningTime      = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 5}
	OIDAttributeSMIMECapability  = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 15}
)

// ErrUnsupportedContentType is returned by ParseContentInfo for a
// contentType other than Data, SignedData, or EnvelopedData.
var ErrUnsupportedContentType = errors.New("cms: unsupported content type")

// --- wire structs (fixed SEQUENCE shape once the contentType OID has
// selected a variant; only the outer ContentInfo CHOICE needs cryptobyte) ---

type algorithmIdentifierASN1 struct {
	Algorithm  asn1.ObjectIdentifier
	Parameters asn1.RawValue `asn1:"optional"`
}

type issuerAndSerialASN1 struct {
	IssuerName   asn1.RawValue
	SerialNumber *big.Int
}

type attributeASN1 struct {
	Type  asn1.ObjectIdentifier
	Value asn1.RawValue `asn1:"set"`
}

type signedDataASN1 struct {
	Version                    int                       `asn1:"default:1"`
	DigestAlgorithmIdentifiers []algorithmIdentifierASN1 `asn1:"set"`
	ContentInfo                contentInfoInnerASN1
	Certificates               asn1.RawValue     `asn1:"optional,tag:0"`
	CRLs                       asn1.RawValue     `asn1:"optional,tag:1"`
	SignerInfos                []signerInfoASN1  `asn1:"set"`
}

type contentInfoInnerASN1 struct {
	ContentType asn1.ObjectIdentifier
	Content     asn1.RawValue `asn1:"explicit,optional,tag:0"`
}

type signerInfoASN1 struct {
	Version                   int `asn1:"default:1"`
	IssuerAndSerialNumber     issuerAndSerialASN1
	DigestAlgorithm           algorithmIdentifierASN1
	AuthenticatedAttributes   asn1.RawValue `asn1:"optional,tag:0"`
	DigestEncryptionAlgorithm algorithmIdentifierASN1
	EncryptedDigest           []byte
	UnauthenticatedAttributes asn1.RawValue `asn1:"optional,tag:1"`
}

type envelopedDataASN1 struct {
	Version              int `asn1:"default:0"`
	RecipientInfos       []recipientInfoASN1 `asn1:"set"`
	EncryptedContentInfo encryptedContentInfoASN1
}

type recipientInfoASN1 struct {
	Version                int `asn1:"default:0"`
	IssuerAndSerialNumber  issuerAndSerialASN1
	KeyEncryptionAlgorithm algorithmIdentifierASN1
	EncryptedKey           []byte
}

type encryptedContentInfoASN1 struct {
	ContentType                asn1.ObjectIdentifier
	ContentEncryptionAlgorithm algorithmIdentifierASN1
	EncryptedContent           []byte `asn1:"optional,tag:0"`
}

// --- parsed, caller-friendly model ---

// ContentInfoKind discriminates the admitted ContentInfo variants.
type ContentInfoKind int

const (
	KindData ContentInfoKind = iota
	KindSignedData
	KindEnvelopedData
)

// Attribute is a parsed Attribute (RFC 5652 §5.3): an OID plus its SET OF
// AttributeValue as individual raw values. The signed SET OF Attribute
// bytes are kept on SignerInfo.AuthenticatedAttributesSetDER.
type Attribute struct {
	Type   asn1.ObjectIdentifier
	Values []asn1.RawValue
}

// FirstValue returns attr's first AttributeValue, or the zero RawValue if
// there are none.
func (attr Attribute) FirstValue() asn1.RawValue {
	if len(attr.Values) == 0 {
		return asn1.RawValue{}
	}
	return attr.Values[0]
}

// SignerInfo is a parsed RFC 5652 SignerInfo.
type SignerInfo struct {
	IssuerDER                     []byte
	SerialNumber                  *big.Int
	DigestAlgorithmOID            asn1.ObjectIdentifier
	DigestAlgorithmDER            []byte
	HasAuthenticatedAttributes    bool
	AuthenticatedAttributes       []Attribute
	AuthenticatedAttributesSetDER []byte // re-tagged UNIVERSAL SET OF Attribute, the bytes that were actually signed
	DigestEncryptionAlgorithmOID  asn1.ObjectIdentifier
	DigestEncryptionAlgorithmDER  []byte
	EncryptedDigest               []byte
}

// Attribute looks up a by OID among si's authenticated attributes.
func (si SignerInfo) Attribute(oid asn1.ObjectIdentifier) (Attribute, bool) {
	for _, a := range si.AuthenticatedAttributes {
		if a.Type.Equal(oid) {
			return a, true
		}
	}
	return Attribute{}, false
}

// SignedData is a parsed RFC 5652 SignedData.
type SignedData struct {
	Version         int
	ContentType     asn1.ObjectIdentifier
	Content         []byte
	HasContent      bool
	CertificatesDER [][]byte
	SignerInfos     []SignerInfo
}

// RecipientInfo is a parsed RFC 5652 KeyTransRecipientInfo.
type RecipientInfo struct {
	IssuerDER                 []byte
	SerialNumber              *big.Int
	KeyEncryptionAlgorithmOID asn1.ObjectIdentifier
	EncryptedKey              []byte
}

// EnvelopedData is a parsed RFC 5652 EnvelopedData.
type EnvelopedData struct {
	Version                       int
	RecipientInfos                []RecipientInfo
	ContentEncryptionAlgorithmOID asn1.ObjectIdentifier
	IV                            []byte
	EncryptedContent              []byte
}

// RecipientForSerial returns the first RecipientInfo whose serial number
// equals serial. Per spec.md §9's open question, matching is by serial
// number alone; issuer DN is not re-checked.
func (ed EnvelopedData) RecipientForSerial(serial *big.Int) (RecipientInfo, bool) {
	for _, ri := range ed.RecipientInfos {
		if ri.SerialNumber.Cmp(serial) == 0 {
			return ri, true
		}
	}
	return RecipientInfo{}, false
}

// ParsedContentInfo is the result of ParseContentInfo: exactly one of Data,
// SignedData, or EnvelopedData is populated, per Kind.
type ParsedContentInfo struct {
	Kind          ContentInfoKind
	Data          []byte
	SignedData    *SignedData
	EnvelopedData *EnvelopedData
}

// ParseContentInfo decodes the outer ContentInfo CHOICE. The outer
// {contentType, content} pair is read with cryptobyte since contentType
// selects between structurally unrelated CHOICE arms (OCTET STRING,
// SignedData, EnvelopedData); once the OID is known, the selected arm is a
// fixed SEQUENCE shape and is decoded with encoding/asn1 like the rest of
// this package.
func ParseContentInfo(der []byte) (*ParsedContentInfo, error) {
	input := cryptobyte.String(der)
	var outer cryptobyte.String
	if !input.ReadASN1(&outer, cryptobyte_asn1.SEQUENCE) {
		return nil, fmt.Errorf("cms: malformed ContentInfo")
	}

	var oid asn1.ObjectIdentifier
	if !outer.ReadASN1ObjectIdentifier(&oid) {
		return nil, fmt.Errorf("cms: malformed ContentInfo.contentType")
	}

	var content cryptobyte.String
	var hasContent bool
	explicitZero := cryptobyte_asn1.Tag(0).Constructed().ContextSpecific()
	if !outer.ReadOptionalASN1(&content, &hasContent, explicitZero) {
		return nil, fmt.Errorf("cms: malformed ContentInfo.content")
	}

	switch {
	case oid.Equal(OIDData):
		out := &ParsedContentInfo{Kind: KindData}
		if hasContent {
			var octets []byte
			if _, err := asn1.Unmarshal(content, &octets); err != nil {
				return nil, fmt.Errorf("cms: parsing Data content: %w", err)
			}
			out.Data = octets
		}
		return out, nil
	case oid.Equal(OIDSignedData):
		sd, err := parseSignedData([]byte(content))
		if err != nil {
			return nil, err
		}
		return &ParsedContentInfo{Kind: KindSignedData, SignedData: sd}, nil
	case oid.Equal(OIDEnvelopedData):
		ed, err := parseEnvelopedData([]byte(content))
		if err != nil {
			return nil, err
		}
		return &ParsedContentInfo{Kind: KindEnvelopedData, EnvelopedData: ed}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContentType, oid)
	}
}

func parseSignedData(der []byte) (*SignedData, error) {
	var raw signedDataASN1
	rest, err := asn1.Unmarshal(der, &raw)
	if err != nil {
		return nil, fmt.Errorf("cms: parsing SignedData: %w", err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("cms: trailing data after SignedData")
	}

	sd := &SignedData{Version: raw.Version, ContentType: raw.ContentInfo.ContentType}
	if len(raw.ContentInfo.Content.FullBytes) != 0 {
		var octets []byte
		if _, err := asn1.Unmarshal(raw.ContentInfo.Content.Bytes, &octets); err != nil {
			return nil, fmt.Errorf("cms: parsing SignedData inner content: %w", err)
		}
		sd.Content = octets
		sd.HasContent = true
	}

	if len(raw.Certificates.FullBytes) != 0 {
		certs, err := splitCertificates(raw.Certificates.Bytes)
		if err != nil {
			return nil, err
		}
		sd.CertificatesDER = certs
	}

	for _, s := range raw.SignerInfos {
		si, err := parseSignerInfo(s)
		if err != nil {
			return nil, err
		}
		sd.SignerInfos = append(sd.SignerInfos, si)
	}
	return sd, nil
}

// splitCertificates splits the concatenated DER Certificate SEQUENCEs found
// inside the [0] IMPLICIT SET OF Certificate back into individual TLVs.
func splitCertificates(concatenated []byte) ([][]byte, error) {
	var out [][]byte
	rest := concatenated
	for len(rest) != 0 {
		var v asn1.RawValue
		tail, err := asn1.Unmarshal(rest, &v)
		if err != nil {
			return nil, fmt.Errorf("cms: parsing certificates: %w", err)
		}
		out = append(out, v.FullBytes)
		rest = tail
	}
	return out, nil
}

func parseSignerInfo(raw signerInfoASN1) (SignerInfo, error) {
	si := SignerInfo{
		IssuerDER:                    raw.IssuerAndSerialNumber.IssuerName.FullBytes,
		SerialNumber:                 raw.IssuerAndSerialNumber.SerialNumber,
		DigestAlgorithmOID:           raw.DigestAlgorithm.Algorithm,
		DigestEncryptionAlgorithmOID: raw.DigestEncryptionAlgorithm.Algorithm,
		EncryptedDigest:              raw.EncryptedDigest,
	}
	var err error
	si.DigestAlgorithmDER, err = asn1.Marshal(raw.DigestAlgorithm)
	if err != nil {
		return SignerInfo{}, err
	}
	si.DigestEncryptionAlgorithmDER, err = asn1.Marshal(raw.DigestEncryptionAlgorithm)
	if err != nil {
		return SignerInfo{}, err
	}

	if len(raw.AuthenticatedAttributes.FullBytes) != 0 {
		si.HasAuthenticatedAttributes = true
		setDER, err := retagAsUniversalSet(raw.AuthenticatedAttributes)
		if err != nil {
			return SignerInfo{}, err
		}
		si.AuthenticatedAttributesSetDER = setDER
		var attrs []attributeASN1
		if _, err := asn1.UnmarshalWithParams(setDER, &attrs, "set"); err != nil {
			return SignerInfo{}, fmt.Errorf("cms: parsing authenticatedAttributes: %w", err)
		}
		for _, a := range attrs {
			vals, err := attributeValues(a.Value)
			if err != nil {
				return SignerInfo{}, err
			}
			si.AuthenticatedAttributes = append(si.AuthenticatedAttributes, Attribute{Type: a.Type, Values: vals})
		}
	}
	return si, nil
}

// retagAsUniversalSet rewrites raw (a context-tagged IMPLICIT SET OF value,
// as carried by the [0]/[1] SignerInfo attribute fields) into the
// UNIVERSAL SET encoding that was actually used to compute/verify the
// signature (spec.md §4.F: "the DER encoding of SET OF Attribute, not the
// outer [0] IMPLICIT").
func retagAsUniversalSet(raw asn1.RawValue) ([]byte, error) {
	retagged := asn1.RawValue{Class: asn1.ClassUniversal, Tag: asn1.TagSet, IsCompound: true, Bytes: raw.Bytes}
	return asn1.Marshal(retagged)
}

func attributeValues(setValue asn1.RawValue) ([]asn1.RawValue, error) {
	var vals []asn1.RawValue
	if _, err := asn1.UnmarshalWithParams(setValue.FullBytes, &vals, "set"); err != nil {
		return nil, fmt.Errorf("cms: parsing attribute values: %w", err)
	}
	return vals, nil
}

func parseEnvelopedData(der []byte) (*EnvelopedData, error) {
	var raw envelopedDataASN1
	rest, err := asn1.Unmarshal(der, &raw)
	if err != nil {
		return nil, fmt.Errorf("cms: parsing EnvelopedData: %w", err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("cms: trailing data after EnvelopedData")
	}

	ed := &EnvelopedData{
		Version:                       raw.Version,
		ContentEncryptionAlgorithmOID: raw.EncryptedContentInfo.ContentEncryptionAlgorithm.Algorithm,
		EncryptedContent:              raw.EncryptedContentInfo.EncryptedContent,
	}
	if len(raw.EncryptedContentInfo.ContentEncryptionAlgorithm.Parameters.FullBytes) != 0 {
		var iv []byte
		if _, err := asn1.Unmarshal(raw.EncryptedContentInfo.ContentEncryptionAlgorithm.Parameters.FullBytes, &iv); err != nil {
			return nil, fmt.Errorf("cms: parsing contentEncryptionAlgorithm IV: %w", err)
		}
		ed.IV = iv
	}
	for _, r := range raw.RecipientInfos {
		ed.RecipientInfos = append(ed.RecipientInfos, RecipientInfo{
			IssuerDER:                 r.IssuerAndSerialNumber.IssuerName.FullBytes,
			SerialNumber:              r.IssuerAndSerialNumber.SerialNumber,
			KeyEncryptionAlgorithmOID: r.KeyEncryptionAlgorithm.Algorithm,
			EncryptedKey:              r.EncryptedKey,
		})
	}
	return ed, nil
}

// --- building / signing ---

// AttributeInput is one Attribute to include in a signer's
// authenticatedAttributes, expressed as a value asn1.Marshal can encode
// directly (mirrors the forked pkcs7 package's own Attribute type).
type AttributeInput struct {
	Type  asn1.ObjectIdentifier
	Value interface{}
}

type sortableAttribute struct {
	sortKey []byte
	attr    attributeASN1
}

type attributeSet []sortableAttribute

func (as attributeSet) Len() int           { return len(as) }
func (as attributeSet) Less(i, j int) bool { return bytes.Compare(as[i].sortKey, as[j].sortKey) < 0 }
func (as attributeSet) Swap(i, j int)      { as[i], as[j] = as[j], as[i] }

// marshalAttributesToSet builds the DER encoding of SET OF Attribute for
// the given inputs, sorted per DER's SET-OF canonical ordering (RFC 5280
// §4.1.1: the concrete encoding, not the logical OID, is the sort key).
// It returns both the canonical UNIVERSAL SET bytes (what gets signed) and
// the parsed attributeASN1 slice (for re-tagging into the IMPLICIT field).
func marshalAttributesToSet(inputs []AttributeInput) ([]byte, []attributeASN1, error) {
	sortables := make(attributeSet, 0, len(inputs))
	for _, in := range inputs {
		valueDER, err := asn1.Marshal(in.Value)
		if err != nil {
			return nil, nil, err
		}
		attr := attributeASN1{
			Type:  in.Type,
			Value: asn1.RawValue{Class: asn1.ClassUniversal, Tag: asn1.TagSet, IsCompound: true, Bytes: valueDER},
		}
		encoded, err := asn1.Marshal(attr)
		if err != nil {
			return nil, nil, err
		}
		sortables = append(sortables, sortableAttribute{sortKey: encoded, attr: attr})
	}
	sort.Sort(sortables)

	attrs := make([]attributeASN1, len(sortables))
	for i, s := range sortables {
		attrs[i] = s.attr
	}
	setDER, err := asn1.Marshal(struct {
		Attrs []attributeASN1 `asn1:"set"`
	}{attrs})
	if err != nil {
		return nil, nil, err
	}
	var rv asn1.RawValue
	if _, err := asn1.Unmarshal(setDER, &rv); err != nil {
		return nil, nil, err
	}
	// setDER is a SEQUENCE wrapping the SET; its contents are the SET TLV.
	return rv.Bytes, attrs, nil
}

// SignerInput is one signer to add to a SignedData being built.
type SignerInput struct {
	// IssuerDER is the raw Name DER of the issuer named in
	// issuerAndSerialNumber (the signing certificate's own issuer, or its
	// subject when self-signed).
	IssuerDER    []byte
	SerialNumber *big.Int

	DigestAlgorithmDER           []byte // full AlgorithmIdentifier DER for digestAlgorithm
	DigestEncryptionAlgorithmDER []byte // full AlgorithmIdentifier DER for digestEncryptionAlgorithm

	// NoAttributes, when true, signs RawDigestInput directly instead of
	// building authenticatedAttributes (spec.md §4.F).
	NoAttributes    bool
	ExtraAttributes []AttributeInput // ContentType/messageDigest/signingTime/smimeCapabilities, caller-assembled

	// Sign is invoked with the canonical SET OF Attribute encoding this
	// signer's signature must cover, or with nil when NoAttributes is set,
	// in which case Sign signs the with-header content it closes over.
	Sign func(toBeSigned []byte) ([]byte, error)
}

// BuildSignedDataInput describes a complete SignedData to assemble.
type BuildSignedDataInput struct {
	Content         []byte // with-header data; nil if Detached
	Detached        bool
	CertificatesDER [][]byte // omit (nil) for NO_CERTS
	Signers         []SignerInput
}

// BuildSignedData assembles and DER-encodes a ContentInfo(SignedData) per
// RFC 5652, wiring in.Signers' already-computed signatures.
func BuildSignedData(in BuildSignedDataInput) ([]byte, error) {
	sd := signedDataASN1{Version: 1}
	seenDigestAlgs := make(map[string]bool)

	for _, signer := range in.Signers {
		var digestAlg algorithmIdentifierASN1
		if _, err := asn1.Unmarshal(signer.DigestAlgorithmDER, &digestAlg); err != nil {
			return nil, fmt.Errorf("cms: malformed signer digestAlgorithm: %w", err)
		}
		key := digestAlg.Algorithm.String()
		if !seenDigestAlgs[key] {
			seenDigestAlgs[key] = true
			sd.DigestAlgorithmIdentifiers = append(sd.DigestAlgorithmIdentifiers, digestAlg)
		}

		var digestEncAlg algorithmIdentifierASN1
		if _, err := asn1.Unmarshal(signer.DigestEncryptionAlgorithmDER, &digestEncAlg); err != nil {
			return nil, fmt.Errorf("cms: malformed signer digestEncryptionAlgorithm: %w", err)
		}

		si := signerInfoASN1{
			Version: 1,
			IssuerAndSerialNumber: issuerAndSerialASN1{
				IssuerName:   rawValueFromDER(signer.IssuerDER),
				SerialNumber: signer.SerialNumber,
			},
			DigestAlgorithm:           digestAlg,
			DigestEncryptionAlgorithm: digestEncAlg,
		}

		var toBeSigned []byte
		if !signer.NoAttributes {
			setDER, attrs, err := marshalAttributesToSet(signer.ExtraAttributes)
			if err != nil {
				return nil, err
			}
			implicit, err := retagSetAsContext(attrs, 0)
			if err != nil {
				return nil, err
			}
			si.AuthenticatedAttributes = implicit
			toBeSigned = setDER
		} else {
			// NoAttributes: the caller already knows what toBeSigned is
			// (the with-header data); Sign is invoked with nil here and is
			// expected to close over it.
			toBeSigned = nil
		}

		sig, err := signer.Sign(toBeSigned)
		if err != nil {
			return nil, err
		}
		si.EncryptedDigest = sig
		sd.SignerInfos = append(sd.SignerInfos, si)
	}

	ci := contentInfoInnerASN1{ContentType: OIDData}
	if !in.Detached {
		octets, err := asn1.Marshal(in.Content)
		if err != nil {
			return nil, err
		}
		ci.Content = asn1.RawValue{Class: asn1.ClassContextSpecific, Tag: 0, IsCompound: true, Bytes: octets}
	}
	sd.ContentInfo = ci

	if len(in.CertificatesDER) > 0 {
		var buf bytes.Buffer
		for _, c := range in.CertificatesDER {
			buf.Write(c)
		}
		wrapped, err := asn1.Marshal(asn1.RawValue{Class: asn1.ClassContextSpecific, Tag: 0, IsCompound: true, Bytes: buf.Bytes()})
		if err != nil {
			return nil, err
		}
		var rv asn1.RawValue
		if _, err := asn1.Unmarshal(wrapped, &rv); err != nil {
			return nil, err
		}
		sd.Certificates = rv
	}

	inner, err := asn1.Marshal(sd)
	if err != nil {
		return nil, err
	}
	return marshalContentInfo(OIDSignedData, inner)
}

// retagSetAsContext re-tags a canonical SET OF attributeASN1 as an
// IMPLICIT context-specific tag (0 for authenticatedAttributes, 1 for
// unauthenticatedAttributes), the form SignerInfo actually carries on the
// wire.
func retagSetAsContext(attrs []attributeASN1, tag int) (asn1.RawValue, error) {
	setDER, err := asn1.Marshal(struct {
		Attrs []attributeASN1 `asn1:"set"`
	}{attrs})
	if err != nil {
		return asn1.RawValue{}, err
	}
	var rv asn1.RawValue
	if _, err := asn1.Unmarshal(setDER, &rv); err != nil {
		return asn1.RawValue{}, err
	}
	rv.Class, rv.Tag = asn1.ClassContextSpecific, tag
	reencoded, err := asn1.Marshal(rv)
	if err != nil {
		return asn1.RawValue{}, err
	}
	var out asn1.RawValue
	if _, err := asn1.Unmarshal(reencoded, &out); err != nil {
		return asn1.RawValue{}, err
	}
	return out, nil
}

func rawValueFromDER(der []byte) asn1.RawValue {
	var rv asn1.RawValue
	if _, err := asn1.Unmarshal(der, &rv); err != nil {
		return asn1.RawValue{FullBytes: der, Bytes: der}
	}
	return rv
}

func marshalContentInfo(oid asn1.ObjectIdentifier, inner []byte) ([]byte, error) {
	ci := contentInfoInnerASN1{ContentType: oid, Content: asn1.RawValue{Class: asn1.ClassContextSpecific, Tag: 0, IsCompound: true, Bytes: inner}}
	return asn1.Marshal(ci)
}

// --- EnvelopedData building ---

// RecipientInput is one recipient to add to an EnvelopedData being built.
type RecipientInput struct {
	IssuerDER    []byte
	SerialNumber *big.Int
	EncryptedKey []byte // content-encryption key, RSA PKCS#1 v1.5-wrapped under the recipient's public key
}

// BuildEnvelopedDataInput describes a complete EnvelopedData to assemble.
type BuildEnvelopedDataInput struct {
	ContentEncryptionAlgorithmDER []byte // full AlgorithmIdentifier DER, e.g. aes128-CBC(iv)
	EncryptedContent              []byte
	Recipients                    []RecipientInput
}

// BuildEnvelopedData assembles and DER-encodes a ContentInfo(EnvelopedData)
// per RFC 5652 §6.
func BuildEnvelopedData(in BuildEnvelopedDataInput) ([]byte, error) {
	var contentEncAlg algorithmIdentifierASN1
	if _, err := asn1.Unmarshal(in.ContentEncryptionAlgorithmDER, &contentEncAlg); err != nil {
		return nil, fmt.Errorf("cms: malformed contentEncryptionAlgorithm: %w", err)
	}

	ed := envelopedDataASN1{
		Version: 0,
		EncryptedContentInfo: encryptedContentInfoASN1{
			ContentType:                OIDData,
			ContentEncryptionAlgorithm: contentEncAlg,
			EncryptedContent:           in.EncryptedContent,
		},
	}
	for _, r := range in.Recipients {
		ed.RecipientInfos = append(ed.RecipientInfos, recipientInfoASN1{
			Version: 0,
			IssuerAndSerialNumber: issuerAndSerialASN1{
				IssuerName:   rawValueFromDER(r.IssuerDER),
				SerialNumber: r.SerialNumber,
			},
			KeyEncryptionAlgorithm: algorithmIdentifierASN1{Algorithm: rsaEncryptionOID, Parameters: asn1.NullRawValue},
			EncryptedKey:           r.EncryptedKey,
		})
	}

	inner, err := asn1.Marshal(ed)
	if err != nil {
		return nil, err
	}
	return marshalContentInfo(OIDEnvelopedData, inner)
}

var rsaEncryptionOID = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 1}
