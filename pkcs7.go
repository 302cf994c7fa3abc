// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package pkivalidate

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/asn1"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/pkivalidate/internal/cms"
)

// SignOption is a bitmask of the PKCS#7 sign/encrypt option set from
// spec.md §4.F.
type SignOption int

const (
	// OptBinary suppresses line-ending canonicalization; the input is
	// signed/encrypted unchanged.
	OptBinary SignOption = 1 << iota
	// OptText prepends a text/plain header to the canonicalized data
	// before it is hashed/signed/encrypted.
	OptText
	// OptDetached omits the content from the SignedData; the verifier
	// must supply it separately.
	OptDetached
	// OptNoCapabilities omits the smimeCapabilities authenticated
	// attribute.
	OptNoCapabilities
	// OptNoAttributes signs the content directly instead of building
	// authenticatedAttributes.
	OptNoAttributes
	// OptNoCerts omits the certificates field from the SignedData.
	OptNoCerts
)

func (o SignOption) has(flag SignOption) bool { return o&flag != 0 }

// Encoding selects the PKCS#7 serialization format.
type Encoding int

const (
	EncodingDER Encoding = iota
	EncodingPEM
	EncodingSMIME
)

// SignerConfig is one signer supplied to Sign: a certificate, the matching
// private key, and the hash/padding to sign with (padding is meaningful
// only when PrivateKey is an *rsa.PrivateKey).
type SignerConfig struct {
	Certificate   *Certificate
	PrivateKey    crypto.PrivateKey
	HashAlgorithm HashAlgorithm
	Padding       SignaturePadding
}

// SerializeCertificatesOnly builds the degenerate
// SignedData{signerInfos={}, contentInfo=Data(None)} carrying only certs,
// per spec.md §4.F, and encodes it per encoding.
func SerializeCertificatesOnly(certs []*Certificate, encoding Encoding) ([]byte, error) {
	var certsDER [][]byte
	for _, c := range certs {
		der, err := c.MarshalDER()
		if err != nil {
			return nil, wrapCMSErr(CMSMalformed, err, "marshaling certificate")
		}
		certsDER = append(certsDER, der)
	}
	der, err := cms.BuildSignedData(cms.BuildSignedDataInput{Detached: true, CertificatesDER: certsDER})
	if err != nil {
		return nil, wrapCMSErr(CMSMalformed, err, "building certificates-only SignedData")
	}
	return encodeOutput(der, encoding, "")
}

// Sign builds and serializes a SignedData over data for the given signers,
// per spec.md §4.F.
func Sign(ops CryptoOps, data []byte, signers []SignerConfig, extraCerts []*Certificate, encoding Encoding, opts SignOption) ([]byte, error) {
	withHeader, _ := canonicalize(data, opts.has(OptBinary), opts.has(OptText))

	var certsDER [][]byte
	if !opts.has(OptNoCerts) {
		for _, s := range signers {
			der, err := s.Certificate.MarshalDER()
			if err != nil {
				return nil, wrapCMSErr(CMSMalformed, err, "marshaling signer certificate")
			}
			certsDER = append(certsDER, der)
		}
		for _, c := range extraCerts {
			der, err := c.MarshalDER()
			if err != nil {
				return nil, wrapCMSErr(CMSMalformed, err, "marshaling additional certificate")
			}
			certsDER = append(certsDER, der)
		}
	}

	in := cms.BuildSignedDataInput{
		Content:         withHeader,
		Detached:        opts.has(OptDetached),
		CertificatesDER: certsDER,
	}

	var micalgHash HashAlgorithm
	haveMicalg := false

	for _, signer := range signers {
		signerInput, err := buildSignerInput(ops, signer, withHeader, opts)
		if err != nil {
			return nil, err
		}
		if !haveMicalg {
			micalgHash, haveMicalg = signer.HashAlgorithm, true
		}
		in.Signers = append(in.Signers, signerInput)
	}

	der, err := cms.BuildSignedData(in)
	if err != nil {
		return nil, wrapCMSErr(CMSMalformed, err, "building SignedData")
	}

	micalg := ""
	if haveMicalg {
		micalg, err = micalgForHash(micalgHash)
		if err != nil {
			return nil, err
		}
	}
	return encodeOutput(der, encoding, micalg)
}

// buildSignerInput assembles one signer's cms.SignerInput, including the
// authenticatedAttributes (unless OptNoAttributes) and a Sign closure that
// calls back into ops with the correct bytes-to-sign.
func buildSignerInput(ops CryptoOps, signer SignerConfig, withHeader []byte, opts SignOption) (cms.SignerInput, error) {
	digestAlg, err := hashAlgorithmIdentifier(signer.HashAlgorithm)
	if err != nil {
		return cms.SignerInput{}, err
	}
	digestAlgDER, err := digestAlg.MarshalDER()
	if err != nil {
		return cms.SignerInput{}, err
	}
	sigAlg, err := signatureAlgorithmIdentifier(signer.PrivateKey, signer.HashAlgorithm, signer.Padding)
	if err != nil {
		return cms.SignerInput{}, err
	}
	sigAlgDER, err := sigAlg.MarshalDER()
	if err != nil {
		return cms.SignerInput{}, err
	}
	issuerDER, err := signer.Certificate.TBS.Issuer.MarshalDER()
	if err != nil {
		return cms.SignerInput{}, wrapCMSErr(CMSMalformed, err, "marshaling signer issuer")
	}

	si := cms.SignerInput{
		IssuerDER:                    issuerDER,
		SerialNumber:                 signer.Certificate.TBS.SerialNumber,
		DigestAlgorithmDER:           digestAlgDER,
		DigestEncryptionAlgorithmDER: sigAlgDER,
		NoAttributes:                 opts.has(OptNoAttributes),
	}

	privateKey, hashAlg, padding := signer.PrivateKey, signer.HashAlgorithm, signer.Padding

	if opts.has(OptNoAttributes) {
		si.Sign = func([]byte) ([]byte, error) {
			return ops.Sign(privateKey, hashAlg, padding, withHeader)
		}
		return si, nil
	}

	digest, err := ops.Hash(hashAlg, withHeader)
	if err != nil {
		return cms.SignerInput{}, wrapCMSErr(CMSMalformed, err, "hashing content")
	}
	attrs := []cms.AttributeInput{
		{Type: cms.OIDAttributeContentType, Value: cms.OIDData},
		{Type: cms.OIDAttributeSigningTime, Value: ops.Now()},
		{Type: cms.OIDAttributeMessageDigest, Value: digest},
	}
	if !opts.has(OptNoCapabilities) {
		attrs = append(attrs, cms.AttributeInput{
			Type: cms.OIDAttributeSMIMECapability,
			Value: []smimeCapabilityASN1{
				{CapabilityID: oidAES256CBC},
				{CapabilityID: oidAES192CBC},
				{CapabilityID: oidAES128CBC},
			},
		})
	}
	si.ExtraAttributes = attrs
	si.Sign = func(toBeSigned []byte) ([]byte, error) {
		return ops.Sign(privateKey, hashAlg, padding, toBeSigned)
	}
	return si, nil
}

// smimeCapabilityASN1 is RFC 2985's SMIMECapability, restricted to the
// capabilityID (no parameters), enough to list the supported
// content-encryption algorithms.
type smimeCapabilityASN1 struct {
	CapabilityID asn1.ObjectIdentifier
}

// Encrypt builds and serializes an EnvelopedData for data addressed to
// recipients, per spec.md §4.F: a random AES-128 key and IV, RSA
// PKCS#1 v1.5 key-wrap per recipient.
func Encrypt(ops CryptoOps, data []byte, recipients []*Certificate, binary, text bool) ([]byte, error) {
	withHeader, _ := canonicalize(data, binary, text)

	key, err := ops.RandBytes(16)
	if err != nil {
		return nil, wrapCMSErr(CMSMalformed, err, "generating content-encryption key")
	}
	iv, err := ops.RandBytes(16)
	if err != nil {
		return nil, wrapCMSErr(CMSMalformed, err, "generating content-encryption IV")
	}
	ciphertext, err := ops.EncryptSym(AlgAES128CBC, key, iv, withHeader)
	if err != nil {
		return nil, wrapCMSErr(CMSMalformed, err, "encrypting content")
	}

	contentEncAlg := AlgorithmIdentifier{Variant: AlgVariantAES128CBC, OID: oidAES128CBC, IV: iv}
	contentEncAlgDER, err := contentEncAlg.MarshalDER()
	if err != nil {
		return nil, err
	}

	in := cms.BuildEnvelopedDataInput{
		ContentEncryptionAlgorithmDER: contentEncAlgDER,
		EncryptedContent:              ciphertext,
	}
	for _, recipient := range recipients {
		recipientKey, err := ops.PublicKey(recipient)
		if err != nil {
			return nil, wrapErr(ErrMalformedIssuer, err, "decoding recipient public key")
		}
		encryptedKey, err := ops.WrapKey(recipientKey, key)
		if err != nil {
			return nil, wrapCMSErr(CMSUnsupportedAlgorithm, err, "wrapping content-encryption key")
		}
		issuerDER, err := recipient.TBS.Issuer.MarshalDER()
		if err != nil {
			return nil, wrapCMSErr(CMSMalformed, err, "marshaling recipient issuer")
		}
		in.Recipients = append(in.Recipients, cms.RecipientInput{
			IssuerDER:    issuerDER,
			SerialNumber: recipient.TBS.SerialNumber,
			EncryptedKey: encryptedKey,
		})
	}

	der, err := cms.BuildEnvelopedData(in)
	if err != nil {
		return nil, wrapCMSErr(CMSMalformed, err, "building EnvelopedData")
	}
	return der, nil
}

// Decrypt implements spec.md §4.F's decrypt operation: locate the
// RecipientInfo matching cert's serial number, unwrap the content key under
// priv, require AES-128-CBC content encryption, decrypt, and decanonicalize.
func Decrypt(ops CryptoOps, der []byte, cert *Certificate, priv crypto.PrivateKey, text bool) ([]byte, error) {
	parsed, err := cms.ParseContentInfo(der)
	if err != nil {
		if errors.Is(err, cms.ErrUnsupportedContentType) {
			return nil, wrapCMSErr(CMSUnsupportedContentType, err, "parsing ContentInfo")
		}
		return nil, wrapCMSErr(CMSMalformed, err, "parsing ContentInfo")
	}
	if parsed.Kind != cms.KindEnvelopedData {
		return nil, newCMSErr(CMSUnsupportedAlgorithm, "ContentInfo is not EnvelopedData")
	}
	ed := parsed.EnvelopedData

	recipient, ok := ed.RecipientForSerial(cert.TBS.SerialNumber)
	if !ok {
		return nil, newCMSErr(CMSNoRecipient, "no RecipientInfo matches serial number %s", cert.TBS.SerialNumber)
	}

	if !ed.ContentEncryptionAlgorithmOID.Equal(oidAES128CBC) {
		return nil, newCMSErr(CMSUnsupportedAlgorithm, "content encryption algorithm %s is not AES-128-CBC", ed.ContentEncryptionAlgorithmOID)
	}

	key, err := ops.UnwrapKey(priv, recipient.EncryptedKey)
	if err != nil {
		return nil, wrapCMSErr(CMSUnsupportedAlgorithm, err, "unwrapping content-encryption key")
	}
	plaintext, err := ops.DecryptSym(AlgAES128CBC, key, ed.IV, ed.EncryptedContent)
	if err != nil {
		return nil, wrapCMSErr(CMSMalformed, err, "decrypting content")
	}
	return decanonicalize(plaintext, text), nil
}

// hashAlgorithmIdentifier builds the AlgorithmIdentifier for a CMS
// digestAlgorithm field.
func hashAlgorithmIdentifier(h HashAlgorithm) (AlgorithmIdentifier, error) {
	switch h {
	case HashSHA1:
		return AlgorithmIdentifier{Variant: AlgSHA1, OID: oidSHA1, HasNullParams: true}, nil
	case HashSHA224:
		return AlgorithmIdentifier{Variant: AlgSHA224, OID: oidSHA224, HasNullParams: true}, nil
	case HashSHA256:
		return AlgorithmIdentifier{Variant: AlgSHA256, OID: oidSHA256, HasNullParams: true}, nil
	case HashSHA384:
		return AlgorithmIdentifier{Variant: AlgSHA384, OID: oidSHA384, HasNullParams: true}, nil
	case HashSHA512:
		return AlgorithmIdentifier{Variant: AlgSHA512, OID: oidSHA512, HasNullParams: true}, nil
	case HashSHA3_224:
		return AlgorithmIdentifier{Variant: AlgSHA3_224, OID: oidSHA3_224}, nil
	case HashSHA3_256:
		return AlgorithmIdentifier{Variant: AlgSHA3_256, OID: oidSHA3_256}, nil
	case HashSHA3_384:
		return AlgorithmIdentifier{Variant: AlgSHA3_384, OID: oidSHA3_384}, nil
	case HashSHA3_512:
		return AlgorithmIdentifier{Variant: AlgSHA3_512, OID: oidSHA3_512}, nil
	default:
		return AlgorithmIdentifier{}, newCMSErr(CMSUnsupportedAlgorithm, "unrecognized hash algorithm %d", h)
	}
}

// pssSaltLength returns the RFC 4055-recommended PSS salt length (equal to
// the hash's output length) for h.
func pssSaltLength(h HashAlgorithm) (int, error) {
	switch h {
	case HashSHA256:
		return 32, nil
	case HashSHA384:
		return 48, nil
	case HashSHA512:
		return 64, nil
	default:
		return 0, newCMSErr(CMSUnsupportedAlgorithm, "RSASSA-PSS is not supported for hash algorithm %d", h)
	}
}

// signatureAlgorithmIdentifier builds the CMS digestEncryptionAlgorithm
// AlgorithmIdentifier for priv/hashAlg/padding, per spec.md §4.F: RSA +
// PKCS#1 v1.5 is always plain rsaEncryption with NULL params (RFC 3370);
// RSA + PSS carries full RSASSA-PSS parameters; ECDSA uses
// ecdsa-with-SHA*; Ed25519 is params-less.
func signatureAlgorithmIdentifier(priv crypto.PrivateKey, hashAlg HashAlgorithm, padding SignaturePadding) (AlgorithmIdentifier, error) {
	switch priv.(type) {
	case *rsa.PrivateKey:
		if padding == PaddingPSS {
			variant, err := hashVariantForHashAlgorithm(hashAlg)
			if err != nil {
				return AlgorithmIdentifier{}, err
			}
			saltLength, err := pssSaltLength(hashAlg)
			if err != nil {
				return AlgorithmIdentifier{}, err
			}
			return AlgorithmIdentifier{
				Variant: AlgRSASSAPSS,
				OID:     oidRSASSAPSS,
				PSSParams: RsaPssParameters{
					HashAlgorithm: variant,
					MaskGenHash:   variant,
					SaltLength:    saltLength,
					TrailerField:  1,
				},
			}, nil
		}
		return AlgorithmIdentifier{Variant: AlgRSAEncryption, OID: oidRSAEncryption, HasNullParams: true}, nil
	case *ecdsa.PrivateKey:
		switch hashAlg {
		case HashSHA224:
			return AlgorithmIdentifier{Variant: AlgECDSAWithSHA224, OID: oidECDSAWithSHA224}, nil
		case HashSHA256:
			return AlgorithmIdentifier{Variant: AlgECDSAWithSHA256, OID: oidECDSAWithSHA256}, nil
		case HashSHA384:
			return AlgorithmIdentifier{Variant: AlgECDSAWithSHA384, OID: oidECDSAWithSHA384}, nil
		case HashSHA512:
			return AlgorithmIdentifier{Variant: AlgECDSAWithSHA512, OID: oidECDSAWithSHA512}, nil
		default:
			return AlgorithmIdentifier{}, newCMSErr(CMSUnsupportedAlgorithm, "ECDSA is not supported for hash algorithm %d", hashAlg)
		}
	case ed25519.PrivateKey:
		return AlgorithmIdentifier{Variant: AlgEd25519, OID: oidEd25519}, nil
	default:
		return AlgorithmIdentifier{}, newCMSErr(CMSUnsupportedAlgorithm, "unsupported private key type %T", priv)
	}
}

func hashVariantForHashAlgorithm(h HashAlgorithm) (AlgorithmVariant, error) {
	switch h {
	case HashSHA1:
		return AlgSHA1, nil
	case HashSHA224:
		return AlgSHA224, nil
	case HashSHA256:
		return AlgSHA256, nil
	case HashSHA384:
		return AlgSHA384, nil
	case HashSHA512:
		return AlgSHA512, nil
	case HashSHA3_224:
		return AlgSHA3_224, nil
	case HashSHA3_256:
		return AlgSHA3_256, nil
	case HashSHA3_384:
		return AlgSHA3_384, nil
	case HashSHA3_512:
		return AlgSHA3_512, nil
	default:
		return 0, newCMSErr(CMSUnsupportedAlgorithm, "unrecognized hash algorithm %d", h)
	}
}

// encodeOutput serializes der per encoding, wrapping it in PEM or an
// S/MIME application/pkcs7-mime MIME part as required. micalg is the
// micalg token to use for the S/MIME form; it is ignored otherwise.
func encodeOutput(der []byte, encoding Encoding, micalg string) ([]byte, error) {
	switch encoding {
	case EncodingDER:
		return der, nil
	case EncodingPEM:
		block := &pem.Block{Type: "PKCS7", Bytes: der}
		return pem.EncodeToMemory(block), nil
	case EncodingSMIME:
		return encodeSMIME(der, micalg), nil
	default:
		return nil, newCMSErr(CMSUnsupportedAlgorithm, "unrecognized encoding %d", encoding)
	}
}

// encodeSMIME base64-wraps der as a quoted-printable-free
// application/pkcs7-mime MIME part, per spec.md §6's S/MIME wire format.
func encodeSMIME(der []byte, micalg string) []byte {
	var b strings.Builder
	contentType := "application/pkcs7-mime; smime-type=signed-data; name=\"smime.p7m\""
	if micalg != "" {
		contentType = fmt.Sprintf("application/pkcs7-mime; smime-type=signed-data; micalg=%s; name=\"smime.p7m\"", micalg)
	}
	b.WriteString("Content-Type: " + contentType + smimeNewLine)
	b.WriteString("Content-Transfer-Encoding: base64" + smimeNewLine)
	b.WriteString("Content-Disposition: attachment; filename=\"smime.p7m\"" + smimeNewLine + smimeNewLine)

	lb := &base64LineBreaker{out: &b}
	enc := base64.NewEncoder(base64.StdEncoding, lb)
	_, _ = enc.Write(der)
	_ = enc.Close()
	_ = lb.Close()

	return []byte(b.String())
}
