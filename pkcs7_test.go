// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package pkivalidate

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/wneessen/pkivalidate/internal/cms"
)

// TestSignVerifyRoundTrip is spec.md §8 scenario 6: signing "hello\n" in
// text mode with RSA-SHA256 produces a messageDigest attribute equal to
// SHA256 of the canonicalized, header-prepended content.
func TestSignVerifyRoundTrip(t *testing.T) {
	ops := newTestCryptoOps()
	signer := createTestCertificateByIssuer(t, "Signer", nil, certOpts{})

	der, err := Sign(ops, []byte("hello\n"), []SignerConfig{
		{Certificate: signer.cert, PrivateKey: signer.priv, HashAlgorithm: HashSHA256, Padding: PaddingPKCS1v15},
	}, nil, EncodingDER, OptText)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	parsed, err := cms.ParseContentInfo(der)
	if err != nil {
		t.Fatalf("ParseContentInfo: %v", err)
	}
	if parsed.Kind != cms.KindSignedData {
		t.Fatalf("ContentInfo kind = %v, want SignedData", parsed.Kind)
	}
	if len(parsed.SignedData.SignerInfos) != 1 {
		t.Fatalf("got %d SignerInfos, want 1", len(parsed.SignedData.SignerInfos))
	}

	wantDigest := sha256.Sum256([]byte("Content-Type: text/plain\r\n\r\nhello\r\n"))

	attr, ok := parsed.SignedData.SignerInfos[0].Attribute(cms.OIDAttributeMessageDigest)
	if !ok {
		t.Fatalf("messageDigest attribute missing")
	}
	if !bytes.Equal(attr.FirstValue().Bytes, wantDigest[:]) {
		t.Fatalf("messageDigest = %x, want %x", attr.FirstValue().Bytes, wantDigest[:])
	}

	if !bytes.Equal(parsed.SignedData.Content, []byte("Content-Type: text/plain\r\n\r\nhello\r\n")) {
		t.Fatalf("SignedData.Content = %q, want the canonicalized with-header body", parsed.SignedData.Content)
	}
}

// TestSignDetachedOmitsContent verifies OptDetached leaves SignedData's
// content empty, per spec.md §4.F ("if DETACHED, omit").
func TestSignDetachedOmitsContent(t *testing.T) {
	ops := newTestCryptoOps()
	signer := createTestCertificateByIssuer(t, "Signer", nil, certOpts{})

	der, err := Sign(ops, []byte("hello\n"), []SignerConfig{
		{Certificate: signer.cert, PrivateKey: signer.priv, HashAlgorithm: HashSHA256, Padding: PaddingPKCS1v15},
	}, nil, EncodingDER, OptDetached|OptBinary)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	parsed, err := cms.ParseContentInfo(der)
	if err != nil {
		t.Fatalf("ParseContentInfo: %v", err)
	}
	if parsed.SignedData.HasContent {
		t.Fatalf("detached SignedData should have no content")
	}
}

// TestEncryptDecryptRoundTrip is spec.md §8 scenario 7: a recipient with a
// different serial number cannot decrypt (AttributeNotFound-equivalent),
// and the correct recipient recovers the original plaintext.
func TestEncryptDecryptRoundTrip(t *testing.T) {
	ops := newTestCryptoOps()
	recipient := createTestCertificateByIssuer(t, "Recipient", nil, certOpts{})
	other := createTestCertificateByIssuer(t, "Other", nil, certOpts{})

	plaintext := []byte("top secret payload\n")
	der, err := Encrypt(ops, plaintext, []*Certificate{recipient.cert}, false, false)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	_, err = Decrypt(ops, der, other.cert, other.priv, false)
	if err == nil {
		t.Fatalf("Decrypt with wrong recipient cert should fail")
	}
	var cmsErr *CMSError
	if !errors.As(err, &cmsErr) || cmsErr.Reason != CMSNoRecipient {
		t.Fatalf("Decrypt with wrong recipient: got %v, want CMSNoRecipient", err)
	}

	got, err := Decrypt(ops, der, recipient.cert, recipient.priv, false)
	if err != nil {
		t.Fatalf("Decrypt with correct recipient: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("decrypted plaintext = %q, want %q", got, plaintext)
	}
}

// TestEncryptDecryptTextMode exercises the TEXT-mode canonicalize/
// decanonicalize inverse through a full encrypt/decrypt cycle.
func TestEncryptDecryptTextMode(t *testing.T) {
	ops := newTestCryptoOps()
	recipient := createTestCertificateByIssuer(t, "Recipient", nil, certOpts{})

	plaintext := []byte("line one\nline two\n")
	der, err := Encrypt(ops, plaintext, []*Certificate{recipient.cert}, false, true)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	got, err := Decrypt(ops, der, recipient.cert, recipient.priv, true)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("decrypted plaintext = %q, want %q", got, plaintext)
	}
}

// TestSerializeCertificatesOnly exercises the degenerate
// SignedData{signerInfos={}} path of spec.md §4.F.
func TestSerializeCertificatesOnly(t *testing.T) {
	pair := createTestCertificateByIssuer(t, "Test Root CA", nil, certOpts{isCA: true})

	der, err := SerializeCertificatesOnly([]*Certificate{pair.cert}, EncodingDER)
	if err != nil {
		t.Fatalf("SerializeCertificatesOnly: %v", err)
	}
	parsed, err := cms.ParseContentInfo(der)
	if err != nil {
		t.Fatalf("ParseContentInfo: %v", err)
	}
	if parsed.Kind != cms.KindSignedData {
		t.Fatalf("ContentInfo kind = %v, want SignedData", parsed.Kind)
	}
	if len(parsed.SignedData.SignerInfos) != 0 {
		t.Fatalf("certificates-only SignedData should have no signers")
	}
	if len(parsed.SignedData.CertificatesDER) != 1 {
		t.Fatalf("got %d certificates, want 1", len(parsed.SignedData.CertificatesDER))
	}
}
