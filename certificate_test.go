// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package pkivalidate

import (
	"bytes"
	"testing"
)

// TestCertificateDERRoundTrip is spec.md §8's universal property: for every
// certificate C parsed successfully, parse(serialize(C)) = C.
func TestCertificateDERRoundTrip(t *testing.T) {
	pair := createTestCertificateByIssuer(t, "Test Root CA", nil, certOpts{isCA: true})

	der, err := pair.cert.MarshalDER()
	if err != nil {
		t.Fatalf("MarshalDER: %v", err)
	}
	if !bytes.Equal(der, pair.x509.Raw) {
		t.Fatalf("MarshalDER output does not match original DER bytes")
	}

	reparsed, err := ParseCertificate(der)
	if err != nil {
		t.Fatalf("ParseCertificate(MarshalDER output): %v", err)
	}
	reDER, err := reparsed.MarshalDER()
	if err != nil {
		t.Fatalf("MarshalDER (second round): %v", err)
	}
	if !bytes.Equal(der, reDER) {
		t.Fatalf("second round-trip diverged from the first")
	}
	if !reparsed.TBS.Subject.Equal(pair.cert.TBS.Subject) {
		t.Fatalf("subject mismatch after round-trip")
	}
	if reparsed.TBS.SerialNumber.Cmp(pair.cert.TBS.SerialNumber) != 0 {
		t.Fatalf("serial mismatch after round-trip")
	}
}

// TestCertificateOuterSignatureAlgorithmMatchesTBS checks spec.md §3's
// invariant that the outer signatureAlgorithm and tbsCertificate.signature
// agree: on a certificate generated by crypto/x509 and parsed by
// ParseCertificate, both name the same OID.
func TestCertificateOuterSignatureAlgorithmMatchesTBS(t *testing.T) {
	pair := createTestCertificateByIssuer(t, "Test Root CA", nil, certOpts{isCA: true})
	if pair.cert.SignatureAlgorithm.OID.String() != pair.cert.TBS.Signature.OID.String() {
		t.Fatalf("outer signatureAlgorithm %s does not match tbsCertificate.signature %s",
			pair.cert.SignatureAlgorithm.OID, pair.cert.TBS.Signature.OID)
	}
}

// TestCertificateSerialEncoding checks spec.md §3's serial invariant on a
// generated certificate: the parsed serial is a positive integer. The 1..21
// octet and high-bit rules are enforced by ParseCertificate while the
// fixture is built; this test does not feed it an invalid encoding.
func TestCertificateSerialEncoding(t *testing.T) {
	pair := createTestCertificateByIssuer(t, "Test Root CA", nil, certOpts{isCA: true})
	if pair.cert.TBS.SerialNumber.Sign() <= 0 {
		t.Fatalf("serial is not positive")
	}
}

// TestCertificateIsSelfIssued checks the self-issued predicate chain.go's
// depth bookkeeping relies on: issuer == subject for a self-signed root,
// and false for a leaf issued by a distinct CA.
func TestCertificateIsSelfIssued(t *testing.T) {
	root := createTestCertificateByIssuer(t, "Test Root CA", nil, certOpts{isCA: true})
	if !root.cert.IsSelfIssued() {
		t.Fatalf("self-signed root should be self-issued")
	}
	leaf := createTestCertificateByIssuer(t, "test.cryptography.io", root, certOpts{
		dnsNames: []string{"test.cryptography.io"},
	})
	if leaf.cert.IsSelfIssued() {
		t.Fatalf("leaf issued by a distinct CA should not be self-issued")
	}
}
