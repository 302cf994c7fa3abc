// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package pkivalidate

import (
	"crypto/x509"
	"errors"
	"fmt"
	"testing"
	"time"
)

// dnsSubject is a small test helper building a Subject from a raw DNS
// string, failing the test on a malformed name.
func dnsSubject(t *testing.T, name string) Subject {
	t.Helper()
	dn, err := NewDNSName(name)
	if err != nil {
		t.Fatalf("NewDNSName(%q): %v", name, err)
	}
	return NewDNSSubject(dn)
}

// TestBuildChainHappyPath is spec.md §8 scenario 1: a three-certificate
// chain (leaf, intermediate, root) with a wildcard SAN and RSA-2048/SHA-256
// throughout validates successfully.
func TestBuildChainHappyPath(t *testing.T) {
	ops := newTestCryptoOps()
	root := createTestCertificateByIssuer(t, "Test Root CA", nil, certOpts{isCA: true})
	inter := createTestCertificateByIssuer(t, "Test Intermediate CA", root, certOpts{isCA: true})
	leaf := createTestCertificateByIssuer(t, "test.cryptography.io", inter, certOpts{
		dnsNames:    []string{"*.cryptography.io"},
		extKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	})

	policy := NewPolicy(ops, WithSubject(dnsSubject(t, "test.cryptography.io")), WithExtendedKeyUsage(oidEKUServerAuth))
	store := NewMapTrustStore(root.cert)
	pool := NewSliceIntermediatePool(inter.cert)

	chain, err := BuildChain(policy, leaf.cert, pool, store, nil)
	if err != nil {
		t.Fatalf("BuildChain: %v", err)
	}
	if len(chain) != 3 {
		t.Fatalf("chain length = %d, want 3", len(chain))
	}
	if chain[0] != leaf.cert || chain[1] != inter.cert || chain[2] != root.cert {
		t.Fatalf("chain order is wrong: %v", chain)
	}
}

// TestBuildChainWildcardMiss is spec.md §8 scenario 2: a wildcard SAN only
// matches a single label, so a two-label subject under it fails.
func TestBuildChainWildcardMiss(t *testing.T) {
	ops := newTestCryptoOps()
	root := createTestCertificateByIssuer(t, "Test Root CA", nil, certOpts{isCA: true})
	inter := createTestCertificateByIssuer(t, "Test Intermediate CA", root, certOpts{isCA: true})
	leaf := createTestCertificateByIssuer(t, "test.cryptography.io", inter, certOpts{
		dnsNames:    []string{"*.cryptography.io"},
		extKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	})

	policy := NewPolicy(ops, WithSubject(dnsSubject(t, "foo.bar.cryptography.io")), WithExtendedKeyUsage(oidEKUServerAuth))
	store := NewMapTrustStore(root.cert)
	pool := NewSliceIntermediatePool(inter.cert)

	_, err := BuildChain(policy, leaf.cert, pool, store, nil)
	assertReason(t, err, ErrSubjectMismatch)
}

// TestBuildChainExpiredLeaf is spec.md §8 scenario 3: validation one second
// after the leaf's notAfter fails as Expired.
func TestBuildChainExpiredLeaf(t *testing.T) {
	ops := newTestCryptoOps()
	root := createTestCertificateByIssuer(t, "Test Root CA", nil, certOpts{isCA: true})
	notAfter := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	leaf := createTestCertificateByIssuer(t, "test.cryptography.io", root, certOpts{
		notBefore:   time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		notAfter:    notAfter,
		dnsNames:    []string{"test.cryptography.io"},
		extKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	})

	policy := NewPolicy(ops,
		WithSubject(dnsSubject(t, "test.cryptography.io")),
		WithExtendedKeyUsage(oidEKUServerAuth),
		WithValidationTime(notAfter.Add(time.Second)),
	)
	store := NewMapTrustStore(root.cert)

	_, err := BuildChain(policy, leaf.cert, nil, store, nil)
	assertReason(t, err, ErrExpired)
}

// TestBuildChainDisallowedHash is spec.md §8 scenario 4: an intermediate
// signed with RSA-SHA1 is rejected, SHA-1 not being on the CA/B Forum
// signature-algorithm allow-list.
func TestBuildChainDisallowedHash(t *testing.T) {
	ops := newTestCryptoOps()
	root := createTestCertificateByIssuer(t, "Test Root CA", nil, certOpts{isCA: true})
	inter := createTestCertificateByIssuer(t, "Test Intermediate CA", root, certOpts{isCA: true, sigAlg: x509.SHA1WithRSA})
	leaf := createTestCertificateByIssuer(t, "test.cryptography.io", inter, certOpts{
		dnsNames:    []string{"test.cryptography.io"},
		extKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	})

	policy := NewPolicy(ops, WithSubject(dnsSubject(t, "test.cryptography.io")), WithExtendedKeyUsage(oidEKUServerAuth))
	store := NewMapTrustStore(root.cert)
	pool := NewSliceIntermediatePool(inter.cert)

	_, err := BuildChain(policy, leaf.cert, pool, store, nil)
	assertReason(t, err, ErrForbiddenSignatureAlgorithm)
}

// TestBuildChainDepthExceeded is spec.md §8 scenario 5: a path with nine
// non-self-issued intermediates exceeds the default max_chain_depth of 8.
func TestBuildChainDepthExceeded(t *testing.T) {
	ops := newTestCryptoOps()
	root := createTestCertificateByIssuer(t, "Test Root CA", nil, certOpts{isCA: true})

	issuer := root
	var pool []*Certificate
	for i := 0; i < 9; i++ {
		inter := createTestCertificateByIssuer(t, fmt.Sprintf("Test Intermediate %d", i), issuer, certOpts{isCA: true})
		pool = append(pool, inter.cert)
		issuer = inter
	}
	leaf := createTestCertificateByIssuer(t, "test.cryptography.io", issuer, certOpts{
		dnsNames:    []string{"test.cryptography.io"},
		extKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	})

	policy := NewPolicy(ops, WithSubject(dnsSubject(t, "test.cryptography.io")), WithExtendedKeyUsage(oidEKUServerAuth))
	store := NewMapTrustStore(root.cert)

	_, err := BuildChain(policy, leaf.cert, NewSliceIntermediatePool(pool...), store, nil)
	assertReason(t, err, ErrMaxChainDepthExceeded)
}

// TestBuildChainNoTrustedRoot covers the case where the issuer chain never
// reaches a certificate in the trust store: an empty store must fail as
// NoTrustedRoot rather than panicking or looping.
func TestBuildChainNoTrustedRoot(t *testing.T) {
	ops := newTestCryptoOps()
	root := createTestCertificateByIssuer(t, "Test Root CA", nil, certOpts{isCA: true})
	leaf := createTestCertificateByIssuer(t, "test.cryptography.io", root, certOpts{
		dnsNames:    []string{"test.cryptography.io"},
		extKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	})

	policy := NewPolicy(ops, WithSubject(dnsSubject(t, "test.cryptography.io")), WithExtendedKeyUsage(oidEKUServerAuth))
	store := NewMapTrustStore() // empty: root is never trusted

	_, err := BuildChain(policy, leaf.cert, nil, store, nil)
	assertReason(t, err, ErrNoTrustedRoot)
}

// assertReason fails the test unless err is a *ValidationError (at any
// depth of wrapping) carrying want.
func assertReason(t *testing.T, err error, want Reason) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error with reason %s, got nil", want)
	}
	if !errors.Is(err, &ValidationError{Reason: want}) {
		t.Fatalf("error %v does not carry reason %s", err, want)
	}
}
