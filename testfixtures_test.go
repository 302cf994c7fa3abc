// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package pkivalidate

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"testing"
	"time"
)

// certKeyPair is a parsed certificate alongside the private key that
// corresponds to it, the fixture shape go-mail's pkcs7_test.go builds with
// createTestCertificateByIssuer.
type certKeyPair struct {
	cert *Certificate
	x509 *x509.Certificate
	priv any
}

var fixtureSerial int64 = 1

func nextFixtureSerial() *big.Int {
	fixtureSerial++
	return big.NewInt(fixtureSerial)
}

// certOpts customizes createTestCertificateByIssuer beyond what go-mail's fixture
// helper needed, since this module exercises the policy/extension machinery
// the teacher's signing-only tests never touched.
type certOpts struct {
	notBefore   time.Time
	notAfter    time.Time
	dnsNames    []string
	ipAddresses []string
	isCA        bool
	ecdsa       bool
	ed25519     bool
	keyUsage    x509.KeyUsage
	extKeyUsage []x509.ExtKeyUsage
	// sigAlg overrides the signature algorithm the issuer signs this
	// certificate with, for tests that need a disallowed algorithm (e.g.
	// x509.SHA1WithRSA) rather than the RSA/ECDSA-SHA256 default.
	sigAlg x509.SignatureAlgorithm
}

// createTestCertificateByIssuer mirrors the teacher's pkcs7_test.go helper
// of the same name: it builds a real RSA key (ECDSA when opts.ecdsa is set;
// opts.ed25519 is not consulted) and a real
// DER certificate via crypto/x509.CreateCertificate, self-signed when issuer
// is nil, then parses the result with this module's own ParseCertificate so
// every test exercises real DER rather than hand-built structs.
func createTestCertificateByIssuer(t *testing.T, name string, issuer *certKeyPair, opts certOpts) *certKeyPair {
	t.Helper()

	notBefore := opts.notBefore
	if notBefore.IsZero() {
		notBefore = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	notAfter := opts.notAfter
	if notAfter.IsZero() {
		notAfter = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	template := &x509.Certificate{
		SerialNumber: nextFixtureSerial(),
		Subject: pkix.Name{
			CommonName:   name,
			Organization: []string{"pkivalidate test"},
		},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              opts.keyUsage,
		ExtKeyUsage:           opts.extKeyUsage,
		DNSNames:              opts.dnsNames,
		BasicConstraintsValid: true,
	}
	for _, ip := range opts.ipAddresses {
		template.IPAddresses = append(template.IPAddresses, mustParseIP(t, ip))
	}

	var pub any
	var priv any
	switch {
	case opts.ecdsa:
		key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			t.Fatalf("generating ECDSA key: %v", err)
		}
		priv, pub = key, &key.PublicKey
		template.SignatureAlgorithm = x509.ECDSAWithSHA256
	default:
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			t.Fatalf("generating RSA key: %v", err)
		}
		priv, pub = key, &key.PublicKey
		template.SignatureAlgorithm = x509.SHA256WithRSA
	}

	parent := template
	signerKey := priv
	if issuer != nil {
		parent = issuer.x509
		signerKey = issuer.priv
	}
	if issuer == nil || opts.isCA {
		template.IsCA = true
		template.KeyUsage |= x509.KeyUsageCertSign
	}
	if opts.sigAlg != 0 {
		template.SignatureAlgorithm = opts.sigAlg
	}

	der, err := x509.CreateCertificate(rand.Reader, template, parent, pub, signerKey)
	if err != nil {
		t.Fatalf("creating certificate %q: %v", name, err)
	}

	x5, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("stdlib-parsing certificate %q: %v", name, err)
	}

	cert, err := ParseCertificate(der)
	if err != nil {
		t.Fatalf("ParseCertificate(%q): %v", name, err)
	}

	return &certKeyPair{cert: cert, x509: x5, priv: priv}
}

// createTestRootAndLeaf builds a two-certificate chain: a self-signed CA
// root and a leaf issued by it, the minimal shape spec.md §8's scenarios
// build on top of.
func createTestRootAndLeaf(t *testing.T, leafDNS ...string) (root, leaf *certKeyPair) {
	t.Helper()
	root = createTestCertificateByIssuer(t, "Test Root CA", nil, certOpts{isCA: true})
	leaf = createTestCertificateByIssuer(t, "Test Leaf", root, certOpts{
		dnsNames:    leafDNS,
		extKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	})
	return root, leaf
}

func mustParseIP(t *testing.T, s string) net.IP {
	t.Helper()
	ip := net.ParseIP(s)
	if ip == nil {
		t.Fatalf("invalid test fixture IP %q", s)
	}
	return ip
}
