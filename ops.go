// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package pkivalidate

import (
	"crypto"
	"time"
)

// PublicKey is an opaque handle to a certificate's decoded public key, as
// produced by CryptoOps.PublicKey. Its concrete type is whatever the
// embedder's crypto backend returns (*rsa.PublicKey, *ecdsa.PublicKey,
// ed25519.PublicKey, ...); this package never inspects it directly, only
// threads it back into CryptoOps.VerifySignedBy.
type PublicKey = crypto.PublicKey

// CryptoOps is the sole boundary between this package and cryptographic
// primitives (RSA/ECDSA/Ed25519 signing and verification, AES-CBC, hashing,
// and secure randomness). The package contains no crypto arithmetic of its
// own; every fallible operation in §4 that needs one calls through this
// interface. Implementations are expected to be pure functions of their
// arguments, with no shared mutable state other than what the caller
// supplies.
type CryptoOps interface {
	// PublicKey decodes and returns cert's subject public key.
	PublicKey(cert *Certificate) (PublicKey, error)

	// VerifySignedBy reports whether child's outer signature verifies
	// under issuerKey, using child's declared signature algorithm.
	VerifySignedBy(child *Certificate, issuerKey PublicKey) error

	// Sign produces a signature over data using priv, hashAlg, and padding
	// (meaningful only for RSA; ignored otherwise).
	Sign(priv crypto.PrivateKey, hashAlg HashAlgorithm, padding SignaturePadding, data []byte) ([]byte, error)

	// EncryptSym encrypts plaintext under alg in the given mode (currently
	// only AES-CBC is required by spec.md §4.F).
	EncryptSym(alg SymmetricAlgorithm, key, iv, plaintext []byte) ([]byte, error)

	// DecryptSym is the inverse of EncryptSym.
	DecryptSym(alg SymmetricAlgorithm, key, iv, ciphertext []byte) ([]byte, error)

	// Hash computes the digest of data under alg.
	Hash(alg HashAlgorithm, data []byte) ([]byte, error)

	// RandBytes returns n cryptographically random bytes.
	RandBytes(n int) ([]byte, error)

	// WrapKey encrypts key under recipientKey using RSA PKCS#1 v1.5, for
	// EnvelopedData's RecipientInfo.encryptedKey (spec.md §4.F; RSA-OAEP is
	// not used).
	WrapKey(recipientKey PublicKey, key []byte) ([]byte, error)

	// UnwrapKey is the inverse of WrapKey, using the caller's private key.
	UnwrapKey(priv crypto.PrivateKey, ciphertext []byte) ([]byte, error)

	// Now returns the current time, for signingTime attributes and for the
	// default Policy.ValidationTime that NewPolicy sets. Path building never
	// calls Now: it reads Policy.ValidationTime, so validation remains a
	// pure function of its explicit inputs.
	Now() time.Time
}

// HashAlgorithm identifies a digest algorithm independent of its OID
// encoding, for use across CryptoOps calls.
type HashAlgorithm int

const (
	HashSHA1 HashAlgorithm = iota
	HashSHA224
	HashSHA256
	HashSHA384
	HashSHA512
	HashSHA3_224
	HashSHA3_256
	HashSHA3_384
	HashSHA3_512
)

// SignaturePadding selects an RSA signature padding scheme. It is ignored
// for non-RSA keys.
type SignaturePadding int

const (
	// PaddingPKCS1v15 is RSASSA-PKCS1-v1_5.
	PaddingPKCS1v15 SignaturePadding = iota
	// PaddingPSS is RSASSA-PSS.
	PaddingPSS
)

// SymmetricAlgorithm identifies a content-encryption algorithm.
type SymmetricAlgorithm int

const (
	AlgAES128CBC SymmetricAlgorithm = iota
	AlgAES192CBC
	AlgAES256CBC
)
