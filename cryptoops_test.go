// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package pkivalidate

import (
	"bytes"
	"crypto"
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/x509"
	"encoding/asn1"
	"fmt"
	"time"
)

// testCryptoOps is a CryptoOps backed by the real stdlib primitives, in the
// role go-mail's pkcs7_test.go fills with openssl shell-outs: here it is
// Go's own crypto/rsa, crypto/ecdsa, and crypto/ed25519 standing in for the
// embedder's native-shim crypto backend described in spec.md §6.
type testCryptoOps struct {
	now time.Time
}

func newTestCryptoOps() *testCryptoOps {
	return &testCryptoOps{now: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
}

func (o *testCryptoOps) Now() time.Time { return o.now }

func (o *testCryptoOps) PublicKey(cert *Certificate) (PublicKey, error) {
	algDER, err := cert.TBS.SPKI.Algorithm.MarshalDER()
	if err != nil {
		return nil, err
	}
	var algRaw asn1.RawValue
	if _, err := asn1.Unmarshal(algDER, &algRaw); err != nil {
		return nil, err
	}
	der, err := asn1.Marshal(struct {
		Algorithm asn1.RawValue
		PublicKey asn1.BitString
	}{algRaw, cert.TBS.SPKI.PublicKey})
	if err != nil {
		return nil, err
	}
	return x509.ParsePKIXPublicKey(der)
}

func (o *testCryptoOps) VerifySignedBy(child *Certificate, issuerKey PublicKey) error {
	hashAlg, scheme, err := hashAndSchemeForVariant(child.SignatureAlgorithm.Variant, child.SignatureAlgorithm.PSSParams)
	if err != nil {
		return err
	}
	tbs := child.RawTBS()
	sig := child.SignatureValue.RightAlign()

	switch key := issuerKey.(type) {
	case *rsa.PublicKey:
		digest, err := hashBytes(hashAlg, tbs)
		if err != nil {
			return err
		}
		if scheme == PaddingPSS {
			return rsa.VerifyPSS(key, cryptoHash(hashAlg), digest, sig, &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash})
		}
		return rsa.VerifyPKCS1v15(key, cryptoHash(hashAlg), digest, sig)
	case *ecdsa.PublicKey:
		digest, err := hashBytes(hashAlg, tbs)
		if err != nil {
			return err
		}
		if !ecdsa.VerifyASN1(key, digest, sig) {
			return fmt.Errorf("ecdsa signature does not verify")
		}
		return nil
	case ed25519.PublicKey:
		if !ed25519.Verify(key, tbs, sig) {
			return fmt.Errorf("ed25519 signature does not verify")
		}
		return nil
	default:
		return fmt.Errorf("unsupported public key type %T", issuerKey)
	}
}

func (o *testCryptoOps) Sign(priv crypto.PrivateKey, hashAlg HashAlgorithm, padding SignaturePadding, data []byte) ([]byte, error) {
	switch key := priv.(type) {
	case *rsa.PrivateKey:
		digest, err := hashBytes(hashAlg, data)
		if err != nil {
			return nil, err
		}
		if padding == PaddingPSS {
			return rsa.SignPSS(rand.Reader, key, cryptoHash(hashAlg), digest, &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash})
		}
		return rsa.SignPKCS1v15(rand.Reader, key, cryptoHash(hashAlg), digest)
	case *ecdsa.PrivateKey:
		digest, err := hashBytes(hashAlg, data)
		if err != nil {
			return nil, err
		}
		return ecdsa.SignASN1(rand.Reader, key, digest)
	case ed25519.PrivateKey:
		return ed25519.Sign(key, data), nil
	default:
		return nil, fmt.Errorf("unsupported private key type %T", priv)
	}
}

func (o *testCryptoOps) EncryptSym(alg SymmetricAlgorithm, key, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	padded := pkcs7Pad(plaintext, block.BlockSize())
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return out, nil
}

func (o *testCryptoOps) DecryptSym(alg SymmetricAlgorithm, key, iv, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext)%block.BlockSize() != 0 {
		return nil, fmt.Errorf("ciphertext is not a multiple of the block size")
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)
	return pkcs7Unpad(out)
}

func (o *testCryptoOps) Hash(alg HashAlgorithm, data []byte) ([]byte, error) {
	return hashBytes(alg, data)
}

func (o *testCryptoOps) RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (o *testCryptoOps) WrapKey(recipientKey PublicKey, key []byte) ([]byte, error) {
	pub, ok := recipientKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("WrapKey requires an RSA public key, got %T", recipientKey)
	}
	return rsa.EncryptPKCS1v15(rand.Reader, pub, key)
}

func (o *testCryptoOps) UnwrapKey(priv crypto.PrivateKey, ciphertext []byte) ([]byte, error) {
	key, ok := priv.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("UnwrapKey requires an RSA private key, got %T", priv)
	}
	return rsa.DecryptPKCS1v15(rand.Reader, key, ciphertext)
}

func hashBytes(alg HashAlgorithm, data []byte) ([]byte, error) {
	switch alg {
	case HashSHA1:
		h := sha1.Sum(data)
		return h[:], nil
	case HashSHA256:
		h := sha256.Sum256(data)
		return h[:], nil
	case HashSHA384:
		h := sha512.Sum384(data)
		return h[:], nil
	case HashSHA512:
		h := sha512.Sum512(data)
		return h[:], nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %d in test harness", alg)
	}
}

func cryptoHash(alg HashAlgorithm) crypto.Hash {
	switch alg {
	case HashSHA1:
		return crypto.SHA1
	case HashSHA256:
		return crypto.SHA256
	case HashSHA384:
		return crypto.SHA384
	case HashSHA512:
		return crypto.SHA512
	default:
		return 0
	}
}

// hashAndSchemeForVariant maps a parsed signature AlgorithmIdentifier back
// to the (hash, padding) pair testCryptoOps.VerifySignedBy needs.
func hashAndSchemeForVariant(v AlgorithmVariant, pss RsaPssParameters) (HashAlgorithm, SignaturePadding, error) {
	switch v {
	case AlgRSAPKCS1SHA256, AlgECDSAWithSHA256:
		return HashSHA256, PaddingPKCS1v15, nil
	case AlgRSAPKCS1SHA384, AlgECDSAWithSHA384:
		return HashSHA384, PaddingPKCS1v15, nil
	case AlgRSAPKCS1SHA512, AlgECDSAWithSHA512:
		return HashSHA512, PaddingPKCS1v15, nil
	case AlgRSAPKCS1SHA1:
		return HashSHA1, PaddingPKCS1v15, nil
	case AlgRSASSAPSS:
		h, err := hashAlgorithmForVariant(pss.HashAlgorithm)
		if err != nil {
			return 0, 0, err
		}
		return h, PaddingPSS, nil
	default:
		return 0, 0, fmt.Errorf("unsupported signature algorithm variant %d in test harness", v)
	}
}

func hashAlgorithmForVariant(v AlgorithmVariant) (HashAlgorithm, error) {
	switch v {
	case AlgSHA1:
		return HashSHA1, nil
	case AlgSHA224:
		return HashSHA224, nil
	case AlgSHA256:
		return HashSHA256, nil
	case AlgSHA384:
		return HashSHA384, nil
	case AlgSHA512:
		return HashSHA512, nil
	default:
		return 0, fmt.Errorf("unsupported PSS hash variant %d in test harness", v)
	}
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padding := bytes.Repeat([]byte{byte(padLen)}, padLen)
	return append(append([]byte(nil), data...), padding...)
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty ciphertext")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > len(data) {
		return nil, fmt.Errorf("invalid PKCS#7 padding")
	}
	return data[:len(data)-padLen], nil
}
