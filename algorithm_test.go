// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package pkivalidate

import (
	"encoding/asn1"
	"testing"
)

func TestAlgorithmIdentifierRoundTrip(t *testing.T) {
	tests := []AlgorithmIdentifier{
		{Variant: AlgRSAPKCS1SHA256, OID: oidRSAWithSHA256, HasNullParams: true},
		{Variant: AlgECDSAWithSHA256, OID: oidECDSAWithSHA256},
		{Variant: AlgEd25519, OID: oidEd25519},
		{Variant: AlgRSASSAPSS, OID: oidRSASSAPSS, PSSParams: RsaPssParameters{HashAlgorithm: AlgSHA256, MaskGenHash: AlgSHA256, SaltLength: 32, TrailerField: 1}},
	}
	for _, alg := range tests {
		der, err := alg.MarshalDER()
		if err != nil {
			t.Fatalf("MarshalDER(%+v): %v", alg, err)
		}
		got, err := ParseAlgorithmIdentifier(der)
		if err != nil {
			t.Fatalf("ParseAlgorithmIdentifier: %v", err)
		}
		if !got.Equal(alg) {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, alg)
		}
	}
}

func TestAlgorithmIdentifierLegacyECDSANull(t *testing.T) {
	// Legacy encoders sometimes emit a NULL parameter after an
	// ecdsa-with-SHA* OID; parsing must tolerate it.
	withNull, err := asn1.Marshal(algorithmIdentifierASN1{Algorithm: oidECDSAWithSHA256, Parameters: asn1.NullRawValue})
	if err != nil {
		t.Fatal(err)
	}
	got, err := ParseAlgorithmIdentifier(withNull)
	if err != nil {
		t.Fatalf("expected legacy NULL-params ECDSA identifier to parse, got %v", err)
	}
	if got.Variant != AlgECDSAWithSHA256 {
		t.Fatalf("got variant %v, want AlgECDSAWithSHA256", got.Variant)
	}

	// Re-marshaling must never re-emit the NULL.
	reDER, err := got.MarshalDER()
	if err != nil {
		t.Fatal(err)
	}
	noParams, err := asn1.Marshal(algorithmIdentifierASN1{Algorithm: oidECDSAWithSHA256})
	if err != nil {
		t.Fatal(err)
	}
	if string(reDER) != string(noParams) {
		t.Fatalf("re-marshaled ECDSA identifier carries parameters: %x", reDER)
	}
	reParsed, err := ParseAlgorithmIdentifier(reDER)
	if err != nil {
		t.Fatal(err)
	}
	if !reParsed.Equal(got) {
		t.Fatalf("re-marshal round trip mismatch: got %+v, want %+v", reParsed, got)
	}
}

func TestDefaultPermittedSignatureAlgorithmsExcludeSHA1(t *testing.T) {
	sha1 := AlgorithmIdentifier{Variant: AlgRSAPKCS1SHA1, OID: oidRSAWithSHA1, HasNullParams: true}
	if containsAlgorithm(defaultPermittedSignatureAlgorithms(), sha1) {
		t.Fatal("RSA-SHA1 must not be on the default permitted signature algorithm list")
	}
}

func TestContainsAlgorithm(t *testing.T) {
	set := defaultPermittedSPKIAlgorithms()
	rsa := AlgorithmIdentifier{Variant: AlgRSAEncryption, OID: oidRSAEncryption, HasNullParams: true}
	if !containsAlgorithm(set, rsa) {
		t.Fatal("expected RSA encryption to be on the default SPKI allow-list")
	}
}
