// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package pkivalidate

import (
	"encoding/asn1"
	"testing"
)

func certWithExtensions(exts ...Extension) *Certificate {
	return &Certificate{TBS: TBSCertificate{Extensions: Extensions{list: exts}}}
}

func TestExtensionPolicyApplyPresenceRequired(t *testing.T) {
	ep := ExtensionPolicy{OID: oidExtBasicConstraints, Presence: Present, Criticality: CriticalityAgnostic}
	cert := certWithExtensions()
	err := ep.apply(nil, cert)
	if err == nil {
		t.Fatal("expected error for missing required extension")
	}
	var ve *ValidationError
	if !asErr(err, &ve) || ve.Reason != ErrExtensionRequired {
		t.Fatalf("got %v, want ErrExtensionRequired", err)
	}
}

func TestExtensionPolicyApplyForbidden(t *testing.T) {
	ep := ExtensionPolicy{OID: oidExtNameConstraints, Presence: NotPresent, Criticality: CriticalityAgnostic}
	cert := certWithExtensions(Extension{OID: oidExtNameConstraints})
	err := ep.apply(nil, cert)
	var ve *ValidationError
	if !asErr(err, &ve) || ve.Reason != ErrExtensionForbidden {
		t.Fatalf("got %v, want ErrExtensionForbidden", err)
	}
}

func TestExtensionPolicyApplyCriticalityMismatch(t *testing.T) {
	ep := ExtensionPolicy{OID: oidExtBasicConstraints, Presence: Present, Criticality: Critical}
	cert := certWithExtensions(Extension{OID: oidExtBasicConstraints, Critical: false})
	err := ep.apply(nil, cert)
	var ve *ValidationError
	if !asErr(err, &ve) || ve.Reason != ErrCriticalityMismatch {
		t.Fatalf("got %v, want ErrCriticalityMismatch", err)
	}
}

func TestExtensionPolicyApplyMaybePresentSkipsAbsent(t *testing.T) {
	ep := ExtensionPolicy{OID: oidExtAuthorityInfoAccess, Presence: MaybePresent, Criticality: NonCritical}
	cert := certWithExtensions()
	if err := ep.apply(nil, cert); err != nil {
		t.Fatalf("expected no error when an optional extension is absent, got %v", err)
	}
}

func TestCheckUnhandledCriticalExtensions(t *testing.T) {
	unknown := asn1.ObjectIdentifier{1, 2, 3, 4, 5}
	cert := certWithExtensions(Extension{OID: unknown, Critical: true})
	err := checkUnhandledCriticalExtensions(cert, defaultCommonExtensionPolicies(), defaultEEExtensionPolicies())
	var ve *ValidationError
	if !asErr(err, &ve) || ve.Reason != ErrUnhandledCritical {
		t.Fatalf("got %v, want ErrUnhandledCritical", err)
	}
}

func TestCheckUnhandledCriticalExtensionsAllowsRegistered(t *testing.T) {
	cert := certWithExtensions(Extension{OID: oidExtBasicConstraints, Critical: true})
	err := checkUnhandledCriticalExtensions(cert, defaultCommonExtensionPolicies(), defaultEEExtensionPolicies())
	if err != nil {
		t.Fatalf("expected no error for a registered critical extension, got %v", err)
	}
}

func asErr(err error, target **ValidationError) bool {
	ve, ok := err.(*ValidationError)
	if !ok {
		return false
	}
	*target = ve
	return true
}
