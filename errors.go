// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package pkivalidate

import (
	"errors"
	"fmt"
)

// Reason is a comparable classification of why a ValidationError occurred.
// Callers can branch on Reason without parsing error strings.
type Reason int

// List of ValidationError reasons, per the error taxonomy in spec.md §6.
const (
	// ErrExtensionRequired is returned if a certificate is missing an
	// extension its position requires.
	ErrExtensionRequired Reason = iota

	// ErrExtensionForbidden is returned if a certificate carries an
	// extension its position forbids.
	ErrExtensionForbidden

	// ErrCriticalityMismatch is returned if an extension's critical bit
	// doesn't match the criticality its policy demands.
	ErrCriticalityMismatch

	// ErrDuplicateOID is returned if a certificate's extensions contain the
	// same OID more than once.
	ErrDuplicateOID

	// ErrUnhandledCritical is returned if a certificate carries a critical
	// extension with no registered ExtensionPolicy.
	ErrUnhandledCritical

	// ErrMalformedCertificate is returned for structural DER/invariant
	// violations (serial encoding, version, issuer DN, signature-algorithm
	// mismatch, and the like).
	ErrMalformedCertificate

	// ErrNotYetValid is returned if the validation time precedes notBefore.
	ErrNotYetValid

	// ErrExpired is returned if the validation time follows notAfter.
	ErrExpired

	// ErrSubjectMismatch is returned if no SAN entry matches the requested
	// subject.
	ErrSubjectMismatch

	// ErrEkuMissing is returned if the leaf lacks the required extended key
	// usage.
	ErrEkuMissing

	// ErrForbiddenPublicKeyAlgorithm is returned if a certificate's SPKI
	// algorithm isn't on the policy's allow-list.
	ErrForbiddenPublicKeyAlgorithm

	// ErrForbiddenSignatureAlgorithm is returned if a certificate's
	// signature algorithm isn't on the policy's allow-list.
	ErrForbiddenSignatureAlgorithm

	// ErrMalformedIssuer is returned if an issuer candidate can't be
	// evaluated (e.g. its public key can't be decoded).
	ErrMalformedIssuer

	// ErrSignatureMismatch is returned if a child certificate's signature
	// doesn't verify under its candidate issuer's public key.
	ErrSignatureMismatch

	// ErrPathLengthExceeded is returned if a CA's pathLenConstraint is
	// violated by the current path-building depth.
	ErrPathLengthExceeded

	// ErrMaxChainDepthExceeded is returned if path building exceeds the
	// policy's configured maximum depth without reaching a trust anchor.
	ErrMaxChainDepthExceeded

	// ErrNoTrustedRoot is returned if no candidate issuer, trusted or
	// otherwise, validates at any step of path building.
	ErrNoTrustedRoot

	// ErrUnsupportedAlgorithm is not returned by this package's PKCS#7
	// functions: they report an algorithm they do not implement as a
	// CMSError with Reason CMSUnsupportedAlgorithm.
	ErrUnsupportedAlgorithm

	// ErrAttributeNotFound is not returned by Decrypt: a missing matching
	// RecipientInfo is reported as a CMSError with Reason CMSNoRecipient.
	ErrAttributeNotFound
)

// String implements the Stringer interface for Reason.
func (r Reason) String() string {
	switch r {
	case ErrExtensionRequired:
		return "required extension missing"
	case ErrExtensionForbidden:
		return "forbidden extension present"
	case ErrCriticalityMismatch:
		return "extension criticality mismatch"
	case ErrDuplicateOID:
		return "duplicate extension OID"
	case ErrUnhandledCritical:
		return "unhandled critical extension"
	case ErrMalformedCertificate:
		return "malformed certificate"
	case ErrNotYetValid:
		return "certificate not yet valid"
	case ErrExpired:
		return "certificate expired"
	case ErrSubjectMismatch:
		return "subject does not match"
	case ErrEkuMissing:
		return "required extended key usage missing"
	case ErrForbiddenPublicKeyAlgorithm:
		return "forbidden public key algorithm"
	case ErrForbiddenSignatureAlgorithm:
		return "forbidden signature algorithm"
	case ErrMalformedIssuer:
		return "malformed issuer"
	case ErrSignatureMismatch:
		return "signature mismatch"
	case ErrPathLengthExceeded:
		return "path length constraint exceeded"
	case ErrMaxChainDepthExceeded:
		return "maximum chain depth exceeded"
	case ErrNoTrustedRoot:
		return "could not build path to trusted root"
	case ErrUnsupportedAlgorithm:
		return "unsupported algorithm"
	case ErrAttributeNotFound:
		return "attribute not found"
	}
	return "unknown reason"
}

// ValidationError is the error type returned by certificate and chain
// validation. It carries a Reason for callers to branch on and a
// human-readable Context describing where in the chain it occurred.
type ValidationError struct {
	Reason  Reason
	Context string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	msg := e.Reason.String()
	if e.Context != "" {
		msg += ": " + e.Context
	}
	if e.Err != nil {
		msg += fmt.Sprintf(" (%s)", e.Err)
	}
	return msg
}

// Unwrap returns the wrapped error, if any, for errors.Is/As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is by comparing Reason.
func (e *ValidationError) Is(target error) bool {
	var t *ValidationError
	if errors.As(target, &t) {
		return e.Reason == t.Reason
	}
	return false
}

// newErr builds a ValidationError with the given reason and formatted
// context.
func newErr(reason Reason, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: reason, Context: fmt.Sprintf(format, args...)}
}

// wrapErr builds a ValidationError with the given reason, context, and
// underlying error.
func wrapErr(reason Reason, err error, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: reason, Context: fmt.Sprintf(format, args...), Err: err}
}
