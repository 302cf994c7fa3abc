// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package pkivalidate

import "fmt"

// MessageDigestMismatchError is returned when a SignedData signer's
// messageDigest attribute does not match the recomputed digest of the
// signed content.
type MessageDigestMismatchError struct {
	ExpectedDigest []byte
	ActualDigest   []byte
}

// Error implements the error interface for MessageDigestMismatchError.
func (err *MessageDigestMismatchError) Error() string {
	return fmt.Sprintf("pkcs7: message digest mismatch\n\tExpected: %X\n\tActual  : %X", err.ExpectedDigest, err.ActualDigest)
}

// CMSReason classifies why a PKCS#7/CMS operation failed.
type CMSReason int

const (
	// CMSUnsupportedContentType is returned for a ContentInfo whose
	// contentType isn't Data, SignedData, or EnvelopedData.
	CMSUnsupportedContentType CMSReason = iota
	// CMSMalformed is returned for structurally invalid DER.
	CMSMalformed
	// CMSUnsupportedAlgorithm is returned for an algorithm this package
	// doesn't implement for the given operation.
	CMSUnsupportedAlgorithm
	// CMSNoRecipient is returned if decryption finds no matching
	// RecipientInfo.
	CMSNoRecipient
	// CMSDigestMismatch is returned if a signer's messageDigest attribute
	// doesn't match the recomputed digest.
	CMSDigestMismatch
)

func (r CMSReason) String() string {
	switch r {
	case CMSUnsupportedContentType:
		return "unsupported content type"
	case CMSMalformed:
		return "malformed CMS structure"
	case CMSUnsupportedAlgorithm:
		return "unsupported algorithm"
	case CMSNoRecipient:
		return "no matching recipient"
	case CMSDigestMismatch:
		return "message digest mismatch"
	}
	return "unknown reason"
}

// CMSError is the error type returned by the PKCS#7/CMS codec.
type CMSError struct {
	Reason  CMSReason
	Context string
	Err     error
}

// Error implements the error interface for CMSError.
func (e *CMSError) Error() string {
	msg := "pkcs7: " + e.Reason.String()
	if e.Context != "" {
		msg += ": " + e.Context
	}
	if e.Err != nil {
		msg += fmt.Sprintf(" (%s)", e.Err)
	}
	return msg
}

// Unwrap returns the wrapped error, if any.
func (e *CMSError) Unwrap() error {
	return e.Err
}

func newCMSErr(reason CMSReason, format string, args ...interface{}) *CMSError {
	return &CMSError{Reason: reason, Context: fmt.Sprintf(format, args...)}
}

func wrapCMSErr(reason CMSReason, err error, format string, args ...interface{}) *CMSError {
	return &CMSError{Reason: reason, Context: fmt.Sprintf(format, args...), Err: err}
}
