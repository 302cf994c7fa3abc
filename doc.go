// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

// Package pkivalidate implements an X.509/PKIX certification-path validator
// for the Web PKI profile and a PKCS#7/CMS SignedData and EnvelopedData
// codec. Both are pure functions of their inputs plus an injected CryptoOps
// implementation; the package performs no I/O and spawns no goroutines.
package pkivalidate

// VERSION is the package version used for diagnostic log output.
const VERSION = "0.1.0"
