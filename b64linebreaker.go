// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package pkivalidate

import (
	"fmt"
	"io"
)

// smimeBodyLineLength is the conventional MIME body line length, per
// spec.md §6's S/MIME wire format.
const smimeBodyLineLength = 76

// smimeNewLine is the line terminator S/MIME bodies use.
const smimeNewLine = "\r\n"

var smimeNewLineBytes = []byte(smimeNewLine)

// errNoLineBreakerWriter is returned when a base64LineBreaker is used
// without an underlying io.Writer.
const errNoLineBreakerWriter = "no io.Writer set for base64LineBreaker"

// base64LineBreaker is an io.WriteCloser that writes base64-encoded data
// with a line break inserted every smimeBodyLineLength bytes, the shape
// encodeSMIME's MIME body needs.
type base64LineBreaker struct {
	line [smimeBodyLineLength]byte
	used int
	out  io.Writer
}

// Write writes the data stream and inserts smimeNewLine when the maximum
// line length is reached.
func (l *base64LineBreaker) Write(b []byte) (n int, err error) {
	if l.out == nil {
		return 0, fmt.Errorf(errNoLineBreakerWriter)
	}
	if l.used+len(b) < smimeBodyLineLength {
		copy(l.line[l.used:], b)
		l.used += len(b)
		return len(b), nil
	}

	n, err = l.out.Write(l.line[0:l.used])
	if err != nil {
		return 0, err
	}
	excess := smimeBodyLineLength - l.used
	l.used = 0

	n, err = l.out.Write(b[0:excess])
	if err != nil {
		return 0, err
	}

	n, err = l.out.Write(smimeNewLineBytes)
	if err != nil {
		return 0, err
	}

	return l.Write(b[excess:])
}

// Close flushes any buffered, not-yet-line-length data still in memory.
func (l *base64LineBreaker) Close() (err error) {
	if l.used > 0 {
		_, err = l.out.Write(l.line[0:l.used])
		if err != nil {
			return err
		}
		_, err = l.out.Write(smimeNewLineBytes)
	}
	return
}
