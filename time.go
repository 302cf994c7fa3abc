// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package pkivalidate

import (
	"encoding/asn1"
	"time"
)

// generalizedDateCutoffYear is the year at which RFC 5280 §4.1.2.5 requires
// switching from UTCTime to GeneralizedTime encoding.
const generalizedDateCutoffYear = 2050

// TimeKind distinguishes the two ASN.1 time encodings a Time can carry.
type TimeKind int

const (
	// KindUTCTime is the two-digit-year encoding, valid only for years
	// before generalizedDateCutoffYear.
	KindUTCTime TimeKind = iota
	// KindGeneralizedTime is the four-digit-year encoding.
	KindGeneralizedTime
)

// Time is the tagged union of UTCTime and GeneralizedTime described in
// spec.md §3. Values are always normalized to UTC.
type Time struct {
	Kind  TimeKind
	Value time.Time
}

// NewUTCTime builds a Time tagged as UTCTime. It returns an error if t's
// year is not representable (i.e. >= generalizedDateCutoffYear), since
// UTCTime's two-digit year cannot encode it.
func NewUTCTime(t time.Time) (Time, error) {
	t = t.UTC()
	if t.Year() >= generalizedDateCutoffYear {
		return Time{}, newErr(ErrMalformedCertificate, "UTCTime cannot represent year %d", t.Year())
	}
	return Time{Kind: KindUTCTime, Value: t}, nil
}

// NewGeneralizedTime builds a Time tagged as GeneralizedTime.
func NewGeneralizedTime(t time.Time) Time {
	return Time{Kind: KindGeneralizedTime, Value: t.UTC()}
}

// permitsValidityDate enforces the invariant from spec.md §3/§8: a Time is
// well-formed only if it is UTCTime with year < cutoff, or GeneralizedTime
// with year >= cutoff. Ported from permits_validity_date in the original
// Rust policy engine (see SPEC_FULL.md, SUPPLEMENTED FEATURES).
func permitsValidityDate(t Time) error {
	year := t.Value.Year()
	switch t.Kind {
	case KindUTCTime:
		if year >= generalizedDateCutoffYear {
			return newErr(ErrMalformedCertificate, "UTCTime used for year %d on or after the generalized-date cutoff", year)
		}
	case KindGeneralizedTime:
		if year < generalizedDateCutoffYear {
			return newErr(ErrMalformedCertificate, "validity dates before the generalized-date cutoff year must be UTCTime")
		}
	}
	return nil
}

// Before reports whether t is strictly before other.
func (t Time) Before(other time.Time) bool {
	return t.Value.Before(other)
}

// After reports whether t is strictly after other.
func (t Time) After(other time.Time) bool {
	return t.Value.After(other)
}

// marshalASN1 emits t as its tagged ASN.1 value.
func (t Time) marshalASN1() (asn1.RawValue, error) {
	switch t.Kind {
	case KindUTCTime:
		b, err := asn1.MarshalWithParams(t.Value, "utc")
		if err != nil {
			return asn1.RawValue{}, err
		}
		var raw asn1.RawValue
		if _, err := asn1.Unmarshal(b, &raw); err != nil {
			return asn1.RawValue{}, err
		}
		return raw, nil
	default:
		b, err := asn1.MarshalWithParams(t.Value, "generalized")
		if err != nil {
			return asn1.RawValue{}, err
		}
		var raw asn1.RawValue
		if _, err := asn1.Unmarshal(b, &raw); err != nil {
			return asn1.RawValue{}, err
		}
		return raw, nil
	}
}

// unmarshalTime parses a DER-encoded choice of UTCTime (tag 23) or
// GeneralizedTime (tag 24) into a Time, preserving which variant was used.
func unmarshalTime(raw asn1.RawValue) (Time, error) {
	switch raw.Tag {
	case asn1.TagUTCTime:
		var t time.Time
		if _, err := asn1.UnmarshalWithParams(raw.FullBytes, &t, "utc"); err != nil {
			return Time{}, err
		}
		return Time{Kind: KindUTCTime, Value: t.UTC()}, nil
	case asn1.TagGeneralizedTime:
		var t time.Time
		if _, err := asn1.UnmarshalWithParams(raw.FullBytes, &t, "generalized"); err != nil {
			return Time{}, err
		}
		return Time{Kind: KindGeneralizedTime, Value: t.UTC()}, nil
	default:
		return Time{}, newErr(ErrMalformedCertificate, "unsupported time tag %d", raw.Tag)
	}
}
