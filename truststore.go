// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package pkivalidate

// TrustStore exposes the locally trusted root certificates a chain must
// terminate at, keyed by subject DN, per spec.md §4.E ("a trust store (set
// of trust anchors exposing subject DN → cert)").
type TrustStore interface {
	// AnchorsForSubject returns every trust anchor whose subject equals
	// dn. Order is the implementation's choice; the chain builder tries
	// all of them before falling back to the intermediate pool.
	AnchorsForSubject(dn DistinguishedName) []*Certificate
}

// MapTrustStore is a TrustStore backed by an in-memory slice, suitable for
// an embedder that loads its trust anchors once at startup.
type MapTrustStore struct {
	anchors []*Certificate
}

// NewMapTrustStore builds a MapTrustStore from anchors.
func NewMapTrustStore(anchors ...*Certificate) *MapTrustStore {
	return &MapTrustStore{anchors: anchors}
}

// AnchorsForSubject implements TrustStore.
func (s *MapTrustStore) AnchorsForSubject(dn DistinguishedName) []*Certificate {
	var out []*Certificate
	for _, a := range s.anchors {
		if a.TBS.Subject.Equal(dn) {
			out = append(out, a)
		}
	}
	return out
}

// IntermediatePool is the caller-supplied set of candidate intermediates a
// chain may be built through, per spec.md §4.E.
type IntermediatePool interface {
	// CandidatesForSubject returns every pooled intermediate whose subject
	// equals dn, in the pool's insertion order (spec.md §4.E's tie-break).
	CandidatesForSubject(dn DistinguishedName) []*Certificate
}

// SliceIntermediatePool is an IntermediatePool backed by a plain slice, the
// common case of "the caller handed me an unordered bag of intermediates
// from the TLS handshake".
type SliceIntermediatePool struct {
	certs []*Certificate
}

// NewSliceIntermediatePool builds a SliceIntermediatePool from certs.
func NewSliceIntermediatePool(certs ...*Certificate) *SliceIntermediatePool {
	return &SliceIntermediatePool{certs: certs}
}

// CandidatesForSubject implements IntermediatePool.
func (s *SliceIntermediatePool) CandidatesForSubject(dn DistinguishedName) []*Certificate {
	var out []*Certificate
	for _, c := range s.certs {
		if c.TBS.Subject.Equal(dn) {
			out = append(out, c)
		}
	}
	return out
}
