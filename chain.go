// SPDX-FileCopyrightText: 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

package pkivalidate

import (
	"encoding/hex"

	"github.com/wneessen/pkivalidate/log"
)

// Chain is an ordered, validated certification path from the leaf to a
// trust anchor, per spec.md §4.E.
type Chain []*Certificate

// BuildChain finds a valid path from leaf to a trust anchor in store,
// optionally passing through certificates in pool, satisfying policy. It
// implements the depth-limited DFS of spec.md §4.E: trust-store candidates
// are tried before pool candidates at every step, and the error from the
// last attempted candidate is retained and surfaced if no candidate
// succeeds, so diagnostics point at the nearest near-miss (spec.md §7).
//
// logger may be nil; when set, rejected candidate issuers and other
// diagnostics are emitted at Debugf/Infof/Warnf the way go-mail's SMTP client
// logs transcript detail.
func BuildChain(policy *Policy, leaf *Certificate, pool IntermediatePool, store TrustStore, logger log.Logger) (Chain, error) {
	if logger == nil {
		logger = noopLogger{}
	}
	if err := policy.permitsLeaf(leaf); err != nil {
		logger.Debugf("pkivalidate: leaf %s rejected: %s", leaf.TBS.Subject, err)
		return nil, err
	}

	b := &chainBuilder{policy: policy, pool: pool, store: store, logger: logger, visited: make(map[string]bool)}
	chain, err := b.search(leaf, 0)
	if err != nil {
		return nil, err
	}
	// Prepend leaf: search returns the path from leaf's issuer onward.
	return append(Chain{leaf}, chain...), nil
}

type chainBuilder struct {
	policy  *Policy
	pool    IntermediatePool
	store   TrustStore
	logger  log.Logger
	visited map[string]bool
}

// search finds a path from current's issuer to a trust anchor, given that
// current sits at currentDepth non-self-issued intermediates deep. It
// returns the path starting with the chosen issuer, per spec.md §4.E steps
// 2-5.
func (b *chainBuilder) search(current *Certificate, currentDepth int) (Chain, error) {
	if currentDepth > b.policy.MaxChainDepth {
		return nil, newErr(ErrMaxChainDepthExceeded, "exceeded maximum chain depth %d", b.policy.MaxChainDepth)
	}

	anchors := b.store.AnchorsForSubject(current.TBS.Issuer)
	var pooled []*Certificate
	if b.pool != nil {
		pooled = b.pool.CandidatesForSubject(current.TBS.Issuer)
	}

	var lastErr error = newErr(ErrNoTrustedRoot, "no candidate issuer found for %s", current.TBS.Issuer)

	tryCandidate := func(candidate *Certificate, isAnchor bool) (Chain, bool) {
		visitKey := candidateVisitKey(candidate)
		if b.visited[visitKey] {
			lastErr = newErr(ErrNoTrustedRoot, "candidate issuer %s already visited on this path", candidate.TBS.Subject)
			return nil, false
		}

		if err := b.policy.validIssuer(candidate, current, currentDepth); err != nil {
			b.logger.Debugf("pkivalidate: candidate issuer %s rejected for %s: %s", candidate.TBS.Subject, current.TBS.Subject, err)
			lastErr = err
			return nil, false
		}

		if isAnchor {
			b.logger.Infof("pkivalidate: reached trust anchor %s", candidate.TBS.Subject)
			return Chain{candidate}, true
		}

		b.visited[visitKey] = true
		defer delete(b.visited, visitKey)

		nextDepth := currentDepth
		if !candidate.IsSelfIssued() {
			nextDepth = currentDepth + 1
		}
		rest, err := b.search(candidate, nextDepth)
		if err != nil {
			lastErr = err
			return nil, false
		}
		return append(Chain{candidate}, rest...), true
	}

	for _, anchor := range anchors {
		if chain, ok := tryCandidate(anchor, true); ok {
			return chain, nil
		}
	}
	for _, candidate := range pooled {
		if chain, ok := tryCandidate(candidate, false); ok {
			return chain, nil
		}
	}

	b.logger.Warnf("pkivalidate: could not build path to trusted root past %s: %s", current.TBS.Subject, lastErr)
	return nil, wrapErr(ErrNoTrustedRoot, lastErr, "could not build path to trusted root")
}

// candidateVisitKey identifies a candidate issuer by (subject, SKI) for
// the chain builder's same-path loop check (spec.md §4.E).
func candidateVisitKey(cert *Certificate) string {
	ski := ""
	if ext, ok := cert.TBS.Extensions.Get(oidExtSubjectKeyIdentifier); ok {
		if parsed, err := ParseSubjectKeyIdentifier(ext); err == nil {
			ski = hex.EncodeToString(parsed.KeyIdentifier)
		}
	}
	subjectDER, _ := cert.TBS.Subject.MarshalDER()
	return string(subjectDER) + "|" + ski
}

type noopLogger struct{}

func (noopLogger) Errorf(string, ...interface{}) {}
func (noopLogger) Warnf(string, ...interface{})  {}
func (noopLogger) Infof(string, ...interface{})  {}
func (noopLogger) Debugf(string, ...interface{}) {}
