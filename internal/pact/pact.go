// Package pact implements C3: the multi-party threshold-signed authority
// check a link commit's intent class may require before ledger append.
// The registry and validate() algorithm are grounded directly on
// original_source/kernel/rust/ubl-pact/src/lib.rs; the per-scheme
// signature verification is grounded on the teacher's
// pkg/attestation/strategy package, whose AttestationStrategy interface
// verifySignature's per-scheme dispatch mirrors for Ed25519 and
// (optionally) BLS12-381 proofs.
package pact

import (
	"crypto/ed25519"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/certen/ledger-core/internal/commitment"
	"github.com/certen/ledger-core/internal/intentclass"
	"github.com/certen/ledger-core/internal/ledger"
	"github.com/certen/ledger-core/internal/ledgercore"
	"github.com/certen/ledger-core/internal/pact/bls"
)

// Scope mirrors the original PactScope enum.
type Scope int

const (
	ScopeContainer Scope = iota
	ScopeNamespace
	ScopeGlobal
)

// TimeWindow bounds when a Pact is usable.
type TimeWindow struct {
	NotBefore int64 // unix seconds, inclusive
	NotAfter  int64 // unix seconds, inclusive; 0 means unbounded
}

func (w TimeWindow) IsValid(now int64) bool {
	if now < w.NotBefore {
		return false
	}
	if w.NotAfter != 0 && now > w.NotAfter {
		return false
	}
	return true
}

// Pact is the immutable, once-registered authority requirement.
type Pact struct {
	PactID      string
	Version     int
	Scope       Scope
	Threshold   int
	Signers     map[string]struct{} // mathematical set of authorized pubkeys
	Window      TimeWindow
	RiskLevel   intentclass.RiskLevel
	ContainerID string // only meaningful when Scope == ScopeContainer
	Namespace   string // only meaningful when Scope == ScopeNamespace
}

// Registry holds pacts, write-once at registration then read-only,
// matching spec.md §3's lifecycle note ("pacts registered once, immutable")
// and §9's "safe to share freely" guidance for read-mostly global state.
type Registry struct {
	pacts map[string]Pact
}

func NewRegistry() *Registry {
	return &Registry{pacts: make(map[string]Pact)}
}

// Register adds a pact. Re-registering the same pact_id overwrites it;
// callers are expected to register each pact_id exactly once at startup.
func (r *Registry) Register(p Pact) {
	r.pacts[p.PactID] = p
}

func (r *Registry) Get(pactID string) (Pact, bool) {
	p, ok := r.pacts[pactID]
	return p, ok
}

// NewPactID mints a fresh pact_id for a caller that has no identifier
// scheme of its own, the same way the teacher's pkg/database layer used
// google/uuid for its entity ids.
func NewPactID() string {
	return "pact:" + uuid.New().String()
}

// Validate runs the full algorithm of spec.md §4.3 against a proof
// attached to a link commit of the given intent class, at the given wall
// clock (unix seconds). atomHash and expectedSequence are needed to
// recompute the canonical challenge each signature is verified against.
func Validate(r *Registry, proof *ledger.PactProofRef, containerID string, class intentclass.Class, now int64, atomHash string, expectedSequence int64) error {
	if proof == nil {
		return &ledgercore.PactError{Reason: ledgercore.PactUnknown, PactID: ""}
	}

	p, ok := r.Get(proof.PactID)
	if !ok || !scopeMatches(p, containerID) {
		return &ledgercore.PactError{Reason: ledgercore.PactUnknown, PactID: proof.PactID}
	}

	if !p.Window.IsValid(now) {
		return &ledgercore.PactError{Reason: ledgercore.PactExpired, PactID: proof.PactID}
	}

	required := intentclass.MinimumRisk(class)
	if p.RiskLevel < required {
		return &ledgercore.PactError{
			Reason:   ledgercore.PactRiskMismatch,
			PactID:   proof.PactID,
			Intent:   required.String(),
			PactRisk: p.RiskLevel.String(),
		}
	}

	challenge := commitment.PactChallenge(p.PactID, atomHash, expectedSequence)

	seen := make(map[string]struct{}, len(proof.Signatures))
	validCount := 0
	for _, sig := range proof.Signatures {
		if _, dup := seen[sig.Pubkey]; dup {
			// Duplicate signer contributions are skipped silently, not
			// double-counted and not an error, per the original registry's
			// seen_pubkeys dedup-then-continue behavior.
			continue
		}
		seen[sig.Pubkey] = struct{}{}

		if _, authorized := p.Signers[sig.Pubkey]; !authorized {
			return &ledgercore.PactError{Reason: ledgercore.PactUnauthorizedSigner, PactID: proof.PactID, Pubkey: sig.Pubkey}
		}

		if verifySignature(sig, challenge) {
			validCount++
		}
		// An authorized signer whose signature fails verification simply
		// does not contribute to valid_count; it does not short-circuit,
		// since a forged signature from a legitimate signer is exactly the
		// case the conforming-implementation note in spec.md §9 requires
		// this layer to catch by not counting it, not by aborting.
	}

	if validCount < p.Threshold {
		return &ledgercore.PactError{Reason: ledgercore.PactInsufficientSignatures, PactID: proof.PactID, Got: validCount, Need: p.Threshold}
	}

	return nil
}

func scopeMatches(p Pact, containerID string) bool {
	switch p.Scope {
	case ScopeContainer:
		return p.ContainerID == containerID
	case ScopeNamespace:
		return namespaceOf(containerID) == p.Namespace
	case ScopeGlobal:
		return true
	default:
		return false
	}
}

func namespaceOf(containerID string) string {
	for i, r := range containerID {
		if r == '/' {
			return containerID[:i]
		}
	}
	return containerID
}

func verifySignature(sig ledger.PactSignatureRef, challenge []byte) bool {
	switch sig.Scheme {
	case "", "ed25519":
		return verifyEd25519(sig, challenge)
	case "bls12-381":
		return verifyBLS(sig, challenge)
	default:
		return false
	}
}

func verifyBLS(sig ledger.PactSignatureRef, challenge []byte) bool {
	if err := bls.ValidatePublicKeySubgroup(mustHexBytes(sig.Pubkey)); err != nil {
		return false
	}
	pk, err := bls.PublicKeyFromHex(sig.Pubkey)
	if err != nil {
		return false
	}
	s, err := bls.SignatureFromHex(sig.Signature)
	if err != nil {
		return false
	}
	return pk.Verify(s, challenge)
}

func mustHexBytes(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}

func verifyEd25519(sig ledger.PactSignatureRef, challenge []byte) bool {
	pub, err := hex.DecodeString(sig.Pubkey)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}
	sigBytes, err := hex.DecodeString(sig.Signature)
	if err != nil || len(sigBytes) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), challenge, sigBytes)
}

// NowUnix is a small seam production wiring uses to pass the wall clock
// into Validate; Validate itself never reads the clock, keeping the Pact
// layer's core logic deterministic and unit-testable with a fixed now.
func NowUnix() int64 { return time.Now().Unix() }
