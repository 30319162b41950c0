package pact

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/certen/ledger-core/internal/commitment"
	"github.com/certen/ledger-core/internal/intentclass"
	"github.com/certen/ledger-core/internal/ledger"
	"github.com/certen/ledger-core/internal/ledgercore"
)

type signer struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

func newSigner(t *testing.T) signer {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return signer{pub: pub, priv: priv}
}

func (s signer) sign(pactID, atomHash string, seq int64) ledger.PactSignatureRef {
	challenge := commitment.PactChallenge(pactID, atomHash, seq)
	sig := ed25519.Sign(s.priv, challenge)
	return ledger.PactSignatureRef{
		Pubkey:    hex.EncodeToString(s.pub),
		Signature: hex.EncodeToString(sig),
		Scheme:    "ed25519",
	}
}

func TestValidPact(t *testing.T) {
	alice, bob, charlie := newSigner(t), newSigner(t), newSigner(t)
	r := NewRegistry()
	r.Register(Pact{
		PactID:    "p1",
		Threshold: 2,
		Scope:     ScopeGlobal,
		Signers: map[string]struct{}{
			hex.EncodeToString(alice.pub):   {},
			hex.EncodeToString(bob.pub):     {},
			hex.EncodeToString(charlie.pub): {},
		},
		Window:    TimeWindow{NotBefore: 0, NotAfter: 0},
		RiskLevel: intentclass.L2,
	})

	proof := &ledger.PactProofRef{
		PactID: "p1",
		Signatures: []ledger.PactSignatureRef{
			alice.sign("p1", strings.Repeat("a", 64), 6),
			bob.sign("p1", strings.Repeat("a", 64), 6),
		},
	}

	err := Validate(r, proof, "wallet", intentclass.Conservation, 1000, strings.Repeat("a", 64), 6)
	if err != nil {
		t.Fatalf("expected accept, got %v", err)
	}
}

func TestInsufficientSignatures(t *testing.T) {
	alice, bob := newSigner(t), newSigner(t)
	r := NewRegistry()
	r.Register(Pact{
		PactID:    "p1",
		Threshold: 2,
		Scope:     ScopeGlobal,
		Signers: map[string]struct{}{
			hex.EncodeToString(alice.pub): {},
			hex.EncodeToString(bob.pub):   {},
		},
		RiskLevel: intentclass.L2,
	})

	proof := &ledger.PactProofRef{
		PactID:     "p1",
		Signatures: []ledger.PactSignatureRef{alice.sign("p1", strings.Repeat("a", 64), 1)},
	}

	err := Validate(r, proof, "wallet", intentclass.Conservation, 1000, strings.Repeat("a", 64), 1)
	var pactErr *ledgercore.PactError
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.As(err, &pactErr) || pactErr.Reason != ledgercore.PactInsufficientSignatures {
		t.Fatalf("expected InsufficientSignatures, got %v", err)
	}
}

func TestUnauthorizedSigner(t *testing.T) {
	alice, mallory := newSigner(t), newSigner(t)
	r := NewRegistry()
	r.Register(Pact{
		PactID:    "p1",
		Threshold: 1,
		Scope:     ScopeGlobal,
		Signers:   map[string]struct{}{hex.EncodeToString(alice.pub): {}},
		RiskLevel: intentclass.L2,
	})

	proof := &ledger.PactProofRef{
		PactID:     "p1",
		Signatures: []ledger.PactSignatureRef{mallory.sign("p1", strings.Repeat("a", 64), 1)},
	}

	err := Validate(r, proof, "wallet", intentclass.Conservation, 1000, strings.Repeat("a", 64), 1)
	var pactErr *ledgercore.PactError
	if !errors.As(err, &pactErr) || pactErr.Reason != ledgercore.PactUnauthorizedSigner {
		t.Fatalf("expected UnauthorizedSigner, got %v", err)
	}
}

func TestExpiredPact(t *testing.T) {
	alice := newSigner(t)
	r := NewRegistry()
	r.Register(Pact{
		PactID:    "p1",
		Threshold: 1,
		Scope:     ScopeGlobal,
		Signers:   map[string]struct{}{hex.EncodeToString(alice.pub): {}},
		Window:    TimeWindow{NotBefore: 0, NotAfter: 500},
		RiskLevel: intentclass.L2,
	})

	proof := &ledger.PactProofRef{
		PactID:     "p1",
		Signatures: []ledger.PactSignatureRef{alice.sign("p1", strings.Repeat("a", 64), 1)},
	}

	err := Validate(r, proof, "wallet", intentclass.Conservation, 1000, strings.Repeat("a", 64), 1)
	var pactErr *ledgercore.PactError
	if !errors.As(err, &pactErr) || pactErr.Reason != ledgercore.PactExpired {
		t.Fatalf("expected PactExpired, got %v", err)
	}
}

func TestRiskMismatch(t *testing.T) {
	alice, bob := newSigner(t), newSigner(t)
	r := NewRegistry()
	r.Register(Pact{
		PactID:    "p1",
		Threshold: 2,
		Scope:     ScopeGlobal,
		Signers: map[string]struct{}{
			hex.EncodeToString(alice.pub): {},
			hex.EncodeToString(bob.pub):   {},
		},
		RiskLevel: intentclass.L1,
	})

	proof := &ledger.PactProofRef{
		PactID: "p1",
		Signatures: []ledger.PactSignatureRef{
			alice.sign("p1", strings.Repeat("a", 64), 1),
			bob.sign("p1", strings.Repeat("a", 64), 1),
		},
	}

	err := Validate(r, proof, "wallet", intentclass.Conservation, 1000, strings.Repeat("a", 64), 1)
	var pactErr *ledgercore.PactError
	if !errors.As(err, &pactErr) || pactErr.Reason != ledgercore.PactRiskMismatch {
		t.Fatalf("expected RiskMismatch, got %v", err)
	}
}

func TestDuplicateSignerNotDoubleCounted(t *testing.T) {
	alice := newSigner(t)
	r := NewRegistry()
	r.Register(Pact{
		PactID:    "p1",
		Threshold: 2,
		Scope:     ScopeGlobal,
		Signers:   map[string]struct{}{hex.EncodeToString(alice.pub): {}},
		RiskLevel: intentclass.L2,
	})

	sig := alice.sign("p1", strings.Repeat("a", 64), 1)
	proof := &ledger.PactProofRef{
		PactID:     "p1",
		Signatures: []ledger.PactSignatureRef{sig, sig},
	}

	err := Validate(r, proof, "wallet", intentclass.Conservation, 1000, strings.Repeat("a", 64), 1)
	var pactErr *ledgercore.PactError
	if !errors.As(err, &pactErr) || pactErr.Reason != ledgercore.PactInsufficientSignatures {
		t.Fatalf("expected duplicate signature to not satisfy threshold 2, got %v", err)
	}
}
