// Package membrane implements C2: the deterministic, semantically blind
// structural and causal gate a link commit must pass before a pact check
// or a durable append is attempted. Grounded directly on
// original_source/kernel/rust/ubl-membrane/src/lib.rs, which fixes the
// check order this package preserves exactly (V1, V2, V4, V5, V6-form,
// V6-physics). No I/O, no clock read, no randomness: Validate is a pure
// function of its two arguments and is expected to run in well under a
// millisecond.
package membrane

import (
	"fmt"
	"math/big"

	"github.com/certen/ledger-core/internal/commitment"
	"github.com/certen/ledger-core/internal/intentclass"
	"github.com/certen/ledger-core/internal/ledger"
	"github.com/certen/ledger-core/internal/ledgercore"
)

// Validate runs the full membrane check order against link and the
// container's current state snapshot. It returns nil on Accept, or one of
// the ledgercore sentinel errors (wrapped with detail where applicable) on
// Reject.
func Validate(link *ledger.LinkCommit, state ledger.State) error {
	// V1: version
	if link.Version != 1 {
		return fmt.Errorf("membrane: link version %d: %w", link.Version, ledgercore.ErrInvalidVersion)
	}

	// V2: target container
	if link.ContainerID != state.ContainerID {
		return fmt.Errorf("membrane: link targets %q, state is for %q: %w", link.ContainerID, state.ContainerID, ledgercore.ErrInvalidTarget)
	}

	// V4: causal chain
	if link.PreviousHash != state.LastHash {
		return fmt.Errorf("membrane: previous_hash %q != tip %q: %w", link.PreviousHash, state.LastHash, ledgercore.ErrRealityDrift)
	}

	// V5: sequence
	if link.ExpectedSequence != state.NextSequence {
		return fmt.Errorf("membrane: expected_sequence %d != next %d: %w", link.ExpectedSequence, state.NextSequence, ledgercore.ErrSequenceMismatch)
	}

	// V6 (form): atom-hash well-formedness, with the documented short-hash
	// escape hatch for test vectors (spec.md §9 Open Questions).
	ok, tooShort := commitment.ValidateAtomHashForm(link.AtomHash)
	if !ok {
		if tooShort {
			return fmt.Errorf("membrane: atom_hash %q too short: %w", link.AtomHash, ledgercore.ErrInvalidSignature)
		}
		return fmt.Errorf("membrane: atom_hash %q not valid hex: %w", link.AtomHash, ledgercore.ErrInvalidSignature)
	}

	class, err := intentclass.Parse(link.IntentClass)
	if err != nil {
		return fmt.Errorf("membrane: %v: %w", err, ledgercore.ErrInvalidSignature)
	}

	// V6 (physics): per-intent-class invariants.
	switch class {
	case intentclass.Observation:
		if link.PhysicsDelta == nil || link.PhysicsDelta.Sign() != 0 {
			got := "<nil>"
			if link.PhysicsDelta != nil {
				got = link.PhysicsDelta.String()
			}
			return &ledgercore.PhysicsError{Reason: fmt.Sprintf("Observation must have delta=0, got %s", got)}
		}
	case intentclass.Conservation:
		delta := link.PhysicsDelta
		if delta == nil {
			delta = big.NewInt(0)
		}
		would := new(big.Int).Add(state.PhysicalBalance, delta)
		if would.Sign() < 0 {
			return &ledgercore.PhysicsError{Reason: fmt.Sprintf("Conservation requires balance >= 0, would be %s", would.String())}
		}
	case intentclass.Entropy:
		// any delta permitted at this layer
	case intentclass.Evolution:
		// permitted at this layer; policy is deferred to Pact
	}

	return nil
}
