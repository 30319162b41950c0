// Package intentclass defines the tagged variant of link-commit intent
// classes and their mapping to the risk-level scale the Pact layer
// enforces thresholds against.
package intentclass

import "fmt"

// Class is the intent class attached to a link commit. It is a closed,
// four-case tagged variant dispatched by exhaustive switch, never by
// subclassing.
type Class int

const (
	Observation Class = iota
	Conservation
	Entropy
	Evolution
)

// String renders the wire form used in CommitRequest.IntentClass.
func (c Class) String() string {
	switch c {
	case Observation:
		return "Observation"
	case Conservation:
		return "Conservation"
	case Entropy:
		return "Entropy"
	case Evolution:
		return "Evolution"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

// Parse decodes the wire string form of an intent class.
func Parse(s string) (Class, error) {
	switch s {
	case "Observation":
		return Observation, nil
	case "Conservation":
		return Conservation, nil
	case "Entropy":
		return Entropy, nil
	case "Evolution":
		return Evolution, nil
	default:
		return 0, fmt.Errorf("intentclass: unknown class %q", s)
	}
}

// RiskLevel is the totally ordered risk scale L0 (lowest) through L5
// (highest) that Pact thresholds are stated in terms of.
type RiskLevel int

const (
	L0 RiskLevel = iota
	L1
	L2
	L3
	L4
	L5
)

func (r RiskLevel) String() string {
	return fmt.Sprintf("L%d", int(r))
}

// MinimumRisk returns the minimum Pact risk level a given intent class
// requires. Observation requires no pact at all (L0), but the mapping is
// still total so the Pact layer can compare uniformly.
func MinimumRisk(c Class) RiskLevel {
	switch c {
	case Observation:
		return L0
	case Conservation:
		return L2
	case Entropy:
		return L4
	case Evolution:
		return L5
	default:
		return L5
	}
}

// RequiresPact reports whether an intent class mandates a validated Pact
// proof before the Ledger layer may append. Only Evolution does — its
// physics (§4.2) is deferred entirely to the Pact check. Observation,
// Conservation, and Entropy commits are accepted without a pact attached;
// when a pact is attached to one of them anyway it is still validated
// (see internal/orchestrator), matching the original membrane/append path
// (original_source/kernel/rust/ubl-membrane/src/lib.rs's
// test_entropy_allows_creation/test_valid_commit never gate genesis
// Entropy commits on a mandatory pact).
//
// The real decision of whether a specific commit needs a pact (e.g. a
// Conservation transfer over some threshold amount) belongs to the
// external Policy VM collaborator; this is the deterministic, in-core
// fallback C1 uses when the orchestrator is wired without one.
func RequiresPact(c Class) bool {
	return c == Evolution
}
