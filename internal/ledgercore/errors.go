// Package ledgercore holds the canonical error taxonomy shared by the
// Membrane, Pact, and Ledger layers. Every rejection a conforming
// implementation can surface is one of the eight sentinel kinds below;
// layers wrap them with fmt.Errorf("...: %w", ...) for context but callers
// are expected to compare with errors.Is / errors.As against these values,
// the same discipline pkg/ledger/errors.go and pkg/database/errors.go use
// instead of returning (nil, nil) on a miss.
package ledgercore

import "errors"

// Code identifies which of the eight taxonomy kinds an error belongs to.
type Code int

const (
	CodeInvalidVersion Code = iota
	CodeInvalidTarget
	CodeInvalidSignature
	CodeRealityDrift
	CodeSequenceMismatch
	CodePhysicsViolation
	CodePactViolation
	CodeUnauthorizedEvolution
)

func (c Code) String() string {
	switch c {
	case CodeInvalidVersion:
		return "InvalidVersion"
	case CodeInvalidTarget:
		return "InvalidTarget"
	case CodeInvalidSignature:
		return "InvalidSignature"
	case CodeRealityDrift:
		return "RealityDrift"
	case CodeSequenceMismatch:
		return "SequenceMismatch"
	case CodePhysicsViolation:
		return "PhysicsViolation"
	case CodePactViolation:
		return "PactViolation"
	case CodeUnauthorizedEvolution:
		return "UnauthorizedEvolution"
	default:
		return "Unknown"
	}
}

// Sentinel base errors. Compare with errors.Is; PhysicsViolation and
// PactViolation carry structured detail via *PhysicsError / *PactError,
// which also satisfy errors.Is against these sentinels through Unwrap.
var (
	ErrInvalidVersion        = errors.New("ledgercore: invalid version")
	ErrInvalidTarget         = errors.New("ledgercore: invalid target container")
	ErrInvalidSignature      = errors.New("ledgercore: invalid signature")
	ErrRealityDrift          = errors.New("ledgercore: reality drift, previous_hash does not match tip")
	ErrSequenceMismatch      = errors.New("ledgercore: sequence mismatch")
	ErrPhysicsViolation      = errors.New("ledgercore: physics invariant violated")
	ErrPactViolation         = errors.New("ledgercore: pact requirement not satisfied")
	ErrUnauthorizedEvolution = errors.New("ledgercore: unauthorized")
)

// PhysicsError carries the human-readable reason spec.md requires for
// PhysicsViolation, e.g. "Observation must have delta=0, got 100".
type PhysicsError struct {
	Reason string
}

func (e *PhysicsError) Error() string { return "physics violation: " + e.Reason }
func (e *PhysicsError) Unwrap() error { return ErrPhysicsViolation }

// PactReason distinguishes which Pact-layer check failed, mirroring the
// original PactError enum (UnknownPact, PactExpired, InsufficientSignatures,
// UnauthorizedSigner, RiskMismatch) under the single public PactViolation
// code spec.md §7 specifies as the umbrella.
type PactReason int

const (
	PactUnknown PactReason = iota
	PactExpired
	PactInsufficientSignatures
	PactUnauthorizedSigner
	PactRiskMismatch
)

func (r PactReason) String() string {
	switch r {
	case PactUnknown:
		return "UnknownPact"
	case PactExpired:
		return "PactExpired"
	case PactInsufficientSignatures:
		return "InsufficientSignatures"
	case PactUnauthorizedSigner:
		return "UnauthorizedSigner"
	case PactRiskMismatch:
		return "RiskMismatch"
	default:
		return "Unknown"
	}
}

// PactError is the structured detail behind ErrPactViolation.
type PactError struct {
	Reason PactReason

	// Populated depending on Reason.
	PactID   string
	Pubkey   string
	Got      int
	Need     int
	Intent   string
	PactRisk string
}

func (e *PactError) Error() string {
	switch e.Reason {
	case PactUnknown:
		return "pact violation: unknown pact " + e.PactID
	case PactExpired:
		return "pact violation: pact " + e.PactID + " expired"
	case PactInsufficientSignatures:
		return "pact violation: insufficient signatures"
	case PactUnauthorizedSigner:
		return "pact violation: unauthorized signer " + e.Pubkey
	case PactRiskMismatch:
		return "pact violation: risk mismatch"
	default:
		return "pact violation"
	}
}

func (e *PactError) Unwrap() error { return ErrPactViolation }

// StatusForError maps a taxonomy error to the HTTP status a conforming
// transport (not built here — see spec.md §1 Non-goals) would return per
// spec.md §6. It is a pure function with no net/http dependency so the
// core never imports a transport package.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, ErrInvalidVersion), errors.Is(err, ErrInvalidTarget), errors.Is(err, ErrInvalidSignature):
		return 400
	case errors.Is(err, ErrUnauthorizedEvolution):
		return 401
	case errors.Is(err, ErrRealityDrift), errors.Is(err, ErrSequenceMismatch):
		return 409
	case errors.Is(err, ErrPhysicsViolation), errors.Is(err, ErrPactViolation):
		return 422
	default:
		return 500
	}
}
