// Package policyiface sketches the interface boundary to the external
// Policy VM collaborator (spec.md §1), which decides which intent classes
// require a Pact proof and at what minimum risk level for a given
// container/actor, beyond the deterministic intentclass.RequiresPact/
// MinimumRisk fallback this module carries internally. No concrete
// implementation lives in this module: a real Policy VM is a separate
// service this package only describes the contract for, mirroring how
// pkg/attestation/strategy.go fixes an interface its concrete strategies
// implement elsewhere.
package policyiface

import (
	"github.com/certen/ledger-core/internal/intentclass"
)

// EvaluationContext is what the orchestrator would hand the Policy VM
// before invoking Pact, if one is configured.
type EvaluationContext struct {
	ContainerID  string
	IntentClass  intentclass.Class
	PhysicsDelta string // decimal form, to avoid forcing a big.Int dependency on implementors
	ActorSID     string
}

// TranslationDecision is the Policy VM's verdict: whether a Pact proof is
// required at all, and if so, the minimum risk level it must carry.
type TranslationDecision struct {
	RequiresPact bool
	MinimumRisk  intentclass.RiskLevel
}

// Translator is the whole contract with the Policy VM. The orchestrator in
// this module does not call it; it always uses the deterministic fallback
// in internal/intentclass.
type Translator interface {
	Translate(ctx EvaluationContext) (TranslationDecision, error)
}
