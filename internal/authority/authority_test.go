package authority

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/certen/ledger-core/internal/intentclass"
	"github.com/certen/ledger-core/internal/ledger"
	"github.com/certen/ledger-core/internal/ledgercore"
)

type fakeResolver struct {
	claims Claims
	err    error
}

func (f fakeResolver) Resolve(token string) (Claims, error) {
	return f.claims, f.err
}

func makeLink(containerID, class string, delta int64) *ledger.LinkCommit {
	return &ledger.LinkCommit{
		Version:          1,
		ContainerID:      containerID,
		ExpectedSequence: 1,
		PreviousHash:     ledger.SentinelPreviousHash,
		AtomHash:         "deadbeef",
		IntentClass:      class,
		PhysicsDelta:     big.NewInt(delta),
	}
}

func TestGateMissingTokenRejectedWhenRequired(t *testing.T) {
	err := Gate(fakeResolver{}, "", true, makeLink("c1", "Observation", 0), time.Now())
	if !errors.Is(err, ledgercore.ErrUnauthorizedEvolution) {
		t.Fatalf("expected ErrUnauthorizedEvolution, got %v", err)
	}
}

func TestGateMissingTokenAcceptedWhenNotRequired(t *testing.T) {
	err := Gate(fakeResolver{}, "", false, makeLink("c1", "Observation", 0), time.Now())
	if err != nil {
		t.Fatalf("expected accept, got %v", err)
	}
}

func TestGateExpiredSession(t *testing.T) {
	resolver := fakeResolver{claims: Claims{
		Containers:     map[string]struct{}{"c1": {}},
		AllowedClasses: map[intentclass.Class]struct{}{intentclass.Observation: {}},
		Expiry:         time.Now().Add(-time.Hour),
	}}
	err := Gate(resolver, "tok", true, makeLink("c1", "Observation", 0), time.Now())
	if !errors.Is(err, ledgercore.ErrUnauthorizedEvolution) {
		t.Fatalf("expected expired session to be rejected, got %v", err)
	}
}

func TestGateContainerOutOfScope(t *testing.T) {
	resolver := fakeResolver{claims: Claims{
		Containers:     map[string]struct{}{"other": {}},
		AllowedClasses: map[intentclass.Class]struct{}{intentclass.Observation: {}},
	}}
	err := Gate(resolver, "tok", true, makeLink("c1", "Observation", 0), time.Now())
	if !errors.Is(err, ledgercore.ErrUnauthorizedEvolution) {
		t.Fatalf("expected out-of-scope container to be rejected, got %v", err)
	}
}

func TestGateIntentClassNotAllowed(t *testing.T) {
	resolver := fakeResolver{claims: Claims{
		Containers:     map[string]struct{}{"c1": {}},
		AllowedClasses: map[intentclass.Class]struct{}{intentclass.Observation: {}},
	}}
	err := Gate(resolver, "tok", true, makeLink("c1", "Evolution", 0), time.Now())
	if !errors.Is(err, ledgercore.ErrUnauthorizedEvolution) {
		t.Fatalf("expected disallowed intent class to be rejected, got %v", err)
	}
}

func TestGateDeltaExceedsBound(t *testing.T) {
	resolver := fakeResolver{claims: Claims{
		Containers:     map[string]struct{}{"c1": {}},
		AllowedClasses: map[intentclass.Class]struct{}{intentclass.Conservation: {}},
		DeltaBounds:    big.NewInt(100),
	}}
	err := Gate(resolver, "tok", true, makeLink("c1", "Conservation", 500), time.Now())
	if !errors.Is(err, ledgercore.ErrUnauthorizedEvolution) {
		t.Fatalf("expected over-bound delta to be rejected, got %v", err)
	}
}

func TestGateAccepted(t *testing.T) {
	resolver := fakeResolver{claims: Claims{
		Containers:     map[string]struct{}{"c1": {}},
		AllowedClasses: map[intentclass.Class]struct{}{intentclass.Conservation: {}},
		DeltaBounds:    big.NewInt(1000),
	}}
	err := Gate(resolver, "tok", true, makeLink("c1", "Conservation", 500), time.Now())
	if err != nil {
		t.Fatalf("expected accept, got %v", err)
	}
}

func TestDeriveSIDDeterministic(t *testing.T) {
	a := DeriveSID("abc123", SubjectPerson)
	b := DeriveSID("abc123", SubjectPerson)
	if a != b {
		t.Fatal("expected DeriveSID to be deterministic")
	}
	c := DeriveSID("abc123", SubjectLLM)
	if a == c {
		t.Fatal("expected different subject kinds to derive different sids")
	}
}
