// Package orchestrator composes C1-C5 into the single commit pipeline
// spec.md §4.6 describes: Authority Gate, then Membrane, then (when the
// intent class requires it) Pact, then Ledger Append. It owns no business
// logic of its own; every invariant check lives in the layer package that
// defines it, and this package is only responsible for sequencing them,
// converting a rejection at any layer into the right taxonomy error, and
// recording metrics/logs around each stage, following the stage-composition
// style of pkg/server/server.go's request handlers.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/certen/ledger-core/internal/authority"
	"github.com/certen/ledger-core/internal/intentclass"
	"github.com/certen/ledger-core/internal/ledger"
	"github.com/certen/ledger-core/internal/ledgercore"
	"github.com/certen/ledger-core/internal/membrane"
	"github.com/certen/ledger-core/internal/metrics"
	"github.com/certen/ledger-core/internal/obslog"
	"github.com/certen/ledger-core/internal/pact"
)

// Orchestrator wires the four layers together. All fields except Metrics
// are required: a nil Metrics disables metric recording, while Logger must
// be non-nil (New sets both).
type Orchestrator struct {
	Store          *ledger.Store
	Pacts          *pact.Registry
	Resolver       authority.Resolver
	RequireSession bool

	Metrics *metrics.Metrics
	Logger  *obslog.Logger
}

// New constructs an Orchestrator with a fresh Metrics and a Logger built
// from obslog.DefaultConfig.
func New(store *ledger.Store, pacts *pact.Registry, resolver authority.Resolver, requireSession bool) *Orchestrator {
	logger, _ := obslog.New(obslog.DefaultConfig())
	return &Orchestrator{
		Store:          store,
		Pacts:          pacts,
		Resolver:       resolver,
		RequireSession: requireSession,
		Metrics:        metrics.New(),
		Logger:         logger,
	}
}

// Commit runs the full C1-C5 pipeline for one link commit and returns the
// durable Entry on success. token is the bearer token presented alongside
// the commit, or "" if none was presented.
func (o *Orchestrator) Commit(ctx context.Context, link *ledger.LinkCommit, token string) (ledger.Entry, error) {
	requestID := uuid.New().String()
	log := o.Logger.WithFields("request_id", requestID, "container_id", link.ContainerID, "intent_class", link.IntentClass)

	// C4: Authority Gate.
	t0 := time.Now()
	if err := authority.Gate(o.Resolver, token, o.RequireSession, link, time.Now()); err != nil {
		o.observe(metrics.LayerAuthority, t0, err)
		log.Warn("authority gate rejected commit", "error", err)
		return ledger.Entry{}, err
	}
	o.observe(metrics.LayerAuthority, t0, nil)

	// C2: Membrane, against a snapshot read outside the row lock. This is
	// a pre-lock optimization only: a commit that passes here can still be
	// rejected by the lock-held re-check inside Store.Append, which is the
	// actual authoritative gate against concurrent contenders (spec.md
	// §4.6 step 3 / §9's TOCTOU note).
	t0 = time.Now()
	state, err := o.Store.GetState(ctx, link.ContainerID)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("orchestrator: read state: %w", err)
	}
	if err := membrane.Validate(link, state); err != nil {
		o.observe(metrics.LayerMembrane, t0, err)
		log.Warn("membrane rejected commit", "error", err)
		return ledger.Entry{}, err
	}
	o.observe(metrics.LayerMembrane, t0, nil)

	// C3: Pact. Evolution mandates a validated pact regardless of whether
	// one was attached; every other intent class only has its pact
	// validated when the caller actually attached one (spec §8 scenario 1:
	// a genesis Entropy commit with no pact attached must be accepted).
	class, err := intentclass.Parse(link.IntentClass)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("orchestrator: %v: %w", err, ledgercore.ErrInvalidSignature)
	}
	if link.Pact != nil || intentclass.RequiresPact(class) {
		t0 = time.Now()
		now := pact.NowUnix()
		err := pact.Validate(o.Pacts, link.Pact, link.ContainerID, class, now, link.AtomHash, link.ExpectedSequence)
		o.observe(metrics.LayerPact, t0, err)
		if err != nil {
			log.Warn("pact rejected commit", "error", err)
			return ledger.Entry{}, err
		}
	}

	// C5: Ledger Append, the authoritative SERIALIZABLE + row-lock commit.
	t0 = time.Now()
	entry, err := o.Store.Append(ctx, link)
	o.observe(metrics.LayerLedgerAppend, t0, err)
	if err != nil {
		log.Warn("ledger append rejected commit", "error", err)
		return ledger.Entry{}, err
	}

	if o.Metrics != nil {
		o.Metrics.CommitsTotal.Inc()
	}
	log.Info("commit appended", "sequence", entry.Sequence, "entry_hash", entry.EntryHash)
	return entry, nil
}

// State exposes C5's read path directly, for callers (e.g. a wire-level
// StateResponse handler) that only need the current tip and not a commit.
func (o *Orchestrator) State(ctx context.Context, containerID string) (ledger.State, error) {
	return o.Store.GetState(ctx, containerID)
}

func (o *Orchestrator) observe(layer metrics.Layer, start time.Time, err error) {
	if o.Metrics == nil {
		return
	}
	o.Metrics.LayerLatency.WithLabelValues(string(layer)).Observe(time.Since(start).Seconds())
	if err != nil {
		o.Metrics.ObserveRejection(codeFor(err))
	}
}

func codeFor(err error) string {
	switch {
	case errors.Is(err, ledgercore.ErrInvalidVersion):
		return ledgercore.CodeInvalidVersion.String()
	case errors.Is(err, ledgercore.ErrInvalidTarget):
		return ledgercore.CodeInvalidTarget.String()
	case errors.Is(err, ledgercore.ErrInvalidSignature):
		return ledgercore.CodeInvalidSignature.String()
	case errors.Is(err, ledgercore.ErrRealityDrift):
		return ledgercore.CodeRealityDrift.String()
	case errors.Is(err, ledgercore.ErrSequenceMismatch):
		return ledgercore.CodeSequenceMismatch.String()
	case errors.Is(err, ledgercore.ErrPhysicsViolation):
		return ledgercore.CodePhysicsViolation.String()
	case errors.Is(err, ledgercore.ErrPactViolation):
		return ledgercore.CodePactViolation.String()
	case errors.Is(err, ledgercore.ErrUnauthorizedEvolution):
		return ledgercore.CodeUnauthorizedEvolution.String()
	default:
		return "Unknown"
	}
}
