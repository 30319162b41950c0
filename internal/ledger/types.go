// Package ledger holds the durable append-only hash-chained store: the
// data model of spec.md §3 and the append/read-state algorithm of §4.5,
// rewritten from pkg/ledger/store.go's KV/sentinel-error conventions onto
// a Postgres-backed, serializable-isolation store grounded on
// original_source/kernel/rust/ubl-server/src/db.rs.
package ledger

import "math/big"

// SentinelPreviousHash is the previous_hash of the first entry in any
// container's chain.
const SentinelPreviousHash = "0x00"

// LinkCommit is the ephemeral, client-supplied proposal to append an entry.
// It is never itself persisted; only the Entry it produces is durable.
type LinkCommit struct {
	Version          int
	ContainerID      string
	ExpectedSequence int64
	PreviousHash     string
	AtomHash         string
	IntentClass      string // wire form, parsed by intentclass.Parse
	PhysicsDelta     *big.Int
	Pact             *PactProofRef
	AuthorPubkey     string
	Signature        string
}

// PactProofRef is the proof attached to a link commit, carried opaquely
// through Membrane/Orchestrator into the Pact validator.
type PactProofRef struct {
	PactID     string
	Signatures []PactSignatureRef
}

// PactSignatureRef is one signer's contribution to a PactProofRef.
type PactSignatureRef struct {
	Pubkey    string
	Signature string
	Scheme    string // "ed25519" (default) or "bls12-381"
}

// Entry is an immutable, durable row of a container's chain.
type Entry struct {
	ContainerID  string `json:"container_id"`
	Sequence     int64  `json:"sequence"`
	LinkHash     string `json:"link_hash"`
	PreviousHash string `json:"previous_hash"`
	EntryHash    string `json:"entry_hash"`
	TsUnixMs     int64  `json:"ts_unix_ms"`
}

// State is the derived, current view of a container's chain tip plus its
// running physical balance (the accumulation of all physics deltas applied
// by successful appends of Conservation/Entropy/Evolution intent so far).
type State struct {
	ContainerID     string
	LastHash        string
	NextSequence    int64
	PhysicalBalance *big.Int
	EntryCount      int64
}

// Genesis returns the zero-value LedgerState for a container that has
// never received a successful append.
func Genesis(containerID string) State {
	return State{
		ContainerID:     containerID,
		LastHash:        SentinelPreviousHash,
		NextSequence:    1,
		PhysicalBalance: big.NewInt(0),
		EntryCount:      0,
	}
}
