// Package wire defines the JSON wire contracts of spec.md §6, decoupled
// from any transport. Building an actual HTTP/gRPC/SSE server is an
// explicit Non-goal (spec.md §1); this package only fixes the shape a
// conforming transport would marshal these types into, plus the
// StatusForError mapping in internal/ledgercore that such a transport
// would use to pick a status code.
package wire

// CommitRequest is the inbound shape of a link commit proposal.
//
// PhysicsDelta is a quoted decimal ASCII string, matching spec.md §6's
// `physics_delta: "<decimal 128-bit signed>"` and the original's
// physics_delta: String. A bare JSON number loses precision past
// float64's 53 mantissa bits, well inside the documented 128-bit range;
// callers decode it with (*big.Int).SetString.
type CommitRequest struct {
	Version          int            `json:"version"`
	ContainerID      string         `json:"container_id"`
	ExpectedSequence int64          `json:"expected_sequence"`
	PreviousHash     string         `json:"previous_hash"`
	AtomHash         string         `json:"atom_hash"`
	IntentClass      string         `json:"intent_class"`
	PhysicsDelta     string         `json:"physics_delta"`
	Pact             *PactProofWire `json:"pact,omitempty"`
	AuthorPubkey     string         `json:"author_pubkey,omitempty"`
	Signature        string         `json:"signature,omitempty"`
}

// PactProofWire is the wire form of ledger.PactProofRef.
type PactProofWire struct {
	PactID     string               `json:"pact_id"`
	Signatures []PactSignatureWire  `json:"signatures"`
}

// PactSignatureWire is the wire form of ledger.PactSignatureRef.
type PactSignatureWire struct {
	Pubkey    string `json:"pubkey"`
	Signature string `json:"signature"`
	Scheme    string `json:"scheme,omitempty"`
}

// CommitResponse is the outbound shape of a successful append.
type CommitResponse struct {
	ContainerID  string `json:"container_id"`
	Sequence     int64  `json:"sequence"`
	LinkHash     string `json:"link_hash"`
	PreviousHash string `json:"previous_hash"`
	EntryHash    string `json:"entry_hash"`
	TsUnixMs     int64  `json:"ts_unix_ms"`
}

// StateResponse is the outbound shape of `GET /state/{container_id}`,
// exactly spec.md §6's documented shape: { container_id, sequence,
// last_hash, entry_count }. Sequence is the tip's sequence number (0 at
// genesis), not the next one a caller would propose.
type StateResponse struct {
	ContainerID string `json:"container_id"`
	Sequence    int64  `json:"sequence"`
	LastHash    string `json:"last_hash"`
	EntryCount  int64  `json:"entry_count"`
}

// ErrorResponse is the outbound shape of a rejection, carrying the
// taxonomy code name (ledgercore.Code.String()) a client can branch on
// without parsing the human-readable message.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
