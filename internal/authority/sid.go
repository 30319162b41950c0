package authority

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// SubjectKind mirrors the original id_db.rs SubjectKind enum: the kind of
// principal a session subject identifies.
type SubjectKind string

const (
	SubjectPerson SubjectKind = "person"
	SubjectLLM    SubjectKind = "llm"
	SubjectApp    SubjectKind = "app"
)

// DeriveSID computes a deterministic session-subject id the same way the
// external identity collaborator's original id_db.rs does:
// "ubl:sid:" + hex(BLAKE3(pubkey_hex || kind)). Identity minting itself
// remains an external collaborator per spec.md §1; this helper exists so
// in-memory Resolver test doubles (and local development) can mint
// deterministic session ids without standing up a real identity service.
func DeriveSID(pubkeyHex string, kind SubjectKind) string {
	h := blake3.New(32, nil)
	h.Write([]byte(pubkeyHex))
	h.Write([]byte(kind))
	return "ubl:sid:" + hex.EncodeToString(h.Sum(nil))
}
