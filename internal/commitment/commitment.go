// Package commitment computes the bit-exact hashes spec.md §3/§4.5
// requires: entry_hash over a container's new row, and the canonical
// challenge a Pact signature is verified against. Adapted from
// pkg/commitment/commitment.go's canonical-hashing helpers, switched from
// SHA256 to BLAKE3 to match the 256-bit hash original_source's
// ubl-server/src/db.rs uses for entry_hash.
package commitment

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"lukechampine.com/blake3"
)

// EntryHash computes entry_hash = H(container_id || decimal(sequence) ||
// atom_hash || previous_hash || decimal(ts_unix_ms)), byte-wise
// concatenation with no separators, hashed with BLAKE3-256 and hex-encoded.
// This concatenation order is bit-exact and grounded directly on
// original_source/kernel/rust/ubl-server/src/db.rs's append(): any
// reordering breaks chain verifiability against existing entries.
func EntryHash(containerID string, sequence int64, atomHash, previousHash string, tsUnixMs int64) string {
	h := blake3.New(32, nil)
	h.Write([]byte(containerID))
	h.Write([]byte(strconv.FormatInt(sequence, 10)))
	h.Write([]byte(atomHash))
	h.Write([]byte(previousHash))
	h.Write([]byte(strconv.FormatInt(tsUnixMs, 10)))
	return hex.EncodeToString(h.Sum(nil))
}

// PactChallenge computes the canonical challenge a Pact signature must be
// an Ed25519 (or BLS12-381) signature over: H(pact_id || atom_hash ||
// decimal(expected_sequence)). This resolves spec.md §9's "reasonable
// choice" for the signature-verification placeholder into a concrete,
// bit-exact rule.
func PactChallenge(pactID, atomHash string, expectedSequence int64) []byte {
	h := blake3.New(32, nil)
	h.Write([]byte(pactID))
	h.Write([]byte(atomHash))
	h.Write([]byte(strconv.FormatInt(expectedSequence, 10)))
	return h.Sum(nil)
}

// PactChallengeHex is PactChallenge hex-encoded, for logging/testing.
func PactChallengeHex(pactID, atomHash string, expectedSequence int64) string {
	return hex.EncodeToString(PactChallenge(pactID, atomHash, expectedSequence))
}

// ValidateAtomHashForm reports whether s is a well-formed atom hash: the
// canonical form is 64 lowercase or uppercase hex characters (a 32-byte
// hash), but spec.md §4.2/§9 documents a tolerated test-vector escape
// hatch for 4<=len<64 hex strings. Anything shorter than 4 characters, or
// that is not valid hex at all, is rejected outright.
func ValidateAtomHashForm(s string) (ok bool, tooShortForEscapeHatch bool) {
	if !isHex(s) {
		return false, len(s) < 4
	}
	if len(s) == 64 {
		return true, false
	}
	if len(s) >= 4 {
		return true, false // tolerated escape hatch, see spec Open Questions
	}
	return false, true
}

func isHex(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// FormatBigDecimal is a small helper kept here alongside the other
// canonical-encoding helpers: it renders a value such as a *big.Int to its
// decimal ASCII form through its String method. No code in this module
// calls it.
func FormatBigDecimal(v fmt.Stringer) string {
	return v.String()
}
