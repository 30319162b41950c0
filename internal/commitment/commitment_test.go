package commitment

import "testing"

func TestEntryHashDeterministic(t *testing.T) {
	a := EntryHash("c1", 1, "deadbeef", "0x00", 1000)
	b := EntryHash("c1", 1, "deadbeef", "0x00", 1000)
	if a != b {
		t.Fatal("expected EntryHash to be deterministic")
	}
	if len(a) != 64 {
		t.Fatalf("expected 32-byte hex hash (64 chars), got %d", len(a))
	}
}

func TestEntryHashSensitiveToSequence(t *testing.T) {
	a := EntryHash("c1", 1, "deadbeef", "0x00", 1000)
	b := EntryHash("c1", 2, "deadbeef", "0x00", 1000)
	if a == b {
		t.Fatal("expected different sequence to change the hash")
	}
}

func TestPactChallengeDeterministic(t *testing.T) {
	a := PactChallengeHex("pact-1", "deadbeef", 5)
	b := PactChallengeHex("pact-1", "deadbeef", 5)
	if a != b {
		t.Fatal("expected PactChallenge to be deterministic")
	}
	c := PactChallengeHex("pact-2", "deadbeef", 5)
	if a == c {
		t.Fatal("expected different pact_id to change the challenge")
	}
}

func TestValidateAtomHashFormCanonical(t *testing.T) {
	ok, tooShort := ValidateAtomHashForm("ab")
	if ok || !tooShort {
		t.Fatal("expected 2-char hash to be rejected as too short")
	}

	ok, tooShort = ValidateAtomHashForm("deadbeefXYZ")
	if ok || tooShort {
		t.Fatal("expected non-hex input to be rejected, not as too-short")
	}

	ok, _ = ValidateAtomHashForm("dead")
	if !ok {
		t.Fatal("expected 4-char hex to pass the escape hatch")
	}

	full := "a"
	for len(full) < 64 {
		full += "a"
	}
	ok, _ = ValidateAtomHashForm(full)
	if !ok {
		t.Fatal("expected canonical 64-char hex to pass")
	}
}
