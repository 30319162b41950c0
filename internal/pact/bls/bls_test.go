package bls

import (
	"encoding/hex"
	"testing"
)

func seed(b byte) []byte {
	s := make([]byte, 32)
	for i := range s {
		s[i] = b
	}
	return s
}

func TestSignAndVerify(t *testing.T) {
	sk, pk, err := GenerateKeyPairFromSeed(seed(1))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	msg := []byte("container-1|atomhash|5")
	sig := sk.Sign(msg)
	if !pk.Verify(sig, msg) {
		t.Fatal("expected signature to verify")
	}
}

func TestVerifyRejectsWrongMessage(t *testing.T) {
	sk, pk, err := GenerateKeyPairFromSeed(seed(2))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	sig := sk.Sign([]byte("original"))
	if pk.Verify(sig, []byte("tampered")) {
		t.Fatal("expected verification to fail for a different message")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	sk1, _, err := GenerateKeyPairFromSeed(seed(3))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	_, pk2, err := GenerateKeyPairFromSeed(seed(4))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	msg := []byte("m")
	sig := sk1.Sign(msg)
	if pk2.Verify(sig, msg) {
		t.Fatal("expected verification to fail for a mismatched key")
	}
}

func TestHexRoundTrip(t *testing.T) {
	_, pk, err := GenerateKeyPairFromSeed(seed(5))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	decoded, err := PublicKeyFromHex(pk.Hex())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Hex() != pk.Hex() {
		t.Fatal("expected hex round trip to be stable")
	}
}

func TestAggregateSignaturesVerify(t *testing.T) {
	sk1, pk1, _ := GenerateKeyPairFromSeed(seed(6))
	sk2, pk2, _ := GenerateKeyPairFromSeed(seed(7))
	msg := []byte("shared-message")

	sig1 := sk1.Sign(msg)
	sig2 := sk2.Sign(msg)
	agg, err := AggregateSignatures([]*Signature{sig1, sig2})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if !VerifyAggregate(agg, []*PublicKey{pk1, pk2}, msg) {
		t.Fatal("expected aggregate signature to verify")
	}
}

func TestValidatePublicKeySubgroupRejectsBadSize(t *testing.T) {
	if err := ValidatePublicKeySubgroup(make([]byte, 10)); err == nil {
		t.Fatal("expected undersized key to be rejected")
	}
}

func TestValidatePublicKeySubgroupAcceptsGenerated(t *testing.T) {
	_, pk, err := GenerateKeyPairFromSeed(seed(8))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	raw, err := hex.DecodeString(pk.Hex())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := ValidatePublicKeySubgroup(raw); err != nil {
		t.Fatalf("expected a freshly generated key to validate, got %v", err)
	}
}
