// Package bls provides the optional BLS12-381 Pact signature scheme
// (alongside the required Ed25519 scheme in pact.go), adapted from
// pkg/crypto/bls/bls.go: pure-Go BLS12-381 via gnark-crypto, key
// generation/(de)serialization, signing and pairing-based verification,
// and the fail-closed subgroup validation that package calls its
// "Phase 2.4" security hardening against rogue-key attacks. Aggregation
// (AggregateSignatures, VerifyAggregate) is provided as well; the pact
// package does not use it and verifies each BLS signature on its own.
package bls

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"sync"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// DomainPactProof domain-separates Pact BLS signatures from any other use
// of BLS12-381 elsewhere in a deployment sharing key material.
const DomainPactProof = "UBL_PACT_PROOF_V1"

const (
	PrivateKeySize = 32
	PublicKeySize  = 96
	SignatureSize  = 48
)

var (
	initOnce sync.Once
	g1Gen    bls12381.G1Affine
	g2Gen    bls12381.G2Affine
)

func initialize() {
	initOnce.Do(func() {
		_, _, g1Gen, g2Gen = bls12381.Generators()
	})
}

// PrivateKey is a BLS12-381 scalar in Fr.
type PrivateKey struct{ scalar fr.Element }

// PublicKey is a point on G2.
type PublicKey struct{ point bls12381.G2Affine }

// Signature is a point on G1.
type Signature struct{ point bls12381.G1Affine }

func GenerateKeyPairFromSeed(seed []byte) (*PrivateKey, *PublicKey, error) {
	initialize()
	if len(seed) < 32 {
		return nil, nil, errors.New("bls: seed must be at least 32 bytes")
	}
	hash := sha256.Sum256(seed)
	var sk fr.Element
	sk.SetBytes(hash[:])
	priv := &PrivateKey{scalar: sk}
	return priv, priv.PublicKey(), nil
}

func PublicKeyFromHex(s string) (*PublicKey, error) {
	initialize()
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("bls: decode hex: %w", err)
	}
	var pk bls12381.G2Affine
	if _, err := pk.SetBytes(data); err != nil {
		return nil, fmt.Errorf("bls: deserialize public key: %w", err)
	}
	return &PublicKey{point: pk}, nil
}

func SignatureFromHex(s string) (*Signature, error) {
	initialize()
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("bls: decode hex: %w", err)
	}
	var sig bls12381.G1Affine
	if _, err := sig.SetBytes(data); err != nil {
		return nil, fmt.Errorf("bls: deserialize signature: %w", err)
	}
	return &Signature{point: sig}, nil
}

func (pk *PublicKey) Hex() string {
	b := pk.point.Bytes()
	return hex.EncodeToString(b[:])
}

func (sig *Signature) Hex() string {
	b := sig.point.Bytes()
	return hex.EncodeToString(b[:])
}

// PublicKey derives pk = sk * G2.
func (sk *PrivateKey) PublicKey() *PublicKey {
	initialize()
	var pk bls12381.G2Affine
	var skBig big.Int
	sk.scalar.BigInt(&skBig)
	pk.ScalarMultiplication(&g2Gen, &skBig)
	return &PublicKey{point: pk}
}

// Sign computes sig = sk * H(domain || message).
func (sk *PrivateKey) Sign(message []byte) *Signature {
	initialize()
	h := hashToG1(domainMessage(message))
	var sig bls12381.G1Affine
	var skBig big.Int
	sk.scalar.BigInt(&skBig)
	sig.ScalarMultiplication(&h, &skBig)
	return &Signature{point: sig}
}

// Verify checks e(sig, G2) == e(H(domain||message), pk).
func (pk *PublicKey) Verify(sig *Signature, message []byte) bool {
	initialize()
	h := hashToG1(domainMessage(message))
	var negPk bls12381.G2Affine
	negPk.Neg(&pk.point)
	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{sig.point, h},
		[]bls12381.G2Affine{g2Gen, negPk},
	)
	return err == nil && ok
}

// AggregateSignatures sums the G1 points of sigs.
func AggregateSignatures(sigs []*Signature) (*Signature, error) {
	initialize()
	if len(sigs) == 0 {
		return nil, errors.New("bls: no signatures to aggregate")
	}
	var agg bls12381.G1Jac
	agg.FromAffine(&sigs[0].point)
	for _, s := range sigs[1:] {
		var jac bls12381.G1Jac
		jac.FromAffine(&s.point)
		agg.AddAssign(&jac)
	}
	var result bls12381.G1Affine
	result.FromJacobian(&agg)
	return &Signature{point: result}, nil
}

// AggregatePublicKeys sums the G2 points of pks.
func AggregatePublicKeys(pks []*PublicKey) (*PublicKey, error) {
	initialize()
	if len(pks) == 0 {
		return nil, errors.New("bls: no public keys to aggregate")
	}
	var agg bls12381.G2Jac
	agg.FromAffine(&pks[0].point)
	for _, p := range pks[1:] {
		var jac bls12381.G2Jac
		jac.FromAffine(&p.point)
		agg.AddAssign(&jac)
	}
	var result bls12381.G2Affine
	result.FromJacobian(&agg)
	return &PublicKey{point: result}, nil
}

// VerifyAggregate verifies an aggregate signature against the aggregate
// of publicKeys, all of whom must have signed the same message.
func VerifyAggregate(aggSig *Signature, publicKeys []*PublicKey, message []byte) bool {
	aggPk, err := AggregatePublicKeys(publicKeys)
	if err != nil {
		return false
	}
	return aggPk.Verify(aggSig, message)
}

// ValidatePublicKeySubgroup fails closed unless pubKeyBytes decodes to an
// on-curve, non-identity point in the correct G2 subgroup. Required before
// trusting a public key gathered from outside the process, to prevent
// rogue-key attacks against aggregate verification.
func ValidatePublicKeySubgroup(pubKeyBytes []byte) error {
	initialize()
	if len(pubKeyBytes) != PublicKeySize {
		return fmt.Errorf("bls: invalid public key size: got %d, want %d", len(pubKeyBytes), PublicKeySize)
	}
	var pk bls12381.G2Affine
	if _, err := pk.SetBytes(pubKeyBytes); err != nil {
		return fmt.Errorf("bls: invalid public key encoding: %w", err)
	}
	if !pk.IsOnCurve() {
		return errors.New("bls: public key not on G2 curve")
	}
	if pk.IsInfinity() {
		return errors.New("bls: public key is identity point")
	}
	if !pk.IsInSubGroup() {
		return errors.New("bls: public key not in correct G2 subgroup")
	}
	return nil
}

func hashToG1(message []byte) bls12381.G1Affine {
	initialize()
	h := sha256.New()
	h.Write([]byte("BLS_SIG_BLS12381G1_XMD:SHA-256_SSWU_RO_"))
	h.Write(message)
	base := h.Sum(nil)

	for counter := uint64(0); counter < 1000; counter++ {
		h2 := sha256.New()
		h2.Write(base)
		binary.Write(h2, binary.BigEndian, counter)
		candidate := h2.Sum(nil)

		var point bls12381.G1Affine
		if _, err := point.SetBytes(candidate); err == nil && !point.IsInfinity() {
			return point
		}

		var scalar fr.Element
		scalar.SetBytes(candidate)
		var scalarBig big.Int
		scalar.BigInt(&scalarBig)
		var result bls12381.G1Affine
		result.ScalarMultiplication(&g1Gen, &scalarBig)
		if !result.IsInfinity() {
			return result
		}
	}
	return g1Gen
}

func domainMessage(message []byte) []byte {
	h := sha256.New()
	h.Write([]byte(DomainPactProof))
	h.Write(message)
	return h.Sum(nil)
}
