// Package local provides an in-process ed25519 group signer for
// development and tests. Production flows sign through the wallet bridge;
// this signer holds the private key directly and should never see a real
// user's funds.
package local

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/creatorjar/creatorjar"
	"github.com/creatorjar/creatorjar/txngroup"
)

// txnSignPrefix domain-separates transaction signatures, matching the
// network's wire convention.
const txnSignPrefix = "TX"

// Signer signs transaction groups with a raw ed25519 key.
type Signer struct {
	priv    ed25519.PrivateKey
	address creatorjar.Address
}

// NewFromSeed creates a signer from a hex-encoded 32-byte ed25519 seed.
func NewFromSeed(seedHex string) (*Signer, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("invalid seed: want %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return &Signer{
		priv:    priv,
		address: creatorjar.Address(hex.EncodeToString(pub)),
	}, nil
}

// Generate creates a signer with a fresh random key.
func Generate() (*Signer, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, err
	}
	return &Signer{
		priv:    priv,
		address: creatorjar.Address(hex.EncodeToString(pub)),
	}, nil
}

// Address returns the account address derived from the signer's public
// key.
func (s *Signer) Address() creatorjar.Address {
	return s.address
}

// signedTxn is the wire form of one signed transaction.
type signedTxn struct {
	Sig []byte                 `cbor:"sig"`
	Txn creatorjar.Transaction `cbor:"txn"`
}

// SignGroup signs each member of the group in order. The signer address
// must match the account the group spends from.
func (s *Signer) SignGroup(ctx context.Context, group *creatorjar.TransactionGroup, signer creatorjar.Address) (creatorjar.SignedGroup, error) {
	if signer != s.address {
		return nil, creatorjar.NewTipError(
			creatorjar.ErrCodeUserRejected,
			fmt.Sprintf("signer holds %s, asked to sign for %s", s.address, signer),
			nil,
		)
	}

	signed := make(creatorjar.SignedGroup, len(group.Transactions))
	for i, txn := range group.Transactions {
		enc, err := txngroup.EncodeTransaction(txn)
		if err != nil {
			return nil, fmt.Errorf("failed to encode transaction %d: %w", i, err)
		}
		sig := ed25519.Sign(s.priv, append([]byte(txnSignPrefix), enc...))

		blob, err := cbor.Marshal(signedTxn{Sig: sig, Txn: txn})
		if err != nil {
			return nil, fmt.Errorf("failed to encode signed transaction %d: %w", i, err)
		}
		signed[i] = blob
	}
	return signed, nil
}

var _ creatorjar.GroupSigner = (*Signer)(nil)
