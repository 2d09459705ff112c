// Package txngroup builds the atomic two-transaction payment group for a
// tip: one leg to the creator, one to the platform, bound by a shared
// group identifier so the network commits both or neither.
package txngroup

import (
	"context"
	"crypto/sha512"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/creatorjar/creatorjar"
)

// Domain-separation prefixes for hashing, matching the network's wire
// convention.
const (
	txnPrefix   = "TX"
	groupPrefix = "TG"
)

// validityWindow is how many rounds a built group stays valid for, from
// the suggested first-valid round.
const validityWindow = 1000

// Memos stamped on the two legs so explorers can tell them apart.
const (
	noteTip         = "tip"
	notePlatformFee = "platform fee"
)

var encMode cbor.EncMode

func init() {
	var err error
	// Canonical encoding: the group identifier must be deterministic for a
	// given ordered pair of transactions.
	encMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("txngroup: cbor encode mode: %v", err))
	}
}

// Builder assembles transaction groups from payment intents. It fetches
// suggested parameters from the node but never signs or submits.
type Builder struct {
	node     creatorjar.NodeClient
	splitter *creatorjar.Splitter
}

// NewBuilder creates a group builder backed by the given node client and
// fee policy.
func NewBuilder(node creatorjar.NodeClient, policy creatorjar.FeePolicy) *Builder {
	return &Builder{
		node:     node,
		splitter: creatorjar.NewSplitter(policy),
	}
}

// BuildGroup assembles the two-leg payment group for an intent.
//
// The recipient leg comes first and the platform leg second; this ordering
// is authoritative and must be preserved through signing and submission,
// since reordering breaks the group identifier binding in some wallet
// adapters.
func (b *Builder) BuildGroup(ctx context.Context, intent creatorjar.PaymentIntent, platform creatorjar.Address) (*creatorjar.TransactionGroup, error) {
	split, err := b.splitter.Split(intent.Amount)
	if err != nil {
		return nil, err
	}

	minShare := b.splitter.Policy().MinShare
	if split.Recipient < minShare || split.Platform < minShare {
		return nil, creatorjar.NewTipError(
			creatorjar.ErrCodeAmountTooSmall,
			fmt.Sprintf("each share must be at least %d micro-units", minShare),
			map[string]interface{}{
				"recipientMicroUnits": split.Recipient,
				"platformMicroUnits":  split.Platform,
				"minShare":            minShare,
			},
		)
	}

	params, err := b.node.SuggestedParams(ctx)
	if err != nil {
		if creatorjar.CodeOf(err) != "" {
			return nil, err
		}
		return nil, creatorjar.WrapTipError(
			creatorjar.ErrCodeNetworkUnavailable,
			"failed to fetch suggested params",
			err,
		)
	}

	group := &creatorjar.TransactionGroup{
		Transactions: [2]creatorjar.Transaction{
			{
				Sender:     intent.Sender,
				Receiver:   intent.Recipient,
				Amount:     split.Recipient,
				Fee:        params.MinFee,
				FirstValid: params.LastRound,
				LastValid:  params.LastRound + validityWindow,
				GenesisID:  params.GenesisID,
				Note:       noteTip,
			},
			{
				Sender:     intent.Sender,
				Receiver:   platform,
				Amount:     split.Platform,
				Fee:        params.MinFee,
				FirstValid: params.LastRound,
				LastValid:  params.LastRound + validityWindow,
				GenesisID:  params.GenesisID,
				Note:       notePlatformFee,
			},
		},
	}

	id, err := GroupID(group.Transactions[:])
	if err != nil {
		return nil, fmt.Errorf("failed to compute group id: %w", err)
	}
	group.ID = id
	group.Transactions[0].Group = id
	group.Transactions[1].Group = id

	return group, nil
}

// GroupID computes the deterministic group identifier over an ordered list
// of transactions: SHA-512/256 of the domain-separated canonical encoding
// of the per-transaction digests. The Group field itself is excluded from
// the computation.
func GroupID(txns []creatorjar.Transaction) ([]byte, error) {
	digests := make([][]byte, len(txns))
	for i, txn := range txns {
		txn.Group = nil
		enc, err := encMode.Marshal(txn)
		if err != nil {
			return nil, err
		}
		d := sha512.Sum512_256(append([]byte(txnPrefix), enc...))
		digests[i] = d[:]
	}

	enc, err := encMode.Marshal(digests)
	if err != nil {
		return nil, err
	}
	id := sha512.Sum512_256(append([]byte(groupPrefix), enc...))
	return id[:], nil
}

// EncodeTransaction canonically encodes a transaction for signing or for
// handoff to an external wallet.
func EncodeTransaction(txn creatorjar.Transaction) ([]byte, error) {
	return encMode.Marshal(txn)
}

// DecodeTransaction decodes a canonically encoded transaction.
func DecodeTransaction(data []byte) (creatorjar.Transaction, error) {
	var txn creatorjar.Transaction
	if err := cbor.Unmarshal(data, &txn); err != nil {
		return creatorjar.Transaction{}, err
	}
	return txn, nil
}

var _ creatorjar.GroupBuilder = (*Builder)(nil)
