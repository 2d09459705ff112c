package creatorjar

import "time"

// MicroUnitExponent is the number of decimal places in the payment
// currency: 1 creator-unit == 10^6 micro-units.
const MicroUnitExponent = 6

// MicroUnitsPerUnit is 10^MicroUnitExponent.
const MicroUnitsPerUnit = 1_000_000

// Address identifies an account on the payment network.
type Address string

// PaymentIntent captures one tip attempt. It exists only in memory for the
// duration of a single flow and is discarded once a terminal state is
// reached.
type PaymentIntent struct {
	Sender    Address `json:"sender"`
	Recipient Address `json:"recipient"`

	// Amount is the gross amount in creator-units as a decimal string,
	// e.g. "10" or "2.5". Parsed with truncation beyond six places.
	Amount string `json:"amount"`

	// Note is an optional free-form message from the tipper.
	Note string `json:"note,omitempty"`
}

// SplitAmounts is the exact integer decomposition of a gross amount.
// Invariant: Recipient + Platform == Total, always.
type SplitAmounts struct {
	Total     uint64 `json:"totalMicroUnits"`
	Recipient uint64 `json:"recipientMicroUnits"`
	Platform  uint64 `json:"platformMicroUnits"`
}

// Transaction is one unsigned payment record destined for the network.
// Group is empty until the group builder stamps it.
type Transaction struct {
	Sender     Address `cbor:"snd" json:"sender"`
	Receiver   Address `cbor:"rcv" json:"receiver"`
	Amount     uint64  `cbor:"amt" json:"amount"`
	Fee        uint64  `cbor:"fee" json:"fee"`
	FirstValid uint64  `cbor:"fv" json:"firstValid"`
	LastValid  uint64  `cbor:"lv" json:"lastValid"`
	GenesisID  string  `cbor:"gen" json:"genesisId"`
	Note       string  `cbor:"note,omitempty" json:"note,omitempty"`
	Group      []byte  `cbor:"grp,omitempty" json:"group,omitempty"`
}

// TransactionGroup is an ordered pair of transactions sharing one group
// identifier. The network commits both members or neither. Ordering is
// authoritative: recipient leg first, platform leg second, and must be
// preserved through signing and submission.
type TransactionGroup struct {
	Transactions [2]Transaction `json:"transactions"`
	ID           []byte         `json:"id"`
}

// SignedGroup holds the signed byte payloads of a transaction group, in
// the same order as the group's transactions.
type SignedGroup [][]byte

// Params are the network's current suggested transaction parameters.
type Params struct {
	MinFee    uint64 `json:"min-fee"`
	LastRound uint64 `json:"last-round"`
	GenesisID string `json:"genesis-id"`
}

// NodeStatus reports the network's current round.
type NodeStatus struct {
	LastRound uint64 `json:"last-round"`
}

// PendingResult is the network's view of a submitted transaction.
// ConfirmedRound is zero while the transaction is still pending; PoolError
// is non-empty if the network dropped it.
type PendingResult struct {
	ConfirmedRound uint64 `json:"confirmed-round"`
	PoolError      string `json:"pool-error"`
}

// Confirmation is the terminal proof that a group committed.
type Confirmation struct {
	ProofReference string `json:"proofReference"`
	CommittedRound uint64 `json:"committedRound"`
}

// TipRecord is the persisted outcome of one confirmed tip. Records are
// append-only and never mutated after creation.
type TipRecord struct {
	ID              string    `json:"id"`
	Sender          Address   `json:"sender"`
	Recipient       Address   `json:"recipient"`
	GrossAmount     string    `json:"grossAmount"`
	MicroUnits      uint64    `json:"microUnits"`
	ProofReference  string    `json:"proofReference"`
	Note            string    `json:"note,omitempty"`
	PremiumUnlocked bool      `json:"premiumUnlocked"`
	CreatedAt       time.Time `json:"createdAt"`
}

// TipReceipt is returned to the caller of SendTip. ProofReference is set
// as soon as the broadcast is accepted, so it survives a confirmation
// timeout for later manual lookup.
type TipReceipt struct {
	ProofReference  string `json:"proofReference"`
	CommittedRound  uint64 `json:"committedRound"`
	PremiumUnlocked bool   `json:"premiumUnlocked"`
}
