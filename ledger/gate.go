package ledger

import (
	"context"

	"github.com/creatorjar/creatorjar"
)

// Gate answers "has this tipper paid this creator enough to unlock gated
// content". Pure read over whatever the recorder has durably written; no
// caching layer.
type Gate struct {
	store Store
}

// NewGate creates a gate over the given store.
func NewGate(store Store) *Gate {
	return &Gate{store: store}
}

// HasAccess is true iff at least one recorded tip from tipper to creator
// has premiumUnlocked set.
func (g *Gate) HasAccess(ctx context.Context, tipper, creator creatorjar.Address) (bool, error) {
	records, err := g.store.Query(ctx, Filter{
		Sender:      tipper,
		Recipient:   creator,
		PremiumOnly: true,
		Limit:       1,
	})
	if err != nil {
		return false, err
	}
	return len(records) > 0, nil
}

var _ creatorjar.AccessGate = (*Gate)(nil)
