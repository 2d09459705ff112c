// Package chain is an in-memory network simulator for integration tests.
// It accepts broadcast groups, advances rounds on demand, and confirms
// pending groups a fixed number of rounds after submission.
package chain

import (
	"context"
	"fmt"
	"sync"

	"github.com/creatorjar/creatorjar"
)

// Node simulates the network's REST surface in memory. It implements
// creatorjar.NodeClient.
type Node struct {
	mu           sync.Mutex
	round        uint64
	minFee       uint64
	confirmAfter uint64
	pending      map[string]uint64
	seq          int

	// RejectNext makes the next broadcast fail with the given pool error.
	rejectNext string
}

// NewNode creates a simulator starting at the given round. Groups confirm
// confirmAfter rounds after broadcast.
func NewNode(startRound, confirmAfter uint64) *Node {
	return &Node{
		round:        startRound,
		minFee:       1000,
		confirmAfter: confirmAfter,
		pending:      make(map[string]uint64),
	}
}

// RejectNextBroadcast queues a pool error for the next submitted group.
func (n *Node) RejectNextBroadcast(reason string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rejectNext = reason
}

func (n *Node) SuggestedParams(ctx context.Context) (creatorjar.Params, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return creatorjar.Params{
		MinFee:    n.minFee,
		LastRound: n.round,
		GenesisID: "simnet-v1",
	}, nil
}

func (n *Node) BroadcastGroup(ctx context.Context, signed creatorjar.SignedGroup) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.rejectNext != "" {
		reason := n.rejectNext
		n.rejectNext = ""
		return "", creatorjar.NewTipError(
			creatorjar.ErrCodeSubmissionRejected,
			fmt.Sprintf("network refused the group: %s", reason),
			nil,
		)
	}

	n.seq++
	ref := fmt.Sprintf("SIM%d", n.seq)
	n.pending[ref] = n.round + n.confirmAfter
	return ref, nil
}

func (n *Node) Status(ctx context.Context) (creatorjar.NodeStatus, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return creatorjar.NodeStatus{LastRound: n.round}, nil
}

func (n *Node) WaitForRoundAfter(ctx context.Context, round uint64) (creatorjar.NodeStatus, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.round <= round {
		n.round = round + 1
	}
	return creatorjar.NodeStatus{LastRound: n.round}, nil
}

func (n *Node) PendingInfo(ctx context.Context, proofReference string) (creatorjar.PendingResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	confirmAt, ok := n.pending[proofReference]
	if !ok {
		return creatorjar.PendingResult{PoolError: "unknown transaction"}, nil
	}
	if n.round >= confirmAt {
		return creatorjar.PendingResult{ConfirmedRound: confirmAt}, nil
	}
	return creatorjar.PendingResult{}, nil
}

var _ creatorjar.NodeClient = (*Node)(nil)
