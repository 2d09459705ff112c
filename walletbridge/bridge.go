// Package walletbridge delegates transaction-group signing to a
// user-controlled external wallet agent. The agent is opaque, possibly
// slow, and possibly permanently non-responding; the bridge models the
// round-trip as a suspending, cancellable call over an explicit session
// handle.
package walletbridge

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/creatorjar/creatorjar"
	"github.com/creatorjar/creatorjar/txngroup"
)

// Transport is the channel to the external wallet agent. Implementations
// wrap whatever the agent speaks (local socket, deep link relay, browser
// extension port).
type Transport interface {
	// Connect establishes the channel. Called again after a reset; must be
	// idempotent when already connected.
	Connect(ctx context.Context) error

	// Request sends one envelope and blocks until the agent responds or
	// ctx is cancelled.
	Request(ctx context.Context, payload []byte) ([]byte, error)

	// Close tears the channel down.
	Close() error
}

// signRequest is the envelope handed to the wallet agent. Transactions are
// canonically encoded and base64'd, in group order.
type signRequest struct {
	Type         string   `json:"type"`
	Signer       string   `json:"signer"`
	GroupID      string   `json:"groupId"`
	Transactions []string `json:"transactions"`
}

// signResponse is the agent's reply. SignedTransactions mirrors the
// request ordering exactly.
type signResponse struct {
	Status             string   `json:"status"`
	SignedTransactions []string `json:"signedTransactions"`
	Reason             string   `json:"reason"`
}

// responseSchema validates the agent's reply before any field is trusted;
// the agent lives outside this system's trust boundary.
const responseSchema = `{
	"type": "object",
	"required": ["status"],
	"properties": {
		"status": {"type": "string", "enum": ["approved", "rejected"]},
		"signedTransactions": {
			"type": "array",
			"items": {"type": "string"}
		},
		"reason": {"type": "string"}
	}
}`

var compiledResponseSchema *gojsonschema.Schema

func init() {
	var err error
	compiledResponseSchema, err = gojsonschema.NewSchema(gojsonschema.NewStringLoader(responseSchema))
	if err != nil {
		panic(fmt.Sprintf("walletbridge: response schema: %v", err))
	}
}

// Session is an explicit handle to one wallet connection. It may outlive a
// single signing call; reconnection is idempotent. Sessions are threaded
// through calls rather than held in package state.
type Session struct {
	mu        sync.Mutex
	transport Transport
	connected bool
}

// NewSession creates a session over the given transport. No connection is
// made until the first signing call.
func NewSession(transport Transport) *Session {
	return &Session{transport: transport}
}

// SignGroup asks the wallet agent to sign the group on behalf of signer.
// The call suspends until the agent responds; cancelling ctx abandons the
// wait and resets the session so a stale approval cannot later be replayed
// into a live session. Cancellation is cooperative: the agent itself may
// still complete its side.
func (s *Session) SignGroup(ctx context.Context, group *creatorjar.TransactionGroup, signer creatorjar.Address) (creatorjar.SignedGroup, error) {
	if err := s.ensureConnected(ctx); err != nil {
		return nil, connectionFailed("wallet agent unreachable", err)
	}

	payload, err := encodeRequest(group, signer)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sign request: %w", err)
	}

	type reply struct {
		body []byte
		err  error
	}
	replies := make(chan reply, 1)
	go func() {
		body, err := s.transport.Request(ctx, payload)
		replies <- reply{body, err}
	}()

	var body []byte
	select {
	case r := <-replies:
		if r.err != nil {
			s.reset()
			return nil, connectionFailed("wallet request failed", r.err)
		}
		body = r.body
	case <-ctx.Done():
		// Abandoned wait: drop the channel so a late approval lands on a
		// dead session instead of a live one.
		s.reset()
		return nil, ctx.Err()
	}

	return decodeResponse(body, len(group.Transactions))
}

// Close tears down the session. Safe to call on an unconnected session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return nil
	}
	s.connected = false
	return s.transport.Close()
}

func (s *Session) ensureConnected(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected {
		return nil
	}
	if err := s.transport.Connect(ctx); err != nil {
		return err
	}
	s.connected = true
	return nil
}

func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected {
		_ = s.transport.Close()
		s.connected = false
	}
}

func encodeRequest(group *creatorjar.TransactionGroup, signer creatorjar.Address) ([]byte, error) {
	txns := make([]string, len(group.Transactions))
	for i, txn := range group.Transactions {
		enc, err := txngroup.EncodeTransaction(txn)
		if err != nil {
			return nil, err
		}
		txns[i] = base64.StdEncoding.EncodeToString(enc)
	}

	return json.Marshal(signRequest{
		Type:         "sign-group",
		Signer:       string(signer),
		GroupID:      base64.StdEncoding.EncodeToString(group.ID),
		Transactions: txns,
	})
}

func decodeResponse(body []byte, want int) (creatorjar.SignedGroup, error) {
	result, err := compiledResponseSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil || !result.Valid() {
		return nil, connectionFailed("malformed wallet response", err)
	}

	var resp signResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, connectionFailed("malformed wallet response", err)
	}

	if resp.Status == "rejected" {
		msg := "signing declined by user"
		if resp.Reason != "" {
			msg = resp.Reason
		}
		return nil, creatorjar.NewTipError(creatorjar.ErrCodeUserRejected, msg, nil)
	}

	if len(resp.SignedTransactions) != want {
		return nil, connectionFailed(
			fmt.Sprintf("wallet returned %d signed transactions, want %d", len(resp.SignedTransactions), want),
			nil,
		)
	}

	signed := make(creatorjar.SignedGroup, want)
	for i, b64 := range resp.SignedTransactions {
		blob, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, connectionFailed("wallet returned undecodable payload", err)
		}
		signed[i] = blob
	}
	return signed, nil
}

func connectionFailed(message string, cause error) *creatorjar.TipError {
	return creatorjar.WrapTipError(creatorjar.ErrCodeConnectionFailed, message, cause)
}

var _ creatorjar.GroupSigner = (*Session)(nil)
