package walletbridge

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatorjar/creatorjar"
)

// fakeTransport replies from a canned body, or blocks until cancelled when
// block is set.
type fakeTransport struct {
	connectErr error
	requestErr error
	response   []byte
	block      bool

	connects    int
	closes      int
	lastPayload []byte
}

func (t *fakeTransport) Connect(ctx context.Context) error {
	t.connects++
	return t.connectErr
}

func (t *fakeTransport) Request(ctx context.Context, payload []byte) ([]byte, error) {
	t.lastPayload = payload
	if t.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if t.requestErr != nil {
		return nil, t.requestErr
	}
	return t.response, nil
}

func (t *fakeTransport) Close() error {
	t.closes++
	return nil
}

func testGroup() *creatorjar.TransactionGroup {
	group := &creatorjar.TransactionGroup{
		Transactions: [2]creatorjar.Transaction{
			{Sender: "SENDER", Receiver: "CREATOR", Amount: 9_800_000, Note: "tip"},
			{Sender: "SENDER", Receiver: "PLATFORM", Amount: 200_000, Note: "platform fee"},
		},
		ID: []byte("group-id"),
	}
	group.Transactions[0].Group = group.ID
	group.Transactions[1].Group = group.ID
	return group
}

func approvedBody(t *testing.T, blobs ...[]byte) []byte {
	t.Helper()
	encoded := make([]string, len(blobs))
	for i, blob := range blobs {
		encoded[i] = base64.StdEncoding.EncodeToString(blob)
	}
	body, err := json.Marshal(map[string]any{
		"status":             "approved",
		"signedTransactions": encoded,
	})
	require.NoError(t, err)
	return body
}

func TestSignGroup_Approved(t *testing.T) {
	transport := &fakeTransport{
		response: approvedBody(t, []byte("signed-0"), []byte("signed-1")),
	}
	session := NewSession(transport)

	signed, err := session.SignGroup(context.Background(), testGroup(), "SENDER")
	require.NoError(t, err)
	require.Len(t, signed, 2)
	assert.Equal(t, []byte("signed-0"), signed[0])
	assert.Equal(t, []byte("signed-1"), signed[1])

	// The request envelope carries the group in order with its ID.
	var req signRequest
	require.NoError(t, json.Unmarshal(transport.lastPayload, &req))
	assert.Equal(t, "sign-group", req.Type)
	assert.Equal(t, "SENDER", req.Signer)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("group-id")), req.GroupID)
	assert.Len(t, req.Transactions, 2)
}

func TestSignGroup_Rejected(t *testing.T) {
	body, err := json.Marshal(map[string]any{"status": "rejected", "reason": "user declined in wallet"})
	require.NoError(t, err)
	session := NewSession(&fakeTransport{response: body})

	_, err = session.SignGroup(context.Background(), testGroup(), "SENDER")
	require.Error(t, err)
	assert.Equal(t, creatorjar.ErrCodeUserRejected, creatorjar.CodeOf(err))
	assert.Contains(t, err.Error(), "user declined in wallet")
}

func TestSignGroup_ConnectFailure(t *testing.T) {
	session := NewSession(&fakeTransport{connectErr: errors.New("no wallet listening")})

	_, err := session.SignGroup(context.Background(), testGroup(), "SENDER")
	require.Error(t, err)
	assert.Equal(t, creatorjar.ErrCodeConnectionFailed, creatorjar.CodeOf(err))
}

func TestSignGroup_RequestFailureResetsSession(t *testing.T) {
	transport := &fakeTransport{requestErr: errors.New("pipe broke")}
	session := NewSession(transport)

	_, err := session.SignGroup(context.Background(), testGroup(), "SENDER")
	require.Error(t, err)
	assert.Equal(t, creatorjar.ErrCodeConnectionFailed, creatorjar.CodeOf(err))
	assert.Equal(t, 1, transport.closes)

	// The next call reconnects from scratch.
	transport.requestErr = nil
	transport.response = approvedBody(t, []byte("a"), []byte("b"))
	_, err = session.SignGroup(context.Background(), testGroup(), "SENDER")
	require.NoError(t, err)
	assert.Equal(t, 2, transport.connects)
}

func TestSignGroup_CancelResetsSession(t *testing.T) {
	transport := &fakeTransport{block: true}
	session := NewSession(transport)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := session.SignGroup(ctx, testGroup(), "SENDER")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// The channel is torn down so a late approval cannot land on a live
	// session.
	assert.Eventually(t, func() bool {
		session.mu.Lock()
		defer session.mu.Unlock()
		return !session.connected
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, transport.closes)
}

func TestSignGroup_CountMismatch(t *testing.T) {
	session := NewSession(&fakeTransport{
		response: approvedBody(t, []byte("only-one")),
	})

	_, err := session.SignGroup(context.Background(), testGroup(), "SENDER")
	require.Error(t, err)
	assert.Equal(t, creatorjar.ErrCodeConnectionFailed, creatorjar.CodeOf(err))
}

func TestSignGroup_MalformedResponses(t *testing.T) {
	for name, body := range map[string]string{
		"not json":       `not json at all`,
		"missing status": `{"signedTransactions": []}`,
		"bad status":     `{"status": "maybe"}`,
		"bad base64":     `{"status": "approved", "signedTransactions": ["!!!", "???"]}`,
	} {
		t.Run(name, func(t *testing.T) {
			session := NewSession(&fakeTransport{response: []byte(body)})
			_, err := session.SignGroup(context.Background(), testGroup(), "SENDER")
			require.Error(t, err)
			assert.Equal(t, creatorjar.ErrCodeConnectionFailed, creatorjar.CodeOf(err))
		})
	}
}

func TestSession_CloseIdempotent(t *testing.T) {
	transport := &fakeTransport{response: approvedBody(t, []byte("a"), []byte("b"))}
	session := NewSession(transport)

	require.NoError(t, session.Close()) // never connected

	_, err := session.SignGroup(context.Background(), testGroup(), "SENDER")
	require.NoError(t, err)

	require.NoError(t, session.Close())
	require.NoError(t, session.Close())
	assert.Equal(t, 1, transport.closes)
}
