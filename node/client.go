// Package node implements the HTTP client for the network's REST API:
// suggested parameters, group broadcast, round status, and pending-info
// lookups.
package node

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/creatorjar/creatorjar"
)

// Config configures the node client.
type Config struct {
	// URL is the base URL of the node's REST API.
	URL string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *http.Client

	// Timeout for requests (optional, defaults to 30s). Ignored when a
	// custom HTTPClient is supplied.
	Timeout time.Duration

	// APIToken is sent as the X-Node-API-Token header when non-empty.
	APIToken string
}

// paramsRetries is the number of attempts for the suggested-params fetch
// on 429/5xx responses.
const paramsRetries = 3

// paramsRetryBaseDelay is the base delay for exponential backoff between
// retries.
const paramsRetryBaseDelay = 500 * time.Millisecond

const tokenHeader = "X-Node-API-Token"

// Client talks to a node over HTTP. It implements creatorjar.NodeClient.
type Client struct {
	url        string
	httpClient *http.Client
	apiToken   string
}

// New creates a node client.
func New(config *Config) *Client {
	if config == nil {
		config = &Config{}
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{
			Timeout: timeout,
		}
	}

	return &Client{
		url:        config.URL,
		httpClient: httpClient,
		apiToken:   config.APIToken,
	}
}

// SuggestedParams fetches current transaction parameters. Retries with
// exponential backoff on 429 and 5xx responses; transport failures and
// exhausted retries surface as network_unavailable.
func (c *Client) SuggestedParams(ctx context.Context) (creatorjar.Params, error) {
	var lastErr error

	for attempt := range paramsRetries {
		body, status, err := c.get(ctx, "/v2/transactions/params")
		if err != nil {
			return creatorjar.Params{}, unavailable("params request failed", err)
		}

		if status == http.StatusOK {
			var params creatorjar.Params
			if err := json.Unmarshal(body, &params); err != nil {
				return creatorjar.Params{}, unavailable("failed to decode params response", err)
			}
			return params, nil
		}

		lastErr = fmt.Errorf("node params failed (%d): %s", status, string(body))

		if (status == http.StatusTooManyRequests || status >= 500) && attempt < paramsRetries-1 {
			delay := paramsRetryBaseDelay * time.Duration(1<<uint(attempt))
			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return creatorjar.Params{}, ctx.Err()
			}
		}

		return creatorjar.Params{}, unavailable("node refused params request", lastErr)
	}

	return creatorjar.Params{}, unavailable("node refused params request", lastErr)
}

// BroadcastGroup submits the concatenated signed payloads as a single
// call. A 400-level refusal means the network rejected the group as a
// whole and surfaces as submission_rejected.
func (c *Client) BroadcastGroup(ctx context.Context, signed creatorjar.SignedGroup) (string, error) {
	var payload bytes.Buffer
	for _, blob := range signed {
		payload.Write(blob)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url+"/v2/transactions", &payload)
	if err != nil {
		return "", fmt.Errorf("failed to create broadcast request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-binary")
	c.auth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", unavailable("broadcast request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", unavailable("failed to read broadcast response", err)
	}

	if resp.StatusCode != http.StatusOK {
		var refusal struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &refusal)
		if refusal.Message == "" {
			refusal.Message = string(body)
		}
		if resp.StatusCode >= 500 {
			return "", unavailable(fmt.Sprintf("node broadcast failed (%d)", resp.StatusCode), fmt.Errorf("%s", refusal.Message))
		}
		return "", creatorjar.NewTipError(
			creatorjar.ErrCodeSubmissionRejected,
			fmt.Sprintf("network refused the group: %s", refusal.Message),
			map[string]interface{}{"status": resp.StatusCode},
		)
	}

	var accepted struct {
		TxID string `json:"txId"`
	}
	if err := json.Unmarshal(body, &accepted); err != nil {
		return "", unavailable("failed to decode broadcast response", err)
	}
	return accepted.TxID, nil
}

// Status reports the network's current round.
func (c *Client) Status(ctx context.Context) (creatorjar.NodeStatus, error) {
	return c.status(ctx, "/v2/status")
}

// WaitForRoundAfter blocks server-side until the network advances past the
// given round.
func (c *Client) WaitForRoundAfter(ctx context.Context, round uint64) (creatorjar.NodeStatus, error) {
	return c.status(ctx, fmt.Sprintf("/v2/status/wait-for-block-after/%d", round))
}

// PendingInfo looks up a submitted transaction by proof reference.
func (c *Client) PendingInfo(ctx context.Context, proofReference string) (creatorjar.PendingResult, error) {
	body, status, err := c.get(ctx, "/v2/transactions/pending/"+proofReference)
	if err != nil {
		return creatorjar.PendingResult{}, unavailable("pending-info request failed", err)
	}
	if status != http.StatusOK {
		return creatorjar.PendingResult{}, unavailable(fmt.Sprintf("node pending-info failed (%d)", status), fmt.Errorf("%s", string(body)))
	}

	var pending creatorjar.PendingResult
	if err := json.Unmarshal(body, &pending); err != nil {
		return creatorjar.PendingResult{}, unavailable("failed to decode pending-info response", err)
	}
	return pending, nil
}

func (c *Client) status(ctx context.Context, path string) (creatorjar.NodeStatus, error) {
	body, status, err := c.get(ctx, path)
	if err != nil {
		return creatorjar.NodeStatus{}, unavailable("status request failed", err)
	}
	if status != http.StatusOK {
		return creatorjar.NodeStatus{}, unavailable(fmt.Sprintf("node status failed (%d)", status), fmt.Errorf("%s", string(body)))
	}

	var st creatorjar.NodeStatus
	if err := json.Unmarshal(body, &st); err != nil {
		return creatorjar.NodeStatus{}, unavailable("failed to decode status response", err)
	}
	return st, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.url+path, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	c.auth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

func (c *Client) auth(req *http.Request) {
	if c.apiToken != "" {
		req.Header.Set(tokenHeader, c.apiToken)
	}
}

func unavailable(message string, cause error) *creatorjar.TipError {
	return creatorjar.WrapTipError(creatorjar.ErrCodeNetworkUnavailable, message, cause)
}

var _ creatorjar.NodeClient = (*Client)(nil)
