// Package mempool provides a read adapter to an esplora-style ledger
// explorer API (UTXOs, transaction status, fee estimates) plus transaction
// broadcast. No caching: every call re-fetches current chain state.
package mempool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIError is returned when the explorer is unreachable or responds with a
// non-success status. Always retryable on the next reconciliation pass.
type APIError struct {
	Op     string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("mempool %s: %s", e.Op, e.Body)
	}
	return fmt.Sprintf("mempool %s: status %d: %s", e.Op, e.Status, e.Body)
}

// Client is an esplora-style HTTP API client.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client targeting the given API base URL (no trailing slash).
func New(baseURL string) *Client {
	return NewWithTimeout(baseURL, 10*time.Second)
}

// NewWithTimeout creates a client with a custom HTTP timeout.
func NewWithTimeout(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// AddressUTXOs fetches the unspent outputs at an address.
func (c *Client) AddressUTXOs(ctx context.Context, address string) ([]UTXO, error) {
	var utxos []UTXO
	if err := c.getJSON(ctx, "address utxos", "/address/"+address+"/utxo", &utxos); err != nil {
		return nil, err
	}
	return utxos, nil
}

// Tx fetches a transaction's confirmation status by txid.
func (c *Client) Tx(ctx context.Context, txid string) (*Tx, error) {
	var tx Tx
	if err := c.getJSON(ctx, "tx", "/tx/"+txid, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// RecommendedFees fetches the explorer's current fee-rate guidance.
func (c *Client) RecommendedFees(ctx context.Context) (*RecommendedFees, error) {
	var fees RecommendedFees
	if err := c.getJSON(ctx, "recommended fees", "/v1/fees/recommended", &fees); err != nil {
		return nil, err
	}
	return &fees, nil
}

// RecommendedFeeRate returns the rate used for outbound forwarding
// (the fastest-confirmation tier).
func (c *Client) RecommendedFeeRate(ctx context.Context) (float64, error) {
	fees, err := c.RecommendedFees(ctx)
	if err != nil {
		return 0, err
	}
	return fees.FastestFee, nil
}

// Broadcast submits a raw transaction in hex and returns the txid assigned
// by the network.
func (c *Client) Broadcast(ctx context.Context, rawHex string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tx", strings.NewReader(rawHex))
	if err != nil {
		return "", &APIError{Op: "broadcast", Body: err.Error()}
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &APIError{Op: "broadcast", Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &APIError{Op: "broadcast", Body: err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Op: "broadcast", Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return strings.TrimSpace(string(body)), nil
}

// getJSON performs a GET and decodes a JSON response body.
func (c *Client) getJSON(ctx context.Context, op, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &APIError{Op: op, Body: err.Error()}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Op: op, Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Op: op, Body: err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{Op: op, Body: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}
