// Package inscriber is the client for the third-party inscription-ordering
// service. The only contract the payment subsystem relies on is that an
// accepted order carries a charge address and satoshi amount to forward.
package inscriber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIError is a transport-level failure talking to the inscription
// service. Retryable on the next reconciliation pass.
type APIError struct {
	Op     string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("inscriber %s: %s", e.Op, e.Body)
	}
	return fmt.Sprintf("inscriber %s: status %d: %s", e.Op, e.Status, e.Body)
}

// Client is the inscription service HTTP client.
type Client struct {
	baseURL     string
	webhookBase string
	http        *http.Client
}

// New creates a client for the given API base URL. webhookBase is this
// service's public base URL; the per-order update token is appended to it
// to form the webhook callback address.
func New(baseURL, webhookBase string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		webhookBase: strings.TrimSuffix(webhookBase, "/"),
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// CreateOrderRequest is the payload for placing an inscription order.
type CreateOrderRequest struct {
	Files          []File `json:"files"`
	ReceiveAddress string `json:"receiveAddress"`
	Fee            int64  `json:"fee"`
	RareSats       string `json:"rareSats"`
	LowPostage     bool   `json:"lowPostage"`
	WebhookURL     string `json:"webhookUrl"`
}

// CreateOrder places an inscription order for the given files. The
// updateToken names the webhook endpoint the service will call back on.
func (c *Client) CreateOrder(ctx context.Context, files []File, receiveAddress string, feeRate int64, rareSats, updateToken string) (*Order, error) {
	req := CreateOrderRequest{
		Files:          files,
		ReceiveAddress: receiveAddress,
		Fee:            feeRate,
		RareSats:       rareSats,
		LowPostage:     true,
		WebhookURL:     c.webhookBase + "/webhook/" + updateToken,
	}

	body, err := json.Marshal(&req)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	var order Order
	if err := c.do(ctx, "create order", http.MethodPost, "/order", body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Order fetches an inscription order by its service-assigned id.
func (c *Client) Order(ctx context.Context, id string) (*Order, error) {
	var order Order
	path := "/order?id=" + url.QueryEscape(id)
	if err := c.do(ctx, "get order", http.MethodGet, path, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Price quotes the inscription cost for one file of the given size.
func (c *Client) Price(ctx context.Context, size, feeRate int64, count int, rareSats string) (*Price, error) {
	q := url.Values{}
	q.Set("size", strconv.FormatInt(size, 10))
	q.Set("fee", strconv.FormatInt(feeRate, 10))
	q.Set("count", strconv.Itoa(count))
	q.Set("rareSats", rareSats)

	var price Price
	if err := c.do(ctx, "price", http.MethodGet, "/price?"+q.Encode(), nil, &price); err != nil {
		return nil, err
	}
	return &price, nil
}

// do performs one HTTP exchange and decodes the two-variant response.
func (c *Client) do(ctx context.Context, op, method, path string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &APIError{Op: op, Body: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Op: op, Body: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Op: op, Body: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 500 {
		return &APIError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if err := decodeResponse(data, out); err != nil {
		var svcErr *ServiceError
		if errors.As(err, &svcErr) {
			return err
		}
		return &APIError{Op: op, Body: err.Error()}
	}
	return nil
}
