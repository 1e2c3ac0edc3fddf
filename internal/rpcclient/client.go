// Package rpcclient provides an HTTP client for the ordforge API.
package rpcclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client is an HTTP client for an ordforged instance.
type Client struct {
	endpoint string
	http     *http.Client
}

// New creates a client targeting the given endpoint URL.
func New(endpoint string) *Client {
	return NewWithTimeout(endpoint, 10*time.Second)
}

// NewWithTimeout creates a client with a custom HTTP timeout.
func NewWithTimeout(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// response is the API's envelope shape.
type response struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Success bool            `json:"success"`
}

// APIError is returned when the server answers with a failure envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Order fetches one order by id. The result is left as raw JSON for the
// caller to print or decode.
func (c *Client) Order(id uint64) (json.RawMessage, error) {
	return c.get("/order?id=" + strconv.FormatUint(id, 10))
}

// Orders fetches every order for a receive address.
func (c *Client) Orders(address string) (json.RawMessage, error) {
	return c.get("/order?address=" + url.QueryEscape(address))
}

// Price quotes an order of the given image sizes, fee rate and quantity.
func (c *Client) Price(imageSizes []int64, feeRate int64, quantity int, rareSats string) (json.RawMessage, error) {
	q := url.Values{}
	for _, size := range imageSizes {
		q.Add("imageSizes", strconv.FormatInt(size, 10))
	}
	q.Set("fee", strconv.FormatInt(feeRate, 10))
	q.Set("count", strconv.Itoa(quantity))
	if rareSats != "" {
		q.Set("rareSats", rareSats)
	}
	return c.get("/price?" + q.Encode())
}

func (c *Client) get(path string) (json.RawMessage, error) {
	resp, err := c.http.Get(c.endpoint + path)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env response
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		return nil, &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	return env.Data, nil
}
