package inscriber

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDecodeResponse_Success(t *testing.T) {
	body := []byte(`{"status":"ok","id":"abc","charge":{"address":"tb1qx","amount":62412}}`)

	var order Order
	if err := decodeResponse(body, &order); err != nil {
		t.Fatalf("decodeResponse() error: %v", err)
	}
	if order.ID != "abc" {
		t.Errorf("id = %s, want abc", order.ID)
	}
	if order.Charge.Address != "tb1qx" || order.Charge.Amount != 62412 {
		t.Errorf("charge = %+v", order.Charge)
	}
}

func TestDecodeResponse_ErrorVariants(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"status":"error","error":"size too large"}`, "size too large"},
		{"reason field", `{"status":"error","reason":"fee too low"}`, "fee too low"},
		{"no detail", `{"status":"error"}`, "unknown error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var order Order
			err := decodeResponse([]byte(tt.body), &order)

			var svcErr *ServiceError
			if !errors.As(err, &svcErr) {
				t.Fatalf("error = %v, want *ServiceError", err)
			}
			if svcErr.Message != tt.want {
				t.Errorf("message = %q, want %q", svcErr.Message, tt.want)
			}
		})
	}
}

func TestCreateOrder_WebhookURL(t *testing.T) {
	var got CreateOrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/order" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "ok",
			"id":     "svc-1",
			"charge": map[string]interface{}{"address": "tb1qc", "amount": 1000},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "https://pay.example.com", time.Second)
	files := []File{{Name: "a.webp", Size: 100, Type: "image/webp", DataURL: "data:;base64,AA=="}}

	order, err := c.CreateOrder(context.Background(), files, "tb1qreceive", 10, "random", "tok-123")
	if err != nil {
		t.Fatalf("CreateOrder() error: %v", err)
	}
	if order.ID != "svc-1" {
		t.Errorf("id = %s, want svc-1", order.ID)
	}
	if got.WebhookURL != "https://pay.example.com/webhook/tok-123" {
		t.Errorf("webhook url = %s", got.WebhookURL)
	}
	if !got.LowPostage {
		t.Error("lowPostage not set")
	}
	if got.Fee != 10 || got.ReceiveAddress != "tb1qreceive" || got.RareSats != "random" {
		t.Errorf("request = %+v", got)
	}
}

func TestOrder_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": "order not found"})
	}))
	defer srv.Close()

	c := New(srv.URL, "https://pay.example.com", time.Second)
	_, err := c.Order(context.Background(), "missing")

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("error = %v, want *ServiceError", err)
	}
	if svcErr.Message != "order not found" {
		t.Errorf("message = %q", svcErr.Message)
	}
}

func TestOrder_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "https://pay.example.com", time.Second)
	_, err := c.Order(context.Background(), "x")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", apiErr.Status)
	}
}

func TestPrice_Query(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("size") != "20000" || q.Get("fee") != "10" || q.Get("count") != "1" || q.Get("rareSats") != "random" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "ok", "totalFee": 54000})
	}))
	defer srv.Close()

	c := New(srv.URL, "https://pay.example.com", time.Second)
	price, err := c.Price(context.Background(), 20000, 10, 1, "random")
	if err != nil {
		t.Fatalf("Price() error: %v", err)
	}
	if price.TotalFee != 54000 {
		t.Errorf("totalFee = %d, want 54000", price.TotalFee)
	}
}

// QuoteOrder prices every image once and the HTML quantity times, plus
// the flat referral fee.
func TestQuoteOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		size := r.URL.Query().Get("size")
		var total int64
		switch size {
		case "20000":
			total = 50000
		case "18000":
			total = 45000
		default: // the HTML file
			total = 30000
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "ok", "totalFee": total})
	}))
	defer srv.Close()

	c := New(srv.URL, "https://pay.example.com", time.Second)
	quote, err := c.QuoteOrder(context.Background(), []int64{20000, 18000}, 2500, 10, 3, "random", 2000)
	if err != nil {
		t.Fatalf("QuoteOrder() error: %v", err)
	}

	if quote.ImagesTotal != 95000 {
		t.Errorf("imagesTotal = %d, want 95000", quote.ImagesTotal)
	}
	if quote.HTMLPrice != 30000 {
		t.Errorf("htmlPrice = %d, want 30000", quote.HTMLPrice)
	}
	wantTotal := int64(2000 + 95000 + 30000*3)
	if quote.Total != wantTotal {
		t.Errorf("total = %d, want %d", quote.Total, wantTotal)
	}
	if quote.HTMLSize != 2500 {
		t.Errorf("htmlSize = %d, want 2500", quote.HTMLSize)
	}
}
