package rpc

import (
	"net/http"
	"testing"

	"github.com/ordforge/ordforge/internal/store"
)

func seedWebhookOrder(t *testing.T, st *store.Store) (*store.Order, *store.Ordinal) {
	t.Helper()
	order := &store.Order{
		ReceiveAddress: testReceiver,
		Quantity:       2,
		UpdateToken:    "hook-token",
		Frames: []store.Frame{
			{Name: "a.webp", Size: 20000, Type: "image/webp"},
			{Name: "b.webp", Size: 18000, Type: "image/webp"},
		},
	}
	if err := st.CreateOrder(order); err != nil {
		t.Fatalf("CreateOrder() error: %v", err)
	}
	ordinal := &store.Ordinal{
		OrderID:   order.ID,
		Stage:     store.StageImage,
		ServiceID: "svc-image",
	}
	if err := st.CreateOrdinal(ordinal); err != nil {
		t.Fatalf("CreateOrdinal() error: %v", err)
	}
	return order, ordinal
}

func webhookBody(serviceID, fileName, inscription string) map[string]interface{} {
	return map[string]interface{}{
		"id":    serviceID,
		"index": 0,
		"file":  map[string]interface{}{"name": fileName},
		"tx": map[string]interface{}{
			"inscription": inscription,
			"reveal":      "ignored",
		},
	}
}

func TestWebhook_RecordsInscription(t *testing.T) {
	s, st, _ := newTestServer(t)
	order, ordinal := seedWebhookOrder(t, st)

	rec, _ := do(t, s, http.MethodPost, "/webhook/hook-token",
		webhookBody("svc-image", "a.webp", "deadbeefi0"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	got, _ := st.GetOrder(order.ID)
	if got.Frames[0].Inscription != "deadbeefi0" {
		t.Errorf("frame inscription = %q, want deadbeefi0", got.Frames[0].Inscription)
	}
	if got.Frames[1].Inscription != "" {
		t.Error("wrong frame updated")
	}

	gotOrdinal, _ := st.GetOrdinal(ordinal.ID)
	if len(gotOrdinal.RevealTxIDs) != 1 || gotOrdinal.RevealTxIDs[0] != "deadbeef" {
		t.Errorf("reveal txids = %v, want [deadbeef]", gotOrdinal.RevealTxIDs)
	}
}

func TestWebhook_SecondFileAppendsReveal(t *testing.T) {
	s, st, _ := newTestServer(t)
	_, ordinal := seedWebhookOrder(t, st)

	do(t, s, http.MethodPost, "/webhook/hook-token", webhookBody("svc-image", "a.webp", "aaaai0"))
	do(t, s, http.MethodPost, "/webhook/hook-token", webhookBody("svc-image", "b.webp", "bbbbi1"))

	got, _ := st.GetOrdinal(ordinal.ID)
	if len(got.RevealTxIDs) != 2 {
		t.Fatalf("reveal txids = %v, want 2 entries", got.RevealTxIDs)
	}
	if got.RevealTxIDs[0] != "aaaa" || got.RevealTxIDs[1] != "bbbb" {
		t.Errorf("reveal txids = %v", got.RevealTxIDs)
	}
}

func TestWebhook_InvalidToken(t *testing.T) {
	s, st, _ := newTestServer(t)
	seedWebhookOrder(t, st)

	rec, _ := do(t, s, http.MethodPost, "/webhook/wrong-token",
		webhookBody("svc-image", "a.webp", "deadbeefi0"))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestWebhook_UnknownServiceOrder(t *testing.T) {
	s, st, _ := newTestServer(t)
	seedWebhookOrder(t, st)

	rec, _ := do(t, s, http.MethodPost, "/webhook/hook-token",
		webhookBody("svc-other", "a.webp", "deadbeefi0"))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestWebhook_DuplicateCallbackRejected(t *testing.T) {
	s, st, _ := newTestServer(t)
	_, ordinal := seedWebhookOrder(t, st)

	rec, _ := do(t, s, http.MethodPost, "/webhook/hook-token",
		webhookBody("svc-image", "a.webp", "deadbeefi0"))
	if rec.Code != http.StatusOK {
		t.Fatalf("first callback status = %d", rec.Code)
	}

	rec, _ = do(t, s, http.MethodPost, "/webhook/hook-token",
		webhookBody("svc-image", "a.webp", "deadbeefi0"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate callback status = %d, want 400", rec.Code)
	}

	got, _ := st.GetOrdinal(ordinal.ID)
	if len(got.RevealTxIDs) != 1 {
		t.Errorf("reveal txids = %v, want 1 entry", got.RevealTxIDs)
	}
}

func TestWebhook_HTMLStage(t *testing.T) {
	s, st, _ := newTestServer(t)
	order, _ := seedWebhookOrder(t, st)

	html := &store.Ordinal{
		OrderID:   order.ID,
		Stage:     store.StageHTML,
		ServiceID: "svc-html",
	}
	if err := st.CreateOrdinal(html); err != nil {
		t.Fatalf("CreateOrdinal() error: %v", err)
	}

	rec, _ := do(t, s, http.MethodPost, "/webhook/hook-token",
		webhookBody("svc-html", "1-1.html", "cccci0"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	got, _ := st.GetOrdinal(html.ID)
	if len(got.RevealTxIDs) != 1 || got.RevealTxIDs[0] != "cccc" {
		t.Errorf("reveal txids = %v", got.RevealTxIDs)
	}

	// Frames are untouched by HTML-stage callbacks.
	gotOrder, _ := st.GetOrder(order.ID)
	for _, frame := range gotOrder.Frames {
		if frame.Inscription != "" {
			t.Errorf("frame %s unexpectedly updated", frame.Name)
		}
	}
}

func TestWebhook_GetNotAllowed(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec, _ := do(t, s, http.MethodGet, "/webhook/hook-token", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
