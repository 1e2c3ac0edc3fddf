package store

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusUnpaid                 Status = "UNPAID"
	StatusPaymentPending         Status = "PAYMENT_PENDING"
	StatusPaymentConfirmed       Status = "PAYMENT_CONFIRMED"
	StatusImageOrdinalsPending   Status = "IMAGE_ORDINALS_PENDING"
	StatusImageOrdinalsConfirmed Status = "IMAGE_ORDINALS_CONFIRMED"
	StatusHTMLOrdinalsPending    Status = "HTML_ORDINALS_PENDING"
	StatusReady                  Status = "READY"
)

// statusRank orders the lifecycle. Transitions only move forward.
var statusRank = map[Status]int{
	StatusUnpaid:                 0,
	StatusPaymentPending:         1,
	StatusPaymentConfirmed:       2,
	StatusImageOrdinalsPending:   3,
	StatusImageOrdinalsConfirmed: 4,
	StatusHTMLOrdinalsPending:    5,
	StatusReady:                  6,
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanAdvanceTo reports whether moving from s to next is a forward
// transition. Equal states and regressions are rejected.
func (s Status) CanAdvanceTo(next Status) bool {
	a, ok := statusRank[s]
	if !ok {
		return false
	}
	b, ok := statusRank[next]
	if !ok {
		return false
	}
	return b > a
}

// OrdinalStage distinguishes the per-frame image inscriptions from the
// assembled animation HTML inscriptions.
type OrdinalStage string

const (
	StageImage OrdinalStage = "image"
	StageHTML  OrdinalStage = "html"
)

// TxState tracks a forwarded or reveal transaction.
type TxState string

const (
	TxPending   TxState = "PENDING"
	TxConfirmed TxState = "CONFIRMED"
)

// Frame is one uploaded animation frame.
type Frame struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
	Hash     string `json:"hash"`
	Duration int    `json:"duration"`
	// Inscription is the frame's inscription id once its reveal
	// transaction is known, e.g. "<txid>i0".
	Inscription string `json:"inscription,omitempty"`
}

// Order is a customer order. The ID doubles as the HD derivation index of
// the order's payment address; the address itself is never stored, only
// recomputed from the ID.
type Order struct {
	ID             uint64  `json:"id"`
	Status         Status  `json:"status"`
	ReceiveAddress string  `json:"receiveAddress"`
	Quantity       int     `json:"quantity"`
	FeeRate        int64   `json:"feeRate"`
	RareSats       string  `json:"rareSats"`
	TotalPrice     int64   `json:"totalPrice"`
	Frames         []Frame `json:"frames"`

	// UpdateToken names the webhook endpoint the inscription service
	// calls back on for this order.
	UpdateToken string `json:"updateToken"`

	// PaymentTxID is the customer's funding transaction, recorded when
	// first seen in the mempool.
	PaymentTxID string `json:"paymentTxId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Ordinal is one inscription order placed with the inscription service on
// behalf of an Order. Each stage has exactly one: the image stage covers
// every frame in a single service order, the HTML stage covers every
// purchased copy in a single service order.
type Ordinal struct {
	ID      uint64       `json:"id"`
	OrderID uint64       `json:"orderId"`
	Stage   OrdinalStage `json:"stage"`

	// ServiceID is the inscription service's id for this order.
	ServiceID     string `json:"serviceId"`
	ChargeAddress string `json:"chargeAddress"`
	ChargeAmount  int64  `json:"chargeAmount"`

	// ForwardTxID is our transaction paying the charge address.
	ForwardTxID string  `json:"forwardTxId,omitempty"`
	ForwardTx   TxState `json:"forwardTx,omitempty"`

	// RevealTxIDs are the reveal transactions reported by the service's
	// webhook, one per inscribed file.
	RevealTxIDs []string `json:"revealTxIds,omitempty"`
	RevealTx    TxState  `json:"revealTx,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ErrOrderNotFound is returned when an order id has no record.
var ErrOrderNotFound = fmt.Errorf("order not found")

// ErrOrdinalNotFound is returned when an ordinal id has no record.
var ErrOrdinalNotFound = fmt.Errorf("ordinal not found")
