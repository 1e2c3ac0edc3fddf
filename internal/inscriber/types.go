package inscriber

import (
	"encoding/json"
	"fmt"
)

// Rarity options accepted by the inscription service for rare-sat
// selection.
var AvailableRarity = []string{
	"2009", "2010", "2011", "block9", "block78",
	"pizza", "uncommon", "black", "vintage", "random",
}

// ValidRarity reports whether r is an accepted rare-sat option.
func ValidRarity(r string) bool {
	for _, v := range AvailableRarity {
		if v == r {
			return true
		}
	}
	return false
}

// File describes one file to inscribe.
type File struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
	DataURL  string `json:"dataURL,omitempty"`
	URL      string `json:"url,omitempty"`
	Duration int64  `json:"duration"`
}

// Charge is the payment request attached to an accepted inscription order:
// the address and satoshi amount this service must forward.
type Charge struct {
	ID        string `json:"id"`
	Address   string `json:"address"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

// Order is an accepted inscription order.
type Order struct {
	ID             string `json:"id"`
	Charge         Charge `json:"charge"`
	ChainFee       int64  `json:"chainFee"`
	ServiceFee     int64  `json:"serviceFee"`
	Fee            int64  `json:"fee"`
	BaseFee        int64  `json:"baseFee"`
	RareSats       string `json:"rareSats"`
	ReceiveAddress string `json:"receiveAddress"`
	WebhookURL     string `json:"webhookUrl"`
	OrderType      string `json:"orderType"`
	State          string `json:"state"`
}

// Price is a quote for inscribing one file.
type Price struct {
	ChainFee      int64 `json:"chainFee"`
	ServiceFee    int64 `json:"serviceFee"`
	BaseFee       int64 `json:"baseFee"`
	RareSatsFee   int64 `json:"rareSatsFee"`
	AdditionalFee int64 `json:"additionalFee"`
	Postage       int64 `json:"postage"`
	Amount        int64 `json:"amount"`
	TotalFee      int64 `json:"totalFee"`
}

// WebhookPayload is the callback the inscription service posts when a file
// has been inscribed.
type WebhookPayload struct {
	ID    string `json:"id"`
	Index int    `json:"index"`
	File  struct {
		Name string `json:"name"`
	} `json:"file"`
	Tx struct {
		Satpoint    string `json:"satpoint"`
		Commit      string `json:"commit"`
		Reveal      string `json:"reveal"`
		Inscription string `json:"inscription"`
		Fees        int64  `json:"fees"`
	} `json:"tx"`
}

// ServiceError is an error payload from the inscription service
// (status "error" with either an error or a reason field).
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return "inscription service: " + e.Message
}

// envelope carries the status discriminant shared by success and error
// payloads.
type envelope struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

// decodeResponse decodes the service's two-variant response shape: an
// error envelope becomes a *ServiceError, anything else unmarshals into
// out.
func decodeResponse(body []byte, out interface{}) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if env.Status == "error" {
		msg := env.Error
		if msg == "" {
			msg = env.Reason
		}
		if msg == "" {
			msg = "unknown error"
		}
		return &ServiceError{Message: msg}
	}
	return json.Unmarshal(body, out)
}
