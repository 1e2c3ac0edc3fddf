package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ordforge/ordforge/internal/gifhtml"
	"github.com/ordforge/ordforge/internal/inscriber"
	"github.com/ordforge/ordforge/internal/spend"
	"github.com/ordforge/ordforge/internal/store"
)

// orderFile is one uploaded frame in an order-creation request.
type orderFile struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	DataURL  string `json:"dataURL"`
	Duration int    `json:"duration"`
	Type     string `json:"type"`
}

type createOrderRequest struct {
	Files           []orderFile `json:"files"`
	Rarity          string      `json:"rarity"`
	ReceiverAddress string      `json:"receiverAddress"`
	Quantity        int         `json:"quantity"`
	FeeRate         int64       `json:"feeRate"`
}

// paymentDetails is the derived address and amount the customer pays to.
type paymentDetails struct {
	Address string `json:"address"`
	Amount  int64  `json:"amount"`
}

type orderView struct {
	ID             uint64          `json:"id"`
	Status         store.Status    `json:"status"`
	ReceiveAddress string          `json:"receiver_address"`
	Quantity       int             `json:"quantity"`
	TotalPrice     int64           `json:"total_fee"`
	PaymentTxID    string          `json:"payment_tx_id,omitempty"`
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at"`
	PaymentDetails *paymentDetails `json:"payment_details,omitempty"`
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createOrder(w, r)
	case http.MethodGet:
		s.getOrders(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validateCreate(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Rename uploads so the service-side file names never collide; the
	// webhook matches callbacks back to frames by these names.
	files := make([]inscriber.File, len(req.Files))
	frames := make([]store.Frame, len(req.Files))
	imageSizes := make([]int64, len(req.Files))
	for i, f := range req.Files {
		ext := f.Name
		if idx := strings.LastIndex(f.Name, "."); idx >= 0 {
			ext = f.Name[idx+1:]
		}
		name := uuid.NewString() + "." + ext
		files[i] = inscriber.File{
			Name:     name,
			Size:     f.Size,
			Type:     f.Type,
			DataURL:  f.DataURL,
			Duration: int64(f.Duration),
		}
		frames[i] = store.Frame{
			Name:     name,
			Size:     f.Size,
			Type:     f.Type,
			Hash:     gifhtml.HashFile(f.DataURL),
			Duration: f.Duration,
		}
		imageSizes[i] = f.Size
	}

	quote, err := s.svc.QuoteOrder(r.Context(), imageSizes, gifhtml.EstimateSize(len(files)),
		req.FeeRate, req.Quantity, req.Rarity, s.referralFee)
	if err != nil {
		s.serviceError(w, err, "price order")
		return
	}

	token := uuid.NewString()
	svcOrder, err := s.svc.CreateOrder(r.Context(), files, req.ReceiverAddress, req.FeeRate, req.Rarity, token)
	if err != nil {
		s.serviceError(w, err, "place inscription order")
		return
	}

	order := &store.Order{
		ReceiveAddress: req.ReceiverAddress,
		Quantity:       req.Quantity,
		FeeRate:        req.FeeRate,
		RareSats:       req.Rarity,
		TotalPrice:     quote.Total,
		Frames:         frames,
		UpdateToken:    token,
	}
	if err := s.store.CreateOrder(order); err != nil {
		s.logger.Error().Err(err).Msg("Persist order failed")
		s.writeError(w, http.StatusInternalServerError, "could not save order")
		return
	}
	if err := s.store.CreateOrdinal(&store.Ordinal{
		OrderID:       order.ID,
		Stage:         store.StageImage,
		ServiceID:     svcOrder.ID,
		ChargeAddress: svcOrder.Charge.Address,
		ChargeAmount:  svcOrder.Charge.Amount,
	}); err != nil {
		s.logger.Error().Err(err).Msg("Persist ordinal failed")
		s.writeError(w, http.StatusInternalServerError, "could not save order")
		return
	}

	address, err := s.keys.OrderAddress(int64(order.ID))
	if err != nil {
		s.logger.Error().Err(err).Uint64("order", order.ID).Msg("Derive payment address failed")
		s.writeError(w, http.StatusInternalServerError, "could not derive payment address")
		return
	}

	s.logger.Info().Uint64("order", order.ID).Int64("total", quote.Total).Msg("Order created")
	s.writeJSON(w, http.StatusOK, "Inscribe Order pending", map[string]interface{}{
		"id": order.ID,
		"payment_details": paymentDetails{
			Address: address,
			Amount:  quote.Total,
		},
	})
}

func (s *Server) validateCreate(req *createOrderRequest) error {
	if len(req.Files) == 0 {
		return errors.New("at least one file is required")
	}
	for _, f := range req.Files {
		if f.Name == "" || f.Type == "" || f.DataURL == "" {
			return errors.New("every file needs a name, type and dataURL")
		}
		if f.Size < 1 {
			return errors.New("file size must be positive")
		}
	}
	if req.Rarity == "" {
		req.Rarity = "random"
	}
	if !inscriber.ValidRarity(req.Rarity) {
		return fmt.Errorf("unknown rarity %q", req.Rarity)
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}
	if req.FeeRate < 1 {
		return errors.New("fee rate must be at least 1 sat/vB")
	}
	if _, err := spend.ClassifyAddress(req.ReceiverAddress, s.keys.Params()); err != nil {
		return errors.New("invalid receiver address")
	}
	return nil
}

func (s *Server) getOrders(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("id"); id != "" {
		orderID, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid order id")
			return
		}
		order, err := s.store.GetOrder(orderID)
		if errors.Is(err, store.ErrOrderNotFound) {
			s.writeError(w, http.StatusNotFound, "order not found")
			return
		}
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, "could not load order")
			return
		}
		s.writeJSON(w, http.StatusOK, "Order fetched successfully", s.orderView(order))
		return
	}

	address := r.URL.Query().Get("address")
	if address == "" {
		s.writeError(w, http.StatusBadRequest, "id or address query parameter required")
		return
	}
	orders, err := s.store.OrdersByReceiver(address)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "could not load orders")
		return
	}
	views := make([]*orderView, len(orders))
	for i, order := range orders {
		views[i] = s.orderView(order)
	}
	s.writeJSON(w, http.StatusOK, "Orders fetched successfully", views)
}

// orderView shapes an order for API responses, recomputing the derived
// payment address.
func (s *Server) orderView(order *store.Order) *orderView {
	view := &orderView{
		ID:             order.ID,
		Status:         order.Status,
		ReceiveAddress: order.ReceiveAddress,
		Quantity:       order.Quantity,
		TotalPrice:     order.TotalPrice,
		PaymentTxID:    order.PaymentTxID,
		CreatedAt:      order.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:      order.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if address, err := s.keys.OrderAddress(int64(order.ID)); err == nil {
		view.PaymentDetails = &paymentDetails{Address: address, Amount: order.TotalPrice}
	}
	return view
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	q := r.URL.Query()

	rawSizes := q["imageSizes"]
	if len(rawSizes) == 0 {
		rawSizes = q["imageSizes[]"]
	}
	if len(rawSizes) == 0 {
		s.writeError(w, http.StatusBadRequest, "imageSizes query parameter required")
		return
	}
	imageSizes := make([]int64, len(rawSizes))
	for i, raw := range rawSizes {
		size, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || size < 1 {
			s.writeError(w, http.StatusBadRequest, "invalid image size")
			return
		}
		imageSizes[i] = size
	}

	feeRate, err := strconv.ParseInt(q.Get("fee"), 10, 64)
	if err != nil || feeRate < 1 {
		s.writeError(w, http.StatusBadRequest, "invalid fee rate")
		return
	}

	quantity := 1
	if raw := q.Get("count"); raw != "" {
		quantity, err = strconv.Atoi(raw)
		if err != nil || quantity < 1 {
			s.writeError(w, http.StatusBadRequest, "invalid count")
			return
		}
	}

	rareSats := q.Get("rareSats")
	if rareSats == "" {
		rareSats = "random"
	}
	if !inscriber.ValidRarity(rareSats) {
		s.writeError(w, http.StatusBadRequest, "unknown rarity")
		return
	}

	quote, err := s.svc.QuoteOrder(r.Context(), imageSizes, gifhtml.EstimateSize(len(imageSizes)),
		feeRate, quantity, rareSats, s.referralFee)
	if err != nil {
		s.serviceError(w, err, "price order")
		return
	}
	s.writeJSON(w, http.StatusOK, "Price calculated", quote)
}

// serviceError maps inscription-service failures onto API responses:
// the service rejecting the request is the client's problem, transport
// trouble is ours.
func (s *Server) serviceError(w http.ResponseWriter, err error, op string) {
	var svcErr *inscriber.ServiceError
	if errors.As(err, &svcErr) {
		s.writeError(w, http.StatusBadRequest, svcErr.Message)
		return
	}
	s.logger.Error().Err(err).Str("op", op).Msg("Inscription service call failed")
	s.writeError(w, http.StatusBadGateway, "inscription service unavailable")
}
