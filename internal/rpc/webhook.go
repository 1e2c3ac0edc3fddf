package rpc

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ordforge/ordforge/internal/inscriber"
	"github.com/ordforge/ordforge/internal/store"
)

// handleWebhook receives per-file inscription callbacks from the
// inscription service. The path token authenticates the caller: only
// the order that handed the token out in its webhook URL matches.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	token := tokenFromPath(r.URL.Path)
	if token == "" {
		s.writeError(w, http.StatusUnauthorized, "invalid order token")
		return
	}

	var payload inscriber.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if payload.ID == "" || payload.Tx.Inscription == "" {
		s.writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	order, err := s.store.OrderByToken(token)
	if errors.Is(err, store.ErrOrderNotFound) {
		s.writeError(w, http.StatusUnauthorized, "invalid order token")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "could not load order")
		return
	}

	ordinal, err := s.ordinalForService(order.ID, payload.ID)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, "invalid order token")
		return
	}

	// Inscription ids are "<reveal txid>i<index>".
	revealTxID := payload.Tx.Inscription
	if idx := strings.LastIndex(revealTxID, "i"); idx > 0 {
		revealTxID = revealTxID[:idx]
	}

	if ordinal.Stage == store.StageImage {
		updated, err := s.store.UpdateOrder(order.ID, func(o *store.Order) error {
			for i := range o.Frames {
				if o.Frames[i].Name != payload.File.Name {
					continue
				}
				if o.Frames[i].Inscription != "" {
					return errors.New("already inscribed")
				}
				o.Frames[i].Inscription = payload.Tx.Inscription
				return nil
			}
			return errors.New("unknown file")
		})
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		order = updated
	}

	if _, err := s.store.UpdateOrdinal(ordinal.ID, func(o *store.Ordinal) error {
		for _, txid := range o.RevealTxIDs {
			if txid == revealTxID {
				return nil
			}
		}
		o.RevealTxIDs = append(o.RevealTxIDs, revealTxID)
		return nil
	}); err != nil {
		s.writeError(w, http.StatusInternalServerError, "could not record inscription")
		return
	}

	s.logger.Info().
		Uint64("order", order.ID).
		Str("stage", string(ordinal.Stage)).
		Str("inscription", payload.Tx.Inscription).
		Msg("Inscription reported")
	s.writeJSON(w, http.StatusOK, "Order updated successfully", nil)
}

// ordinalForService finds the order's ordinal whose service-side order
// id matches the callback.
func (s *Server) ordinalForService(orderID uint64, serviceID string) (*store.Ordinal, error) {
	ordinals, err := s.store.OrdinalsByOrder(orderID)
	if err != nil {
		return nil, err
	}
	for _, o := range ordinals {
		if o.ServiceID == serviceID {
			return o, nil
		}
	}
	return nil, store.ErrOrdinalNotFound
}
