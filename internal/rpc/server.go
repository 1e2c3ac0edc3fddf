// Package rpc implements the HTTP JSON API: order creation, order and
// price queries, and the webhook the inscription service reports
// completed inscriptions to.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ordforge/ordforge/internal/inscriber"
	"github.com/ordforge/ordforge/internal/log"
	"github.com/ordforge/ordforge/internal/store"
	"github.com/ordforge/ordforge/internal/wallet"
)

// maxBodySize is the maximum allowed request body size (16 MB; order
// creation carries frame images as data URLs).
const maxBodySize = 16 << 20

// InscriptionService is the slice of the inscription service client the
// API consumes.
type InscriptionService interface {
	CreateOrder(ctx context.Context, files []inscriber.File, receiveAddress string, feeRate int64, rareSats, updateToken string) (*inscriber.Order, error)
	QuoteOrder(ctx context.Context, imageSizes []int64, htmlSize, feeRate int64, quantity int, rareSats string, referralFee int64) (*inscriber.Quote, error)
}

// Server is the HTTP API server.
type Server struct {
	addr        string
	store       *store.Store
	svc         InscriptionService
	keys        *wallet.Deriver
	referralFee int64
	server      *http.Server
	ln          net.Listener
	logger      zerolog.Logger
}

// New creates an API server listening on addr.
func New(addr string, st *store.Store, svc InscriptionService, keys *wallet.Deriver, referralFee int64) *Server {
	s := &Server{
		addr:        addr,
		store:       st,
		svc:         svc,
		keys:        keys,
		referralFee: referralFee,
		logger:      log.RPC,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/order", s.handleOrder)
	mux.HandleFunc("/price", s.handlePrice)
	mux.HandleFunc("/webhook/", s.handleWebhook)

	s.server = &http.Server{
		Handler:      s.withCommon(mux),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

// Start begins listening and serving in a background goroutine.
// It returns immediately after the listener is bound.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.ln = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("API server error")
		}
	}()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("API server started")
	return nil
}

// Addr returns the listener address (useful when bound to :0).
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// withCommon applies the body-size cap and CORS headers shared by every
// endpoint.
func (s *Server) withCommon(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
		next.ServeHTTP(w, r)
	})
}

// apiResponse is the envelope every endpoint answers with.
type apiResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Success bool        `json:"success"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiResponse{
		Message: message,
		Data:    data,
		Success: status < 400,
	}); err != nil {
		s.logger.Error().Err(err).Msg("Write response failed")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, message, nil)
}

// tokenFromPath extracts the update token from a /webhook/{token} path.
func tokenFromPath(path string) string {
	rest := strings.TrimPrefix(path, "/webhook/")
	if rest == path {
		return ""
	}
	return strings.Trim(rest, "/")
}
