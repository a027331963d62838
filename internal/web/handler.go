package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"cryptocheckout/internal/models"
	"cryptocheckout/internal/services"
	"cryptocheckout/internal/session"
	"cryptocheckout/internal/wallet"
)

// CurrencyLister is the currencies slice of the payments gateway.
type CurrencyLister interface {
	Currencies(ctx context.Context) ([]models.Currency, error)
}

type Handler struct {
	Orders     *services.OrderService
	Sessions   *session.Manager
	Currencies CurrencyLister
	Wallet     wallet.Provider

	selectors sync.Map // identifier -> *wallet.Selector
}

func NewHandler(orders *services.OrderService, sessions *session.Manager, currencies CurrencyLister, provider wallet.Provider) *Handler {
	return &Handler{
		Orders:     orders,
		Sessions:   sessions,
		Currencies: currencies,
		Wallet:     provider,
	}
}

type createOrderRequest struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Concept  string `json:"concept"`
}

type createOrderResponse struct {
	Identifier string `json:"identifier"`
	Location   string `json:"location"`
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	record, err := h.Orders.Create(r.Context(), req.Amount, req.Currency, req.Concept)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, services.ErrInvalidAmount.Error())
		case errors.Is(err, services.ErrMissingCurrency):
			writeError(w, http.StatusBadRequest, services.ErrMissingCurrency.Error())
		default:
			writeError(w, http.StatusBadGateway, "order creation failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, createOrderResponse{
		Identifier: record.Identifier,
		Location:   "/payment/" + record.Identifier,
	})
}

type orderResponse struct {
	Loading   bool                   `json:"loading"`
	Remaining int                    `json:"remaining"`
	Display   string                 `json:"display"`
	Record    *models.CombinedRecord `json:"record,omitempty"`
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")
	if identifier == "" {
		writeError(w, http.StatusBadRequest, "missing order identifier")
		return
	}

	s := h.Sessions.Acquire(r.Context(), identifier)
	record, remaining := s.Snapshot()

	writeJSON(w, http.StatusOK, orderResponse{
		Loading:   record == nil,
		Remaining: remaining,
		Display:   session.FormatRemaining(remaining),
		Record:    record,
	})
}

func (h *Handler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.Currencies.Currencies(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "currency list unavailable")
		return
	}

	if search := r.URL.Query().Get("search"); search != "" {
		needle := strings.ToLower(search)
		filtered := make([]models.Currency, 0, len(currencies))
		for _, c := range currencies {
			if strings.Contains(strings.ToLower(c.Name), needle) {
				filtered = append(filtered, c)
			}
		}
		currencies = filtered
	}

	writeJSON(w, http.StatusOK, currencies)
}

type selectMethodRequest struct {
	Method string `json:"method"`
}

func (h *Handler) SelectPaymentMethod(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")
	if identifier == "" {
		writeError(w, http.StatusBadRequest, "missing order identifier")
		return
	}

	var req selectMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.Method != wallet.ModeSmartQR && req.Method != wallet.ModeWeb3 {
		writeError(w, http.StatusBadRequest, "unknown payment method")
		return
	}

	result := h.selector(identifier).Select(r.Context(), req.Method)
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) selector(identifier string) *wallet.Selector {
	if s, ok := h.selectors.Load(identifier); ok {
		return s.(*wallet.Selector)
	}
	s, _ := h.selectors.LoadOrStore(identifier, wallet.NewSelector(h.Wallet))
	return s.(*wallet.Selector)
}

func (h *Handler) PaymentSuccess(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"title":   "Pago completado",
		"message": "El pago se ha realizado correctamente.",
	})
}

func (h *Handler) PaymentFailure(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"title":   "Pago cancelado",
		"message": "No se ha podido completar el pago.",
	})
}
