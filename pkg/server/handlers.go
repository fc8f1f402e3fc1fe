package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sol-checkout/pkg/app"
	"sol-checkout/pkg/checkout"
	"sol-checkout/pkg/logger"
	"sol-checkout/pkg/payment"
	"sol-checkout/pkg/quote"
	"sol-checkout/pkg/registry"
	"sol-checkout/pkg/submit"
	"sol-checkout/pkg/transfer"
)

// Handler binds the application to HTTP.
type Handler struct {
	app    *app.App
	logger *logger.Logger
}

// NewHandler creates a new HTTP handler for the checkout API
func NewHandler(a *app.App, l *logger.Logger) *Handler {
	return &Handler{app: a, logger: l}
}

// RegisterRoutes mounts the checkout and dashboard routes on r
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Health)
	r.Get("/tokens", h.ListTokens)
	r.Post("/quote", h.Quote)

	r.Route("/payments", func(r chi.Router) {
		r.Post("/", h.CreatePayment)
		r.Get("/", h.ListPayments)
		r.Get("/stats", h.Stats)
		r.Get("/{id}", h.GetPayment)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListTokens returns every registered token in configured order
func (h *Handler) ListTokens(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Registry.All())
}

// Quote prices a payment into the merchant's token, or into dest_token when given
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, checkout.UserMessage(checkout.ErrInvalidAmount))
		return
	}

	in, err := h.app.Registry.Resolve(req.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, checkout.UserMessage(err))
		return
	}
	destID := req.DestToken
	if destID == "" {
		destID = h.app.Config.Merchant.PreferredToken
	}
	out, err := h.app.Registry.Resolve(destID)
	if err != nil {
		writeError(w, http.StatusBadRequest, checkout.UserMessage(err))
		return
	}

	q, err := h.app.Quoter.Quote(r.Context(), in.Mint, out.Mint, req.Amount)
	if err != nil {
		h.logger.Errorf("Quote err: %v", err)
		writeError(w, errStatus(err), checkout.UserMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// CreatePayment runs a whole checkout session for one request.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PaymentRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctrl, err := h.app.NewCheckout()
	if err != nil {
		h.logger.Errorf("CreatePayment err: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := ctrl.ConnectWallet(ctx, req.CustomerAddress); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := ctrl.UpdateInput(req.Amount, req.Token); err != nil {
		writeError(w, errStatus(err), checkout.UserMessage(err))
		return
	}
	q, err := ctrl.RefreshQuote(ctx)
	if err != nil {
		writeError(w, errStatus(err), checkout.UserMessage(err))
		return
	}

	p, err := ctrl.Submit(ctx)
	resp := PaymentResponse{Quote: q, State: string(ctrl.State())}
	if err != nil {
		h.logger.Errorf("CreatePayment err: %v", err)
		resp.Payment = ctrl.LastPayment()
		resp.Error = checkout.UserMessage(err)
		writeJSON(w, errStatus(err), resp)
		return
	}

	resp.Payment = p
	writeJSON(w, http.StatusCreated, resp)
}

// ListPayments lists payments, filtered by ?status= or ?merchant=
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	var list []payment.Payment

	status := r.URL.Query().Get("status")
	merchant := r.URL.Query().Get("merchant")
	switch {
	case status != "":
		st, err := payment.ParseStatus(status)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		list = h.app.Payments.ListByStatus(st)
	case merchant != "":
		list = h.app.Payments.ListByMerchant(merchant)
	default:
		list = h.app.Payments.List()
	}

	writeJSON(w, http.StatusOK, PaymentListResponse{Payments: list, Count: len(list)})
}

// GetPayment returns one payment by ID
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.app.Payments.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Stats returns the dashboard summary
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	st := h.app.Payments.Stats()
	writeJSON(w, http.StatusOK, StatsResponse{Stats: st, SuccessRate: st.SuccessRate()})
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, registry.ErrTokenNotFound),
		errors.Is(err, checkout.ErrInvalidAmount),
		errors.Is(err, quote.ErrInvalidAmount),
		errors.Is(err, registry.ErrAmountTooLarge),
		errors.Is(err, transfer.ErrDustAmount):
		return http.StatusBadRequest
	case errors.Is(err, checkout.ErrNoWallet),
		errors.Is(err, checkout.ErrNoQuote),
		errors.Is(err, checkout.ErrInsufficientBalance),
		errors.Is(err, quote.ErrQuoteUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, checkout.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, checkout.ErrBalanceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, submit.ErrSubmissionFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
