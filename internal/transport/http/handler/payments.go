package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aada-api/internal/application/billing"
	"github.com/aada-api/internal/application/payment"
)

// PaymentHandler handles payment plans and invoice issuing.
type PaymentHandler struct {
	payments payment.Service
	billing  billing.Service
}

func NewPaymentHandler(payments payment.Service, billingSvc billing.Service) *PaymentHandler {
	return &PaymentHandler{payments: payments, billing: billingSvc}
}

// ListPlans handles GET /payments?student_id=.
func (h *PaymentHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	plans, err := h.payments.ListPlans(r.Context(), actor, r.URL.Query().Get("student_id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(plans))
}

func (h *PaymentHandler) IssueInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.billing.IssueInvoice(r.Context(), chi.URLParam(r, "plan_id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (h *PaymentHandler) ConfirmPaid(w http.ResponseWriter, r *http.Request) {
	inv, err := h.billing.ConfirmPaid(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}
