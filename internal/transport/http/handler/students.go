package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aada-api/internal/application/notification"
	"github.com/aada-api/internal/application/payment"
	"github.com/aada-api/internal/application/student"
	"github.com/aada-api/internal/domain"
)

// StudentHandler serves the student record and its nested resources.
type StudentHandler struct {
	students      student.Service
	payments      payment.Service
	notifications notification.Service
}

func NewStudentHandler(students student.Service, payments payment.Service, notifications notification.Service) *StudentHandler {
	return &StudentHandler{students: students, payments: payments, notifications: notifications}
}

func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	s, err := h.students.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	students, err := h.students.List(r.Context(), actor)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(students))
}

func (h *StudentHandler) SetDeviceToken(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req domain.DeviceTokenRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.students.SetDeviceToken(r.Context(), actor, chi.URLParam(r, "id"), req.FCMToken); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "device token registered"})
}

func (h *StudentHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	invoices, err := h.payments.ListInvoices(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(invoices))
}

func (h *StudentHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	items, err := h.notifications.ListByStudent(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(items))
}
