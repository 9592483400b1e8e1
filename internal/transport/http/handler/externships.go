package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aada-api/internal/application/externship"
	"github.com/aada-api/internal/domain"
)

type ExternshipHandler struct {
	svc externship.Service
}

func NewExternshipHandler(svc externship.Service) *ExternshipHandler {
	return &ExternshipHandler{svc: svc}
}

func (h *ExternshipHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	status, err := h.svc.Get(r.Context(), actor, r.URL.Query().Get("student_id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *ExternshipHandler) Set(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req domain.ExternshipStatusInput
	if !decode(w, r, &req) {
		return
	}
	status, err := h.svc.Set(r.Context(), actor, chi.URLParam(r, "student_id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
