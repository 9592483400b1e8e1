package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aada-api/internal/application/document"
	"github.com/aada-api/internal/domain"
)

// multipartOverhead allows for form boundaries and the document_type field on
// top of the file itself.
const multipartOverhead = 1 << 20

// DocumentHandler handles document upload, retrieval and verification.
type DocumentHandler struct {
	svc document.Service
}

func NewDocumentHandler(svc document.Service) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// Upload handles POST /documents/upload with a multipart form carrying
// document_type and file.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if r.ContentLength > document.MaxFileSize+multipartOverhead {
		writeError(w, http.StatusRequestEntityTooLarge, "file exceeds the 10 MB limit")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, document.MaxFileSize+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file exceeds the 10 MB limit")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	doc, err := h.svc.Upload(r.Context(), document.UploadInput{
		OwnerID:      actor.UserID,
		DocumentType: r.FormValue("document_type"),
		FileName:     header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		Size:         header.Size,
		Reader:       file,
	})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	docs, err := h.svc.List(r.Context(), actor.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(docs))
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	doc, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"), actor.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Download redirects to a time-limited URL for the document.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	url, err := h.svc.DownloadURL(r.Context(), chi.URLParam(r, "id"), actor.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), actor.UserID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "document deleted"})
}

func (h *DocumentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req domain.VerifyDocumentRequest
	if !decode(w, r, &req) {
		return
	}
	doc, err := h.svc.Verify(r.Context(), chi.URLParam(r, "id"), actor.UserID, actor.Role, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.ListPending(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(docs))
}
