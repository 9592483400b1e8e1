package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"gocloud.dev/blob"

	"github.com/aada-api/internal/domain"
	"github.com/aada-api/internal/infrastructure/localfs"
)

// objectSource is the part of the local blob store the download route needs.
type objectSource interface {
	KeyFromURL(ctx context.Context, u *url.URL) (string, error)
	Open(ctx context.Context, key string) (*blob.Reader, error)
}

// StorageHandler serves objects from the local blob store behind signed links.
type StorageHandler struct {
	store objectSource
}

func NewStorageHandler(store objectSource) *StorageHandler {
	return &StorageHandler{store: store}
}

func (h *StorageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key, err := h.store.KeyFromURL(r.Context(), r.URL)
	if err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	obj, err := h.store.Open(r.Context(), key)
	switch {
	case errors.Is(err, localfs.ErrBadKey):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "object not found")
		return
	case err != nil:
		httpError(w, err)
		return
	}
	defer obj.Close()

	w.Header().Set("Content-Type", obj.ContentType())
	w.Header().Set("Content-Length", strconv.FormatInt(obj.Size(), 10))
	w.Header().Set("Last-Modified", obj.ModTime().UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, obj); err != nil {
		slog.WarnContext(r.Context(), "stream stored object", "key", key, "err", err)
	}
}
