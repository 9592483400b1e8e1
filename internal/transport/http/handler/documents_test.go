package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aada-api/internal/application/document"
	"github.com/aada-api/internal/domain"
	jwtinfra "github.com/aada-api/internal/infrastructure/jwt"
	"github.com/aada-api/internal/transport/http/middleware"
)

type mockDocumentService struct{ mock.Mock }

func (m *mockDocumentService) Upload(ctx context.Context, in document.UploadInput) (*domain.Document, error) {
	args := m.Called(ctx, in)
	if d, _ := args.Get(0).(*domain.Document); d != nil {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDocumentService) List(ctx context.Context, ownerID string) ([]domain.Document, error) {
	args := m.Called(ctx, ownerID)
	docs, _ := args.Get(0).([]domain.Document)
	return docs, args.Error(1)
}

func (m *mockDocumentService) Get(ctx context.Context, documentID, requesterID string) (*domain.Document, error) {
	args := m.Called(ctx, documentID, requesterID)
	if d, _ := args.Get(0).(*domain.Document); d != nil {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDocumentService) DownloadURL(ctx context.Context, documentID, requesterID string) (string, error) {
	args := m.Called(ctx, documentID, requesterID)
	return args.String(0), args.Error(1)
}

func (m *mockDocumentService) Delete(ctx context.Context, documentID, requesterID string) error {
	return m.Called(ctx, documentID, requesterID).Error(0)
}

func (m *mockDocumentService) Verify(ctx context.Context, documentID, verifierID, verifierRole string, req domain.VerifyDocumentRequest) (*domain.Document, error) {
	args := m.Called(ctx, documentID, verifierID, verifierRole, req)
	if d, _ := args.Get(0).(*domain.Document); d != nil {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDocumentService) ListPending(ctx context.Context) ([]domain.Document, error) {
	args := m.Called(ctx)
	docs, _ := args.Get(0).([]domain.Document)
	return docs, args.Error(1)
}

// asUser injects claims the way the auth middleware would.
func asUser(userID, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := &jwtinfra.Claims{UserID: userID, Role: role}
			next.ServeHTTP(w, r.WithContext(middleware.WithClaims(r.Context(), claims)))
		})
	}
}

func documentRouter(svc document.Service, userID, role string) http.Handler {
	h := NewDocumentHandler(svc)
	r := chi.NewRouter()
	r.Use(asUser(userID, role))
	r.Post("/documents/upload", h.Upload)
	r.Get("/documents", h.List)
	r.Get("/documents/{id}", h.Get)
	r.Get("/documents/{id}/download", h.Download)
	r.Delete("/documents/{id}", h.Delete)
	r.Put("/documents/{id}/verify", h.Verify)
	return r
}

func multipartBody(t *testing.T, docType, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if docType != "" {
		require.NoError(t, mw.WriteField("document_type", docType))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestDocumentUpload_Success(t *testing.T) {
	svc := new(mockDocumentService)
	svc.On("Upload", mock.Anything, mock.MatchedBy(func(in document.UploadInput) bool {
		return in.OwnerID == "u1" && in.DocumentType == "diploma" && in.FileName == "d.pdf" && in.Size == 4
	})).Return(&domain.Document{DocumentID: "doc1", OwnerID: "u1", VerificationStatus: domain.DocumentPending}, nil)

	body, ct := multipartBody(t, "diploma", "d.pdf", []byte("%PDF"))
	req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	documentRouter(svc, "u1", domain.RoleStudent).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var doc domain.Document
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&doc))
	assert.Equal(t, "doc1", doc.DocumentID)
	svc.AssertExpectations(t)
}

func TestDocumentUpload_OversizedBodyIs413(t *testing.T) {
	svc := new(mockDocumentService)
	body, ct := multipartBody(t, "id", "big.png", bytes.Repeat([]byte{0}, int(document.MaxFileSize)+multipartOverhead+1))
	req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	documentRouter(svc, "u1", domain.RoleStudent).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	svc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestDocumentUpload_MissingFileIs400(t *testing.T) {
	svc := new(mockDocumentService)
	body, ct := multipartBody(t, "id", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	documentRouter(svc, "u1", domain.RoleStudent).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDocumentUpload_ServiceErrorsMapped(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"rejected type":       {fmt.Errorf("document type: %w", domain.ErrBadRequest), http.StatusBadRequest},
		"over limit":          {fmt.Errorf("file size: %w", domain.ErrTooLarge), http.StatusRequestEntityTooLarge},
		"storage unavailable": {fmt.Errorf("upload: %w", domain.ErrUnavailable), http.StatusServiceUnavailable},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc := new(mockDocumentService)
			svc.On("Upload", mock.Anything, mock.Anything).Return(nil, tc.err)
			body, ct := multipartBody(t, "id", "a.png", []byte("png"))
			req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
			req.Header.Set("Content-Type", ct)
			rr := httptest.NewRecorder()
			documentRouter(svc, "u1", domain.RoleStudent).ServeHTTP(rr, req)
			assert.Equal(t, tc.want, rr.Code)
		})
	}
}

func TestDocumentDownload_Redirects(t *testing.T) {
	svc := new(mockDocumentService)
	svc.On("DownloadURL", mock.Anything, "doc1", "u1").Return("https://bucket.example/key?sig=abc", nil)

	rr := httptest.NewRecorder()
	documentRouter(svc, "u1", domain.RoleStudent).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/documents/doc1/download", nil))

	assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	assert.Equal(t, "https://bucket.example/key?sig=abc", rr.Header().Get("Location"))
}

func TestDocumentGet_NotOwnerIs404(t *testing.T) {
	svc := new(mockDocumentService)
	svc.On("Get", mock.Anything, "doc1", "u2").Return(nil, fmt.Errorf("document doc1: %w", domain.ErrNotFound))

	rr := httptest.NewRecorder()
	documentRouter(svc, "u2", domain.RoleStudent).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/documents/doc1", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDocumentDelete_OK(t *testing.T) {
	svc := new(mockDocumentService)
	svc.On("Delete", mock.Anything, "doc1", "u1").Return(nil)

	rr := httptest.NewRecorder()
	documentRouter(svc, "u1", domain.RoleStudent).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/documents/doc1", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestDocumentVerify_ValidatesBody(t *testing.T) {
	svc := new(mockDocumentService)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/documents/doc1/verify", strings.NewReader(`{"verification_status":"maybe"}`))
	documentRouter(svc, "admin1", domain.RoleAdmin).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentVerify_PassesActor(t *testing.T) {
	svc := new(mockDocumentService)
	want := domain.VerifyDocumentRequest{VerificationStatus: domain.DocumentApproved}
	svc.On("Verify", mock.Anything, "doc1", "admin1", domain.RoleAdmin, want).
		Return(&domain.Document{DocumentID: "doc1", VerificationStatus: domain.DocumentApproved}, nil)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/documents/doc1/verify", strings.NewReader(`{"verification_status":"approved"}`))
	documentRouter(svc, "admin1", domain.RoleAdmin).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestDocumentList_RequiresClaims(t *testing.T) {
	h := NewDocumentHandler(new(mockDocumentService))
	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/documents", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
