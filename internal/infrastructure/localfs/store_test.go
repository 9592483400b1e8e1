package localfs

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aada-api/internal/domain"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(dir, "http://localhost:3000/", "secret")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, dir
}

func TestUpload_WritesFileAndReturnsURL(t *testing.T) {
	s, dir := newTestStore(t)
	u, err := s.Upload(context.Background(), "user_u1/id/20250701_000000_abcd1234.png", strings.NewReader("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/mock-storage/user_u1/id/20250701_000000_abcd1234.png", u)

	b, err := os.ReadFile(filepath.Join(dir, "user_u1", "id", "20250701_000000_abcd1234.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(b))
}

func TestUpload_RejectsTraversal(t *testing.T) {
	s, _ := newTestStore(t)
	for _, key := range []string{"../escape.pdf", "/abs.pdf", "a/../../b.pdf", ""} {
		_, err := s.Upload(context.Background(), key, strings.NewReader("x"), "")
		assert.ErrorIs(t, err, ErrBadKey, key)
	}
}

func TestOpen_ReturnsContentAndType(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.Upload(ctx, "user_u1/diploma/a.pdf", strings.NewReader("%PDF"), "application/pdf")
	require.NoError(t, err)

	r, err := s.Open(ctx, "user_u1/diploma/a.pdf")
	require.NoError(t, err)
	defer r.Close()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(b))
	assert.Equal(t, "application/pdf", r.ContentType())
}

func TestDelete_Idempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	key := "user_u1/diploma/a.pdf"
	_, err := s.Upload(ctx, key, strings.NewReader("pdf"), "application/pdf")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Open(ctx, key)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete_NeverUploaded(t *testing.T) {
	s, _ := newTestStore(t)
	assert.NoError(t, s.Delete(context.Background(), "user_u9/id/none.png"))
}

func TestListByOwner(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	for _, k := range []string{"user_u1/id/a.png", "user_u1/diploma/b.pdf", "user_u2/id/c.png", "user_u10/id/d.png"} {
		_, err := s.Upload(ctx, k, strings.NewReader("x"), "")
		require.NoError(t, err)
	}
	keys, err := s.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"user_u1/id/a.png", "user_u1/diploma/b.pdf"}, keys)

	none, err := s.ListByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDownloadURL_SignatureRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	raw, err := s.DownloadURL(ctx, "user_u1/id/a.png", time.Hour)
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, RoutePrefix, u.Path)
	assert.Equal(t, "localhost:3000", u.Host)

	key, err := s.KeyFromURL(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, "user_u1/id/a.png", key)

	q := u.Query()
	q.Set("obj", "user_u2/id/a.png")
	u.RawQuery = q.Encode()
	_, err = s.KeyFromURL(ctx, u)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestDownloadURL_OtherSigningKeyRejected(t *testing.T) {
	s, dir := newTestStore(t)
	other, err := NewStore(dir, "http://localhost:3000", "different")
	require.NoError(t, err)
	t.Cleanup(func() { _ = other.Close() })

	raw, err := other.DownloadURL(context.Background(), "user_u1/id/a.png", time.Hour)
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)

	_, err = s.KeyFromURL(context.Background(), u)
	assert.ErrorIs(t, err, ErrBadSignature)
}
