// Package localfs is a filesystem-backed blob store for development and tests.
// Objects live in a fileblob bucket under a base directory and are served by
// the API under /mock-storage/ with HMAC-signed, expiring download links.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/gcerrors"

	"github.com/aada-api/internal/domain"
	"github.com/aada-api/internal/pkg/blobkey"
)

// RoutePrefix is the URL path under which the API serves stored objects.
const RoutePrefix = "/mock-storage/"

var (
	ErrBadKey       = errors.New("invalid storage key")
	ErrBadSignature = errors.New("invalid or expired download signature")
)

type Store struct {
	bucket     *blob.Bucket
	signer     *fileblob.URLSignerHMAC
	publicBase string
}

func NewStore(baseDir, publicBase, signingKey string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	publicBase = strings.TrimRight(publicBase, "/")
	signBase, err := url.Parse(publicBase + RoutePrefix)
	if err != nil {
		return nil, fmt.Errorf("parse public base url: %w", err)
	}
	signer := fileblob.NewURLSignerHMAC(signBase, []byte(signingKey))
	bucket, err := fileblob.OpenBucket(baseDir, &fileblob.Options{URLSigner: signer})
	if err != nil {
		return nil, fmt.Errorf("open storage bucket: %w", err)
	}
	return &Store{bucket: bucket, signer: signer, publicBase: publicBase}, nil
}

func (s *Store) Close() error {
	return s.bucket.Close()
}

// checkKey rejects empty, absolute and non-canonical keys.
func checkKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || path.Clean("/" + key)[1:] != key {
		return fmt.Errorf("%w: %q", ErrBadKey, key)
	}
	return nil
}

func (s *Store) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	if err := s.bucket.Upload(ctx, key, r, &blob.WriterOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	return s.URL(key), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := s.bucket.Delete(ctx, key); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

func (s *Store) URL(key string) string {
	return s.publicBase + RoutePrefix + (&url.URL{Path: key}).EscapedPath()
}

// DownloadURL returns a link that KeyFromURL accepts until ttl has passed.
func (s *Store) DownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	u, err := s.bucket.SignedURL(ctx, key, &blob.SignedURLOptions{Expiry: ttl})
	if err != nil {
		return "", fmt.Errorf("sign download url: %w", err)
	}
	return u, nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]string, error) {
	it := s.bucket.List(&blob.ListOptions{Prefix: blobkey.OwnerPrefix(ownerID)})
	var keys []string
	for {
		obj, err := it.Next(ctx)
		if errors.Is(err, io.EOF) {
			return keys, nil
		}
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		if !obj.IsDir {
			keys = append(keys, obj.Key)
		}
	}
}

// KeyFromURL checks a download link's expiry and signature and returns the
// object key it grants.
func (s *Store) KeyFromURL(ctx context.Context, u *url.URL) (string, error) {
	key, err := s.signer.KeyFromURL(ctx, u)
	if err != nil {
		return "", ErrBadSignature
	}
	return key, nil
}

// Open returns a reader for key. A missing object wraps domain.ErrNotFound.
func (s *Store) Open(ctx context.Context, key string) (*blob.Reader, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	r, err := s.bucket.NewReader(ctx, key, nil)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil, fmt.Errorf("object %s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open object: %w", err)
	}
	return r, nil
}
