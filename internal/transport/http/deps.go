package http

import (
	"github.com/aada-api/internal/application/billing"
	"github.com/aada-api/internal/domain"
	jwtinfra "github.com/aada-api/internal/infrastructure/jwt"
	"github.com/aada-api/internal/infrastructure/localfs"
	"github.com/aada-api/internal/infrastructure/metrics"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	Repos domain.Repositories
	Store domain.BlobStore
	// LocalStore is set when documents live on the local filesystem; the
	// router then serves its signed download links.
	LocalStore  *localfs.Store
	Push        domain.PushSender
	Mailer      domain.Mailer
	JWTProvider *jwtinfra.Provider
	// Billing is nil when Square is not configured; invoice issuing is then
	// not mounted.
	Billing billing.Gateway
	Metrics *metrics.HTTP
}
