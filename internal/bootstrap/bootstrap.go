// Package bootstrap builds the adapters selected by configuration. Each binary
// picks the pieces it needs.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aada-api/internal/config"
	"github.com/aada-api/internal/domain"
	"github.com/aada-api/internal/infrastructure/dynamo"
	"github.com/aada-api/internal/infrastructure/fcm"
	"github.com/aada-api/internal/infrastructure/localfs"
	"github.com/aada-api/internal/infrastructure/logpush"
	"github.com/aada-api/internal/infrastructure/postgres"
	s3infra "github.com/aada-api/internal/infrastructure/s3"
	sendgridmail "github.com/aada-api/internal/infrastructure/sendgrid"
	"github.com/aada-api/internal/infrastructure/smtp"
	"github.com/aada-api/internal/infrastructure/sns"
)

// Repositories opens the store selected by DB_DRIVER. The returned close
// function releases the connection pool, if any.
func Repositories(ctx context.Context, cfg *config.Config) (domain.Repositories, func(), error) {
	switch cfg.DBDriver {
	case config.DBDriverPostgres:
		pool, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return domain.Repositories{}, nil, err
		}
		return postgres.NewRepositories(pool), pool.Close, nil
	case config.DBDriverDynamo:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return domain.Repositories{}, nil, err
		}
		return dynamo.NewRepositories(client, cfg.DynamoTables), func() {}, nil
	default:
		return domain.Repositories{}, nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}

// Storage holds the selected blob store. Local is set only for the local
// backend so the API can serve its signed links.
type Storage struct {
	Store domain.BlobStore
	Local *localfs.Store
}

func BlobStore(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageS3:
		client, err := s3infra.NewClient(ctx, cfg)
		if err != nil {
			return Storage{}, err
		}
		return Storage{Store: s3infra.NewStore(client, cfg)}, nil
	case config.StorageLocal:
		store, err := localfs.NewStore(cfg.LocalStorageDir, cfg.PublicBaseURL, cfg.StorageSigningKey)
		if err != nil {
			return Storage{}, err
		}
		return Storage{Store: store, Local: store}, nil
	default:
		return Storage{}, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}

func PushSender(ctx context.Context, cfg *config.Config) (domain.PushSender, error) {
	switch cfg.PushProvider {
	case config.PushFCM:
		sender, err := fcm.NewSender(ctx, cfg.FirebaseCredentials)
		if err != nil {
			return nil, err
		}
		return sender, nil
	case config.PushSNS:
		sender, err := sns.NewSender(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return sender, nil
	case config.PushLog:
		return logpush.NewSender(slog.Default()), nil
	default:
		return nil, fmt.Errorf("unknown PUSH_PROVIDER %q", cfg.PushProvider)
	}
}

func Mailer(cfg *config.Config) (domain.Mailer, error) {
	switch cfg.MailProvider {
	case config.MailSMTP:
		return smtp.NewMailer(cfg), nil
	case config.MailSendGrid:
		return sendgridmail.NewMailer(cfg.SendGridAPIKey, "AADA", cfg.SMTPFrom), nil
	default:
		return nil, fmt.Errorf("unknown MAIL_PROVIDER %q", cfg.MailProvider)
	}
}
