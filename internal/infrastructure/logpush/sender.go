// Package logpush is a push sender that only logs. It is selected with
// PUSH_PROVIDER=log for local development.
package logpush

import (
	"context"
	"log/slog"

	"github.com/aada-api/internal/pkg/mask"
)

type Sender struct {
	logger *slog.Logger
}

func NewSender(logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{logger: logger}
}

func (s *Sender) Send(ctx context.Context, token, title, body string) error {
	s.logger.InfoContext(ctx, "push notification", "token", mask.Token(token), "title", title, "body", body)
	return nil
}
