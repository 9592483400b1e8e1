// Command reminders runs one reconciliation pass over all billed invoices:
// it refreshes paid status from Square and sends the payment notices.
// Schedule it daily; two runs must not overlap.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/aada-api/internal/application/reminder"
	"github.com/aada-api/internal/bootstrap"
	"github.com/aada-api/internal/config"
	"github.com/aada-api/internal/infrastructure/metrics"
	"github.com/aada-api/internal/infrastructure/square"
	"github.com/aada-api/internal/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, reading from environment")
	}
	cfg := config.Load()
	logger := logging.Setup(cfg.AppEnv, cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		slog.Error("reminder run failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(config.RequireDatabase, config.RequireBilling, config.RequirePush); err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("REMINDER_TIMEZONE: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, closeRepos, err := bootstrap.Repositories(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeRepos()

	push, err := bootstrap.PushSender(ctx, cfg)
	if err != nil {
		return fmt.Errorf("push sender: %w", err)
	}

	job := reminder.NewJob(reminder.Deps{
		Invoices:      repos.Invoices,
		Students:      repos.Students,
		Notifications: repos.Notifications,
		Billing:       square.NewClient(cfg.Square),
		Push:          push,
		PushTimeout:   cfg.PushTimeout,
		Location:      loc,
		LeadDays:      cfg.ReminderLeadDays,
		LateDays:      cfg.ReminderLateDays,
		Logger:        logger,
	})

	start := time.Now()
	report, err := job.Run(ctx)
	finished := time.Now()
	logger.Info("reminder run finished",
		"scanned", report.Scanned,
		"skipped", report.Skipped,
		"marked_paid", report.MarkedPaid,
		"receipts_sent", report.ReceiptsSent,
		"reminders_sent", report.RemindersSent,
		"late_notices_sent", report.LateNoticesSent,
		"failures", report.Failures,
		"duration", finished.Sub(start),
	)

	if cfg.PushgatewayURL != "" {
		m := metrics.NewReminder()
		m.Observe(metrics.ReminderRun{
			Scanned:     report.Scanned,
			Skipped:     report.Skipped,
			MarkedPaid:  report.MarkedPaid,
			Receipts:    report.ReceiptsSent,
			Reminders:   report.RemindersSent,
			LateNotices: report.LateNoticesSent,
			Failures:    report.Failures,
			Duration:    finished.Sub(start),
			FinishedAt:  finished,
		})
		pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if perr := m.Push(pushCtx, cfg.PushgatewayURL); perr != nil {
			logger.Warn("metrics push failed", "err", perr)
		}
	}
	return err
}
