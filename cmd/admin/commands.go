package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/aada-api/internal/application/billing"
	"github.com/aada-api/internal/application/externship"
	"github.com/aada-api/internal/application/notification"
	"github.com/aada-api/internal/application/student"
	"github.com/aada-api/internal/application/user"
	"github.com/aada-api/internal/bootstrap"
	"github.com/aada-api/internal/config"
	"github.com/aada-api/internal/domain"
	"github.com/aada-api/internal/infrastructure/dynamo"
	"github.com/aada-api/internal/infrastructure/postgres"
	"github.com/aada-api/internal/infrastructure/square"
)

// cliActor is the identity maintenance commands act as.
var cliActor = domain.Actor{UserID: "cli", Role: domain.RoleAdmin}

func runMigrate(ctx context.Context, cfg *config.Config, args []string) error {
	command := "up"
	if len(args) > 0 {
		command = args[0]
	}
	switch cfg.DBDriver {
	case config.DBDriverPostgres:
		pool, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		return postgres.Migrate(ctx, pool, command, args[min(1, len(args)):]...)
	case config.DBDriverDynamo:
		if command != "up" {
			return fmt.Errorf("dynamo supports only \"up\": %w", errUsage)
		}
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return err
		}
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		return nil
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}

func runCreateAdmin(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	role := fs.String("role", domain.RoleAdmin, "admin or instructor")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *first == "" || *last == "" {
		return errUsage
	}
	password, err := readPassword()
	if err != nil {
		return err
	}

	repos, closeRepos, err := bootstrap.Repositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepos()

	svc := user.NewService(user.ServiceDeps{UserRepo: repos.Users, StudentRepo: repos.Students})
	u, err := svc.CreateStaff(ctx, domain.CreateUserRequest{
		Email:     *email,
		Password:  password,
		FirstName: *first,
		LastName:  *last,
	}, *role)
	if err != nil {
		return err
	}
	slog.Info("account created", "user_id", u.UserID, "email", u.Email, "role", u.Role)
	return nil
}

// readPassword prompts twice on a terminal, or reads one line from a pipe.
func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		var line string
		if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return line, nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Fprint(os.Stderr, "Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(first), nil
}

func runIssueInvoices(ctx context.Context, cfg *config.Config, _ []string) error {
	repos, closeRepos, err := bootstrap.Repositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepos()

	svc := billing.NewService(billing.ServiceDeps{
		PlanRepo:    repos.PaymentPlans,
		InvoiceRepo: repos.Invoices,
		StudentRepo: repos.Students,
		Gateway:     square.NewClient(cfg.Square),
	})
	report, err := svc.IssueMissing(ctx)
	slog.Info("issue-invoices finished", "issued", report.Issued, "skipped", report.Skipped, "failed", report.Failed)
	return err
}

func runSetExternship(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("set-externship", flag.ContinueOnError)
	studentID := fs.String("student", "", "student id")
	status := fs.String("status", "", "externship status")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *studentID == "" || strings.TrimSpace(*status) == "" {
		return errUsage
	}

	repos, closeRepos, err := bootstrap.Repositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepos()

	svc := externship.NewService(externship.ServiceDeps{StudentRepo: repos.Students, ExternshipRepo: repos.Externships})
	e, err := svc.Set(ctx, cliActor, *studentID, domain.ExternshipStatusInput{Status: *status})
	if err != nil {
		return err
	}
	slog.Info("externship updated", "student_id", e.StudentID, "status", e.Status)
	return nil
}

func runSetDeviceToken(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("set-device-token", flag.ContinueOnError)
	studentID := fs.String("student", "", "student id")
	token := fs.String("token", "", "FCM registration token")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *studentID == "" || *token == "" {
		return errUsage
	}

	repos, closeRepos, err := bootstrap.Repositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepos()

	return student.NewService(repos.Students).SetDeviceToken(ctx, cliActor, *studentID, *token)
}

func runSendPush(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("send-push", flag.ContinueOnError)
	studentID := fs.String("student", "", "student id")
	title := fs.String("title", "AADA", "notification title")
	body := fs.String("body", "", "notification body")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *studentID == "" || *body == "" {
		return errUsage
	}

	repos, closeRepos, err := bootstrap.Repositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepos()
	push, err := bootstrap.PushSender(ctx, cfg)
	if err != nil {
		return err
	}

	svc := notification.NewService(notification.ServiceDeps{NotificationRepo: repos.Notifications, StudentRepo: repos.Students, Push: push, PushTimeout: cfg.PushTimeout})
	n, err := svc.Send(ctx, *studentID, *title, *body)
	if err != nil {
		return err
	}
	slog.Info("push sent", "student_id", n.StudentID, "notification_id", n.NotificationID)
	return nil
}
