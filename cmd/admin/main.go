// Command admin is the maintenance CLI: migrations, account bootstrap, seed
// data and one-off billing and push operations.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/aada-api/internal/config"
	"github.com/aada-api/internal/pkg/logging"
)

type command struct {
	name  string
	usage string
	reqs  []config.Requirement
	run   func(ctx context.Context, cfg *config.Config, args []string) error
}

var commands = []command{
	{"migrate", "migrate [up|down|status|redo]   apply Postgres migrations or create DynamoDB tables", []config.Requirement{config.RequireDatabase}, runMigrate},
	{"create-admin", "create-admin -email E -first F -last L [-role admin|instructor]", []config.Requirement{config.RequireDatabase}, runCreateAdmin},
	{"seed", "seed                             insert sample students, plans and invoices", []config.Requirement{config.RequireDatabase}, runSeed},
	{"issue-invoices", "issue-invoices                   create a Square invoice for every plan without one", []config.Requirement{config.RequireDatabase, config.RequireBilling}, runIssueInvoices},
	{"set-externship", "set-externship -student ID -status S", []config.Requirement{config.RequireDatabase}, runSetExternship},
	{"set-device-token", "set-device-token -student ID -token T", []config.Requirement{config.RequireDatabase}, runSetDeviceToken},
	{"send-push", "send-push -student ID -title T -body B", []config.Requirement{config.RequireDatabase, config.RequirePush}, runSendPush},
}

var errUsage = errors.New("usage")

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, reading from environment")
	}
	cfg := config.Load()
	logging.Setup(cfg.AppEnv, cfg.LogLevel)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd, ok := lookup(os.Args[1])
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err := cfg.Validate(cmd.reqs...); err != nil {
		slog.Error("configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.run(ctx, cfg, os.Args[2:]); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "usage: admin "+cmd.usage)
			os.Exit(2)
		}
		slog.Error(cmd.name+" failed", "err", err)
		os.Exit(1)
	}
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func usage() {
	var b strings.Builder
	b.WriteString("usage: admin <command> [flags]\n\ncommands:\n")
	for _, c := range commands {
		b.WriteString("  " + c.usage + "\n")
	}
	fmt.Fprint(os.Stderr, b.String())
}
