package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/clinic-idm/pkg/account"
	"github.com/tendant/clinic-idm/pkg/config"
)

// idmctl changes account standing directly in the database. The HTTP API has
// no administrative surface; suspension and deactivation happen here.
func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: idmctl <command> [id]\n\nCommands:\n")
		fmt.Fprintf(os.Stderr, "  list-orgs              list organizations\n")
		fmt.Fprintf(os.Stderr, "  suspend-org <id>       suspend an organization\n")
		fmt.Fprintf(os.Stderr, "  activate-org <id>      lift an organization suspension\n")
		fmt.Fprintf(os.Stderr, "  deactivate-user <id>   disable a user account\n")
		fmt.Fprintf(os.Stderr, "  activate-user <id>     re-enable a user account\n")
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.ToDatabaseURL())
	if err != nil {
		slog.Error("Failed creating dbpool", "db", cfg.Database.Database, "host", cfg.Database.Host, "port", cfg.Database.Port)
		os.Exit(1)
	}
	defer pool.Close()

	repo := account.NewPostgresRepository(pool)
	if err := run(ctx, repo, flag.Arg(0), flag.Args()[1:]); err != nil {
		slog.Error("Command failed", "command", flag.Arg(0), "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, repo account.Repository, command string, args []string) error {
	if command == "list-orgs" {
		orgs, err := repo.ListOrganizations(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tSTATUS\tCREATED")
		for _, org := range orgs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", org.ID, org.Name, org.Type, org.Status, org.CreatedAt.Format(time.RFC3339))
		}
		return w.Flush()
	}

	if len(args) != 1 {
		return fmt.Errorf("%s takes exactly one id", command)
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", args[0], err)
	}

	switch command {
	case "suspend-org":
		err = repo.SetOrganizationStatus(ctx, id, account.OrganizationSuspended)
	case "activate-org":
		err = repo.SetOrganizationStatus(ctx, id, account.OrganizationActive)
	case "deactivate-user":
		err = repo.SetUserActive(ctx, id, false)
	case "activate-user":
		err = repo.SetUserActive(ctx, id, true)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		return err
	}
	slog.Info("Updated", "command", command, "id", id)
	return nil
}
