// reconcile recomputes every stored aggregate (list ratings, review scores,
// user XP) from the rows they summarize. Run it after restoring a backup or
// editing data by hand; the server keeps aggregates current on its own.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/aggregate"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/logging"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		progressEvery int
		timeout       time.Duration
		migrate       bool
	)

	flagSet := pflag.NewFlagSet("reconcile", pflag.ContinueOnError)
	flagSet.IntVar(&progressEvery, "progress-every", 500, "log progress after this many lists")
	flagSet.DurationVar(&timeout, "timeout", 0, "abort after this long (0 means no limit)")
	flagSet.BoolVar(&migrate, "migrate", false, "run schema migrations first")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg := config.Load()
	logging.Setup(cfg.AppEnv)

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	if migrate {
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	started := time.Now()
	report, err := aggregate.New(db).ReconcileAll(ctx, progressEvery)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	slog.Info("reconcile finished",
		"lists", report.Lists,
		"reviews", report.Reviews,
		"users", report.Users,
		"elapsed", time.Since(started).String(),
	)
	return nil
}
