// Package main provides a maintenance CLI that runs store migration routines.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/time/rate"

	"github.com/cragbook/cragbook-server/internal/config"
	"github.com/cragbook/cragbook-server/internal/domain"
	"github.com/cragbook/cragbook-server/internal/logger"
	"github.com/cragbook/cragbook-server/internal/store"
)

func main() {
	// Routine selection flags. Config flags are registered by LoadConfig,
	// which also calls flag.Parse, so these must be declared first.
	inlineSets := flag.Bool("inline-sets", false, "Move legacy inline membership arrays into set records")
	storedLevels := flag.Bool("stored-levels", false, "Drop stored level fields from climber records")
	ownershipSets := flag.Bool("ownership-sets", false, "Move legacy ownership values into mirrored set records")
	recalcClimbs := flag.Bool("recalculate-climbs", false, "Recompute climber climb counts from crew indexes")
	assignUnowned := flag.Bool("assign-unowned", false, "Assign unowned resources of -kind to -admin")
	kindFlag := flag.String("kind", "", "Resource kind for -assign-unowned (climber, album, location, meme)")
	adminFlag := flag.String("admin", "", "Admin user ID for -assign-unowned")

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	if !*inlineSets && !*storedLevels && !*ownershipSets && !*recalcClimbs && !*assignUnowned {
		fmt.Fprintln(os.Stderr, "No routine selected. Pass one or more of -inline-sets, -stored-levels, -ownership-sets, -recalculate-climbs, -assign-unowned.")
		os.Exit(2)
	}

	st, err := store.New(cfg.DBPath(), log.Logger)
	if err != nil {
		log.Error("Failed to open store", "path", cfg.DBPath(), "error", err)
		os.Exit(1)
	}
	defer st.Close()

	var limiter *rate.Limiter
	if cfg.Migration.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Migration.RatePerSecond), cfg.Migration.RatePerSecond)
	}

	ctx := context.Background()
	failed := false

	run := func(name string, fn func() (*store.MigrationReport, error)) {
		report, err := fn()
		if err != nil {
			log.Error("Migration routine failed", "routine", name, "error", err)
			failed = true
			return
		}
		log.Info("Migration routine finished",
			"routine", report.Routine,
			"run_id", report.RunID,
			"examined", report.Examined,
			"changed", report.Changed,
			"failed", report.Failed,
		)
	}

	if *inlineSets {
		run("inline-sets", func() (*store.MigrationReport, error) {
			return st.MigrateInlineSets(ctx, limiter)
		})
	}
	if *storedLevels {
		run("stored-levels", func() (*store.MigrationReport, error) {
			return st.MigrateStoredLevels(ctx, limiter)
		})
	}
	if *ownershipSets {
		run("ownership-sets", func() (*store.MigrationReport, error) {
			return st.MigrateOwnershipSets(ctx, limiter)
		})
	}
	if *recalcClimbs {
		run("recalculate-climbs", func() (*store.MigrationReport, error) {
			return st.RecalculateClimbs(ctx, limiter)
		})
	}
	if *assignUnowned {
		if *kindFlag == "" || *adminFlag == "" {
			fmt.Fprintln(os.Stderr, "-assign-unowned requires -kind and -admin")
			os.Exit(2)
		}
		run("assign-unowned", func() (*store.MigrationReport, error) {
			return st.AssignUnownedResources(ctx, domain.ResourceKind(*kindFlag), *adminFlag, limiter)
		})
	}

	if failed {
		os.Exit(1)
	}
}
