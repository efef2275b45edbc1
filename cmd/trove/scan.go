package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/trovehq/trove/internal/dedup"
	"github.com/trovehq/trove/internal/engine"
	"github.com/trovehq/trove/internal/model"
)

func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan purchase records for duplicates and consolidate them",
		Long: `Run a batch duplicate scan. Each user's records are compared
pairwise; groups of records describing the same purchase are consolidated
behind the earliest-created record, with the rest archived (never deleted).`,
		RunE: runScan,
	}

	cmd.Flags().String("user", "", "Scan a single user instead of all users")
	cmd.Flags().Bool("dry-run", false, "Report duplicate groups without archiving anything")
	cmd.Flags().Bool("merge-fields", false, "Fill empty primary fields from archived duplicates")
	cmd.Flags().Int("workers", 0, "Concurrent user scans (default from config)")
	cmd.Flags().Duration("user-timeout", 0, "Deadline per user scan (default from config)")
	cmd.Flags().String("metrics-listen", "", "Address to serve Prometheus metrics on during the scan (e.g. :9104)")

	return cmd
}

func runScan(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	userID, _ := cmd.Flags().GetString("user")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	mergeFields, _ := cmd.Flags().GetBool("merge-fields")
	workers, _ := cmd.Flags().GetInt("workers")
	userTimeout, _ := cmd.Flags().GetDuration("user-timeout")
	metricsListen, _ := cmd.Flags().GetString("metrics-listen")

	if workers <= 0 {
		workers = viper.GetInt("scan.workers")
	}
	if userTimeout <= 0 {
		userTimeout = viper.GetDuration("scan.user_timeout")
	}

	detCfg, err := detectorConfig()
	if err != nil {
		return err
	}

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if metricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if serveErr := http.ListenAndServe(metricsListen, mux); serveErr != nil {
				slog.Error("Metrics listener failed", "addr", metricsListen, "error", serveErr)
			}
		}()
		slog.Info("Serving metrics", "addr", metricsListen)
	}

	var policy dedup.MergePolicy = dedup.LogOnlyMergePolicy{}
	if mergeFields {
		policy = dedup.FieldFillMergePolicy{}
	}

	engCfg := engine.Config{
		Detector:    detCfg,
		MergePolicy: policy,
		Workers:     workers,
		UserTimeout: userTimeout,
		DryRun:      dryRun,
	}

	if userID != "" {
		eng := engine.NewWithConfig(store, engCfg)
		summary, scanErr := eng.ScanUser(ctx, userID)
		if scanErr != nil {
			return fmt.Errorf("scan failed for user %s: %w", userID, scanErr)
		}
		printSummary(summary, dryRun)
		return nil
	}

	// Pre-count users so the progress bar has a total.
	users, err := store.GetUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	if len(users) == 0 {
		fmt.Println("No purchase records to scan.")
		return nil
	}

	bar := progressbar.NewOptions(len(users),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Scanning users..."),
	)
	engCfg.OnUserDone = func(string) { _ = bar.Add(1) }

	eng := engine.NewWithConfig(store, engCfg)

	start := time.Now()
	summary, err := eng.ScanAllUsers(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	_ = bar.Finish()
	fmt.Println()

	printSummary(summary, dryRun)
	slog.Debug("Scan timing", "elapsed", time.Since(start))
	return nil
}

func printSummary(summary *model.ScanSummary, dryRun bool) {
	action := "consolidated"
	if dryRun {
		action = "found (dry run)"
	}
	fmt.Printf("Scan %s complete:\n", summary.ScanID)
	fmt.Printf("  users scanned:      %d\n", summary.UsersScanned)
	fmt.Printf("  records scanned:    %d\n", summary.RecordsScanned)
	fmt.Printf("  groups %s: %d\n", action, summary.GroupsConsolidated)
	fmt.Printf("  records archived:   %d\n", summary.RecordsArchived)
	if summary.GroupsFailed > 0 {
		fmt.Printf("  groups failed:      %d\n", summary.GroupsFailed)
	}
}
