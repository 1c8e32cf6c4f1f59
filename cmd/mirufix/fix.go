package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mirubato/mirubato/internal/logging"
	"github.com/mirubato/mirubato/internal/repair"
	"github.com/mirubato/mirubato/internal/repair/config"
	"github.com/mirubato/mirubato/internal/repair/records"
)

var (
	userID       string
	batchSize    int
	interactive  bool
	noAutoBackup bool
	dryRun       bool
)

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Apply a repair pass to one user's sync data",
}

var fixDuplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "Tombstone likely duplicate logbook entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFix(cmd, func(ctx context.Context, r *repair.Runner, opts repair.Options) (*repair.Report, error) {
			return r.FixDuplicates(ctx, opts)
		})
	},
}

var fixScoreIDsCmd = &cobra.Command{
	Use:   "score-ids",
	Short: "Rewrite legacy score-id references to canonical form",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFix(cmd, func(ctx context.Context, r *repair.Runner, opts repair.Options) (*repair.Report, error) {
			return r.FixScoreIDs(ctx, opts)
		})
	},
}

var fixOrphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "Resolve entries referencing scores absent from the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFix(cmd, func(ctx context.Context, r *repair.Runner, opts repair.Options) (*repair.Report, error) {
			return r.FixOrphans(ctx, opts)
		})
	},
}

func init() {
	fixCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "user id to repair (required)")
	fixCmd.PersistentFlags().IntVar(&batchSize, "batch-size", repair.DefaultBatchSize, "max fixes applied per run")
	fixCmd.PersistentFlags().BoolVarP(&interactive, "interactive", "i", false, "confirm each fix on the terminal")
	fixCmd.PersistentFlags().BoolVar(&noAutoBackup, "no-auto-backup", false, "skip the pre-mutation backup snapshot")
	fixCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "report what would change without mutating anything")
	_ = fixCmd.MarkPersistentFlagRequired("user")

	fixCmd.AddCommand(fixDuplicatesCmd, fixScoreIDsCmd, fixOrphansCmd)
}

// runFix wires the full stack for one repair pass and prints the report,
// which is emitted even when the run stops on an error.
func runFix(cmd *cobra.Command, run func(context.Context, *repair.Runner, repair.Options) (*repair.Report, error)) error {
	ctx := cmd.Context()

	if interactive && !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("--interactive requires a terminal")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fail(err)
	}

	log := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	db, repo, err := records.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fail(err)
	}
	defer db.Close()

	var uploader repair.Uploader
	if cfg.S3Bucket != "" {
		up, err := repair.NewS3Uploader(ctx, repair.S3Config{
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3BaseEndpoint,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Prefix:    "mirufix",
		})
		if err != nil {
			return fail(err)
		}
		uploader = up
	}

	backup, err := repair.NewBackupWriter(cfg.BackupDir, uploader)
	if err != nil {
		return fail(err)
	}
	audit, auditFile, err := repair.OpenAuditLog(cfg.AuditLogPath)
	if err != nil {
		return fail(err)
	}
	defer auditFile.Close()

	runner := repair.NewRunner(repo, backup, audit,
		repair.NewStdinPrompter(os.Stdin, os.Stdout), log)

	report, err := run(ctx, runner, repair.Options{
		UserID:      userID,
		BatchSize:   batchSize,
		Interactive: interactive,
		AutoBackup:  !noAutoBackup,
		DryRun:      dryRun,
	})
	if report != nil {
		fmt.Print(report.Summary())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "mirufix: %v\n", err)
		if report != nil {
			fmt.Fprintf(os.Stderr, "transaction %s stopped early", report.TransactionID)
			if report.BackupPath != "" {
				fmt.Fprintf(os.Stderr, "; pre-run backup at %s", report.BackupPath)
			}
			fmt.Fprintln(os.Stderr)
		}
		return err
	}
	return nil
}

func fail(err error) error {
	fmt.Fprintf(os.Stderr, "mirufix: %v\n", err)
	return err
}
