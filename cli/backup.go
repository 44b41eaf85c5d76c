// ABOUTME: Backup CLI commands
// ABOUTME: Authorize Drive, run, list, restore, delete, and schedule database backups
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/remotearmz/commandcenter/backup"
	"github.com/remotearmz/commandcenter/config"
	"github.com/remotearmz/commandcenter/db"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// NewBackupService builds the service for the configured provider.
func NewBackupService(ctx context.Context, database *sql.DB, cfg *config.Config, logger *zap.Logger) (*backup.Service, error) {
	store, err := backup.NewStore(ctx, cfg.Backup)
	if err != nil {
		return nil, err
	}
	return backup.NewService(store, database,
		backup.WithLogger(logger),
		backup.WithMaxVersions(cfg.Backup.MaxVersions),
		backup.WithFrequency(cfg.Backup.Frequency),
	), nil
}

// confirm asks a yes/no question on the terminal. Without a terminal the
// action needs --yes.
func confirm(prompt string, yes bool) error {
	if yes {
		return nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("stdin is not a terminal, pass --yes to confirm")
	}
	_, _ = fmt.Fprintf(stdout, "%s [y/N]: ", prompt)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	}
	return fmt.Errorf("cancelled")
}

// BackupCommand dispatches backup subcommands. It opens the database itself
// so restore can close it before replacing the file.
func BackupCommand(ctx context.Context, cfg *config.Config, logger *zap.Logger, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("backup requires a subcommand (auth, run, list, restore, delete, history, status, schedule)")
	}
	sub, rest := args[0], args[1:]
	if sub == "auth" {
		return backupAuth(ctx)
	}

	database, err := db.OpenDatabase(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = database.Close() }()

	svc, err := NewBackupService(ctx, database, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	fs := flag.NewFlagSet("backup "+sub, flag.ContinueOnError)
	yes := fs.Bool("yes", false, "Skip confirmation")
	limit := fs.Int("limit", 20, "Maximum entries (history)")
	interval := fs.Duration("interval", time.Hour, "How often to check whether a backup is due (schedule)")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	switch sub {
	case "run":
		file, err := svc.BackupDatabase(ctx)
		if err != nil {
			return err
		}
		if !file.Succeeded() {
			return fmt.Errorf("backup to %s failed: %s", svc.Provider(), file.Error)
		}
		_, _ = fmt.Fprintf(stdout, "✓ Backed up to %s: %s (%d bytes)\n", svc.Provider(), file.Name, file.Size)
		return nil

	case "list":
		files, err := svc.ListBackups(ctx)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			_, _ = fmt.Fprintln(stdout, "No backups found")
			return nil
		}
		w := newTable()
		_, _ = fmt.Fprintln(w, "NAME\tSIZE\tCREATED\tID")
		_, _ = fmt.Fprintln(w, "----\t----\t-------\t--")
		for _, f := range files {
			_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", f.Name, f.Size, f.CreatedAt.Format("2006-01-02 15:04"), f.ID)
		}
		_ = w.Flush()
		return nil

	case "restore":
		if fs.NArg() < 1 {
			return fmt.Errorf("backup ID required")
		}
		id := fs.Arg(0)
		if err := confirm(fmt.Sprintf("Replace %s with backup %s?", cfg.DatabasePath, id), *yes); err != nil {
			return err
		}
		_ = database.Close()
		previous, err := svc.RestoreDatabase(ctx, id, cfg.DatabasePath)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(stdout, "✓ Database restored from %s\n", id)
		if previous != "" {
			_, _ = fmt.Fprintf(stdout, "  Previous database kept at %s\n", previous)
		}
		return nil

	case "delete":
		if fs.NArg() < 1 {
			return fmt.Errorf("backup ID required")
		}
		id := fs.Arg(0)
		if err := confirm(fmt.Sprintf("Delete backup %s?", id), *yes); err != nil {
			return err
		}
		if !svc.DeleteBackup(ctx, id) {
			return fmt.Errorf("backup %s could not be deleted", id)
		}
		_, _ = fmt.Fprintf(stdout, "✓ Backup deleted: %s\n", id)
		return nil

	case "history":
		runs, err := svc.History(ctx, *limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			_, _ = fmt.Fprintln(stdout, "No backups have run yet")
			return nil
		}
		w := newTable()
		_, _ = fmt.Fprintln(w, "WHEN\tPROVIDER\tSTATUS\tNAME\tERROR")
		_, _ = fmt.Fprintln(w, "----\t--------\t------\t----\t-----")
		for _, r := range runs {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				r.CreatedAt.Format("2006-01-02 15:04"), r.Provider, r.Status, r.Name, dash(r.Error))
		}
		_ = w.Flush()
		return nil

	case "status":
		due, err := svc.Due(ctx, time.Now())
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(stdout, "Provider:    %s\n", svc.Provider())
		_, _ = fmt.Fprintf(stdout, "Frequency:   %s\n", cfg.Backup.Frequency)
		_, _ = fmt.Fprintf(stdout, "Keep:        %d versions\n", cfg.Backup.MaxVersions)
		if due {
			_, _ = fmt.Fprintln(stdout, "Next backup: due now")
		} else {
			_, _ = fmt.Fprintln(stdout, "Next backup: not due yet")
		}
		return nil

	case "schedule":
		logger.Info("backup scheduler started",
			zap.String("provider", svc.Provider()), zap.Duration("interval", *interval))
		if err := svc.Schedule(ctx, *interval); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	}
	return fmt.Errorf("unknown backup command: %s", sub)
}

func backupAuth(ctx context.Context) error {
	oauthCfg, err := backup.NewOAuthConfig()
	if err != nil {
		return err
	}
	token, err := backup.Authorize(ctx, oauthCfg, func(url string) {
		_, _ = fmt.Fprintf(stdout, "Open this URL in your browser to authorize Drive backups:\n\n  %s\n\n", url)
	})
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}
	if err := backup.SaveToken(token); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "✓ Drive token saved to %s\n", backup.TokenPath())
	return nil
}
