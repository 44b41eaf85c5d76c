// ABOUTME: Web and TUI subcommands
// ABOUTME: Starts the HTTP dashboard or the interactive terminal dashboard
package cli

import (
	"context"
	"database/sql"
	"flag"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/remotearmz/commandcenter/analytics"
	"github.com/remotearmz/commandcenter/backup"
	"github.com/remotearmz/commandcenter/config"
	"github.com/remotearmz/commandcenter/tui"
	"github.com/remotearmz/commandcenter/web"
	"go.uber.org/zap"
)

// WebCommand serves the dashboard until ctx is cancelled.
func WebCommand(ctx context.Context, database *sql.DB, agg *analytics.Aggregator, cfg *config.Config, logger *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	port := fs.Int("port", cfg.Web.Port, "Port to listen on")
	if err := fs.Parse(args); err != nil {
		return err
	}

	server, err := web.NewServer(database, agg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return server.Start(ctx, *port)
}

// TUICommand runs the terminal dashboard. Backup actions are disabled when
// the configured provider cannot be opened.
func TUICommand(ctx context.Context, database *sql.DB, agg *analytics.Aggregator, cfg *config.Config, logger *zap.Logger) error {
	var svc *backup.Service
	if s, err := NewBackupService(ctx, database, cfg, logger); err != nil {
		logger.Warn("backups unavailable in dashboard", zap.Error(err))
	} else {
		svc = s
		defer func() { _ = svc.Close() }()
	}

	p := tea.NewProgram(tui.NewModel(ctx, database, agg, svc), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
