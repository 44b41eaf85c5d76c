// ABOUTME: Entry point for the command center CLI, dashboards, and MCP server
// ABOUTME: Loads config, opens the database, and routes to subcommands
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/remotearmz/commandcenter/analytics"
	"github.com/remotearmz/commandcenter/cli"
	"github.com/remotearmz/commandcenter/config"
	"github.com/remotearmz/commandcenter/db"
	"github.com/remotearmz/commandcenter/logging"
	"go.uber.org/zap"
)

const version = "0.2.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/commandcenter/commandcenter.db)")
	configPath := flag.String("config", "", "Config file (default: ~/.config/commandcenter/config.yaml)")
	initOnly := flag.Bool("init", false, "Initialize database and exit")
	debug := flag.Bool("debug", false, "Verbose logging")
	flag.Usage = printUsage

	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("commandcenter version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 && !*initOnly {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}

	logger, err := logging.New(*debug)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *initOnly, args); err != nil {
		stop()
		_ = logger.Sync()
		log.Fatalf("Error: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, initOnly bool, args []string) error {
	// backup manages its own connection so restore can replace the file.
	if len(args) > 0 && args[0] == "backup" {
		return cli.BackupCommand(ctx, cfg, logger, args[1:])
	}

	database, err := db.OpenDatabase(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = database.Close() }()
	logger.Debug("database opened", zap.String("path", cfg.DatabasePath))

	if initOnly {
		log.Printf("Database initialized at %s", cfg.DatabasePath)
		return nil
	}

	loc, err := cfg.TimeLocation()
	if err != nil {
		return err
	}
	agg := analytics.New(db.NewOutreachRepository(database),
		analytics.WithLocation(loc),
		analytics.WithLogger(logger),
	)

	command, commandArgs := args[0], args[1:]
	switch command {
	case "mcp":
		return cli.MCPCommand(ctx, database, agg, logger, version)
	case "web":
		return cli.WebCommand(ctx, database, agg, cfg, logger, commandArgs)
	case "tui":
		return cli.TUICommand(ctx, database, agg, cfg, logger)
	case "analytics":
		return cli.AnalyticsCommand(agg, commandArgs)
	}

	if len(commandArgs) == 0 {
		printUsage()
		return fmt.Errorf("%s requires a subcommand", command)
	}
	sub, subArgs := commandArgs[0], commandArgs[1:]

	switch command {
	case "client":
		return clientCommand(database, sub, subArgs)
	case "lead":
		return leadCommand(database, sub, subArgs)
	case "outreach":
		switch sub {
		case "log":
			return cli.LogOutreachCommand(database, loc, subArgs)
		case "list":
			return cli.ListOutreachCommand(database, loc, subArgs)
		case "update":
			return cli.UpdateOutreachCommand(database, subArgs)
		case "delete":
			return cli.DeleteOutreachCommand(database, subArgs)
		}
	case "target":
		switch sub {
		case "add":
			return cli.AddTargetCommand(database, loc, subArgs)
		case "list":
			return cli.ListTargetsCommand(database, subArgs)
		case "progress":
			return cli.TargetProgressCommand(database, loc, subArgs)
		case "overdue":
			return cli.OverdueTargetsCommand(database, loc, subArgs)
		case "delete":
			return cli.DeleteTargetCommand(database, subArgs)
		}
	case "campaign":
		switch sub {
		case "add":
			return cli.AddCampaignCommand(database, loc, subArgs)
		case "list":
			return cli.ListCampaignsCommand(database, subArgs)
		case "results":
			return cli.CampaignResultsCommand(database, subArgs)
		case "start", "pause", "resume", "complete", "cancel", "archive":
			return cli.CampaignActionCommand(database, sub, subArgs)
		}
	case "integration":
		switch sub {
		case "add":
			return cli.AddIntegrationCommand(database, subArgs)
		case "list":
			return cli.ListIntegrationsCommand(database, subArgs)
		case "status":
			return cli.IntegrationStatusCommand(database, subArgs)
		case "errors":
			return cli.IntegrationErrorsCommand(database, subArgs)
		}
	case "viz":
		switch sub {
		case "graph":
			return cli.VizGraphCommand(database, subArgs)
		case "dashboard":
			return cli.VizDashboardCommand(database, agg, subArgs)
		}
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}

	printUsage()
	return fmt.Errorf("unknown %s command: %s", command, sub)
}

func clientCommand(database *sql.DB, sub string, args []string) error {
	switch sub {
	case "add":
		return cli.AddClientCommand(database, args)
	case "list":
		return cli.ListClientsCommand(database, args)
	case "update":
		return cli.UpdateClientCommand(database, args)
	case "delete":
		return cli.DeleteClientCommand(database, args)
	}
	return fmt.Errorf("unknown client command: %s", sub)
}

func leadCommand(database *sql.DB, sub string, args []string) error {
	switch sub {
	case "add":
		return cli.AddLeadCommand(database, args)
	case "list":
		return cli.ListLeadsCommand(database, args)
	case "update":
		return cli.UpdateLeadCommand(database, args)
	case "delete":
		return cli.DeleteLeadCommand(database, args)
	}
	return fmt.Errorf("unknown lead command: %s", sub)
}

func printUsage() {
	fmt.Printf(`commandcenter v%s - outreach analytics for a small agency

USAGE:
  commandcenter [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Database path (default: ~/.local/share/commandcenter/commandcenter.db)
  --config <path>        Config file (default: ~/.config/commandcenter/config.yaml)
  --init                 Initialize database and exit
  --debug                Verbose logging

COMMANDS:
  client                 add, list, update, delete retainer clients
  lead                   add, list, update, delete leads
  outreach               log, list, update, delete outreach
  analytics              daily, weekly, monthly, trend, type, status
  target                 add, list, progress, overdue, delete goals
  campaign               add, list, results, start, pause, resume, complete, cancel, archive
  integration            add, list, status, errors
  backup                 auth, run, list, restore, delete, history, status, schedule
  viz                    graph, dashboard
  web                    Serve the web dashboard (--port)
  tui                    Open the terminal dashboard
  mcp                    Start the MCP server on stdio

Flags for update, progress, results, status, and action commands come before the ID.

EXAMPLES:
  # Log a call and mark it done later
  commandcenter outreach log --client "Acme Studio" --type phone_call --notes "renewal"
  commandcenter outreach update --status completed <id>

  # This week's numbers as JSON
  commandcenter analytics weekly --json

  # Email outreach over the last month
  commandcenter analytics type email

  # Back up now, then keep backing up on the configured frequency
  commandcenter backup run
  commandcenter backup schedule --interval 30m

`, version)
}
