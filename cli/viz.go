// ABOUTME: Visualization CLI commands
// ABOUTME: Handles viz dashboard and outreach graph generation commands
package cli

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/remotearmz/commandcenter/analytics"
	"github.com/remotearmz/commandcenter/viz"
)

// VizGraphCommand generates the outreach network graph, optionally for one client.
func VizGraphCommand(db *sql.DB, args []string) error {
	fs := flag.NewFlagSet("viz graph", flag.ContinueOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var clientID *uuid.UUID
	if fs.NArg() > 0 {
		id, err := uuid.Parse(fs.Arg(0))
		if err != nil {
			return fmt.Errorf("invalid client ID: %w", err)
		}
		clientID = &id
	}

	dot, err := viz.NewGraphGenerator(db).GenerateOutreachGraph(context.Background(), clientID)
	if err != nil {
		return err
	}

	if *output != "" {
		return os.WriteFile(*output, []byte(dot), 0644)
	}
	_, _ = fmt.Fprintln(stdout, dot)
	return nil
}

func VizDashboardCommand(database *sql.DB, agg *analytics.Aggregator, args []string) error {
	stats, err := viz.GenerateDashboardStats(context.Background(), database, agg)
	if err != nil {
		return fmt.Errorf("failed to generate dashboard stats: %w", err)
	}

	_, _ = fmt.Fprint(stdout, viz.RenderDashboard(stats))
	return nil
}
