package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	billiosmcp "github.com/valter-silva-au/billios/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the field test formulae as MCP tools over stdio",
	Long: `Serve the field test formulae over the MCP stdio transport so an
assistant can call them as tools: sand_used, wet_density, moisture_content,
dry_density, compaction, rock_correction, lab_max_correction,
evaluate_report and get_metrics.

Results that are not finite numbers are returned as tool errors whatever
the strict setting, because JSON cannot carry them.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Runner == nil {
			return fmt.Errorf("formula runner not initialized")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err := billiosmcp.NewServer(Runner, ReportMgr, MetricsCalc, appVersion).Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("serving MCP: %w", err)
		}
		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
