package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c360studio/regkg/expand"
)

func newExpandCommand(app *App) *cobra.Command {
	var (
		transport string
		maxHops   int
		maxPaths  int
	)

	cmd := &cobra.Command{
		Use:   "expand <section-id>...",
		Short: "Discover related regulation sections through the graph",
		Long: `Expand runs a bounded multi-hop traversal from each section id and
prints the resulting snippets as JSON: confidence-ranked paths, related
sections, and a short text summary for retrieval context.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("max-hops") {
				app.Config.Expansion.MaxHops = maxHops
			}
			if cmd.Flags().Changed("max-paths") {
				app.Config.Expansion.MaxPathsPerSection = maxPaths
			}

			ctx := cmd.Context()

			var gateway expand.Gateway
			switch transport {
			case "http":
				gateway = expand.NewHTTPGateway(app.Config.Gateway.URL, app.Config.Gateway.Timeout)
			case "nats":
				nc, err := connectNATS(ctx, app.Config.NATS.URL)
				if err != nil {
					return err
				}
				defer nc.Close(ctx)
				gateway = expand.NewNATSGateway(nc.GetConnection(), app.Config.Gateway.Subject, app.Config.Gateway.Timeout)
			default:
				return fmt.Errorf("unknown transport %q (http, nats)", transport)
			}

			expander, err := expand.NewExpander(gateway, app.Config, expand.WithLogger(app.Logger))
			if err != nil {
				return err
			}

			snippets, expandErr := expander.Expand(ctx, args)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(snippets); err != nil {
				return err
			}
			// Per-section failures surface after the successful sections
			// have been printed.
			return expandErr
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "http", "Gateway transport (http, nats)")
	cmd.Flags().IntVar(&maxHops, "max-hops", 0, "Maximum traversal depth (overrides config)")
	cmd.Flags().IntVar(&maxPaths, "max-paths", 0, "Maximum paths per section (overrides config)")

	return cmd
}
