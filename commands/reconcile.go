package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/c360studio/regkg/config"
	"github.com/c360studio/regkg/graph"
	"github.com/c360studio/regkg/reconcile"
	"github.com/c360studio/regkg/records"
)

func newReconcileCommand(app *App) *cobra.Command {
	var (
		rulesPath   string
		recordGlobs []string
		outDir      string
		publish     bool
		watch       bool
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile entity records into canonical clusters",
		Long: `Reconcile loads entity records, scores every pair under the rules
file, and writes the audit artifact set: id map, decisions log, summary,
conflicts report, and owl:sameAs facts.

With --watch the run repeats whenever the rules file changes; invalid
rule updates are rejected and the last good rules stay active.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if outDir != "" {
				app.Config.Artifacts.Dir = outDir
			}

			rules, err := config.LoadRules(rulesPath)
			if err != nil {
				return fmt.Errorf("load rules: %w", err)
			}

			ctx := cmd.Context()
			if err := runReconcile(ctx, app, rules, recordGlobs, publish); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			app.Logger.Info("Watching rules for changes", slog.String("path", rulesPath))
			err = config.WatchRules(ctx, rulesPath, app.Logger, func(updated *config.Rules) {
				if err := runReconcile(ctx, app, updated, recordGlobs, publish); err != nil {
					app.Logger.Error("Reconciliation run failed", slog.String("error", err.Error()))
				}
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&rulesPath, "rules", "rules.yaml", "Rules file path (YAML)")
	cmd.Flags().StringSliceVar(&recordGlobs, "records", []string{"records/**/*.json"}, "Entity record file globs")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Artifact output directory (overrides config)")
	cmd.Flags().BoolVar(&publish, "publish", false, "Publish owl:sameAs facts to the graph ingest stream")
	cmd.Flags().BoolVar(&watch, "watch", false, "Re-run when the rules file changes")

	return cmd
}

func runReconcile(ctx context.Context, app *App, rules *config.Rules, globs []string, publish bool) error {
	entities, err := records.LoadEntityRecords(globs)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}

	engine, err := reconcile.NewEngine(rules, reconcile.WithLogger(app.Logger))
	if err != nil {
		return err
	}

	result, err := engine.Run(ctx, entities)
	if err != nil {
		return err
	}

	if err := reconcile.WriteArtifacts(app.Config.Artifacts.Dir, result); err != nil {
		return err
	}
	app.Logger.Info("Wrote reconciliation artifacts",
		slog.String("dir", app.Config.Artifacts.Dir),
		slog.String("run_id", result.RunID))

	if !publish {
		return nil
	}
	if app.Config.NATS.URL == "" {
		app.Logger.Warn("Publish requested but nats.url is not configured, skipping")
		return nil
	}

	nc, err := connectNATS(ctx, app.Config.NATS.URL)
	if err != nil {
		return err
	}
	defer nc.Close(ctx)

	if err := graph.PublishSameAs(ctx, nc, result.Canonical); err != nil {
		return err
	}
	app.Logger.Info("Published merge facts", slog.String("subject", graph.GraphIngestSubject))
	return nil
}
