package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/c360studio/regkg/graph"
	"github.com/c360studio/regkg/provenance"
	"github.com/c360studio/regkg/records"
)

func newProvenanceCommand(app *App) *cobra.Command {
	var (
		fetchGlobs []string
		publish    bool
	)

	cmd := &cobra.Command{
		Use:   "provenance",
		Short: "Record pre-fetched documents in the provenance ledger",
		Long: `Provenance loads pre-fetched corpus documents, hashes their content,
and records each subject in the ledger. Subjects whose content hash is
unchanged are skipped; changed subjects get fresh PROV-O statements.
The manifest is rewritten on every run, the graph files only when
something changed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fetches, err := records.LoadFetchRecords(fetchGlobs)
			if err != nil {
				return fmt.Errorf("load fetch records: %w", err)
			}

			ledger, err := provenance.Open(app.Config.Provenance.ManifestPath, app.Logger)
			if err != nil {
				return err
			}

			changed := 0
			skipped := 0
			for _, f := range fetches {
				if err := f.Validate(); err != nil {
					skipped++
					app.Logger.Warn("Skipping invalid fetch record", slog.String("error", err.Error()))
					continue
				}

				hash, err := fetchContentHash(f)
				if err != nil {
					return fmt.Errorf("hash %s: %w", f.Subject, err)
				}

				var opts []provenance.RecordOption
				if !f.RetrievedAt.IsZero() {
					opts = append(opts, provenance.WithRetrievedAt(f.RetrievedAt))
				}
				if f.RequestURL != "" || len(f.RequestParams) > 0 {
					requestURL := f.RequestURL
					if requestURL == "" {
						requestURL = f.SourceURL
					}
					opts = append(opts, provenance.WithRequest(requestURL, f.RequestParams))
				}

				isChanged, err := ledger.Record(f.Subject, f.SourceURL, f.ProviderDomain, hash, opts...)
				if err != nil {
					return fmt.Errorf("record %s: %w", f.Subject, err)
				}
				if isChanged {
					changed++
				}
			}

			// Flush clears the pending statements, so capture them first
			// for publishing.
			quads := ledger.Quads()
			if err := ledger.Flush(); err != nil {
				return err
			}
			app.Logger.Info("Provenance run complete",
				slog.Int("records", len(fetches)),
				slog.Int("changed", changed),
				slog.Int("skipped", skipped))

			if !publish || len(quads) == 0 {
				return nil
			}
			if app.Config.NATS.URL == "" {
				app.Logger.Warn("Publish requested but nats.url is not configured, skipping")
				return nil
			}

			ctx := cmd.Context()
			nc, err := connectNATS(ctx, app.Config.NATS.URL)
			if err != nil {
				return err
			}
			defer nc.Close(ctx)

			if err := graph.PublishProvenance(ctx, nc, quads); err != nil {
				return err
			}
			app.Logger.Info("Published provenance", slog.Int("statements", len(quads)))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&fetchGlobs, "fetched", []string{"fetched/**/*.ndjson"}, "Fetched document file globs")
	cmd.Flags().BoolVar(&publish, "publish", false, "Publish provenance statements to the graph ingest stream")

	return cmd
}

// fetchContentHash hashes a fetch record's document. Inline JSON content
// is hashed in canonical form so equivalent documents hash identically;
// a raw document referenced by content_path is hashed byte for byte.
func fetchContentHash(f records.FetchRecord) (string, error) {
	if len(f.Content) > 0 {
		return provenance.ContentHash(f.Content)
	}
	raw, err := os.ReadFile(f.ContentPath)
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return provenance.ContentHashBytes(raw), nil
}
