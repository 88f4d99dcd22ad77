package cli

import (
	"fmt"

	"github.com/hyperjump/ragd/internal/catalog"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed the catalog and refresh the stored embedding snapshots",
	Long: "Embed the catalog and refresh the stored embedding snapshots.\n" +
		"Unchanged rows reuse their stored vectors; rows no longer in the catalog are pruned.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := currentConfig
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		store, err := openStore(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		if store == nil {
			return fmt.Errorf("embedding snapshots are disabled (storage.disabled or empty storage.database_path)")
		}
		defer store.Close()

		embedder, err := openEmbedder(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize embedder: %w", err)
		}
		defer embedder.Close()

		records, err := loadRecords(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		_, stats, err := catalog.NewBuilder(embedder,
			catalog.WithSnapshotStore(store),
			catalog.WithConcurrency(cfg.Catalog.EmbedConcurrency),
			catalog.WithLogger(logger),
		).Build(cmd.Context(), records)
		if err != nil {
			return err
		}
		count, err := store.Count(cmd.Context(), embedder.Model())
		if err != nil {
			return err
		}
		return WriteBuildStats(cmd.OutOrStdout(), stats, count, outputFormat())
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
