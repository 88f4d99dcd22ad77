package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hyperjump/ragd/internal/config"
	"github.com/hyperjump/ragd/internal/storage"
	"github.com/spf13/cobra"
)

var statusServer string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status, or local configuration and snapshot status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var status map[string]interface{}
		var err error
		if statusServer != "" {
			status, err = statusViaHTTP(cmd.Context(), statusServer)
		} else {
			status, err = localStatus(cmd.Context(), currentConfig, configPath)
		}
		if err != nil {
			return err
		}
		return WriteStatus(cmd.OutOrStdout(), status, outputFormat())
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusServer, "server", "http://localhost:5000",
		`server URL; use --server "" to inspect local configuration and storage instead`)
	rootCmd.AddCommand(statusCmd)
}

func statusViaHTTP(ctx context.Context, serverURL string) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(serverURL, "/")+"/api/v1/status", nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var status map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return status, nil
}

// localStatus reports configuration and snapshot counts without embedding the catalog.
func localStatus(ctx context.Context, cfg *config.Config, path string) (map[string]interface{}, error) {
	if path == "" {
		path = "(defaults)"
	}
	status := map[string]interface{}{
		"config_path":       path,
		"catalog_source":    cfg.Catalog.Source,
		"vector_index_type": cfg.Index.Type,
	}
	configInfo := map[string]interface{}{
		"embedding_provider":   cfg.Embedding.Provider,
		"embedding_dimensions": cfg.Embedding.Dimensions,
		"default_k":            cfg.Search.DefaultK,
		"template":             cfg.Prompt.Template,
		"max_prompt_length":    cfg.Prompt.MaxLength,
		"generation_base_url":  cfg.Generation.BaseURL,
		"generation_model":     cfg.Generation.Model,
		"generation_timeout":   cfg.Generation.Timeout.String(),
		"listen_addr":          cfg.Addr(),
	}
	status["config"] = configInfo

	store, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	if store == nil {
		status["snapshots_enabled"] = false
		return status, nil
	}
	defer store.Close()
	status["snapshots_enabled"] = true
	status["database_path"] = cfg.Storage.DatabasePath

	embedder, err := openEmbedder(cfg)
	if err == nil {
		defer embedder.Close()
		n, err := store.Count(ctx, embedder.Model())
		if err != nil {
			return nil, err
		}
		status["snapshots"] = n
		configInfo["embedding_model"] = embedder.Model()
	}
	if diskBytes, err := storage.DiskUsageBytes(storage.DatabaseFiles(cfg.Storage.DatabasePath)...); err == nil {
		status["disk_usage_bytes"] = diskBytes
	}
	return status, nil
}
