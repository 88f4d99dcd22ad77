// Package cli implements the ragd command line.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hyperjump/ragd/internal/config"
	"github.com/hyperjump/ragd/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// DefaultConfigPath is where an installed ragd looks for its config file.
const DefaultConfigPath = "/usr/local/etc/ragd/config.yaml"

var version = "dev"

var (
	cfgFile   string
	debugFlag bool
	jsonFlag  bool

	currentConfig *config.Config
	configPath    string
)

var rootCmd = &cobra.Command{
	Use:           "ragd",
	Short:         "ragd answers questions over a product catalog with retrieval-augmented generation",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		_ = godotenv.Load()
		cfg, path, err := loadConfig(cfgFile)
		if err != nil {
			return err
		}
		if debugFlag {
			cfg.Debug = true
		}
		currentConfig = cfg
		configPath = path
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// SetVersion sets the version printed by "ragd version".
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", DefaultConfigPath, "config file path")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "print machine-readable JSON")
}

// loadConfig loads config from path. When path is the default, config.yaml in the working
// directory takes precedence; when neither exists, built-in defaults and RAGD_* variables are used.
// Returns the config and the path actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == DefaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			local := filepath.Join(cwd, "config.yaml")
			if _, err := os.Stat(local); err == nil {
				cfg, err := config.Load(local)
				if err != nil {
					return nil, "", err
				}
				return cfg, local, nil
			}
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			cfg, err := config.Default()
			if err != nil {
				return nil, "", err
			}
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// newLogger creates the process logger for the loaded config.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// outputFormat returns the format selected by --json.
func outputFormat() OutputFormat {
	if jsonFlag {
		return OutputJSON
	}
	return OutputText
}
