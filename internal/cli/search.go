package cli

import (
	"strings"

	"github.com/hyperjump/ragd/internal/search"
	"github.com/spf13/cobra"
)

var searchFlags struct {
	limit    int
	keyword  bool
	semantic bool
	fuzzy    bool
	minScore float64
}

var searchCmd = &cobra.Command{
	Use:   "search [flags] <query>",
	Short: "Look up catalog items by keyword and vector similarity",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(currentConfig)
		if err != nil {
			return err
		}
		defer logger.Sync()

		app, err := Bootstrap(cmd.Context(), currentConfig, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		resp, err := app.Search.Search(cmd.Context(), search.Query{
			Text:            strings.Join(args, " "),
			Limit:           searchFlags.limit,
			KeywordEnabled:  searchFlags.keyword,
			SemanticEnabled: searchFlags.semantic,
			FuzzyEnabled:    searchFlags.fuzzy,
			MinScore:        searchFlags.minScore,
		})
		if err != nil {
			return err
		}
		return WriteSearchResults(cmd.OutOrStdout(), resp, outputFormat())
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchFlags.limit, "limit", 10, "number of results")
	searchCmd.Flags().BoolVar(&searchFlags.keyword, "keyword", true, "use keyword search")
	searchCmd.Flags().BoolVar(&searchFlags.semantic, "semantic", true, "use semantic search")
	searchCmd.Flags().BoolVar(&searchFlags.fuzzy, "fuzzy", false, "enable fuzzy matching for typo tolerance")
	searchCmd.Flags().Float64Var(&searchFlags.minScore, "min-score", 0, "minimum fused score")
	rootCmd.AddCommand(searchCmd)
}
