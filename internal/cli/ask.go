package cli

import (
	"strings"

	"github.com/hyperjump/ragd/internal/models"
	"github.com/spf13/cobra"
)

var askFlags struct {
	k        int
	template string
	model    string
}

var askCmd = &cobra.Command{
	Use:   "ask [flags] <query>",
	Short: "Answer a query from the catalog without starting the server",
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

		answer, err := app.Service.Answer(cmd.Context(), models.AnswerRequest{
			Query:    strings.Join(args, " "),
			K:        askFlags.k,
			Template: askFlags.template,
			Model:    askFlags.model,
		})
		if err != nil {
			return err
		}
		return WriteAnswer(cmd.OutOrStdout(), answer, outputFormat())
	},
}

var retrieveFlags struct {
	k int
}

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [flags] <query>",
	Short: "Print the catalog items nearest to a query",
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

		query := strings.Join(args, " ")
		hits, err := app.Service.Retrieve(cmd.Context(), query, retrieveFlags.k)
		if err != nil {
			return err
		}
		return WriteHits(cmd.OutOrStdout(), query, hits, outputFormat())
	},
}

func init() {
	askCmd.Flags().IntVarP(&askFlags.k, "k", "k", 0, "number of catalog items to retrieve (0 = configured default)")
	askCmd.Flags().StringVar(&askFlags.template, "template", "", "prompt template: diagnostic or concise")
	askCmd.Flags().StringVar(&askFlags.model, "model", "", "generation model (empty = configured model)")
	retrieveCmd.Flags().IntVarP(&retrieveFlags.k, "k", "k", 0, "number of catalog items to return (0 = configured default)")
	rootCmd.AddCommand(askCmd, retrieveCmd)
}
