/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from a database",
	Long: `Answers the question from the documents of --id, or from every database
when --id is empty.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		databaseID, _ := cmd.Flags().GetString("id")

		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer log.Sync()

		ns, cleanup, err := cliNamespace(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer cleanup()

		answer, err := ns.Answer(cmd.Context(), databaseID, strings.Join(args, " "), nil)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringP("id", "i", "", "Database id, empty searches every database")
}
