/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteDocumentCmd = &cobra.Command{
	Use:   "delete-document",
	Short: "Remove every chunk of a document from a database",
	RunE: func(cmd *cobra.Command, args []string) error {
		databaseID, _ := cmd.Flags().GetString("id")
		url, _ := cmd.Flags().GetString("url")

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

		if err := ns.DeleteDocument(cmd.Context(), databaseID, url); err != nil {
			return fmt.Errorf("failed to delete %s from %q: %w", url, databaseID, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Document with url: %s deleted\n", url)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteDocumentCmd)

	deleteDocumentCmd.Flags().StringP("id", "i", "", "Database id")
	deleteDocumentCmd.Flags().StringP("url", "u", "", "URL of the document to delete")
	deleteDocumentCmd.MarkFlagRequired("id")
	deleteDocumentCmd.MarkFlagRequired("url")
}
