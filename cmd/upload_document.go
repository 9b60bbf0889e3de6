/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/docqa-be/service"
)

// uploadDocumentCmd represents the uploadDocument command
var uploadDocumentCmd = &cobra.Command{
	Use:   "upload-document",
	Short: "Add one document to a database",
	Long: `Fetches the document at --url, splits and embeds it, and stores it under
--id. The database must exist unless --create is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		databaseID, _ := cmd.Flags().GetString("id")
		url, _ := cmd.Flags().GetString("url")
		create, _ := cmd.Flags().GetBool("create")

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

		err = ns.AddDocument(cmd.Context(), databaseID, url)
		if errors.Is(err, service.ErrNotFound) && create {
			err = ns.CreateDatabase(cmd.Context(), databaseID, []string{url})
		}
		if err != nil {
			return fmt.Errorf("failed to upload %s to %q: %w", url, databaseID, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Document %s added to %s\n", url, databaseID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadDocumentCmd)

	uploadDocumentCmd.Flags().StringP("id", "i", "", "Database id")
	uploadDocumentCmd.Flags().StringP("url", "u", "", "URL of the document to upload")
	uploadDocumentCmd.Flags().Bool("create", false, "Create the database when it does not exist")
	uploadDocumentCmd.MarkFlagRequired("id")
	uploadDocumentCmd.MarkFlagRequired("url")
}
