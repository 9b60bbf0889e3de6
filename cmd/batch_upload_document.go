/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// batchUploadDocumentCmd represents the batchUploadDocument command
var batchUploadDocumentCmd = &cobra.Command{
	Use:   "batch-upload-document",
	Short: "Create a database from a list of URLs",
	Long: `Creates the database --id from every --url and every URL listed in --file.
The file holds one URL per line; blank lines and lines starting with # are skipped.
Fails when the database already exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		databaseID, _ := cmd.Flags().GetString("id")
		urls, _ := cmd.Flags().GetStringArray("url")
		file, _ := cmd.Flags().GetString("file")

		if file != "" {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open url list: %w", err)
			}
			listed, err := readURLList(f)
			f.Close()
			if err != nil {
				return err
			}
			urls = append(urls, listed...)
		}
		if len(urls) == 0 {
			return errors.New("no urls given, use --url or --file")
		}

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

		if err := ns.CreateDatabase(cmd.Context(), databaseID, urls); err != nil {
			return fmt.Errorf("failed to create %q: %w", databaseID, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Documents added for ID: %s (%d urls)\n", databaseID, len(urls))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchUploadDocumentCmd)

	batchUploadDocumentCmd.Flags().StringP("id", "i", "", "Database id")
	batchUploadDocumentCmd.Flags().StringArrayP("url", "u", []string{}, "URL of a document, may be repeated")
	batchUploadDocumentCmd.Flags().StringP("file", "f", "", "File with one URL per line")
	batchUploadDocumentCmd.MarkFlagRequired("id")
}

func readURLList(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read url list: %w", err)
	}
	return urls, nil
}
