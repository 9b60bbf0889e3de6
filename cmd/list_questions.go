/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/docqa-be/types"
)

var listQuestionsCmd = &cobra.Command{
	Use:   "list-questions",
	Short: "Show recently answered questions",
	Long:  `Lists the question log kept in MongoDB, newest first. Requires MONGODB_URI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		databaseID, _ := cmd.Flags().GetString("id")
		limit, _ := cmd.Flags().GetInt64("limit")

		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer log.Sync()

		repo, client, err := newQuestionRepo(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if repo == nil {
			return errors.New("MONGODB_URI is not set")
		}
		defer client.Disconnect(cmd.Context())

		logs, err := repo.ListQuestionLogs(cmd.Context(), databaseID, limit)
		if err != nil {
			return fmt.Errorf("failed to list questions: %w", err)
		}
		printQuestionLogs(cmd.OutOrStdout(), logs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listQuestionsCmd)

	listQuestionsCmd.Flags().StringP("id", "i", "", "Only questions asked of this database")
	listQuestionsCmd.Flags().Int64P("limit", "n", 20, "Maximum number of questions, 0 for all")
}

func printQuestionLogs(w io.Writer, logs []*types.QuestionLog) {
	for _, l := range logs {
		databaseID := l.DatabaseID
		if databaseID == "" {
			databaseID = "*"
		}
		fmt.Fprintf(w, "%s  [%s]  %s\n  -> %s\n",
			time.Unix(l.CreatedAt, 0).UTC().Format(time.RFC3339), databaseID, l.Question, l.Answer)
	}
}
