package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/docqa-be/database"
	"github.com/tieubaoca/docqa-be/types"
)

// Runs against a live server only when MONGODB_URI is set.
func TestQuestionRepo(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}
	ctx := context.Background()
	client, err := database.NewMongoClient(ctx, uri)
	require.NoError(t, err)
	t.Cleanup(func() { client.Disconnect(context.Background()) })

	collection := client.Database("docqa_test_" + uuid.NewString()[:8]).Collection(QuestionLogCollection)
	t.Cleanup(func() { collection.Database().Drop(context.Background()) })
	repo := NewQuestionRepo(collection)

	now := time.Now().Unix()
	require.NoError(t, repo.CreateQuestionLog(ctx, &types.QuestionLog{DatabaseID: "alpha", Question: "q1", Answer: "a1", CreatedAt: now - 10}))
	require.NoError(t, repo.CreateQuestionLog(ctx, &types.QuestionLog{DatabaseID: "alpha", Question: "q2", Answer: "a2", CreatedAt: now}))
	require.NoError(t, repo.CreateQuestionLog(ctx, &types.QuestionLog{DatabaseID: "beta", Question: "q3", Answer: "a3", CreatedAt: now - 5}))

	logs, err := repo.ListQuestionLogs(ctx, "alpha", 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "q2", logs[0].Question)
	assert.NotEmpty(t, logs[0].ID)

	logs, err = repo.ListQuestionLogs(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "q2", logs[0].Question)
	assert.Equal(t, "q3", logs[1].Question)
}
