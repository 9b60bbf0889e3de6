package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/docqa-be/config"
	"github.com/tieubaoca/docqa-be/logger"
	"github.com/tieubaoca/docqa-be/types"
	"go.uber.org/fx"
)

func TestReadURLList(t *testing.T) {
	input := `
# handbook
https://example.com/a.pdf

  https://example.com/b.html
#https://example.com/skipped
`
	urls, err := readURLList(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/a.pdf", "https://example.com/b.html"}, urls)
}

func TestPrintQuestionLogs(t *testing.T) {
	var buf bytes.Buffer
	printQuestionLogs(&buf, []*types.QuestionLog{
		{DatabaseID: "alpha", Question: "q1", Answer: "a1", CreatedAt: 0},
		{Question: "q2", Answer: "a2", CreatedAt: 60},
	})
	assert.Equal(t,
		"1970-01-01T00:00:00Z  [alpha]  q1\n  -> a1\n"+
			"1970-01-01T00:01:00Z  [*]  q2\n  -> a2\n",
		buf.String())
}

func TestServerModuleGraph(t *testing.T) {
	cfg := &config.Config{
		Port:        "0",
		VectorStore: config.VectorStoreMemory,
		Collection:  "test",
		Splitter:    types.SplitterConfig{ChunkSize: 100, ChunkOverlap: 10},
		AI:          config.AIConfig{Provider: config.ProviderOpenAI},
	}
	err := fx.ValidateApp(
		fx.Supply(cfg, logger.NewNop()),
		serverModule,
	)
	assert.NoError(t, err)
}

func TestNewVectorStoreMemory(t *testing.T) {
	store, closeStore, err := newVectorStore(&config.Config{VectorStore: config.VectorStoreMemory}, logger.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, store)
	assert.NoError(t, closeStore())

	_, _, err = newVectorStore(&config.Config{VectorStore: "sqlite"}, logger.NewNop())
	assert.Error(t, err)
}
