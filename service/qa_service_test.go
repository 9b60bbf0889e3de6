package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/docqa-be/database"
	"github.com/tieubaoca/docqa-be/logger"
	"github.com/tieubaoca/docqa-be/types"
)

func seededQA(t *testing.T, chat *stubChat, limit int) *QAService {
	t.Helper()
	store := database.NewMemoryStore()
	embedder := &letterEmbedder{}
	texts := []types.Chunk{
		{Text: "Apples grow on trees.", Source: doc1, DatabaseID: "alpha"},
		{Text: "Zebras run in herds.", Source: doc2, DatabaseID: "beta"},
	}
	for _, c := range texts {
		v, err := embedder.Embed(context.Background(), []string{c.Text})
		require.NoError(t, err)
		require.NoError(t, store.Upsert(context.Background(), []types.Record{{Chunk: c, Vector: v[0]}}))
	}
	return NewQAService(chat, embedder, store, limit, logger.NewNop())
}

func TestQAService_AnswerWithoutHistory(t *testing.T) {
	chat := &stubChat{}
	qa := seededQA(t, chat, 0)

	answer, err := qa.Answer(context.Background(), "What grows on trees?", nil, types.Filter{DatabaseID: "alpha"})
	require.NoError(t, err)
	assert.Equal(t, "stub answer", answer)

	prompts := chat.Prompts()
	require.Len(t, prompts, 1, "no condense step without history")
	assert.Contains(t, prompts[0], "Context: Apples grow on trees.")
	assert.Contains(t, prompts[0], "Human: What grows on trees?\nAssistant:")
	assert.Contains(t, prompts[0], IDontKnowAnswer)
	assert.Contains(t, prompts[0], IrrelevantAnswer)
	assert.NotContains(t, prompts[0], "Zebras")
}

func TestQAService_CondensesFollowUp(t *testing.T) {
	chat := &stubChat{reply: func(prompt string) string {
		if strings.Contains(prompt, "Standalone question:") {
			return "  Where do zebras run?  "
		}
		return "In herds."
	}}
	qa := seededQA(t, chat, 1)
	history := []types.ChatTurn{{Question: "Tell me about zebras", Answer: "They are striped."}}

	answer, err := qa.Answer(context.Background(), "Where do they run?", history, types.Filter{})
	require.NoError(t, err)
	assert.Equal(t, "In herds.", answer)

	prompts := chat.Prompts()
	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[0], "Human: Tell me about zebras\nAssistant: They are striped.")
	assert.Contains(t, prompts[0], "Follow Up Input: Where do they run?")
	assert.Contains(t, prompts[1], "Human: Where do zebras run?")
	assert.Contains(t, prompts[1], "Context: Zebras run in herds.")
}

func TestQAService_Errors(t *testing.T) {
	chat := &stubChat{err: errors.New("quota exceeded")}
	qa := seededQA(t, chat, 2)
	_, err := qa.Answer(context.Background(), "q", nil, types.Filter{})
	assert.ErrorContains(t, err, "quota exceeded")

	qa = NewQAService(&stubChat{}, &letterEmbedder{err: errors.New("embed down")}, database.NewMemoryStore(), 2, logger.NewNop())
	_, err = qa.Answer(context.Background(), "q", nil, types.Filter{})
	assert.ErrorContains(t, err, "embed down")
}

func TestFillTemplate(t *testing.T) {
	out := fillTemplate("{a} and {b}", map[string]string{"a": "{b}", "b": "x"})
	assert.Equal(t, "{b} and x", out)
}

func TestFormatHistory(t *testing.T) {
	assert.Equal(t, "", formatHistory(nil))
	assert.Equal(t,
		"Human: q1\nAssistant: a1\nHuman: q2\nAssistant: a2",
		formatHistory([]types.ChatTurn{{Question: "q1", Answer: "a1"}, {Question: "q2", Answer: "a2"}}))
}
