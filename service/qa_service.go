package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/tieubaoca/docqa-be/database"
	"github.com/tieubaoca/docqa-be/logger"
	"github.com/tieubaoca/docqa-be/types"
)

const DefaultRetrievalLimit = 4

const (
	IDontKnowAnswer  = "I don't know. Can you ask another question"
	IrrelevantAnswer = "I don't know. Please ask a question relevant to the documents"
)

const condenseQuestionTemplate = `Given the following conversation and a follow up question, rephrase the follow up question to be a standalone question, in its original language.

Chat History:
{chat_history}
Follow Up Input: {question}
Standalone question:`

const answerTemplate = `
Answer the question in your own words as truthfully as possible from the context given to you.
If you do not know the answer to the question, simply respond with "` + IDontKnowAnswer + `".
If questions are asked where there is no relevant context available, simply respond with "` + IrrelevantAnswer + `"
Context: {context}


{chat_history}
Human: {question}
Assistant:`

// QAService answers a question from the chunks most similar to it.
type QAService struct {
	chat     AIService
	embedder Embedder
	store    database.VectorStore
	limit    int
	logger   *logger.Logger
}

func NewQAService(chat AIService, embedder Embedder, store database.VectorStore, limit int, log *logger.Logger) *QAService {
	if limit <= 0 {
		limit = DefaultRetrievalLimit
	}
	return &QAService{
		chat:     chat,
		embedder: embedder,
		store:    store,
		limit:    limit,
		logger:   log,
	}
}

// Answer rewrites a follow up question into a standalone one when there is history,
// retrieves context restricted by filter, and asks the chat model.
func (s *QAService) Answer(ctx context.Context, question string, history []types.ChatTurn, filter types.Filter) (string, error) {
	chatHistory := formatHistory(history)

	standalone := question
	if len(history) > 0 {
		condensed, err := s.chat.Chat(ctx, fillTemplate(condenseQuestionTemplate, map[string]string{
			"chat_history": chatHistory,
			"question":     question,
		}))
		if err != nil {
			return "", fmt.Errorf("failed to condense question: %w", err)
		}
		if condensed = strings.TrimSpace(condensed); condensed != "" {
			standalone = condensed
		}
	}

	chunks, err := s.retrieve(ctx, standalone, filter)
	if err != nil {
		return "", err
	}
	s.logger.Debug("Retrieved context", nil, map[string]interface{}{
		"database_id": filter.DatabaseID,
		"chunks":      len(chunks),
	})

	contexts := make([]string, len(chunks))
	for i, c := range chunks {
		contexts[i] = c.Text
	}
	answer, err := s.chat.Chat(ctx, fillTemplate(answerTemplate, map[string]string{
		"context":      strings.Join(contexts, "\n\n"),
		"chat_history": chatHistory,
		"question":     standalone,
	}))
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

func (s *QAService) retrieve(ctx context.Context, question string, filter types.Filter) ([]types.ScoredChunk, error) {
	vectors, err := s.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 question embedding, got %d", len(vectors))
	}
	chunks, err := s.store.Search(ctx, vectors[0], s.limit, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search context: %w", err)
	}
	return chunks, nil
}

func formatHistory(history []types.ChatTurn) string {
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		lines = append(lines, "Human: "+turn.Question+"\nAssistant: "+turn.Answer)
	}
	return strings.Join(lines, "\n")
}

// fillTemplate substitutes {name} placeholders in a single pass, so values
// containing braces are inserted verbatim.
func fillTemplate(tmpl string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
