package types

import (
	"encoding/json"
	"fmt"
)

// ChatTurn is one prior exchange. On the wire it is a two element array: [question, answer].
type ChatTurn struct {
	Question string
	Answer   string
}

func (t ChatTurn) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{t.Question, t.Answer})
}

func (t *ChatTurn) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("chat turn must be a [question, answer] array: %w", err)
	}
	if len(pair) < 2 {
		return fmt.Errorf("chat turn must have 2 elements, got %d", len(pair))
	}
	t.Question = pair[0]
	t.Answer = pair[1]
	return nil
}
