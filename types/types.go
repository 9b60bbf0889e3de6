package types

import "encoding/json"

const (
	TypeWebsocketPing     = "ping"
	TypeWebsocketPong     = "pong"
	TypeWebsocketQuestion = "question"
	TypeWebsocketAnswer   = "answer"
	TypeWebsocketError    = "error"
)

type WebsocketRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type WebSocketResponse struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
