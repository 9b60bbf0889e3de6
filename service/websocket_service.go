package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tieubaoca/docqa-be/logger"
	"github.com/tieubaoca/docqa-be/types"
)

const (
	wsReadLimit   = 512 * 1024
	wsIdleTimeout = 60 * time.Second
)

// QuestionAnswerer is the part of NamespaceService the websocket channel needs.
type QuestionAnswerer interface {
	Answer(ctx context.Context, databaseID, question string, history []types.ChatTurn) (string, error)
}

// WebSocketService serves questions over a websocket, one answer frame per question frame.
type WebSocketService struct {
	answerer    QuestionAnswerer
	upgrader    websocket.Upgrader
	idleTimeout time.Duration
	logger      *logger.Logger
}

func NewWebSocketService(answerer QuestionAnswerer, log *logger.Logger) *WebSocketService {
	return &WebSocketService{
		answerer: answerer,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		idleTimeout: wsIdleTimeout,
		logger:      log,
	}
}

func (s *WebSocketService) HandleQuestion(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsReadLimit)
	conn.SetReadDeadline(time.Now().Add(s.idleTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.idleTimeout))
		return nil
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("Websocket read error", err)
			}
			return
		}

		if err := conn.WriteJSON(s.handleFrame(ctx, p)); err != nil {
			s.logger.Warn("Websocket write error", err)
			return
		}
		// The idle window starts after the answer, however long it took.
		conn.SetReadDeadline(time.Now().Add(s.idleTimeout))
	}
}

func (s *WebSocketService) handleFrame(ctx context.Context, p []byte) types.WebSocketResponse {
	var req types.WebsocketRequest
	if err := json.Unmarshal(p, &req); err != nil {
		return errorFrame(types.DetailInvalidBody)
	}

	switch req.Type {
	case types.TypeWebsocketPing:
		return types.WebSocketResponse{Type: types.TypeWebsocketPong}
	case types.TypeWebsocketQuestion:
		var payload types.QuestionRequest
		if err := json.Unmarshal(req.Payload, &payload); err != nil || strings.TrimSpace(payload.Question) == "" {
			return errorFrame(types.DetailInvalidBody)
		}
		answer, err := s.answerer.Answer(ctx, payload.DatabaseID, payload.Question, payload.ChatHistory)
		if err != nil {
			return errorFrame(s.questionErrorDetail(err, payload.DatabaseID))
		}
		return types.WebSocketResponse{
			Type:    types.TypeWebsocketAnswer,
			Payload: types.MessageResponse{Message: answer},
		}
	default:
		return errorFrame(types.DetailUnknownFrameType)
	}
}

func (s *WebSocketService) questionErrorDetail(err error, databaseID string) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return types.DetailIDNotExist
	case errors.Is(err, ErrInvalidInput):
		return types.DetailInvalidBody
	default:
		s.logger.Error("Websocket question failed", err, map[string]interface{}{"database_id": databaseID})
		return types.DetailInternalError
	}
}

func errorFrame(detail string) types.WebSocketResponse {
	return types.WebSocketResponse{
		Type:    types.TypeWebsocketError,
		Payload: types.ErrorResponse{Detail: detail},
	}
}
