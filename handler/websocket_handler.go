package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/docqa-be/service"
)

type WebSocketHandler struct {
	ws *service.WebSocketService
}

func NewWebSocketHandler(ws *service.WebSocketService) *WebSocketHandler {
	return &WebSocketHandler{ws: ws}
}

func (h *WebSocketHandler) HandleQuestion(c *gin.Context) {
	h.ws.HandleQuestion(c.Writer, c.Request)
}
