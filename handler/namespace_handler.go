package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/docqa-be/logger"
	"github.com/tieubaoca/docqa-be/service"
	"github.com/tieubaoca/docqa-be/types"
)

// Namespace is the set of operations the HTTP layer exposes.
type Namespace interface {
	CreateDatabase(ctx context.Context, databaseID string, urls []string) error
	AddDocument(ctx context.Context, databaseID, url string) error
	DeleteDocument(ctx context.Context, databaseID, url string) error
	Answer(ctx context.Context, databaseID, question string, history []types.ChatTurn) (string, error)
}

type NamespaceHandler struct {
	namespace Namespace
	logger    *logger.Logger
}

func NewNamespaceHandler(namespace Namespace, log *logger.Logger) *NamespaceHandler {
	return &NamespaceHandler{
		namespace: namespace,
		logger:    log,
	}
}

func (h *NamespaceHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, types.MessageResponse{Message: "OK"})
}

func (h *NamespaceHandler) HandleQuestion(c *gin.Context) {
	var req types.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	answer, err := h.namespace.Answer(c.Request.Context(), req.DatabaseID, req.Question, req.ChatHistory)
	if err != nil {
		h.sendError(c, err, req.DatabaseID, types.DetailIDNotExist)
		return
	}
	c.JSON(http.StatusCreated, types.MessageResponse{Message: answer})
}

func (h *NamespaceHandler) HandleCreateDatabase(c *gin.Context) {
	var req types.DatabaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if err := h.namespace.CreateDatabase(c.Request.Context(), req.DatabaseID, req.URLs); err != nil {
		h.sendError(c, err, req.DatabaseID, types.DetailDatabaseNotExist)
		return
	}
	c.JSON(http.StatusCreated, types.SuccessResponse{Success: "Documents added for ID: " + req.DatabaseID})
}

func (h *NamespaceHandler) HandleAddDocument(c *gin.Context) {
	var req types.DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if err := h.namespace.AddDocument(c.Request.Context(), req.DatabaseID, req.URL); err != nil {
		h.sendError(c, err, req.DatabaseID, types.DetailDatabaseNotExist)
		return
	}
	c.JSON(http.StatusCreated, types.SuccessResponse{Success: "Document added"})
}

func (h *NamespaceHandler) HandleDeleteDocument(c *gin.Context) {
	var req types.DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if err := h.namespace.DeleteDocument(c.Request.Context(), req.DatabaseID, req.URL); err != nil {
		h.sendError(c, err, req.DatabaseID, types.DetailDatabaseNotExist)
		return
	}
	c.JSON(http.StatusOK, types.SuccessResponse{Success: fmt.Sprintf("Document with url: %s deleted", req.URL)})
}

func (h *NamespaceHandler) badRequest(c *gin.Context, err error) {
	c.Error(err)
	c.JSON(http.StatusBadRequest, types.ErrorResponse{Detail: types.DetailInvalidBody})
}

// sendError maps service errors onto the API's status codes. Anything unexpected is
// logged and reported as an opaque 500.
func (h *NamespaceHandler) sendError(c *gin.Context, err error, databaseID, notFoundDetail string) {
	switch {
	case errors.Is(err, service.ErrAlreadyExists):
		c.JSON(http.StatusConflict, types.ErrorResponse{Detail: types.DetailIDAlreadyExists})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusConflict, types.ErrorResponse{Detail: notFoundDetail})
	case errors.Is(err, service.ErrInvalidInput):
		c.Error(err)
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Detail: types.DetailInvalidBody})
	default:
		h.logger.Error("Request failed", err, map[string]interface{}{
			"path":        c.Request.URL.Path,
			"database_id": databaseID,
		})
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Detail: types.DetailInternalError})
	}
}
