package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/smartfertilizer/backend/internal/domain/shared"
	"github.com/smartfertilizer/backend/internal/infrastructure/logger"
	"github.com/smartfertilizer/backend/internal/interfaces/http/dto"
	"github.com/smartfertilizer/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// MsgServerError is returned for errors that carry no domain code
const MsgServerError = "Server error"

// BaseHandler provides common handler utilities
type BaseHandler struct {
	// exposeErrors adds the underlying error text to error responses
	exposeErrors bool
}

// NewBaseHandler creates a base handler. Diagnostics are hidden in production.
func NewBaseHandler(production bool) BaseHandler {
	return BaseHandler{exposeErrors: !production}
}

// currentUser returns the authenticated user's id and role
func currentUser(c *gin.Context) (uuid.UUID, string, error) {
	id, err := uuid.Parse(middleware.GetJWTUserID(c))
	if err != nil {
		return uuid.Nil, "", shared.NewDomainError(shared.CodeUnauthorized, middleware.MsgTokenFailed)
	}
	return id, middleware.GetJWTRole(c), nil
}

// pathID parses the :id route parameter
func pathID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		var details shared.FieldErrors
		details.Add("id", "Invalid id format", c.Param("id"))
		return uuid.Nil, details.Err()
	}
	return id, nil
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMessage sends a success response with a message
func (h *BaseHandler) SuccessWithMessage(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, dto.NewMessageResponse(message, data))
}

// SuccessList sends a list with its count
func (h *BaseHandler) SuccessList(c *gin.Context, data any, count int) {
	c.JSON(http.StatusOK, dto.NewListResponse(data, count))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// HandleError converts an error into the response envelope. Domain errors
// keep their message and field details; anything else becomes a 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		logger.L(c.Request.Context()).Error("Unhandled error", zap.Error(err))
		resp := dto.NewErrorResponse(MsgServerError)
		if h.exposeErrors {
			resp.Error = err.Error()
		}
		c.JSON(http.StatusInternalServerError, resp)
		return
	}

	status := dto.StatusFor(domainErr)
	if status >= http.StatusInternalServerError {
		logger.L(c.Request.Context()).Error("Request failed",
			zap.String("code", domainErr.Code),
			zap.Error(err),
		)
	}

	resp := dto.NewErrorResponse(domainErr.Message, domainErr.Details...)
	if h.exposeErrors && domainErr.Cause != nil {
		resp.Error = domainErr.Cause.Error()
	}
	c.JSON(status, resp)
}
