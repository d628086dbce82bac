// Package handler holds the gin handlers of the restaurant API.
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/interfaces/http/dto"
	"github.com/restaurant/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a 200 response with data as the body
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 response with data as the body
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// ErrorWithCode sends an error response, deriving the status from code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	c.Set(middleware.ErrorCodeKey, code)
	c.AbortWithStatusJSON(dto.NewErrorResponse(code, message))
}

// BadRequest sends a 400 BAD_REQUEST response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.CodeBadRequest, message)
}

// HandleError maps err to an error response. Domain errors keep their code and
// message. Anything else becomes a generic 500 and is attached to the gin
// context so the request log line records it.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.ErrorWithCode(c, domainErr.Code, domainErr.Message)
		return
	}

	_ = c.Error(err)
	h.ErrorWithCode(c, dto.CodeInternal, "An unexpected error occurred")
}

// HandleBindError answers a failed ShouldBind* call. Validation failures list
// the offending fields; malformed bodies get BAD_REQUEST.
func (h *BaseHandler) HandleBindError(c *gin.Context, err error) {
	if middleware.HandleValidationError(c, err) {
		return
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.ErrorWithCode(c, dto.CodeRequestTooLarge, "Request body exceeds maximum allowed size")
		return
	}
	h.BadRequest(c, "Malformed request body: "+err.Error())
}

// parseID reads a uuid path parameter, answering 400 when it is malformed
func (h *BaseHandler) parseID(c *gin.Context, param, label string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		h.BadRequest(c, fmt.Sprintf("Invalid %s id: %s", label, raw))
		return uuid.Nil, false
	}
	return id, true
}

// parsePage reads the 1-based pageNum path parameter and the paging query
func (h *BaseHandler) parsePage(c *gin.Context) (shared.Filter, bool) {
	page, err := strconv.Atoi(c.Param("pageNum"))
	if err != nil || page < 1 {
		h.BadRequest(c, "Page number must be a positive integer")
		return shared.Filter{}, false
	}

	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.HandleBindError(c, err)
		return shared.Filter{}, false
	}
	return q.ToFilter(page), true
}
