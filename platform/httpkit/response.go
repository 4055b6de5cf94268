// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"errors"
	"net/http"

	"educare/platform/apperr"
	"educare/platform/logger"
	"educare/platform/query"

	"github.com/gin-gonic/gin"
)

const msgInternal = "internal server error"

// Envelope is the response body of every endpoint.
type Envelope struct {
	Success    bool              `json:"success"`
	Data       interface{}       `json:"data,omitempty"`
	Message    string            `json:"message,omitempty"`
	Error      string            `json:"error,omitempty"`
	Details    interface{}       `json:"details,omitempty"`
	Pagination *query.Pagination `json:"pagination,omitempty"`
}

// JSON sends a successful envelope with the given status code.
func JSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data)
}

// Created sends a 201 Created response with the given payload.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// List sends a page of items with its pagination block.
func List(c *gin.Context, items interface{}, pagination query.Pagination) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: items, Pagination: &pagination})
}

// Message sends a successful envelope carrying only a message.
func Message(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Success: true, Message: message})
}

// Error sends an error response with the given status code and message.
func Error(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, Envelope{Error: message, Details: details})
}

// HandleError maps domain errors to HTTP responses.
// Typed *apperr.Error values use their Kind for the status code. Anything
// else is unexpected: it is logged and answered with a generic 500 so
// driver and upstream messages never reach the client.
// Returns true if an error was handled, false otherwise.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var domainErr *apperr.Error
	if errors.As(err, &domainErr) && domainErr.Kind != apperr.KindUnknown && domainErr.Kind != apperr.KindInternal {
		c.JSON(domainErr.HTTPStatus(), Envelope{
			Error:   domainErr.Message,
			Details: domainErr.Details,
		})
		return true
	}

	if log := requestLogger(c); log != nil {
		log.WithContext(c.Request.Context()).HTTPError(c.Request.Method, c.Request.URL.Path, http.StatusInternalServerError, err)
	}
	c.JSON(http.StatusInternalServerError, Envelope{Error: msgInternal})
	return true
}

func requestLogger(c *gin.Context) *logger.Logger {
	value, ok := c.Get(ContextLoggerKey)
	if !ok {
		return nil
	}
	log, _ := value.(*logger.Logger)
	return log
}
