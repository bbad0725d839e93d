package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shareit-platform/service-booking/pkg/domain"
)

// Envelope is the JSON body of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success writes 200 with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes 201 with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// BadRequest writes 400 for malformed request input.
func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, "bad_request", message)
}

// Unauthorized writes 401.
func Unauthorized(c *gin.Context, message string) {
	abort(c, http.StatusUnauthorized, "unauthorized", message)
}

// TooManyRequests writes 429.
func TooManyRequests(c *gin.Context, message string) {
	abort(c, http.StatusTooManyRequests, "rate_limited", message)
}

// Error maps err to a status code by its domain kind. Unclassified errors become a 500
// whose message does not leak internals.
func Error(c *gin.Context, err error) {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		_ = c.Error(err)
		abort(c, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	abort(c, StatusFor(de.Kind), de.Code, de.Message)
}

// StatusFor returns the HTTP status for a domain error kind.
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidOperation, domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message},
	})
}
