package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	pkgerrors "user-directory-service/pkg/errors"
	"user-directory-service/pkg/logger"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError describes one violated input rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

const (
	msgInvalidBody = "Invalid request body"
	msgInternal    = "Internal server error"
)

// OK writes a successful envelope.
func OK(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Response{Success: true, Message: message, Data: data})
}

// Fail writes a failure envelope without field details.
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, Response{Success: false, Message: message})
}

// Error maps err to its HTTP status and writes the failure envelope.
// Internal errors are logged and answered with a generic message.
func Error(c *gin.Context, log *zap.Logger, err error) {
	var ve *pkgerrors.ValidationError
	if errors.As(err, &ve) {
		fields := make([]FieldError, len(ve.Violations))
		for i, v := range ve.Violations {
			fields[i] = FieldError{Field: v.Field, Message: v.Message, Value: v.Value}
		}
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: ve.Message, Errors: fields})
		return
	}

	var hs pkgerrors.HTTPStatuser
	if errors.As(err, &hs) && hs.HTTPStatus() < http.StatusInternalServerError {
		Fail(c, hs.HTTPStatus(), err.Error())
		return
	}

	logger.WithContext(c.Request.Context(), log).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	Fail(c, http.StatusInternalServerError, msgInternal)
}
