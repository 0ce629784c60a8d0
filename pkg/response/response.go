package response

import (
	"net/http"

	"coursehub/pkg/apperr"
	"coursehub/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JSON writes {success: true, message, ...fields}.
func JSON(c *gin.Context, status int, message string, fields gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(status, body)
}

// Success writes a 200 envelope.
func Success(c *gin.Context, message string, fields gin.H) {
	JSON(c, http.StatusOK, message, fields)
}

// Created writes a 201 envelope.
func Created(c *gin.Context, message string, fields gin.H) {
	JSON(c, http.StatusCreated, message, fields)
}

// Error writes {success: false, message}.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// Fail maps err onto the error envelope. Unknown errors become a logged 500.
func Fail(c *gin.Context, err error) {
	if e, ok := apperr.As(err); ok {
		if e.Status >= http.StatusInternalServerError {
			logger.Log.Error(e.Message, zap.Error(err), zap.String("path", c.FullPath()))
		}
		body := gin.H{"success": false, "message": e.Message}
		for k, v := range e.Fields {
			body[k] = v
		}
		c.JSON(e.Status, body)
		return
	}

	logger.Log.Error("unhandled error", zap.Error(err), zap.String("path", c.FullPath()))
	Error(c, http.StatusInternalServerError, MsgServerInternal)
}

// Abort writes the error envelope and stops the handler chain.
func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}
