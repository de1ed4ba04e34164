// internal/api/responses/responses.go
package responses

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

var logger = zap.NewNop()

// APIResponse defines the standard envelope for API responses.
type APIResponse struct {
	Status    string      `json:"status"` // "success" or "error"
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Errors    []string    `json:"errors,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// InitLogger sets the structured logger used by the response helpers.
func InitLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// Success sends a successful response with the provided data and message.
func Success(c *gin.Context, data interface{}, message string) {
	resp := APIResponse{Status: "success", Data: data, Message: message, RequestID: RequestID(c)}
	c.JSON(http.StatusOK, resp)
	logger.Info("API success",
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", http.StatusOK),
		zap.String("request_id", resp.RequestID))
}

// Error sends an error response with the provided code, message, and optional errors.
func Error(c *gin.Context, code int, message string, errs ...string) {
	resp := APIResponse{Status: "error", Message: message, Errors: errs, RequestID: RequestID(c)}
	c.AbortWithStatusJSON(code, resp)
	logger.Error("API error",
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", code),
		zap.Strings("errors", errs),
		zap.String("request_id", resp.RequestID))
}

// File sends a binary attachment.
func File(c *gin.Context, contentType, fileName string, data []byte) {
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, contentType, data)
	logger.Info("API file",
		zap.String("path", c.Request.URL.Path),
		zap.String("file", fileName),
		zap.Int("bytes", len(data)),
		zap.String("request_id", RequestID(c)))
}

// RequestID returns the id set by the request id middleware, or "".
func RequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
