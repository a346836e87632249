package response

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody represents a structured error response.
type ErrorBody struct {
	Code    ErrCode           `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// MessageResponse carries a fixed confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ────────────────────────────────────────────────────────────────────────────
// Helper builders
// ────────────────────────────────────────────────────────────────────────────

// Success sends data as the JSON body. Bodies carry no per-request fields so
// equal inputs produce byte-identical responses.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// Message sends {"message": msg}.
func Message(c *gin.Context, statusCode int, msg string) {
	c.JSON(statusCode, MessageResponse{Message: msg})
}

// Fail sends an error response with an error code and no field-level details.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	c.JSON(statusCode, newError(code, nil))
}

// FailWithFields sends an error response with field-level validation details.
func FailWithFields(c *gin.Context, statusCode int, code ErrCode, fields map[string]string) {
	c.JSON(statusCode, newError(code, fields))
}

// AbortFail aborts the middleware chain and sends an error response.
func AbortFail(c *gin.Context, statusCode int, code ErrCode) {
	c.AbortWithStatusJSON(statusCode, newError(code, nil))
}

func newError(code ErrCode, fields map[string]string) ErrorResponse {
	return ErrorResponse{Error: ErrorBody{Code: code, Message: GetMessage(code), Fields: fields}}
}
