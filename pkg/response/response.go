package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type APIResponse[T any] struct {
	Status    int         `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id"`
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      T           `json:"data"`
	Meta      interface{} `json:"meta,omitempty"`
	Error     interface{} `json:"error,omitempty"`
}

// Success writes a success envelope with the given status (200 when zero).
func Success[T any](ctx *gin.Context, status int, data T, message string, meta interface{}) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, APIResponse[T]{
		Status:    status,
		Timestamp: time.Now().UTC(),
		RequestID: ctx.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      meta,
	})
}

// Error writes a failure envelope with the given status (400 when zero).
func Error(ctx *gin.Context, status int, message string, err interface{}) {
	ctx.JSON(errorStatus(status), errorBody(ctx, status, message, err))
}

// Abort is Error for middleware: it also stops the handler chain.
func Abort(ctx *gin.Context, status int, message string, err interface{}) {
	ctx.AbortWithStatusJSON(errorStatus(status), errorBody(ctx, status, message, err))
}

func errorStatus(status int) int {
	if status == 0 {
		return http.StatusBadRequest
	}
	return status
}

func errorBody(ctx *gin.Context, status int, message string, err interface{}) APIResponse[any] {
	status = errorStatus(status)
	return APIResponse[any]{
		Status:    status,
		Timestamp: time.Now().UTC(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Message:   message,
		Error:     err,
	}
}
