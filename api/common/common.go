package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/picstash/picstash/internal/apperr"
)

// ErrorBody is the error payload of a failed response.
type ErrorBody struct {
	Message string `json:"message"`
}

// Response is the envelope every JSON endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// RespondSuccess sends a 200 success response with data.
func RespondSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// RespondCreated sends a 201 success response with data.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// RespondMessage sends a 200 success response with a message only.
func RespondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message})
}

// RespondError sends an error response with message.
func RespondError(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, Response{Success: false, Error: &ErrorBody{Message: message}})
}

// RespondAppError translates a service-layer error into the envelope.
func RespondAppError(c *gin.Context, err error) {
	RespondError(c, apperr.HTTPStatus(err), apperr.UserMessage(err))
}
