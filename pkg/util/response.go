package util

import (
	"github.com/gin-gonic/gin"
)

type SuccessResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
	Message string      `json:"message"`
	Status  int         `json:"status"`
}

func HandleSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Status:  statusCode,
		Message: message,
		Data:    data,
		Meta:    nil,
	})
}

func HandleSuccessMeta(c *gin.Context, statusCode int, message string, data, meta interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Status:  statusCode,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

type ErrorResponse struct {
	Error  string `json:"error,omitempty"`
	Status int    `json:"status"`
}

// HandleError writes the error envelope. Server side failures are logged with
// the request path.
func HandleError(c *gin.Context, statusCode int, err error) {
	if statusCode >= 500 {
		LogError("request failed", err, "path", c.FullPath(), "status", statusCode)
	} else {
		LogInfo("request rejected", "path", c.FullPath(), "status", statusCode, "error", err.Error())
	}
	c.JSON(statusCode, ErrorResponse{
		Error:  err.Error(),
		Status: statusCode,
	})
}

type PaginationArgs struct {
	Limit int
	Skip  int
}

type Pagination struct {
	Limit int   `json:"limit"`
	Skip  int   `json:"skip"`
	Count int64 `json:"count"`
}
