package controllers

import (
	"net/http"
	"time"

	"gamemarket-api-io/api/pkg/services"
	"gamemarket-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
)

func Ping(context *gin.Context) {
	time := time.Now().Local()
	context.JSON(http.StatusOK, gin.H{"message": "pong", "local_time": time})
}

// APIRoot lists the top level endpoints.
func APIRoot(links services.Links) gin.HandlerFunc {
	return func(c *gin.Context) {
		util.HandleSuccess(c, http.StatusOK, "API root", links.Root())
	}
}
