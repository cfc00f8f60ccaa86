package middleware

import (
	"net/http"
	"time"

	"gamemarket-api-io/api/pkg/util"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RateLimiter allows limit requests per second per client ip. Counters live
// in redis when a client is given and in process memory otherwise.
func RateLimiter(client *redis.Client, limit uint) gin.HandlerFunc {
	if limit == 0 {
		limit = 5
	}

	var store ratelimit.Store
	if client != nil {
		store = ratelimit.RedisStore(&ratelimit.RedisOptions{
			RedisClient: client,
			Rate:        time.Second,
			Limit:       limit,
		})
	} else {
		store = ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
			Rate:  time.Second,
			Limit: limit,
		})
	}

	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: func(c *gin.Context, info ratelimit.Info) {
			util.HandleError(c, http.StatusTooManyRequests,
				errors.New("Too many requests. Try again in "+time.Until(info.ResetTime).Round(time.Millisecond).String()))
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})
}
