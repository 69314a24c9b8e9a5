package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// maxTrackedClients caps how many per-IP buckets stay in memory. Once full,
// the least recently seen client is forgotten and starts over with a full
// bucket if it comes back.
const maxTrackedClients = 10000

// RateLimit returns per-client rate limiting middleware using token buckets.
// Clients are told apart by IP since the API has no accounts.
//
// Token bucket algorithm: each client gets a bucket that fills at `rps`
// tokens/sec up to `burst` tokens. Each request consumes one token. If the
// bucket is empty, the request is rejected with 429.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	return rateLimit(rps, burst, maxTrackedClients)
}

func rateLimit(rps float64, burst int, maxClients int) gin.HandlerFunc {
	limiters, err := lru.New[string, *rate.Limiter](maxClients)
	if err != nil {
		// Only a non-positive size fails, and callers pass constants.
		panic(err)
	}
	// The cache is safe on its own; the mutex makes get-or-create atomic so
	// two first requests from one IP share a bucket.
	var mu sync.Mutex

	return func(c *gin.Context) {
		client := c.ClientIP()

		mu.Lock()
		limiter, ok := limiters.Get(client)
		if !ok {
			limiter = rate.NewLimiter(rate.Limit(rps), burst)
			limiters.Add(client, limiter)
		}
		mu.Unlock()

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
