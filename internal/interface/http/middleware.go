package httpinterface

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/morphcodes/morphd/internal/core/domain"
	"github.com/morphcodes/morphd/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

const (
	apiKeyHeader   = "X-API-Key"
	orgContextKey  = "org"
	rateLimitHour  = time.Hour
	rateLimitScope = "api"
)

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error("request failed")
			return
		}
		entry.Debug("handled request")
	}
}

// apiKeyAuth resolves the calling organization from the X-API-Key header and
// stashes it in the request context.
func apiKeyAuth(orgRepo domain.OrganizationRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(apiKeyHeader)
		if apiKey == "" {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized, gin.H{"error": "missing api key"},
			)
			return
		}

		org, err := orgRepo.GetOrganizationByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			c.AbortWithStatusJSON(
				http.StatusInternalServerError, gin.H{"error": "internal error"},
			)
			return
		}
		if org == nil || !org.Active {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized, gin.H{"error": "invalid api key"},
			)
			return
		}

		c.Set(orgContextKey, org)
		c.Next()
	}
}

// rateLimit enforces the organization's hourly plan quota through the shared
// counter store, so limits hold across instances and restarts.
func rateLimit(limits ports.RateLimitStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		org := orgFromContext(c)
		quota := org.Plan.Limits().RequestsPerHour

		key := fmt.Sprintf("%s:%s", rateLimitScope, org.ID)
		count, resetAt, err := limits.Hit(c.Request.Context(), key, rateLimitHour)
		if err != nil {
			log.WithError(err).Warn("rate limit store unavailable, letting request through")
			c.Next()
			return
		}

		remaining := int64(quota) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(quota))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if count > int64(quota) {
			c.AbortWithStatusJSON(
				http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"},
			)
			return
		}
		c.Next()
	}
}

func orgFromContext(c *gin.Context) *domain.Organization {
	return c.MustGet(orgContextKey).(*domain.Organization)
}
