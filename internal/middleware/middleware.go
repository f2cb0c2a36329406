package middleware

import (
	"strings"
	"time"

	"joingo/internal/core"
	res "joingo/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	NewTraceEntry,
	NewCors,
	NewLogger,
	NewRecovery,
	NewResponse,
	NewAuth,
	NewRateLimit,
)

const contextRequestTimeKey = "requestDuration"

// skipPath 這些路徑不做 tracing 與 log
func skipPath(endpoint string) bool {
	for _, prefix := range []string{"/swagger", "/metrics", "/version", "/health", "/debug"} {
		if strings.HasPrefix(endpoint, prefix) {
			return true
		}
	}
	return false
}

// requestID 優先沿用上游傳入的 X-Request-ID，否則產生 uuid v7
func requestID(c *gin.Context) string {
	if id := c.GetString(core.ContextRequestIDKey); id != "" {
		return id
	}
	id := strings.TrimSpace(c.GetHeader(res.HeaderRequestID))
	if id == "" || len(id) > 128 {
		v, err := uuid.NewV7()
		if err != nil {
			v = uuid.New()
		}
		id = v.String()
	}
	c.Set(core.ContextRequestIDKey, id)
	c.Header(res.HeaderRequestID, id)
	return id
}

func requestTime(c *gin.Context) time.Time {
	if startTime, exists := c.Get(contextRequestTimeKey); exists {
		if t, ok := startTime.(time.Time); ok {
			return t
		}
	}
	now := time.Now().UTC()
	c.Set(contextRequestTimeKey, now)
	return now
}
