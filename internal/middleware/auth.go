package middleware

import (
	"strings"

	"joingo/internal/core"
	redisRepo "joingo/internal/database/redis/repository"
	"joingo/internal/identity"
	cErr "joingo/internal/pkg/error"
	"joingo/internal/pkg/response"
	"joingo/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const bearerPrefix = "Bearer "

type Auth struct {
	logger    *zap.Logger
	trace     *telemetry.Trace
	verifier  identity.TokenVerifier
	blacklist *redisRepo.TokenBlacklistRepository
}

func NewAuth(
	logger *zap.Logger,
	trace *telemetry.Trace,
	verifier identity.TokenVerifier,
	blacklist *redisRepo.TokenBlacklistRepository,
) *Auth {
	return &Auth{logger: logger, trace: trace, verifier: verifier, blacklist: blacklist}
}

// bearerToken 取出 Authorization: Bearer <token>，並去掉部分客戶端多包的引號
func bearerToken(header string) string {
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if len(token) >= 2 {
		first, last := token[0], token[len(token)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			token = token[1 : len(token)-1]
		}
	}
	return token
}

// Authenticate 驗證 bearer token，成功後將 uid／email／token 放入 gin.Context
func (middleware *Auth) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanAuthMiddleware))
		meta := core.TraceAuthMiddlewareMeta{ClientIP: c.ClientIP()}

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			meta.Status = "missing_token"
			middleware.trace.ApplyTraceAttributes(span, meta)
			end(nil)
			response.AbortWithError(c, cErr.Unauthorized("Missing or invalid credentials"))
			return
		}

		revoked, err := middleware.blacklist.Contains(ctx, token)
		if err != nil {
			// Redis 故障時不阻斷登入狀態
			middleware.logger.Warn("token blacklist unavailable", zap.Error(err))
		}
		if revoked {
			meta.Status, meta.Blacklisted = "revoked", true
			middleware.trace.ApplyTraceAttributes(span, meta)
			end(nil)
			response.AbortWithError(c, cErr.Unauthorized("Token has been revoked", cErr.TOKEN_REVOKED))
			return
		}

		subject, err := middleware.verifier.Verify(ctx, token)
		if err != nil {
			appErr := cErr.From(err)
			meta.Status = "rejected"
			middleware.trace.ApplyTraceAttributes(span, meta)
			if appErr.Code() == cErr.CodeUnauthorized {
				end(nil)
			} else {
				end(appErr)
			}
			response.AbortWithError(c, appErr)
			return
		}

		meta.Status, meta.UserID = "ok", subject.SubjectID
		middleware.trace.ApplyTraceAttributes(span, meta)
		end(nil)

		c.Set(core.ContextUIDKey, subject.SubjectID)
		c.Set(core.ContextEmailKey, subject.Email)
		c.Set(core.ContextTokenKey, token)
		c.Set(core.ContextTokenExpKey, subject.ExpiresAt)
		c.Next()
	}
}
