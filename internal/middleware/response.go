package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"joingo/internal/core"
	"joingo/internal/database/fluentd/model"
	"joingo/internal/database/fluentd/repository"
	cErr "joingo/internal/pkg/error"
	"joingo/internal/pkg/response"
	"joingo/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const responsePreviewMax = 2000

type Response struct {
	logger            *zap.Logger
	trace             *telemetry.Trace
	fluentdRepository *repository.LogRepository
}

func NewResponse(
	logger *zap.Logger,
	trace *telemetry.Trace,
	fluentdRepository *repository.LogRepository,
) *Response {
	return &Response{
		logger:            logger,
		trace:             trace,
		fluentdRepository: fluentdRepository,
	}
}

// FormatHandler 把 handler 透過 c.Set("data") 設定的資料包成 {"data": ...}
func (middleware *Response) FormatHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if skipPath(c.FullPath()) {
			c.Next()
			return
		}
		startAt := requestTime(c)

		c.Next()

		// 已有錯誤交由 Recovery 處理，已寫出的回應不再包裝
		if len(c.Errors) > 0 || c.Writer.Written() {
			return
		}

		statusCode := c.Writer.Status()
		if statusCode >= http.StatusBadRequest {
			response.AbortWithError(c, cErr.MapHttpStatusToError(statusCode, http.StatusText(statusCode)))
			return
		}

		ctx, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanResponseMiddleware))
		defer end(nil)

		id := requestID(c)
		duration := time.Since(startAt)

		if statusCode == http.StatusNoContent {
			c.Writer.WriteHeaderNow()
			middleware.record(ctx, span, c, id, statusCode, "", duration)
			return
		}

		data, _ := c.Get("data")
		if data == nil {
			data = map[string]any{}
		}
		body, err := json.Marshal(response.Response{Data: data})
		if err != nil {
			response.AbortWithError(c, cErr.InternalServer("Unexpected error"))
			return
		}

		c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		c.Writer.WriteHeader(statusCode)
		if _, werr := c.Writer.Write(body); werr != nil {
			middleware.logger.Warn("write response failed", zap.String("requestId", id), zap.Error(werr))
			return
		}
		middleware.record(ctx, span, c, id, statusCode, toSafePreview(body, responsePreviewMax), duration)
	}
}

func (middleware *Response) record(ctx context.Context, span trace.Span, c *gin.Context, id string, status int, preview string, duration time.Duration) {
	middleware.trace.ApplyTraceAttributes(span, core.TraceResponseMeta{
		Path:       c.Request.URL.Path,
		Method:     c.Request.Method,
		Status:     status,
		DurationMs: float64(duration.Milliseconds()),
		Data:       preview,
	})
	traceID := span.SpanContext().TraceID()
	middleware.logger.Info("[Response]",
		zap.String("requestId", id),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Int("status", status),
		zap.Duration("duration", duration),
		zap.String("traceId", fmt.Sprintf("%x", traceID[:])),
	)
	// 回應內容可能含個資，fluentd 只記狀態
	if err := middleware.fluentdRepository.LogResponse(ctx, model.ResponseLog{
		RequestID:  id,
		StatusCode: status,
		ResponseTS: core.FormatTime(time.Now()),
	}); err != nil {
		middleware.logger.Debug("fluentd response log failed", zap.Error(err))
	}
}
