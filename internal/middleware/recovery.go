package middleware

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"
	"unicode/utf8"

	"joingo/internal/core"
	"joingo/internal/database/fluentd/model"
	"joingo/internal/database/fluentd/repository"
	cErr "joingo/internal/pkg/error"
	res "joingo/internal/pkg/response"
	"joingo/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Recovery struct {
	logger            *zap.Logger
	trace             *telemetry.Trace
	metric            *telemetry.Metric
	fluentdRepository *repository.LogRepository
}

func NewRecovery(
	logger *zap.Logger,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	fluentdRepository *repository.LogRepository,
) *Recovery {
	return &Recovery{
		logger:            logger,
		trace:             trace,
		metric:            metric,
		fluentdRepository: fluentdRepository,
	}
}

// ErrorHandler 攔截 panic 與 c.Errors，統一輸出 {"error":{code,message}}
func (middleware *Recovery) ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		startAt := requestTime(c)
		id := requestID(c)

		// panic recover 必須在 c.Next() 之前註冊
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			duration := time.Since(startAt)
			ctx, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanRecoveryMiddleware))

			meta := core.TracePanicMeta{
				Path:       c.Request.URL.Path,
				Method:     c.Request.Method,
				ClientIP:   c.ClientIP(),
				UserAgent:  c.Request.UserAgent(),
				DurationMs: float64(duration.Milliseconds()),
				Message:    toSafeString(fmt.Sprint(rec)),
				Stack:      toSafeStack(debug.Stack()),
				Status:     http.StatusInternalServerError,
			}
			middleware.trace.ApplyTraceAttributes(span, meta)

			middleware.logger.Error("[PANIC] Recovered",
				zap.String("requestId", id),
				zap.String("path", meta.Path),
				zap.String("method", meta.Method),
				zap.String("client_ip", meta.ClientIP),
				zap.Duration("duration", duration),
				zap.String("panic", meta.Message),
				zap.String("stacktrace", meta.Stack),
			)

			err := cErr.InternalServer("Unexpected error")
			end(err)
			if !c.Writer.Written() {
				res.FailByErr(c, id, err)
			}
			middleware.logResponse(ctx, id, err)
			middleware.metric.IncHttpFail("panic")
			c.Abort()
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		ctx, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanRecoveryMiddleware))
		duration := time.Since(startAt)

		appErr := firstAppError(c.Errors)
		if appErr == nil {
			// 未分類錯誤不外洩細節
			middleware.logger.Error("[ERROR] unclassified",
				zap.String("requestId", id),
				zap.String("error", c.Errors.String()),
				zap.Duration("duration", duration),
			)
			appErr = cErr.InternalServer("Unexpected error")
		} else if appErr.HttpCode() >= http.StatusInternalServerError {
			middleware.logger.Error(appErr.Error(),
				zap.String("requestId", id),
				zap.Int("code", appErr.ErrorCode()),
				zap.String("desc", appErr.ErrorDesc()),
				zap.Duration("duration", duration),
			)
		} else {
			middleware.logger.Warn(appErr.Error(),
				zap.String("requestId", id),
				zap.Int("code", appErr.ErrorCode()),
				zap.String("desc", appErr.ErrorDesc()),
				zap.Duration("duration", duration),
			)
		}

		middleware.trace.ApplyTraceAttributes(span, core.TraceErrorMeta{
			Code:       appErr.ErrorCode(),
			Message:    appErr.Error(),
			Detail:     appErr.ErrorDesc(),
			Status:     appErr.HttpCode(),
			DurationMs: float64(duration.Milliseconds()),
		})
		if appErr.HttpCode() >= http.StatusInternalServerError {
			end(appErr)
		} else {
			end(nil)
		}

		res.FailByErr(c, id, appErr)
		middleware.logResponse(ctx, id, appErr)
		middleware.metric.IncHttpFail(appErr.Code())
		c.Abort()
	}
}

func (middleware *Recovery) logResponse(ctx context.Context, id string, appErr *cErr.Error) {
	if err := middleware.fluentdRepository.LogResponse(ctx, model.ResponseLog{
		RequestID:  id,
		Code:       appErr.Code(),
		StatusCode: appErr.HttpCode(),
		Error:      appErr.ErrorDesc(),
		ResponseTS: core.FormatTime(time.Now()),
	}); err != nil {
		middleware.logger.Debug("fluentd response log failed", zap.Error(err))
	}
}

func firstAppError(errs []*gin.Error) *cErr.Error {
	for _, e := range errs {
		var appErr *cErr.Error
		if errors.As(e.Err, &appErr) {
			return appErr
		}
	}
	return nil
}

func toSafeString(s string) string {
	const max = 8000
	if utf8.ValidString(s) {
		if len(s) > max {
			return s[:max] + "…"
		}
		return s
	}
	b := []byte(s)
	if len(b) > max {
		b = b[:max]
	}
	return "b64:" + base64.StdEncoding.EncodeToString(b)
}

func toSafeStack(b []byte) string {
	const max = 16000
	if utf8.Valid(b) {
		if len(b) > max {
			return string(b[:max]) + "…"
		}
		return string(b)
	}
	if len(b) > max {
		b = b[:max]
	}
	return "b64:" + base64.StdEncoding.EncodeToString(b)
}
