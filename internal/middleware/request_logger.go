package middleware

import (
	"time"

	"orderservice/internal/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const HeaderRequestID = "X-Request-ID"

// リクエストIDを払い出し（あれば引き継ぎ）、request_id付きロガーをcontextに積む。
// 処理後に1行アクセスログを出す。
func RequestLogger(base *zap.Logger) echo.MiddlewareFunc {
	if base == nil {
		base = zap.NewNop()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			reqID := req.Header.Get(HeaderRequestID)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			c.Response().Header().Set(HeaderRequestID, reqID)

			log := base.With(zap.String("request_id", reqID))
			ctx := logger.WithRequestID(req.Context(), reqID)
			ctx = logger.WithContext(ctx, log)
			c.SetRequest(req.WithContext(ctx))

			err := next(c)
			if err != nil {
				//エラーハンドラを通してからステータスを読む
				c.Error(err)
			}

			status := c.Response().Status
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
				zap.String("remote_ip", c.RealIP()),
			}
			if status >= 500 {
				log.Error("http request", append(fields, zap.Error(err))...)
			} else {
				log.Info("http request", fields...)
			}
			return nil
		}
	}
}
