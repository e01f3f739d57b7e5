package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logger writes one access log line per request through zap.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(params gin.LogFormatterParams) string {
		requestID, _ := params.Keys[RequestIDKey].(string)
		logger.Info("HTTP Request",
			zap.String("method", params.Method),
			zap.String("path", params.Path),
			zap.Int("status", params.StatusCode),
			zap.Int("body_size", params.BodySize),
			zap.Duration("latency", params.Latency),
			zap.String("client_ip", params.ClientIP),
			zap.String("user_agent", params.Request.UserAgent()),
			zap.String("referer", params.Request.Referer()),
			zap.String("client_id", params.Request.Header.Get("X-ClientId")),
			zap.String("x_trace", params.Request.Header.Get("X-Trace")),
			zap.String("request_id", requestID),
		)
		return ""
	})
}
