package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/dali/internal/observability"
)

// Metrics reports the duration of every request by status class.
func Metrics(observer observability.Observer) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		observer.RequestCompleted(observability.ClassOf(ctx.Writer.Status()), time.Since(start))
	}
}
