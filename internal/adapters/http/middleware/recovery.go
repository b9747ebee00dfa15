package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Recovery はハンドラーの panic を回収し、スタックを記録して 500 を返します。
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rvr := recover(); rvr != nil {
				zerolog.Ctx(c.Request.Context()).Error().
					Interface("panic", rvr).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("stack_trace", string(debug.Stack())).
					Msg("recovered from panic")

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
			}
		}()

		c.Next()
	}
}
