package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader はリクエスト ID を受け渡すヘッダー名です。
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RequestID はリクエスト ID を払い出し、レスポンスヘッダーとコンテキストに設定します。
// クライアントが送った X-Request-ID はそのまま引き継ぎます。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID は RequestID が設定した ID を返します。
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
