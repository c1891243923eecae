package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS はフロントエンドのオリジンからのクロスオリジンリクエストを許可するGinミドルウェアを返す。
// 外部に公開されるのはgatewayのみであるため、gatewayサービスでのみ使用する。
// originに"*"を指定した場合はすべてのオリジンを許可する（開発用）。
func CORS(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestOrigin := c.GetHeader("Origin")

		switch {
		case origin == "*":
			c.Header("Access-Control-Allow-Origin", "*")
		case requestOrigin != "" && requestOrigin == origin:
			c.Header("Access-Control-Allow-Origin", origin)
			// オリジンごとに応答が変わるため、キャッシュの混線を防ぐ
			c.Header("Vary", "Origin")
		}

		if c.Writer.Header().Get("Access-Control-Allow-Origin") != "" {
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
			c.Header("Access-Control-Max-Age", "86400")
		}

		// プリフライトはここで完結させ、バックエンドには転送しない
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
