package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HeaderUserID はgatewayが検証済みユーザーIDを伝播するHTTPヘッダーキー。
const HeaderUserID = "X-User-ID"

// HeaderUsername はgatewayが検証済みユーザー名を伝播するHTTPヘッダーキー。
const HeaderUsername = "X-Username"

// RequireIdentity は信頼ヘッダーからユーザー識別情報を取り出すGinミドルウェアを返す。
// ヘッダーはgatewayだけが設定する前提であり、バックエンドサービスはトークンを検証しない。
// X-User-IDが無い場合は401を返して処理を中断する。
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(HeaderUserID)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "No user id header",
			})
			return
		}

		c.Set("user_id", userID)
		c.Set("username", c.GetHeader(HeaderUsername))
		c.Next()
	}
}

// UserID はGinコンテキストからユーザーIDを取得する。
// RequireIdentityミドルウェアが事前に適用されている必要がある。
func UserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// Username はGinコンテキストからユーザー名を取得する。
func Username(c *gin.Context) string {
	username, _ := c.Get("username")
	if name, ok := username.(string); ok {
		return name
	}
	return ""
}
