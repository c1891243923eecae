package gateway

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/socialhub/pkg/config"
	"github.com/nao1215/socialhub/pkg/middleware"
	"github.com/nao1215/socialhub/pkg/token"
)

// upstreamTimeout はバックエンド1リクエストあたりの待機上限。
// 超過した場合はゲートウェイエラーとして応答し、リトライはしない。
const upstreamTimeout = 30 * time.Second

// Server はAPI GatewayサービスのHTTPサーバー。
// ルート表と署名鍵以外に共有可変状態を持たず、リクエストは互いに独立して処理される。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// accessSecret はアクセストークンの検証に使う署名鍵。
	accessSecret string
	// routes はパスプレフィックスから転送先を決める静的ルート表。
	routes routeTable
	// client はバックエンドへの転送に使うHTTPクライアント。
	client *http.Client
}

// serviceURLConfig はバックエンドサービスのURL設定。
type serviceURLConfig struct {
	Auth    string
	Post    string
	Comment string
	Like    string
	Media   string
}

// NewServer は新しいGatewayサーバーを生成する。
func NewServer(port string) (*Server, error) {
	urls := serviceURLConfig{
		Auth:    config.GetEnv("AUTH_SERVICE_URL", "http://localhost:4001"),
		Post:    config.GetEnv("POST_SERVICE_URL", "http://localhost:4002"),
		Comment: config.GetEnv("COMMENT_SERVICE_URL", "http://localhost:4003"),
		Like:    config.GetEnv("LIKE_SERVICE_URL", "http://localhost:4004"),
		Media:   config.GetEnv("MEDIA_SERVICE_URL", "http://localhost:4005"),
	}

	frontendURL := config.GetEnv("FRONTEND_URL", "http://localhost:3000")

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS(frontendURL))

	s := &Server{
		router:       router,
		port:         port,
		accessSecret: config.GetEnv("JWT_ACCESS_SECRET", "access-secret"),
		routes:       newRouteTable(urls),
		client:       &http.Client{Timeout: upstreamTimeout},
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
// /api配下はすべて単一のハンドラが受け、ルート表の分類で転送先を決める。
func (s *Server) setupRoutes() {
	s.router.Any("/api/*path", s.handleGateway())

	// ルート表に無いパスは既定のバックエンドに流さず、明示的に404を返す
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "gateway"})
	})
}

// handleGateway は分類→認証→転送→応答のパイプラインを実行するハンドラを返す。
// 各段階は順に実行され、認証拒否の時点でバックエンドへの通信は発生しない。
func (s *Server) handleGateway() gin.HandlerFunc {
	return func(c *gin.Context) {
		r, ok := s.routes.Classify(c.Request.URL.Path)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}

		var claims *token.Claims
		if r.RequiresAuth {
			claims, ok = s.authenticate(c)
			if !ok {
				return
			}
		}

		s.forward(c, r, claims)
	}
}

// authenticate はAuthorizationヘッダーのベアラートークンを検証する。
// ヘッダーが無い場合はバックエンドに触れる前に401で拒否する。
// 検証失敗の理由は応答に含めない。
func (s *Server) authenticate(c *gin.Context) (*token.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token"})
		return nil, false
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	claims, err := token.Verify(s.accessSecret, tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return nil, false
	}
	return claims, true
}

// forward はリクエストを分類されたバックエンドに転送し、応答を中継する。
// 転送パスは先頭の/apiを取り除いたもので、クエリ文字列はそのまま引き継ぐ。
// クライアントのAuthorizationヘッダーはバックエンドへ渡さない。
func (s *Server) forward(c *gin.Context, r route, claims *token.Claims) {
	proxyURL := r.BaseURL + strings.TrimPrefix(c.Request.URL.Path, "/api")
	if rawQuery := c.Request.URL.RawQuery; rawQuery != "" {
		proxyURL += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, proxyURL, c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Gateway Error"})
		return
	}

	// Hostヘッダーは転送しない（バックエンドの誤ルーティング防止）
	if contentType := c.GetHeader("Content-Type"); contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if userAgent := c.GetHeader("User-Agent"); userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	req.Header.Set("X-Forwarded-For", c.ClientIP())

	// 検証済み識別情報を信頼ヘッダーとして注入する。設定元はgatewayのみ。
	if claims != nil {
		req.Header.Set(middleware.HeaderUserID, claims.UserID)
		req.Header.Set(middleware.HeaderUsername, claims.Username)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		// 接続先の情報は応答に含めない
		log.Printf("バックエンドへの転送に失敗: url=%s, error=%v", proxyURL, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Internal Gateway Error"})
		return
	}
	defer resp.Body.Close()

	if r.Streaming {
		s.relayStreaming(c, resp)
		return
	}
	s.relayBuffered(c, resp)
}

// relayBuffered はバックエンドの応答を全量読み取ってから中継する。
// JSONボディの小さなルート向け。ステータスとボディはバイト単位でそのまま返す。
func (s *Server) relayBuffered(c *gin.Context, resp *http.Response) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Internal Gateway Error"})
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(resp.StatusCode, contentType, body)
}

// relayStreaming はバックエンドの応答ボディを逐次中継する。
// 大きなファイルのアップロード・配信でメモリに全量を載せないためのパス。
func (s *Server) relayStreaming(c *gin.Context, resp *http.Response) {
	if contentType := resp.Header.Get("Content-Type"); contentType != "" {
		c.Writer.Header().Set("Content-Type", contentType)
	}
	if contentLength := resp.Header.Get("Content-Length"); contentLength != "" {
		c.Writer.Header().Set("Content-Length", contentLength)
	}
	c.Status(resp.StatusCode)

	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		// ステータス送信後のため応答は書き換えられない。ログのみ残す。
		log.Printf("ストリーミング中継に失敗: %v", err)
	}
}
