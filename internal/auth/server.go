package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	authdb "github.com/nao1215/socialhub/internal/auth/db"
	"github.com/nao1215/socialhub/pkg/audit"
	"github.com/nao1215/socialhub/pkg/config"
	"github.com/nao1215/socialhub/pkg/middleware"
	"github.com/nao1215/socialhub/pkg/token"
)

// Server は認証サービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// queries はデータベースクエリ実行オブジェクト。
	queries *authdb.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
	// accessSecret はアクセストークンの署名鍵。
	accessSecret string
	// refreshSecret はリフレッシュトークンの署名鍵。
	refreshSecret string
}

// NewServer は新しい認証サーバーを生成する。
// スキーマ初期化はリトライ上限に達するまで繰り返し、失敗した場合はエラーを返す。
func NewServer(port string) (*Server, error) {
	dbPath := config.GetEnv("AUTH_DB_PATH", "/data/auth.db")
	sqlDB, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := initSchemaWithRetry(context.Background(), sqlDB); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())

	s := &Server{
		router:        router,
		port:          port,
		queries:       authdb.New(sqlDB),
		db:            sqlDB,
		accessSecret:  config.GetEnv("JWT_ACCESS_SECRET", "access-secret"),
		refreshSecret: config.GetEnv("JWT_REFRESH_SECRET", "refresh-secret"),
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
// すべてgateway経由で到達する公開エンドポイントであり、認証ミドルウェアは適用しない。
func (s *Server) setupRoutes() {
	auth := s.router.Group("/auth")
	{
		auth.POST("/register", s.handleRegister())
		auth.POST("/login", s.handleLogin())
		auth.POST("/refresh", s.handleRefresh())
		auth.POST("/logout", s.handleLogout())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "auth"})
	})
}

// registerRequest はユーザー登録リクエストのJSON構造。
type registerRequest struct {
	// Username はユーザー名。
	Username string `json:"username"`
	// Email はメールアドレス。
	Email string `json:"email"`
	// Password は平文パスワード。ハッシュ化してのみ保存する。
	Password string `json:"password"`
}

// loginRequest はログインリクエストのJSON構造。
type loginRequest struct {
	// EmailOrUsername はメールアドレスまたはユーザー名。
	EmailOrUsername string `json:"emailOrUsername"`
	// Password は平文パスワード。
	Password string `json:"password"`
}

// refreshRequest はアクセストークン再発行リクエストのJSON構造。
type refreshRequest struct {
	// RefreshToken はログイン時に発行されたリフレッシュトークン。
	RefreshToken string `json:"refreshToken"`
}

// bcryptCost はパスワードハッシュの計算コスト。
const bcryptCost = 10

// handleRegister はユーザー登録を処理するハンドラを返す。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Email == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username, email, password required"})
			return
		}

		// メールアドレス・ユーザー名の重複チェック
		if _, err := s.queries.GetUserByEmailOrUsername(c.Request.Context(), req.Email); err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email or username already used"})
			return
		}
		if _, err := s.queries.GetUserByEmailOrUsername(c.Request.Context(), req.Username); err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email or username already used"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			log.Printf("パスワードハッシュの生成に失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Register failed"})
			return
		}

		userID := uuid.New().String()
		if err := s.queries.CreateUser(c.Request.Context(), authdb.CreateUserParams{
			ID:           userID,
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: string(hash),
		}); err != nil {
			log.Printf("ユーザー登録に失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Register failed"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":       userID,
			"username": req.Username,
			"email":    req.Email,
		})
	}
}

// handleLogin は資格情報を検証してトークンペアを発行するハンドラを返す。
// ユーザー不在とパスワード不一致はクライアントに同一のエラーとして返す（列挙防止）。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.EmailOrUsername == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "emailOrUsername and password required"})
			return
		}

		user, err := s.queries.GetUserByEmailOrUsername(c.Request.Context(), req.EmailOrUsername)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				log.Printf("ユーザー検索に失敗: %v", err)
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
			return
		}

		// bcryptの比較は定数時間で行われる
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			s.writeAuthLog(c, user.ID, audit.ActionLoginFailed)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
			return
		}

		pair, err := s.issueTokenPair(c, user)
		if err != nil {
			log.Printf("トークンペアの発行に失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
			return
		}

		s.writeAuthLog(c, user.ID, audit.ActionLoginSuccess)

		c.JSON(http.StatusOK, gin.H{
			"accessToken":  pair.AccessToken,
			"refreshToken": pair.RefreshToken,
			"user": gin.H{
				"id":       user.ID,
				"username": user.Username,
				"email":    user.Email,
			},
		})
	}
}

// handleRefresh はリフレッシュトークンから新しいアクセストークンを発行するハンドラを返す。
// 最初にストアを照会し、行が存在しない場合は署名検証を行わずに拒否する。
// 署名が正しくても発行記録の無いトークンは無効である（ストアが真正性の根拠）。
func (s *Server) handleRefresh() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No refresh token"})
			return
		}

		stored, err := s.queries.GetRefreshToken(c.Request.Context(), req.RefreshToken)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				log.Printf("リフレッシュトークンの検索に失敗: %v", err)
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
			return
		}

		claims, err := token.Verify(s.refreshSecret, req.RefreshToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
			return
		}

		// リフレッシュトークン自身はローテーションせず、期限まで再利用できる
		access, err := token.Generate(s.accessSecret, stored.UserID, claims.Username, token.AccessTokenTTL)
		if err != nil {
			log.Printf("アクセストークンの再発行に失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Refresh failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"accessToken": access})
	}
}

// handleLogout はリフレッシュトークンをストアから削除するハンドラを返す。
// 削除後のトークンはストア照会で無効になる。存在しないトークンでも成功を返す（冪等）。
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No refresh token"})
			return
		}

		if err := s.queries.DeleteRefreshToken(c.Request.Context(), req.RefreshToken); err != nil {
			log.Printf("リフレッシュトークンの削除に失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

// writeAuthLog は認証試行の監査レコードを追記する。
// 監査書き込みの失敗は認証応答を妨げない（ログのみ残す）。
func (s *Server) writeAuthLog(c *gin.Context, userID string, action audit.Action) {
	if err := s.queries.CreateAuthLog(c.Request.Context(), audit.Entry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}); err != nil {
		log.Printf("監査レコードの書き込みに失敗: %v", err)
	}
}
