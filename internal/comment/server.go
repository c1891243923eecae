package comment

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	commentdb "github.com/nao1215/socialhub/internal/comment/db"
	"github.com/nao1215/socialhub/pkg/config"
	"github.com/nao1215/socialhub/pkg/middleware"
)

// Server はコメントサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// queries はデータベースクエリ実行オブジェクト。
	queries *commentdb.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
}

// NewServer は新しいコメントサーバーを生成する。
func NewServer(port string) (*Server, error) {
	dbPath := config.GetEnv("COMMENT_DB_PATH", "/data/comment.db")
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
		router:  router,
		port:    port,
		queries: commentdb.New(sqlDB),
		db:      sqlDB,
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	s.router.GET("/comments", s.handleListComments())
	s.router.POST("/comments", middleware.RequireIdentity(), s.handleCreateComment())

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "comment"})
	})
}

// createCommentRequest はコメント作成リクエストのJSON構造。
type createCommentRequest struct {
	// PostID はコメント先の投稿ID。
	PostID string `json:"post_id"`
	// Content はコメント本文。
	Content string `json:"content"`
}

// commentResponse はコメント1件のJSON構造。
type commentResponse struct {
	ID        string `json:"id"`
	PostID    string `json:"post_id"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// timeFormat は応答JSONの日時表現。
const timeFormat = "2006-01-02T15:04:05Z07:00"

// handleListComments は投稿に紐づくコメントを古い順に返すハンドラを返す。
// post_idが?post_id=1&post_id=2のように繰り返された場合は先頭の値を採用する。
func (s *Server) handleListComments() gin.HandlerFunc {
	return func(c *gin.Context) {
		postID := c.Query("post_id")
		if postID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "post_id required"})
			return
		}

		comments, err := s.queries.ListCommentsByPost(c.Request.Context(), postID)
		if err != nil {
			log.Printf("コメント一覧の取得に失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
			return
		}

		result := make([]commentResponse, 0, len(comments))
		for _, cm := range comments {
			result = append(result, toCommentResponse(cm))
		}

		c.JSON(http.StatusOK, result)
	}
}

// handleCreateComment はコメントを作成するハンドラを返す。
// コメント者名はgatewayが検証済みの識別ヘッダーから取り込み、コメント行に保存する。
func (s *Server) handleCreateComment() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createCommentRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.PostID == "" || req.Content == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "post_id and content required"})
			return
		}

		commentID := uuid.New().String()
		if err := s.queries.CreateComment(c.Request.Context(), commentdb.CreateCommentParams{
			ID:       commentID,
			PostID:   req.PostID,
			UserID:   middleware.UserID(c),
			UserName: middleware.Username(c),
			Content:  req.Content,
		}); err != nil {
			log.Printf("コメントの作成に失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
			return
		}

		created, err := s.queries.GetComment(c.Request.Context(), commentID)
		if err != nil {
			log.Printf("作成済みコメントの取得に失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
			return
		}

		c.JSON(http.StatusCreated, toCommentResponse(created))
	}
}

// toCommentResponse はコメント行を応答用の構造に変換する。
func toCommentResponse(cm commentdb.Comment) commentResponse {
	return commentResponse{
		ID:        cm.ID,
		PostID:    cm.PostID,
		UserID:    cm.UserID,
		UserName:  cm.UserName,
		Content:   cm.Content,
		CreatedAt: cm.CreatedAt.Format(timeFormat),
	}
}
