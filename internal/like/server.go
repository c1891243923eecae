package like

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	likedb "github.com/nao1215/socialhub/internal/like/db"
	"github.com/nao1215/socialhub/pkg/config"
	"github.com/nao1215/socialhub/pkg/middleware"
)

// Server はいいねサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// queries はデータベースクエリ実行オブジェクト。
	queries *likedb.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
}

// NewServer は新しいいいねサーバーを生成する。
func NewServer(port string) (*Server, error) {
	dbPath := config.GetEnv("LIKE_DB_PATH", "/data/like.db")
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
		queries: likedb.New(sqlDB),
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
	s.router.POST("/likes/toggle", middleware.RequireIdentity(), s.handleToggleLike())
	s.router.GET("/likes/count", s.handleCountLikes())

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "like"})
	})
}

// toggleLikeRequest はいいねトグルリクエストのJSON構造。
type toggleLikeRequest struct {
	// PostID は対象の投稿ID。
	PostID string `json:"post_id"`
}

// handleToggleLike はいいねの付与と取り消しを切り替えるハンドラを返す。
// 行が存在すれば削除して{"liked":false}、存在しなければ挿入して{"liked":true}を返す。
// カウンタ更新ではなく行の有無の反転であり、同じ操作の繰り返しで状態が往復する。
func (s *Server) handleToggleLike() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req toggleLikeRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.PostID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "post_id required"})
			return
		}

		userID := middleware.UserID(c)

		likeID, err := s.queries.GetLikeID(c.Request.Context(), req.PostID, userID)
		switch {
		case err == nil:
			if err := s.queries.DeleteLike(c.Request.Context(), likeID); err != nil {
				log.Printf("いいねの取り消しに失敗: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle like"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"liked": false})
		case errors.Is(err, sql.ErrNoRows):
			if err := s.queries.CreateLike(c.Request.Context(), likedb.CreateLikeParams{
				ID:     uuid.New().String(),
				PostID: req.PostID,
				UserID: userID,
			}); err != nil {
				log.Printf("いいねの付与に失敗: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle like"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"liked": true})
		default:
			log.Printf("いいねの検索に失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle like"})
		}
	}
}

// handleCountLikes は投稿のいいね数を返すハンドラを返す。
// post_idが繰り返された場合は先頭の値を採用する。
func (s *Server) handleCountLikes() gin.HandlerFunc {
	return func(c *gin.Context) {
		postID := c.Query("post_id")
		if postID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "post_id required"})
			return
		}

		count, err := s.queries.CountLikesByPost(c.Request.Context(), postID)
		if err != nil {
			log.Printf("いいね数の集計に失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count like"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"post_id": postID, "count": count})
	}
}
