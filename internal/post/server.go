package post

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	postdb "github.com/nao1215/socialhub/internal/post/db"
	"github.com/nao1215/socialhub/pkg/config"
	"github.com/nao1215/socialhub/pkg/middleware"
)

// Server は投稿サービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// queries はデータベースクエリ実行オブジェクト。
	queries *postdb.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
}

// NewServer は新しい投稿サーバーを生成する。
func NewServer(port string) (*Server, error) {
	dbPath := config.GetEnv("POST_DB_PATH", "/data/post.db")
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
		queries: postdb.New(sqlDB),
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
// 書き込み系はgatewayが注入する識別ヘッダーを必須とする。
func (s *Server) setupRoutes() {
	s.router.GET("/posts", s.handleListPosts())
	s.router.GET("/posts/:id", s.handleGetPost())
	s.router.POST("/posts", middleware.RequireIdentity(), s.handleCreatePost())

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "post"})
	})
}

// createPostRequest は投稿作成リクエストのJSON構造。
type createPostRequest struct {
	// Content は投稿本文。
	Content string `json:"content"`
	// ImageURLs は添付画像のURL一覧。先頭がサムネイルとして保存される。
	ImageURLs []string `json:"image_urls"`
}

// postImageResponse は投稿画像1件のJSON構造。
type postImageResponse struct {
	ID        string `json:"id"`
	PostID    string `json:"post_id"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
}

// postResponse は投稿1件のJSON構造。Imagesは画像が無い場合も空配列を返す。
type postResponse struct {
	ID        string              `json:"id"`
	UserID    string              `json:"user_id"`
	UserName  string              `json:"user_name"`
	Content   string              `json:"content"`
	ImageURL  string              `json:"image_url"`
	CreatedAt string              `json:"created_at"`
	UpdatedAt string              `json:"updated_at"`
	Images    []postImageResponse `json:"images"`
}

// defaultPageLimit は1ページあたりの投稿数のデフォルト値。
const defaultPageLimit = 5

// maxPageLimit は1ページあたりの投稿数の上限。
const maxPageLimit = 50

// handleListPosts は投稿を新しい順にページ分割して返すハンドラを返す。
// pageは1以上（不正値は1）、limitは1〜50（不正値は5）に正規化する。
func (s *Server) handleListPosts() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := strconv.Atoi(c.Query("page"))
		if err != nil || page < 1 {
			page = 1
		}
		limit, err := strconv.Atoi(c.Query("limit"))
		if err != nil || limit < 1 || limit > maxPageLimit {
			limit = defaultPageLimit
		}

		posts, err := s.queries.ListPosts(c.Request.Context(), postdb.ListPostsParams{
			Limit:  limit,
			Offset: (page - 1) * limit,
		})
		if err != nil {
			log.Printf("投稿一覧の取得に失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
			return
		}

		result := make([]postResponse, 0, len(posts))
		for _, p := range posts {
			resp, err := s.buildPostResponse(c.Request.Context(), p)
			if err != nil {
				log.Printf("投稿画像の取得に失敗: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
				return
			}
			result = append(result, resp)
		}

		c.JSON(http.StatusOK, result)
	}
}

// handleCreatePost は投稿を作成するハンドラを返す。
// 投稿者名はgatewayが検証済みの識別ヘッダーから取り込み、投稿行に保存する。
func (s *Server) handleCreatePost() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createPostRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Content required"})
			return
		}

		// 先頭画像をサムネイルとして投稿行にも保持する
		firstImage := ""
		if len(req.ImageURLs) > 0 {
			firstImage = req.ImageURLs[0]
		}

		postID := uuid.New().String()
		if err := s.queries.CreatePost(c.Request.Context(), postdb.CreatePostParams{
			ID:       postID,
			UserID:   middleware.UserID(c),
			UserName: middleware.Username(c),
			Content:  req.Content,
			ImageURL: firstImage,
		}); err != nil {
			log.Printf("投稿の作成に失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
			return
		}

		for _, url := range req.ImageURLs {
			if err := s.queries.CreatePostImage(c.Request.Context(), postdb.CreatePostImageParams{
				ID:     uuid.New().String(),
				PostID: postID,
				URL:    url,
			}); err != nil {
				log.Printf("投稿画像の保存に失敗: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
				return
			}
		}

		created, err := s.queries.GetPost(c.Request.Context(), postID)
		if err != nil {
			log.Printf("作成済み投稿の取得に失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
			return
		}

		resp, err := s.buildPostResponse(c.Request.Context(), created)
		if err != nil {
			log.Printf("投稿画像の取得に失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
			return
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// handleGetPost は投稿を1件返すハンドラを返す。
func (s *Server) handleGetPost() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := s.queries.GetPost(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
				return
			}
			log.Printf("投稿の取得に失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get post"})
			return
		}

		resp, err := s.buildPostResponse(c.Request.Context(), p)
		if err != nil {
			log.Printf("投稿画像の取得に失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get post"})
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

// buildPostResponse は投稿行と紐づく画像を応答用の構造に組み立てる。
func (s *Server) buildPostResponse(ctx context.Context, p postdb.Post) (postResponse, error) {
	images, err := s.queries.ListPostImages(ctx, p.ID)
	if err != nil {
		return postResponse{}, err
	}

	imageList := make([]postImageResponse, 0, len(images))
	for _, img := range images {
		imageList = append(imageList, postImageResponse{
			ID:        img.ID,
			PostID:    img.PostID,
			URL:       img.URL,
			CreatedAt: img.CreatedAt.Format(timeFormat),
		})
	}

	return postResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		UserName:  p.UserName,
		Content:   p.Content,
		ImageURL:  p.ImageURL,
		CreatedAt: p.CreatedAt.Format(timeFormat),
		UpdatedAt: p.UpdatedAt.Format(timeFormat),
		Images:    imageList,
	}, nil
}

// timeFormat は応答JSONの日時表現。
const timeFormat = "2006-01-02T15:04:05Z07:00"
