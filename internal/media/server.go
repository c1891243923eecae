package media

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nao1215/socialhub/pkg/config"
	"github.com/nao1215/socialhub/pkg/middleware"
)

// maxUploadSize はアップロード可能なファイルの最大サイズ（50MB）。
// テスト時に差し替え可能にするためvarとして宣言する。
var maxUploadSize int64 = 50 << 20

// Server はメディアサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// uploadDir はアップロードファイルの保存先ディレクトリ。
	uploadDir string
}

// NewServer は新しいメディアサーバーを生成する。
// ファイル保存ディレクトリの初期化も行う。
func NewServer(port string) (*Server, error) {
	uploadDir := config.GetEnv("UPLOAD_DIR", "/data/uploads")
	if err := initStorage(uploadDir); err != nil {
		return nil, fmt.Errorf("ストレージ初期化に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())

	// マルチパートフォームの最大メモリを設定する。
	router.MaxMultipartMemory = maxUploadSize

	s := &Server{
		router:    router,
		port:      port,
		uploadDir: uploadDir,
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
// アップロードの認可はgatewayが行い、ファイル配信は公開ルートとして扱う。
func (s *Server) setupRoutes() {
	s.router.POST("/media/upload", s.handleUpload())
	s.router.Static("/media/files", s.uploadDir)

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "media"})
	})
}

// uploadResponse はアップロード成功時のレスポンス。
type uploadResponse struct {
	// Filename は保存されたファイル名（UUID + 元の拡張子）。
	Filename string `json:"filename"`
	// URL はgateway経由でファイルを取得するためのパス。
	URL string `json:"url"`
	// Size はファイルサイズ（バイト）。
	Size int64 `json:"size"`
	// Mimetype はファイルのMIMEタイプ。
	Mimetype string `json:"mimetype"`
}

// handleUpload はメディアファイルのアップロードを処理するハンドラを返す。
// マルチパートフォームのfileフィールドからファイルを受け取り、
// 推測不能なファイル名（UUID + 元の拡張子）でディスクに保存する。
func (s *Server) handleUpload() gin.HandlerFunc {
	return func(c *gin.Context) {
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
			return
		}
		defer file.Close()

		// ファイルサイズのバリデーション。
		if header.Size > maxUploadSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("File too large (max %dMB)", maxUploadSize/(1<<20))})
			return
		}

		// 元のファイル名は拡張子のみ利用し、パス要素は信用しない。
		ext := filepath.Ext(filepath.Base(header.Filename))
		filename := uuid.New().String() + ext
		storagePath := filepath.Join(s.uploadDir, filename)

		dst, err := os.Create(storagePath)
		if err != nil {
			log.Printf("ファイルの作成に失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
			return
		}
		defer dst.Close()

		written, err := io.Copy(dst, file)
		if err != nil {
			log.Printf("ファイルの書き込みに失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
			return
		}

		c.JSON(http.StatusCreated, uploadResponse{
			Filename: filename,
			URL:      "/media/files/" + filename,
			Size:     written,
			Mimetype: header.Header.Get("Content-Type"),
		})
	}
}
