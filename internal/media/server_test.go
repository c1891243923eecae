package media

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestServer はテスト用のメディアサーバーを生成する。
// 保存先には一時ディレクトリを使用する。
func newTestServer(t *testing.T) *Server {
	t.Helper()

	s := &Server{
		router:    gin.New(),
		port:      "0",
		uploadDir: t.TempDir(),
	}
	s.router.MaxMultipartMemory = maxUploadSize
	s.setupRoutes()

	return s
}

// newUploadRequest はfileフィールドにファイルを載せたマルチパートリクエストを生成する。
func newUploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("マルチパートフォームの作成に失敗: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("マルチパートフォームへの書き込みに失敗: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("マルチパートフォームのクローズに失敗: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/media/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// TestHandleUpload はアップロードハンドラのテスト。
func TestHandleUpload(t *testing.T) {
	t.Run("ファイルをアップロードできること", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t)
		content := []byte("fake image bytes")

		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, newUploadRequest(t, "photo.png", content))

		if w.Code != http.StatusCreated {
			t.Fatalf("ステータスコード: got %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
		}

		var result struct {
			Filename string `json:"filename"`
			URL      string `json:"url"`
			Size     int64  `json:"size"`
			Mimetype string `json:"mimetype"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
			t.Fatalf("レスポンスのパースに失敗: %v", err)
		}
		// 保存名は元のファイル名ではなくUUID + 拡張子
		if result.Filename == "photo.png" {
			t.Error("元のファイル名のまま保存されている")
		}
		if !strings.HasSuffix(result.Filename, ".png") {
			t.Errorf("拡張子が保持されていない: %q", result.Filename)
		}
		if result.URL != "/media/files/"+result.Filename {
			t.Errorf("url = %q, want %q", result.URL, "/media/files/"+result.Filename)
		}
		if result.Size != int64(len(content)) {
			t.Errorf("size = %d, want %d", result.Size, len(content))
		}

		// ディスクに同じ内容で保存されている
		saved, err := os.ReadFile(filepath.Join(s.uploadDir, result.Filename))
		if err != nil {
			t.Fatalf("保存されたファイルの読み込みに失敗: %v", err)
		}
		if !bytes.Equal(saved, content) {
			t.Error("保存されたファイルの内容が一致しない")
		}
	})

	t.Run("fileフィールドが無い場合は400を返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t)

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		if err := mw.WriteField("other", "value"); err != nil {
			t.Fatalf("マルチパートフォームの作成に失敗: %v", err)
		}
		if err := mw.Close(); err != nil {
			t.Fatalf("マルチパートフォームのクローズに失敗: %v", err)
		}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/media/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		s.router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadRequest)
		}
		if got := w.Body.String(); got != `{"error":"No file uploaded"}` {
			t.Errorf("ボディ = %s, want %s", got, `{"error":"No file uploaded"}`)
		}
	})

	t.Run("サイズ上限を超えるファイルは400を返すこと", func(t *testing.T) {
		// maxUploadSizeを差し替えるため並列実行しない
		original := maxUploadSize
		maxUploadSize = 8
		t.Cleanup(func() { maxUploadSize = original })

		s := newTestServer(t)

		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, newUploadRequest(t, "big.png", []byte("more than eight bytes")))

		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
		}
	})
}

// TestServeFiles は保存済みファイルの配信のテスト。
func TestServeFiles(t *testing.T) {
	t.Parallel()

	t.Run("アップロードしたファイルを配信できること", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t)
		content := []byte("served content")

		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, newUploadRequest(t, "doc.txt", content))
		if w.Code != http.StatusCreated {
			t.Fatalf("アップロードのステータスコード: got %d, want %d", w.Code, http.StatusCreated)
		}

		var result struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
			t.Fatalf("レスポンスのパースに失敗: %v", err)
		}

		w2 := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, result.URL, nil)
		s.router.ServeHTTP(w2, req)

		if w2.Code != http.StatusOK {
			t.Fatalf("配信のステータスコード: got %d, want %d", w2.Code, http.StatusOK)
		}
		if !bytes.Equal(w2.Body.Bytes(), content) {
			t.Error("配信されたファイルの内容が一致しない")
		}
	})

	t.Run("存在しないファイルは404を返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/media/files/no-such-file.png", nil)
		s.router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

// TestMediaHealthCheck はヘルスチェックエンドポイントのテスト。
func TestMediaHealthCheck(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
	}

	var result map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("レスポンスのパースに失敗: %v", err)
	}
	if result["service"] != "media" {
		t.Errorf("service = %q, want %q", result["service"], "media")
	}
}
