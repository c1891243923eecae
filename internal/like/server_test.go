package like

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"

	likedb "github.com/nao1215/socialhub/internal/like/db"
	"github.com/nao1215/socialhub/pkg/middleware"
	"github.com/nao1215/socialhub/pkg/migration"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestServer はテスト用のいいねサーバーを生成する。
// インメモリSQLiteを使用し、マイグレーションを即時適用する。
func newTestServer(t *testing.T) *Server {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("インメモリDB接続に失敗: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	// インメモリDBは接続ごとに独立するため、単一接続に固定する
	sqlDB.SetMaxOpenConns(1)

	if err := migration.Run(sqlDB, migrationsFS, "migrations"); err != nil {
		t.Fatalf("スキーマ初期化に失敗: %v", err)
	}

	s := &Server{
		router:  gin.New(),
		port:    "0",
		queries: likedb.New(sqlDB),
		db:      sqlDB,
	}
	s.setupRoutes()

	return s
}

// toggleLike はテスト用にいいねをトグルしてlikedの値を返す。
func toggleLike(t *testing.T, s *Server, userID, postID string) bool {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/likes/toggle", strings.NewReader(`{"post_id":"`+postID+`"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderUserID, userID)
	req.Header.Set(middleware.HeaderUsername, "tester")
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("トグルのステータスコード: got %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	var result struct {
		Liked bool `json:"liked"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("トグルレスポンスのパースに失敗: %v", err)
	}
	return result.Liked
}

// countLikes はテスト用に投稿のいいね数を取得する。
func countLikes(t *testing.T, s *Server, postID string) int64 {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/likes/count?post_id="+postID, nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("いいね数取得のステータスコード: got %d, want %d", w.Code, http.StatusOK)
	}

	var result struct {
		PostID string `json:"post_id"`
		Count  int64  `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("いいね数レスポンスのパースに失敗: %v", err)
	}
	return result.Count
}

// TestHandleToggleLike はいいねトグルハンドラのテスト。
func TestHandleToggleLike(t *testing.T) {
	t.Parallel()

	t.Run("同一ユーザーの2回のトグルでliked:trueとliked:falseが交互に返ること", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t)

		if got := toggleLike(t, s, "user-1", "post-1"); got != true {
			t.Errorf("1回目のliked = %t, want %t", got, true)
		}
		if got := countLikes(t, s, "post-1"); got != 1 {
			t.Errorf("いいね数 = %d, want %d", got, 1)
		}

		if got := toggleLike(t, s, "user-1", "post-1"); got != false {
			t.Errorf("2回目のliked = %t, want %t", got, false)
		}
		if got := countLikes(t, s, "post-1"); got != 0 {
			t.Errorf("いいね数 = %d, want %d", got, 0)
		}
	})

	t.Run("異なるユーザーのいいねは独立に数えられること", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t)

		toggleLike(t, s, "user-1", "post-1")
		toggleLike(t, s, "user-2", "post-1")
		toggleLike(t, s, "user-3", "post-1")
		// user-2は取り消す
		toggleLike(t, s, "user-2", "post-1")

		if got := countLikes(t, s, "post-1"); got != 2 {
			t.Errorf("いいね数 = %d, want %d", got, 2)
		}
	})

	t.Run("post_idが無い場合は400を返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/likes/toggle", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.HeaderUserID, "user-1")
		s.router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadRequest)
		}
		if got := w.Body.String(); got != `{"error":"post_id required"}` {
			t.Errorf("ボディ = %s, want %s", got, `{"error":"post_id required"}`)
		}
	})

	t.Run("識別ヘッダーが無い場合は401を返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/likes/toggle", strings.NewReader(`{"post_id":"post-1"}`))
		req.Header.Set("Content-Type", "application/json")
		s.router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})
}

// TestHandleCountLikes はいいね数取得ハンドラのテスト。
func TestHandleCountLikes(t *testing.T) {
	t.Parallel()

	t.Run("いいねが無い投稿は0を返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/likes/count?post_id=post-1", nil)
		s.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}

		var result struct {
			PostID string `json:"post_id"`
			Count  int64  `json:"count"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
			t.Fatalf("レスポンスのパースに失敗: %v", err)
		}
		if result.PostID != "post-1" {
			t.Errorf("post_id = %q, want %q", result.PostID, "post-1")
		}
		if result.Count != 0 {
			t.Errorf("count = %d, want %d", result.Count, 0)
		}
	})

	t.Run("post_idが無い場合は400を返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/likes/count", nil)
		s.router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("post_idが繰り返された場合は先頭の値を採用すること", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t)
		toggleLike(t, s, "user-1", "post-1")

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/likes/count?post_id=post-1&post_id=post-2", nil)
		s.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}

		var result struct {
			PostID string `json:"post_id"`
			Count  int64  `json:"count"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
			t.Fatalf("レスポンスのパースに失敗: %v", err)
		}
		if result.PostID != "post-1" {
			t.Errorf("post_id = %q, want %q", result.PostID, "post-1")
		}
		if result.Count != 1 {
			t.Errorf("count = %d, want %d", result.Count, 1)
		}
	})
}

// TestLikeHealthCheck はヘルスチェックエンドポイントのテスト。
func TestLikeHealthCheck(t *testing.T) {
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
	if result["service"] != "like" {
		t.Errorf("service = %q, want %q", result["service"], "like")
	}
}
