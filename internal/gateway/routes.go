package gateway

import "strings"

// route は1つのパスプレフィックスに対する転送先と認証要否の静的な分類。
// プロセス起動時に固定され、以後変更されない。
type route struct {
	// Prefix は分類対象のパスプレフィックス。
	Prefix string
	// BaseURL は転送先バックエンドのベースURL。
	BaseURL string
	// RequiresAuth はアクセストークンの検証を必要とするかどうか。
	RequiresAuth bool
	// Streaming はボディを逐次中継するかどうか。大きなファイル転送用。
	Streaming bool
}

// routeTable は全ルート分類の静的な一覧。
type routeTable []route

// newRouteTable はバックエンドURL設定からルート表を構築する。
func newRouteTable(urls serviceURLConfig) routeTable {
	return routeTable{
		// 公開ルート（認証不要）
		{Prefix: "/api/auth", BaseURL: urls.Auth},
		{Prefix: "/api/media/files", BaseURL: urls.Media, Streaming: true},
		// 保護ルート（アクセストークン必須）
		{Prefix: "/api/posts", BaseURL: urls.Post, RequiresAuth: true},
		{Prefix: "/api/comments", BaseURL: urls.Comment, RequiresAuth: true},
		{Prefix: "/api/likes", BaseURL: urls.Like, RequiresAuth: true},
		{Prefix: "/api/media/upload", BaseURL: urls.Media, RequiresAuth: true, Streaming: true},
	}
}

// Classify はリクエストパスを最長一致のプレフィックスで分類する。
// どのルートにも一致しない場合はok=falseを返す。その場合の応答は
// 呼び出し側が明示的なNotFoundとして処理し、既定のバックエンドへ
// 流れ落ちることはない。
func (rt routeTable) Classify(path string) (route, bool) {
	var matched route
	found := false
	for _, r := range rt {
		if !matchesPrefix(path, r.Prefix) {
			continue
		}
		if !found || len(r.Prefix) > len(matched.Prefix) {
			matched = r
			found = true
		}
	}
	return matched, found
}

// matchesPrefix はパスがプレフィックスにセグメント境界で一致するかを返す。
// "/api/posts" は "/api/posts" と "/api/posts/123" に一致し、
// "/api/postsextra" には一致しない。
func matchesPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
