// 投稿サービスのエントリポイント。
// 投稿の作成・一覧取得（ページ分割）・1件取得を担当する。
package main

import (
	"log"

	"github.com/nao1215/socialhub/internal/post"
	"github.com/nao1215/socialhub/pkg/config"
)

func main() {
	config.Load()
	port := config.GetEnv("PORT", "4002")

	server, err := post.NewServer(port)
	if err != nil {
		log.Fatalf("投稿サーバーの初期化に失敗: %v", err)
	}

	log.Printf("投稿サービスを起動します: :%s", port)
	if err := server.Run(); err != nil {
		log.Fatalf("投稿サービスの起動に失敗: %v", err)
	}
}
