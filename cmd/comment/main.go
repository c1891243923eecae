// コメントサービスのエントリポイント。
// 投稿に対するコメントの作成と一覧取得を担当する。
package main

import (
	"log"

	"github.com/nao1215/socialhub/internal/comment"
	"github.com/nao1215/socialhub/pkg/config"
)

func main() {
	config.Load()
	port := config.GetEnv("PORT", "4003")

	server, err := comment.NewServer(port)
	if err != nil {
		log.Fatalf("コメントサーバーの初期化に失敗: %v", err)
	}

	log.Printf("コメントサービスを起動します: :%s", port)
	if err := server.Run(); err != nil {
		log.Fatalf("コメントサービスの起動に失敗: %v", err)
	}
}
