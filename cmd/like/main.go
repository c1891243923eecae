// いいねサービスのエントリポイント。
// 投稿に対するいいねのトグルと件数取得を担当する。
package main

import (
	"log"

	"github.com/nao1215/socialhub/internal/like"
	"github.com/nao1215/socialhub/pkg/config"
)

func main() {
	config.Load()
	port := config.GetEnv("PORT", "4004")

	server, err := like.NewServer(port)
	if err != nil {
		log.Fatalf("いいねサーバーの初期化に失敗: %v", err)
	}

	log.Printf("いいねサービスを起動します: :%s", port)
	if err := server.Run(); err != nil {
		log.Fatalf("いいねサービスの起動に失敗: %v", err)
	}
}
