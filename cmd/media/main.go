// メディアサービスのエントリポイント。
// ファイルのアップロードと配信を担当する。
package main

import (
	"log"

	"github.com/nao1215/socialhub/internal/media"
	"github.com/nao1215/socialhub/pkg/config"
)

func main() {
	config.Load()
	port := config.GetEnv("PORT", "4005")

	server, err := media.NewServer(port)
	if err != nil {
		log.Fatalf("メディアサーバーの初期化に失敗: %v", err)
	}

	log.Printf("メディアサービスを起動します: :%s", port)
	if err := server.Run(); err != nil {
		log.Fatalf("メディアサービスの起動に失敗: %v", err)
	}
}
