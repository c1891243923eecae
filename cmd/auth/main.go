// 認証サービスのエントリポイント。
// ユーザー登録・ログイン・トークン再発行・ログアウトと監査ログの記録を担当する。
package main

import (
	"log"

	"github.com/nao1215/socialhub/internal/auth"
	"github.com/nao1215/socialhub/pkg/config"
)

func main() {
	config.Load()
	port := config.GetEnv("PORT", "4001")

	server, err := auth.NewServer(port)
	if err != nil {
		log.Fatalf("認証サーバーの初期化に失敗: %v", err)
	}

	log.Printf("認証サービスを起動します: :%s", port)
	if err := server.Run(); err != nil {
		log.Fatalf("認証サービスの起動に失敗: %v", err)
	}
}
