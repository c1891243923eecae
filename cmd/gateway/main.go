// API Gatewayサービスのエントリポイント。
// ルート分類・アクセストークン検証・バックエンドへの転送を担当する。
// 外部からアクセス可能な唯一のサービスであり、セキュリティの境界線となる。
package main

import (
	"log"

	"github.com/nao1215/socialhub/internal/gateway"
	"github.com/nao1215/socialhub/pkg/config"
)

func main() {
	config.Load()
	port := config.GetEnv("PORT", "4000")

	server, err := gateway.NewServer(port)
	if err != nil {
		log.Fatalf("Gatewayサーバーの初期化に失敗: %v", err)
	}

	log.Printf("Gatewayサービスを起動します: :%s", port)
	if err := server.Run(); err != nil {
		log.Fatalf("Gatewayサービスの起動に失敗: %v", err)
	}
}
