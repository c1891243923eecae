// Package config は環境変数ベースの設定読み込みを提供する。
package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Load はカレントディレクトリの.envファイルを環境変数に読み込む。
// .envが存在しない場合は何もしない（本番環境では環境変数を直接設定する）。
func Load() {
	if err := godotenv.Load(); err != nil {
		if os.IsNotExist(err) {
			return
		}
		log.Printf(".envファイルの読み込みに失敗: %v", err)
	}
}

// GetEnv は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func GetEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
