package post

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/nao1215/socialhub/pkg/migration"
)

//go:embed migrations/*.up.sql
var migrationsFS embed.FS

// schemaInitMaxRetries はスキーマ初期化のリトライ回数（初回試行を含め10回）。
const schemaInitMaxRetries = 9

// schemaInitRetryDelay はスキーマ初期化のリトライ間隔。
const schemaInitRetryDelay = 3 * time.Second

// initSchemaWithRetry はマイグレーションを適用する。
// 一定回数リトライし、使い切った時点でエラーを返す（呼び出し側でプロセス終了）。
func initSchemaWithRetry(ctx context.Context, db *sql.DB) error {
	backoff := retry.WithMaxRetries(schemaInitMaxRetries, retry.NewConstant(schemaInitRetryDelay))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := migration.Run(db, migrationsFS, "migrations"); err != nil {
			log.Printf("スキーマ初期化に失敗（%d回目）: %v", attempt, err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("スキーマ初期化のリトライ上限に到達: %w", err)
	}
	return nil
}
