package media

import (
	"fmt"
	"os"
)

// initStorage はメディアファイルの保存先ディレクトリを作成する。
// ディレクトリが既に存在する場合は何もしない。
func initStorage(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("メディア保存ディレクトリの作成に失敗: %w", err)
	}
	return nil
}
