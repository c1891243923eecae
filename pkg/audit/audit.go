// Package audit は認証試行の監査ログに関する型を提供する。
//
// authサービスがログイン成否を追記専用のauth_logsテーブルへ書き込む際に使用する。
// 監査レコードは書き込み専用であり、コアのリクエスト処理から読み返されることはない。
package audit

import "time"

// Action は監査対象となる認証アクションの種類を表す。
type Action string

const (
	// ActionLoginSuccess はログイン成功を表す。
	ActionLoginSuccess Action = "LOGIN_SUCCESS"
	// ActionLoginFailed はログイン失敗（パスワード不一致）を表す。
	ActionLoginFailed Action = "LOGIN_FAILED"
)

// Entry は1件の認証試行を表す追記専用のレコード。
type Entry struct {
	// ID はレコードの一意識別子（UUID）。
	ID string `json:"id"`
	// UserID は対象ユーザーのID。ユーザーを特定できない試行では空になる。
	UserID string `json:"user_id,omitempty"`
	// Action は認証アクションの種類。
	Action Action `json:"action"`
	// IPAddress は試行元のIPアドレス。
	IPAddress string `json:"ip_address"`
	// UserAgent は試行元のUser-Agentヘッダー値。
	UserAgent string `json:"user_agent"`
	// CreatedAt はレコードが作成された日時。
	CreatedAt time.Time `json:"created_at"`
}
