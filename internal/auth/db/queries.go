// Package db はauthサービスのSQLiteクエリ層を提供する。
package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/nao1215/socialhub/pkg/audit"
)

// Queries はauthサービスのデータベースクエリをまとめた実行オブジェクト。
type Queries struct {
	db *sql.DB
}

// New は指定されたデータベース接続に紐づくQueriesを生成する。
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// User はユーザーアカウントの1行を表す。
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Bio          string
	AvatarURL    string
	CreatedAt    time.Time
}

// RefreshToken は永続化されたリフレッシュトークンの1行を表す。
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	UserAgent string
	IPAddress string
	ExpiredAt time.Time
	CreatedAt time.Time
}

// CreateUserParams はCreateUserのパラメータ。
type CreateUserParams struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
}

// CreateUser は新しいユーザーを挿入する。
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash)
		VALUES (?, ?, ?, ?)
	`, arg.ID, arg.Username, arg.Email, arg.PasswordHash)
	return err
}

// GetUserByEmailOrUsername はメールアドレスまたはユーザー名が一致するユーザーを返す。
// 見つからない場合はsql.ErrNoRowsを返す。
func (q *Queries) GetUserByEmailOrUsername(ctx context.Context, identifier string) (User, error) {
	var u User
	err := q.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, bio, avatar_url, created_at
		FROM users
		WHERE email = ? OR username = ?
		LIMIT 1
	`, identifier, identifier).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Bio, &u.AvatarURL, &u.CreatedAt)
	return u, err
}

// CreateRefreshTokenParams はCreateRefreshTokenのパラメータ。
type CreateRefreshTokenParams struct {
	ID        string
	UserID    string
	Token     string
	UserAgent string
	IPAddress string
	ExpiredAt time.Time
}

// CreateRefreshToken はリフレッシュトークンの行を挿入する。
// 同一ユーザーの既存トークンは無効化しない（複数セッションを許可する）。
func (q *Queries) CreateRefreshToken(ctx context.Context, arg CreateRefreshTokenParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token, user_agent, ip_address, expired_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, arg.ID, arg.UserID, arg.Token, arg.UserAgent, arg.IPAddress, arg.ExpiredAt)
	return err
}

// GetRefreshToken はトークン文字列が一致する行を返す。
// 見つからない場合はsql.ErrNoRowsを返す。ストア上の存在が有効性の根拠となる。
func (q *Queries) GetRefreshToken(ctx context.Context, tokenString string) (RefreshToken, error) {
	var rt RefreshToken
	err := q.db.QueryRowContext(ctx, `
		SELECT id, user_id, token, user_agent, ip_address, expired_at, created_at
		FROM refresh_tokens
		WHERE token = ?
		LIMIT 1
	`, tokenString).Scan(&rt.ID, &rt.UserID, &rt.Token, &rt.UserAgent, &rt.IPAddress, &rt.ExpiredAt, &rt.CreatedAt)
	return rt, err
}

// DeleteRefreshToken はトークン文字列が一致する行を削除する。
// 該当行が無い場合もエラーにしない（ログアウトは冪等）。
func (q *Queries) DeleteRefreshToken(ctx context.Context, tokenString string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = ?`, tokenString)
	return err
}

// CreateAuthLog は認証試行の監査レコードを追記する。
// user_idはユーザーを特定できない試行では空文字列のままNULLとして保存する。
func (q *Queries) CreateAuthLog(ctx context.Context, entry audit.Entry) error {
	userID := sql.NullString{String: entry.UserID, Valid: entry.UserID != ""}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO auth_logs (id, user_id, action, ip_address, user_agent)
		VALUES (?, ?, ?, ?, ?)
	`, entry.ID, userID, string(entry.Action), entry.IPAddress, entry.UserAgent)
	return err
}

// CountAuthLogs は指定ユーザー・アクションの監査レコード数を返す。
// 監査証跡の検証用であり、リクエスト処理からは使用しない。
func (q *Queries) CountAuthLogs(ctx context.Context, userID string, action audit.Action) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM auth_logs WHERE user_id = ? AND action = ?
	`, userID, string(action)).Scan(&count)
	return count, err
}
