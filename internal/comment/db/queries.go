// Package db はcommentサービスのSQLiteクエリ層を提供する。
package db

import (
	"context"
	"database/sql"
	"time"
)

// Queries はcommentサービスのデータベースクエリをまとめた実行オブジェクト。
type Queries struct {
	db *sql.DB
}

// New は指定されたデータベース接続に紐づくQueriesを生成する。
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// Comment はコメントの1行を表す。
type Comment struct {
	ID        string
	PostID    string
	UserID    string
	UserName  string
	Content   string
	CreatedAt time.Time
}

// CreateCommentParams はCreateCommentのパラメータ。
type CreateCommentParams struct {
	ID       string
	PostID   string
	UserID   string
	UserName string
	Content  string
}

// CreateComment は新しいコメントを挿入する。
func (q *Queries) CreateComment(ctx context.Context, arg CreateCommentParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO comments (id, post_id, user_id, user_name, content)
		VALUES (?, ?, ?, ?, ?)
	`, arg.ID, arg.PostID, arg.UserID, arg.UserName, arg.Content)
	return err
}

// GetComment はIDが一致するコメントを返す。
// 見つからない場合はsql.ErrNoRowsを返す。
func (q *Queries) GetComment(ctx context.Context, id string) (Comment, error) {
	var c Comment
	err := q.db.QueryRowContext(ctx, `
		SELECT id, post_id, user_id, user_name, content, created_at
		FROM comments
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&c.ID, &c.PostID, &c.UserID, &c.UserName, &c.Content, &c.CreatedAt)
	return c, err
}

// ListCommentsByPost は投稿に紐づくコメントを古い順に返す。
// created_atの精度は秒のため、同時刻のコメントは挿入順（rowid昇順）で補う。
func (q *Queries) ListCommentsByPost(ctx context.Context, postID string) ([]Comment, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, post_id, user_id, user_name, content, created_at
		FROM comments
		WHERE post_id = ?
		ORDER BY created_at ASC, rowid ASC
	`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.UserName, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
