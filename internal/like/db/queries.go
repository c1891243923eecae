// Package db はlikeサービスのSQLiteクエリ層を提供する。
package db

import (
	"context"
	"database/sql"
)

// Queries はlikeサービスのデータベースクエリをまとめた実行オブジェクト。
type Queries struct {
	db *sql.DB
}

// New は指定されたデータベース接続に紐づくQueriesを生成する。
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// GetLikeID は投稿とユーザーの組に対応するいいね行のIDを返す。
// 見つからない場合はsql.ErrNoRowsを返す。
func (q *Queries) GetLikeID(ctx context.Context, postID, userID string) (string, error) {
	var id string
	err := q.db.QueryRowContext(ctx, `
		SELECT id FROM post_likes WHERE post_id = ? AND user_id = ?
	`, postID, userID).Scan(&id)
	return id, err
}

// CreateLikeParams はCreateLikeのパラメータ。
type CreateLikeParams struct {
	ID     string
	PostID string
	UserID string
}

// CreateLike はいいね行を挿入する。
// (post_id, user_id)の組にはUNIQUE制約があり、二重挿入はエラーになる。
func (q *Queries) CreateLike(ctx context.Context, arg CreateLikeParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO post_likes (id, post_id, user_id)
		VALUES (?, ?, ?)
	`, arg.ID, arg.PostID, arg.UserID)
	return err
}

// DeleteLike はIDが一致するいいね行を削除する。
func (q *Queries) DeleteLike(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM post_likes WHERE id = ?`, id)
	return err
}

// CountLikesByPost は投稿のいいね数を返す。
func (q *Queries) CountLikesByPost(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM post_likes WHERE post_id = ?
	`, postID).Scan(&count)
	return count, err
}
