// Package db はpostサービスのSQLiteクエリ層を提供する。
package db

import (
	"context"
	"database/sql"
	"time"
)

// Queries はpostサービスのデータベースクエリをまとめた実行オブジェクト。
type Queries struct {
	db *sql.DB
}

// New は指定されたデータベース接続に紐づくQueriesを生成する。
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// Post は投稿の1行を表す。
type Post struct {
	ID        string
	UserID    string
	UserName  string
	Content   string
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostImage は投稿に添付された画像の1行を表す。
type PostImage struct {
	ID        string
	PostID    string
	URL       string
	CreatedAt time.Time
}

// CreatePostParams はCreatePostのパラメータ。
type CreatePostParams struct {
	ID       string
	UserID   string
	UserName string
	Content  string
	ImageURL string
}

// CreatePost は新しい投稿を挿入する。
func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO posts (id, user_id, user_name, content, image_url)
		VALUES (?, ?, ?, ?, ?)
	`, arg.ID, arg.UserID, arg.UserName, arg.Content, arg.ImageURL)
	return err
}

// CreatePostImageParams はCreatePostImageのパラメータ。
type CreatePostImageParams struct {
	ID     string
	PostID string
	URL    string
}

// CreatePostImage は投稿画像の行を挿入する。
func (q *Queries) CreatePostImage(ctx context.Context, arg CreatePostImageParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO post_images (id, post_id, url)
		VALUES (?, ?, ?)
	`, arg.ID, arg.PostID, arg.URL)
	return err
}

// GetPost はIDが一致する投稿を返す。
// 見つからない場合はsql.ErrNoRowsを返す。
func (q *Queries) GetPost(ctx context.Context, id string) (Post, error) {
	var p Post
	err := q.db.QueryRowContext(ctx, `
		SELECT id, user_id, user_name, content, image_url, created_at, updated_at
		FROM posts
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&p.ID, &p.UserID, &p.UserName, &p.Content, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// ListPostsParams はListPostsのパラメータ。
type ListPostsParams struct {
	Limit  int
	Offset int
}

// ListPosts は投稿を新しい順に返す。
// created_atの精度は秒のため、同時刻の投稿は挿入順の逆（rowid降順）で補う。
func (q *Queries) ListPosts(ctx context.Context, arg ListPostsParams) ([]Post, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, user_id, user_name, content, image_url, created_at, updated_at
		FROM posts
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?
	`, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.UserName, &p.Content, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ListPostImages は投稿に紐づく画像を挿入順に返す。
func (q *Queries) ListPostImages(ctx context.Context, postID string) ([]PostImage, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, post_id, url, created_at
		FROM post_images
		WHERE post_id = ?
		ORDER BY rowid
	`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []PostImage
	for rows.Next() {
		var img PostImage
		if err := rows.Scan(&img.ID, &img.PostID, &img.URL, &img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}
