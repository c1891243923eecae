// Package post は投稿サービスを提供する。
// 投稿の作成・一覧取得（ページ分割）・1件取得を担い、
// 添付画像はpost_imagesテーブルで複数保持する（先頭はサムネイルとして投稿行にも保存）。
// 認証はgatewayが担当し、本サービスは検証済みの識別ヘッダーを信頼する。
package post
