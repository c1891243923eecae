// Package comment はコメントサービスを提供する。
// 投稿に対するコメントの作成と一覧取得（古い順）を担う。
// 認証はgatewayが担当し、本サービスは検証済みの識別ヘッダーを信頼する。
package comment
