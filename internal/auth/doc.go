// Package auth は認証サービスの内部実装を提供する。
//
// ユーザー登録・ログイン・アクセストークンの再発行を担当し、
// リフレッシュトークンを有効期限つきでSQLiteに永続化する。
// ログインの成否は追記専用の監査テーブルに記録する。
// クライアントへのエラーメッセージは資格情報の列挙を防ぐため常に汎用的な文言にする。
package auth
