// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// gatewayが注入する信頼ヘッダーからの識別情報抽出、パニックリカバリ、
// CORS設定など、複数サービスで共通して使用するミドルウェアを含む。
package middleware
