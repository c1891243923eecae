// Package gateway はAPI Gatewayサービスの内部実装を提供する。
//
// すべての外部リクエストを受け付ける唯一の入口であり、静的なルート表で
// 転送先バックエンドと認証要否を分類し、保護ルートではアクセストークンを
// 検証してから識別情報を信頼ヘッダーとして注入して転送する。
// バックエンドのレスポンスはステータスコードとボディをそのまま中継する。
package gateway
