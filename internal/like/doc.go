// Package like はいいねサービスを提供する。
// 投稿に対するいいねのトグル（付与・取り消し）と件数取得を担う。
// 認証はgatewayが担当し、本サービスは検証済みの識別ヘッダーを信頼する。
package like
