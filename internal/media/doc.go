// Package media はメディアサービスを提供する。
// マルチパートフォームによるファイルアップロードと、保存済みファイルの配信を担う。
// データベースは持たず、ローカルディスクのアップロードディレクトリのみを使用する。
package media
