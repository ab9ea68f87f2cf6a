// Package identity はIDプロバイダーからユーザー情報を取得するクライアントを提供する。
//
// プロバイダーのアカウント一覧APIを継続トークンでページングしながら列挙する。
// 各リクエストには共有シークレットで署名した短命のサービストークンを付与する。
package identity
