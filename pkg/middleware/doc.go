// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// スケジューラーからのトリガーリクエストを検証する共有シークレット認証と、
// パニックリカバリを含む。
package middleware
