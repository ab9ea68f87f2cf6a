// Package httpclient は外部サービスとのHTTP通信を行うクライアントを提供する。
//
// IDプロバイダーからのユーザー一覧取得、メールリレーへの送信依頼など、
// リマインダージョブが外部サービスのAPIを呼び出す際の通信パターンを統一する。
package httpclient
