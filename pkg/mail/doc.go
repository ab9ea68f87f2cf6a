// Package mail はメールリレーサービスへの送信依頼を行うクライアントを提供する。
//
// リマインダー通知の実配信はリレー側が担い、本パッケージは
// {from, to, subject, body} の送信依頼と結果の成否だけを扱う。
package mail
