// Package reminder はリマインダー配信ジョブの内部実装を提供する。
//
// 外部スケジューラーからのトリガーを受けて、IDプロバイダーとの
// ユーザーディレクトリ同期、通知対象タスクの選択、メール通知の並行配信、
// 通知済みフラグの更新を1回のジョブ実行として行う。
package reminder
