package db

import (
	"database/sql"
	"time"
)

// Task はユーザーが作成したリマインダー付きタスク。
// タスクの作成・編集・完了は外部のタスク管理側が行い、
// 本サービスが書き換えるのは通知済みフラグだけである。
type Task struct {
	// ID はタスクの一意識別子。
	ID string
	// OwnerID はタスク所有者のユーザーID。usersテーブルへの外部キー。
	OwnerID string
	// Title はタスクのタイトル。通知の件名に使用する。
	Title string
	// Description はタスクの説明。空の場合は通知本文に定型文を使用する。
	Description string
	// ReminderAt はリマインダーが通知対象になる日時。
	ReminderAt time.Time
	// Completed はタスクの完了状態。完了済みタスクは通知対象から恒久的に外れる。
	Completed bool
	// Notified は通知送信済みフラグ。一度trueになったタスクは再通知されない。
	Notified bool
	// CreatedAt はタスクの作成日時。
	CreatedAt time.Time
}

// User はIDプロバイダーから同期したユーザーディレクトリのレコード。
type User struct {
	// ID はユーザーの一意識別子。タスクのOwnerIDと対応する。
	ID string
	// Address は通知先メールアドレス。プロバイダーに登録がない場合は空。
	Address string
	// DisplayName はユーザーの表示名。同期処理では書き換えない。
	DisplayName string
	// SyncedAt は最後に同期された日時。未同期の場合は無効値。
	SyncedAt sql.NullTime
	// CreatedAt はレコードの作成日時。
	CreatedAt time.Time
}

// SendLog はジョブ実行における1タスク分の配信結果の記録。
type SendLog struct {
	// ID はログレコードの一意識別子（UUID）。
	ID string
	// RunID はジョブ実行の識別子（UUID）。同一実行のレコードを束ねる。
	RunID string
	// TaskID は対象タスクのID。
	TaskID string
	// OwnerID はタスク所有者のユーザーID。
	OwnerID string
	// Outcome は配信結果（sent / skipped_no_address / failed）。
	Outcome string
	// Detail は失敗理由や通知済みフラグ更新失敗などの補足情報。
	Detail string
	// CreatedAt はレコードの作成日時。
	CreatedAt time.Time
}
