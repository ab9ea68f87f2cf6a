package reminder

import (
	"database/sql"
	"fmt"
)

// スキーマ定義。
// reminder_at はドライバの日時フォーマットに依存せず範囲比較できるよう
// UNIX秒（UTC）の整数で保持する。
const schema = `
CREATE TABLE IF NOT EXISTS tasks (
    -- タスクの一意識別子
    id TEXT PRIMARY KEY,
    -- タスク所有者のユーザーID
    owner_id TEXT NOT NULL,
    -- タスクのタイトル
    title TEXT NOT NULL,
    -- タスクの説明（空の場合は通知本文に定型文を使用）
    description TEXT NOT NULL DEFAULT '',
    -- リマインダーが通知対象になる日時（UNIX秒）
    reminder_at INTEGER NOT NULL,
    -- タスクの完了状態
    completed INTEGER NOT NULL DEFAULT 0,
    -- 通知送信済みフラグ
    notified INTEGER NOT NULL DEFAULT 0,
    -- タスクの作成日時
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

-- 通知対象タスクの選択を高速化するインデックス。
CREATE INDEX IF NOT EXISTS idx_tasks_due
    ON tasks(reminder_at) WHERE completed = 0 AND notified = 0;

CREATE TABLE IF NOT EXISTS users (
    -- ユーザーの一意識別子（タスクのowner_idと対応）
    id TEXT PRIMARY KEY,
    -- 通知先メールアドレス（未登録の場合は空）
    address TEXT NOT NULL DEFAULT '',
    -- ユーザーの表示名（同期処理では書き換えない）
    display_name TEXT NOT NULL DEFAULT '',
    -- 最後にIDプロバイダーと同期した日時
    synced_at DATETIME,
    -- レコードの作成日時
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS send_log (
    -- ログレコードの一意識別子（UUID）
    id TEXT PRIMARY KEY,
    -- ジョブ実行の識別子（UUID）
    run_id TEXT NOT NULL,
    -- 対象タスクのID
    task_id TEXT NOT NULL,
    -- タスク所有者のユーザーID
    owner_id TEXT NOT NULL,
    -- 配信結果（sent / skipped_no_address / failed）
    outcome TEXT NOT NULL,
    -- 失敗理由などの補足情報
    detail TEXT NOT NULL DEFAULT '',
    -- レコードの作成日時
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

-- ジョブ実行単位での検索を高速化するインデックス。
CREATE INDEX IF NOT EXISTS idx_send_log_run_id
    ON send_log(run_id);
`

// initSchema はSQLiteデータベースにスキーマを適用する。
func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return nil
}
