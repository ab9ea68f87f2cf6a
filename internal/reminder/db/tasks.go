package db

import (
	"context"
	"database/sql"
	"time"
)

const createTask = `
INSERT INTO tasks (id, owner_id, title, description, reminder_at)
VALUES (?, ?, ?, ?, ?)
`

// CreateTaskParams はCreateTaskのパラメータ。
type CreateTaskParams struct {
	// ID はタスクの一意識別子。
	ID string
	// OwnerID はタスク所有者のユーザーID。
	OwnerID string
	// Title はタスクのタイトル。
	Title string
	// Description はタスクの説明。
	Description string
	// ReminderAt はリマインダーが通知対象になる日時。
	ReminderAt time.Time
}

// CreateTask は新しいタスクを作成する。
// タスク作成は外部のタスク管理側の操作であり、ジョブ本体からは呼ばれない。
func (q *Queries) CreateTask(ctx context.Context, arg CreateTaskParams) error {
	_, err := q.db.ExecContext(ctx, createTask,
		arg.ID, arg.OwnerID, arg.Title, arg.Description, arg.ReminderAt.Unix())
	return err
}

const completeTask = `
UPDATE tasks SET completed = 1 WHERE id = ?
`

// CompleteTask はタスクを完了状態にする。
// 外部のタスク管理側の操作であり、ジョブ本体からは呼ばれない。
func (q *Queries) CompleteTask(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, completeTask, id)
	return err
}

const getTaskByID = `
SELECT id, owner_id, title, description, reminder_at, completed, notified, created_at
FROM tasks WHERE id = ?
`

// GetTaskByID はIDでタスクを1件取得する。
func (q *Queries) GetTaskByID(ctx context.Context, id string) (Task, error) {
	row := q.db.QueryRowContext(ctx, getTaskByID, id)
	return scanTask(row)
}

const selectDueTasks = `
SELECT id, owner_id, title, description, reminder_at, completed, notified, created_at
FROM tasks
WHERE completed = 0
  AND notified = 0
  AND reminder_at <= ?
  AND reminder_at > ?
ORDER BY reminder_at
LIMIT ?
`

// SelectDueTasksParams はSelectDueTasksのパラメータ。
type SelectDueTasksParams struct {
	// Now は選択の基準時刻。ReminderAtがこれ以前のタスクが対象。
	Now time.Time
	// WindowStart は選択ウィンドウの開始時刻。ReminderAtがこれより後のタスクが対象。
	WindowStart time.Time
	// Limit は1回の実行で処理するタスク数の上限。
	Limit int64
}

// SelectDueTasks は通知対象のタスクを取得する。
// 未完了かつ未通知で、ReminderAtが (WindowStart, Now] に含まれるタスクを
// ReminderAtの昇順で最大Limit件返す。上限を超えた分は次回実行で選択される。
func (q *Queries) SelectDueTasks(ctx context.Context, arg SelectDueTasksParams) ([]Task, error) {
	rows, err := q.db.QueryContext(ctx, selectDueTasks,
		arg.Now.Unix(), arg.WindowStart.Unix(), arg.Limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tasks []Task
	for rows.Next() {
		t, err := scanTaskRows(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

const markTaskNotified = `
UPDATE tasks SET notified = 1 WHERE id = ?
`

// MarkTaskNotified はタスクの通知済みフラグを立てる。
// notifiedカラムのみを対象とした更新であり、他のフィールドには触れない。
// 対象タスクが存在しない場合は sql.ErrNoRows を返す。
func (q *Queries) MarkTaskNotified(ctx context.Context, id string) error {
	result, err := q.db.ExecContext(ctx, markTaskNotified, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// scanTask は1行のクエリ結果をTaskに変換する。
func scanTask(row *sql.Row) (Task, error) {
	var t Task
	var reminderAt int64
	var completed, notified int64
	err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description,
		&reminderAt, &completed, &notified, &t.CreatedAt)
	if err != nil {
		return Task{}, err
	}
	t.ReminderAt = time.Unix(reminderAt, 0).UTC()
	t.Completed = completed != 0
	t.Notified = notified != 0
	return t, nil
}

// scanTaskRows は複数行クエリの現在行をTaskに変換する。
func scanTaskRows(rows *sql.Rows) (Task, error) {
	var t Task
	var reminderAt int64
	var completed, notified int64
	err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description,
		&reminderAt, &completed, &notified, &t.CreatedAt)
	if err != nil {
		return Task{}, err
	}
	t.ReminderAt = time.Unix(reminderAt, 0).UTC()
	t.Completed = completed != 0
	t.Notified = notified != 0
	return t, nil
}
