package db

import (
	"context"
)

const createSendLog = `
INSERT INTO send_log (id, run_id, task_id, owner_id, outcome, detail)
VALUES (?, ?, ?, ?, ?, ?)
`

// CreateSendLogParams はCreateSendLogのパラメータ。
type CreateSendLogParams struct {
	// ID はログレコードの一意識別子（UUID）。
	ID string
	// RunID はジョブ実行の識別子（UUID）。
	RunID string
	// TaskID は対象タスクのID。
	TaskID string
	// OwnerID はタスク所有者のユーザーID。
	OwnerID string
	// Outcome は配信結果。
	Outcome string
	// Detail は補足情報。
	Detail string
}

// CreateSendLog は配信結果を1件記録する。
func (q *Queries) CreateSendLog(ctx context.Context, arg CreateSendLogParams) error {
	_, err := q.db.ExecContext(ctx, createSendLog,
		arg.ID, arg.RunID, arg.TaskID, arg.OwnerID, arg.Outcome, arg.Detail)
	return err
}

const listRecentSendLogs = `
SELECT id, run_id, task_id, owner_id, outcome, detail, created_at
FROM send_log
ORDER BY created_at DESC, id
LIMIT ?
`

// ListRecentSendLogs は直近の配信結果を新しい順に最大limit件取得する。
func (q *Queries) ListRecentSendLogs(ctx context.Context, limit int64) ([]SendLog, error) {
	rows, err := q.db.QueryContext(ctx, listRecentSendLogs, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var logs []SendLog
	for rows.Next() {
		var l SendLog
		if err := rows.Scan(&l.ID, &l.RunID, &l.TaskID, &l.OwnerID,
			&l.Outcome, &l.Detail, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

const listSendLogsByRunID = `
SELECT id, run_id, task_id, owner_id, outcome, detail, created_at
FROM send_log
WHERE run_id = ?
ORDER BY created_at, id
`

// ListSendLogsByRunID は指定したジョブ実行の配信結果を取得する。
func (q *Queries) ListSendLogsByRunID(ctx context.Context, runID string) ([]SendLog, error) {
	rows, err := q.db.QueryContext(ctx, listSendLogsByRunID, runID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var logs []SendLog
	for rows.Next() {
		var l SendLog
		if err := rows.Scan(&l.ID, &l.RunID, &l.TaskID, &l.OwnerID,
			&l.Outcome, &l.Detail, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
