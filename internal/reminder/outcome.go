package reminder

import "fmt"

// OutcomeKind は1タスク分の配信結果の種別を表す。
type OutcomeKind string

const (
	// OutcomeSent は通知の送信に成功したことを表す。
	OutcomeSent OutcomeKind = "sent"
	// OutcomeSkippedNoAddress は所有者のアドレスが未登録のため送信を見送ったことを表す。
	OutcomeSkippedNoAddress OutcomeKind = "skipped_no_address"
	// OutcomeFailed は送信に失敗したことを表す。対象タスクは次回実行で再選択される。
	OutcomeFailed OutcomeKind = "failed"
)

// Outcome はジョブ実行における1タスク分の配信結果。
type Outcome struct {
	// TaskID は対象タスクのID。
	TaskID string
	// OwnerID はタスク所有者のユーザーID。
	OwnerID string
	// Kind は配信結果の種別。
	Kind OutcomeKind
	// Reason は失敗時の理由。成功・スキップ時は空。
	Reason string
	// MarkFailed は送信成功後の通知済みフラグ更新に失敗したことを表す。
	// trueの場合、次回実行で同じタスクに重複送信が発生しうる。
	MarkFailed bool
}

// String は配信結果を人間可読な1行のログ文字列にする。
func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeSent:
		if o.MarkFailed {
			return fmt.Sprintf("task=%s owner=%s: 送信済み（通知済みフラグの更新に失敗）", o.TaskID, o.OwnerID)
		}
		return fmt.Sprintf("task=%s owner=%s: 送信済み", o.TaskID, o.OwnerID)
	case OutcomeSkippedNoAddress:
		return fmt.Sprintf("task=%s owner=%s: アドレス未登録のためスキップ", o.TaskID, o.OwnerID)
	case OutcomeFailed:
		return fmt.Sprintf("task=%s owner=%s: 送信失敗: %s", o.TaskID, o.OwnerID, o.Reason)
	default:
		return fmt.Sprintf("task=%s owner=%s: %s", o.TaskID, o.OwnerID, o.Kind)
	}
}

// RunSummary は1回のジョブ実行の集計結果。永続化はせず、レスポンスにのみ使用する。
type RunSummary struct {
	// Considered は選択されたタスクの総数。
	Considered int
	// Sent は送信に成功したタスク数（MarkFailedを含む）。
	Sent int
	// Skipped はアドレス未登録でスキップしたタスク数。
	Skipped int
	// Failed は送信に失敗したタスク数。
	Failed int
	// MarkFailed は送信後のフラグ更新に失敗したタスク数。重複送信リスクの指標。
	MarkFailed int
	// Outcomes はタスクごとの配信結果。
	Outcomes []Outcome
}

// Lines は全タスクの配信結果を人間可読なログ行のスライスにする。
func (s *RunSummary) Lines() []string {
	lines := make([]string, 0, len(s.Outcomes))
	for _, o := range s.Outcomes {
		lines = append(lines, o.String())
	}
	return lines
}
