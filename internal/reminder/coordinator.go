package reminder

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	reminderdb "github.com/nao1215/remind/internal/reminder/db"
)

// Coordinator はタスクバッチ全体への配信のファンアウトと結果の集約を行う。
type Coordinator struct {
	// dispatcher は1タスク分の配信処理。
	dispatcher *Dispatcher
	// queries は配信結果の記録に使用するクエリ実行オブジェクト。
	queries *reminderdb.Queries
	// concurrency は同時に実行する配信数の上限。0以下の場合はバッチサイズと同じ（無制限）。
	concurrency int
}

// NewCoordinator は新しいCoordinatorを生成する。
func NewCoordinator(dispatcher *Dispatcher, queries *reminderdb.Queries, concurrency int) *Coordinator {
	return &Coordinator{
		dispatcher:  dispatcher,
		queries:     queries,
		concurrency: concurrency,
	}
}

// Run はバッチ内の全タスクへ並行して配信し、結果を集約する。
//
// 各タスクの配信は互いに独立しており、1件の失敗が他のタスクの配信や
// 結果の報告を妨げることはない。バッチには同じタスクIDが高々1回しか
// 含まれないため、同一タスクへの書き込みが競合することもない。
func (c *Coordinator) Run(ctx context.Context, runID string, tasks []reminderdb.Task) *RunSummary {
	outcomes := make([]Outcome, len(tasks))

	limit := c.concurrency
	if limit <= 0 || limit > len(tasks) {
		limit = len(tasks)
	}
	sem := make(chan struct{}, max(limit, 1))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task reminderdb.Task) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			// 配信処理のパニックも1タスク分の失敗として扱い、バッチ全体を止めない
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[Dispatch] パニックから回復: task=%s, panic=%v", task.ID, r)
					outcomes[i] = Outcome{
						TaskID:  task.ID,
						OwnerID: task.OwnerID,
						Kind:    OutcomeFailed,
						Reason:  fmt.Sprintf("配信処理がパニック: %v", r),
					}
				}
			}()

			outcomes[i] = c.dispatcher.Dispatch(ctx, task)
		}(i, task)
	}
	wg.Wait()

	summary := &RunSummary{
		Considered: len(tasks),
		Outcomes:   outcomes,
	}
	for _, o := range outcomes {
		switch o.Kind {
		case OutcomeSent:
			summary.Sent++
			if o.MarkFailed {
				summary.MarkFailed++
			}
		case OutcomeSkippedNoAddress:
			summary.Skipped++
		case OutcomeFailed:
			summary.Failed++
		}
	}

	c.recordOutcomes(ctx, runID, outcomes)

	return summary
}

// recordOutcomes は配信結果をsend_logに記録する。
// 記録の失敗はジョブの成否に影響させず、ログ出力に留める。
func (c *Coordinator) recordOutcomes(ctx context.Context, runID string, outcomes []Outcome) {
	for _, o := range outcomes {
		detail := o.Reason
		if o.MarkFailed {
			detail = "通知済みフラグの更新に失敗"
		}
		err := c.queries.CreateSendLog(ctx, reminderdb.CreateSendLogParams{
			ID:      uuid.New().String(),
			RunID:   runID,
			TaskID:  o.TaskID,
			OwnerID: o.OwnerID,
			Outcome: string(o.Kind),
			Detail:  detail,
		})
		if err != nil {
			log.Printf("[Dispatch] 配信結果の記録に失敗: task=%s, error=%v", o.TaskID, err)
		}
	}
}
