package reminder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	reminderdb "github.com/nao1215/remind/internal/reminder/db"
	"github.com/nao1215/remind/pkg/mail"
)

// fallbackBody は説明が空のタスクに使用する通知本文の定型文。
const fallbackBody = "タスクのリマインダーです。期限を確認してください。"

// mailSender はメール送信の依頼先。pkg/mail.Client が実装する。
type mailSender interface {
	Send(ctx context.Context, msg mail.Message) error
}

// Dispatcher は1タスク分の通知配信を行う。
// アドレス解決、通知の組み立て、送信、通知済みフラグの更新を1回の配信として扱う。
type Dispatcher struct {
	// queries はディレクトリ参照とタスク更新に使用するクエリ実行オブジェクト。
	queries *reminderdb.Queries
	// sender はメール送信の依頼先。
	sender mailSender
	// from は通知メールの送信元アドレス。
	from string
}

// NewDispatcher は新しいDispatcherを生成する。
func NewDispatcher(queries *reminderdb.Queries, sender mailSender, from string) *Dispatcher {
	return &Dispatcher{
		queries: queries,
		sender:  sender,
		from:    from,
	}
}

// Dispatch は1タスク分の通知配信を行い、結果を返す。
//
// 所有者のアドレスが未登録の場合は送信せずスキップし、通知済みフラグも
// 立てない（後続の同期でアドレスが登録されれば、選択ウィンドウ内にある限り
// 次回実行で再試行される）。送信に失敗した場合もフラグは立てず、次回実行の
// 再選択が唯一のリトライ機構となる。送信成功後のフラグ更新失敗は結果に
// MarkFailedとして記録する。この場合は次回実行で重複送信が発生しうる。
func (d *Dispatcher) Dispatch(ctx context.Context, task reminderdb.Task) Outcome {
	address, err := d.queries.GetUserAddress(ctx, task.OwnerID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && address == "") {
		return Outcome{TaskID: task.ID, OwnerID: task.OwnerID, Kind: OutcomeSkippedNoAddress}
	}
	if err != nil {
		return Outcome{
			TaskID:  task.ID,
			OwnerID: task.OwnerID,
			Kind:    OutcomeFailed,
			Reason:  fmt.Sprintf("アドレス解決に失敗: %v", err),
		}
	}

	body := task.Description
	if body == "" {
		body = fallbackBody
	}
	msg := mail.Message{
		From:    d.from,
		To:      address,
		Subject: fmt.Sprintf("リマインダー: %s", task.Title),
		Body:    body,
	}

	if err := d.sender.Send(ctx, msg); err != nil {
		return Outcome{
			TaskID:  task.ID,
			OwnerID: task.OwnerID,
			Kind:    OutcomeFailed,
			Reason:  err.Error(),
		}
	}

	outcome := Outcome{TaskID: task.ID, OwnerID: task.OwnerID, Kind: OutcomeSent}
	if err := d.queries.MarkTaskNotified(ctx, task.ID); err != nil {
		// 送信自体は成功しているため結果はSentのまま、重複送信リスクとして記録する
		log.Printf("[Dispatch] 通知済みフラグの更新に失敗: task=%s, error=%v", task.ID, err)
		outcome.MarkFailed = true
	}
	return outcome
}
