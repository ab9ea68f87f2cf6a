package reminder

import (
	"context"
	"fmt"

	reminderdb "github.com/nao1215/remind/internal/reminder/db"
	"github.com/nao1215/remind/pkg/identity"
)

// userLister はIDプロバイダーのアカウント一覧取得。pkg/identity.Client が実装する。
type userLister interface {
	ListUsers(ctx context.Context, pageToken string) (*identity.Page, error)
}

// Synchronizer はIDプロバイダーのアカウント情報をユーザーディレクトリへ同期する。
// ディレクトリはプロバイダーの派生キャッシュであり、ユーザーIDごとに
// 最後の書き込みが勝つ（last-write-wins）。
type Synchronizer struct {
	// queries はディレクトリ書き込みに使用するクエリ実行オブジェクト。
	queries *reminderdb.Queries
	// provider はIDプロバイダーのクライアント。
	provider userLister
}

// NewSynchronizer は新しいSynchronizerを生成する。
func NewSynchronizer(queries *reminderdb.Queries, provider userLister) *Synchronizer {
	return &Synchronizer{
		queries:  queries,
		provider: provider,
	}
}

// SyncReport は1回の同期処理の集計結果。
type SyncReport struct {
	// Pages は処理したページ数。
	Pages int `json:"pages"`
	// Upserted はディレクトリへ書き込んだレコード数。
	Upserted int `json:"upserted"`
	// Skipped はアドレスを導出できずスキップしたアカウント数。
	Skipped int `json:"skipped"`
}

// Sync はプロバイダーの全アカウントをページングしながらディレクトリへ同期する。
//
// ページは継続トークンの依存関係があるため順次取得する。プロバイダーまたは
// ストアのエラーで同期全体を中断してエラーを返すが、それまでに適用した
// 書き込みはロールバックしない。書き込みは冪等なので次回実行の再同期で
// 安全に追いつける。
func (s *Synchronizer) Sync(ctx context.Context) (*SyncReport, error) {
	report := &SyncReport{}

	pageToken := ""
	for {
		page, err := s.provider.ListUsers(ctx, pageToken)
		if err != nil {
			return report, fmt.Errorf("IDプロバイダーのページ取得に失敗: %w", err)
		}

		for _, user := range page.Users {
			address := deriveAddress(user)
			if address == "" {
				// アドレスを導出できないアカウントはエラーにせず読み飛ばす
				report.Skipped++
				continue
			}

			err := s.queries.UpsertUserAddress(ctx, reminderdb.UpsertUserAddressParams{
				ID:      user.ID,
				Address: address,
			})
			if err != nil {
				return report, fmt.Errorf("ディレクトリへの書き込みに失敗: user=%s: %w", user.ID, err)
			}
			report.Upserted++
		}
		report.Pages++

		if page.NextPageToken == "" {
			return report, nil
		}
		pageToken = page.NextPageToken
	}
}

// deriveAddress はアカウントから通知先アドレスを導出する。
// プライマリのアドレスを優先し、未登録の場合は外部プロバイダー由来の
// アドレス一覧の先頭を使用する。どちらもない場合は空文字列を返す。
func deriveAddress(user identity.User) string {
	if user.Email != "" {
		return user.Email
	}
	if len(user.ProviderEmails) > 0 {
		return user.ProviderEmails[0]
	}
	return ""
}
