package db

import (
	"context"
)

const createUser = `
INSERT INTO users (id, address, display_name)
VALUES (?, ?, ?)
`

// CreateUserParams はCreateUserのパラメータ。
type CreateUserParams struct {
	// ID はユーザーの一意識別子。
	ID string
	// Address は通知先メールアドレス。
	Address string
	// DisplayName はユーザーの表示名。
	DisplayName string
}

// CreateUser はディレクトリにユーザーレコードを新規作成する。
// 表示名などアドレス以外の属性を持つレコードの作成に使用する。
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) error {
	_, err := q.db.ExecContext(ctx, createUser, arg.ID, arg.Address, arg.DisplayName)
	return err
}

const upsertUserAddress = `
INSERT INTO users (id, address, synced_at)
VALUES (?, ?, datetime('now'))
ON CONFLICT(id) DO UPDATE SET
    address = excluded.address,
    synced_at = excluded.synced_at
`

// UpsertUserAddressParams はUpsertUserAddressのパラメータ。
type UpsertUserAddressParams struct {
	// ID はユーザーの一意識別子。
	ID string
	// Address は通知先メールアドレス。
	Address string
}

// UpsertUserAddress はユーザーのアドレスをマージセマンティクスで書き込む。
// 既存レコードがある場合はaddressと同期日時だけを上書きし、
// display_nameなど他のカラムには触れない。
func (q *Queries) UpsertUserAddress(ctx context.Context, arg UpsertUserAddressParams) error {
	_, err := q.db.ExecContext(ctx, upsertUserAddress, arg.ID, arg.Address)
	return err
}

const getUser = `
SELECT id, address, display_name, synced_at, created_at
FROM users WHERE id = ?
`

// GetUser はIDでユーザーレコードを1件取得する。
func (q *Queries) GetUser(ctx context.Context, id string) (User, error) {
	var u User
	err := q.db.QueryRowContext(ctx, getUser, id).Scan(
		&u.ID, &u.Address, &u.DisplayName, &u.SyncedAt, &u.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

const getUserAddress = `
SELECT address FROM users WHERE id = ?
`

// GetUserAddress はユーザーの通知先アドレスを取得する。
// レコードが存在しない場合は sql.ErrNoRows を返す。
// レコードはあるがアドレスが未登録の場合は空文字列を返す。
func (q *Queries) GetUserAddress(ctx context.Context, id string) (string, error) {
	var address string
	err := q.db.QueryRowContext(ctx, getUserAddress, id).Scan(&address)
	if err != nil {
		return "", err
	}
	return address, nil
}
