package identity

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nao1215/remind/pkg/httpclient"
)

// MaxPageSize はプロバイダーが1回の呼び出しで返すアカウント数の上限。
const MaxPageSize = 1000

// tokenIssuer はサービストークンのiss（発行者）クレーム値。
const tokenIssuer = "remind-job"

// User はIDプロバイダーが保持するユーザーアカウント。
type User struct {
	// ID はユーザーの一意識別子。
	ID string `json:"id"`
	// Email はプライマリのメールアドレス。未登録の場合は空。
	Email string `json:"email"`
	// ProviderEmails は外部認証プロバイダー由来のメールアドレス一覧。
	// プライマリが未登録の場合のフォールバックとして使用する。
	ProviderEmails []string `json:"provider_emails"`
}

// Page はアカウント一覧APIの1ページ分のレスポンス。
type Page struct {
	// Users はこのページに含まれるユーザーアカウント。
	Users []User `json:"users"`
	// NextPageToken は次ページ取得用の継続トークン。最終ページでは空。
	NextPageToken string `json:"next_page_token"`
}

// Client はIDプロバイダーのアカウント一覧APIを呼び出すクライアント。
type Client struct {
	// http はプロバイダーとの通信用HTTPクライアント。
	http *httpclient.Client
}

// New は新しいIDプロバイダークライアントを生成する。
// secretはプロバイダーと共有するサービストークンの署名鍵。
func New(baseURL, secret string) *Client {
	return &Client{
		http: httpclient.New(baseURL, httpclient.WithTokenSource(serviceTokenSource(secret))),
	}
}

// serviceTokenSource はリクエスト毎に短命のHS256サービストークンを生成するTokenSourceを返す。
func serviceTokenSource(secret string) httpclient.TokenSource {
	return func() (string, error) {
		now := time.Now()
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(5 * time.Minute)),
		})
		signed, err := token.SignedString([]byte(secret))
		if err != nil {
			return "", fmt.Errorf("サービストークンの署名に失敗: %w", err)
		}
		return signed, nil
	}
}

// ListUsers はアカウント一覧を1ページ分取得する。
// pageTokenが空の場合は先頭ページを返す。次ページが存在する場合、
// 返されるPageのNextPageTokenに継続トークンが設定される。
func (c *Client) ListUsers(ctx context.Context, pageToken string) (*Page, error) {
	path := fmt.Sprintf("/v1/accounts?page_size=%d", MaxPageSize)
	if pageToken != "" {
		path += "&page_token=" + url.QueryEscape(pageToken)
	}

	var page Page
	if err := c.http.GetJSON(ctx, path, &page); err != nil {
		return nil, fmt.Errorf("アカウント一覧の取得に失敗: %w", err)
	}
	return &page, nil
}
