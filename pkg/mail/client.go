package mail

import (
	"context"
	"fmt"

	"github.com/nao1215/remind/pkg/httpclient"
)

// Message はリレーに依頼する1通のメール。
type Message struct {
	// From は送信元アドレス。
	From string `json:"from"`
	// To は宛先アドレス。
	To string `json:"to"`
	// Subject は件名。
	Subject string `json:"subject"`
	// Body は本文（プレーンテキスト）。
	Body string `json:"body"`
}

// Client はメールリレーサービスのクライアント。
type Client struct {
	// http はリレーとの通信用HTTPクライアント。
	http *httpclient.Client
}

// New は新しいメールリレークライアントを生成する。
// apiKeyはリレーが発行する固定のAPIキー。
func New(baseURL, apiKey string) *Client {
	return &Client{
		http: httpclient.New(baseURL, httpclient.WithStaticToken(apiKey)),
	}
}

// Send はメールの送信をリレーに依頼する。
// リレーが2xx以外を返した場合、または通信に失敗した場合はエラーを返す。
func (c *Client) Send(ctx context.Context, msg Message) error {
	if err := c.http.PostJSON(ctx, "/v1/messages", msg, nil); err != nil {
		return fmt.Errorf("メール送信依頼に失敗: %w", err)
	}
	return nil
}
