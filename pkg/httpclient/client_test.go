package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// testRequest はテストサーバーが受け取ったリクエスト情報を保持する構造体。
type testRequest struct {
	// Method はHTTPメソッド。
	Method string
	// Path はリクエストパス。
	Path string
	// Body はリクエストボディ。
	Body []byte
	// Headers はリクエストヘッダー。
	Headers http.Header
}

// testPayload はテスト用のリクエスト/レスポンスペイロード。
type testPayload struct {
	// Name はテスト用の名前フィールド。
	Name string `json:"name"`
	// Value はテスト用の値フィールド。
	Value int `json:"value"`
}

// TestNew はNew関数でクライアントが正しく生成されることを検証する。
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("クライアントが正常に生成されること", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:8080")
		if client == nil {
			t.Fatal("New()がnilを返した")
		}
		if client.baseURL != "http://localhost:8080" {
			t.Errorf("baseURL = %q, want %q", client.baseURL, "http://localhost:8080")
		}
		if client.httpClient == nil {
			t.Fatal("httpClientがnil")
		}
	})

	t.Run("タイムアウトが30秒に設定されていること", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:8080")
		if client.httpClient.Timeout.Seconds() != 30 {
			t.Errorf("Timeout = %v, want 30s", client.httpClient.Timeout)
		}
	})
}

// TestPostJSON はPostJSON関数を検証する。
func TestPostJSON(t *testing.T) {
	t.Parallel()

	t.Run("正常にPOSTリクエストを送信してレスポンスを取得できること", func(t *testing.T) {
		t.Parallel()

		var received testRequest
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			received.Method = r.Method
			received.Path = r.URL.Path
			received.Body, _ = io.ReadAll(r.Body)
			received.Headers = r.Header

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(testPayload{Name: "response", Value: 200})
		}))
		defer ts.Close()

		client := New(ts.URL)
		body := testPayload{Name: "request", Value: 100}
		var result testPayload

		err := client.PostJSON(context.Background(), "/v1/messages", body, &result)
		if err != nil {
			t.Fatalf("PostJSON()でエラーが発生: %v", err)
		}

		if received.Method != http.MethodPost {
			t.Errorf("Method = %q, want %q", received.Method, http.MethodPost)
		}
		if received.Path != "/v1/messages" {
			t.Errorf("Path = %q, want %q", received.Path, "/v1/messages")
		}

		var sentBody testPayload
		if err := json.Unmarshal(received.Body, &sentBody); err != nil {
			t.Fatalf("リクエストボディのパースに失敗: %v", err)
		}
		if sentBody.Name != "request" {
			t.Errorf("sent Name = %q, want %q", sentBody.Name, "request")
		}

		if got := received.Headers.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want %q", got, "application/json")
		}

		if result.Name != "response" {
			t.Errorf("result.Name = %q, want %q", result.Name, "response")
		}
		if result.Value != 200 {
			t.Errorf("result.Value = %d, want %d", result.Value, 200)
		}
	})

	t.Run("2xx以外のステータスコードはエラーになること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "upstream error", http.StatusBadGateway)
		}))
		defer ts.Close()

		client := New(ts.URL)
		err := client.PostJSON(context.Background(), "/v1/messages", testPayload{}, nil)
		if err == nil {
			t.Fatal("エラーが返ることを期待したがnilだった")
		}
		if !strings.Contains(err.Error(), "status=502") {
			t.Errorf("エラーメッセージにステータスコードが含まれていない: %v", err)
		}
	})
}

// TestGetJSON はGetJSON関数を検証する。
func TestGetJSON(t *testing.T) {
	t.Parallel()

	t.Run("正常にGETリクエストを送信してレスポンスを取得できること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("Method = %q, want %q", r.Method, http.MethodGet)
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(testPayload{Name: "accounts", Value: 1})
		}))
		defer ts.Close()

		client := New(ts.URL)
		var result testPayload
		if err := client.GetJSON(context.Background(), "/v1/accounts", &result); err != nil {
			t.Fatalf("GetJSON()でエラーが発生: %v", err)
		}
		if result.Name != "accounts" {
			t.Errorf("result.Name = %q, want %q", result.Name, "accounts")
		}
	})
}

// TestTokenSource はBearer認証トークンの付与を検証する。
func TestTokenSource(t *testing.T) {
	t.Parallel()

	t.Run("TokenSourceが設定されている場合Authorizationヘッダーが付与されること", func(t *testing.T) {
		t.Parallel()

		var gotAuth string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{}`)
		}))
		defer ts.Close()

		client := New(ts.URL, WithStaticToken("test-api-key"))
		if err := client.GetJSON(context.Background(), "/v1/accounts", nil); err != nil {
			t.Fatalf("GetJSON()でエラーが発生: %v", err)
		}
		if gotAuth != "Bearer test-api-key" {
			t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer test-api-key")
		}
	})

	t.Run("未設定の場合Authorizationヘッダーが付与されないこと", func(t *testing.T) {
		t.Parallel()

		var gotAuth string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			io.WriteString(w, `{}`)
		}))
		defer ts.Close()

		client := New(ts.URL)
		if err := client.GetJSON(context.Background(), "/v1/accounts", nil); err != nil {
			t.Fatalf("GetJSON()でエラーが発生: %v", err)
		}
		if gotAuth != "" {
			t.Errorf("Authorization = %q, want 空", gotAuth)
		}
	})

	t.Run("トークン取得に失敗した場合リクエストを送信せずエラーになること", func(t *testing.T) {
		t.Parallel()

		requested := false
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			requested = true
			io.WriteString(w, `{}`)
		}))
		defer ts.Close()

		client := New(ts.URL, WithTokenSource(func() (string, error) {
			return "", errors.New("署名鍵が不正")
		}))
		err := client.GetJSON(context.Background(), "/v1/accounts", nil)
		if err == nil {
			t.Fatal("エラーが返ることを期待したがnilだった")
		}
		if requested {
			t.Error("トークン取得失敗時にリクエストが送信された")
		}
	})
}

// TestWithRunID はX-Run-IDヘッダーによる実行ID伝播を検証する。
func TestWithRunID(t *testing.T) {
	t.Parallel()

	t.Run("コンテキストに実行IDが設定されている場合ヘッダーに伝播されること", func(t *testing.T) {
		t.Parallel()

		var gotRunID string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotRunID = r.Header.Get("X-Run-ID")
			io.WriteString(w, `{}`)
		}))
		defer ts.Close()

		client := New(ts.URL)
		ctx := WithRunID(context.Background(), "run-123")
		if err := client.GetJSON(ctx, "/v1/accounts", nil); err != nil {
			t.Fatalf("GetJSON()でエラーが発生: %v", err)
		}
		if gotRunID != "run-123" {
			t.Errorf("X-Run-ID = %q, want %q", gotRunID, "run-123")
		}
	})

	t.Run("実行IDが未設定の場合ヘッダーが付与されないこと", func(t *testing.T) {
		t.Parallel()

		var gotRunID string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotRunID = r.Header.Get("X-Run-ID")
			io.WriteString(w, `{}`)
		}))
		defer ts.Close()

		client := New(ts.URL)
		if err := client.GetJSON(context.Background(), "/v1/accounts", nil); err != nil {
			t.Fatalf("GetJSON()でエラーが発生: %v", err)
		}
		if gotRunID != "" {
			t.Errorf("X-Run-ID = %q, want 空", gotRunID)
		}
	})
}
