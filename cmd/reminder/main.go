// リマインダー配信ジョブのエントリポイント。
// 外部スケジューラーからのトリガーを受けて、通知対象タスクの選択と
// メール通知の配信、ユーザーディレクトリの同期を行う。
package main

import (
	"log"
	"os"

	"github.com/nao1215/remind/internal/reminder"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server, err := reminder.NewServer(port)
	if err != nil {
		log.Fatalf("リマインダーサーバーの初期化に失敗: %v", err)
	}

	log.Printf("リマインダーサービスを起動します: :%s", port)
	if err := server.Run(); err != nil {
		log.Fatalf("リマインダーサービスの起動に失敗: %v", err)
	}
}
