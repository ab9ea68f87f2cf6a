package reminder

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	reminderdb "github.com/nao1215/remind/internal/reminder/db"
	"github.com/nao1215/remind/pkg/httpclient"
	"github.com/nao1215/remind/pkg/identity"
	"github.com/nao1215/remind/pkg/mail"
	"github.com/nao1215/remind/pkg/middleware"
)

// Server はリマインダー配信ジョブのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// queries はクエリ実行オブジェクト。
	queries *reminderdb.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
	// sync はユーザーディレクトリの同期処理。プロバイダー未設定の場合はnil。
	sync *Synchronizer
	// coordinator はタスクバッチへの配信処理。
	coordinator *Coordinator
	// cronSecret はトリガー認証用の共有シークレット。
	cronSecret string
	// window は通知対象の選択ウィンドウ。ReminderAtが (now-window, now] のタスクが対象。
	window time.Duration
	// batchLimit は1回の実行で処理するタスク数の上限。
	batchLimit int64
}

// NewServer は新しいリマインダージョブサーバーを生成する。
// SQLiteデータベースの初期化と、環境変数からの外部サービス設定を行う。
func NewServer(port string) (*Server, error) {
	dbPath := getEnvOr("REMINDER_DB_PATH", "/data/reminder.db")
	sqlDB, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := initSchema(sqlDB); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	window, err := time.ParseDuration(getEnvOr("REMINDER_WINDOW", "24h"))
	if err != nil {
		return nil, fmt.Errorf("REMINDER_WINDOWの解析に失敗: %w", err)
	}

	batchLimit, err := strconv.ParseInt(getEnvOr("REMINDER_BATCH_LIMIT", "500"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("REMINDER_BATCH_LIMITの解析に失敗: %w", err)
	}

	concurrency, err := strconv.Atoi(getEnvOr("REMINDER_CONCURRENCY", "16"))
	if err != nil {
		return nil, fmt.Errorf("REMINDER_CONCURRENCYの解析に失敗: %w", err)
	}

	queries := reminderdb.New(sqlDB)

	mailClient := mail.New(
		getEnvOr("MAIL_RELAY_URL", "http://localhost:8087"),
		os.Getenv("MAIL_API_KEY"),
	)
	from := getEnvOr("MAIL_FROM", "no-reply@remind.local")

	// IDプロバイダーが未設定の場合、ディレクトリ同期はスキップされる
	var sync *Synchronizer
	if identityURL := os.Getenv("IDENTITY_URL"); identityURL != "" {
		provider := identity.New(identityURL, os.Getenv("IDENTITY_SECRET"))
		sync = NewSynchronizer(queries, provider)
	}

	dispatcher := NewDispatcher(queries, mailClient, from)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())

	s := &Server{
		router:      router,
		port:        port,
		queries:     queries,
		db:          sqlDB,
		sync:        sync,
		coordinator: NewCoordinator(dispatcher, queries, concurrency),
		cronSecret:  getEnvOr("CRON_SECRET", "dev-cron-secret"),
		window:      window,
		batchLimit:  batchLimit,
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	api := s.router.Group("/api/v1")
	api.Use(middleware.BearerAuth(s.cronSecret))
	{
		jobs := api.Group("/jobs")
		{
			// スケジューラーからのジョブトリガー
			jobs.POST("/reminders", s.handleRunJob())
			// 直近の配信結果の参照
			jobs.GET("/reminders/log", s.handleListSendLog())
		}
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "reminder"})
	})
}

// runResponse はジョブ実行のJSONレスポンス構造。
type runResponse struct {
	// Status は実行結果のステータス。
	Status string `json:"status"`
	// RunID はジョブ実行の識別子（UUID）。
	RunID string `json:"run_id"`
	// Considered は選択されたタスクの総数。
	Considered int `json:"considered"`
	// Sent は送信に成功したタスク数。
	Sent int `json:"sent"`
	// Skipped はアドレス未登録でスキップしたタスク数。
	Skipped int `json:"skipped"`
	// Failed は送信に失敗したタスク数。
	Failed int `json:"failed"`
	// MarkFailed は送信後の通知済みフラグ更新に失敗したタスク数。
	MarkFailed int `json:"mark_failed"`
	// Sync はディレクトリ同期の集計結果。同期が無効な場合はnull。
	Sync *SyncReport `json:"sync,omitempty"`
	// SyncError は同期が失敗した場合のエラーメッセージ。
	SyncError string `json:"sync_error,omitempty"`
	// Log はタスクごとの配信結果の人間可読な記録。
	Log []string `json:"log,omitempty"`
}

// handleRunJob はリマインダー配信ジョブを1回実行するハンドラ。
// ディレクトリ同期 → 通知対象タスクの選択 → 並行配信の順に実行し、集計結果を返す。
func (s *Server) handleRunJob() gin.HandlerFunc {
	return func(c *gin.Context) {
		runID := uuid.New().String()
		ctx := httpclient.WithRunID(c.Request.Context(), runID)

		var syncReport *SyncReport
		var syncError string
		if s.sync != nil {
			report, err := s.sync.Sync(ctx)
			if err != nil {
				// 同期失敗はジョブ全体を止めず、既存のディレクトリで配信を続行する
				log.Printf("[Job] ディレクトリ同期に失敗: run=%s, error=%v", runID, err)
				syncError = err.Error()
			}
			syncReport = report
		}

		now := time.Now().UTC()
		tasks, err := s.queries.SelectDueTasks(ctx, reminderdb.SelectDueTasksParams{
			Now:         now,
			WindowStart: now.Add(-s.window),
			Limit:       s.batchLimit,
		})
		if err != nil {
			log.Printf("[Job] 通知対象タスクの取得に失敗: run=%s, error=%v", runID, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": fmt.Sprintf("通知対象タスクの取得に失敗: %v", err),
			})
			return
		}

		summary := s.coordinator.Run(ctx, runID, tasks)

		log.Printf("[Job] 実行完了: run=%s, considered=%d, sent=%d, skipped=%d, failed=%d",
			runID, summary.Considered, summary.Sent, summary.Skipped, summary.Failed)

		c.JSON(http.StatusOK, runResponse{
			Status:     "ok",
			RunID:      runID,
			Considered: summary.Considered,
			Sent:       summary.Sent,
			Skipped:    summary.Skipped,
			Failed:     summary.Failed,
			MarkFailed: summary.MarkFailed,
			Sync:       syncReport,
			SyncError:  syncError,
			Log:        summary.Lines(),
		})
	}
}

// sendLogResponse は配信結果のJSONレスポンス構造。
type sendLogResponse struct {
	// ID はログレコードの一意識別子。
	ID string `json:"id"`
	// RunID はジョブ実行の識別子。
	RunID string `json:"run_id"`
	// TaskID は対象タスクのID。
	TaskID string `json:"task_id"`
	// OwnerID はタスク所有者のユーザーID。
	OwnerID string `json:"owner_id"`
	// Outcome は配信結果。
	Outcome string `json:"outcome"`
	// Detail は補足情報。
	Detail string `json:"detail"`
	// CreatedAt はレコードの作成日時（RFC3339形式）。
	CreatedAt string `json:"created_at"`
}

// handleListSendLog は直近の配信結果を返すハンドラ。
func (s *Server) handleListSendLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := int64(50)
		if v := c.Query("limit"); v != "" {
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil || parsed <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limitには正の整数を指定してください"})
				return
			}
			limit = parsed
		}

		logs, err := s.queries.ListRecentSendLogs(c.Request.Context(), limit)
		if err != nil {
			log.Printf("[Job] 配信結果の取得に失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "配信結果の取得に失敗しました"})
			return
		}

		responses := make([]sendLogResponse, 0, len(logs))
		for _, l := range logs {
			responses = append(responses, sendLogResponse{
				ID:        l.ID,
				RunID:     l.RunID,
				TaskID:    l.TaskID,
				OwnerID:   l.OwnerID,
				Outcome:   l.Outcome,
				Detail:    l.Detail,
				CreatedAt: l.CreatedAt.Format(time.RFC3339),
			})
		}
		c.JSON(http.StatusOK, responses)
	}
}

// getEnvOr は環境変数を取得し、未設定の場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
