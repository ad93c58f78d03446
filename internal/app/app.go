package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/studyhub/internal/auth"
	"github.com/hitoshi/studyhub/internal/chat"
	"github.com/hitoshi/studyhub/internal/config"
	"github.com/hitoshi/studyhub/internal/database"
	"github.com/hitoshi/studyhub/internal/handler"
	"github.com/hitoshi/studyhub/internal/logger"
	"github.com/hitoshi/studyhub/internal/meeting"
	"github.com/hitoshi/studyhub/internal/membership"
	"github.com/hitoshi/studyhub/internal/metrics"
	"github.com/hitoshi/studyhub/internal/middleware"
	"github.com/hitoshi/studyhub/internal/note"
	"github.com/hitoshi/studyhub/internal/repository"
	"github.com/hitoshi/studyhub/internal/repository/memstore"
	"github.com/hitoshi/studyhub/internal/security"
	"github.com/hitoshi/studyhub/internal/studygroup"
	"github.com/hitoshi/studyhub/internal/validate"
	"github.com/hitoshi/studyhub/internal/worker/cleanup"
)

const shutdownTimeout = 30 * time.Second

// Init はアプリケーションの初期化を行う。
// .envと環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, *slog.Logger, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. .envと環境変数から設定を読み込む
	if err := config.LoadDotEnv(); err != nil {
		return nil, nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再初期化
	log := logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))
	return cfg, log, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd, known := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, log, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if !known {
		log.Warn("unknown command, starting serve instead",
			slog.String("command", args[0]),
			slog.String("usage", Usage()),
		)
	}

	log.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
		slog.Bool("memory_store", cfg.UsesMemoryStore()),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg, log)
	default:
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cfg, log)
	}
}

// repositories はストア実装ごとのリポジトリをまとめたもの。
type repositories struct {
	users    repository.UserRepository
	groups   repository.GroupRepository
	members  repository.MembershipRepository
	meetings repository.MeetingRepository
	notes    repository.NoteRepository
	messages repository.MessageRepository
	sessions repository.SessionRepository
}

func memoryRepositories() repositories {
	store := memstore.New()
	return repositories{
		users:    store.Users(),
		groups:   store.Groups(),
		members:  store.Memberships(),
		meetings: store.Meetings(),
		notes:    store.Notes(),
		messages: store.Messages(),
		sessions: store.Sessions(),
	}
}

func postgresRepositories(db *sql.DB) repositories {
	return repositories{
		users:    repository.NewPostgresUserRepo(db),
		groups:   repository.NewPostgresGroupRepo(db),
		members:  repository.NewPostgresMembershipRepo(db),
		meetings: repository.NewPostgresMeetingRepo(db),
		notes:    repository.NewPostgresNoteRepo(db),
		messages: repository.NewPostgresMessageRepo(db),
		sessions: repository.NewPostgresSessionRepo(db),
	}
}

// application はserveモードで組み立てた依存関係。
type application struct {
	handler http.Handler
	hub     *chat.Hub
	cleanup *cleanup.CleanupJob
	db      *sql.DB // メモリストア運用時はnil
}

// Close はDB接続を閉じる。
func (a *application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// newApplication はストア、サービス、チャット中継、ルーターを組み立てる。
// DATABASE_URLが空の場合はメモリ上のストアを使用する。
func newApplication(ctx context.Context, cfg *config.Config, log *slog.Logger) (*application, error) {
	app := &application{}

	// 1. ストアの初期化
	var repos repositories
	if cfg.UsesMemoryStore() {
		log.Warn("DATABASE_URLが未設定のため、メモリ上のストアで起動します。再起動でデータは失われます")
		repos = memoryRepositories()
	} else {
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := database.Ping(ctx, db, 5*time.Second); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Info("database connection established")
		app.db = db
		repos = postgresRepositories(db)
	}

	// 2. メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	// 3. ドメインサービスの初期化
	gate := membership.NewGate(repos.members)
	authService := auth.NewService(repos.users, repos.sessions, auth.ServiceConfig{
		SessionMaxAge: cfg.SessionMaxAge,
	})
	cookies := auth.NewCookieCodec([]byte(cfg.SessionSecret), cfg.SessionMaxAge)
	groupService := studygroup.NewService(repos.groups, repos.members, gate, collector)
	meetingService := meeting.NewService(repos.meetings, gate)
	noteService := note.NewService(repos.notes, gate)

	// 4. チャット中継
	app.hub = chat.NewHub(collector, log)
	var sanitizer security.TextSanitizer
	if cfg.ChatSanitizeHTML {
		sanitizer = security.NewTextSanitizer()
	}
	relay := chat.NewRelay(repos.messages, app.hub, sanitizer, collector, log)
	chatServer := chat.NewServer(app.hub, relay, chat.ServerConfig{
		AllowedOrigins: []string{cfg.CORSAllowedOrigin},
		SendBuffer:     cfg.ChatSendBuffer,
	}, log)

	// 5. ルーターの構築
	deps := &handler.RouterDeps{
		Logger:    log,
		Metrics:   collector,
		Gatherer:  reg,
		Validator: validate.New(),

		Session: middleware.SessionConfig{
			CookieName: auth.SessionCookieName,
			Decoder:    cookies,
			Finder:     repos.sessions,
		},
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		CSRFEnabled:       cfg.CSRFEnabled,
		CSRF: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},

		AuthService: authService,
		Cookies:     cookies,
		AuthConfig: handler.AuthHandlerConfig{
			CookieName:    auth.SessionCookieName,
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		GroupService:   groupService,
		MeetingService: meetingService,
		NoteService:    noteService,
		MessageHistory: chat.NewHistory(repos.messages, repos.users, gate),

		ChatServer: chatServer,
	}
	if app.db != nil {
		deps.HealthChecker = app.db
	}
	app.handler = handler.NewRouter(deps)

	// 6. セッションクリーンアップ
	app.cleanup = cleanup.NewCleanupJob(repos.sessions, log)
	app.cleanup.Interval = cfg.SessionCleanupInterval

	return app, nil
}

// runServe はAPIサーバーモードで起動する。
// ctxがキャンセルされるとチャット接続を閉じ、グレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	jobCtx, cancelJob := context.WithCancel(context.Background())
	defer cancelJob()
	go app.cleanup.Start(jobCtx)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			app.hub.Close()
			return fmt.Errorf("server listen error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down API server...")

	// ハイジャック済みのWebSocket接続はShutdownの対象外のため、先にHubを閉じる
	app.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config, log *slog.Logger) error {
	if cfg.UsesMemoryStore() {
		return errors.New("DATABASE_URL is required for migrate")
	}

	log.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info("database migrations completed successfully", slog.Uint64("schema_version", uint64(version)))
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
