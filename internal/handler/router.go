package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/studyhub/internal/metrics"
	"github.com/hitoshi/studyhub/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// HealthChecker はヘルスチェック時に依存先の疎通を確認する。
// *sql.DB がこれを満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger    *slog.Logger
	Metrics   metrics.MetricsCollector
	Gatherer  prometheus.Gatherer
	Validator RequestValidator

	// nilの場合は疎通確認を行わない（メモリストア運用時）
	HealthChecker HealthChecker

	// ミドルウェア依存
	Session           middleware.SessionConfig
	CORSAllowedOrigin string
	CSRFEnabled       bool
	CSRF              middleware.CSRFConfig

	// 認証
	AuthService AuthServiceInterface
	Cookies     SessionCookieEncoder
	AuthConfig  AuthHandlerConfig

	// ドメイン
	GroupService   GroupServiceInterface
	MeetingService MeetingServiceInterface
	NoteService    NoteServiceInterface
	MessageHistory MessageHistoryInterface

	// /ws で接続を受け付けるハンドラー
	ChatServer http.Handler
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Metrics → Logging → SecurityHeaders → CORS → (CSRF) → Session
//
// /health, /metrics, /ws, /api/register, /api/login はセッション不要。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))
	r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.Cookies, deps.Validator, deps.AuthConfig)
	groupHandler := NewGroupHandler(deps.GroupService, deps.Validator)
	meetingHandler := NewMeetingHandler(deps.MeetingService, deps.Validator)
	noteHandler := NewNoteHandler(deps.NoteService, deps.Validator)
	messageHandler := NewMessageHandler(deps.MessageHistory)

	r.Get("/health", healthHandler(deps.HealthChecker))
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}
	if deps.ChatServer != nil {
		r.Method(http.MethodGet, "/ws", deps.ChatServer)
	}

	if deps.CSRFEnabled {
		// トークン取得はCSRF検証の対象外
		r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRF))
	}

	r.Route("/api", func(r chi.Router) {
		if deps.CSRFEnabled {
			r.Use(middleware.NewCSRFMiddleware(deps.CSRF))
		}

		// --- 認証不要のルート ---
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		// --- 認証が必要なルート ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewSessionMiddleware(deps.Session))

			r.Post("/logout", authHandler.Logout)
			r.Get("/user", authHandler.Me)

			r.Route("/groups", func(r chi.Router) {
				r.Get("/", groupHandler.ListGroups)
				r.Post("/", groupHandler.CreateGroup)
				r.Get("/my", groupHandler.ListMyGroups)

				r.Route("/{id}", func(r chi.Router) {
					r.Post("/join", groupHandler.JoinGroup)
					r.Get("/members", groupHandler.ListMembers)
					r.Get("/messages", messageHandler.ListGroupMessages)
					r.Get("/meetings", meetingHandler.ListGroupMeetings)
					r.Get("/notes", noteHandler.ListGroupNotes)
				})
			})

			r.Get("/meetings", meetingHandler.ListMeetings)
			r.Post("/meetings", meetingHandler.CreateMeeting)
			r.Get("/notes", noteHandler.ListNotes)
			r.Post("/notes", noteHandler.CreateNote)
		})
	})

	return r
}

// healthHandler は稼働確認用のハンドラーを返す。
func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()
			if err := checker.PingContext(ctx); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
