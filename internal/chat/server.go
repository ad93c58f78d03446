package chat

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// writeWait は1フレームの書き込みタイムアウト。
	writeWait = 10 * time.Second

	// maxFrameSize は受信フレームの最大サイズ。超過した接続は切断される。
	maxFrameSize = 1 << 20

	defaultSendBuffer = 32
)

// ServerConfig はWebSocketサーバーの設定。
type ServerConfig struct {
	AllowedOrigins []string // Originヘッダの許可リスト
	SendBuffer     int      // 接続ごとの送信キュー長
}

// Server は/wsエンドポイントでWebSocket接続を受け付ける。
type Server struct {
	hub            *Hub
	relay          *Relay
	upgrader       websocket.Upgrader
	allowedOrigins []string
	sendBuffer     int
	logger         *slog.Logger
}

// NewServer はServerを生成する。
// Originヘッダなし、ホストと一致するOrigin、許可リストのOriginのみ接続を受け付ける。
func NewServer(hub *Hub, relay *Relay, cfg ServerConfig, logger *slog.Logger) *Server {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaultSendBuffer
	}
	s := &Server{
		hub:            hub,
		relay:          relay,
		allowedOrigins: cfg.AllowedOrigins,
		sendBuffer:     cfg.SendBuffer,
		logger:         logger,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.allowedOrigins {
		if strings.EqualFold(origin, allowed) {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// ServeHTTP はHTTP接続をWebSocketにアップグレードし、切断まで読み書きを行う。
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade内でエラーレスポンスは書き込み済み
		s.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := NewClient(uuid.NewString(), s.sendBuffer)
	if err := s.hub.Register(client); err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}

	s.logger.Info("WebSocket接続を開始しました",
		slog.String("conn_id", client.ID()),
		slog.String("remote_addr", r.RemoteAddr),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.writePump(conn, client)
	}()

	// 読み込みループはリクエストのコンテキストから切り離す。
	// 保存処理はHTTPハンドラの返却を待たずに完了させる必要がある。
	s.readPump(context.WithoutCancel(r.Context()), conn, client)

	s.hub.Unregister(client)
	<-done
	conn.Close()

	s.logger.Info("WebSocket接続を終了しました", slog.String("conn_id", client.ID()))
}

// readPump は接続が閉じるまでフレームを読み込み、Relayへ渡す。
// 1フレームの処理失敗で接続は閉じない。
func (s *Server) readPump(ctx context.Context, conn *websocket.Conn, client *Client) {
	conn.SetReadLimit(maxFrameSize)
	for {
		msgType, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				s.logger.Warn("websocket read error",
					slog.String("conn_id", client.ID()),
					slog.String("error", err.Error()),
				)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		_, _ = s.relay.HandleFrame(ctx, client.ID(), frame)
	}
}

// writePump は送信キューのフレームを順に書き込む。
// キューがcloseされたらクローズフレームを送って終了する。
func (s *Server) writePump(conn *websocket.Conn, client *Client) {
	for frame := range client.Send() {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			s.logger.Warn("websocket write error",
				slog.String("conn_id", client.ID()),
				slog.String("error", err.Error()),
			)
			// 書き込み不能な接続はHubから外し、読み込み側も終了させる
			s.hub.Unregister(client)
			conn.Close()
			drain(client.Send())
			return
		}
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	// Hub停止時は読み込み側のブロックを解除する
	conn.Close()
}

func drain(ch <-chan []byte) {
	for range ch {
	}
}
