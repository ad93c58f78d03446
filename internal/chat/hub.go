package chat

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/hitoshi/studyhub/internal/metrics"
)

// ErrHubClosed は停止済みのHubに登録しようとした場合のエラー。
var ErrHubClosed = errors.New("chat hub is closed")

// Client はHubに登録された1接続分の送信キュー。
type Client struct {
	id   string
	send chan []byte
}

// NewClient は送信キュー長bufferのClientを生成する。
func NewClient(id string, buffer int) *Client {
	if buffer < 1 {
		buffer = 1
	}
	return &Client{id: id, send: make(chan []byte, buffer)}
}

// ID は接続IDを返す。
func (c *Client) ID() string { return c.id }

// Send は配信フレームを受け取るチャネルを返す。Unregister時にcloseされる。
func (c *Client) Send() <-chan []byte { return c.send }

// Hub は接続中のクライアントを管理し、全クライアントへ配信する。
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool

	metrics metrics.MetricsCollector
	logger  *slog.Logger
}

// NewHub はHubを生成する。
func NewHub(collector metrics.MetricsCollector, logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		metrics: collector,
		logger:  logger,
	}
}

// Register はクライアントを配信対象に加える。
func (h *Hub) Register(c *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	h.clients[c] = struct{}{}
	h.metrics.ChatConnectionOpened()
	return nil
}

// Unregister はクライアントを配信対象から外し、送信キューを閉じる。
// 複数回呼び出しても安全。
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.metrics.ChatConnectionClosed()
}

// Broadcast はframeを全クライアントの送信キューに積み、積めた件数を返す。
// キューが満杯のクライアントはスキップし、配信全体は失敗させない。
func (h *Hub) Broadcast(frame []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.clients {
		select {
		case c.send <- frame:
			delivered++
		default:
			h.metrics.RecordChatDropped(metrics.DropReasonQueueFull)
			h.logger.Warn("chat send queue full, frame skipped",
				slog.String("conn_id", c.id),
			)
		}
	}
	return delivered
}

// Count は接続中のクライアント数を返す。
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close は全クライアントの送信キューを閉じ、以後の登録を拒否する。
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}
