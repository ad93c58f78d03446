// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// チャットで破棄されたフレーム・配信の理由ラベル。
const (
	DropReasonMalformed   = "malformed"
	DropReasonInvalid     = "invalid"
	DropReasonEmpty       = "empty"
	DropReasonPersist     = "persist_failed"
	DropReasonQueueFull   = "queue_full"
	DropReasonUnknownType = "unknown_type"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェア、チャット中継、サービス層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordHTTPLatency(duration time.Duration)
	ChatConnectionOpened()
	ChatConnectionClosed()
	RecordChatMessage()
	RecordChatDropped(reason string)
	RecordGroupCreated()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus    *prometheus.CounterVec
	httpLatency   prometheus.Histogram
	chatConns     prometheus.Gauge
	chatMessages  prometheus.Counter
	chatDropped   *prometheus.CounterVec
	groupsCreated prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studyhub_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "studyhub_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		chatConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "studyhub_chat_connections",
			Help: "接続中のチャットクライアント数",
		}),
		chatMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studyhub_chat_messages_total",
			Help: "保存・配信されたチャットメッセージの合計数",
		}),
		chatDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studyhub_chat_dropped_total",
			Help: "理由別の破棄されたチャットフレーム・配信の合計数",
		}, []string{"reason"}),
		groupsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studyhub_groups_created_total",
			Help: "作成された勉強会グループの合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.httpLatency,
		c.chatConns,
		c.chatMessages,
		c.chatDropped,
		c.groupsCreated,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordHTTPLatency はHTTPリクエストの処理時間を記録する。
func (c *Collector) RecordHTTPLatency(duration time.Duration) {
	c.httpLatency.Observe(duration.Seconds())
}

// ChatConnectionOpened はチャット接続数を1増やす。
func (c *Collector) ChatConnectionOpened() {
	c.chatConns.Inc()
}

// ChatConnectionClosed はチャット接続数を1減らす。
func (c *Collector) ChatConnectionClosed() {
	c.chatConns.Dec()
}

// RecordChatMessage はチャットメッセージの保存を記録する。
func (c *Collector) RecordChatMessage() {
	c.chatMessages.Inc()
}

// RecordChatDropped は破棄されたフレームまたは配信を記録する。
func (c *Collector) RecordChatDropped(reason string) {
	c.chatDropped.WithLabelValues(reason).Inc()
}

// RecordGroupCreated はグループ作成を記録する。
func (c *Collector) RecordGroupCreated() {
	c.groupsCreated.Inc()
}

// Nop は何も記録しないMetricsCollector。
type Nop struct{}

func (Nop) RecordHTTPStatus(int) {}
func (Nop) RecordHTTPLatency(time.Duration) {}
func (Nop) ChatConnectionOpened() {}
func (Nop) ChatConnectionClosed() {}
func (Nop) RecordChatMessage() {}
func (Nop) RecordChatDropped(string) {}
func (Nop) RecordGroupCreated() {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)
