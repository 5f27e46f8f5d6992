// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordFocusTimeCreated()
	RecordHabitToggle(completed bool)
	RecordLogin(success bool)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus       *prometheus.CounterVec
	requestLatency   prometheus.Histogram
	focusTimeCreated prometheus.Counter
	habitToggles     *prometheus.CounterVec
	logins           *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "focustrack_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "focustrack_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		focusTimeCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "focustrack_focus_time_created_total",
			Help: "作成された集中時間レコードの合計数",
		}),
		habitToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "focustrack_habit_toggles_total",
			Help: "習慣完了トグルの合計数（結果別）",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "focustrack_logins_total",
			Help: "OAuthログイン試行の合計数（結果別）",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.focusTimeCreated,
		c.habitToggles,
		c.logins,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordFocusTimeCreated は集中時間レコードの作成を記録する。
func (c *Collector) RecordFocusTimeCreated() {
	c.focusTimeCreated.Inc()
}

// RecordHabitToggle は習慣完了トグルを記録する。
func (c *Collector) RecordHabitToggle(completed bool) {
	result := "completed"
	if !completed {
		result = "uncompleted"
	}
	c.habitToggles.WithLabelValues(result).Inc()
}

// RecordLogin はOAuthログイン試行の結果を記録する。
func (c *Collector) RecordLogin(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	c.logins.WithLabelValues(result).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
