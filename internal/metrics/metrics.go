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
	RecordRequestDuration(duration time.Duration)
	RecordStoryCreated()
	RecordImageUpload()
	RecordImageCleanupFailure()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus          *prometheus.CounterVec
	requestDuration     prometheus.Histogram
	storiesCreated      prometheus.Counter
	imageUploads        prometheus.Counter
	imageCleanupFailure prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "travelbook_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "travelbook_request_duration_seconds",
			Help:    "HTTPリクエスト処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		storiesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "travelbook_stories_created_total",
			Help: "作成された旅行記録の合計数",
		}),
		imageUploads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "travelbook_image_uploads_total",
			Help: "アップロードされた画像の合計数",
		}),
		imageCleanupFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "travelbook_image_cleanup_fail_total",
			Help: "ベストエフォート画像削除の失敗数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestDuration,
		c.storiesCreated,
		c.imageUploads,
		c.imageCleanupFailure,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration はリクエスト処理時間を記録する。
func (c *Collector) RecordRequestDuration(duration time.Duration) {
	c.requestDuration.Observe(duration.Seconds())
}

// RecordStoryCreated は旅行記録の作成を記録する。
func (c *Collector) RecordStoryCreated() {
	c.storiesCreated.Inc()
}

// RecordImageUpload は画像アップロードの成功を記録する。
func (c *Collector) RecordImageUpload() {
	c.imageUploads.Inc()
}

// RecordImageCleanupFailure は画像の削除失敗を記録する。
// 削除は記録の削除を失敗させないため、失敗はここで観測する。
func (c *Collector) RecordImageCleanupFailure() {
	c.imageCleanupFailure.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
