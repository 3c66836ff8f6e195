package middleware

import (
	"net/http"
	"time"
)

// HTTPMetrics はリクエストメトリクスの記録に必要なインターフェース。
// metrics.MetricsCollectorの部分集合として定義する。
type HTTPMetrics interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestDuration(duration time.Duration)
}

// NewMetricsMiddleware はレスポンスのステータスコードと処理時間を
// メトリクスとして記録するミドルウェアを返す。
func NewMetricsMiddleware(m HTTPMetrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rec, r)

			m.RecordHTTPStatus(rec.statusCode)
			m.RecordRequestDuration(time.Since(start))
		})
	}
}
