// Package metrics Prometheus 指标
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 论文创建结果标签
const (
	OutcomeCreated    = "created"
	OutcomeInvalid    = "invalid"
	OutcomeRolledBack = "rolled_back"
)

// Metrics 应用指标集合
// 所有方法对 nil 接收者安全，未启用指标时可直接传 nil
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	paperCreateTotal    *prometheus.CounterVec
	uploadsTotal        *prometheus.CounterVec
	feedbackTotal       *prometheus.CounterVec
}

// New 创建独立 registry 并注册全部指标
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archive_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)
	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "archive_http_request_duration_seconds",
			Help:    "Time taken for HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	m.paperCreateTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archive_paper_create_total",
			Help: "Paper submissions by outcome",
		},
		[]string{"outcome"}, // created, invalid, rolled_back
	)
	m.uploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archive_pdf_uploads_total",
			Help: "PDF uploads by status",
		},
		[]string{"status"}, // stored, rejected, removed
	)
	m.feedbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archive_feedback_total",
			Help: "Reviews and comments by kind and status",
		},
		[]string{"kind", "status"},
	)

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.paperCreateTotal,
		m.uploadsTotal,
		m.feedbackTotal,
	)
	return m
}

// Registry 返回底层 registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest 记录一次 HTTP 请求
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// PaperCreate 记录论文提交结果
func (m *Metrics) PaperCreate(outcome string) {
	if m == nil {
		return
	}
	m.paperCreateTotal.WithLabelValues(outcome).Inc()
}

// Upload 记录上传文件状态变化
func (m *Metrics) Upload(status string) {
	if m == nil {
		return
	}
	m.uploadsTotal.WithLabelValues(status).Inc()
}

// Feedback 记录评审 / 评论提交
func (m *Metrics) Feedback(kind, status string) {
	if m == nil {
		return
	}
	m.feedbackTotal.WithLabelValues(kind, status).Inc()
}
