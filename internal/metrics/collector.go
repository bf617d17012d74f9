// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/BaSui01/trailerflow/types"
)

// Asset kinds
const (
	AssetReference = "reference"
	AssetSceneClip = "scene"
	AssetManifest  = "manifest"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器
type Collector struct {
	providerRequestsTotal   *prometheus.CounterVec
	providerRequestDuration *prometheus.HistogramVec
	videoPollIterations     *prometheus.HistogramVec

	assetsWrittenTotal *prometheus.CounterVec
	assetBytesTotal    *prometheus.CounterVec

	scenesTotal *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器并注册到 reg
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.providerRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Total number of generation provider calls",
		},
		[]string{"provider", "operation", "status"},
	)

	c.providerRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Generation provider call duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"provider", "operation"},
	)

	c.videoPollIterations = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "video_poll_iterations",
			Help:      "Status checks issued per video generation job",
			Buckets:   []float64{1, 3, 6, 12, 24, 48, 90},
		},
		[]string{"provider"},
	)

	c.assetsWrittenTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assets_written_total",
			Help:      "Total number of assets written to the output directory",
		},
		[]string{"kind"},
	)

	c.assetBytesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "asset_bytes_total",
			Help:      "Total bytes of assets written to the output directory",
		},
		[]string{"kind"},
	)

	c.scenesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenes_total",
			Help:      "Scenes processed, by outcome",
		},
		[]string{"status"},
	)

	return c
}

// =============================================================================
// 📝 记录方法
// =============================================================================

// RecordProviderCall 记录一次图像/视频服务调用
func (c *Collector) RecordProviderCall(provider, operation string, err error, duration time.Duration) {
	if c == nil {
		return
	}
	c.providerRequestsTotal.WithLabelValues(provider, operation, StatusOf(err)).Inc()
	c.providerRequestDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
}

// RecordVideoPolls 记录一个视频任务的轮询次数
func (c *Collector) RecordVideoPolls(provider string, polls int) {
	if c == nil {
		return
	}
	c.videoPollIterations.WithLabelValues(provider).Observe(float64(polls))
}

// RecordAsset 记录一次素材写入
func (c *Collector) RecordAsset(kind string, size int) {
	if c == nil {
		return
	}
	c.assetsWrittenTotal.WithLabelValues(kind).Inc()
	c.assetBytesTotal.WithLabelValues(kind).Add(float64(size))
}

// RecordScene 记录一个场景的处理结果
func (c *Collector) RecordScene(err error) {
	if c == nil {
		return
	}
	status := StatusOf(err)
	c.scenesTotal.WithLabelValues(status).Inc()
	if err != nil {
		c.logger.Debug("scene failed", zap.String("status", status), zap.Error(err))
	}
}

// StatusOf maps an error to a low-cardinality status label.
func StatusOf(err error) string {
	if err == nil {
		return "ok"
	}
	if code := types.GetErrorCode(err); code != "" {
		return strings.ToLower(string(code))
	}
	return "error"
}
