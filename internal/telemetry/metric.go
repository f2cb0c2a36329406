package telemetry

import (
	"joingo/config"
	"joingo/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric struct；未啟用時所有欄位為 nil，呼叫端一律透過下方 helper 記錄
type Metric struct {
	HttpRequestsTotal      *prometheus.CounterVec
	HttpRequestDuration    *prometheus.HistogramVec
	HttpFailTotal          *prometheus.CounterVec
	ProfileUpsertTotal     *prometheus.CounterVec
	MeetingListFallback    prometheus.Counter
	MeetingsExpiredTotal   prometheus.Counter
	VoiceSessionTotal      *prometheus.CounterVec
	RealtimeEventTotal     *prometheus.CounterVec
	RealtimeReconnectTotal *prometheus.CounterVec
	RateLimitTotal         *prometheus.CounterVec
	config                 *config.Configuration
}

// NewMetric 建立所有指標
func NewMetric(config *config.Configuration) *Metric {
	if config == nil || !config.Telemetry.Metric.Enabled {
		return &Metric{}
	}
	buckets := prometheus.DefBuckets
	if len(config.Telemetry.Metric.Buckets) > 0 {
		buckets = config.Telemetry.Metric.Buckets
	}
	name := func(m core.MetricName) string {
		return config.App.Name + "_" + string(m)
	}
	return &Metric{
		config: config,
		HttpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: name(core.MetricHttpRequestsTotal),
				Help: "Total received API requests",
			},
			labelNames(core.MetricLabelEndpoint, core.MetricLabelStatus),
		),
		HttpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    name(core.MetricHttpRequestDuration),
				Help:    "API request duration (seconds)",
				Buckets: buckets,
			},
			labelNames(core.MetricLabelEndpoint),
		),
		HttpFailTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: name(core.MetricHttpFailTotal),
				Help: "Failed API requests by error code",
			},
			labelNames(core.MetricLabelReason),
		),
		ProfileUpsertTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: name(core.MetricProfileUpsertTotal),
				Help: "Profile upserts by origin and result",
			},
			labelNames(core.MetricLabelOrigin, core.MetricLabelResult),
		),
		MeetingListFallback: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: name(core.MetricMeetingListFallback),
				Help: "Meeting list calls served by the in-process fallback",
			},
		),
		MeetingsExpiredTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: name(core.MetricMeetingsExpiredTotal),
				Help: "Meetings closed by the expiry job",
			},
		),
		VoiceSessionTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: name(core.MetricVoiceSessionTotal),
				Help: "Voice session issuance by result",
			},
			labelNames(core.MetricLabelResult),
		),
		RealtimeEventTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: name(core.MetricRealtimeEventTotal),
				Help: "Realtime bridge events by result",
			},
			labelNames(core.MetricLabelBridge, core.MetricLabelEvent, core.MetricLabelResult),
		),
		RealtimeReconnectTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: name(core.MetricRealtimeReconnectTotal),
				Help: "Realtime bridge reconnect attempts",
			},
			labelNames(core.MetricLabelBridge),
		),
		RateLimitTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: name(core.MetricRateLimitTotal),
				Help: "Requests rejected by the rate limiter",
			},
			labelNames(core.MetricLabelScope),
		),
	}
}

func (m *Metric) IncProfileUpsert(origin, result string) {
	if m == nil || m.ProfileUpsertTotal == nil {
		return
	}
	m.ProfileUpsertTotal.WithLabelValues(origin, result).Inc()
}

func (m *Metric) IncMeetingListFallback() {
	if m == nil || m.MeetingListFallback == nil {
		return
	}
	m.MeetingListFallback.Inc()
}

func (m *Metric) AddMeetingsExpired(n int) {
	if m == nil || m.MeetingsExpiredTotal == nil {
		return
	}
	m.MeetingsExpiredTotal.Add(float64(n))
}

func (m *Metric) IncVoiceSession(result string) {
	if m == nil || m.VoiceSessionTotal == nil {
		return
	}
	m.VoiceSessionTotal.WithLabelValues(result).Inc()
}

func (m *Metric) IncRealtimeEvent(bridge, event, result string) {
	if m == nil || m.RealtimeEventTotal == nil {
		return
	}
	m.RealtimeEventTotal.WithLabelValues(bridge, event, result).Inc()
}

func (m *Metric) IncRealtimeReconnect(bridge string) {
	if m == nil || m.RealtimeReconnectTotal == nil {
		return
	}
	m.RealtimeReconnectTotal.WithLabelValues(bridge).Inc()
}

func (m *Metric) IncRateLimited(scope string) {
	if m == nil || m.RateLimitTotal == nil {
		return
	}
	m.RateLimitTotal.WithLabelValues(scope).Inc()
}

func (m *Metric) IncHttpFail(reason string) {
	if m == nil || m.HttpFailTotal == nil {
		return
	}
	m.HttpFailTotal.WithLabelValues(reason).Inc()
}

// labelNames helper: LabelName slice 轉成 []string
func labelNames(labels ...core.MetricLabelName) []string {
	strs := make([]string, len(labels))
	for i, l := range labels {
		strs[i] = string(l)
	}
	return strs
}
