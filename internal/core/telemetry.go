package core

const ContextTraceKey = "telemetry_trace_ctx"

// ==== 型別安全 span name ====
// 專案全域建議都寫這裡，方便集中管理
type TraceSpanName string

const (
	SpanHttpRequest         TraceSpanName = "http_request"
	SpanLoggerMiddleware    TraceSpanName = "logger_middleware"
	SpanRecoveryMiddleware  TraceSpanName = "recovery_middleware"
	SpanCorsMiddleware      TraceSpanName = "cors_middleware"
	SpanResponseMiddleware  TraceSpanName = "response_middleware"
	SpanAuthMiddleware      TraceSpanName = "auth_middleware"
	SpanRateLimitMiddleware TraceSpanName = "ratelimit_middleware"
	SpanChatBridge          TraceSpanName = "chat_bridge"
	SpanVoiceBridge         TraceSpanName = "voice_bridge"
	SpanMeetingExpiryJob    TraceSpanName = "meeting_expiry_job"
)

// 指標名稱常數
type MetricName string

const (
	MetricHttpRequestsTotal      MetricName = "requests_total"
	MetricHttpRequestDuration    MetricName = "request_duration_seconds"
	MetricHttpFailTotal          MetricName = "request_fail_total"
	MetricProfileUpsertTotal     MetricName = "profile_upsert_total"
	MetricMeetingListFallback    MetricName = "meeting_list_fallback_total"
	MetricVoiceSessionTotal      MetricName = "voice_session_total"
	MetricRealtimeEventTotal     MetricName = "realtime_event_total"
	MetricRateLimitTotal         MetricName = "rate_limited_total"
	MetricMeetingsExpiredTotal   MetricName = "meetings_expired_total"
	MetricRealtimeReconnectTotal MetricName = "realtime_reconnect_total"
)

// label name 常數
type MetricLabelName string

const (
	MetricLabelEndpoint MetricLabelName = "endpoint"
	MetricLabelStatus   MetricLabelName = "status"
	MetricLabelReason   MetricLabelName = "reason"
	MetricLabelOrigin   MetricLabelName = "origin"
	MetricLabelResult   MetricLabelName = "result"
	MetricLabelEvent    MetricLabelName = "event"
	MetricLabelBridge   MetricLabelName = "bridge"
	MetricLabelScope    MetricLabelName = "scope"
)

type LoggerRequestMeta struct {
	Method     string            `trace:"request.method"`
	Path       string            `trace:"request.path"`
	FullPath   string            `trace:"request.full_path"`
	Query      string            `trace:"request.query"`
	Body       string            `trace:"request.body"`
	Scheme     string            `trace:"http.scheme"`
	Host       string            `trace:"http.host"`
	UserAgent  string            `trace:"http.user_agent"`
	ContentLen int64             `trace:"http.request_content_length"`
	Proto      string            `trace:"http.flavor"`
	ClientIP   string            `trace:"net.peer.ip"`
	Headers    map[string]string `trace:"http.request.header"`
	Params     map[string]string `trace:"http.request.param"`
}

type TraceAuthMiddlewareMeta struct {
	ClientIP    string `trace:"net.peer.ip,omitempty"`
	UserID      string `trace:"auth.user_id,omitempty"`
	Status      string `trace:"auth.status,omitempty"`
	Blacklisted bool   `trace:"auth.blacklisted"`
}

// 供 Redis 限流 Consume / Reset 使用
type TraceRateLimitMeta struct {
	Scope     string `trace:"rl.scope"`
	Subject   string `trace:"rl.subject"`
	Limit     int    `trace:"rl.limit_count"`
	WindowSec int64  `trace:"rl.window_sec"`
	Remaining int    `trace:"rl.remaining,omitempty"`
	TTL       int64  `trace:"rl.ttl_sec,omitempty"`
	Op        string `trace:"rl.op"` // "consume" / "reset" / "get"
}

type TraceRateLimitMiddlewareMeta struct {
	Scope       string `trace:"ratelimit.scope"`
	Subject     string `trace:"ratelimit.subject"`
	ConfigLimit int    `trace:"ratelimit.config.limit"`
	Remaining   int    `trace:"ratelimit.remaining"`
	TTLSeconds  int64  `trace:"ratelimit.ttl_sec"`
	Blocked     bool   `trace:"ratelimit.blocked"`
	FailedOpen  bool   `trace:"ratelimit.failed_open"`
}

type TraceProfileUpsertMeta struct {
	UID               string `trace:"profile.uid"`
	Origin            string `trace:"profile.origin"`
	IncomingWins      bool   `trace:"profile.policy.incoming_wins"`
	PreserveCompleted bool   `trace:"profile.policy.preserve_completed"`
	Created           bool   `trace:"profile.created"`
	Completed         bool   `trace:"profile.completed"`
}

type TraceMeetingListMeta struct {
	HostUID     string `trace:"meeting.host_uid"`
	Strategy    string `trace:"meeting.list.strategy"`
	ResultCount int    `trace:"result.count"`
	PrimaryErr  string `trace:"meeting.list.primary_error,omitempty"`
}

type TraceMeetingMeta struct {
	MeetingID string `trace:"meeting.id"`
	HostUID   string `trace:"meeting.host_uid,omitempty"`
	CallerUID string `trace:"meeting.caller_uid,omitempty"`
	Status    string `trace:"meeting.status,omitempty"`
}

type TraceVoiceSessionMeta struct {
	MeetingID   string `trace:"voice.meeting_id"`
	VoiceRoomID string `trace:"voice.room_id,omitempty"`
	UserID      string `trace:"voice.user_id"`
	Signed      bool   `trace:"voice.signed"`
	ExpiresAt   string `trace:"voice.expires_at,omitempty"`
}

type TraceStoreQueryMeta struct {
	Collection string `trace:"store.collection"`
	Index      string `trace:"store.index,omitempty"`
	Filters    int    `trace:"store.filters"`
	Limit      int64  `trace:"store.limit,omitempty"`
	Count      int    `trace:"result.count,omitempty"`
}

type TraceIdentityMeta struct {
	Op        string `trace:"identity.op"`
	SubjectID string `trace:"identity.subject_id,omitempty"`
	Status    int    `trace:"identity.http_status,omitempty"`
}

type TraceRealtimeMeta struct {
	Bridge    string `trace:"realtime.bridge"`
	Event     string `trace:"realtime.event"`
	MeetingID string `trace:"realtime.meeting_id,omitempty"`
	Result    string `trace:"realtime.result"`
}

type TracePanicMeta struct {
	Path       string  `trace:"http.path"`
	Method     string  `trace:"http.method"`
	ClientIP   string  `trace:"net.peer.ip"`
	UserAgent  string  `trace:"http.user_agent"`
	DurationMs float64 `trace:"response.latency_ms"`
	Status     int     `trace:"http.status_code"`
	Message    string  `trace:"error.message"`
	Stack      string  `trace:"error.stack"`
}

type TraceErrorMeta struct {
	Code       int     `trace:"error.code"`
	Message    string  `trace:"error.message"`
	Detail     string  `trace:"error.detail"`
	Status     int     `trace:"http.status_code"`
	DurationMs float64 `trace:"response.latency_ms"`
}

type TraceResponseMeta struct {
	Path       string  `trace:"http.path"`
	Method     string  `trace:"http.method"`
	Status     int     `trace:"http.status_code"`
	DurationMs float64 `trace:"response.latency_ms"`
	Data       string  `trace:"response.data_preview"`
}

type TraceHttpServerMeta struct {
	// request side
	ClientAddr        string `trace:"client.address"`
	HttpRequestMethod string `trace:"http.request.method"`
	HttpRoute         string `trace:"http.route"`
	UrlPath           string `trace:"http.request.path"`
	UrlScheme         string `trace:"http.request.url.scheme"`
	UserAgent         string `trace:"user_agent.original"`
	ServerAddress     string `trace:"server.address"`
	NetworkPeerAddr   string `trace:"network.peer.address"`
	NetworkPeerPort   int    `trace:"network.peer.port"`
	NetworkProtoVer   string `trace:"network.protocol.version"`
	SpanKind          string `trace:"span.kind"`
	SpanTraceID       string `trace:"span.trace_id"`
	HttpStatusCode    int    `trace:"http.response.status_code"`
}
