package core

import "time"

// ─── Database Types ────────────────────────────────────────────────────────────

type StoreDriver string

const (
	StoreDriverMongo  StoreDriver = "mongo"
	StoreDriverMemory StoreDriver = "memory"
)

type MongoDatabaseName string
type Collection string
type RedisKey string
type FluentdSubTag string

// ─── Document Store ────────────────────────────────────────────────────────────
const (
	MongoDBJoinGo MongoDatabaseName = "joingo"
)

const (
	CollectionUsers           Collection = "users"
	CollectionMeetings        Collection = "meetings"
	CollectionMeetingMessages Collection = "meeting_messages"
)

// 依房主列出會議的複合索引
const (
	IndexHostStatusCreatedAt = "idx_host_status_createdAt"
	IndexHostUID             = "idx_hostUid"
	IndexStatusExpiresAt     = "idx_status_expiresAt"
	IndexMeetingCreatedAt    = "idx_meeting_createdAt"
	IndexUserStatus          = "idx_status"
)

// ─── Redis Keys ────────────────────────────────────────────────────────────────

const (
	RedisKeyBlacklist  RedisKey = "blacklist_token" // 已登出的 token
	RedisKeyRateLimit  RedisKey = "ratelimit"       // 限流計數
	RedisKeyServerName RedisKey = "joingo"          // 伺服器名稱
)

const (
	FluentdRequest  FluentdSubTag = "request_log"
	FluentdResponse FluentdSubTag = "response_log"
	FluentdRealtime FluentdSubTag = "realtime_log"
)

// TimeLayout 固定毫秒寬度，字串排序即時間排序
const TimeLayout = "2006-01-02T15:04:05.000Z"

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
