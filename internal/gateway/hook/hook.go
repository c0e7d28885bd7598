// Package hook 定义网关核心依赖的外部协作件：时钟、事件落地、
// 指标计数与令牌校验。
//
// 核心代码只依赖这里的抽象；默认实现分别基于系统时钟、pkg/log 与
// pkg/metrics。所有落地实现都是尽力而为的：核心路径从不因为某个
// 协作件失败而拒绝请求。
package hook

import (
	"crypto/subtle"
	"fmt"
	"strconv"
	"time"

	"github.com/lk2023060901/zeus-gateway-go/pkg/util/typeutil"
)

// Clock 提供当前时间，便于在测试中注入假时钟。
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock 返回基于 time.Now 的默认时钟。
func SystemClock() Clock {
	return systemClock{}
}

// EventSink 接收与单个会话相关的事件通知。
//
// 实现必须是并发安全的，且不允许阻塞调用方；事件属于尽力而为的
// 旁路信息，丢弃是允许的。
type EventSink interface {
	Info(sessionID typeutil.UniqueID, event string)
	Warn(sessionID typeutil.UniqueID, event string)
}

// Meter 接收计数与计量的增量更新，按短名称区分序列。
// value 对计数器为增量，对计量类名称为当前值。
type Meter interface {
	Count(name string, value int64)
}

// TokenValidator 判定给定令牌是否有效。
type TokenValidator func(token string) bool

// StaticToken 返回与固定令牌做恒定时间比较的校验器。
func StaticToken(expected string) TokenValidator {
	want := []byte(expected)
	return func(token string) bool {
		return subtle.ConstantTimeCompare(want, []byte(token)) == 1
	}
}

// Meter 使用的序列名称。
const (
	CounterAuthOK         = "auth_ok"
	CounterAuthErr        = "auth_err"
	CounterHeartbeatOK    = "hb_ok"
	CounterHeartbeatErr   = "hb_err"
	CounterHeartbeatBytes = "hb_bytes"
	CounterChatOK         = "chat_ok"
	CounterChatDrop       = "chat_drop"
	CounterChatOverflow   = "chat_overflow"
	CounterInboxHot       = "inbox_hot"
	CounterRekey          = "rekey"
	CounterReaped         = "reaped"

	// GaugeAuthedSessions 的 value 为增量（认证 +1，重置 -1）。
	GaugeAuthedSessions = "authed_sessions"

	unknownTypePrefix    = "unknown_type:"
	inboxOccupancyPrefix = "inbox_occupancy:"
)

// UnknownTypeCounter 返回按原始类型字节区分的未知包计数名称。
func UnknownTypeCounter(typ byte) string {
	return unknownTypePrefix + fmt.Sprintf("%#02x", typ)
}

// InboxOccupancyGauge 返回按会话区分的收件箱占用计量名称，
// 对应的 value 为当前占用字节数。
func InboxOccupancyGauge(id typeutil.UniqueID) string {
	return inboxOccupancyPrefix + strconv.FormatUint(id, 10)
}

// NopEventSink 丢弃所有事件。
type NopEventSink struct{}

func (NopEventSink) Info(typeutil.UniqueID, string) {}

func (NopEventSink) Warn(typeutil.UniqueID, string) {}

// NopMeter 丢弃所有计数。
type NopMeter struct{}

func (NopMeter) Count(string, int64) {}
