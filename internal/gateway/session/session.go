// Package session 维护网关的固定容量会话表及每个槽位的可变状态。
package session

import (
	"sync"
	"time"

	"github.com/lk2023060901/zeus-gateway-go/internal/gateway/hook"
	"github.com/lk2023060901/zeus-gateway-go/internal/gateway/inbox"
	"github.com/lk2023060901/zeus-gateway-go/pkg/util/merr"
	"github.com/lk2023060901/zeus-gateway-go/pkg/util/typeutil"
)

// Session 是会话表中的一个槽位。
//
// 锁约定：除 ID 与 UserLabel（创建后不变）之外，所有方法都必须在
// 持有该槽位锁的情况下调用，即只能出现在 Table.WithSession 的回调
// 或 Table 自身的加锁路径中。
type Session struct {
	id        typeutil.UniqueID
	userLabel string

	// mu 由所属 Table 统一管理，保证槽位上的单写者纪律。
	mu sync.Mutex

	authenticated   bool
	lastHeartbeatAt time.Time
	inbox           *inbox.Inbox

	sink  hook.EventSink
	meter hook.Meter
}

func newSession(id typeutil.UniqueID, label string, inboxCapacity int, sink hook.EventSink, meter hook.Meter) *Session {
	return &Session{
		id:        id,
		userLabel: label,
		inbox:     inbox.New(inboxCapacity),
		sink:      sink,
		meter:     meter,
	}
}

// ID 返回槽位标识，同时也是会话在表中的下标。
func (s *Session) ID() typeutil.UniqueID {
	return s.id
}

// UserLabel 返回用于日志归属的展示身份，创建后不变。
func (s *Session) UserLabel() string {
	return s.userLabel
}

// Authenticated 返回会话是否处于已认证状态。
func (s *Session) Authenticated() bool {
	return s.authenticated
}

// LastHeartbeatAt 返回最近一次通过校验的心跳时间。
// 从未收到合法心跳时为零值。
func (s *Session) LastHeartbeatAt() time.Time {
	return s.lastHeartbeatAt
}

// Inbox 返回会话的收件箱。
func (s *Session) Inbox() *inbox.Inbox {
	return s.inbox
}

// MarkHeartbeat 记录一次通过校验的心跳。
// 只允许在心跳载荷完整提取并写出之后调用。
func (s *Session) MarkHeartbeat(now time.Time) {
	s.lastHeartbeatAt = now
}

// EnqueueChat 将一条聊天消息入队。
//
// 行为：
//   - 未认证会话的消息被静默丢弃（不排队等待），返回
//     merr.ErrSessionUnauthorized 并记一次告警事件；
//   - 收件箱放不下整条消息时返回 merr.ErrInboxOverflow，内容不变；
//   - 入队成功后，若占用严格超过容量的一半，额外触发一次背压告警。
//     背压只是旁路提示，未满之前入队不会因此被拒绝。
func (s *Session) EnqueueChat(msg []byte) error {
	if !s.authenticated {
		s.sink.Warn(s.id, "chat dropped: session not authenticated")
		s.meter.Count(hook.CounterChatDrop, 1)
		return merr.WrapErrSessionUnauthorized(s.id)
	}

	if err := s.inbox.Enqueue(msg); err != nil {
		s.sink.Warn(s.id, "chat rejected: inbox full")
		s.meter.Count(hook.CounterChatOverflow, 1)
		return err
	}

	s.meter.Count(hook.InboxOccupancyGauge(s.id), int64(s.inbox.Occupancy()))
	if s.inbox.AboveWatermark() {
		s.sink.Warn(s.id, "inbox above watermark")
		s.meter.Count(hook.CounterInboxHot, 1)
	}
	return nil
}

// Drain 取出收件箱中缓冲的全部字节并清空。
func (s *Session) Drain() []byte {
	out := s.inbox.Drain()
	s.meter.Count(hook.InboxOccupancyGauge(s.id), 0)
	return out
}

// Reset 将槽位恢复为未认证的初始状态：清认证位、清空收件箱、
// 心跳时间归零。调用方持有槽锁，因此整个重置相对并发分发是原子的。
func (s *Session) Reset() {
	if s.authenticated {
		s.meter.Count(hook.GaugeAuthedSessions, -1)
	}
	s.authenticated = false
	s.lastHeartbeatAt = time.Time{}
	s.inbox.Reset()
	s.meter.Count(hook.InboxOccupancyGauge(s.id), 0)
}

// authenticate 置位认证状态，重复认证不重复计数。
// 仅由 Table.Authenticate 调用。
func (s *Session) authenticate() {
	if !s.authenticated {
		s.authenticated = true
		s.meter.Count(hook.GaugeAuthedSessions, 1)
	}
}
