package session

import (
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/lk2023060901/zeus-gateway-go/internal/gateway/hook"
	"github.com/lk2023060901/zeus-gateway-go/pkg/log"
	"github.com/lk2023060901/zeus-gateway-go/pkg/util/merr"
	"github.com/lk2023060901/zeus-gateway-go/pkg/util/typeutil"
)

// SessionInfo 是单个槽位在某一时刻的一致性快照。
type SessionInfo struct {
	ID              typeutil.UniqueID `json:"id"`
	UserLabel       string            `json:"user_label"`
	Authenticated   bool              `json:"authenticated"`
	LastHeartbeatAt time.Time         `json:"last_heartbeat_at"`
	InboxOccupancy  int               `json:"inbox_occupancy"`
}

// Table 是容量固定的会话表。槽位在建表时一次性分配，
// 生命周期内既不扩容也不回收，会话 ID 直接作为下标寻址。
//
// 表本身不持全局锁：所有可变状态都收敛在槽位内，由槽位锁保护，
// 不同槽位上的操作可以完全并行。
type Table struct {
	sessions []*Session

	validate hook.TokenValidator
	sink     hook.EventSink
	meter    hook.Meter
}

// NewTable 创建一张容量为 capacity 的会话表，所有槽位初始为未认证状态。
func NewTable(capacity int, opts ...Option) (*Table, error) {
	if capacity <= 0 {
		return nil, merr.WrapErrParameterInvalid("positive capacity", strconv.Itoa(capacity))
	}

	c := defaultConfig()
	for _, opt := range opts {
		opt(&c)
	}

	sessions := make([]*Session, capacity)
	for i := range sessions {
		id := typeutil.UniqueID(i)
		sessions[i] = newSession(id, c.labeler(id), c.inboxCapacity, c.sink, c.meter)
	}

	log.Info("session table created",
		zap.Int("capacity", capacity),
		zap.Int("inboxCapacity", c.inboxCapacity))

	return &Table{
		sessions: sessions,
		validate: c.validator,
		sink:     c.sink,
		meter:    c.meter,
	}, nil
}

// Capacity 返回建表时确定的槽位数。
func (t *Table) Capacity() int {
	return len(t.sessions)
}

// Get 按 ID 取会话，越界返回 merr.ErrSessionNotFound。
// 返回的 Session 上除 ID/UserLabel 外的方法仍需经 WithSession 访问。
func (t *Table) Get(id typeutil.UniqueID) (*Session, error) {
	if id >= typeutil.UniqueID(len(t.sessions)) {
		return nil, merr.WrapErrSessionNotFound(id)
	}
	return t.sessions[id], nil
}

// WithSession 在持有槽位锁的情况下执行 fn，这是访问会话可变
// 状态的唯一正规入口。fn 内不得再对同一槽位调用 WithSession。
func (t *Table) WithSession(id typeutil.UniqueID, fn func(s *Session) error) error {
	s, err := t.Get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

// Authenticate 用注入的令牌校验器认证会话。校验通过则置位认证状态，
// 对已认证会话重复认证是无害的幂等操作；校验失败返回
// merr.ErrSessionAuthFailed 且不改动任何状态。
func (t *Table) Authenticate(id typeutil.UniqueID, token string) error {
	return t.WithSession(id, func(s *Session) error {
		if !t.validate(token) {
			t.sink.Warn(id, "authentication failed")
			t.meter.Count(hook.CounterAuthErr, 1)
			return merr.WrapErrSessionAuthFailed(id)
		}
		s.authenticate()
		t.sink.Info(id, "session authenticated")
		t.meter.Count(hook.CounterAuthOK, 1)
		return nil
	})
}

// Reset 将槽位原子地恢复为初始状态。
func (t *Table) Reset(id typeutil.UniqueID) error {
	return t.WithSession(id, func(s *Session) error {
		s.Reset()
		return nil
	})
}

// Range 按槽位顺序遍历所有会话，fn 返回 false 时提前终止。
// 遍历本身不加锁：槽位切片建表后不变，fn 需要读写会话状态时
// 自行通过 WithSession 加锁。
func (t *Table) Range(fn func(s *Session) bool) {
	for _, s := range t.sessions {
		if !fn(s) {
			return
		}
	}
}

// Snapshot 返回全表状态的拷贝，用于诊断输出。逐槽加锁，
// 每个槽位内部自洽，但不同槽位之间不构成同一时刻的全局一致视图。
func (t *Table) Snapshot() []SessionInfo {
	infos := make([]SessionInfo, 0, len(t.sessions))
	for _, s := range t.sessions {
		s.mu.Lock()
		infos = append(infos, SessionInfo{
			ID:              s.id,
			UserLabel:       s.userLabel,
			Authenticated:   s.authenticated,
			LastHeartbeatAt: s.lastHeartbeatAt,
			InboxOccupancy:  s.inbox.Occupancy(),
		})
		s.mu.Unlock()
	}
	return infos
}
