// Package dispatch 将入站数据包按类型字节路由到心跳、聊天与密钥轮换处理器。
//
// 分发器不拥有任何可变状态：会话状态全部存放在会话表中，
// 处理器回调在目标槽位锁内执行，与 Reaper 的重置共用同一把锁，
// 从而保证单个会话上的串行语义。
package dispatch

import (
	"fmt"

	"github.com/lk2023060901/zeus-gateway-go/internal/gateway/heartbeat"
	"github.com/lk2023060901/zeus-gateway-go/internal/gateway/hook"
	"github.com/lk2023060901/zeus-gateway-go/internal/gateway/packet"
	"github.com/lk2023060901/zeus-gateway-go/internal/gateway/session"
	"github.com/lk2023060901/zeus-gateway-go/pkg/util/merr"
	"github.com/lk2023060901/zeus-gateway-go/pkg/util/typeutil"
)

// HandlerFunc 处理一种类型的完整数据包。
//
// 约定：
//   - 回调在持有目标会话槽位锁的情况下被调用，内部不得再锁同一槽位；
//   - pkt 是含类型字节的完整数据包，out 是调用方提供的输出缓冲区；
//   - 返回本次处理的字节数（心跳场景即写入 out 的回显长度）；
//   - 出错时不得写 out，也不得改动会话状态。
type HandlerFunc func(s *session.Session, pkt []byte, out []byte) (int, error)

// Dispatcher 持有会话表与心跳编解码器，对外暴露 HandlePacket 单一入口。
type Dispatcher struct {
	table *session.Table
	codec heartbeat.Codec
	clock hook.Clock
	sink  hook.EventSink
	meter hook.Meter

	// onRekey 是密钥轮换的占位钩子，当前设计不携带任何密钥材料。
	onRekey func(id typeutil.UniqueID)

	routes map[byte]HandlerFunc
}

// NewDispatcher 创建分发器并挂载内置的三种协议处理器。
func NewDispatcher(table *session.Table, opts ...Option) (*Dispatcher, error) {
	if table == nil {
		return nil, merr.WrapErrParameterMissing("session table")
	}

	c := defaultConfig()
	for _, opt := range opts {
		opt(&c)
	}

	d := &Dispatcher{
		table:   table,
		codec:   c.codec,
		clock:   c.clock,
		sink:    c.sink,
		meter:   c.meter,
		onRekey: c.onRekey,
		routes:  make(map[byte]HandlerFunc),
	}

	if err := d.Register(packet.TypeHeartbeat, d.handleHeartbeat); err != nil {
		return nil, err
	}
	if err := d.Register(packet.TypeChat, d.handleChat); err != nil {
		return nil, err
	}
	if err := d.Register(packet.TypeRekey, d.handleRekey); err != nil {
		return nil, err
	}
	return d, nil
}

// Register 为类型字节 typ 挂载处理器。
//
// 同一类型不允许重复注册，重复时返回错误，保证每种数据包
// 有且只有一条处理路径。
func (d *Dispatcher) Register(typ byte, h HandlerFunc) error {
	if h == nil {
		return fmt.Errorf("dispatch: handler is nil for type=%#02x", typ)
	}
	if _, exists := d.routes[typ]; exists {
		return fmt.Errorf("dispatch: type=%#02x already registered", typ)
	}
	d.routes[typ] = h
	return nil
}

// HandlePacket 处理发往 sessionID 的一个完整数据包，
// 返回本次处理的字节数。
//
// 失败路径的保证：out 不被写入、目标会话状态不变，只有相应的
// 计数器与事件照常上报。对未知类型，按原始类型字节记一次
// unknown_type 计数。
func (d *Dispatcher) HandlePacket(sessionID typeutil.UniqueID, pkt []byte, out []byte) (int, error) {
	if len(pkt) == 0 {
		return 0, merr.WrapErrPacketEmpty()
	}

	written := 0
	err := d.table.WithSession(sessionID, func(s *session.Session) error {
		h, ok := d.routes[pkt[0]]
		if !ok {
			d.meter.Count(hook.UnknownTypeCounter(pkt[0]), 1)
			return merr.WrapErrPacketTypeUnknown(pkt[0])
		}
		n, err := h(s, pkt, out)
		if err != nil {
			return err
		}
		written = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// handleHeartbeat 解码心跳并把载荷回显进 out。
// 任何失败都发生在改动会话状态之前。
func (d *Dispatcher) handleHeartbeat(s *session.Session, pkt []byte, out []byte) (int, error) {
	payload, err := d.codec.Decode(pkt)
	if err != nil {
		d.sink.Warn(s.ID(), "heartbeat rejected")
		d.meter.Count(hook.CounterHeartbeatErr, 1)
		return 0, err
	}
	if len(out) < len(payload) {
		d.meter.Count(hook.CounterHeartbeatErr, 1)
		return 0, merr.WrapErrOutputTooSmall(len(payload), len(out))
	}

	copy(out, payload)
	s.MarkHeartbeat(d.clock.Now())
	d.meter.Count(hook.CounterHeartbeatOK, 1)
	d.meter.Count(hook.CounterHeartbeatBytes, int64(len(payload)))
	return len(payload), nil
}

// handleChat 解析单字节长度前缀的聊天消息并入队。
// 长度与实际字节数的校验完全由游标给出，没有独立的越界分支。
func (d *Dispatcher) handleChat(s *session.Session, pkt []byte, _ []byte) (int, error) {
	cur := packet.NewCursor(pkt)
	if _, err := cur.ReadU8(); err != nil {
		return 0, err
	}
	length, err := cur.ReadU8()
	if err != nil {
		return 0, err
	}
	body, err := cur.Take(int(length))
	if err != nil {
		return 0, err
	}

	if err := s.EnqueueChat(body); err != nil {
		return 0, err
	}
	d.meter.Count(hook.CounterChatOK, 1)
	return int(length), nil
}

// handleRekey 触发密钥轮换钩子。协议上该类型没有载荷，
// 处理字节数恒为零。
func (d *Dispatcher) handleRekey(s *session.Session, _ []byte, _ []byte) (int, error) {
	if d.onRekey != nil {
		d.onRekey(s.ID())
	}
	d.meter.Count(hook.CounterRekey, 1)
	return 0, nil
}
