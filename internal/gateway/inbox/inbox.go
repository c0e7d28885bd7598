// Package inbox 实现会话级的有界字节队列。
package inbox

import (
	"github.com/lk2023060901/zeus-gateway-go/pkg/buffer/ring"
	"github.com/lk2023060901/zeus-gateway-go/pkg/util/merr"
)

// Inbox 是单个会话的有界收件箱。
//
// 容量在创建后固定不变，消息按到达顺序追加；放不下整条消息时
// 入队被整体拒绝，已有内容保持不变。
//
// Inbox 自身不加锁：并发控制由持有它的会话槽锁负责。
type Inbox struct {
	buf      *ring.Buffer
	capacity int
}

// New 创建一个容量为 capacity 字节的收件箱。
func New(capacity int) *Inbox {
	if capacity < 0 {
		capacity = 0
	}
	return &Inbox{
		buf:      ring.New(capacity),
		capacity: capacity,
	}
}

// Capacity 返回收件箱的固定容量。
func (i *Inbox) Capacity() int {
	return i.capacity
}

// Occupancy 返回当前已占用的字节数。
func (i *Inbox) Occupancy() int {
	return i.buf.Buffered()
}

// Free 返回当前可写入的剩余字节数。
func (i *Inbox) Free() int {
	return i.capacity - i.Occupancy()
}

// Enqueue 将一条消息的字节追加到收件箱。
//
// 当 len(msg) 超过剩余空间时返回 merr.ErrInboxOverflow，
// 收件箱内容与占用保持不变。
func (i *Inbox) Enqueue(msg []byte) error {
	if len(msg) > i.Free() {
		return merr.WrapErrInboxOverflow(len(msg), i.Free())
	}
	_, err := i.buf.Write(msg)
	return err
}

// AboveWatermark 返回占用是否已严格超过容量的一半。
func (i *Inbox) AboveWatermark() bool {
	return 2*i.Occupancy() > i.capacity
}

// Drain 按顺序取出所有已缓冲的字节并清空收件箱。
func (i *Inbox) Drain() []byte {
	n := i.Occupancy()
	if n == 0 {
		return nil
	}
	out := make([]byte, n)
	_, _ = i.buf.Read(out)
	return out
}

// Reset 清空收件箱。
func (i *Inbox) Reset() {
	i.buf.Reset()
}
