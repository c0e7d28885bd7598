// Package heartbeat 实现心跳包的校验与载荷提取。
//
// 心跳的声明长度来自对端控制的字节。本包是越界读取防线的核心：
// 声明长度只有在对照实际收到的字节数校验通过之后才会被使用，
// 不存在跳过校验的解码路径。
package heartbeat

import (
	"github.com/lk2023060901/zeus-gateway-go/internal/gateway/packet"
	"github.com/lk2023060901/zeus-gateway-go/pkg/util/merr"
)

// Codec 校验心跳包并提取载荷。
type Codec interface {
	// Decode 在完整的心跳包上执行校验与载荷提取。
	//
	// 行为：
	//   - len(pkt) < 3（类型字节 + u16 长度前缀）→ merr.ErrPacketMalformed；
	//   - 声明长度超过载荷上限 → merr.ErrPacketTooLarge；
	//   - 声明长度超过包内实际载荷字节数 → merr.ErrPacketTruncated；
	//   - 成功时返回自偏移 3 起恰好“声明长度”个字节的子切片（零拷贝），
	//     对 pkt 与任何会话状态均无副作用。
	Decode(pkt []byte) ([]byte, error)
}

type codec struct {
	maxPayload int
}

var _ Codec = (*codec)(nil)

// Option 配置 Codec。
type Option func(*codec)

// WithMaxPayload 设置载荷上限策略。
// 超出 [1, packet.MaxHeartbeatPayload] 的取值会被收敛到协议上限。
func WithMaxPayload(n int) Option {
	return func(c *codec) {
		if n <= 0 || n > packet.MaxHeartbeatPayload {
			n = packet.MaxHeartbeatPayload
		}
		c.maxPayload = n
	}
}

// NewCodec 创建心跳 Codec，默认载荷上限为协议上限。
func NewCodec(opts ...Option) Codec {
	c := &codec{
		maxPayload: packet.MaxHeartbeatPayload,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *codec) Decode(pkt []byte) ([]byte, error) {
	if len(pkt) < packet.HeartbeatHeaderSize {
		return nil, merr.WrapErrPacketMalformed(len(pkt), "heartbeat header incomplete")
	}

	cur := packet.NewCursor(pkt)
	if _, err := cur.ReadU8(); err != nil {
		return nil, err
	}
	declared, err := cur.ReadU16BE()
	if err != nil {
		return nil, err
	}

	if int(declared) > c.maxPayload {
		return nil, merr.WrapErrPacketTooLarge(int(declared), c.maxPayload)
	}

	// 关键校验：声明长度不得超过包内实际载荷字节数。
	if int(declared) > cur.Remaining() {
		return nil, merr.WrapErrPacketTruncated(int(declared), cur.Remaining())
	}

	return cur.Take(int(declared))
}
