// Package packet 定义网关的二进制包格式：类型字节 + 长度前缀 + 载荷。
//
// 所有多字节整数均为大端序。包格式如下：
//
//	心跳    ：| 0x01 | u16 声明长度 | 载荷（声明长度个字节，原样回显） |
//	聊天    ：| 0x02 | u8 声明长度  | 载荷（声明长度个字节）           |
//	密钥轮换：| 0x03 |（无载荷）                                      |
//
// 声明长度来自对端控制的字节，任何解析方在取数前都必须用 Cursor
// 对照实际收到的字节数进行校验。
package packet

import (
	"encoding/binary"

	"github.com/lk2023060901/zeus-gateway-go/pkg/util/merr"
)

// 包类型字节。
const (
	TypeHeartbeat byte = 0x01
	TypeChat      byte = 0x02
	TypeRekey     byte = 0x03
)

const (
	// MaxHeartbeatPayload 是心跳载荷的协议上限。
	// u16 长度字段本身无法表达更大的值，保留该常量是为了把上限
	// 作为显式策略而不是字段宽度的副产品。
	MaxHeartbeatPayload = 65535

	// MaxChatPayload 是聊天载荷的协议上限（u8 长度字段）。
	MaxChatPayload = 255

	// HeartbeatHeaderSize 为心跳包头大小：类型字节 + u16 长度前缀。
	HeartbeatHeaderSize = 3

	// ChatHeaderSize 为聊天包头大小：类型字节 + u8 长度前缀。
	ChatHeaderSize = 2
)

// BuildHeartbeat 构造一个声明长度与实际载荷一致的心跳包。
func BuildHeartbeat(payload []byte) ([]byte, error) {
	if len(payload) > MaxHeartbeatPayload {
		return nil, merr.WrapErrPacketTooLarge(len(payload), MaxHeartbeatPayload)
	}

	pkt := make([]byte, HeartbeatHeaderSize+len(payload))
	pkt[0] = TypeHeartbeat
	binary.BigEndian.PutUint16(pkt[1:3], uint16(len(payload)))
	copy(pkt[HeartbeatHeaderSize:], payload)
	return pkt, nil
}

// BuildHeartbeatClaiming 构造一个声明长度与实际载荷无关的心跳包。
//
// 它刻意不做任何校验，用于在测试与演示中伪造“声明长度远大于
// 实际字节数”的越界读取探测包。
func BuildHeartbeatClaiming(declared uint16, payload []byte) []byte {
	pkt := make([]byte, HeartbeatHeaderSize+len(payload))
	pkt[0] = TypeHeartbeat
	binary.BigEndian.PutUint16(pkt[1:3], declared)
	copy(pkt[HeartbeatHeaderSize:], payload)
	return pkt
}

// BuildChat 构造一个聊天包。
func BuildChat(body []byte) ([]byte, error) {
	if len(body) > MaxChatPayload {
		return nil, merr.WrapErrPacketTooLarge(len(body), MaxChatPayload)
	}

	pkt := make([]byte, ChatHeaderSize+len(body))
	pkt[0] = TypeChat
	pkt[1] = byte(len(body))
	copy(pkt[ChatHeaderSize:], body)
	return pkt, nil
}

// BuildRekey 构造一个密钥轮换包，该类型没有载荷。
func BuildRekey() []byte {
	return []byte{TypeRekey}
}
