package packet

import (
	"encoding/binary"

	"github.com/lk2023060901/zeus-gateway-go/pkg/util/merr"
)

// Cursor 是字节缓冲区上的只读游标，是从带长度前缀的字段中
// 安全取数的唯一机制。
//
// 约定：
//   - 任何读取在剩余字节不足时返回 merr.ErrPacketTruncated，
//     游标位置保持不变；
//   - 任何操作返回的切片都不会越过原始缓冲区的末尾；
//   - 除推进读取位置外没有任何副作用。
type Cursor struct {
	buf []byte
	off int
}

// NewCursor 创建一个覆盖 buf 全部内容的游标。
// 游标不复制数据，调用方在游标存活期间不应修改 buf。
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Remaining 返回尚未读取的字节数。
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.off
}

// ReadU8 读取一个无符号单字节整数。
func (c *Cursor) ReadU8() (byte, error) {
	if c.Remaining() < 1 {
		return 0, merr.WrapErrPacketTruncated(1, c.Remaining())
	}
	b := c.buf[c.off]
	c.off++
	return b, nil
}

// ReadU16BE 读取一个大端序的无符号双字节整数。
func (c *Cursor) ReadU16BE() (uint16, error) {
	if c.Remaining() < 2 {
		return 0, merr.WrapErrPacketTruncated(2, c.Remaining())
	}
	v := binary.BigEndian.Uint16(c.buf[c.off:])
	c.off += 2
	return v, nil
}

// Take 返回接下来 n 个字节并推进游标。
//
// 说明：
//   - 返回的是原始缓冲区的子切片（零拷贝），需要长期持有载荷的
//     调用方必须自行复制；
//   - n 大于剩余字节数时返回 merr.ErrPacketTruncated，游标不动。
func (c *Cursor) Take(n int) ([]byte, error) {
	if n < 0 {
		return nil, merr.WrapErrParameterInvalidMsg("take %d bytes", n)
	}
	if n > c.Remaining() {
		return nil, merr.WrapErrPacketTruncated(n, c.Remaining())
	}
	out := c.buf[c.off : c.off+n]
	c.off += n
	return out, nil
}
