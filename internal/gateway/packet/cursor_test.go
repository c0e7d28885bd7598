package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lk2023060901/zeus-gateway-go/pkg/util/merr"
)

func TestCursorSequentialReads(t *testing.T) {
	buf := []byte{0x01, 0x00, 0x02, 'O', 'K'}
	cur := NewCursor(buf)
	assert.Equal(t, 5, cur.Remaining())

	typ, err := cur.ReadU8()
	assert.NoError(t, err)
	assert.Equal(t, TypeHeartbeat, typ)
	assert.Equal(t, 4, cur.Remaining())

	declared, err := cur.ReadU16BE()
	assert.NoError(t, err)
	assert.Equal(t, uint16(2), declared)
	assert.Equal(t, 2, cur.Remaining())

	payload, err := cur.Take(2)
	assert.NoError(t, err)
	assert.Equal(t, []byte("OK"), payload)
	assert.Equal(t, 0, cur.Remaining())
}

func TestCursorNeverOverReads(t *testing.T) {
	cur := NewCursor([]byte{0xab})

	// 失败的读取不移动游标。
	_, err := cur.ReadU16BE()
	assert.ErrorIs(t, err, merr.ErrPacketTruncated)
	assert.Equal(t, 1, cur.Remaining())

	_, err = cur.Take(2)
	assert.ErrorIs(t, err, merr.ErrPacketTruncated)
	assert.Equal(t, 1, cur.Remaining())

	b, err := cur.ReadU8()
	assert.NoError(t, err)
	assert.Equal(t, byte(0xab), b)

	_, err = cur.ReadU8()
	assert.ErrorIs(t, err, merr.ErrPacketTruncated)
	_, err = cur.Take(1)
	assert.ErrorIs(t, err, merr.ErrPacketTruncated)

	empty, err := cur.Take(0)
	assert.NoError(t, err)
	assert.Len(t, empty, 0)
}

func TestCursorTakeBounds(t *testing.T) {
	buf := []byte{1, 2, 3, 4}
	cur := NewCursor(buf)

	_, err := cur.Take(-1)
	assert.ErrorIs(t, err, merr.ErrParameterInvalid)
	assert.Equal(t, 4, cur.Remaining())

	// 恰好取完剩余字节是允许的。
	all, err := cur.Take(4)
	assert.NoError(t, err)
	assert.Equal(t, buf, all)

	_, err = cur.Take(1)
	assert.ErrorIs(t, err, merr.ErrPacketTruncated)
}

func TestCursorTakeIsZeroCopy(t *testing.T) {
	buf := []byte{1, 2, 3, 4}
	cur := NewCursor(buf)

	out, err := cur.Take(2)
	assert.NoError(t, err)

	// Take 返回原始缓冲区的子切片。
	buf[0] = 9
	assert.Equal(t, byte(9), out[0])
}
