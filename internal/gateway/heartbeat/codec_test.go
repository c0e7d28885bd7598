package heartbeat

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/lk2023060901/zeus-gateway-go/internal/gateway/packet"
	"github.com/lk2023060901/zeus-gateway-go/pkg/util/merr"
)

type CodecSuite struct {
	suite.Suite

	codec Codec
}

func (s *CodecSuite) SetupTest() {
	s.codec = NewCodec()
}

func (s *CodecSuite) TestDecodeValid() {
	pkt := []byte{0x01, 0x00, 0x02, 'O', 'K'}
	payload, err := s.codec.Decode(pkt)
	s.NoError(err)
	s.Equal([]byte("OK"), payload)

	// 载荷为包自偏移 3 起的子切片。
	s.Equal(pkt[3:5], payload)
}

func (s *CodecSuite) TestDecodeEmptyPayload() {
	payload, err := s.codec.Decode([]byte{0x01, 0x00, 0x00})
	s.NoError(err)
	s.Len(payload, 0)
}

func (s *CodecSuite) TestDecodeIgnoresTrailingBytes() {
	// 声明 2 字节，包里实际带了 4 字节载荷：只取声明的部分。
	payload, err := s.codec.Decode([]byte{0x01, 0x00, 0x02, 'O', 'K', 'x', 'y'})
	s.NoError(err)
	s.Equal([]byte("OK"), payload)
}

func (s *CodecSuite) TestDecodeOverReadAttempt() {
	// 声明 0x4000 字节，实际只有 2 字节：经典的越界读取探测。
	pkt := packet.BuildHeartbeatClaiming(0x4000, []byte("OK"))
	before := append([]byte{}, pkt...)

	payload, err := s.codec.Decode(pkt)
	s.ErrorIs(err, merr.ErrPacketTruncated)
	s.Nil(payload)
	s.Equal(before, pkt)
}

func (s *CodecSuite) TestDecodeMaxDeclaredShortBuffer() {
	pkt := packet.BuildHeartbeatClaiming(65535, bytes.Repeat([]byte{0xaa}, 16))
	_, err := s.codec.Decode(pkt)
	s.ErrorIs(err, merr.ErrPacketTruncated)
}

func (s *CodecSuite) TestDecodeMalformedHeader() {
	for _, pkt := range [][]byte{nil, {}, {0x01}, {0x01, 0x00}} {
		_, err := s.codec.Decode(pkt)
		s.ErrorIs(err, merr.ErrPacketMalformed)
	}
}

func (s *CodecSuite) TestDecodeBoundary() {
	payload := []byte("0123456789")
	pkt, err := packet.BuildHeartbeat(payload)
	s.NoError(err)

	// declared == len(pkt)-3 恰好合法，再多一个字节即截断。
	got, err := s.codec.Decode(pkt)
	s.NoError(err)
	s.Equal(payload, got)

	over := packet.BuildHeartbeatClaiming(uint16(len(payload)+1), payload)
	_, err = s.codec.Decode(over)
	s.ErrorIs(err, merr.ErrPacketTruncated)

	under := packet.BuildHeartbeatClaiming(uint16(len(payload)-1), payload)
	got, err = s.codec.Decode(under)
	s.NoError(err)
	s.Equal(payload[:len(payload)-1], got)
}

func (s *CodecSuite) TestPayloadPolicyLimit() {
	codec := NewCodec(WithMaxPayload(16))

	pkt, err := packet.BuildHeartbeat(bytes.Repeat([]byte{0xbb}, 17))
	s.NoError(err)

	// 包本身完整，但声明长度超出策略上限。
	_, err = codec.Decode(pkt)
	s.ErrorIs(err, merr.ErrPacketTooLarge)

	ok, err := packet.BuildHeartbeat(bytes.Repeat([]byte{0xbb}, 16))
	s.NoError(err)
	payload, err := codec.Decode(ok)
	s.NoError(err)
	s.Len(payload, 16)
}

func (s *CodecSuite) TestPayloadPolicyClamped() {
	codec := NewCodec(WithMaxPayload(0))
	pkt, err := packet.BuildHeartbeat(bytes.Repeat([]byte{0xcc}, 64))
	s.NoError(err)

	payload, err := codec.Decode(pkt)
	s.NoError(err)
	s.Len(payload, 64)
}

func TestCodec(t *testing.T) {
	suite.Run(t, new(CodecSuite))
}
