package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/lk2023060901/zeus-gateway-go/internal/gateway/hook"
	"github.com/lk2023060901/zeus-gateway-go/pkg/util/merr"
	"github.com/lk2023060901/zeus-gateway-go/pkg/util/typeutil"
)

const testToken = "hunter2"

type TableSuite struct {
	suite.Suite

	table *Table
	sink  *hook.RecordingEventSink
	meter *hook.RecordingMeter
}

func (s *TableSuite) SetupTest() {
	s.sink = hook.NewRecordingEventSink()
	s.meter = hook.NewRecordingMeter()

	var err error
	s.table, err = NewTable(4,
		WithInboxCapacity(8),
		WithTokenValidator(hook.StaticToken(testToken)),
		WithEventSink(s.sink),
		WithMeter(s.meter),
	)
	s.Require().NoError(err)
}

func (s *TableSuite) TestNewTableRejectsNonPositiveCapacity() {
	for _, capacity := range []int{0, -1} {
		_, err := NewTable(capacity)
		s.ErrorIs(err, merr.ErrParameterInvalid)
	}
}

func (s *TableSuite) TestGet() {
	sess, err := s.table.Get(0)
	s.NoError(err)
	s.Equal(typeutil.UniqueID(0), sess.ID())
	s.Equal("user-0", sess.UserLabel())

	// 新建槽位的初始状态。
	s.False(sess.Authenticated())
	s.True(sess.LastHeartbeatAt().IsZero())
	s.Zero(sess.Inbox().Occupancy())

	_, err = s.table.Get(4)
	s.ErrorIs(err, merr.ErrSessionNotFound)
	_, err = s.table.Get(100)
	s.ErrorIs(err, merr.ErrSessionNotFound)
}

func (s *TableSuite) TestAuthenticate() {
	s.NoError(s.table.Authenticate(1, testToken))

	sess, err := s.table.Get(1)
	s.NoError(err)
	s.True(sess.Authenticated())
	s.Equal(1, s.sink.CountOf("info", "session authenticated"))
	s.EqualValues(1, s.meter.Value(hook.CounterAuthOK))
	s.EqualValues(1, s.meter.Value(hook.GaugeAuthedSessions))

	// 重复认证幂等，gauge 不重复累加。
	s.NoError(s.table.Authenticate(1, testToken))
	s.True(sess.Authenticated())
	s.EqualValues(1, s.meter.Value(hook.GaugeAuthedSessions))
	s.EqualValues(2, s.meter.Value(hook.CounterAuthOK))
}

func (s *TableSuite) TestAuthenticateBadToken() {
	err := s.table.Authenticate(2, "letmein")
	s.ErrorIs(err, merr.ErrSessionAuthFailed)

	sess, getErr := s.table.Get(2)
	s.NoError(getErr)
	s.False(sess.Authenticated())
	s.Equal(1, s.sink.CountOf("warn", "authentication failed"))
	s.EqualValues(1, s.meter.Value(hook.CounterAuthErr))
	s.EqualValues(0, s.meter.Value(hook.GaugeAuthedSessions))
}

func (s *TableSuite) TestAuthenticateNoSuchSession() {
	err := s.table.Authenticate(99, testToken)
	s.ErrorIs(err, merr.ErrSessionNotFound)
}

func (s *TableSuite) TestEnqueueChatUnauthorized() {
	err := s.table.WithSession(0, func(sess *Session) error {
		return sess.EnqueueChat([]byte("hi!"))
	})
	s.ErrorIs(err, merr.ErrSessionUnauthorized)

	sess, getErr := s.table.Get(0)
	s.NoError(getErr)
	s.Zero(sess.Inbox().Occupancy())
	s.Equal(1, s.sink.CountOf("warn", "chat dropped: session not authenticated"))
	s.EqualValues(1, s.meter.Value(hook.CounterChatDrop))
}

func (s *TableSuite) TestEnqueueChatWatermark() {
	s.Require().NoError(s.table.Authenticate(0, testToken))

	// 收件箱容量 8，占用 4 尚未越过水位线（严格大于一半才触发）。
	err := s.table.WithSession(0, func(sess *Session) error {
		return sess.EnqueueChat([]byte("abcd"))
	})
	s.NoError(err)
	s.EqualValues(0, s.meter.Value(hook.CounterInboxHot))
	s.EqualValues(4, s.meter.Value(hook.InboxOccupancyGauge(0)))

	// 占用 5 越过水位线，入队本身依旧成功。
	err = s.table.WithSession(0, func(sess *Session) error {
		return sess.EnqueueChat([]byte("e"))
	})
	s.NoError(err)
	s.EqualValues(1, s.meter.Value(hook.CounterInboxHot))
	s.Equal(1, s.sink.CountOf("warn", "inbox above watermark"))
}

func (s *TableSuite) TestEnqueueChatOverflow() {
	s.Require().NoError(s.table.Authenticate(0, testToken))

	err := s.table.WithSession(0, func(sess *Session) error {
		if err := sess.EnqueueChat([]byte("abcdef")); err != nil {
			return err
		}
		return sess.EnqueueChat([]byte("ghi"))
	})
	s.ErrorIs(err, merr.ErrInboxOverflow)
	s.True(merr.IsRetryableErr(err))

	// 溢出拒绝不破坏已有内容。
	var drained []byte
	s.NoError(s.table.WithSession(0, func(sess *Session) error {
		drained = sess.Drain()
		return nil
	}))
	s.Equal([]byte("abcdef"), drained)
	s.EqualValues(1, s.meter.Value(hook.CounterChatOverflow))
}

func (s *TableSuite) TestReset() {
	s.Require().NoError(s.table.Authenticate(3, testToken))
	s.Require().NoError(s.table.WithSession(3, func(sess *Session) error {
		return sess.EnqueueChat([]byte("msg"))
	}))

	s.NoError(s.table.Reset(3))

	sess, err := s.table.Get(3)
	s.NoError(err)
	s.False(sess.Authenticated())
	s.True(sess.LastHeartbeatAt().IsZero())
	s.Zero(sess.Inbox().Occupancy())
	s.EqualValues(0, s.meter.Value(hook.GaugeAuthedSessions))

	// 对未认证槽位重复 Reset 无副作用，gauge 不会为负。
	s.NoError(s.table.Reset(3))
	s.EqualValues(0, s.meter.Value(hook.GaugeAuthedSessions))

	s.ErrorIs(s.table.Reset(42), merr.ErrSessionNotFound)
}

func (s *TableSuite) TestSnapshot() {
	s.Require().NoError(s.table.Authenticate(1, testToken))
	s.Require().NoError(s.table.WithSession(1, func(sess *Session) error {
		return sess.EnqueueChat([]byte("ab"))
	}))

	infos := s.table.Snapshot()
	s.Len(infos, s.table.Capacity())
	s.Equal(typeutil.UniqueID(1), infos[1].ID)
	s.Equal("user-1", infos[1].UserLabel)
	s.True(infos[1].Authenticated)
	s.Equal(2, infos[1].InboxOccupancy)
	s.False(infos[0].Authenticated)
}

func (s *TableSuite) TestRangeEarlyStop() {
	visited := 0
	s.table.Range(func(sess *Session) bool {
		visited++
		return visited < 2
	})
	s.Equal(2, visited)
}

// 并发认证与重置交错执行，gauge 的增减必须严格配对。
func (s *TableSuite) TestConcurrentAuthenticateAndReset() {
	const rounds = 200

	wg := sync.WaitGroup{}
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_ = s.table.Authenticate(0, testToken)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_ = s.table.Reset(0)
		}
	}()
	wg.Wait()

	gauge := s.meter.Value(hook.GaugeAuthedSessions)
	s.GreaterOrEqual(gauge, int64(0))
	s.LessOrEqual(gauge, int64(1))

	sess, err := s.table.Get(0)
	s.NoError(err)
	if sess.Authenticated() {
		s.EqualValues(1, gauge)
	} else {
		s.EqualValues(0, gauge)
	}
}

func TestTable(t *testing.T) {
	suite.Run(t, new(TableSuite))
}

func TestUserLabeler(t *testing.T) {
	table, err := NewTable(2,
		WithUserLabeler(func(id typeutil.UniqueID) string { return "vip" }),
		WithEventSink(hook.NopEventSink{}),
		WithMeter(hook.NopMeter{}),
	)
	assert.NoError(t, err)

	sess, err := table.Get(1)
	assert.NoError(t, err)
	assert.Equal(t, "vip", sess.UserLabel())
}
