package reaper

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/lk2023060901/zeus-gateway-go/internal/gateway/hook"
	"github.com/lk2023060901/zeus-gateway-go/internal/gateway/session"
	"github.com/lk2023060901/zeus-gateway-go/pkg/util/merr"
)

const testToken = "hunter2"

// stubClock 是测试用的可推进时钟。
type stubClock struct {
	mu sync.Mutex
	at time.Time
}

func newStubClock(at time.Time) *stubClock {
	return &stubClock{at: at}
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

func (c *stubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = c.at.Add(d)
}

type ReaperSuite struct {
	suite.Suite

	table *session.Table
	clock *stubClock
	sink  *hook.RecordingEventSink
	meter *hook.RecordingMeter
}

func (s *ReaperSuite) SetupTest() {
	s.sink = hook.NewRecordingEventSink()
	s.meter = hook.NewRecordingMeter()
	s.clock = newStubClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	var err error
	s.table, err = session.NewTable(4,
		session.WithInboxCapacity(64),
		session.WithTokenValidator(hook.StaticToken(testToken)),
		session.WithEventSink(s.sink),
		session.WithMeter(s.meter),
	)
	s.Require().NoError(err)
}

func (s *ReaperSuite) newReaper(threshold, interval time.Duration) *Reaper {
	r, err := NewReaper(s.table, threshold, interval,
		WithClock(s.clock),
		WithEventSink(s.sink),
		WithMeter(s.meter),
	)
	s.Require().NoError(err)
	return r
}

func (s *ReaperSuite) markHeartbeat(id uint64) {
	s.Require().NoError(s.table.WithSession(id, func(sess *session.Session) error {
		sess.MarkHeartbeat(s.clock.Now())
		return nil
	}))
}

func (s *ReaperSuite) TestNewReaperValidation() {
	_, err := NewReaper(nil, time.Minute, time.Second)
	s.ErrorIs(err, merr.ErrParameterMissing)

	_, err = NewReaper(s.table, 0, time.Second)
	s.ErrorIs(err, merr.ErrParameterInvalid)

	_, err = NewReaper(s.table, time.Minute, -time.Second)
	s.ErrorIs(err, merr.ErrParameterInvalid)
}

func (s *ReaperSuite) TestReapIdleSessions() {
	r := s.newReaper(90*time.Second, time.Second)

	// 0、1 各收到一次心跳，其中 0 还处于已认证状态并攒了消息；
	// 2 已认证但从未有心跳；3 完全未使用。
	s.markHeartbeat(0)
	s.markHeartbeat(1)
	s.Require().NoError(s.table.Authenticate(0, testToken))
	s.Require().NoError(s.table.WithSession(0, func(sess *session.Session) error {
		return sess.EnqueueChat([]byte("pending"))
	}))
	s.Require().NoError(s.table.Authenticate(2, testToken))

	s.clock.Advance(91 * time.Second)
	s.Equal(2, r.Reap(90*time.Second))

	// 0、1 被整体重置。
	for _, id := range []uint64{0, 1} {
		sess, err := s.table.Get(id)
		s.NoError(err)
		s.False(sess.Authenticated())
		s.True(sess.LastHeartbeatAt().IsZero())
		s.Zero(sess.Inbox().Occupancy())
	}

	// 从未有心跳的 2 不参与回收，认证状态保留。
	sess, err := s.table.Get(2)
	s.NoError(err)
	s.True(sess.Authenticated())

	s.Equal(2, s.sink.CountOf("warn", "session reaped for idleness"))
	s.EqualValues(2, s.meter.Value(hook.CounterReaped))
}

func (s *ReaperSuite) TestReapIdempotent() {
	r := s.newReaper(90*time.Second, time.Second)

	s.markHeartbeat(0)
	s.clock.Advance(2 * time.Minute)

	s.Equal(1, r.Reap(90*time.Second))
	// 重置后心跳时间归零，第二轮扫描不再命中。
	s.Equal(0, r.Reap(90*time.Second))
	s.EqualValues(1, s.meter.Value(hook.CounterReaped))
}

func (s *ReaperSuite) TestReapThresholdBoundary() {
	r := s.newReaper(90*time.Second, time.Second)

	s.markHeartbeat(0)

	// 空闲时长恰好等于阈值时不回收，必须严格超过。
	s.clock.Advance(90 * time.Second)
	s.Equal(0, r.Reap(90*time.Second))

	s.clock.Advance(time.Nanosecond)
	s.Equal(1, r.Reap(90*time.Second))
}

func (s *ReaperSuite) TestReapFreshSessionKept() {
	r := s.newReaper(90*time.Second, time.Second)

	s.markHeartbeat(1)
	s.clock.Advance(89 * time.Second)

	s.Equal(0, r.Reap(90*time.Second))
	sess, err := s.table.Get(1)
	s.NoError(err)
	s.False(sess.LastHeartbeatAt().IsZero())
}

func (s *ReaperSuite) TestStartStop() {
	r := s.newReaper(50*time.Millisecond, 10*time.Millisecond)

	s.markHeartbeat(0)
	r.Start(context.Background())
	// 重复 Start 不会再起第二个循环。
	r.Start(context.Background())

	s.clock.Advance(time.Second)
	s.Eventually(func() bool {
		var zeroed bool
		_ = s.table.WithSession(0, func(sess *session.Session) error {
			zeroed = sess.LastHeartbeatAt().IsZero()
			return nil
		})
		return zeroed
	}, time.Second, 10*time.Millisecond)

	r.Stop()
	r.Stop()
}

func (s *ReaperSuite) TestStopWithoutStart() {
	r := s.newReaper(time.Minute, time.Second)
	done := make(chan struct{})
	go func() {
		r.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("Stop should return immediately when never started")
	}
}

func (s *ReaperSuite) TestStartRespectsContext() {
	r := s.newReaper(time.Minute, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		r.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("Stop should return after context cancellation")
	}
}

func TestReaper(t *testing.T) {
	suite.Run(t, new(ReaperSuite))
}
