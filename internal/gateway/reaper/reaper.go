// Package reaper 周期性扫描会话表，回收心跳超时的空闲会话。
package reaper

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lk2023060901/zeus-gateway-go/internal/gateway/hook"
	"github.com/lk2023060901/zeus-gateway-go/internal/gateway/session"
	"github.com/lk2023060901/zeus-gateway-go/pkg/log"
	"github.com/lk2023060901/zeus-gateway-go/pkg/util/funcutil"
	"github.com/lk2023060901/zeus-gateway-go/pkg/util/merr"
	"github.com/lk2023060901/zeus-gateway-go/pkg/util/syncutil"
	"github.com/lk2023060901/zeus-gateway-go/pkg/util/typeutil"
)

// Reaper 将超过空闲阈值未收到合法心跳的会话重置回初始状态。
// 重置走与分发相同的槽位锁，对单个会话而言两者严格互斥。
type Reaper struct {
	log.Binder

	table *session.Table
	clock hook.Clock
	sink  hook.EventSink
	meter hook.Meter

	threshold time.Duration
	interval  time.Duration

	notifier  *syncutil.AsyncTaskNotifier[struct{}]
	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewReaper 创建回收器。threshold 是判定空闲的心跳间隔上限，
// interval 是后台循环的扫描周期，两者都必须为正。
func NewReaper(table *session.Table, threshold, interval time.Duration, opts ...Option) (*Reaper, error) {
	if table == nil {
		return nil, merr.WrapErrParameterMissing("session table")
	}
	if threshold <= 0 {
		return nil, merr.WrapErrParameterInvalid("positive idle threshold", threshold.String())
	}
	if interval <= 0 {
		return nil, merr.WrapErrParameterInvalid("positive reap interval", interval.String())
	}

	c := defaultConfig()
	for _, opt := range opts {
		opt(&c)
	}

	r := &Reaper{
		table:     table,
		clock:     c.clock,
		sink:      c.sink,
		meter:     c.meter,
		threshold: threshold,
		interval:  interval,
		notifier:  syncutil.NewAsyncTaskNotifier[struct{}](),
	}
	r.SetLogger(log.With(log.FieldComponent("reaper")))
	return r, nil
}

// Reap 对全表做一次空闲扫描，重置所有距最近一次合法心跳超过
// threshold 的会话，返回本轮回收的会话数。
//
// 从未收到过心跳的会话不参与回收：没有心跳记录说明对端从未
// 真正接入，而不是接入后失联。超时判断与重置在同一次槽位
// 加锁内完成，并发分发不可能观察到半重置的会话。
func (r *Reaper) Reap(threshold time.Duration) int {
	now := r.clock.Now()
	reaped := typeutil.NewUniqueSet()

	r.table.Range(func(s *session.Session) bool {
		id := s.ID()
		_ = r.table.WithSession(id, func(s *session.Session) error {
			last := s.LastHeartbeatAt()
			if last.IsZero() {
				return nil
			}
			if now.Sub(last) > threshold {
				s.Reset()
				r.sink.Warn(id, "session reaped for idleness")
				r.meter.Count(hook.CounterReaped, 1)
				reaped.Insert(id)
			}
			return nil
		})
		return true
	})

	if reaped.Len() > 0 {
		r.Logger().Info("idle sessions reaped",
			zap.Duration("threshold", threshold),
			zap.Uint64s("sessions", reaped.Collect()))
	}
	return reaped.Len()
}

// Start 启动后台回收循环，重复调用只生效一次。
func (r *Reaper) Start(ctx context.Context) {
	r.startOnce.Do(func() {
		r.started.Store(true)
		r.Logger().Info("reaper started",
			zap.Duration("threshold", r.threshold),
			zap.Duration("interval", r.interval))
		go r.loop(ctx)
	})
}

func (r *Reaper) loop(ctx context.Context) {
	defer r.notifier.Finish(struct{}{})

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Logger().Info("reaper loop exit due to context done")
			return
		case <-r.notifier.Context().Done():
			r.Logger().Info("reaper loop exit")
			return
		case <-ticker.C:
			if !funcutil.CheckCtxValid(ctx) {
				return
			}
			if r.Reap(r.threshold) > 0 {
				r.Logger().Debug("table state after reap", zap.Any("sessions", r.table.Snapshot()))
			}
		}
	}
}

// Stop 取消后台循环并等待其退出，重复调用只生效一次。
// 未 Start 过的回收器 Stop 直接返回。
func (r *Reaper) Stop() {
	r.stopOnce.Do(func() {
		r.notifier.Cancel()
		if r.started.Load() {
			r.notifier.BlockUntilFinish()
		}
	})
}
