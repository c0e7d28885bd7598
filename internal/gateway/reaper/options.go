package reaper

import (
	"github.com/lk2023060901/zeus-gateway-go/internal/gateway/hook"
)

type config struct {
	clock hook.Clock
	sink  hook.EventSink
	meter hook.Meter
}

func defaultConfig() config {
	return config{
		clock: hook.SystemClock(),
		sink:  hook.NewZapEventSink(),
		meter: hook.NewPromMeter(),
	}
}

// Option 调整回收器的构建参数。
type Option func(*config)

// WithClock 替换时钟源，测试中用于注入可控时间。
func WithClock(clk hook.Clock) Option {
	return func(c *config) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithEventSink 替换事件上报实现。
func WithEventSink(s hook.EventSink) Option {
	return func(c *config) {
		if s != nil {
			c.sink = s
		}
	}
}

// WithMeter 替换指标上报实现。
func WithMeter(m hook.Meter) Option {
	return func(c *config) {
		if m != nil {
			c.meter = m
		}
	}
}
