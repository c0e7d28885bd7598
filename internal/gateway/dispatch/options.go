package dispatch

import (
	"github.com/lk2023060901/zeus-gateway-go/internal/gateway/heartbeat"
	"github.com/lk2023060901/zeus-gateway-go/internal/gateway/hook"
	"github.com/lk2023060901/zeus-gateway-go/pkg/util/typeutil"
)

type config struct {
	codec   heartbeat.Codec
	clock   hook.Clock
	sink    hook.EventSink
	meter   hook.Meter
	onRekey func(id typeutil.UniqueID)
}

func defaultConfig() config {
	return config{
		codec: heartbeat.NewCodec(),
		clock: hook.SystemClock(),
		sink:  hook.NewZapEventSink(),
		meter: hook.NewPromMeter(),
	}
}

// Option 调整分发器的构建参数。
type Option func(*config)

// WithCodec 替换心跳编解码器，通常用于收紧载荷上限。
func WithCodec(c heartbeat.Codec) Option {
	return func(cfg *config) {
		if c != nil {
			cfg.codec = c
		}
	}
}

// WithClock 替换时钟源，测试中用于注入固定时间。
func WithClock(clk hook.Clock) Option {
	return func(cfg *config) {
		if clk != nil {
			cfg.clock = clk
		}
	}
}

// WithEventSink 替换事件上报实现。
func WithEventSink(s hook.EventSink) Option {
	return func(cfg *config) {
		if s != nil {
			cfg.sink = s
		}
	}
}

// WithMeter 替换指标上报实现。
func WithMeter(m hook.Meter) Option {
	return func(cfg *config) {
		if m != nil {
			cfg.meter = m
		}
	}
}

// WithRekeyHook 设置密钥轮换钩子，在收到轮换包时以会话 ID 回调。
func WithRekeyHook(fn func(id typeutil.UniqueID)) Option {
	return func(cfg *config) {
		cfg.onRekey = fn
	}
}
