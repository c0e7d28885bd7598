package session

import (
	"fmt"

	"github.com/lk2023060901/zeus-gateway-go/internal/gateway/hook"
	"github.com/lk2023060901/zeus-gateway-go/pkg/util/typeutil"
)

const defaultInboxCapacity = 2048

type config struct {
	inboxCapacity int
	labeler       func(id typeutil.UniqueID) string
	validator     hook.TokenValidator
	sink          hook.EventSink
	meter         hook.Meter
}

func defaultConfig() config {
	return config{
		inboxCapacity: defaultInboxCapacity,
		labeler: func(id typeutil.UniqueID) string {
			return fmt.Sprintf("user-%d", id)
		},
		// 未配置校验器时拒绝一切令牌，避免误配出"默认放行"的网关。
		validator: func(string) bool { return false },
		sink:      hook.NewZapEventSink(),
		meter:     hook.NewPromMeter(),
	}
}

// Option 调整会话表的构建参数。
type Option func(*config)

// WithInboxCapacity 设置每个会话收件箱的字节容量。
func WithInboxCapacity(n int) Option {
	return func(c *config) {
		if n < 0 {
			n = 0
		}
		c.inboxCapacity = n
	}
}

// WithTokenValidator 设置认证令牌校验器，传 nil 保持默认的全部拒绝。
func WithTokenValidator(v hook.TokenValidator) Option {
	return func(c *config) {
		if v != nil {
			c.validator = v
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

// WithUserLabeler 定制槽位的展示身份，默认形如 "user-7"。
func WithUserLabeler(fn func(id typeutil.UniqueID) string) Option {
	return func(c *config) {
		if fn != nil {
			c.labeler = fn
		}
	}
}
