package hook

import (
	"go.uber.org/zap"

	"github.com/lk2023060901/zeus-gateway-go/pkg/log"
	"github.com/lk2023060901/zeus-gateway-go/pkg/util/typeutil"
)

// zapEventSink 将会话事件写入全局 zap 日志器。
//
// Warn 事件共享一个限速组：异常流量（认证失败、越界探测、未知类型）
// 往往成批出现，放任逐条落盘会让日志本身成为放大面。
type zapEventSink struct {
	logger *log.MLogger
}

var _ EventSink = (*zapEventSink)(nil)

// NewZapEventSink 返回基于全局日志器的默认事件落地实现。
func NewZapEventSink() EventSink {
	return &zapEventSink{
		logger: log.With(log.FieldComponent("gateway")).
			WithRateGroup("gateway.events", 1, 60),
	}
}

func (s *zapEventSink) Info(sessionID typeutil.UniqueID, event string) {
	s.logger.Info(event, zap.Uint64("session", sessionID))
}

func (s *zapEventSink) Warn(sessionID typeutil.UniqueID, event string) {
	s.logger.RatedWarn(10, event, zap.Uint64("session", sessionID))
}
