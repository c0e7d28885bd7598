package hook

import (
	"strings"

	"github.com/lk2023060901/zeus-gateway-go/pkg/metrics"
)

// promMeter 把短名称的计数更新映射到 pkg/metrics 中的 Prometheus 指标。
type promMeter struct{}

var _ Meter = promMeter{}

// NewPromMeter 返回默认的 Prometheus 指标落地实现。
// 调用方需要自行完成 metrics.Register。
func NewPromMeter() Meter {
	return promMeter{}
}

func (promMeter) Count(name string, value int64) {
	v := float64(value)

	switch name {
	case CounterAuthOK:
		metrics.GatewayAuthAttempts.WithLabelValues("ok").Add(v)
	case CounterAuthErr:
		metrics.GatewayAuthAttempts.WithLabelValues("err").Add(v)
	case CounterHeartbeatOK:
		metrics.GatewayPackets.WithLabelValues("heartbeat", "ok").Add(v)
	case CounterHeartbeatErr:
		metrics.GatewayPackets.WithLabelValues("heartbeat", "err").Add(v)
	case CounterHeartbeatBytes:
		metrics.GatewayHeartbeatPayloadBytes.Observe(v)
	case CounterChatOK:
		metrics.GatewayPackets.WithLabelValues("chat", "ok").Add(v)
	case CounterChatDrop:
		metrics.GatewayPackets.WithLabelValues("chat", "drop").Add(v)
	case CounterChatOverflow:
		metrics.GatewayPackets.WithLabelValues("chat", "overflow").Add(v)
	case CounterInboxHot:
		metrics.GatewayInboxBackpressure.Add(v)
	case CounterRekey:
		metrics.GatewayPackets.WithLabelValues("rekey", "ok").Add(v)
	case CounterReaped:
		metrics.GatewayReapedSessions.Add(v)
	case GaugeAuthedSessions:
		metrics.GatewayAuthenticatedSessions.Add(v)
	default:
		switch {
		case strings.HasPrefix(name, unknownTypePrefix):
			typ := strings.TrimPrefix(name, unknownTypePrefix)
			metrics.GatewayUnknownPacketTypes.WithLabelValues(typ).Add(v)
		case strings.HasPrefix(name, inboxOccupancyPrefix):
			id := strings.TrimPrefix(name, inboxOccupancyPrefix)
			metrics.GatewayInboxOccupancy.WithLabelValues(id).Set(v)
		}
	}
}
