package hook

import (
	"sync"

	"github.com/lk2023060901/zeus-gateway-go/pkg/util/typeutil"
)

// RecordedEvent 是 RecordingEventSink 捕获的单条事件。
type RecordedEvent struct {
	SessionID typeutil.UniqueID
	Level     string
	Event     string
}

// RecordingEventSink 按到达顺序记录事件，仅用于测试断言。
type RecordingEventSink struct {
	mu     sync.Mutex
	events []RecordedEvent
}

var _ EventSink = (*RecordingEventSink)(nil)

func NewRecordingEventSink() *RecordingEventSink {
	return &RecordingEventSink{}
}

func (s *RecordingEventSink) Info(sessionID typeutil.UniqueID, event string) {
	s.append(RecordedEvent{SessionID: sessionID, Level: "info", Event: event})
}

func (s *RecordingEventSink) Warn(sessionID typeutil.UniqueID, event string) {
	s.append(RecordedEvent{SessionID: sessionID, Level: "warn", Event: event})
}

func (s *RecordingEventSink) append(ev RecordedEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// Events 返回已记录事件的拷贝。
func (s *RecordingEventSink) Events() []RecordedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedEvent, len(s.events))
	copy(out, s.events)
	return out
}

// CountOf 返回匹配给定级别与事件名的记录条数。
func (s *RecordingEventSink) CountOf(level, event string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, ev := range s.events {
		if ev.Level == level && ev.Event == event {
			n++
		}
	}
	return n
}

// RecordingMeter 累计每个名称收到的 value，仅用于测试断言。
type RecordingMeter struct {
	mu     sync.Mutex
	counts map[string]int64
}

var _ Meter = (*RecordingMeter)(nil)

func NewRecordingMeter() *RecordingMeter {
	return &RecordingMeter{counts: make(map[string]int64)}
}

func (m *RecordingMeter) Count(name string, value int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[name] += value
}

// Value 返回某个名称累计的 value 总和。
func (m *RecordingMeter) Value(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[name]
}
