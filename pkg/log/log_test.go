// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// testLogSpy 捕获 InitTestLogger 经 t.Logf 输出的日志行，便于断言。
type testLogSpy struct {
	testing.TB

	failed   bool
	Messages []string
}

func newTestLogSpy(tb testing.TB) *testLogSpy {
	return &testLogSpy{TB: tb}
}

func (t *testLogSpy) Fail() { t.failed = true }

func (t *testLogSpy) Failed() bool { return t.failed }

func (t *testLogSpy) FailNow() {
	t.Fail()
	t.TB.FailNow()
}

func (t *testLogSpy) Logf(format string, args ...interface{}) {
	m := fmt.Sprintf(format, args...)
	t.Messages = append(t.Messages, m)
	t.TB.Log(m)
}

func (t *testLogSpy) assertContains(sub string) {
	for _, m := range t.Messages {
		if strings.Contains(m, sub) {
			return
		}
	}
	t.TB.Errorf("%q not found in logged messages: %v", sub, t.Messages)
}

func (t *testLogSpy) assertNotContains(sub string) {
	for _, m := range t.Messages {
		if strings.Contains(m, sub) {
			t.TB.Errorf("%q unexpectedly found in logged messages: %v", sub, t.Messages)
		}
	}
}

func testLogConfig() *Config {
	return &Config{Level: "debug", DisableTimestamp: true, DisableStacktrace: true}
}

func TestInitTestLogger(t *testing.T) {
	ts := newTestLogSpy(t)
	logger, _, err := InitTestLogger(ts, testLogConfig())
	require.NoError(t, err)

	logger.Info("session authenticated", zap.Uint64("sessionID", 7))
	logger.Debug("heartbeat echoed", zap.Int("bytes", 2))
	logger.Warn("inbox above watermark")

	ts.assertContains("session authenticated")
	ts.assertContains("sessionID=7")
	ts.assertContains("heartbeat echoed")
	ts.assertContains("inbox above watermark")
	assert.False(t, ts.failed)
}

func TestLevelFiltering(t *testing.T) {
	ts := newTestLogSpy(t)
	cfg := testLogConfig()
	cfg.Level = "warn"
	logger, props, err := InitTestLogger(ts, cfg)
	require.NoError(t, err)

	logger.Info("below threshold")
	logger.Warn("at threshold")
	ts.assertNotContains("below threshold")
	ts.assertContains("at threshold")

	// 运行期调低级别后，Info 开始输出。
	props.Level.SetLevel(zapcore.DebugLevel)
	logger.Info("after lowering")
	ts.assertContains("after lowering")
}

func TestCtxWithFields(t *testing.T) {
	ts := newTestLogSpy(t)
	logger, _, err := InitTestLogger(ts, testLogConfig())
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), CtxLogKey, &MLogger{Logger: logger})
	ctx = WithFields(ctx, zap.String("traceID", "abc123"))
	Ctx(ctx).Info("with trace")
	Ctx(ctx).With(zap.Uint64("sessionID", 3)).Warn("slot reset")

	ts.assertContains("with trace")
	ts.assertContains("traceID=abc123")
	ts.assertContains("slot reset")
	ts.assertContains("sessionID=3")
}

func TestMLoggerRateGroup(t *testing.T) {
	ts := newTestLogSpy(t)
	logger, _, err := InitTestLogger(ts, testLogConfig())
	require.NoError(t, err)

	// 组名取时间戳，避免与进程内其他命名限流器共享余额。
	group := fmt.Sprintf("log_test_%d", time.Now().UnixNano())
	ml := (&MLogger{Logger: logger}).WithRateGroup(group, 0.001, 1)

	assert.True(t, ml.RatedWarn(1, "first rated warn"))
	assert.False(t, ml.RatedWarn(1, "second rated warn"))
	ts.assertContains("first rated warn")
	ts.assertNotContains("second rated warn")
}

func TestReplaceGlobals(t *testing.T) {
	ts := newTestLogSpy(t)
	logger, props, err := InitTestLogger(ts, testLogConfig())
	require.NoError(t, err)

	prevL, prevP := L(), _globalP.Load().(*ZapProperties)
	ReplaceGlobals(logger, props)
	defer ReplaceGlobals(prevL, prevP)

	Info("global info line", zap.String("module", "gateway"))
	With(zap.Uint64("sessionID", 3)).Warn("global warn line")

	ts.assertContains("global info line")
	ts.assertContains("module=gateway")
	ts.assertContains("global warn line")
	ts.assertContains("sessionID=3")
	assert.Equal(t, zapcore.DebugLevel, GetLevel())
}

func TestAsyncFileWrite(t *testing.T) {
	dir := t.TempDir()
	cfg := testLogConfig()
	cfg.AsyncWriteEnable = true
	cfg.AsyncWriteFlushInterval = 10 * time.Millisecond
	cfg.File = FileLogConfig{RootPath: dir, Filename: "gateway.log"}

	logger, _, err := InitLogger(cfg)
	require.NoError(t, err)

	logger.Info("async write line", zap.Int("n", 1))

	// Cleanup 停止异步 Core 并冲刷缓冲，之后文件内容即为最终内容。
	Cleanup()

	data, err := os.ReadFile(filepath.Join(dir, "gateway.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "async write line")
}
