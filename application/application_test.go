package application

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/zeus-gateway-go/internal/gateway/packet"
	"github.com/lk2023060901/zeus-gateway-go/pkg/util/merr"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunAssemblesGateway(t *testing.T) {
	path := writeConfig(t, `
gateway:
  session-capacity: 8
  inbox-capacity: 128
  max-heartbeat-payload: 1024
  idle-threshold: 45s
  reap-interval: 5s
  auth-token: hunter2
`)
	t.Setenv("ZEUS_CONFIG_FILE_PATH", path)

	app := New()
	require.NoError(t, app.Run())

	gw := app.Gateway()
	assert.Equal(t, 8, gw.SessionCapacity)
	assert.Equal(t, 128, gw.InboxCapacity)
	assert.Equal(t, 1024, gw.MaxHeartbeatPayload)
	assert.Equal(t, 45*time.Second, gw.IdleThreshold)
	assert.Equal(t, 5*time.Second, gw.ReapInterval)

	require.NotNil(t, app.Table())
	require.NotNil(t, app.Dispatcher())
	require.NotNil(t, app.Reaper())
	assert.Equal(t, 8, app.Table().Capacity())

	// End to end through the assembled components.
	require.NoError(t, app.Table().Authenticate(1, "hunter2"))
	out := make([]byte, 8)
	n, err := app.Dispatcher().HandlePacket(1, []byte{0x01, 0x00, 0x02, 'O', 'K'}, out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "OK", string(out[:n]))
}

func TestRunAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
gateway:
  auth-token: hunter2
`)
	t.Setenv("ZEUS_CONFIG_FILE_PATH", path)

	app := New()
	require.NoError(t, app.Run())

	gw := app.Gateway()
	assert.Equal(t, defaultSessionCapacity, gw.SessionCapacity)
	assert.Equal(t, defaultInboxCapacity, gw.InboxCapacity)
	assert.Equal(t, packet.MaxHeartbeatPayload, gw.MaxHeartbeatPayload)
	assert.Equal(t, defaultIdleThreshold, gw.IdleThreshold)
	assert.Equal(t, defaultReapInterval, gw.ReapInterval)
}

func TestRunRejectsMissingAuthToken(t *testing.T) {
	path := writeConfig(t, `
gateway:
  session-capacity: 8
`)
	t.Setenv("ZEUS_CONFIG_FILE_PATH", path)

	app := New()
	err := app.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, merr.ErrParameterMissing)
}

func TestRunMissingConfigFile(t *testing.T) {
	t.Setenv("ZEUS_CONFIG_FILE_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	app := New()
	require.Error(t, app.Run())
}
