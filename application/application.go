package application

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lk2023060901/zeus-gateway-go/internal/gateway/dispatch"
	"github.com/lk2023060901/zeus-gateway-go/internal/gateway/heartbeat"
	"github.com/lk2023060901/zeus-gateway-go/internal/gateway/hook"
	"github.com/lk2023060901/zeus-gateway-go/internal/gateway/packet"
	"github.com/lk2023060901/zeus-gateway-go/internal/gateway/reaper"
	"github.com/lk2023060901/zeus-gateway-go/internal/gateway/session"
	zlog "github.com/lk2023060901/zeus-gateway-go/pkg/log"
	"github.com/lk2023060901/zeus-gateway-go/pkg/metrics"
	"github.com/lk2023060901/zeus-gateway-go/pkg/util/merr"
	zviper "github.com/lk2023060901/zeus-gateway-go/pkg/util/viper"
)

// Defaults for the "gateway" config section.
const (
	defaultSessionCapacity = 64
	defaultInboxCapacity   = 2048
	defaultIdleThreshold   = 90 * time.Second
	defaultReapInterval    = 30 * time.Second
)

var metricsOnce sync.Once

// GatewayConfig holds the "gateway" section of the configuration file.
//
// Example:
//
//	gateway:
//	  session-capacity: 64
//	  inbox-capacity: 2048
//	  max-heartbeat-payload: 65535
//	  idle-threshold: 90s
//	  reap-interval: 30s
//	  auth-token: hunter2
type GatewayConfig struct {
	// SessionCapacity is the fixed number of session slots; it never
	// grows at runtime.
	SessionCapacity int `mapstructure:"session-capacity"`
	// InboxCapacity is the per-session chat inbox size in bytes.
	InboxCapacity int `mapstructure:"inbox-capacity"`
	// MaxHeartbeatPayload caps the declared heartbeat payload length.
	MaxHeartbeatPayload int `mapstructure:"max-heartbeat-payload"`
	// IdleThreshold is how long a session may go without a valid
	// heartbeat before the reaper resets it.
	IdleThreshold time.Duration `mapstructure:"idle-threshold"`
	// ReapInterval is the period of the background reap loop.
	ReapInterval time.Duration `mapstructure:"reap-interval"`
	// AuthToken is the shared secret checked by the token validator.
	// It has no default: an empty token is a configuration error, not
	// an open gateway.
	AuthToken string `mapstructure:"auth-token"`
}

// Application is the main runtime container for the Zeus gateway.
// It owns configuration, logging and the gateway core components.
type Application struct {
	cfg     *zviper.Config
	loggers map[string]*zlog.MLogger

	gatewayCfg GatewayConfig
	table      *session.Table
	dispatcher *dispatch.Dispatcher
	reaper     *reaper.Reaper
}

// New creates a new Application instance.
func New() *Application {
	return &Application{}
}

// Run is the entry of the Zeus gateway application.
// It parses command-line arguments (os.Args) and loads configuration file
// using the following priority:
//  1. Default: ./config.yaml
//  2. Env: ZEUS_CONFIG_FILE_PATH
//  3. CLI: --config <path> or --config=<path>
//
// After configuration and logging are ready it assembles the session
// table, the packet dispatcher and the idle reaper. Run does not start
// the reap loop; call Start once the process is ready to serve.
func (a *Application) Run() error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := a.initLogging(); err != nil {
		return err
	}

	return a.initGateway()
}

// Serve runs the application until ctx is done: it assembles the
// gateway via Run, starts the reap loop, blocks, and tears the loop
// down on the way out.
func (a *Application) Serve(ctx context.Context) error {
	if err := a.Run(); err != nil {
		return err
	}
	a.Start(ctx)
	<-ctx.Done()
	a.Stop()
	return nil
}

// Start launches the background reap loop.
func (a *Application) Start(ctx context.Context) {
	if a.reaper != nil {
		a.reaper.Start(ctx)
	}
}

// Stop cancels the reap loop and waits for it to exit.
func (a *Application) Stop() {
	if a.reaper != nil {
		a.reaper.Stop()
	}
}

// Config returns the loaded configuration, if any.
func (a *Application) Config() *zviper.Config {
	return a.cfg
}

// Gateway returns the effective gateway configuration after defaults
// were applied.
func (a *Application) Gateway() GatewayConfig {
	return a.gatewayCfg
}

// Table returns the session table assembled by Run.
func (a *Application) Table() *session.Table {
	return a.table
}

// Dispatcher returns the packet dispatcher assembled by Run.
func (a *Application) Dispatcher() *dispatch.Dispatcher {
	return a.dispatcher
}

// Reaper returns the idle reaper assembled by Run.
func (a *Application) Reaper() *reaper.Reaper {
	return a.reaper
}

// Logger returns a named logger created from configuration.
// If the name is unknown, it falls back to the global logger.
func (a *Application) Logger(name string) *zlog.MLogger {
	if a.loggers == nil {
		return &zlog.MLogger{Logger: zlog.L()}
	}
	if lg, ok := a.loggers[name]; ok && lg != nil {
		return lg
	}
	return &zlog.MLogger{Logger: zlog.L()}
}

// loadConfig resolves config file path and loads it via viper wrapper.
func (a *Application) loadConfig() (*zviper.Config, error) {
	configPath := "./config.yaml"

	if envPath := os.Getenv("ZEUS_CONFIG_FILE_PATH"); envPath != "" {
		configPath = envPath
	}

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--config" {
			if i+1 >= len(args) {
				return nil, fmt.Errorf("missing value after --config")
			}
			configPath = args[i+1]
			i++
			continue
		}
		if strings.HasPrefix(arg, "--config=") {
			val := strings.TrimPrefix(arg, "--config=")
			if val != "" {
				configPath = val
			}
			continue
		}
	}

	cfg := zviper.New()
	if err := cfg.LoadFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file %q: %w", configPath, err)
	}

	return cfg, nil
}

// initGateway parses the "gateway" config section and assembles the
// core components. Prometheus collectors are registered on first use.
func (a *Application) initGateway() error {
	gw := GatewayConfig{
		SessionCapacity:     defaultSessionCapacity,
		InboxCapacity:       defaultInboxCapacity,
		MaxHeartbeatPayload: packet.MaxHeartbeatPayload,
		IdleThreshold:       defaultIdleThreshold,
		ReapInterval:        defaultReapInterval,
	}
	if a.cfg != nil {
		if err := a.cfg.UnmarshalKey("gateway", &gw); err != nil {
			return fmt.Errorf("failed to parse gateway config: %w", err)
		}
	}
	if gw.AuthToken == "" {
		return merr.WrapErrParameterMissing("gateway.auth-token", "refusing to run without an auth token")
	}
	a.gatewayCfg = gw

	metricsOnce.Do(func() {
		metrics.Register(metrics.GetRegisterer())
	})

	table, err := session.NewTable(gw.SessionCapacity,
		session.WithInboxCapacity(gw.InboxCapacity),
		session.WithTokenValidator(hook.StaticToken(gw.AuthToken)),
	)
	if err != nil {
		return err
	}

	dispatcher, err := dispatch.NewDispatcher(table,
		dispatch.WithCodec(heartbeat.NewCodec(heartbeat.WithMaxPayload(gw.MaxHeartbeatPayload))),
	)
	if err != nil {
		return err
	}

	rp, err := reaper.NewReaper(table, gw.IdleThreshold, gw.ReapInterval)
	if err != nil {
		return err
	}

	a.table = table
	a.dispatcher = dispatcher
	a.reaper = rp

	zlog.Info("gateway assembled",
		zap.Int("sessionCapacity", gw.SessionCapacity),
		zap.Int("inboxCapacity", gw.InboxCapacity),
		zap.Int("maxHeartbeatPayload", gw.MaxHeartbeatPayload),
		zap.Duration("idleThreshold", gw.IdleThreshold),
		zap.Duration("reapInterval", gw.ReapInterval))
	return nil
}

// initLogging initializes global and module-level loggers.
func (a *Application) initLogging() error {
	if err := a.initGlobalLoggerFromEnv(); err != nil {
		return err
	}
	if err := a.initModuleLoggersFromConfig(); err != nil {
		return err
	}
	return nil
}

// initGlobalLoggerFromEnv configures the process-wide logger based on ZEUS_LOG_* env vars.
//
// Priority:
//   - ZEUS_LOG_ENABLE: "1"/"true" to enable outputs; others treated as disabled.
//   - ZEUS_LOG_LEVEL: log level (default "info").
//   - ZEUS_LOG_STDOUT: whether to log to stdout (default false).
//   - ZEUS_LOG_FILE_DIR: log directory.
//   - ZEUS_LOG_FILE: log file name (empty means no file).
//   - ZEUS_LOG_FORMAT: log format ("text" or "json", default "text").
func (a *Application) initGlobalLoggerFromEnv() error {
	enabled := getenvBool("ZEUS_LOG_ENABLE", false)

	cfg := &zlog.Config{
		Level:               getenvDefault("ZEUS_LOG_LEVEL", "info"),
		Format:              getenvDefault("ZEUS_LOG_FORMAT", "text"),
		DisableTimestamp:    false,
		Stdout:              getenvBool("ZEUS_LOG_STDOUT", false),
		DisableCaller:       false,
		DisableStacktrace:   false,
		DisableErrorVerbose: true,
		File: zlog.FileLogConfig{
			RootPath: getenvDefault("ZEUS_LOG_FILE_DIR", ""),
			Filename: getenvDefault("ZEUS_LOG_FILE", ""),
		},
	}

	// When not enabled, direct all outputs to a discarded sink.
	if !enabled {
		cfg.Stdout = false
		cfg.File.Filename = ""
	}

	logger, props, err := zlog.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("init global logger from env: %w", err)
	}
	zlog.ReplaceGlobals(logger, props)
	return nil
}

// initModuleLoggersFromConfig creates named loggers from YAML config under "logging" key.
//
// Example:
//
//	logging:
//	  gateway:
//	    level: debug
//	    stdout: true
//	    file:
//	      rootpath: ./logs
//	      filename: gateway.log
func (a *Application) initModuleLoggersFromConfig() error {
	if a.cfg == nil {
		return nil
	}

	// Unmarshal "logging" section into a map[name]Config.
	raw := make(map[string]zlog.Config)
	if err := a.cfg.UnmarshalKey("logging", &raw); err != nil {
		// If the key doesn't exist, UnmarshalKey typically leaves raw empty without error.
		// Any real error should be returned.
		return err
	}
	if len(raw) == 0 {
		return nil
	}

	a.loggers = make(map[string]*zlog.MLogger, len(raw))
	for name, lc := range raw {
		cfgCopy := lc
		logger, _, err := zlog.InitLogger(&cfgCopy)
		if err != nil {
			return fmt.Errorf("init module logger %q: %w", name, err)
		}
		a.loggers[name] = &zlog.MLogger{Logger: logger}
	}

	return nil
}

func getenvDefault(key, def string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	return val
}

func getenvBool(key string, def bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
