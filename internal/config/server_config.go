package config

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"github/chapool/go-coldwallet/internal/util"
)

type LoggerServer struct {
	Level              string `json:"level" toml:"level" mapstructure:"level"`
	PrettyPrintConsole bool   `json:"prettyPrintConsole" toml:"pretty_print_console" mapstructure:"pretty_print_console"`
}

type EchoServer struct {
	// ListenAddress of the local companion API; keep it on loopback
	ListenAddress    string   `json:"listenAddress" toml:"listen_address" mapstructure:"listen_address"`
	Debug            bool     `json:"debug" toml:"debug" mapstructure:"debug"`
	EnableRecover    bool     `json:"enableRecover" toml:"enable_recover" mapstructure:"enable_recover"`
	EnableRequestID  bool     `json:"enableRequestId" toml:"enable_request_id" mapstructure:"enable_request_id"`
	EnableLogger     bool     `json:"enableLogger" toml:"enable_logger" mapstructure:"enable_logger"`
	EnableBodyLimit  bool     `json:"enableBodyLimit" toml:"enable_body_limit" mapstructure:"enable_body_limit"`
	BodyLimit        string   `json:"bodyLimit" toml:"body_limit" mapstructure:"body_limit"`
	EnableCORS       bool     `json:"enableCors" toml:"enable_cors" mapstructure:"enable_cors"`
	CORSAllowOrigins []string `json:"corsAllowOrigins" toml:"cors_allow_origins" mapstructure:"cors_allow_origins"`
}

type DeviceServer struct {
	// Address of the device bridge or emulator (host:port)
	Address       string        `json:"address" toml:"address" mapstructure:"address"`
	DialTimeout   time.Duration `json:"dialTimeout" toml:"dial_timeout" mapstructure:"dial_timeout"`
	InvokeTimeout time.Duration `json:"invokeTimeout" toml:"invoke_timeout" mapstructure:"invoke_timeout"`
	MaxFrameSize  int           `json:"maxFrameSize" toml:"max_frame_size" mapstructure:"max_frame_size"`
}

type MetricsServer struct {
	Enabled bool `json:"enabled" toml:"enabled" mapstructure:"enabled"`
	// ListenAddress serves /metrics while a command runs; empty disables the endpoint
	ListenAddress string `json:"listenAddress" toml:"listen_address" mapstructure:"listen_address"`
}

type WalletServer struct {
	// DefaultBatch is the number of addresses derived when none is given
	DefaultBatch int `json:"defaultBatch" toml:"default_batch" mapstructure:"default_batch"`
}

type Server struct {
	Echo    EchoServer    `json:"echo" toml:"echo" mapstructure:"echo"`
	Logger  LoggerServer  `json:"logger" toml:"logger" mapstructure:"logger"`
	Device  DeviceServer  `json:"device" toml:"device" mapstructure:"device"`
	Metrics MetricsServer `json:"metrics" toml:"metrics" mapstructure:"metrics"`
	Wallet  WalletServer  `json:"wallet" toml:"wallet" mapstructure:"wallet"`
}

var dotEnvOnce sync.Once

// DefaultServiceConfigFromEnv returns the server config as parsed from
// environment variables and their respective defaults defined below.
// A .env.local file in the working directory is applied first without
// overriding variables already set.
func DefaultServiceConfigFromEnv() Server {
	dotEnvOnce.Do(func() {
		DotEnvTryLoad(filepath.Join(".", ".env.local"))
	})

	return Server{
		Echo: EchoServer{
			ListenAddress:    util.GetEnv("SERVER_ECHO_LISTEN_ADDRESS", "127.0.0.1:8080"),
			Debug:            util.GetEnvAsBool("SERVER_ECHO_DEBUG", false),
			EnableRecover:    util.GetEnvAsBool("SERVER_ECHO_ENABLE_RECOVER_MIDDLEWARE", true),
			EnableRequestID:  util.GetEnvAsBool("SERVER_ECHO_ENABLE_REQUEST_ID_MIDDLEWARE", true),
			EnableLogger:     util.GetEnvAsBool("SERVER_ECHO_ENABLE_LOGGER_MIDDLEWARE", true),
			EnableBodyLimit:  util.GetEnvAsBool("SERVER_ECHO_ENABLE_BODY_LIMIT_MIDDLEWARE", true),
			BodyLimit:        util.GetEnv("SERVER_ECHO_BODY_LIMIT", "1M"),
			EnableCORS:       util.GetEnvAsBool("SERVER_ECHO_ENABLE_CORS_MIDDLEWARE", false),
			CORSAllowOrigins: util.GetEnvAsStringArr("SERVER_ECHO_CORS_ALLOW_ORIGINS", []string{"http://localhost"}),
		},
		Logger: LoggerServer{
			Level:              util.GetEnvEnum("SERVER_LOGGER_LEVEL", zerolog.InfoLevel.String(), []string{"trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"}),
			PrettyPrintConsole: util.GetEnvAsBool("SERVER_LOGGER_PRETTY_PRINT_CONSOLE", false),
		},
		Device: DeviceServer{
			Address:       util.GetEnv("DEVICE_ADDRESS", "127.0.0.1:7001"),
			DialTimeout:   util.GetEnvAsDuration("DEVICE_DIAL_TIMEOUT", 5*time.Second),
			InvokeTimeout: util.GetEnvAsDuration("DEVICE_INVOKE_TIMEOUT", 10*time.Second),
			MaxFrameSize:  util.GetEnvAsInt("DEVICE_MAX_FRAME_SIZE", 1<<20),
		},
		Metrics: MetricsServer{
			Enabled:       util.GetEnvAsBool("METRICS_ENABLED", false),
			ListenAddress: util.GetEnv("METRICS_LISTEN_ADDRESS", ""),
		},
		Wallet: WalletServer{
			DefaultBatch: util.GetEnvAsInt("WALLET_DEFAULT_BATCH", 10),
		},
	}
}

// DotEnvTryLoad loads path into the environment. A missing file is not an
// error; variables that are already set win.
func DotEnvTryLoad(path string) {
	if err := gotenv.Load(path); err != nil && !os.IsNotExist(errors.Cause(err)) {
		log.Warn().Err(err).Str("path", path).Msg("Failed to load .env file")
	}
}

// LoadFile overlays the TOML file at path onto cfg. Keys absent from the
// file keep their current value.
func LoadFile(path string, cfg *Server) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return errors.Wrapf(err, "failed to decode config file %s", path)
	}

	return nil
}

// Load returns the env config overlaid with the file at path, if any.
func Load(path string) (Server, error) {
	cfg := DefaultServiceConfigFromEnv()
	if path == "" {
		return cfg, nil
	}
	if err := LoadFile(path, &cfg); err != nil {
		return Server{}, err
	}
	return cfg, nil
}
