package qgate

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EndpointEnv is the environment variable that switches execution to a gateway.
const EndpointEnv = "QPU_GATEWAY_HOST"

/*
Config is the process-wide execution configuration. It is read once, when a
Dispatcher is built, and never consulted again; library code does not look
at the environment itself.
*/
type Config struct {
	// Endpoint selects remote execution when non-empty.
	Endpoint          string        `mapstructure:"endpoint"`
	Seed              uint64        `mapstructure:"seed"`
	MaxQubits         int           `mapstructure:"max_qubits"`
	MaxShots          int           `mapstructure:"max_shots"`
	Workers           int           `mapstructure:"workers"`
	SchedulingTimeout time.Duration `mapstructure:"scheduling_timeout"`
	Gateway           GatewayConfig `mapstructure:"gateway"`
}

// GatewayConfig configures the gateway server started by `qgate serve`.
type GatewayConfig struct {
	ListenAddr  string        `mapstructure:"listen_addr"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
	ChunkSize   int           `mapstructure:"chunk_size"`
	MaxShots    int           `mapstructure:"max_shots"`
	RedisAddr   string        `mapstructure:"redis_addr"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	RateLimit   time.Duration `mapstructure:"rate_limit"`
	RateBurst   int           `mapstructure:"rate_burst"`
	TLSCertFile string        `mapstructure:"tls_cert_file"`
	TLSKeyFile  string        `mapstructure:"tls_key_file"`
}

func NewConfig() *Config {
	return &Config{
		MaxQubits:         DefaultMaxQubits,
		MaxShots:          DefaultMaxShots,
		Workers:           4,
		SchedulingTimeout: 10 * time.Second,
		Gateway: GatewayConfig{
			ListenAddr:  ":50051",
			MetricsAddr: ":9090",
			ChunkSize:   256,
			MaxShots:    DefaultMaxShots,
			CacheTTL:    24 * time.Hour,
			RateLimit:   10 * time.Millisecond,
			RateBurst:   100,
		},
	}
}

// Remote reports whether a gateway endpoint is configured.
func (c *Config) Remote() bool {
	return c != nil && c.Endpoint != ""
}

/*
LoadConfig layers defaults, an optional config file and the environment.
QPU_GATEWAY_HOST maps to endpoint; every other key can be overridden with a
QGATE_ prefixed variable, e.g. QGATE_GATEWAY_CHUNK_SIZE.
*/
func LoadConfig(path string) (*Config, error) {
	defaults := NewConfig()
	v := viper.New()

	v.SetDefault("endpoint", "")
	v.SetDefault("seed", defaults.Seed)
	v.SetDefault("max_qubits", defaults.MaxQubits)
	v.SetDefault("max_shots", defaults.MaxShots)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("scheduling_timeout", defaults.SchedulingTimeout)
	v.SetDefault("gateway.listen_addr", defaults.Gateway.ListenAddr)
	v.SetDefault("gateway.metrics_addr", defaults.Gateway.MetricsAddr)
	v.SetDefault("gateway.chunk_size", defaults.Gateway.ChunkSize)
	v.SetDefault("gateway.max_shots", defaults.Gateway.MaxShots)
	v.SetDefault("gateway.redis_addr", "")
	v.SetDefault("gateway.cache_ttl", defaults.Gateway.CacheTTL)
	v.SetDefault("gateway.rate_limit", defaults.Gateway.RateLimit)
	v.SetDefault("gateway.rate_burst", defaults.Gateway.RateBurst)
	v.SetDefault("gateway.tls_cert_file", "")
	v.SetDefault("gateway.tls_key_file", "")

	v.SetEnvPrefix("QGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("endpoint", EndpointEnv); err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "load config")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)

	return cfg, nil
}
