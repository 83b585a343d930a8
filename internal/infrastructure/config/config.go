package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	ConsumerGroup string   `mapstructure:"consumer_group"`
	EventsTopic   string   `mapstructure:"events_topic"`
	DueTopic      string   `mapstructure:"due_topic"`
	// HandlerAttempts bounds tries per due-payment message before it is
	// committed anyway.
	HandlerAttempts int           `mapstructure:"handler_attempts"`
	RetryBackoff    time.Duration `mapstructure:"retry_backoff"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
	RateTTL  time.Duration `mapstructure:"rate_ttl"`
}

// GatewayConfig selects and configures the payment providers.
type GatewayConfig struct {
	Timeout           time.Duration `mapstructure:"timeout"`
	Currency          string        `mapstructure:"currency"`
	RazorpayKeyID     string        `mapstructure:"razorpay_key_id"`
	RazorpayKeySecret string        `mapstructure:"razorpay_key_secret"`
	// StubEnabled routes capabilities without a real provider to the stub.
	// Charges for those capabilities fail when it is off.
	StubEnabled bool `mapstructure:"stub_enabled"`
	// StubDeclineRefs are profile references the stub provider declines.
	StubDeclineRefs []string `mapstructure:"stub_decline_refs"`
}

type OutboxConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
}

type TelemetryConfig struct {
	LogLevel     string  `mapstructure:"log_level"`
	LogFormat    string  `mapstructure:"log_format"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

// GRPCConfig holds optional server features. TLS is enabled when both
// files are set.
type GRPCConfig struct {
	Reflection  bool   `mapstructure:"reflection"`
	TLSCertFile string `mapstructure:"tls_cert_file"`
	TLSKeyFile  string `mapstructure:"tls_key_file"`
}

// HTTPConfig configures the reporting endpoints. CORS is off unless origins
// are listed.
type HTTPConfig struct {
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

type Config struct {
	GRPCPort    int             `mapstructure:"grpc_port"`
	HTTPPort    int             `mapstructure:"http_port"`
	GRPC        GRPCConfig      `mapstructure:"grpc"`
	HTTP        HTTPConfig      `mapstructure:"http"`
	DB          DatabaseConfig  `mapstructure:"db"`
	Kafka       KafkaConfig     `mapstructure:"kafka"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Gateway     GatewayConfig   `mapstructure:"gateway"`
	Outbox      OutboxConfig    `mapstructure:"outbox"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
	ServiceName string          `mapstructure:"service_name"`
}

func (c Config) Validate() error {
	var errs []error
	if c.DB.Password == "" {
		errs = append(errs, errors.New("DB_PASSWORD environment variable is required"))
	}
	if len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS must list at least one broker"))
	}
	if c.Gateway.Timeout <= 0 {
		errs = append(errs, errors.New("GATEWAY_TIMEOUT must be positive"))
	}
	if (c.Gateway.RazorpayKeyID == "") != (c.Gateway.RazorpayKeySecret == "") {
		errs = append(errs, errors.New("GATEWAY_RAZORPAY_KEY_ID and GATEWAY_RAZORPAY_KEY_SECRET must be set together"))
	}
	if (c.GRPC.TLSCertFile == "") != (c.GRPC.TLSKeyFile == "") {
		errs = append(errs, errors.New("GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE must be set together"))
	}
	if c.Outbox.BatchSize <= 0 {
		errs = append(errs, errors.New("OUTBOX_BATCH_SIZE must be positive"))
	}
	return errors.Join(errs...)
}

// Load reads configuration from the environment, an optional .env file in
// the working directory and an optional settlementd.yaml.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("settlementd")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/settlementd")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	// AutomaticEnv yields a single string for list keys.
	cfg.Kafka.Brokers = splitList(v.GetString("kafka.brokers"))
	cfg.Gateway.StubDeclineRefs = splitList(v.GetString("gateway.stub_decline_refs"))
	cfg.HTTP.CORSAllowedOrigins = splitList(v.GetString("http.cors_allowed_origins"))
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("grpc_port", 9091)
	v.SetDefault("http_port", 8091)
	v.SetDefault("service_name", "settlement-service")
	v.SetDefault("grpc.reflection", false)
	v.SetDefault("grpc.tls_cert_file", "")
	v.SetDefault("grpc.tls_key_file", "")
	v.SetDefault("http.cors_allowed_origins", "")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "settlement")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "settlement")
	v.SetDefault("db.sslmode", "require")
	v.SetDefault("db.max_conns", 20)

	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.consumer_group", "settlement-service")
	v.SetDefault("kafka.events_topic", "settlement-events")
	v.SetDefault("kafka.due_topic", "settlement.payments.due")
	v.SetDefault("kafka.handler_attempts", 3)
	v.SetDefault("kafka.retry_backoff", "500ms")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl", "2m")
	v.SetDefault("redis.rate_ttl", "5m")

	v.SetDefault("gateway.timeout", "30s")
	v.SetDefault("gateway.currency", "USD")
	v.SetDefault("gateway.razorpay_key_id", "")
	v.SetDefault("gateway.razorpay_key_secret", "")
	v.SetDefault("gateway.stub_enabled", false)
	v.SetDefault("gateway.stub_decline_refs", "")

	v.SetDefault("outbox.poll_interval", "1s")
	v.SetDefault("outbox.batch_size", 100)

	v.SetDefault("telemetry.log_level", "info")
	v.SetDefault("telemetry.log_format", "json")
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.sample_ratio", 0.1)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
