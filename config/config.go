package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	HTTP     ServerConfig
	GRPC     ServerConfig
	MySQL    MySQLConfig
	Log      LogConfig
	Pay      PayConfig
	Webhooks WebhooksConfig
	Host     HostConfig
	Redis    RedisConfig
	Jobs     JobsConfig
}

type AppConfig struct {
	ServiceName string
	APIKey      string
}

type ServerConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

// PayConfig holds the merchant credentials and gateway tuning.
type PayConfig struct {
	AccountCode         string
	APIToken            string
	ServiceID           string
	ServiceSecret       string
	OtherServiceSecrets map[string]string
	ProviderConfigID    string

	ReturnURL      string
	WebhookBaseURL string
	TGUAPIURL      string
	RESTAPIURL     string
	RESTAPIV3URL   string

	TestMode            bool
	Debug               bool
	CaptureMode         string
	PaymentDescriptions map[string]string

	HTTPTimeout    time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	ConfigCacheTTL time.Duration
}

type WebhooksConfig struct {
	Delay         time.Duration
	MaxAttempts   int32
	RetryInterval time.Duration
	JobBatchSize  int32
}

type HostConfig struct {
	EventsURL   string
	HTTPTimeout time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JobsConfig struct {
	WebhookDispatchInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	pay := PayConfig{
		AccountCode:         strings.TrimSpace(os.Getenv("PAY_AT_CODE")),
		APIToken:            strings.TrimSpace(os.Getenv("PAY_API_TOKEN")),
		ServiceID:           strings.TrimSpace(os.Getenv("PAY_SL_CODE")),
		ServiceSecret:       strings.TrimSpace(os.Getenv("PAY_SL_SECRET")),
		OtherServiceSecrets: getMapEnv("PAY_OTHER_SL_CODES", ":"),
		ProviderConfigID:    getEnv("PAY_PROVIDER_ID", "pay"),
		ReturnURL:           getEnv("PAY_RETURN_URL", ""),
		WebhookBaseURL:      strings.TrimRight(getEnv("PAY_WEBHOOK_BASE_URL", ""), "/"),
		TGUAPIURL:           getEnv("PAY_TGU_API_URL", ""),
		RESTAPIURL:          getEnv("PAY_REST_API_URL", ""),
		RESTAPIV3URL:        getEnv("PAY_REST_API_V3_URL", ""),
		TestMode:            getBoolEnv("PAY_TEST_MODE", true),
		Debug:               getBoolEnv("PAY_DEBUG", false),
		CaptureMode:         strings.ToLower(getEnv("PAY_CAPTURE_MODE", "manual")),
		PaymentDescriptions: getMapEnv("PAY_PAYMENT_DESCRIPTIONS", "="),
		HTTPTimeout:         getSecondsEnv("PAY_HTTP_TIMEOUT_SECONDS", 15*time.Second),
		RateLimitRPS:        getFloatEnv("PAY_RATE_LIMIT_RPS", 10),
		RateLimitBurst:      getIntEnv("PAY_RATE_LIMIT_BURST", 20),
		ConfigCacheTTL:      getSecondsEnv("PAY_CONFIG_CACHE_TTL_SECONDS", 86400*time.Second),
	}
	if pay.AccountCode == "" || pay.APIToken == "" || pay.ServiceID == "" || pay.ServiceSecret == "" {
		return nil, errors.New("PAY_AT_CODE, PAY_API_TOKEN, PAY_SL_CODE and PAY_SL_SECRET environment variables are required")
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "paynl-service"),
			APIKey:      getEnv("APP_API_KEY", ""),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		GRPC: ServerConfig{
			Host: getEnv("GRPC_HOST", "0.0.0.0"),
			Port: getEnv("GRPC_PORT", "9090"),
		},
		MySQL: MySQLConfig{
			DSN:             mysqlDSN,
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Pay: pay,
		Webhooks: WebhooksConfig{
			Delay:         getMillisecondsEnv("WEBHOOK_DELAY_MS", 5000*time.Millisecond),
			MaxAttempts:   int32(getIntEnv("WEBHOOK_RETRIES", 3)),
			RetryInterval: getSecondsEnv("WEBHOOK_RETRY_INTERVAL_SECONDS", 30*time.Second),
			JobBatchSize:  int32(getIntEnv("WEBHOOK_JOB_BATCH_SIZE", 100)),
		},
		Host: HostConfig{
			EventsURL:   getEnv("HOST_EVENTS_URL", ""),
			HTTPTimeout: getSecondsEnv("HOST_HTTP_TIMEOUT_SECONDS", 10*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Jobs: JobsConfig{
			WebhookDispatchInterval: getSecondsEnv("JOBS_WEBHOOK_DISPATCH_INTERVAL_SECONDS", 5*time.Second),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

func getMillisecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if ms, err := strconv.Atoi(value); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}

// getMapEnv parses "k1<sep>v1,k2<sep>v2". Malformed pairs are skipped.
func getMapEnv(key, sep string) map[string]string {
	out := map[string]string{}
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return out
	}
	for _, pair := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(pair, sep)
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			continue
		}
		out[k] = strings.TrimSpace(v)
	}
	return out
}
