package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Advisory  AdvisoryConfig  `yaml:"advisory"`
	Variant   VariantConfig   `yaml:"variant"`
	Server    ServerConfig    `yaml:"server"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Processor ProcessorConfig `yaml:"processor"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Advisory providers
const (
	ProviderOpenAI  = "openai"
	ProviderBedrock = "bedrock"
	ProviderGemini  = "gemini"
)

const (
	openAIKeyName = "OPENAI_API_KEY"
	geminiKeyName = "GEMINI_API_KEY"
)

// AdvisoryConfig holds settings for the external text-completion service
type AdvisoryConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Provider       string        `yaml:"provider"`
	Model          string        `yaml:"model"` // empty selects the provider default
	BaseURL        string        `yaml:"base_url"`
	APIKeyEnv      string        `yaml:"api_key_env"`
	SecretsFile    string        `yaml:"secrets_file"`
	SecretKey      string        `yaml:"secret_key"`
	AWSRegion      string        `yaml:"aws_region"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxPromptChars int           `yaml:"max_prompt_chars"`
	MaxTokens      int           `yaml:"max_tokens"`
	Fallback       string        `yaml:"fallback"`
}

// VariantConfig selects between the dashboard variants
type VariantConfig struct {
	UseSecretStore  bool `yaml:"use_secret_store"`
	ExtendedMetrics bool `yaml:"extended_metrics"`
}

// ServerConfig holds HTTP API configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Addr returns the listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// KafkaConfig holds Kafka-related configuration
type KafkaConfig struct {
	Brokers       []string      `yaml:"brokers"`
	Topic         string        `yaml:"topic"`
	GroupID       string        `yaml:"group_id"`
	ConsumerCount int           `yaml:"consumer_count"`
	BatchSize     int           `yaml:"batch_size"`
	BatchTimeout  time.Duration `yaml:"batch_timeout"`
}

// InfluxDBConfig holds InfluxDB-related configuration
type InfluxDBConfig struct {
	URL          string        `yaml:"url"`
	Org          string        `yaml:"org"`
	Token        string        `yaml:"token"`
	Bucket       string        `yaml:"bucket"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// ProcessorConfig holds processor-related configuration
type ProcessorConfig struct {
	WorkerCount        int           `yaml:"worker_count"`
	QueueSize          int           `yaml:"queue_size"`
	EnableAggregations bool          `yaml:"enable_aggregations"`
	FlushInterval      time.Duration `yaml:"flush_interval"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | console
}

// Default returns the configuration used when neither a file nor env vars set a value
func Default() *Config {
	return &Config{
		Advisory: AdvisoryConfig{
			Enabled:        true,
			Provider:       ProviderOpenAI,
			BaseURL:        "https://api.openai.com/v1",
			APIKeyEnv:      openAIKeyName,
			SecretsFile:    ".streamlit/secrets.toml",
			SecretKey:      openAIKeyName,
			AWSRegion:      "us-east-1",
			Timeout:        30 * time.Second,
			MaxPromptChars: 1200,
			MaxTokens:      400,
			Fallback:       "AI advice is unavailable right now. The computed metrics above are still valid.",
		},
		Variant: VariantConfig{
			UseSecretStore:  false,
			ExtendedMetrics: true,
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			AllowedOrigins:  []string{"http://localhost:5173", "http://localhost:8080"},
			ShutdownTimeout: 15 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			Topic:         "pump-site-readings",
			GroupID:       "solarwaterflow",
			ConsumerCount: 3,
			BatchSize:     500,
			BatchTimeout:  1 * time.Second,
		},
		InfluxDB: InfluxDBConfig{
			URL:          "http://localhost:8086",
			Org:          "solarwaterflow",
			Bucket:       "pump-sites",
			WriteTimeout: 10 * time.Second,
		},
		Processor: ProcessorConfig{
			WorkerCount:        4,
			QueueSize:          10000,
			EnableAggregations: true,
			FlushInterval:      15 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in that order. A .env file in the working directory
// is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	a := &cfg.Advisory
	a.Enabled = getEnvBool("ADVISORY_ENABLED", a.Enabled)
	a.Provider = strings.ToLower(getEnv("ADVISORY_PROVIDER", a.Provider))
	a.Model = getEnv("ADVISORY_MODEL", a.Model)
	a.BaseURL = getEnv("ADVISORY_BASE_URL", a.BaseURL)
	if a.Provider == ProviderGemini && a.APIKeyEnv == openAIKeyName {
		a.APIKeyEnv = geminiKeyName
	}
	if a.Provider == ProviderGemini && a.SecretKey == openAIKeyName {
		a.SecretKey = geminiKeyName
	}
	a.APIKeyEnv = getEnv("ADVISORY_API_KEY_ENV", a.APIKeyEnv)
	a.SecretsFile = getEnv("ADVISORY_SECRETS_FILE", a.SecretsFile)
	a.SecretKey = getEnv("ADVISORY_SECRET_KEY", a.SecretKey)
	a.AWSRegion = getEnv("AWS_REGION", a.AWSRegion)
	a.Timeout = getEnvDuration("ADVISORY_TIMEOUT", a.Timeout)
	a.MaxPromptChars = getEnvInt("ADVISORY_MAX_PROMPT_CHARS", a.MaxPromptChars)
	a.MaxTokens = getEnvInt("ADVISORY_MAX_TOKENS", a.MaxTokens)
	a.Fallback = getEnv("ADVISORY_FALLBACK", a.Fallback)

	cfg.Variant.UseSecretStore = getEnvBool("USE_SECRET_STORE", cfg.Variant.UseSecretStore)
	cfg.Variant.ExtendedMetrics = getEnvBool("EXTENDED_METRICS", cfg.Variant.ExtendedMetrics)

	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("SERVER_PORT", cfg.Server.Port)
	cfg.Server.AllowedOrigins = getEnvStringSlice("SERVER_ALLOWED_ORIGINS", cfg.Server.AllowedOrigins)
	cfg.Server.ShutdownTimeout = getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)

	cfg.Kafka.Brokers = getEnvStringSlice("KAFKA_BROKERS", cfg.Kafka.Brokers)
	cfg.Kafka.Topic = getEnv("KAFKA_TOPIC", cfg.Kafka.Topic)
	cfg.Kafka.GroupID = getEnv("KAFKA_GROUP_ID", cfg.Kafka.GroupID)
	cfg.Kafka.ConsumerCount = getEnvInt("KAFKA_CONSUMER_COUNT", cfg.Kafka.ConsumerCount)
	cfg.Kafka.BatchSize = getEnvInt("KAFKA_BATCH_SIZE", cfg.Kafka.BatchSize)
	cfg.Kafka.BatchTimeout = getEnvDuration("KAFKA_BATCH_TIMEOUT", cfg.Kafka.BatchTimeout)

	cfg.InfluxDB.URL = getEnv("INFLUXDB_URL", cfg.InfluxDB.URL)
	cfg.InfluxDB.Org = getEnv("INFLUXDB_ORG", cfg.InfluxDB.Org)
	cfg.InfluxDB.Token = getEnv("INFLUX_TOKEN", cfg.InfluxDB.Token)
	cfg.InfluxDB.Bucket = getEnv("INFLUXDB_BUCKET", cfg.InfluxDB.Bucket)
	cfg.InfluxDB.WriteTimeout = getEnvDuration("INFLUXDB_WRITE_TIMEOUT", cfg.InfluxDB.WriteTimeout)

	cfg.Processor.WorkerCount = getEnvInt("PROCESSOR_WORKER_COUNT", cfg.Processor.WorkerCount)
	cfg.Processor.QueueSize = getEnvInt("PROCESSOR_QUEUE_SIZE", cfg.Processor.QueueSize)
	cfg.Processor.EnableAggregations = getEnvBool("PROCESSOR_ENABLE_AGGREGATIONS", cfg.Processor.EnableAggregations)
	cfg.Processor.FlushInterval = getEnvDuration("PROCESSOR_FLUSH_INTERVAL", cfg.Processor.FlushInterval)

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)
}

// Validate checks numeric settings and enumerations
func (c *Config) Validate() error {
	switch c.Advisory.Provider {
	case ProviderOpenAI, ProviderBedrock, ProviderGemini:
	default:
		return fmt.Errorf("advisory.provider %q: must be one of openai, bedrock, gemini", c.Advisory.Provider)
	}
	if c.Advisory.Timeout <= 0 {
		return fmt.Errorf("advisory.timeout must be positive, got %s", c.Advisory.Timeout)
	}
	if c.Advisory.MaxPromptChars < 200 {
		return fmt.Errorf("advisory.max_prompt_chars must be at least 200, got %d", c.Advisory.MaxPromptChars)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Kafka.ConsumerCount <= 0 {
		return fmt.Errorf("kafka.consumer_count must be positive, got %d", c.Kafka.ConsumerCount)
	}
	if c.Kafka.BatchSize <= 0 {
		return fmt.Errorf("kafka.batch_size must be positive, got %d", c.Kafka.BatchSize)
	}
	if c.InfluxDB.WriteTimeout <= 0 {
		return fmt.Errorf("influxdb.write_timeout must be positive, got %s", c.InfluxDB.WriteTimeout)
	}
	if c.Processor.WorkerCount <= 0 {
		return fmt.Errorf("processor.worker_count must be positive, got %d", c.Processor.WorkerCount)
	}
	if c.Processor.QueueSize <= 0 {
		return fmt.Errorf("processor.queue_size must be positive, got %d", c.Processor.QueueSize)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q: must be json or console", c.Logging.Format)
	}
	return nil
}

// Helper functions to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
