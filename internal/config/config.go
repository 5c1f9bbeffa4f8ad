package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/kirillkom/resume-router/internal/core/domain"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
	ProviderGemini     = "gemini"
	ProviderBedrock    = "bedrock"

	DispatchLocal = "local"
	DispatchNATS  = "nats"

	JournalNone     = "none"
	JournalPostgres = "postgres"
	JournalSQLite   = "sqlite"
)

type Config struct {
	LLMProvider string        `env:"LLM_PROVIDER" env-default:"openrouter" yaml:"llm_provider"`
	LLMTimeout  time.Duration `env:"LLM_TIMEOUT" env-default:"30s" yaml:"llm_timeout"`

	OpenRouterAPIKey  string `env:"OPENROUTER_API_KEY" yaml:"openrouter_api_key"`
	OpenRouterModel   string `env:"OPENROUTER_MODEL" env-default:"deepseek/deepseek-chat" yaml:"openrouter_model"`
	OpenRouterBaseURL string `env:"OPENROUTER_BASE_URL" env-default:"https://openrouter.ai/api/v1" yaml:"openrouter_base_url"`

	OllamaURL   string `env:"OLLAMA_URL" env-default:"http://localhost:11434" yaml:"ollama_url"`
	OllamaModel string `env:"OLLAMA_MODEL" env-default:"llama3.1:8b" yaml:"ollama_model"`

	GeminiAPIKey string `env:"GEMINI_API_KEY" yaml:"gemini_api_key"`
	GeminiModel  string `env:"GEMINI_MODEL" env-default:"gemini-1.5-flash" yaml:"gemini_model"`

	BedrockRegion  string `env:"BEDROCK_REGION" env-default:"us-east-1" yaml:"bedrock_region"`
	BedrockModelID string `env:"BEDROCK_MODEL_ID" env-default:"anthropic.claude-v2" yaml:"bedrock_model_id"`

	SMTPServer   string        `env:"SMTP_SERVER" env-default:"smtp.gmail.com" yaml:"smtp_server"`
	SMTPPort     int           `env:"SMTP_PORT" env-default:"587" yaml:"smtp_port"`
	SMTPStartTLS bool          `env:"SMTP_STARTTLS" env-default:"true" yaml:"smtp_starttls"`
	SMTPTimeout  time.Duration `env:"SMTP_TIMEOUT" env-default:"30s" yaml:"smtp_timeout"`

	EmailUser     string `env:"EMAIL_USER" yaml:"email_user"`
	EmailPassword string `env:"EMAIL_PASSWORD" yaml:"email_password"`
	EmailFrom     string `env:"EMAIL_FROM" yaml:"email_from"`

	EmailIT         string `env:"EMAIL_IT" yaml:"email_it"`
	EmailHR         string `env:"EMAIL_HR,EMAIL_RH" yaml:"email_hr"`
	EmailMultimedia string `env:"EMAIL_MULTIMEDIA" yaml:"email_multimedia"`

	Host  string `env:"HOST" env-default:"0.0.0.0" yaml:"host"`
	Port  int    `env:"PORT" env-default:"8000" yaml:"port"`
	Debug bool   `env:"DEBUG" env-default:"false" yaml:"debug"`

	UploadDir   string `env:"UPLOAD_DIR" env-default:"uploads" yaml:"upload_dir"`
	MaxFileSize int64  `env:"MAX_FILE_SIZE" env-default:"10485760" yaml:"max_file_size"`

	LogLevel string `env:"LOG_LEVEL" env-default:"info" yaml:"log_level"`
	LogDir   string `env:"LOG_DIR" env-default:"logs" yaml:"log_dir"`

	DispatchMode      string `env:"DISPATCH_MODE" env-default:"local" yaml:"dispatch_mode"`
	PipelineWorkers   int    `env:"PIPELINE_WORKERS" env-default:"4" yaml:"pipeline_workers"`
	PipelineQueueSize int    `env:"PIPELINE_QUEUE_SIZE" env-default:"64" yaml:"pipeline_queue_size"`

	NATSURL     string `env:"NATS_URL" env-default:"nats://localhost:4222" yaml:"nats_url"`
	NATSSubject string `env:"NATS_SUBJECT" env-default:"documents.accepted" yaml:"nats_subject"`

	JournalDriver string `env:"JOURNAL_DRIVER" env-default:"none" yaml:"journal_driver"`
	PostgresDSN   string `env:"POSTGRES_DSN" yaml:"postgres_dsn"`
	SQLitePath    string `env:"SQLITE_PATH" env-default:"data/runs.db" yaml:"sqlite_path"`

	APIRateLimitRPS     float64       `env:"API_RATE_LIMIT_RPS" env-default:"0" yaml:"api_rate_limit_rps"`
	APIRateLimitBurst   int           `env:"API_RATE_LIMIT_BURST" env-default:"10" yaml:"api_rate_limit_burst"`
	APIMaxInFlight      int           `env:"API_MAX_IN_FLIGHT" env-default:"64" yaml:"api_max_in_flight"`
	APIBackpressureWait time.Duration `env:"API_BACKPRESSURE_WAIT" env-default:"250ms" yaml:"api_backpressure_wait"`
	APIMaxConnections   int           `env:"API_MAX_CONNECTIONS" env-default:"256" yaml:"api_max_connections"`

	BreakerEnabled      bool          `env:"BREAKER_ENABLED" env-default:"true" yaml:"breaker_enabled"`
	BreakerMinRequests  uint32        `env:"BREAKER_MIN_REQUESTS" env-default:"10" yaml:"breaker_min_requests"`
	BreakerFailureRatio float64       `env:"BREAKER_FAILURE_RATIO" env-default:"0.5" yaml:"breaker_failure_ratio"`
	BreakerOpenTimeout  time.Duration `env:"BREAKER_OPEN_TIMEOUT" env-default:"30s" yaml:"breaker_open_timeout"`

	WorkerMetricsPort int `env:"WORKER_METRICS_PORT" env-default:"9090" yaml:"worker_metrics_port"`
}

// Load reads CONFIG_FILE when set, then lets the environment override it.
func Load() (Config, error) {
	var cfg Config
	var err error
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.LLMProvider {
	case ProviderOpenRouter, ProviderOllama, ProviderGemini, ProviderBedrock:
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER %q is not supported", c.LLMProvider))
	}
	switch c.DispatchMode {
	case DispatchLocal, DispatchNATS:
	default:
		errs = append(errs, fmt.Errorf("DISPATCH_MODE %q is not supported", c.DispatchMode))
	}
	switch c.JournalDriver {
	case JournalNone, JournalSQLite:
	case JournalPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required when JOURNAL_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("JOURNAL_DRIVER %q is not supported", c.JournalDriver))
	}
	if c.MaxFileSize <= 0 {
		errs = append(errs, errors.New("MAX_FILE_SIZE must be positive"))
	}
	if c.PipelineWorkers <= 0 {
		errs = append(errs, errors.New("PIPELINE_WORKERS must be positive"))
	}
	if c.PipelineQueueSize < 0 {
		errs = append(errs, errors.New("PIPELINE_QUEUE_SIZE must not be negative"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d is out of range", c.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Sender falls back to the SMTP login when EMAIL_FROM is unset.
func (c Config) Sender() string {
	if strings.TrimSpace(c.EmailFrom) != "" {
		return c.EmailFrom
	}
	return c.EmailUser
}

func (c Config) Recipients() domain.RecipientDirectory {
	return domain.RecipientDirectory{
		domain.DomainIT:         strings.TrimSpace(c.EmailIT),
		domain.DomainHR:         strings.TrimSpace(c.EmailHR),
		domain.DomainMultimedia: strings.TrimSpace(c.EmailMultimedia),
	}
}
