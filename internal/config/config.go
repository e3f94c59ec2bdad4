package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

const (
	ProviderMock   = "mock"
	ProviderVertex = "vertex"
	ProviderGemini = "gemini"
)

const (
	StorageMemory    = "memory"
	StorageFirestore = "firestore"
	StoragePostgres  = "postgres"
	StorageNone      = "none"
)

// EnvConfigFile names the YAML file read when no path is given to Load.
const EnvConfigFile = "FARUM_CONFIG_FILE"

type Config struct {
	Mode Mode `yaml:"mode"`

	Port string `yaml:"port"`

	Provider     string `yaml:"provider"` // "mock", "vertex" or "gemini"
	GCPProjectID string `yaml:"gcp_project"`
	GCPLocation  string `yaml:"gcp_location"`
	APIKey       string `yaml:"api_key"`
	ModelName    string `yaml:"model"`

	Temperature    float32       `yaml:"temperature"`
	MaxAttempts    int           `yaml:"max_attempts"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	StorageBackend string `yaml:"storage_backend"` // "memory", "firestore", "postgres" or "none"
	PostgresDSN    string `yaml:"postgres_dsn"`
	LogCapacity    int    `yaml:"log_capacity"`

	RabbitMQURL string `yaml:"rabbitmq_url"`
	InputQueue  string `yaml:"input_queue"`
	OutputQueue string `yaml:"output_queue"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func defaults() *Config {
	return &Config{
		Mode:           ModeLocal,
		Port:           "8080",
		GCPLocation:    "us-central1",
		ModelName:      "gemini-2.5-flash",
		Temperature:    0.7,
		MaxAttempts:    5,
		RequestTimeout: 60 * time.Second,
		StorageBackend: StorageMemory,
		LogCapacity:    256,
		InputQueue:     "utterances",
		OutputQueue:    "directives",
		LogLevel:       "info",
		LogFormat:      "json",
	}
}

// Load builds the config from defaults, then the optional YAML file at path
// (or $FARUM_CONFIG_FILE), then environment variables.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.Provider == "" {
		cfg.Provider = ProviderMock
		if cfg.Mode == ModeGCP {
			cfg.Provider = ProviderVertex
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Mode = Mode(getEnv("FARUM_MODE", string(c.Mode)))
	c.Port = getEnv("FARUM_PORT", c.Port)

	c.Provider = getEnv("FARUM_LLM_PROVIDER", c.Provider)
	c.GCPProjectID = getEnv("FARUM_GCP_PROJECT", c.GCPProjectID)
	c.GCPLocation = getEnv("FARUM_GCP_LOCATION", c.GCPLocation)
	c.APIKey = getEnv("FARUM_API_KEY", c.APIKey)
	c.ModelName = getEnv("FARUM_MODEL_NAME", c.ModelName)

	c.StorageBackend = getEnv("FARUM_STORAGE_BACKEND", c.StorageBackend)
	c.PostgresDSN = getEnv("FARUM_POSTGRES_DSN", c.PostgresDSN)

	c.RabbitMQURL = getEnv("FARUM_RABBITMQ_URL", c.RabbitMQURL)
	c.InputQueue = getEnv("FARUM_INPUT_QUEUE", c.InputQueue)
	c.OutputQueue = getEnv("FARUM_OUTPUT_QUEUE", c.OutputQueue)

	c.LogLevel = getEnv("FARUM_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("FARUM_LOG_FORMAT", c.LogFormat)

	var err error
	if c.Temperature, err = getFloat32Env("FARUM_TEMPERATURE", c.Temperature); err != nil {
		return err
	}
	if c.MaxAttempts, err = getIntEnv("FARUM_MAX_ATTEMPTS", c.MaxAttempts); err != nil {
		return err
	}
	if c.LogCapacity, err = getIntEnv("FARUM_LOG_CAPACITY", c.LogCapacity); err != nil {
		return err
	}
	if c.RequestTimeout, err = getDurationEnv("FARUM_REQUEST_TIMEOUT", c.RequestTimeout); err != nil {
		return err
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Mode {
	case ModeLocal, ModeGCP:
	default:
		errs = append(errs, fmt.Errorf("mode must be local or gcp, got %q", c.Mode))
	}

	switch c.Provider {
	case ProviderMock:
	case ProviderVertex:
		if c.GCPProjectID == "" {
			errs = append(errs, errors.New("FARUM_GCP_PROJECT must be set for the vertex provider"))
		}
	case ProviderGemini:
		if c.APIKey == "" {
			errs = append(errs, errors.New("FARUM_API_KEY must be set for the gemini provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.Provider))
	}

	switch c.StorageBackend {
	case StorageMemory, StorageNone:
	case StorageFirestore:
		if c.GCPProjectID == "" {
			errs = append(errs, errors.New("FARUM_GCP_PROJECT is required for Firestore storage backend"))
		}
	case StoragePostgres:
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("FARUM_POSTGRES_DSN is required for postgres storage backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.StorageBackend))
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		errs = append(errs, fmt.Errorf("temperature must be within [0, 2], got %v", c.Temperature))
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max attempts must be >= 1, got %d", c.MaxAttempts))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("request timeout must not be negative, got %s", c.RequestTimeout))
	}

	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func getFloat32Env(key string, def float32) (float32, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", key, v)
	}
	return float32(f), nil
}

func getDurationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}
