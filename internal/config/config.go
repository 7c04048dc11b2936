package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Responder ResponderConfig
	Planner   PlannerConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port     int
	APIToken string
}

type StorageConfig struct {
	Driver      string
	DataDir     string
	DatabaseURL string
}

type ResponderConfig struct {
	// Provider is "huggingface" (hosted, needs APIKey) or "ollama" (local).
	Provider  string
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	OllamaURL string
	Model     string
}

type PlannerConfig struct {
	// Timezone is an IANA name, or "Local" for the host zone.
	Timezone string
}

type LogConfig struct {
	Level  string
	Format string
}

const (
	driverSQLite   = "sqlite"
	driverPostgres = "postgres"
)

const (
	providerHuggingFace = "huggingface"
	providerOllama      = "ollama"
)

const keychainService = "dayboard"

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4100,
		},
		Storage: StorageConfig{
			Driver:  driverSQLite,
			DataDir: defaultDataDir(),
		},
		Responder: ResponderConfig{
			Provider:  providerHuggingFace,
			BaseURL:   "https://api-inference.huggingface.co/models/facebook/opt-350m",
			Timeout:   30 * time.Second,
			OllamaURL: "http://localhost:11434",
			Model:     "llama3.2",
		},
		Planner: PlannerConfig{
			Timezone: "Local",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Location resolves the configured planner timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Planner.Timezone == "" || strings.EqualFold(c.Planner.Timezone, "Local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Planner.Timezone)
}

// Load reads configuration from the platform-native backend, environment
// variables, and platform secret store.
//
// On macOS the backend is UserDefaults (domain: com.dayboard.app) and secrets
// fall back to macOS Keychain.
// Elsewhere the backend is a YAML file at $XDG_CONFIG_HOME/dayboard/config.yaml
// and secrets fall back to a secrets.json file in the data directory.
//
// Environment variables (DAYBOARD_*) override backend values on all platforms.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), keychainReader{})
}

// keychain abstracts Keychain access for testing.
type keychain interface {
	Get(service, account string) (string, error)
}

func loadWith(b ConfigBackend, kc keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	// Secrets still empty after env fall back to the platform secret store.
	for _, s := range specs {
		if !s.secret || s.extract(cfg).(string) != "" {
			continue
		}
		if v, err := kc.Get(keychainService, s.account()); err == nil && v != "" {
			s.apply(&cfg, v)
		}
	}

	dir, err := homedir.Expand(cfg.Storage.DataDir)
	if err != nil {
		return Config{}, fmt.Errorf("expanding storage.data_dir: %w", err)
	}
	cfg.Storage.DataDir = dir

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	switch cfg.Storage.Driver {
	case driverSQLite:
	case driverPostgres:
		if cfg.Storage.DatabaseURL == "" {
			return fmt.Errorf("missing required config: storage.database_url for postgres driver. "+
				"Set it via environment variable DAYBOARD_STORAGE_DATABASE_URL%s", secretHint("storage_database_url"))
		}
	default:
		return fmt.Errorf("invalid storage.driver %q: must be %q or %q", cfg.Storage.Driver, driverSQLite, driverPostgres)
	}
	if _, err := cfg.Location(); err != nil {
		return fmt.Errorf("invalid planner.timezone %q: %w", cfg.Planner.Timezone, err)
	}
	switch cfg.Responder.Provider {
	case providerHuggingFace, providerOllama:
	default:
		return fmt.Errorf("invalid responder.provider %q: must be %q or %q", cfg.Responder.Provider, providerHuggingFace, providerOllama)
	}
	if cfg.Responder.Timeout <= 0 {
		return fmt.Errorf("invalid responder.timeout %s: must be positive", cfg.Responder.Timeout)
	}
	return nil
}

// keychainReader reads from the platform secret store.
type keychainReader struct{}

func (keychainReader) Get(service, account string) (string, error) {
	out, err := keychainExec(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
