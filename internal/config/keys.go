package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kDuration
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

// account is the secret-store account name for a secret key.
func (s keySpec) account() string {
	return strings.ReplaceAll(s.key, ".", "_")
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "DAYBOARD_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "server.api_token", typ: kString, env: "DAYBOARD_SERVER_API_TOKEN",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Server.APIToken = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.APIToken },
	},
	{
		key: "storage.driver", typ: kString, env: "DAYBOARD_STORAGE_DRIVER",
		apply:   func(cfg *Config, v any) { cfg.Storage.Driver = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.Driver },
	},
	{
		key: "storage.data_dir", typ: kString, env: "DAYBOARD_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "storage.database_url", typ: kString, env: "DAYBOARD_STORAGE_DATABASE_URL",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Storage.DatabaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DatabaseURL },
	},
	{
		key: "responder.provider", typ: kString, env: "DAYBOARD_RESPONDER_PROVIDER",
		apply:   func(cfg *Config, v any) { cfg.Responder.Provider = v.(string) },
		extract: func(cfg Config) any { return cfg.Responder.Provider },
	},
	{
		key: "responder.base_url", typ: kString, env: "DAYBOARD_RESPONDER_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Responder.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Responder.BaseURL },
	},
	{
		key: "responder.api_key", typ: kString, env: "DAYBOARD_RESPONDER_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Responder.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Responder.APIKey },
	},
	{
		key: "responder.timeout", typ: kDuration, env: "DAYBOARD_RESPONDER_TIMEOUT",
		apply:   func(cfg *Config, v any) { cfg.Responder.Timeout = v.(time.Duration) },
		extract: func(cfg Config) any { return cfg.Responder.Timeout },
	},
	{
		key: "responder.ollama_url", typ: kString, env: "DAYBOARD_RESPONDER_OLLAMA_URL",
		apply:   func(cfg *Config, v any) { cfg.Responder.OllamaURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Responder.OllamaURL },
	},
	{
		key: "responder.model", typ: kString, env: "DAYBOARD_RESPONDER_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Responder.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.Responder.Model },
	},
	{
		key: "planner.timezone", typ: kString, env: "DAYBOARD_PLANNER_TIMEZONE",
		apply:   func(cfg *Config, v any) { cfg.Planner.Timezone = v.(string) },
		extract: func(cfg Config) any { return cfg.Planner.Timezone },
	},
	{
		key: "log.level", typ: kString, env: "DAYBOARD_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
	{
		key: "log.format", typ: kString, env: "DAYBOARD_LOG_FORMAT",
		apply:   func(cfg *Config, v any) { cfg.Log.Format = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Format },
	},
}

func lookupSpec(key string) (keySpec, bool) {
	for _, s := range specs {
		if s.key == key {
			return s, true
		}
	}
	return keySpec{}, false
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kDuration:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok && v != "" {
				d, err := time.ParseDuration(v)
				if err != nil {
					return fmt.Errorf("invalid duration for %s: %w", s.key, err)
				}
				s.apply(cfg, d)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		case kDuration:
			if d, err := time.ParseDuration(raw); err == nil {
				s.apply(cfg, d)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse duration from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
