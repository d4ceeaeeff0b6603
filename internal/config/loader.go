package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix scopes environment overrides, e.g. ISPORA_SERVER_PORT.
const EnvPrefix = "ISPORA_"

const maxConfigFileSize = 1024 * 1024

const defaultsYAML = `
server:
  host: 0.0.0.0
  port: 3001
  allow_subnet: ""
  request_timeout: 30s
  shutdown_timeout: 10s
database:
  path: ./ispora.db
auth:
  dev_key: CHANGE_ME_STRONG_KEY
log:
  level: info
  file: ""
  max_size_mb: 50
  max_backups: 5
  max_age_days: 30
  compress: true
cors:
  allowed_origins:
    - http://localhost:5173
    - http://localhost:5174
    - http://localhost:5175
    - http://localhost:3000
    - https://ispora.app
    - https://www.ispora.app
maintenance:
  schedule: "@daily"
`

// aliases maps the unprefixed variables the deployment scripts already set.
var aliases = map[string]string{
	"HOST":           "server.host",
	"PORT":           "server.port",
	"DB_PATH":        "database.path",
	"DEV_ACCESS_KEY": "auth.dev_key",
	"LOG_LEVEL":      "log.level",
}

// listKeys are read from the environment as comma-separated values.
var listKeys = map[string]bool{
	"cors.allowed_origins": true,
}

// LoadDotEnv reads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error. Variables already set are left alone.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration.
//
// Precedence, lowest to highest:
//  1. built-in defaults
//  2. the YAML file at path, when path is not empty
//  3. unprefixed aliases (HOST, PORT, DB_PATH, DEV_ACCESS_KEY, LOG_LEVEL)
//  4. ISPORA_ variables: ISPORA_SERVER_PORT -> server.port
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider([]byte(defaultsYAML)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return aliases[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment aliases: %w", err)
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// envKey maps ISPORA_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	return section + "." + field
}

// envValue maps a prefixed variable to its key and splits list values.
func envValue(name, value string) (string, any) {
	key := envKey(name)
	if !listKeys[key] {
		return key, value
	}
	return key, splitList(value)
}

func splitList(value string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}
