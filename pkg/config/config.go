package config

import (
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/iancoleman/strcase"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	configFileENV     = "CONFIG_FILE"
	defaultConfigFile = "./config.yaml"
	dotEnvFile        = ".env"
)

type Config struct {
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout" default:"5s"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count" default:"5"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay" default:"2s"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseDriver            string        `koanf:"database_driver" default:"sqlite" validate:"oneof=sqlite postgres"`
	DatabaseFilePath          string        `koanf:"database_file_path" validate:"required_if=DatabaseDriver sqlite"`
	DatabaseMaxRetries        int           `koanf:"database_max_retries" default:"5" validate:"min=0"`
	DatabaseURL               string        `koanf:"database_url" validate:"required_if=DatabaseDriver postgres"`
	DefaultLoanDays           int           `koanf:"default_loan_days" default:"14" validate:"min=1,max=3650"`
	DisplayLanguage           string        `koanf:"display_language" default:"en" validate:"oneof=en tr"`
	ServerHost                string        `koanf:"server_host" default:"0.0.0.0"`
	ServerPort                int           `koanf:"server_port" default:"3689"`
}

// New loads the config from defaults, an optional .env file, an optional YAML
// file and the environment, in that order of precedence (last wins).
func New() (*Config, error) {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "failed to load .env file")
	}

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	k := koanf.New(".")

	configFile := os.Getenv(configFileENV)
	if configFile == "" {
		configFile = defaultConfigFile
	}
	if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrapf(err, "failed to load config file %s", configFile)
	}

	keys := configKeys()
	err := k.Load(env.Provider("", ".", func(s string) string {
		key := strings.ToLower(s)
		if _, ok := keys[key]; !ok {
			return ""
		}
		return key
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewForTest returns a config backed by an in-memory SQLite database.
func NewForTest() *Config {
	cfg := &Config{}
	_ = defaults.Set(cfg)
	cfg.DatabaseFilePath = ":memory:"
	cfg.DatabaseConnectRetryCount = 1
	cfg.DatabaseConnectRetryDelay = 0
	cfg.ServerHost = "127.0.0.1"
	return cfg
}

func (cfg *Config) validate() error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.WithStack(err)
	}

	fe := verrs[0]
	key := toSnakeCase(fe.StructField())
	envVar := strings.ToUpper(key)
	if strings.HasPrefix(fe.Tag(), "required") {
		return errors.Errorf("missing required config: set %s env var or %s in config file", envVar, key)
	}
	return errors.Errorf("invalid config value for %s (%s): %v", key, envVar, fe.Value())
}

// configKeys returns the set of koanf keys declared on Config, so that
// unrelated environment variables are never loaded.
func configKeys() map[string]struct{} {
	keys := map[string]struct{}{}
	for _, name := range fieldNames() {
		keys[toSnakeCase(name)] = struct{}{}
	}
	return keys
}

func fieldNames() []string {
	return []string{
		"DatabaseBusyTimeout",
		"DatabaseConnectRetryCount",
		"DatabaseConnectRetryDelay",
		"DatabaseDebug",
		"DatabaseDriver",
		"DatabaseFilePath",
		"DatabaseMaxRetries",
		"DatabaseURL",
		"DefaultLoanDays",
		"DisplayLanguage",
		"ServerHost",
		"ServerPort",
	}
}

func toSnakeCase(s string) string {
	return strcase.ToSnake(s)
}

func (cfg *Config) String() string {
	return fmt.Sprintf("driver=%s language=%s server=%s:%d", cfg.DatabaseDriver, cfg.DisplayLanguage, cfg.ServerHost, cfg.ServerPort)
}
