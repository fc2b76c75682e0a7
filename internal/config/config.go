package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort        = 3000
	defaultEnv         = "development"
	defaultDBDriver    = "sqlite"
	defaultSQLitePath  = "data/paragraf.db"
	defaultDBHost      = "127.0.0.1"
	defaultDBPort      = 3306
	defaultDBUser      = "root"
	defaultDBName      = "paragraf"
	defaultDBCharset   = "utf8mb4"
	defaultRedisURL    = "redis://localhost:6379/0"
	defaultWindowSize  = 3
	defaultTimeoutSecs = 45
	defaultMaxAttempts = 3
	defaultMaxTokens   = 2000
)

// Load reads and normalizes the YAML config file. A missing file yields
// the defaults (development mode, local sqlite + redis).
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// fall through to defaults
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Port <= 0 {
		cfg.Port = defaultPort
	}
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = defaultEnv
	}
	if strings.TrimSpace(cfg.RedisURL) == "" {
		cfg.RedisURL = defaultRedisURL
	}

	db := &cfg.Database
	if strings.TrimSpace(db.Driver) == "" {
		if db.DSN != "" || db.Host != "" {
			db.Driver = "mysql"
		} else {
			db.Driver = defaultDBDriver
		}
	}
	db.Driver = strings.ToLower(strings.TrimSpace(db.Driver))
	if db.Driver == "sqlite" && strings.TrimSpace(db.Path) == "" {
		db.Path = defaultSQLitePath
	}
	if db.Driver == "mysql" {
		if db.Host == "" {
			db.Host = defaultDBHost
		}
		if db.Port <= 0 {
			db.Port = defaultDBPort
		}
		if db.User == "" {
			db.User = defaultDBUser
		}
		if db.Name == "" {
			db.Name = defaultDBName
		}
		if db.Charset == "" {
			db.Charset = defaultDBCharset
		}
	}

	tr := &cfg.Translate
	if tr.WindowSize <= 0 {
		tr.WindowSize = defaultWindowSize
	}
	if tr.TimeoutSeconds <= 0 {
		tr.TimeoutSeconds = defaultTimeoutSecs
	}
	if tr.MaxAttempts <= 0 {
		tr.MaxAttempts = defaultMaxAttempts
	}
	if tr.MaxOutputTokens <= 0 {
		tr.MaxOutputTokens = defaultMaxTokens
	}
}

func validate(cfg *AppConfig) error {
	switch cfg.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q (expect mysql or sqlite)", cfg.Database.Driver)
	}
	if cfg.Export.S3.Enabled {
		s3 := cfg.Export.S3
		if s3.Bucket == "" || s3.Region == "" || s3.AccessKeyID == "" || s3.SecretAccessKey == "" {
			return fmt.Errorf("incomplete s3 export config: bucket/region/access_key_id/secret_access_key are required")
		}
	}
	return nil
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool {
	return strings.ToLower(strings.TrimSpace(c.Env)) != "production"
}

// ResolveDSN returns the MySQL DSN, built from parts when not given verbatim.
func (c *AppConfig) ResolveDSN() string {
	db := c.Database
	if dsn := strings.TrimSpace(db.DSN); dsn != "" {
		return dsn
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		db.User, db.Password, db.Host, db.Port, db.Name, db.Charset)
}

// LogDir returns the configured log directory ("" disables file logging).
func (c *AppConfig) LogDir() string {
	return strings.TrimSpace(c.Paths.Logs)
}
