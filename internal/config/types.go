package config

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int             `yaml:"port"`
	Env            string          `yaml:"env"` // "development" | "production"
	Database       DatabaseConfig  `yaml:"database"`
	RedisURL       string          `yaml:"redis_url"`
	AuthToken      string          `yaml:"auth_token"`
	AllowedOrigins []string        `yaml:"allowed_origins"`
	Paths          PathsConfig     `yaml:"paths"`
	AI             AIConfig        `yaml:"ai"`
	Translate      TranslateConfig `yaml:"translate"`
	Export         ExportConfig    `yaml:"export"`
}

// DatabaseConfig selects and parameterizes the storage backend. The core
// only depends on the GORM capability surface; mysql and sqlite are the
// two shipped adapters.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "mysql" | "sqlite"
	DSN      string `yaml:"dsn"`
	Path     string `yaml:"path"` // sqlite file path
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
}

type PathsConfig struct {
	Logs string `yaml:"logs"`
}

// AIConfig lists the configured LLM providers and which provider/model
// pair serves each call site.
type AIConfig struct {
	Providers      []AIProvider       `yaml:"providers"`
	TranslateModel *AIModelAssignment `yaml:"translate_model,omitempty"`
	RuleModel      *AIModelAssignment `yaml:"rule_model,omitempty"`
}

type AIModelAssignment struct {
	ProviderID string `yaml:"provider_id"`
	Model      string `yaml:"model"`
}

type AIProvider struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Type         string `yaml:"type"` // OpenAI | OpenAI-Compatible | Anthropic | OpenRouter
	APIKey       string `yaml:"api_key"`
	Endpoint     string `yaml:"endpoint,omitempty"`
	DefaultModel string `yaml:"default_model"`
	Enabled      bool   `yaml:"enabled"`
}

// TranslateConfig tunes the provider call and the look-ahead window.
type TranslateConfig struct {
	WindowSize      int `yaml:"window_size"`
	TimeoutSeconds  int `yaml:"timeout_seconds"`
	MaxAttempts     int `yaml:"max_attempts"`
	MaxOutputTokens int `yaml:"max_output_tokens"`
}

// ExportConfig controls document export and the optional remote snapshot
// upload of rendered documents.
type ExportConfig struct {
	S3 S3Options `yaml:"s3"`
}

type S3Options struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PathStyleAccess bool   `yaml:"path_style_access"`
	Prefix          string `yaml:"prefix"`
}
