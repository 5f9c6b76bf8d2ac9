package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	AI       AIConfig       `yaml:"ai"`
	Email    EmailConfig    `yaml:"email"`
	Redis    RedisConfig    `yaml:"redis"`
	Roster   RosterConfig   `yaml:"roster"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	ExpireHour int    `yaml:"expire_hour"`
}

// AIConfig configures the hosted text-generation provider used for
// weekly-report summaries. A missing API key disables summaries only;
// submissions still persist.
type AIConfig struct {
	Provider  string `yaml:"provider"` // anthropic, openai, azure, gemini, ollama
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// Enabled reports whether the summary feature has usable credentials.
// Ollama needs no API key.
func (c *AIConfig) Enabled() bool {
	return c.APIKey != "" || c.Provider == "ollama"
}

// EmailConfig configures the confirmation-email channel. Missing credentials
// disable email only.
type EmailConfig struct {
	Provider  string `yaml:"provider"` // mailjet, smtp
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	SMTPHost  string `yaml:"smtp_host"`
	SMTPPort  int    `yaml:"smtp_port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	UseTLS    bool   `yaml:"use_tls"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

func (c *EmailConfig) Enabled() bool {
	switch c.Provider {
	case "smtp":
		return c.SMTPHost != ""
	default:
		return c.APIKey != "" && c.APISecret != ""
	}
}

// RedisConfig for the optional async analysis queue
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// RosterConfig is the static team roster: team name -> member names.
// Peer evaluations are only accepted between members of the same team.
type RosterConfig struct {
	Teams map[string][]string `yaml:"teams"`
}

var GlobalConfig *Config

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, err
		}
		cfg = &fileCfg
	}

	if len(cfg.Roster.Teams) == 0 {
		cfg.Roster = DefaultRoster()
	}

	cfg.overrideFromEnv()
	GlobalConfig = cfg
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "wpr.db",
		},
		JWT: JWTConfig{
			Secret:     "wpr-secret-key-change-in-production",
			ExpireHour: 24,
		},
		AI: AIConfig{
			Provider:  "anthropic",
			Model:     "claude-3-5-sonnet-20241022",
			MaxTokens: 4000,
		},
		Email: EmailConfig{
			Provider:  "mailjet",
			SMTPPort:  587,
			FromEmail: "go@iol.ph",
			FromName:  "IOL Inc.",
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
		},
		Roster: DefaultRoster(),
	}
}

// DefaultRoster is the built-in company roster, used when the config file
// does not provide one.
func DefaultRoster() RosterConfig {
	return RosterConfig{
		Teams: map[string][]string{
			"Business Services Team": {
				"Abigail Visperas", "Cristian Jay Duque", "Justine Louise Ferrer",
				"Nathalie Joy Fronda", "Kevin Philip Gayao", "Kurt Lee Gayao",
				"Maria Luisa Reynante", "Jester Pedrosa",
			},
			"Frontend Team": {
				"Amiel Bryan Gaudia", "George Libatique", "Joshua Aficial",
			},
			"Backend Team": {
				"Jeon Angelo Evangelista", "Katrina Gayao", "Renzo Ducusin",
			},
		},
	}
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWT.Secret = secret
	}
	if provider := os.Getenv("AI_PROVIDER"); provider != "" {
		c.AI.Provider = provider
	}
	if baseURL := os.Getenv("AI_BASE_URL"); baseURL != "" {
		c.AI.BaseURL = baseURL
	}
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		c.AI.APIKey = apiKey
	}
	if apiKey := os.Getenv("AI_API_KEY"); apiKey != "" {
		c.AI.APIKey = apiKey
	}
	if model := os.Getenv("AI_MODEL"); model != "" {
		c.AI.Model = model
	}
	if maxTokens := os.Getenv("AI_MAX_TOKENS"); maxTokens != "" {
		if n, err := strconv.Atoi(maxTokens); err == nil && n > 0 {
			c.AI.MaxTokens = n
		}
	}
	if apiKey := os.Getenv("MAILJET_API_KEY"); apiKey != "" {
		c.Email.APIKey = apiKey
	}
	if apiSecret := os.Getenv("MAILJET_API_SECRET"); apiSecret != "" {
		c.Email.APISecret = apiSecret
	}
	if from := os.Getenv("EMAIL_FROM"); from != "" {
		c.Email.FromEmail = from
	}
	// Redis URL override (format: redis://:password@host:port/db)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.Enabled = true
		c.parseRedisURL(redisURL)
	}
}

// parseRedisURL parses a Redis URL and sets config values
// Format: redis://:password@host:port/db
func (c *Config) parseRedisURL(redisURL string) {
	url := strings.TrimPrefix(redisURL, "redis://")

	if atIdx := strings.Index(url, "@"); atIdx != -1 {
		authPart := url[:atIdx]
		url = url[atIdx+1:]
		if colonIdx := strings.Index(authPart, ":"); colonIdx != -1 {
			c.Redis.Password = authPart[colonIdx+1:]
		}
	}

	if slashIdx := strings.LastIndex(url, "/"); slashIdx != -1 {
		dbStr := url[slashIdx+1:]
		url = url[:slashIdx]
		if db, err := strconv.Atoi(dbStr); err == nil {
			c.Redis.DB = db
		}
	}

	c.Redis.Addr = url
}

func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}
