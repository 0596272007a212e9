package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider is the read-only view of the configuration that the rest of the
// application depends on. Tests substitute their own implementations.
type Provider interface {
	GetServerAddr() string
	GetAppBaseURL() string
	GetSessionSecret() string
	GetAuthTokenTTL() time.Duration

	GetDBURL() string
	GetDBUser() string
	GetDBPass() string
	GetDBNs() string
	GetDBDb() string
	GetDBQueryTimeout() time.Duration
	GetDBExecuteTimeout() time.Duration

	GetEmailProvider() string
	GetEmailSender() string
	GetEmailAPIKey() string

	GetAssistant() AssistantConfig
	GetChatPollInterval() time.Duration
	GetStorageDir() string
}

// ProviderEndpoint describes one OpenAI-compatible completion endpoint.
type ProviderEndpoint struct {
	APIKey  string
	BaseURL string
	Model   string
}

// AssistantConfig holds the settings of the AI chat provider chain.
type AssistantConfig struct {
	DeepSeek ProviderEndpoint
	OpenAI   ProviderEndpoint
	Gemini   ProviderEndpoint
}

// Config holds all configuration for the application.
type Config struct {
	ServerAddr    string
	AppBaseURL    string
	SessionSecret string
	AuthTokenTTL  time.Duration

	DBUrl            string
	DBUser           string
	DBPass           string
	DBNs             string
	DBDb             string
	DBQueryTimeout   time.Duration
	DBExecuteTimeout time.Duration

	EmailProvider string
	EmailSender   string
	EmailAPIKey   string

	Assistant        AssistantConfig
	ChatPollInterval time.Duration
	StorageDir       string
}

// Compile-time interface compliance check
var _ Provider = (*Config)(nil)

// New loads configuration from environment variables and exits the process
// when required values are missing.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg, err := Load()
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Load builds a Config from the current environment. It does not read .env.
func Load() (*Config, error) {
	cfg := &Config{
		ServerAddr:    getEnv("SERVER_ADDR", ":8080"),
		AppBaseURL:    strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:8080"), "/"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		AuthTokenTTL:  getDuration("AUTH_TOKEN_TTL", 7*24*time.Hour),

		DBUrl:            os.Getenv("SURREAL_URL"),
		DBUser:           os.Getenv("SURREAL_USER"),
		DBPass:           os.Getenv("SURREAL_PASS"),
		DBNs:             os.Getenv("SURREAL_NS"),
		DBDb:             os.Getenv("SURREAL_DB"),
		DBQueryTimeout:   getDuration("DB_QUERY_TIMEOUT", 5*time.Second),
		DBExecuteTimeout: getDuration("DB_EXECUTE_TIMEOUT", 10*time.Second),

		EmailProvider: getEnv("EMAIL_PROVIDER", "log"),
		EmailSender:   os.Getenv("EMAIL_SENDER"),
		EmailAPIKey:   os.Getenv("EMAIL_API_KEY"),

		Assistant: AssistantConfig{
			DeepSeek: ProviderEndpoint{
				APIKey:  os.Getenv("DEEPSEEK_API_KEY"),
				BaseURL: getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com"),
				Model:   getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
			},
			OpenAI: ProviderEndpoint{
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				BaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
				Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			},
			Gemini: ProviderEndpoint{
				APIKey: os.Getenv("GEMINI_API_KEY"),
				Model:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			},
		},
		ChatPollInterval: getDuration("CHAT_POLL_INTERVAL", 30*time.Second),
		StorageDir:       getEnv("STORAGE_DIR", "storage"),
	}

	if cfg.DBUrl == "" || cfg.DBNs == "" || cfg.DBDb == "" {
		return nil, errors.New("required environment variables SURREAL_URL, SURREAL_NS, or SURREAL_DB are not set")
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("required environment variable SESSION_SECRET is not set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDuration parses a Go duration string, falling back on empty or invalid values.
func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("Invalid duration for %s=%q, using default %s", key, v, fallback)
		return fallback
	}
	return d
}

func (c *Config) GetServerAddr() string             { return c.ServerAddr }
func (c *Config) GetAppBaseURL() string             { return c.AppBaseURL }
func (c *Config) GetSessionSecret() string          { return c.SessionSecret }
func (c *Config) GetAuthTokenTTL() time.Duration    { return c.AuthTokenTTL }
func (c *Config) GetDBURL() string                  { return c.DBUrl }
func (c *Config) GetDBUser() string                 { return c.DBUser }
func (c *Config) GetDBPass() string                 { return c.DBPass }
func (c *Config) GetDBNs() string                   { return c.DBNs }
func (c *Config) GetDBDb() string                   { return c.DBDb }
func (c *Config) GetDBQueryTimeout() time.Duration  { return c.DBQueryTimeout }
func (c *Config) GetDBExecuteTimeout() time.Duration { return c.DBExecuteTimeout }
func (c *Config) GetEmailProvider() string          { return c.EmailProvider }
func (c *Config) GetEmailSender() string            { return c.EmailSender }
func (c *Config) GetEmailAPIKey() string            { return c.EmailAPIKey }
func (c *Config) GetAssistant() AssistantConfig     { return c.Assistant }
func (c *Config) GetChatPollInterval() time.Duration { return c.ChatPollInterval }
func (c *Config) GetStorageDir() string             { return c.StorageDir }
