// Package config loads runtime settings from the environment, an optional
// .env file and an optional config.yaml.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the server needs at startup.
type Config struct {
	Port          string
	DefaultLocale string
	LogLevel      string
	LogFormat     string
	DB            DBConfig
	Migrations    bool
	StorageDir    string
	Eventbrite    EventbriteConfig
	OpenAI        OpenAIConfig
	AMQP          AMQPConfig
}

// DBConfig holds PostgreSQL connection settings.
// URL, when set, takes precedence over the discrete fields.
type DBConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// EventbriteConfig configures the ticketing provider client.
type EventbriteConfig struct {
	Token   string
	EventID string
	BaseURL string
}

// OpenAIConfig configures the chat completion client.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// AMQPConfig configures the ticket generation job queue.
// An empty URL disables the queue.
type AMQPConfig struct {
	URL      string
	Exchange string
	Queue    string
}

// DSN builds a connection string usable by both pgx and golang-migrate.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   c.Host + ":" + c.Port,
		Path:   "/" + c.DBName,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Load reads configuration from .env (optional), config.yaml (optional) and
// the process environment, then validates it.
func Load() (*Config, error) {
	// .env is optional; variables may come straight from the environment.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	setDefaults(v)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read config.yaml: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEFAULT_LOCALE", "fr")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "concert")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("MIGRATIONS_ENABLED", true)

	v.SetDefault("STORAGE_DIR", "./data")

	v.SetDefault("EVENTBRITE_API_TOKEN", "")
	v.SetDefault("EVENTBRITE_EVENT_ID", "")
	v.SetDefault("EVENTBRITE_BASE_URL", "https://www.eventbriteapi.com/v3")

	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")

	v.SetDefault("AMQP_URL", "")
	v.SetDefault("AMQP_EXCHANGE", "tickets")
	v.SetDefault("AMQP_QUEUE", "ticket-generation")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:          v.GetString("PORT"),
		DefaultLocale: v.GetString("DEFAULT_LOCALE"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		LogFormat:     v.GetString("LOG_FORMAT"),
		DB: DBConfig{
			URL:      v.GetString("DATABASE_URL"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Migrations: v.GetBool("MIGRATIONS_ENABLED"),
		StorageDir: v.GetString("STORAGE_DIR"),
		Eventbrite: EventbriteConfig{
			Token:   v.GetString("EVENTBRITE_API_TOKEN"),
			EventID: v.GetString("EVENTBRITE_EVENT_ID"),
			BaseURL: strings.TrimRight(v.GetString("EVENTBRITE_BASE_URL"), "/"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  v.GetString("OPENAI_API_KEY"),
			BaseURL: strings.TrimRight(v.GetString("OPENAI_BASE_URL"), "/"),
			Model:   v.GetString("OPENAI_MODEL"),
		},
		AMQP: AMQPConfig{
			URL:      v.GetString("AMQP_URL"),
			Exchange: v.GetString("AMQP_EXCHANGE"),
			Queue:    v.GetString("AMQP_QUEUE"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate applies the startup rules on the loaded configuration.
func (c *Config) validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("config: PORT must not be empty")
	}
	for _, r := range c.Port {
		if r < '0' || r > '9' {
			return fmt.Errorf("config: PORT must be numeric, got %q", c.Port)
		}
	}

	if c.DB.URL != "" {
		parsed, err := url.Parse(c.DB.URL)
		if err != nil {
			return fmt.Errorf("config: invalid DATABASE_URL: %w", err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("config: invalid DATABASE_URL: missing scheme or host")
		}
	}

	if strings.TrimSpace(c.StorageDir) == "" {
		return fmt.Errorf("config: STORAGE_DIR must not be empty")
	}

	if c.AMQP.URL != "" && (c.AMQP.Exchange == "" || c.AMQP.Queue == "") {
		return fmt.Errorf("config: AMQP_EXCHANGE and AMQP_QUEUE are required when AMQP_URL is set")
	}
	return nil
}
