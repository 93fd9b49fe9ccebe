package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port        string `mapstructure:"port"`
		PublicDir   string `mapstructure:"public_dir"`
		TemplateDir string `mapstructure:"template_dir"`
	} `mapstructure:"server"`
	Database struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"database"`
	Session struct {
		SecretKey  string        `mapstructure:"secret_key"`
		CookieName string        `mapstructure:"cookie_name"`
		TTL        time.Duration `mapstructure:"ttl"`
		Secure     bool          `mapstructure:"secure"`
	} `mapstructure:"session"`
	Transfer struct {
		DestinationAccount string `mapstructure:"destination_account"`
	} `mapstructure:"transfer"`
	Seed struct {
		Username string  `mapstructure:"username"`
		Password string  `mapstructure:"password"`
		Balance  float64 `mapstructure:"balance"`
	} `mapstructure:"seed"`
	Auth struct {
		BcryptCost int `mapstructure:"bcrypt_cost"`
	} `mapstructure:"auth"`
	Redis struct {
		Enabled  bool   `mapstructure:"enabled"`
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
		File   string `mapstructure:"file"`
	} `mapstructure:"log"`
	Tracing struct {
		Endpoint    string `mapstructure:"endpoint"`
		ServiceName string `mapstructure:"service_name"`
	} `mapstructure:"tracing"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.public_dir", "public")
	v.SetDefault("server.template_dir", "templates")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "deposit")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("session.secret_key", "")
	v.SetDefault("session.cookie_name", "session")
	v.SetDefault("session.ttl", "744h")
	v.SetDefault("session.secure", false)

	v.SetDefault("transfer.destination_account", "1976278463")

	v.SetDefault("seed.username", "user1")
	v.SetDefault("seed.password", "password1")
	v.SetDefault("seed.balance", 100000000000.0)

	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")

	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.service_name", "go-deposit-api")
}

// LoadConfig reads config.yml from path, then lets environment variables
// (DATABASE_HOST, SESSION_SECRET_KEY, ...) override individual keys.
// A missing config file is not an error; a .env file in path is loaded first.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load(strings.TrimSuffix(path, "/") + "/.env")

	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.Session.SecretKey == "" {
		return errors.New("session.secret_key must be set")
	}
	if c.Transfer.DestinationAccount == "" {
		return errors.New("transfer.destination_account must be set")
	}
	if c.Session.TTL <= 0 {
		return errors.New("session.ttl must be positive")
	}
	return nil
}

// RedisAddr returns the host:port address of the session store.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
