package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Email    EmailConfig    `mapstructure:"email"`
	S3       S3Config       `mapstructure:"s3"`
	N8N      N8NConfig      `mapstructure:"n8n"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// AppConfig carries values that end up in outbound links and responses.
type AppConfig struct {
	// BaseURL is the public origin used to build magic-link URLs,
	// e.g. "https://unify.example.com".
	BaseURL     string `mapstructure:"base_url"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// JWTConfig defines signing parameters for the session token.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	// Expiration must be a duration string in the config file ("720h" = 30 days).
	Expiration time.Duration `mapstructure:"expiration"`
}

// EmailConfig describes the outbound SMTP relay. With an empty username the
// mailer dials without authentication, which is what MailHog-style dev
// servers expect.
type EmailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// N8NConfig points at the Coach Winston workflow webhook.
type N8NConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Environment variable handling: server.address -> SERVER_ADDRESS,
	// n8n.base_url -> N8N_BASE_URL, etc.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("app.base_url", "http://localhost:8080")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.version", "dev")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "project_unify")
	viper.SetDefault("jwt.expiration", "720h") // 30-day sessions
	viper.SetDefault("email.host", "localhost")
	viper.SetDefault("email.port", 1025)
	viper.SetDefault("email.from", "noreply@soccer-unify.com")
	viper.SetDefault("s3.use_ssl", true)
	viper.SetDefault("n8n.timeout", "30s")
	viper.SetDefault("openai.model", "gpt-4-turbo-preview")

	err = viper.ReadInConfig()
	// Config file is optional; env vars alone are enough in containers.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}
