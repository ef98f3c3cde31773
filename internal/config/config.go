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
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Google   GoogleConfig   `mapstructure:"google"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// S3Config configures the bucket used to archive uploaded voice notes.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration.
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// GoogleConfig covers Google sign-in and the Speech-to-Text transcriber.
type GoogleConfig struct {
	OAuthClientID string `mapstructure:"oauth_client_id"`
	SpeechEnabled bool   `mapstructure:"speech_enabled"`
}

type LogConfig struct {
	Mode string `mapstructure:"mode"` // "dev" or "prod"
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Environment variables override file values, e.g. database.dsn -> DATABASE_DSN.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.dsn", "host=localhost user=postgres password=postgres dbname=workout_tracker port=5432 sslmode=disable")
	viper.SetDefault("s3.use_ssl", true)
	viper.SetDefault("jwt.expiration", "24h")
	viper.SetDefault("google.speech_enabled", false)
	viper.SetDefault("log.mode", "dev")

	err = viper.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// No config file; rely on defaults and environment variables.
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
