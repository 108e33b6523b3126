/**
 * @description
 * This file handles the configuration management for the beneficiary service.
 * It uses the Viper library to read settings from environment variables or a .env file.
 *
 * @dependencies
 * - github.com/spf13/viper: For configuration management.
 */
package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	DatabaseURL          string `mapstructure:"DATABASE_URL"`
	RabbitMQURL          string `mapstructure:"RABBITMQ_URL"`
	RedisURL             string `mapstructure:"REDIS_URL"`
	ScreeningAPIBaseURL  string `mapstructure:"SCREENING_API_BASE_URL"`
	ScreeningAPIKey      string `mapstructure:"SCREENING_API_KEY"`
	JWTSecret            string `mapstructure:"JWT_SECRET"`
	ServerPort           string `mapstructure:"SERVER_PORT"`
	ValidationEnabled    bool   `mapstructure:"VALIDATION_ENABLED"`
	ValidationStrictMode bool   `mapstructure:"VALIDATION_STRICT_MODE"`
	AuditStrict          bool   `mapstructure:"AUDIT_STRICT"`
	RateLimitMutations   int64  `mapstructure:"RATE_LIMIT_MUTATIONS"`
	RateLimitWindowSecs  int64  `mapstructure:"RATE_LIMIT_WINDOW_SECS"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8086")
	viper.SetDefault("VALIDATION_ENABLED", true)
	viper.SetDefault("VALIDATION_STRICT_MODE", false)
	viper.SetDefault("AUDIT_STRICT", false)
	viper.SetDefault("RATE_LIMIT_MUTATIONS", 30)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECS", 60)

	// Bind envs explicitly so containers pick them up reliably
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("SCREENING_API_BASE_URL")
	_ = viper.BindEnv("SCREENING_API_KEY")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("VALIDATION_ENABLED")
	_ = viper.BindEnv("VALIDATION_STRICT_MODE")
	_ = viper.BindEnv("AUDIT_STRICT")
	_ = viper.BindEnv("RATE_LIMIT_MUTATIONS")
	_ = viper.BindEnv("RATE_LIMIT_WINDOW_SECS")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Warning: Error reading config file: %s", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
