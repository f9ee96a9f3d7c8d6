package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string   `mapstructure:"API_PORT"`
	Env            string   `mapstructure:"ENV"`
	MongoURI       string   `mapstructure:"MONGO_URI"`
	MongoDatabase  string   `mapstructure:"MONGO_DATABASE"`
	RedisAddr      string   `mapstructure:"REDIS_ADDR"`
	RedisPassword  string   `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int      `mapstructure:"REDIS_DB"`
	JWTSecret      string   `mapstructure:"JWT_SECRET"`
	Timezone       string   `mapstructure:"TIMEZONE"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	TextbeltAPIKey string   `mapstructure:"TEXTBELT_API_KEY"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("API_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "vaxtrack")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	v.BindEnv("API_PORT")
	v.BindEnv("ENV")
	v.BindEnv("MONGO_URI")
	v.BindEnv("MONGO_DATABASE")
	v.BindEnv("REDIS_ADDR")
	v.BindEnv("REDIS_PASSWORD")
	v.BindEnv("REDIS_DB")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("TIMEZONE")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("TEXTBELT_API_KEY")

	// A missing .env file is fine, environment variables still apply.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}
