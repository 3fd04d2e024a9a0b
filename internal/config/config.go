package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Dirs    DirsConfig
	Matcher MatcherConfig
	Redis   RedisConfig
	Cache   CacheConfig
	Logger  LoggerConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DirsConfig holds the directories scanned for test documents and answer
// key files.
type DirsConfig struct {
	Tests string
	Keys  string
}

type MatcherConfig struct {
	// Threshold is the minimum name similarity for a key file to be
	// accepted as a match.
	Threshold float64
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type CacheConfig struct {
	// TTL for cached extraction results. 0 disables expiration.
	TTL time.Duration
}

type LoggerConfig struct {
	Level string
	Env   string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.read_timeout", 10)
	viper.SetDefault("server.write_timeout", 10)
	viper.SetDefault("dirs.tests", "./data/tests")
	viper.SetDefault("dirs.keys", "./data/keys")
	viper.SetDefault("matcher.threshold", 0.8)
	viper.SetDefault("cache.ttl", 3600)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.env", "development")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults and env vars apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
		},
		Dirs: DirsConfig{
			Tests: viper.GetString("dirs.tests"),
			Keys:  viper.GetString("dirs.keys"),
		},
		Matcher: MatcherConfig{
			Threshold: viper.GetFloat64("matcher.threshold"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			TTL: viper.GetDuration("cache.ttl") * time.Second,
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
	}

	// Override with environment variables if set
	if testDir := os.Getenv("TEST_DIR"); testDir != "" {
		config.Dirs.Tests = testDir
	}
	if keyDir := os.Getenv("KEY_DIR"); keyDir != "" {
		config.Dirs.Keys = keyDir
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}

	return config, nil
}
