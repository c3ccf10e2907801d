package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	HubSpot   HubSpotConfig
	RateLimit RateLimitConfig
	Retry     RetryConfig
	Session   SessionConfig
	Insight   InsightConfig
	Admin     AdminConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LoggerConfig struct {
	Level string
	Env   string
}

type HubSpotConfig struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	Pipeline   string
	DealStage  string
	DealAmount string
	LeadSource string
}

type RateLimitConfig struct {
	MaxRequests   int
	WindowSeconds int
	Store         string // "memory" or "redis"
	Identifier    string
}

type RetryConfig struct {
	MaxRetries      int
	BatchSize       int
	ProcessInterval time.Duration
}

type SessionConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	ScrubAfter      time.Duration
}

type InsightConfig struct {
	Source    string // "", "ollama" or "openai"
	ServerURL string
	Model     string
	APIKey    string
}

type AdminConfig struct {
	JWTSecret string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Add config paths based on environment
	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Log the config file being used
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
		},
		DB: DBConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetInt("db.port"),
			User:     viper.GetString("db.user"),
			Password: viper.GetString("db.password"),
			DBName:   viper.GetString("db.name"),
			SSLMode:  viper.GetString("db.sslmode"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
		HubSpot: HubSpotConfig{
			APIKey:     viper.GetString("hubspot.api_key"),
			BaseURL:    viper.GetString("hubspot.base_url"),
			Timeout:    viper.GetDuration("hubspot.timeout") * time.Second,
			Pipeline:   viper.GetString("hubspot.pipeline"),
			DealStage:  viper.GetString("hubspot.deal_stage"),
			DealAmount: viper.GetString("hubspot.deal_amount"),
			LeadSource: viper.GetString("hubspot.lead_source"),
		},
		RateLimit: RateLimitConfig{
			MaxRequests:   viper.GetInt("ratelimit.max_requests"),
			WindowSeconds: viper.GetInt("ratelimit.window_seconds"),
			Store:         viper.GetString("ratelimit.store"),
			Identifier:    viper.GetString("ratelimit.identifier"),
		},
		Retry: RetryConfig{
			MaxRetries:      viper.GetInt("retry.max_retries"),
			BatchSize:       viper.GetInt("retry.batch_size"),
			ProcessInterval: viper.GetDuration("retry.process_interval") * time.Second,
		},
		Session: SessionConfig{
			TTL:             viper.GetDuration("session.ttl") * time.Second,
			CleanupInterval: viper.GetDuration("session.cleanup_interval") * time.Second,
			ScrubAfter:      viper.GetDuration("session.scrub_after") * time.Second,
		},
		Insight: InsightConfig{
			Source:    viper.GetString("insight.source"),
			ServerURL: viper.GetString("insight.server_url"),
			Model:     viper.GetString("insight.model"),
			APIKey:    viper.GetString("insight.api_key"),
		},
		Admin: AdminConfig{
			JWTSecret: viper.GetString("admin.jwt_secret"),
		},
	}

	// Override with environment variables if set
	if host := os.Getenv("DB_HOST"); host != "" {
		config.DB.Host = host
	}
	if user := os.Getenv("DB_USER"); user != "" {
		config.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		config.DB.Password = password
	}
	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		config.DB.DBName = dbname
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if apiKey := os.Getenv("HUBSPOT_API_KEY"); apiKey != "" {
		config.HubSpot.APIKey = apiKey
	}
	if secret := os.Getenv("ADMIN_JWT_SECRET"); secret != "" {
		config.Admin.JWTSecret = secret
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.read_timeout", 20)
	viper.SetDefault("server.write_timeout", 20)
	viper.SetDefault("db.sslmode", "disable")
	viper.SetDefault("hubspot.base_url", "https://api.hubapi.com")
	viper.SetDefault("hubspot.timeout", 10)
	viper.SetDefault("hubspot.pipeline", "default")
	viper.SetDefault("hubspot.deal_stage", "executive_briefing_requested")
	viper.SetDefault("hubspot.deal_amount", "25000")
	viper.SetDefault("hubspot.lead_source", "ai_readiness_assessment")
	// HubSpot free tier: 100 requests per rolling 10 seconds
	viper.SetDefault("ratelimit.max_requests", 100)
	viper.SetDefault("ratelimit.window_seconds", 10)
	viper.SetDefault("ratelimit.store", "memory")
	viper.SetDefault("ratelimit.identifier", "hubspot")
	viper.SetDefault("retry.max_retries", 5)
	viper.SetDefault("retry.batch_size", 10)
	viper.SetDefault("retry.process_interval", 60)
	viper.SetDefault("session.ttl", 86400)
	viper.SetDefault("session.cleanup_interval", 3600)
	// 90 day PII retention window
	viper.SetDefault("session.scrub_after", 7776000)
}

// GetDSN returns the PostgreSQL connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User,
		c.DB.Password,
		c.DB.Host,
		c.DB.Port,
		c.DB.DBName,
		c.DB.SSLMode,
	)
}
