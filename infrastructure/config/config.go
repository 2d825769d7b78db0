package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Cors      CorsConfig
	Logger    LoggerConfig
	Sentry    SentryConfig
	Room      RoomConfig
	Pricing   PricingConfig
	Inference InferenceConfig
	Payments  PaymentsConfig
}

type ServerConfig struct {
	InternalPort string
	ExternalPort string
	RunMode      string
	Domain       string
}

type LoggerConfig struct {
	FilePath string
	Encoding string
	Level    string
}

type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	Db           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	PoolTimeout  time.Duration
}

type CorsConfig struct {
	AllowOrigins string
}

type SentryConfig struct {
	Dsn            string
	Debug          bool
	SendDefaultPII bool
}

// RoomConfig tunes the coordination core. HostTTL must exceed the heartbeat
// interval so a healthy host never ages out between beats.
type RoomConfig struct {
	LockTTL           time.Duration
	HostTTL           time.Duration
	HeartbeatInterval time.Duration
	MessageWindow     int64
	ContextWindow     int64
	ContextMessages   int
}

type PricingConfig struct {
	BlockSize   int64
	DefaultSeed int64
}

type InferenceConfig struct {
	Timeout        time.Duration
	DefaultBudget  int64
	MaxBudget      int64
	RequestsPerSec float64
	RequestBurst   int
	Temperature    float64
}

// PaymentsConfig selects the settlement facilitator. Mode "demo" mints local
// receipts; mode "http" runs the 402 challenge/response flow against
// FacilitatorURL.
type PaymentsConfig struct {
	Mode           string
	FacilitatorURL string
	SigningKey     string
	Timeout        time.Duration
}

func GetConfig() *Config {
	cfgPath := getConfigPath(os.Getenv("APP_ENV"))
	v, err := LoadConfig(cfgPath, "yml")
	if err != nil {
		log.Fatalf("Error in load config %v", err)
	}

	cfg, err := ParseConfig(v)
	if err != nil {
		log.Fatalf("Error in parse config %v", err)
	}

	if envPort := os.Getenv("PORT"); envPort != "" {
		cfg.Server.ExternalPort = envPort
		log.Printf("Set external port from environment -> %s", cfg.Server.ExternalPort)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	err := v.Unmarshal(&cfg)
	if err != nil {
		log.Printf("Unable to parse config: %v", err)
		return nil, err
	}
	return &cfg, nil
}

func LoadConfig(filename string, fileType string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType(fileType)
	v.SetConfigName(filename)

	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./infrastructure/config")
	v.AddConfigPath("../config")
	v.AddConfigPath("../infrastructure/config")
	v.AddConfigPath("../../config")

	if wd, err := os.Getwd(); err == nil {
		v.AddConfigPath(filepath.Join(wd, "config"))
		v.AddConfigPath(filepath.Join(wd, "infrastructure", "config"))
	}

	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		log.Printf("Unable to read config: %v", err)
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}

	log.Printf("Using config file: %s", v.ConfigFileUsed())
	return v, nil
}

func getConfigPath(env string) string {
	switch env {
	case "docker":
		return "config-docker"
	case "production":
		return "config-production"
	default:
		return "config-development"
	}
}

// ApplyDefaults fills the coordination knobs a config file may omit.
func (c *Config) ApplyDefaults() {
	if c.Room.LockTTL == 0 {
		c.Room.LockTTL = 10 * time.Second
	}
	if c.Room.HostTTL == 0 {
		c.Room.HostTTL = 45 * time.Second
	}
	if c.Room.HeartbeatInterval == 0 {
		c.Room.HeartbeatInterval = 15 * time.Second
	}
	if c.Room.MessageWindow == 0 {
		c.Room.MessageWindow = 200
	}
	if c.Room.ContextWindow == 0 {
		c.Room.ContextWindow = 40
	}
	if c.Room.ContextMessages == 0 {
		c.Room.ContextMessages = 12
	}
	if c.Pricing.BlockSize == 0 {
		c.Pricing.BlockSize = 1000
	}
	if c.Pricing.DefaultSeed == 0 {
		c.Pricing.DefaultSeed = 100_000_000
	}
	if c.Inference.Timeout == 0 {
		c.Inference.Timeout = 12 * time.Second
	}
	if c.Inference.DefaultBudget == 0 {
		c.Inference.DefaultBudget = 256
	}
	if c.Inference.MaxBudget == 0 {
		c.Inference.MaxBudget = 2048
	}
	if c.Inference.RequestsPerSec == 0 {
		c.Inference.RequestsPerSec = 4
	}
	if c.Inference.RequestBurst == 0 {
		c.Inference.RequestBurst = 4
	}
	if c.Inference.Temperature == 0 {
		c.Inference.Temperature = 0.2
	}
	if c.Payments.Mode == "" {
		c.Payments.Mode = "demo"
	}
	if c.Payments.Timeout == 0 {
		c.Payments.Timeout = 10 * time.Second
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.InternalPort == "" {
		return errors.New("server.internalPort is required")
	}
	if c.Server.ExternalPort == "" {
		return errors.New("server.externalPort is required")
	}

	if c.Redis.Host == "" {
		return errors.New("redis.host is required")
	}
	if c.Redis.Port == "" {
		return errors.New("redis.port is required")
	}

	if c.Room.HostTTL <= c.Room.HeartbeatInterval {
		return errors.New("room.hostTTL must be longer than room.heartbeatInterval")
	}

	if c.Payments.Mode == "http" {
		if c.Payments.FacilitatorURL == "" {
			return errors.New("payments.facilitatorURL is required in http mode")
		}
		if c.Payments.SigningKey == "" {
			return errors.New("payments.signingKey is required in http mode")
		}
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.RunMode == "debug" || c.Server.RunMode == "development"
}

func (c *Config) IsProduction() bool {
	return c.Server.RunMode == "release" || c.Server.RunMode == "production"
}

func (c *Config) GetRedisAddress() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

func (c *Config) GetServerAddress() string {
	return fmt.Sprintf(":%s", c.Server.InternalPort)
}
