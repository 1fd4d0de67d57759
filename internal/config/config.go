package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type AppConfig struct {
	Port            int    `yaml:"port"`
	GinMode         string `yaml:"gin_mode"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	Issuer     string `yaml:"issuer"`
	SessionTTL string `yaml:"session_ttl"`
}

type OTPConfig struct {
	TTL             string `yaml:"ttl"`
	Length          int    `yaml:"length"`
	Store           string `yaml:"store"`
	DispatchTimeout string `yaml:"dispatch_timeout"`
	SweepInterval   string `yaml:"sweep_interval"`
	Retention       string `yaml:"retention"`
}

type PasswordConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type AuditConfig struct {
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`
}

type ConfigFile struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	OTP      OTPConfig      `yaml:"otp"`
	Password PasswordConfig `yaml:"password"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Twilio   TwilioConfig   `yaml:"twilio"`
	Audit    AuditConfig    `yaml:"audit"`
}

type Config struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration

	DSN           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret  string
	JWTIssuer  string
	SessionTTL time.Duration

	OTPTTL             time.Duration
	OTPLength          int
	ChallengeStore     string
	DispatchTimeout    time.Duration
	SweepInterval      time.Duration
	ChallengeRetention time.Duration

	BcryptCost int

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	TwilioSID   string
	TwilioToken string
	TwilioFrom  string

	KafkaBrokers []string
	KafkaTopic   string
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads .env, then config/config.yml (or CONFIG_PATH), then applies
// environment overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadFrom(env("CONFIG_PATH", "config/config.yml"))
}

// LoadFrom builds a Config from the yaml file at path plus environment
// overrides. A missing file leaves every value to defaults and env.
func LoadFrom(path string) (*Config, error) {
	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	cfg, err := configFile.toConfig()
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	var config ConfigFile

	bytes, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}
	return &config, nil
}

func (f *ConfigFile) toConfig() (*Config, error) {
	cfg := &Config{
		GinMode:        f.App.GinMode,
		DSN:            f.Database.DSN,
		RedisAddr:      f.Redis.Addr,
		RedisPassword:  f.Redis.Password,
		RedisDB:        f.Redis.DB,
		JWTSecret:      f.JWT.Secret,
		JWTIssuer:      f.JWT.Issuer,
		OTPLength:      f.OTP.Length,
		ChallengeStore: strings.ToLower(f.OTP.Store),
		BcryptCost:     f.Password.BcryptCost,
		SMTPHost:       f.SMTP.Host,
		SMTPPort:       f.SMTP.Port,
		SMTPUser:       f.SMTP.Username,
		SMTPPassword:   f.SMTP.Password,
		SMTPFrom:       f.SMTP.From,
		TwilioSID:      f.Twilio.AccountSID,
		TwilioToken:    f.Twilio.AuthToken,
		TwilioFrom:     f.Twilio.FromNumber,
		KafkaBrokers:   f.Audit.KafkaBrokers,
		KafkaTopic:     f.Audit.KafkaTopic,
	}

	if f.App.Port != 0 {
		cfg.Port = strconv.Itoa(f.App.Port)
	}

	durations := []struct {
		name  string
		raw   string
		def   time.Duration
		field *time.Duration
	}{
		{"app shutdown timeout", f.App.ShutdownTimeout, 10 * time.Second, &cfg.ShutdownTimeout},
		{"JWT session TTL", f.JWT.SessionTTL, 24 * time.Hour, &cfg.SessionTTL},
		{"OTP TTL", f.OTP.TTL, 5 * time.Minute, &cfg.OTPTTL},
		{"OTP dispatch timeout", f.OTP.DispatchTimeout, 10 * time.Second, &cfg.DispatchTimeout},
		{"OTP sweep interval", f.OTP.SweepInterval, time.Minute, &cfg.SweepInterval},
		{"OTP retention", f.OTP.Retention, 10 * time.Minute, &cfg.ChallengeRetention},
	}
	for _, d := range durations {
		v, err := parseDuration(d.raw, d.def)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.name, err)
		}
		*d.field = v
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = env("PORT", c.Port)
	c.JWTSecret = env("JWT_SECRET", c.JWTSecret)
	c.DSN = env("DATABASE_DSN", c.DSN)
	c.RedisAddr = env("REDIS_ADDR", c.RedisAddr)
	c.SMTPPassword = env("SMTP_PASSWORD", c.SMTPPassword)
	c.TwilioToken = env("TWILIO_AUTH_TOKEN", c.TwilioToken)
	c.ChallengeStore = strings.ToLower(env("CHALLENGE_STORE", c.ChallengeStore))

	if c.Port == "" {
		c.Port = "8080"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.JWTIssuer == "" {
		c.JWTIssuer = "rakshasetu"
	}
	if c.OTPLength == 0 {
		c.OTPLength = 6
	}
	if c.ChallengeStore == "" {
		c.ChallengeStore = StoreMemory
	}
	if c.SMTPPort == 0 {
		c.SMTPPort = 587
	}
	if c.KafkaTopic == "" {
		c.KafkaTopic = "auth-audit"
	}
}

// Validate rejects configurations the service cannot start with
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT secret is required (set jwt.secret or JWT_SECRET)")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("JWT session TTL must be positive, got %s", c.SessionTTL)
	}
	if c.OTPTTL <= 0 {
		return fmt.Errorf("OTP TTL must be positive, got %s", c.OTPTTL)
	}
	if c.ChallengeRetention <= 0 {
		return fmt.Errorf("OTP retention must be positive, got %s", c.ChallengeRetention)
	}
	if c.OTPLength < 4 || c.OTPLength > 10 {
		return fmt.Errorf("OTP length must be between 4 and 10, got %d", c.OTPLength)
	}
	switch c.ChallengeStore {
	case StoreMemory:
	case StoreRedis:
		if c.RedisAddr == "" {
			return errors.New("redis challenge store requires redis.addr or REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown challenge store %q", c.ChallengeStore)
	}
	return nil
}

func parseDuration(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	return time.ParseDuration(raw)
}
