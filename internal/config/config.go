// File: internal/config/config.go
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// SessionSecret signs the session cookie handed to the storefront widget.
	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type VerificationConfig struct {
	OTPEnabled      bool     `yaml:"otp_enabled"`
	TokenEnabled    bool     `yaml:"token_enabled"`
	AllowedRegions  []string `yaml:"allowed_regions"` // india|usa|uk|global
	OTPTimerSeconds int      `yaml:"otp_timer_seconds"`
	TestMode        bool     `yaml:"test_mode"`
}

type OTPConfig struct {
	CodeTTL        time.Duration `yaml:"code_ttl"`
	ResendCooldown time.Duration `yaml:"resend_cooldown"`
	MaxAttempts    int           `yaml:"max_attempts"`
	SendLimit      int           `yaml:"send_limit"`
	SendWindow     time.Duration `yaml:"send_window"`
}

type PaymentConfig struct {
	Razorpay struct {
		KeyID     string `yaml:"key_id"`
		KeySecret string `yaml:"key_secret"`
		BaseURL   string `yaml:"base_url"`
	} `yaml:"razorpay"`
	Token struct {
		Amount   int64  `yaml:"amount"` // minor units
		Currency string `yaml:"currency"`
	} `yaml:"token"`
}

type SMSConfig struct {
	Provider string `yaml:"provider"` // msg91 | capture
	MSG91    struct {
		AuthKey    string `yaml:"auth_key"`
		TemplateID string `yaml:"template_id"`
		BaseURL    string `yaml:"base_url"`
	} `yaml:"msg91"`
}

type SchedulerConfig struct {
	ReconcileInterval time.Duration `yaml:"reconcile_interval"`
	ReconcileAfter    time.Duration `yaml:"reconcile_after"`
	RefundInterval    time.Duration `yaml:"refund_interval"`
	RefundAfter       time.Duration `yaml:"refund_after"`
}

type SecurityConfig struct {
	EncryptionKey string `yaml:"encryption_key"`
}

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Log          LogConfig          `yaml:"log"`
	Admin        AdminConfig        `yaml:"admin"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Verification VerificationConfig `yaml:"verification"`
	OTP          OTPConfig          `yaml:"otp"`
	Payment      PaymentConfig      `yaml:"payment"`
	SMS          SMSConfig          `yaml:"sms"`
	Scheduler    SchedulerConfig    `yaml:"scheduler"`
	Security     SecurityConfig     `yaml:"security"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig() (*Config, error) {
	var configPath string = ""
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Server.SessionSecret == "" {
		return nil, errors.New("server.session_secret is required")
	}
	if !cfg.Verification.TestMode && cfg.Verification.TokenEnabled {
		if cfg.Payment.Razorpay.KeyID == "" || cfg.Payment.Razorpay.KeySecret == "" {
			return nil, errors.New("payment.razorpay keys are required outside test mode")
		}
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.SessionTTL <= 0 {
		cfg.Server.SessionTTL = 30 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = 30 * time.Minute
	}
	if len(cfg.Verification.AllowedRegions) == 0 {
		cfg.Verification.AllowedRegions = []string{"india"}
	}
	if cfg.Verification.OTPTimerSeconds <= 0 {
		cfg.Verification.OTPTimerSeconds = 30
	}
	if cfg.OTP.CodeTTL <= 0 {
		cfg.OTP.CodeTTL = 5 * time.Minute
	}
	if cfg.OTP.ResendCooldown <= 0 {
		cfg.OTP.ResendCooldown = time.Duration(cfg.Verification.OTPTimerSeconds) * time.Second
	}
	if cfg.OTP.MaxAttempts <= 0 {
		cfg.OTP.MaxAttempts = 5
	}
	if cfg.OTP.SendLimit <= 0 {
		cfg.OTP.SendLimit = 5
	}
	if cfg.OTP.SendWindow <= 0 {
		cfg.OTP.SendWindow = time.Hour
	}
	if cfg.Payment.Token.Amount <= 0 {
		cfg.Payment.Token.Amount = 100 // ₹1
	}
	if cfg.Payment.Token.Currency == "" {
		cfg.Payment.Token.Currency = "INR"
	}
	if cfg.Payment.Razorpay.BaseURL == "" {
		cfg.Payment.Razorpay.BaseURL = "https://api.razorpay.com/v1"
	}
	if cfg.SMS.Provider == "" {
		cfg.SMS.Provider = "capture"
	}
	if cfg.SMS.MSG91.BaseURL == "" {
		cfg.SMS.MSG91.BaseURL = "https://control.msg91.com/api/v5"
	}
	if cfg.Scheduler.ReconcileInterval <= 0 {
		cfg.Scheduler.ReconcileInterval = 5 * time.Minute
	}
	if cfg.Scheduler.ReconcileAfter <= 0 {
		cfg.Scheduler.ReconcileAfter = 30 * time.Minute
	}
	if cfg.Scheduler.RefundInterval <= 0 {
		cfg.Scheduler.RefundInterval = time.Hour
	}
	if cfg.Scheduler.RefundAfter <= 0 {
		cfg.Scheduler.RefundAfter = 24 * time.Hour
	}
}
