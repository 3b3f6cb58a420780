package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig       `envPrefix:"APP_"`
	Server    ServerConfig
	Database  DatabaseConfig  `envPrefix:"DB_"`
	JWT       JWTConfig       `envPrefix:"JWT_"`
	Mailjet   MailjetConfig   `envPrefix:"MAILJET_"`
	Xendit    XenditConfig    `envPrefix:"XENDIT_"`
	Redis     RedisConfig     `envPrefix:"REDIS_"`
	Checkout  CheckoutConfig  `envPrefix:"CHECKOUT_"`
	Fraud     FraudConfig     `envPrefix:"FRAUD_"`
	Invoice   InvoiceConfig   `envPrefix:"INVOICE_"`
	Telemetry TelemetryConfig `envPrefix:"OTEL_"`
}

type MailjetConfig struct {
	BaseURL     string        `env:"BASE_URL"`
	APIKey      string        `env:"API_KEY"`
	APISecret   string        `env:"API_SECRET"`
	SenderEmail string        `env:"SENDER_EMAIL"`
	SenderName  string        `env:"SENDER_NAME" envDefault:"TechShop"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"5s"`
}

type AppConfig struct {
	Name                    string `env:"NAME" envDefault:"TechShop API"`
	Version                 string `env:"VERSION" envDefault:"1.0.0"`
	Environment             string `env:"ENV" envDefault:"development"`
	AppDeploymentUrl        string `env:"DEPLOYMENT_URL"`
	AppEmailVerificationKey string `env:"EMAIL_VERIFICATION_KEY"`
	TrackingKey             string `env:"TRACKING_KEY"`
}

type ServerConfig struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	Timeout      time.Duration `env:"HANDLER_TIMEOUT" envDefault:"10s"`
	AllowOrigins []string      `env:"CORS_ALLOW_ORIGINS" envDefault:"http://localhost:3000,http://localhost:8080"`

	// Proxy addresses or CIDRs allowed to set X-Forwarded-For. Empty means
	// clients are addressed by their socket peer.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

type DatabaseConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD"`
	Name     string `env:"NAME" envDefault:"techshop"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"`
}

type JWTConfig struct {
	SecretKey string        `env:"SECRET"`
	TTL       time.Duration `env:"TTL" envDefault:"24h"`
}

type XenditConfig struct {
	XenditSecretKey                string `env:"SECRET_KEY"`
	XenditUrl                      string `env:"URL" envDefault:"https://api.xendit.co/v2/invoices"`
	RedirectUrl                    string `env:"REDIRECT_URL"`
	XenditWebhookVerificationToken string `env:"WEBHOOK_VERIFICATION_TOKEN"`
}

// RedisConfig is optional; an empty host disables the IP velocity window.
type RedisConfig struct {
	RedisHost     string `env:"HOST"`
	RedisPort     string `env:"PORT" envDefault:"6379"`
	RedisPassword string `env:"PASSWORD"`
	RedisDB       int    `env:"DB" envDefault:"0"`
}

type CheckoutConfig struct {
	SideEffectTimeout time.Duration `env:"SIDE_EFFECT_TIMEOUT" envDefault:"10s"`
}

type FraudConfig struct {
	HighValueAmount     float64       `env:"HIGH_VALUE_AMOUNT" envDefault:"50000"`
	CustomerOrderLimit  int           `env:"CUSTOMER_ORDER_LIMIT" envDefault:"3"`
	CustomerOrderWindow time.Duration `env:"CUSTOMER_ORDER_WINDOW" envDefault:"24h"`
	IPOrderLimit        int           `env:"IP_ORDER_LIMIT" envDefault:"3"`
	IPOrderWindow       time.Duration `env:"IP_ORDER_WINDOW" envDefault:"1h"`
	AbnormalQuantity    int           `env:"ABNORMAL_QUANTITY" envDefault:"20"`
}

type InvoiceConfig struct {
	Dir string `env:"DIR" envDefault:"./invoices"`
}

type TelemetryConfig struct {
	Endpoint    string `env:"EXPORTER_ENDPOINT"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"techshop"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.App.AppDeploymentUrl == "" {
		return nil, errors.New("missing app deployment url")
	}

	if cfg.App.AppEmailVerificationKey == "" {
		return nil, errors.New("missing app email verification key")
	}

	if cfg.App.TrackingKey == "" {
		cfg.App.TrackingKey = cfg.App.AppEmailVerificationKey
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	return cfg, nil
}

// DSN builds the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

func (r RedisConfig) Enabled() bool {
	return r.RedisHost != ""
}
