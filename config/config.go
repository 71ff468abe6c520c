package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port   string `env:"PORT" envDefault:"3000"`
	AppEnv string `env:"APP_ENV" envDefault:"development"`

	DBDriver   string `env:"DB_DRIVER" envDefault:"postgres"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"elearning"`
	DBDSN      string `env:"DB_DSN"` // overrides the DB_HOST.. group when set

	JWTKey    string        `env:"JWT_SECRET_KEY" envDefault:"defaultSecret"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`
	SaltRound int           `env:"SALT_ROUND" envDefault:"10"`

	// First admin account, created on startup when both are set.
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	AdminName     string `env:"ADMIN_NAME" envDefault:"Administrator"`

	S3Endpoint     string `env:"S3_ENDPOINT"`
	S3Region       string `env:"S3_REGION" envDefault:"ap-southeast-1"`
	S3Bucket       string `env:"S3_BUCKET"`
	S3AccessKey    string `env:"S3_ACCESS_KEY"`
	S3SecretKey    string `env:"S3_SECRET_KEY"`
	S3PublicURL    string `env:"S3_PUBLIC_URL"`
	S3UsePathStyle bool   `env:"S3_USE_PATH_STYLE" envDefault:"false"`

	PublicDir string `env:"PUBLIC_DIR" envDefault:"./public"`
	PublicURL string `env:"PUBLIC_URL" envDefault:"http://localhost:3000"`

	PDFApiURL     string        `env:"PDF_API_URL" envDefault:"http://localhost:3001"`
	PDFApiKey     string        `env:"PDF_API_KEY"`
	PDFApiTimeout time.Duration `env:"PDF_API_TIMEOUT" envDefault:"30s"`

	SendgridAPIKey  string `env:"SENDGRID_API_KEY"`
	EmailSender     string `env:"EMAIL_SENDER" envDefault:"no-reply@elearning.local"`
	EmailSenderName string `env:"EMAIL_SENDER_NAME" envDefault:"E-Learning"`

	InvoiceSweepSpec string `env:"INVOICE_SWEEP_SPEC" envDefault:"* * * * *"`
	TokenPurgeSpec   string `env:"TOKEN_PURGE_SPEC" envDefault:"@hourly"`
}

// LoadConfig initializes configuration from the .env file and the environment
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	for _, w := range cfg.Warnings() {
		log.Println("Warning: " + w)
	}

	return cfg, nil
}

// Parse reads the configuration from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("parse env: unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Warnings lists settings still on insecure or placeholder defaults.
func (c *Config) Warnings() []string {
	var out []string
	if c.JWTKey == "defaultSecret" {
		out = append(out, "Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if c.S3Bucket == "" {
		out = append(out, "S3_BUCKET is empty. Files are stored under "+c.PublicDir+".")
	}
	if c.SendgridAPIKey == "" {
		out = append(out, "SENDGRID_API_KEY is empty. Emails are written to the log.")
	}
	return out
}

// DSN builds the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	switch c.DBDriver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	case "sqlite":
		return c.DBName + ".db"
	default:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
	}
}
