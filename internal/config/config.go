package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Gemini     GeminiConfig
	Storage    StorageConfig
	Extraction ExtractionConfig
	Auth       AuthConfig
	Qdrant     QdrantConfig
}

type ServerConfig struct {
	Port string `validate:"required"`
	Env  string `validate:"oneof=development production test"`
}

type DatabaseConfig struct {
	Driver   string `validate:"oneof=postgres mysql"`
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type GeminiConfig struct {
	APIKey         string `validate:"required"`
	Model          string `validate:"required"`
	EmbedModel     string
	BaseURL        string
	ConnectTimeout time.Duration `validate:"gt=0"`
	RequestTimeout time.Duration `validate:"gt=0"`
}

type StorageConfig struct {
	Driver      string `validate:"oneof=local s3"`
	UploadPath  string
	MaxFileSize int64 `validate:"gt=0"`
	S3          S3Config
}

type S3Config struct {
	Bucket    string `validate:"required_if=Enabled true"`
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Enabled   bool
}

type ExtractionConfig struct {
	PDFMode       string `validate:"oneof=pdftotext native"`
	PDFToTextPath string
	DOCXEnabled   bool
	Timeout       time.Duration `validate:"gt=0"`
}

type AuthConfig struct {
	JWTSecret string `validate:"required,min=16"`
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	VectorSize uint64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using environment and default values.")
	}

	storageDriver := getEnv("STORAGE_DRIVER", "local")

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			DSN:      getEnv("DB_DSN", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "resume_matcher"),
		},
		Gemini: GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Model:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			EmbedModel:     getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),
			BaseURL:        getEnv("GEMINI_BASE_URL", ""),
			ConnectTimeout: getEnvAsDuration("GEMINI_CONNECT_TIMEOUT", "20s"),
			RequestTimeout: getEnvAsDuration("GEMINI_REQUEST_TIMEOUT", "120s"),
		},
		Storage: StorageConfig{
			Driver:      storageDriver,
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 5000000),
			S3: S3Config{
				Bucket:    getEnv("S3_BUCKET", ""),
				Region:    getEnv("S3_REGION", "auto"),
				Endpoint:  getEnv("S3_ENDPOINT", ""),
				AccessKey: getEnv("S3_ACCESS_KEY", ""),
				SecretKey: getEnv("S3_SECRET_KEY", ""),
				Enabled:   storageDriver == "s3",
			},
		},
		Extraction: ExtractionConfig{
			PDFMode:       getEnv("PDF_EXTRACTOR", "pdftotext"),
			PDFToTextPath: getEnv("PDFTOTEXT_PATH", "pdftotext"),
			DOCXEnabled:   getEnvAsBool("EXTRACT_DOCX", false),
			Timeout:       getEnvAsDuration("EXTRACT_TIMEOUT", "60s"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", ""),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "resume_match_analyses"),
			VectorSize: uint64(getEnvAsInt("QDRANT_VECTOR_SIZE", 768)),
		},
	}
}

// Validate checks the settings every command needs before touching any
// external system.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IndexEnabled reports whether the Qdrant analysis index is configured.
func (c *Config) IndexEnabled() bool {
	return c.Qdrant.URL != ""
}

func (c *Config) GetDatabaseDSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}

	if c.Database.Driver == "mysql" {
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.Database.User,
			c.Database.Password,
			c.Database.Host,
			c.Database.Port,
			c.Database.DBName,
		)
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
