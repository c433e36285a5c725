package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// DriveConfig holds the Google Drive credentials and the mirror root folder.
// When the OAuth triple is incomplete the client falls back to application
// default credentials.
type DriveConfig struct {
	FolderID     string
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// ReplicationConfig holds the environment layer of the replication settings.
// Effective values come from the Resolver, which lets runtime overrides win.
type ReplicationConfig struct {
	Enabled      bool
	Strict       bool
	PathTemplate string `validate:"required"`
	TypeRemapRaw string
}

// TraceConfig controls the SAP diagnostic trace middleware.
type TraceConfig struct {
	AllRequests bool
	UserAgent   string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost        string
	Port           string `validate:"required"`
	MaxUploadMB    int    `validate:"gt=0,lte=512"`
	StorageBackend string `validate:"oneof=object drive"`
	Database       DatabaseConfig
	MinIO          MinIOConfig
	Drive          DriveConfig
	Replication    ReplicationConfig
	Trace          TraceConfig
}

// Load reads configuration from environment variables and validates it.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		AppHost:        getEnv("APP_HOST", "localhost:8080"),
		Port:           getEnv("PORT", "8080"), // default only for non-sensitive value
		MaxUploadMB:    getEnvInt("MAX_UPLOAD_MB", 25),
		StorageBackend: getEnv("STORAGE_BACKEND", "object"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Drive: DriveConfig{
			FolderID:     getEnv("GOOGLE_DRIVE_FOLDER_ID", ""),
			ClientID:     getEnv("GOOGLE_DRIVE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_DRIVE_CLIENT_SECRET", ""),
			RefreshToken: getEnv("GOOGLE_DRIVE_REFRESH_TOKEN", ""),
		},
		Replication: ReplicationConfig{
			Enabled:      getEnvBool("REPLICATE_TO_DRIVE", false),
			Strict:       getEnvBool("REPLICATE_TO_DRIVE_STRICT", false),
			PathTemplate: getEnv("DRIVE_REPLICATION_PATH_TEMPLATE", "{foType}/{foId}/Attachment"),
			TypeRemapRaw: getEnv("DRIVE_REPLICATION_FO_TYPE_MAP", "{}"),
		},
		Trace: TraceConfig{
			AllRequests: getEnvBool("SAP_TRACE_ALL_REQUESTS", false),
			UserAgent:   getEnv("SAP_TRACE_USER_AGENT", "SAP NetWeaver Application Server"),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
