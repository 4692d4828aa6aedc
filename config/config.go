package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server ServerConfig
	JWT    JWTConfig
	Data   DataConfig
	Redis  RedisConfig
	AWS    AWSConfig
	Backup BackupConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// JWTConfig holds JWT signing and validation settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// DataConfig holds the locations of the JSON data files and upload
// directories. Every collection path derives from Dir so the whole
// store can be pointed somewhere else in one place (tests use a temp
// dir).
type DataConfig struct {
	Dir        string // root of the JSON collections, default "data"
	UploadsDir string // root of uploaded files, default "uploads"
}

// RedisConfig holds Redis connection settings. Addr empty disables
// Redis-backed features (cross-instance message fan-out, job queue).
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AWSConfig holds optional S3 settings for mirroring uploads and
// backup archives. Bucket empty disables S3.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	Bucket               string
	PresignExpireMinutes int
}

// BackupConfig holds data-directory backup settings.
type BackupConfig struct {
	Dir           string // where archives are written, default "backups"
	RetentionDays int    // cleanup removes archives older than this
}

// TasksFile returns the path of the task collection.
func (d DataConfig) TasksFile() string { return filepath.Join(d.Dir, "tasks", "tasks.json") }

// BuildLogsFile returns the path of the build log collection.
func (d DataConfig) BuildLogsFile() string { return filepath.Join(d.Dir, "logs", "build_logs.json") }

// ResourcesFile returns the path of the resource collection.
func (d DataConfig) ResourcesFile() string {
	return filepath.Join(d.Dir, "resources", "resources.json")
}

// MediaFile returns the path of the media collection.
func (d DataConfig) MediaFile() string { return filepath.Join(d.Dir, "media", "media_items.json") }

// SponsorsFile returns the path of the sponsor collection.
func (d DataConfig) SponsorsFile() string {
	return filepath.Join(d.Dir, "sponsors", "sponsors.json")
}

// EventsFile returns the path of the event collection.
func (d DataConfig) EventsFile() string { return filepath.Join(d.Dir, "events", "events.json") }

// MessagesFile returns the path of the message collection.
func (d DataConfig) MessagesFile() string {
	return filepath.Join(d.Dir, "messages", "messages.json")
}

// UsersFile returns the path of the user directory (map keyed by username).
func (d DataConfig) UsersFile() string { return filepath.Join(d.Dir, "users.json") }

// SettingsFile returns the path of the settings document.
func (d DataConfig) SettingsFile() string { return filepath.Join(d.Dir, "settings.json") }

// AuditLogFile returns the path of the admin audit log collection.
func (d DataConfig) AuditLogFile() string { return filepath.Join(d.Dir, "admin", "audit_log.json") }

// ResourceUploadsDir returns where resource files are stored.
func (d DataConfig) ResourceUploadsDir() string { return filepath.Join(d.UploadsDir, "resources") }

// MediaUploadsDir returns where media files are stored.
func (d DataConfig) MediaUploadsDir() string { return filepath.Join(d.UploadsDir, "media") }

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),
		},
		Data: DataConfig{
			Dir:        getEnv("DATA_DIR", "data"),
			UploadsDir: getEnv("UPLOADS_DIR", "uploads"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Bucket:               getEnv("AWS_S3_BUCKET", ""),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
		Backup: BackupConfig{
			Dir:           getEnv("BACKUP_DIR", "backups"),
			RetentionDays: getEnvInt("BACKUP_RETENTION_DAYS", 30),
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// SplitTrim splits a comma-separated value and trims blanks.
func SplitTrim(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, ",") {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
