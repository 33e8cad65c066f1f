package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

const (
	AdvisorMock    = "mock"
	AdvisorVertex  = "vertex"
	AdvisorOllama  = "ollama"
	AdvisorGateway = "gateway"
)

const (
	StorageMemory    = "memory"
	StorageSQLite    = "sqlite"
	StorageFirestore = "firestore"
)

type Config struct {
	Mode Mode

	Port string

	Advisor      string // "mock", "vertex", "ollama" or "gateway"
	GCPProjectID string
	GCPLocation  string
	ModelName    string
	OllamaModel  string
	GatewayURL   string

	StorageBackend string // "memory", "sqlite" or "firestore"
	SQLitePath     string

	LogDir    string // empty disables the rotated log file
	LogLevel  string
	Telemetry bool

	MaxUploadMB int64
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getIntEnv(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// Load reads all env vars and builds the config.
func Load() (*Config, error) {
	var mode Mode
	switch getEnv("AGRI_MODE", "local") {
	case "gcp":
		mode = ModeGCP
	default:
		mode = ModeLocal
	}

	defaultAdvisor := AdvisorMock
	if mode == ModeGCP {
		defaultAdvisor = AdvisorVertex
	}

	maxUpload, err := getIntEnv("AGRI_MAX_UPLOAD_MB", 10)
	if err != nil {
		return nil, err
	}

	logDir, ok := os.LookupEnv("AGRI_LOG_DIR")
	if !ok {
		logDir = "logs"
	}

	cfg := &Config{
		Mode: mode,

		Port: getEnv("AGRI_PORT", "8080"),

		Advisor:      strings.ToLower(getEnv("AGRI_ADVISOR", defaultAdvisor)),
		GCPProjectID: getEnv("AGRI_GCP_PROJECT", ""),
		GCPLocation:  getEnv("AGRI_GCP_LOCATION", "us-central1"),
		ModelName:    getEnv("AGRI_MODEL_NAME", "gemini-2.5-flash"),
		OllamaModel:  getEnv("AGRI_OLLAMA_MODEL", "llava:latest"),
		GatewayURL:   getEnv("AGRI_GATEWAY_URL", "http://agents-gateway:80"),

		StorageBackend: strings.ToLower(getEnv("AGRI_STORAGE_BACKEND", StorageMemory)),
		SQLitePath:     getEnv("AGRI_SQLITE_PATH", "agribharat.db"),

		LogDir:    logDir,
		LogLevel:  getEnv("AGRI_LOG_LEVEL", "info"),
		Telemetry: getBoolEnv("AGRI_TELEMETRY", false),

		MaxUploadMB: maxUpload,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.Advisor {
	case AdvisorMock, AdvisorVertex, AdvisorOllama, AdvisorGateway:
	default:
		return fmt.Errorf("unknown advisor %q", c.Advisor)
	}

	switch c.StorageBackend {
	case StorageMemory, StorageSQLite, StorageFirestore:
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}

	needsProject := c.Mode == ModeGCP || c.Advisor == AdvisorVertex || c.StorageBackend == StorageFirestore
	if needsProject && c.GCPProjectID == "" {
		return fmt.Errorf("AGRI_GCP_PROJECT must be set for %s mode, %s advisor, %s storage", c.Mode, c.Advisor, c.StorageBackend)
	}

	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("AGRI_MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// MaxUploadBytes is the multipart limit for image uploads.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
