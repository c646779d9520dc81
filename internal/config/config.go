package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

// State backends for preferences and saved sessions.
const (
	BackendMemory    = "memory"
	BackendFile      = "file"
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
)

// Config is resolved from defaults, then ~/.studybuddy/config.toml, then
// STUDYBUDDY_* environment variables.
type Config struct {
	Mode Mode `toml:"mode"`

	// logging server
	Port      string  `toml:"port"`
	DataDir   string  `toml:"data_dir"`
	RateLimit float64 `toml:"rate_limit"`
	RateBurst int     `toml:"rate_burst"`

	// model
	APIKey       string `toml:"api_key"`
	GCPProjectID string `toml:"gcp_project"`
	GCPLocation  string `toml:"gcp_location"`
	ModelName    string `toml:"model"`
	GoogleSearch bool   `toml:"google_search"`
	UseMockLLM   bool   `toml:"use_mock_llm"`

	// client
	LoggerURL    string `toml:"logger_url"`
	StateBackend string `toml:"state_backend"` // "memory", "file", "sqlite" or "firestore"
	StateDir     string `toml:"state_dir"`
	SQLitePath   string `toml:"sqlite_path"`
	ClientID     string `toml:"client_id"`

	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`
}

// LogPath is the JSON-lines file the logging server appends to.
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "logs.jsonl")
}

// Dir returns ~/.studybuddy.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home dir: %w", err)
	}
	return filepath.Join(home, ".studybuddy"), nil
}

// Default returns the built-in configuration rooted at dir.
func Default(dir string) *Config {
	return &Config{
		Mode: ModeLocal,

		Port:      "5050",
		DataDir:   "data",
		RateLimit: 0,
		RateBurst: 10,

		GCPLocation:  "us-central1",
		ModelName:    "gemini-3-flash-preview",
		GoogleSearch: true,

		LoggerURL:    "http://localhost:5050/log",
		StateBackend: BackendFile,
		StateDir:     filepath.Join(dir, "state"),
		SQLitePath:   filepath.Join(dir, "state.db"),
		ClientID:     "default",

		LogLevel: "info",
		LogFile:  filepath.Join(dir, "studybuddy.log"),
	}
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

func getFloatEnv(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return def
	}
	return v
}

func getIntEnv(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

// Load reads the config file (STUDYBUDDY_CONFIG or ~/.studybuddy/config.toml)
// if present, applies env overrides and validates the result.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	path := getEnv("STUDYBUDDY_CONFIG", filepath.Join(dir, "config.toml"))
	return LoadFrom(dir, path)
}

// LoadFrom is Load with explicit paths. A missing file is not an error.
func LoadFrom(dir, path string) (*Config, error) {
	cfg := Default(dir)

	mockSet := false
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		switch {
		case err == nil:
			mockSet = md.IsDefined("use_mock_llm")
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to decode TOML file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	// with neither a key nor Vertex there is nothing to talk to but the mock
	if !mockSet && os.Getenv("STUDYBUDDY_USE_MOCK_LLM") == "" {
		cfg.UseMockLLM = cfg.Mode == ModeLocal && cfg.APIKey == ""
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	switch getEnv("STUDYBUDDY_MODE", string(c.Mode)) {
	case "gcp":
		c.Mode = ModeGCP
	default:
		c.Mode = ModeLocal
	}

	c.Port = getEnv("STUDYBUDDY_PORT", getEnv("PORT", c.Port))
	c.DataDir = getEnv("STUDYBUDDY_DATA_DIR", c.DataDir)
	c.RateLimit = getFloatEnv("STUDYBUDDY_RATE_LIMIT", c.RateLimit)
	c.RateBurst = getIntEnv("STUDYBUDDY_RATE_BURST", c.RateBurst)

	c.APIKey = getEnv("STUDYBUDDY_API_KEY", getEnv("GEMINI_API_KEY", c.APIKey))
	c.GCPProjectID = getEnv("STUDYBUDDY_GCP_PROJECT", c.GCPProjectID)
	c.GCPLocation = getEnv("STUDYBUDDY_GCP_LOCATION", c.GCPLocation)
	c.ModelName = getEnv("STUDYBUDDY_MODEL_NAME", c.ModelName)
	c.GoogleSearch = getBoolEnv("STUDYBUDDY_GOOGLE_SEARCH", c.GoogleSearch)
	c.UseMockLLM = getBoolEnv("STUDYBUDDY_USE_MOCK_LLM", c.UseMockLLM)

	c.LoggerURL = getEnv("STUDYBUDDY_LOGGER_URL", c.LoggerURL)
	c.StateBackend = strings.ToLower(getEnv("STUDYBUDDY_STATE_BACKEND", c.StateBackend))
	c.StateDir = getEnv("STUDYBUDDY_STATE_DIR", c.StateDir)
	c.SQLitePath = getEnv("STUDYBUDDY_SQLITE_PATH", c.SQLitePath)
	c.ClientID = getEnv("STUDYBUDDY_CLIENT_ID", c.ClientID)

	c.LogLevel = getEnv("STUDYBUDDY_LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("STUDYBUDDY_LOG_FILE", c.LogFile)
}

// Validate checks backend choices and the settings they need.
func (c *Config) Validate() error {
	switch c.StateBackend {
	case BackendMemory, BackendFile, BackendSQLite:
	case BackendFirestore:
		if c.GCPProjectID == "" {
			return errors.New("STUDYBUDDY_GCP_PROJECT must be set for the firestore state backend")
		}
	default:
		return fmt.Errorf("unknown state backend %q", c.StateBackend)
	}

	if c.Mode == ModeGCP && c.GCPProjectID == "" {
		return errors.New("STUDYBUDDY_GCP_PROJECT must be set in gcp mode")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative, got %v", c.RateLimit)
	}
	return nil
}
