// Package profile holds the startup configuration of the backend process.
package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is configuration to start the backend server.
type Profile struct {
	// LLM configuration (OpenAI-compatible protocol).
	// The desktop bundle ships an Ollama runtime, so "ollama" is the default
	// provider; remote providers (openai, deepseek) use the same client.
	LLMProvider string // Provider identifier: ollama, openai, deepseek
	LLMAPIKey   string // API key; unused by the local ollama runtime
	LLMBaseURL  string // Base URL (optional, has default per provider)
	LLMModel    string // Model name: llama3.1, gpt-4o, deepseek-chat, ...
	LLMTimeout  int    // LLM request timeout in seconds (default: 120)

	// Bundled ML tool executables. The installer places these next to the
	// backend binary; absolute paths may override via env.
	WhisperPath  string // whisper transcription executable
	WhisperModel string // whisper model size (base, small, medium)
	DetectorPath string // YOLO object-detection executable
	FFmpegPath   string // ffmpeg used by the tool executables for audio extraction

	// Routing policy.
	ConfidenceFloor   float64 // minimum classification score before dispatch (default 0.3)
	MaxRecentMessages int     // per-video retention bound for full-fidelity messages (default 10)
	AgentTimeout      int     // per-agent execution timeout in seconds (default 300)
	MaxConcurrentRuns int     // concurrent ML agent executions across all videos (default 2)

	// Server and storage.
	Mode    string // "prod" or "dev"
	Addr    string
	Port    int
	Data    string // data directory (managed video copies, sqlite db)
	Driver  string // database driver: sqlite (default) or postgres
	DSN     string
	Version string
}

// Provider default configurations for the LLM client.
// Used when LLM_BASE_URL / LLM_MODEL are not explicitly set.
var llmProviderDefaults = map[string]struct {
	BaseURL string
	Model   string
}{
	"ollama": {
		BaseURL: "http://localhost:11434/v1",
		Model:   "llama3.1",
	},
	"openai": {
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
	},
	"deepseek": {
		BaseURL: "https://api.deepseek.com",
		Model:   "deepseek-chat",
	},
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsLLMEnabled reports whether an LLM backend is reachable by configuration.
// Ollama needs no API key; remote providers do.
func (p *Profile) IsLLMEnabled() bool {
	if p.LLMProvider == "ollama" {
		return true
	}
	return p.LLMAPIKey != ""
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvOrDefaultFloat returns environment variable value as float64 or default value.
func getEnvOrDefaultFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.LLMProvider = getEnvOrDefault("VIDEOSCOPE_LLM_PROVIDER", "ollama")
	p.LLMAPIKey = getEnvOrDefault("VIDEOSCOPE_LLM_API_KEY", "")
	p.LLMBaseURL = getEnvOrDefault("VIDEOSCOPE_LLM_BASE_URL", "")
	p.LLMModel = getEnvOrDefault("VIDEOSCOPE_LLM_MODEL", "")
	p.LLMTimeout = getEnvOrDefaultInt("VIDEOSCOPE_LLM_TIMEOUT_SECONDS", 120)

	if _, ok := llmProviderDefaults[p.LLMProvider]; !ok {
		slog.Warn("unknown LLM provider, using default: ollama", "provider", p.LLMProvider)
		p.LLMProvider = "ollama"
	}
	if defaults, ok := llmProviderDefaults[p.LLMProvider]; ok {
		if p.LLMBaseURL == "" {
			p.LLMBaseURL = defaults.BaseURL
		}
		if p.LLMModel == "" {
			p.LLMModel = defaults.Model
		}
	}

	p.WhisperPath = getEnvOrDefault("VIDEOSCOPE_WHISPER_PATH", "whisper-cli")
	p.WhisperModel = getEnvOrDefault("VIDEOSCOPE_WHISPER_MODEL", "base")
	p.DetectorPath = getEnvOrDefault("VIDEOSCOPE_DETECTOR_PATH", "yolo-detect")
	p.FFmpegPath = getEnvOrDefault("VIDEOSCOPE_FFMPEG_PATH", "ffmpeg")

	p.ConfidenceFloor = getEnvOrDefaultFloat("VIDEOSCOPE_CONFIDENCE_FLOOR", 0.3)
	p.MaxRecentMessages = getEnvOrDefaultInt("VIDEOSCOPE_MAX_RECENT_MESSAGES", 10)
	p.AgentTimeout = getEnvOrDefaultInt("VIDEOSCOPE_AGENT_TIMEOUT_SECONDS", 300)
	p.MaxConcurrentRuns = getEnvOrDefaultInt("VIDEOSCOPE_MAX_CONCURRENT_RUNS", 2)
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

// defaultDataDir returns the OS-appropriate application data directory.
func defaultDataDir() string {
	switch runtime.GOOS {
	case "windows":
		if base := os.Getenv("LOCALAPPDATA"); base != "" {
			return filepath.Join(base, "videoscope")
		}
		return filepath.Join(os.Getenv("ProgramData"), "videoscope")
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "videoscope")
	default:
		if base := os.Getenv("XDG_DATA_HOME"); base != "" {
			return filepath.Join(base, "videoscope")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "videoscope")
	}
}

func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if p.Data == "" {
		p.Data = defaultDataDir()
		if _, err := os.Stat(p.Data); os.IsNotExist(err) {
			if err := os.MkdirAll(p.Data, 0770); err != nil {
				return errors.Wrapf(err, "failed to create data directory %s", p.Data)
			}
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return err
	}
	p.Data = dataDir

	switch p.Driver {
	case "":
		p.Driver = "sqlite"
	case "sqlite", "postgres":
	default:
		return errors.Errorf("unsupported database driver %q", p.Driver)
	}

	if p.Driver == "sqlite" && p.DSN == "" {
		p.DSN = filepath.Join(p.Data, fmt.Sprintf("videoscope_%s.db", p.Mode))
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn required for postgres driver")
	}

	if p.MaxRecentMessages <= 0 {
		p.MaxRecentMessages = 10
	}
	if p.ConfidenceFloor < 0 || p.ConfidenceFloor > 1 {
		p.ConfidenceFloor = 0.3
	}

	return nil
}
