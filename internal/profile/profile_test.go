package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var profileEnvVars = []string{
	"VIDEOSCOPE_LLM_PROVIDER",
	"VIDEOSCOPE_LLM_API_KEY",
	"VIDEOSCOPE_LLM_BASE_URL",
	"VIDEOSCOPE_LLM_MODEL",
	"VIDEOSCOPE_LLM_TIMEOUT_SECONDS",
	"VIDEOSCOPE_WHISPER_PATH",
	"VIDEOSCOPE_WHISPER_MODEL",
	"VIDEOSCOPE_DETECTOR_PATH",
	"VIDEOSCOPE_FFMPEG_PATH",
	"VIDEOSCOPE_CONFIDENCE_FLOOR",
	"VIDEOSCOPE_MAX_RECENT_MESSAGES",
	"VIDEOSCOPE_AGENT_TIMEOUT_SECONDS",
	"VIDEOSCOPE_MAX_CONCURRENT_RUNS",
}

func clearProfileEnv(t *testing.T) {
	t.Helper()
	for _, key := range profileEnvVars {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearProfileEnv(t)

	p := &Profile{}
	p.FromEnv()

	if p.LLMProvider != "ollama" {
		t.Errorf("LLMProvider = %q, want ollama", p.LLMProvider)
	}
	if p.LLMBaseURL != "http://localhost:11434/v1" {
		t.Errorf("LLMBaseURL = %q", p.LLMBaseURL)
	}
	if p.LLMModel != "llama3.1" {
		t.Errorf("LLMModel = %q", p.LLMModel)
	}
	if p.LLMTimeout != 120 {
		t.Errorf("LLMTimeout = %d", p.LLMTimeout)
	}
	if p.ConfidenceFloor != 0.3 {
		t.Errorf("ConfidenceFloor = %v", p.ConfidenceFloor)
	}
	if p.MaxRecentMessages != 10 {
		t.Errorf("MaxRecentMessages = %d", p.MaxRecentMessages)
	}
	if p.AgentTimeout != 300 {
		t.Errorf("AgentTimeout = %d", p.AgentTimeout)
	}
	if p.MaxConcurrentRuns != 2 {
		t.Errorf("MaxConcurrentRuns = %d", p.MaxConcurrentRuns)
	}
	if p.WhisperPath != "whisper-cli" || p.DetectorPath != "yolo-detect" || p.FFmpegPath != "ffmpeg" {
		t.Errorf("tool paths = %q %q %q", p.WhisperPath, p.DetectorPath, p.FFmpegPath)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	clearProfileEnv(t)
	t.Setenv("VIDEOSCOPE_LLM_PROVIDER", "deepseek")
	t.Setenv("VIDEOSCOPE_LLM_API_KEY", "sk-test")
	t.Setenv("VIDEOSCOPE_CONFIDENCE_FLOOR", "0.5")
	t.Setenv("VIDEOSCOPE_MAX_RECENT_MESSAGES", "4")

	p := &Profile{}
	p.FromEnv()

	if p.LLMProvider != "deepseek" {
		t.Errorf("LLMProvider = %q", p.LLMProvider)
	}
	if p.LLMBaseURL != "https://api.deepseek.com" {
		t.Errorf("LLMBaseURL = %q", p.LLMBaseURL)
	}
	if p.LLMModel != "deepseek-chat" {
		t.Errorf("LLMModel = %q", p.LLMModel)
	}
	if p.ConfidenceFloor != 0.5 {
		t.Errorf("ConfidenceFloor = %v", p.ConfidenceFloor)
	}
	if p.MaxRecentMessages != 4 {
		t.Errorf("MaxRecentMessages = %d", p.MaxRecentMessages)
	}
}

func TestFromEnvUnknownProviderFallsBack(t *testing.T) {
	clearProfileEnv(t)
	t.Setenv("VIDEOSCOPE_LLM_PROVIDER", "nonsense")

	p := &Profile{}
	p.FromEnv()

	if p.LLMProvider != "ollama" {
		t.Errorf("LLMProvider = %q, want ollama fallback", p.LLMProvider)
	}
}

func TestIsLLMEnabled(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    bool
	}{
		{"ollama needs no key", Profile{LLMProvider: "ollama"}, true},
		{"openai without key", Profile{LLMProvider: "openai"}, false},
		{"openai with key", Profile{LLMProvider: "openai", LLMAPIKey: "sk-x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.profile.IsLLMEnabled(); got != tt.want {
				t.Errorf("IsLLMEnabled = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	dir := t.TempDir()
	p := &Profile{Mode: "dev", Data: dir}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if p.Driver != "sqlite" {
		t.Errorf("Driver = %q, want sqlite", p.Driver)
	}
	wantDSN := filepath.Join(dir, "videoscope_dev.db")
	if p.DSN != wantDSN {
		t.Errorf("DSN = %q, want %q", p.DSN, wantDSN)
	}
}

func TestValidateClampsPolicy(t *testing.T) {
	p := &Profile{
		Mode:              "dev",
		Data:              t.TempDir(),
		MaxRecentMessages: -3,
		ConfidenceFloor:   1.7,
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if p.MaxRecentMessages != 10 {
		t.Errorf("MaxRecentMessages = %d, want 10", p.MaxRecentMessages)
	}
	if p.ConfidenceFloor != 0.3 {
		t.Errorf("ConfidenceFloor = %v, want 0.3", p.ConfidenceFloor)
	}
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	p := &Profile{Mode: "dev", Data: t.TempDir(), Driver: "oracle"}
	err := p.Validate()
	if err == nil || !strings.Contains(err.Error(), "unsupported database driver") {
		t.Errorf("Validate err = %v", err)
	}
}

func TestValidatePostgresRequiresDSN(t *testing.T) {
	p := &Profile{Mode: "prod", Data: t.TempDir(), Driver: "postgres"}
	if err := p.Validate(); err == nil {
		t.Error("expected error for postgres without DSN")
	}
}
