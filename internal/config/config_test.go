package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"studyquiz/internal/apperr"
	"studyquiz/internal/assessment"
	"studyquiz/internal/chunker"

	"github.com/spf13/viper"
)

// inTempDir runs the test from an empty directory so no stray config.yaml or
// .env is picked up.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	inTempDir(t)
	t.Setenv("GEMINI_API_KEY", "secret")

	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("port: want=8080 got=%q", cfg.Port)
	}
	if cfg.MaxUploadBytes != 50<<20 {
		t.Fatalf("max upload: want=%d got=%d", 50<<20, cfg.MaxUploadBytes)
	}
	if cfg.LLM.Provider != "gemini" || cfg.LLM.GeminiModel != "gemini-2.5-flash" || cfg.LLM.Timeout != 90*time.Second {
		t.Fatalf("llm: got=%+v", cfg.LLM)
	}
	if cfg.ChunkPolicy != chunker.PolicyParagraph || cfg.ResubmitPolicy != assessment.ResubmitOverwrite {
		t.Fatalf("policies: chunk=%q resubmit=%q", cfg.ChunkPolicy, cfg.ResubmitPolicy)
	}
	if cfg.FrontendURL != "http://localhost:5173" || cfg.OCR.Location != "us" {
		t.Fatalf("frontend=%q ocr location=%q", cfg.FrontendURL, cfg.OCR.Location)
	}
}

func TestLoadFromEnv(t *testing.T) {
	inTempDir(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_MODEL", "llama3.2")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("LLM_TIMEOUT", "15s")
	t.Setenv("CHUNK_POLICY", "words")
	t.Setenv("CHUNK_SIZE", "250")
	t.Setenv("RESUBMIT_POLICY", "reject")
	t.Setenv("FRONTEND_URL", "https://quiz.example.com/")
	t.Setenv("R2_BUCKET_NAME", "uploads")

	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.LLM.Provider != "openai" || cfg.LLM.OpenAIModel != "llama3.2" {
		t.Fatalf("got=%+v", cfg)
	}
	if cfg.LLM.Timeout != 15*time.Second {
		t.Fatalf("timeout: got=%v", cfg.LLM.Timeout)
	}
	if cfg.ChunkPolicy != chunker.PolicyWords || cfg.ChunkSize != 250 {
		t.Fatalf("chunking: policy=%q size=%d", cfg.ChunkPolicy, cfg.ChunkSize)
	}
	if cfg.ResubmitPolicy != assessment.ResubmitReject {
		t.Fatalf("resubmit: got=%q", cfg.ResubmitPolicy)
	}
	if cfg.FrontendURL != "https://quiz.example.com" {
		t.Fatalf("frontend url: got=%q", cfg.FrontendURL)
	}
	if cfg.R2.BucketName != "uploads" {
		t.Fatalf("r2 bucket: got=%q", cfg.R2.BucketName)
	}
}

func TestLoadFromConfigFile(t *testing.T) {
	dir := inTempDir(t)
	t.Setenv("GEMINI_API_KEY", "secret")
	yaml := "port: \"7000\"\nchunk_overlap: 50\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "7000" || cfg.ChunkOverlap != 50 {
		t.Fatalf("port=%q overlap=%d", cfg.Port, cfg.ChunkOverlap)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{Port: "8080", MaxUploadBytes: 1}
	valid.LLM.GeminiAPIKey = "k"

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing gemini key", func(c *Config) { c.LLM.GeminiAPIKey = "" }},
		{"openai without model", func(c *Config) { c.LLM.Provider = "openai" }},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "bard" }},
		{"unknown chunk policy", func(c *Config) { c.ChunkPolicy = "sentences" }},
		{"unknown resubmit policy", func(c *Config) { c.ResubmitPolicy = "ignore" }},
		{"empty port", func(c *Config) { c.Port = " " }},
		{"zero upload cap", func(c *Config) { c.MaxUploadBytes = 0 }},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); !apperr.Is(err, apperr.KindInvalidInput) {
				t.Fatalf("want invalid input got=%v", err)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := inTempDir(t)
	if err := LoadDotEnv(nil); err != nil {
		t.Fatalf("missing .env must not fail: %v", err)
	}

	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("STUDYQUIZ_DOTENV_PROBE=loaded\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("STUDYQUIZ_DOTENV_PROBE", "")
	os.Unsetenv("STUDYQUIZ_DOTENV_PROBE")
	if err := LoadDotEnv(nil, path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("STUDYQUIZ_DOTENV_PROBE"); got != "loaded" {
		t.Fatalf("env: want=loaded got=%q", got)
	}
}
