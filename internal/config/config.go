// Package config assembles the server configuration from the environment, an
// optional config.yaml and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"studyquiz/internal/apperr"
	"studyquiz/internal/assessment"
	"studyquiz/internal/chunker"
	"studyquiz/internal/extract"
	"studyquiz/internal/llm"
	"studyquiz/internal/logger"
	"studyquiz/internal/r2"
	"studyquiz/internal/retrieval"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port            string
	LogMode         string
	FrontendURL     string
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration

	LLM llm.Config

	ChunkPolicy  chunker.Policy
	ChunkSize    int
	ChunkOverlap int
	MaxFeatures  int

	ResubmitPolicy assessment.ResubmitPolicy

	R2  r2.Config
	OCR extract.OCRConfig
}

// Keys, which double as environment variable names once upper-cased.
const (
	KeyPort            = "port"
	KeyLogMode         = "log_mode"
	KeyFrontendURL     = "frontend_url"
	KeyMaxUploadBytes  = "max_upload_bytes"
	KeyShutdownTimeout = "shutdown_timeout"

	KeyLLMProvider   = "llm_provider"
	KeyGeminiAPIKey  = "gemini_api_key"
	KeyGeminiModel   = "gemini_model"
	KeyOpenAIBaseURL = "openai_base_url"
	KeyOpenAIAPIKey  = "openai_api_key"
	KeyOpenAIModel   = "openai_model"
	KeyLLMTimeout    = "llm_timeout"

	KeyChunkPolicy    = "chunk_policy"
	KeyChunkSize      = "chunk_size"
	KeyChunkOverlap   = "chunk_overlap"
	KeyMaxFeatures    = "max_features"
	KeyResubmitPolicy = "resubmit_policy"

	KeyR2AccountID   = "cloudflare_account_id"
	KeyR2Bucket      = "r2_bucket_name"
	KeyR2AccessKey   = "r2_access_key_id"
	KeyR2SecretKey   = "r2_secret_access_key"
	KeyR2PublicURL   = "r2_public_url"
	KeyR2EndpointURL = "r2_endpoint"

	KeyDocAIProject   = "documentai_project_id"
	KeyDocAILocation  = "documentai_location"
	KeyDocAIProcessor = "documentai_processor_id"
)

const DefaultMaxUploadBytes = 50 << 20

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyLogMode, "development")
	v.SetDefault(KeyFrontendURL, "http://localhost:5173")
	v.SetDefault(KeyMaxUploadBytes, DefaultMaxUploadBytes)
	v.SetDefault(KeyShutdownTimeout, 5*time.Second)

	v.SetDefault(KeyLLMProvider, llm.ProviderGemini)
	v.SetDefault(KeyGeminiModel, llm.DefaultGeminiModel)
	v.SetDefault(KeyLLMTimeout, llm.DefaultTimeout)

	v.SetDefault(KeyChunkPolicy, string(chunker.PolicyParagraph))
	v.SetDefault(KeyChunkSize, 0)
	v.SetDefault(KeyChunkOverlap, -1)
	v.SetDefault(KeyMaxFeatures, retrieval.DefaultMaxFeatures)
	v.SetDefault(KeyResubmitPolicy, string(assessment.ResubmitOverwrite))

	v.SetDefault(KeyDocAILocation, "us")
}

// LoadDotEnv loads .env into the process environment. A missing file only
// warrants a warning.
func LoadDotEnv(log *logger.Logger, files ...string) error {
	err := godotenv.Load(files...)
	switch {
	case err == nil:
		logger.OrNop(log).Debug(".env file loaded")
		return nil
	case errors.Is(err, os.ErrNotExist):
		logger.OrNop(log).Warn(".env file not found, relying on system environment variables")
		return nil
	}
	return fmt.Errorf("loading .env file: %w", err)
}

// Load reads v (with flags already bound by the caller), the environment and
// an optional config.yaml in the working directory, then validates the result.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := Config{
		Port:            v.GetString(KeyPort),
		LogMode:         v.GetString(KeyLogMode),
		FrontendURL:     strings.TrimSuffix(v.GetString(KeyFrontendURL), "/"),
		MaxUploadBytes:  v.GetInt64(KeyMaxUploadBytes),
		ShutdownTimeout: v.GetDuration(KeyShutdownTimeout),
		LLM: llm.Config{
			Provider:      strings.ToLower(strings.TrimSpace(v.GetString(KeyLLMProvider))),
			GeminiAPIKey:  v.GetString(KeyGeminiAPIKey),
			GeminiModel:   v.GetString(KeyGeminiModel),
			OpenAIBaseURL: v.GetString(KeyOpenAIBaseURL),
			OpenAIAPIKey:  v.GetString(KeyOpenAIAPIKey),
			OpenAIModel:   v.GetString(KeyOpenAIModel),
			Timeout:       v.GetDuration(KeyLLMTimeout),
		},
		ChunkPolicy:    chunker.Policy(v.GetString(KeyChunkPolicy)),
		ChunkSize:      v.GetInt(KeyChunkSize),
		ChunkOverlap:   v.GetInt(KeyChunkOverlap),
		MaxFeatures:    v.GetInt(KeyMaxFeatures),
		ResubmitPolicy: assessment.ResubmitPolicy(v.GetString(KeyResubmitPolicy)),
		R2: r2.Config{
			AccountID:       v.GetString(KeyR2AccountID),
			BucketName:      v.GetString(KeyR2Bucket),
			AccessKeyID:     v.GetString(KeyR2AccessKey),
			SecretAccessKey: v.GetString(KeyR2SecretKey),
			PublicURL:       v.GetString(KeyR2PublicURL),
			Endpoint:        v.GetString(KeyR2EndpointURL),
		},
		OCR: extract.OCRConfig{
			ProjectID:   v.GetString(KeyDocAIProject),
			Location:    v.GetString(KeyDocAILocation),
			ProcessorID: v.GetString(KeyDocAIProcessor),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	cfg.ChunkPolicy, _ = chunker.ParsePolicy(string(cfg.ChunkPolicy))
	cfg.ResubmitPolicy, _ = assessment.ParseResubmitPolicy(string(cfg.ResubmitPolicy))
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return apperr.Invalid("port must be set")
	}
	if c.MaxUploadBytes <= 0 {
		return apperr.Invalid("max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	}
	if _, err := chunker.ParsePolicy(string(c.ChunkPolicy)); err != nil {
		return apperr.Invalid("chunk_policy: %v", err)
	}
	if _, err := assessment.ParseResubmitPolicy(string(c.ResubmitPolicy)); err != nil {
		return apperr.Invalid("resubmit_policy: %v", err)
	}
	switch c.LLM.Provider {
	case "", llm.ProviderGemini:
		if c.LLM.GeminiAPIKey == "" {
			return apperr.Invalid("GEMINI_API_KEY must be set for the gemini provider")
		}
	case llm.ProviderOpenAI:
		if c.LLM.OpenAIModel == "" {
			return apperr.Invalid("OPENAI_MODEL must be set for the openai provider")
		}
	default:
		return apperr.Invalid("unknown llm_provider %q", c.LLM.Provider)
	}
	return nil
}
