package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"studyquiz/internal/api"
	"studyquiz/internal/api/handlers"
	"studyquiz/internal/assessment"
	"studyquiz/internal/chunker"
	"studyquiz/internal/config"
	"studyquiz/internal/extract"
	"studyquiz/internal/ingest"
	"studyquiz/internal/llm"
	"studyquiz/internal/logger"
	"studyquiz/internal/quiz"
	"studyquiz/internal/r2"
	"studyquiz/internal/retrieval"
	"studyquiz/internal/store"
	"studyquiz/internal/tutor"
	"studyquiz/internal/youtube"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "studyquiz",
		Short: "Study material ingestion, quiz generation and tutoring server",
	}
	serve := serveCmd()
	root.AddCommand(serve)

	// "serve" is the default when no subcommand is given.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())
	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("port", "p", "8080", "HTTP listen port")
	f.String("log-mode", "development", "Log mode (development, production)")
	f.String("frontend-url", "http://localhost:5173", "Origin allowed by CORS")
	f.String("llm-provider", llm.ProviderGemini, "Generative service (gemini, openai)")
	f.String("chunk-policy", string(chunker.PolicyParagraph), "Chunking policy (paragraph, words)")
	f.String("resubmit-policy", string(assessment.ResubmitOverwrite), "Handling of resubmitted tests (overwrite, reject)")
	return cmd
}

// flagKeys maps serve flags onto configuration keys.
var flagKeys = map[string]string{
	"port":            config.KeyPort,
	"log-mode":        config.KeyLogMode,
	"frontend-url":    config.KeyFrontendURL,
	"llm-provider":    config.KeyLLMProvider,
	"chunk-policy":    config.KeyChunkPolicy,
	"resubmit-policy": config.KeyResubmitPolicy,
}

// viperForCmd binds the command's flags to a fresh viper instance. Flags only
// win over the environment when set explicitly.
func viperForCmd(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return v, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	boot, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		return fmt.Errorf("creating bootstrap logger: %w", err)
	}
	if err := config.LoadDotEnv(boot); err != nil {
		boot.Error("failed to load .env", "error", err)
		return err
	}

	v, err := viperForCmd(cmd)
	if err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		boot.Error("invalid configuration", "error", err)
		return err
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()
	if cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Generative service
	client, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		log.Error("failed to initialize generative service", "provider", cfg.LLM.Provider, "error", err)
		return err
	}
	if closer, ok := client.(io.Closer); ok {
		defer closer.Close()
	}

	// Optional boundaries
	ocr, err := extract.NewOCR(ctx, cfg.OCR)
	if err != nil {
		log.Warn("Document AI OCR unavailable, continuing without it", "error", err)
		ocr = nil
	}
	defer ocr.Close()

	deps := handlers.Deps{
		PDF:            extract.Default(log, ocr),
		Transcripts:    youtube.NewClient(log),
		MaxUploadBytes: cfg.MaxUploadBytes,
	}
	archive, err := r2.NewClient(ctx, cfg.R2, log)
	if err != nil {
		log.Warn("R2 archive unavailable, continuing without it", "error", err)
	} else if archive != nil {
		deps.Archive = archive
	}

	// Core services
	docs := store.NewDocuments(cfg.ChunkPolicy, chunker.New(cfg.ChunkPolicy, cfg.ChunkSize, cfg.ChunkOverlap))
	index := retrieval.NewIndex(cfg.MaxFeatures, log)
	deps.Ingest = ingest.NewService(docs, index, log)
	deps.Documents = docs
	deps.Quiz = quiz.NewGenerator(client, log)
	deps.Tests = assessment.NewEngine(store.NewSessions(), store.NewPerformanceLog(), cfg.ResubmitPolicy, log)
	deps.Tutor = tutor.New(docs, index, client, log)

	router := api.NewRouter(api.RouterConfig{FrontendURL: cfg.FrontendURL, Log: log}, handlers.NewHandler(deps, log))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "port", cfg.Port, "llm_provider", cfg.LLM.Provider, "chunk_policy", cfg.ChunkPolicy)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err, ok := <-serverErr:
		if ok {
			log.Error("failed to start server", "error", err)
			return err
		}
		return nil
	case <-quit:
	}
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		return err
	}
	log.Info("server exited properly")
	return nil
}
