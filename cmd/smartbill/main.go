package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/smartbill/internal/llm"
	"github.com/zombor/smartbill/internal/ocr"
	"github.com/zombor/smartbill/internal/receipt"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// Values from .env never override the real environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "error: loading .env: %v\n", err)
		os.Exit(1)
	}

	// The bare PORT and FRONTEND_URL variables seed the defaults
	defaultPort := 8080
	if p, ok := envInt("PORT"); ok {
		defaultPort = p
	}

	flags := ff.NewFlagSet("smartbill")
	var (
		port             = flags.IntLong("port", defaultPort, "HTTP server port (or set PORT env var)")
		frontendURL      = flags.StringLong("frontend-url", os.Getenv("FRONTEND_URL"), "Allowed CORS origin (or set FRONTEND_URL env var); empty allows any")
		ocrType          = flags.StringLong("ocr", "textract", "OCR backend: 'textract' or 'vision'")
		awsRegion        = flags.StringLong("aws-region", "us-east-1", "AWS region for Textract")
		visionCreds      = flags.StringLong("vision-credentials", "", "Google Cloud credentials file for Vision (default: application default credentials)")
		llmType          = flags.StringLong("llm", "openai", "Language model backend: 'openai', 'gemini' or 'ollama'")
		openAIKey        = flags.StringLong("openai-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
		openAIModel      = flags.StringLong("openai-model", "gpt-4o", "OpenAI model name")
		openAIBaseURL    = flags.StringLong("openai-base-url", "", "OpenAI compatible API base URL (optional)")
		geminiKey        = flags.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel      = flags.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL        = flags.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel      = flags.StringLong("ollama-model", "llama3.1", "Ollama model name")
		rateLimit        = flags.IntLong("rate-limit", 10, "Uploads allowed per client address within the rate window (0 disables)")
		rateWindow       = flags.DurationLong("rate-window", 15*time.Minute, "Rate limit window")
		maxUploadMB      = flags.IntLong("max-upload-mb", 50, "Maximum upload size in megabytes")
		authUser         = flags.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass         = flags.StringLong("auth-pass", "", "Basic auth password (optional)")
		logLevel         = flags.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		logFormat        = flags.StringLong("log-format", "text", "Log format: 'text' or 'json'")
		shutdownDeadline = flags.DurationLong("shutdown-timeout", 10*time.Second, "Time allowed for in-flight requests on shutdown")
		showVersion      = flags.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(flags, os.Args[1:],
		ff.WithEnvVarPrefix("SMARTBILL"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(flags))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := setupLogging(*logLevel, *logFormat); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Initialize text extraction based on type
	var extractor ocr.Extractor
	var err error
	switch *ocrType {
	case "textract":
		slog.Info("Initializing Textract...", "region", *awsRegion)
		extractor, err = ocr.NewTextract(ctx, *awsRegion)
	case "vision":
		slog.Info("Initializing Cloud Vision...")
		extractor, err = ocr.NewVision(ctx, *visionCreds)
	default:
		slog.Error("Invalid OCR type", "type", *ocrType, "valid", "textract or vision")
		os.Exit(1)
	}
	if err != nil {
		slog.Error("Failed to initialize OCR", "type", *ocrType, "error", err)
		os.Exit(1)
	}
	defer extractor.Close()

	// Initialize language model based on type
	var completer llm.Completer
	switch *llmType {
	case "openai":
		// Get OpenAI API key from flag or environment
		apiKey := *openAIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("OpenAI API key is required. Set --openai-key flag or OPENAI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing OpenAI...", "model", *openAIModel)
		completer, err = llm.NewOpenAI(apiKey, *openAIModel, *openAIBaseURL)
	case "gemini":
		// Get Gemini API key from flag or environment
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini...", "model", *geminiModel)
		completer, err = llm.NewGemini(apiKey, *geminiModel)
	case "ollama":
		slog.Info("Initializing Ollama...", "url", *ollamaURL, "model", *ollamaModel)
		completer, err = llm.NewOllama(*ollamaURL, *ollamaModel)
	default:
		slog.Error("Invalid LLM type", "type", *llmType, "valid", "openai, gemini or ollama")
		os.Exit(1)
	}
	if err != nil {
		slog.Error("Failed to initialize LLM", "type", *llmType, "error", err)
		os.Exit(1)
	}
	defer completer.Close()

	// Initialize service
	billService := receipt.NewService(extractor, completer)

	// Initialize server
	server := receipt.NewServer(billService, receipt.ServerConfig{
		AllowedOrigin: *frontendURL,
		RateLimit:     *rateLimit,
		RateWindow:    *rateWindow,
		MaxUploadSize: int64(*maxUploadMB) << 20,
		BasicAuth: receipt.BasicAuth{
			Username: *authUser,
			Password: *authPass,
		},
	})

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, *shutdownDeadline)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown error", "error", err)
	}
}
