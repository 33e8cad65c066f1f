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
	"time"

	"github.com/joho/godotenv"

	"github.com/agribharat/agribharat-api/internal/adapters/gateway"
	httpadapter "github.com/agribharat/agribharat-api/internal/adapters/http"
	"github.com/agribharat/agribharat-api/internal/adapters/llm"
	firestorestore "github.com/agribharat/agribharat-api/internal/adapters/storage/firestore"
	memstore "github.com/agribharat/agribharat-api/internal/adapters/storage/memory"
	sqlitestore "github.com/agribharat/agribharat-api/internal/adapters/storage/sqlite"
	"github.com/agribharat/agribharat-api/internal/app/advisory"
	"github.com/agribharat/agribharat-api/internal/app/consultation"
	"github.com/agribharat/agribharat-api/internal/config"
	"github.com/agribharat/agribharat-api/internal/domain"
	"github.com/agribharat/agribharat-api/internal/locale"
	"github.com/agribharat/agribharat-api/internal/observability"
)

var version = "dev"

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logCloser, err := observability.Init(observability.LogOptions{Dir: cfg.LogDir, Level: cfg.LogLevel})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	if code := finish(run(cfg), logCloser); code != 0 {
		os.Exit(code)
	}
}

// finish logs a fatal error and closes the rotated log file. It runs before
// os.Exit, which skips deferred calls.
func finish(err error, logCloser io.Closer) int {
	code := 0
	if err != nil {
		observability.Logger().Error("agribharat-api stopped", "error", err)
		code = 1
	}
	if cerr := logCloser.Close(); cerr != nil {
		fmt.Fprintf(os.Stderr, "closing log file: %v\n", cerr)
	}
	return code
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := observability.Logger()

	if cfg.Telemetry {
		shutdown, err := observability.InitTelemetry(ctx, cfg.LogDir, version)
		if err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
		defer shutdown()
		log.Info("telemetry enabled", "dir", cfg.LogDir)
	}

	texts, err := locale.Load()
	if err != nil {
		return fmt.Errorf("loading translations: %w", err)
	}

	advisor, err := newAdvisor(ctx, cfg)
	if err != nil {
		return err
	}

	sessionStore, consultationStore, closer, err := newStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	svc := consultation.NewService(advisor, sessionStore, consultationStore, texts)
	handler := httpadapter.NewServer(svc, texts, cfg.MaxUploadBytes())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("AgriBharat API listening", "port", cfg.Port, "mode", cfg.Mode, "advisor", cfg.Advisor, "storage", cfg.StorageBackend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newAdvisor(ctx context.Context, cfg *config.Config) (domain.Advisor, error) {
	log := observability.Logger()

	var client domain.LLMClient
	switch cfg.Advisor {
	case config.AdvisorGateway:
		log.Info("using agents gateway advisor", "url", cfg.GatewayURL)
		return gateway.NewClient(cfg.GatewayURL, nil), nil

	case config.AdvisorVertex:
		log.Info("using Vertex LLM client", "project", cfg.GCPProjectID, "model", cfg.ModelName)
		vc, err := llm.NewVertexClient(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.ModelName)
		if err != nil {
			return nil, fmt.Errorf("initializing Vertex LLM client: %w", err)
		}
		client = vc

	case config.AdvisorOllama:
		log.Info("using Ollama LLM client", "model", cfg.OllamaModel)
		oc, err := llm.NewOllamaClient(cfg.OllamaModel)
		if err != nil {
			return nil, fmt.Errorf("initializing Ollama client: %w", err)
		}
		client = oc

	default:
		log.Info("using MOCK LLM client")
		client = llm.NewMockLLM()
	}

	return advisory.NewService(llm.NewInstrumented(client, cfg.Advisor)), nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newStores(ctx context.Context, cfg *config.Config) (domain.SessionStore, domain.ConsultationStore, io.Closer, error) {
	log := observability.Logger()

	switch cfg.StorageBackend {
	case config.StorageFirestore:
		log.Info("using Firestore storage", "project", cfg.GCPProjectID)
		fs, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("initializing Firestore store: %w", err)
		}
		// 1 store, implements 2 interfaces
		return fs, fs, fs, nil

	case config.StorageSQLite:
		log.Info("using SQLite storage", "path", cfg.SQLitePath)
		db, err := sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("initializing SQLite store: %w", err)
		}
		return db, db, db, nil

	default:
		log.Info("using in-memory storage")
		return memstore.NewSessionStore(), memstore.NewConsultationStore(), nopCloser{}, nil
	}
}
