package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ktuntum/statement-ocr/internal/api/handlers"
	"github.com/ktuntum/statement-ocr/internal/api/middleware"
	"github.com/ktuntum/statement-ocr/internal/config"
	"github.com/ktuntum/statement-ocr/internal/extract"
	"github.com/ktuntum/statement-ocr/internal/jobs"
	"github.com/ktuntum/statement-ocr/internal/jobs/inmemory"
	"github.com/ktuntum/statement-ocr/internal/logger"
	"github.com/ktuntum/statement-ocr/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Parse command-line flags; flags win over the environment.
	var (
		port  = flag.String("port", cfg.Server.Port, "HTTP server port")
		model = flag.String("model", cfg.Gemini.Model, "Gemini model used for extraction")
	)
	flag.Parse()

	// Initialize logger
	log := logger.NewWithLevel(cfg.Logger.Level)

	ctx := context.Background()

	// A missing credential is a hard failure before any network
	// activity; the server refuses to start without it.
	extractor, err := extract.NewGeminiExtractor(ctx, cfg.Gemini.APIKey, *model)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create extraction client")
	}

	// One session per server instance: the four-state machine that
	// admits at most one extraction at a time.
	sess := session.New()

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(1, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	// Job handler: run the single extraction call and settle the session.
	jobHandler := func(ctx context.Context, job jobs.Job) error {
		analyzeJob, ok := job.(*jobs.AnalyzeStatementJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", analyzeJob.JobID).
			Str("filename", analyzeJob.Filename).
			Str("media_type", analyzeJob.MediaType).
			Msg("Processing extraction job")

		txs, err := extractor.Extract(ctx, analyzeJob.Document)
		if err != nil {
			// The precise cause is diagnostic only; the session keeps
			// the one generic user-facing message.
			log.Error().
				Err(err).
				Str("job_id", analyzeJob.JobID).
				Str("filename", analyzeJob.Filename).
				Msg("Extraction failed")
			sess.Fail()
			return err
		}

		sess.Succeed(txs)

		log.Info().
			Str("job_id", analyzeJob.JobID).
			Str("filename", analyzeJob.Filename).
			Int("transactions", len(txs)).
			Msg("Extraction completed successfully")

		return nil
	}

	// Start job consumer in background
	go func() {
		log.Info().Msg("Starting extraction worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Extraction worker stopped with error")
		}
	}()

	// Initialize handlers
	statementsHandler := handlers.NewStatementsHandler(sess, jobQueue, cfg.Upload.MaxBytes, log)
	stateHandler := handlers.NewStateHandler(sess, log)
	transactionsHandler := handlers.NewTransactionsHandler(sess, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/statements", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			statementsHandler.Analyze(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			stateHandler.Get(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/state/reset", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			stateHandler.Reset(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.List(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/csv", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.ExportCSV(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Str("model", *model).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Cancel worker context
	cancelWorker()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for the in-flight job
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
