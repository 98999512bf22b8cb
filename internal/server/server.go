package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"helios/internal/api"
	"helios/internal/audit"
	auditrepo "helios/internal/audit/repo"
	"helios/internal/config"
	"helios/internal/eventbus"
	"helios/internal/exec"
	"helios/internal/identity"
	identityrepo "helios/internal/identity/repo"
	"helios/internal/monitor"
	"helios/internal/pool"
	"helios/internal/stream"

	"github.com/hibiken/asynq"
)

type Server struct {
	cfg         *config.Config
	deps        *Dependency
	httpServer  *http.Server
	asynqServer *asynq.Server
	asynqMux    *asynq.ServeMux
	sweeper     *pool.Sweeper
	logger      *slog.Logger
}

func NewServer(cfg *config.Config, deps *Dependency) (*Server, error) {
	logger := deps.Logger

	bus := eventbus.NewRedisBus(deps.Redis, logger)
	auditRecorder := audit.NewRecorder(deps.AsynqClient, logger)

	mgr := pool.NewManager(pool.Config{
		SessionTTL: cfg.Pool.SessionTTL,
	}, pool.MultiRecorder{
		auditRecorder,
		eventbus.NewPoolRecorder(bus, logger),
	}, logger)
	if err := mgr.Initialize(cfg.Pool.Capacity); err != nil {
		return nil, err
	}
	sweeper := pool.NewSweeper(mgr, cfg.Pool.SweepInterval, logger)

	identityRepo := identityrepo.NewRepository(deps.PG)
	ids := identity.NewService(identityRepo, identity.ServiceConfig{
		JWTSecret:  cfg.Auth.JWTSecret,
		TokenTTL:   cfg.Auth.TokenTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	}, logger)

	executor := exec.NewExecutor(auditRecorder, cfg.Exec.Timeout, logger)
	displays := stream.NewRegistry(cfg.Stream.VNCHost, cfg.Stream.VNCBasePort)

	auditRepo := auditrepo.NewRepository(deps.PG)
	auditWorker := audit.NewWorker(auditRepo, logger)

	asynqServer := asynq.NewServer(deps.AsynqRedis, asynq.Config{
		Concurrency: cfg.Worker.Concurrency,
		Logger:      newAsynqLogger(logger),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(audit.LifecycleTask, auditWorker.HandleLifecycle)
	mux.HandleFunc(audit.CommandTask, auditWorker.HandleCommand)

	router := api.NewRouter(api.RouterDeps{
		Pool:     mgr,
		Identity: ids,
		Executor: executor,
		Displays: displays,
		Bus:      bus,
		Audit:    auditRepo,
		Logger:   logger,
	})
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		cfg:         cfg,
		deps:        deps,
		httpServer:  httpServer,
		asynqServer: asynqServer,
		asynqMux:    mux,
		sweeper:     sweeper,
		logger:      logger,
	}, nil
}

func (s *Server) Start(ctx context.Context) error {
	go s.sweeper.Start()

	go func() {
		s.logger.Info("Starting audit worker", "concurrency", s.cfg.Worker.Concurrency)
		if err := s.asynqServer.Start(s.asynqMux); err != nil {
			s.logger.Error("Audit worker failed", "error", err)
		}
	}()

	go func() {
		if err := monitor.StartMetricsServer(ctx, s.cfg.Metrics.Addr, s.logger); err != nil {
			s.logger.Error("Metrics server failed", "error", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting API server", "addr", s.cfg.Server.Addr)
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutdown signal received, draining...")
	case err := <-errCh:
		return err
	}

	return s.Shutdown()
}

func (s *Server) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.sweeper.Stop()
	s.asynqServer.Shutdown()

	s.logger.Info("Server stopped gracefully")
	return nil
}

type asynqLogger struct {
	l *slog.Logger
}

func newAsynqLogger(l *slog.Logger) *asynqLogger {
	return &asynqLogger{l: l.With("component", "asynq")}
}

func (a *asynqLogger) Debug(args ...any) { a.l.Debug("", "msg", args) }
func (a *asynqLogger) Info(args ...any)  { a.l.Info("", "msg", args) }
func (a *asynqLogger) Warn(args ...any)  { a.l.Warn("", "msg", args) }
func (a *asynqLogger) Error(args ...any) { a.l.Error("", "msg", args) }
func (a *asynqLogger) Fatal(args ...any) { a.l.Error("FATAL", "msg", args) }
