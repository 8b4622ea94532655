package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caasmo/countryblock/config"
	"golang.org/x/sync/errgroup"
)

// Daemon is a background component started before the HTTP server accepts
// connections and stopped together with it.
type Daemon interface {
	Name() string
	Start() error
	Stop(ctx context.Context) error
}

type Server struct {
	configProvider *config.Provider
	handler        http.Handler
	logger         *slog.Logger
	reloadFunc     func() error
	daemons        []Daemon

	// exitFunc ends the process, replaced in tests.
	exitFunc func(int)
}

func NewServer(provider *config.Provider, handler http.Handler, logger *slog.Logger, reloadFunc func() error) *Server {
	return &Server{
		configProvider: provider,
		handler:        handler,
		logger:         logger,
		reloadFunc:     reloadFunc,
		exitFunc:       os.Exit,
	}
}

// AddDaemon registers d. Daemons start in the order they were added.
func (s *Server) AddDaemon(d Daemon) {
	s.daemons = append(s.daemons, d)
}

// Run starts the daemons and the HTTP server and blocks until SIGINT,
// SIGTERM or SIGQUIT arrives or the listener fails. SIGHUP calls the reload
// function and keeps serving. Run ends the process through exitFunc.
func (s *Server) Run() {
	cfg := s.configProvider.Get().Server

	s.logger.Info("Server configuration",
		"addr", cfg.Addr,
		"read_timeout", cfg.ReadTimeout.Duration,
		"read_header_timeout", cfg.ReadHeaderTimeout.Duration,
		"write_timeout", cfg.WriteTimeout.Duration,
		"idle_timeout", cfg.IdleTimeout.Duration,
		"shutdown_timeout", cfg.ShutdownGracefulTimeout.Duration,
	)

	// Listen before starting anything so no signal is lost.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sigs)

	started := make([]Daemon, 0, len(s.daemons))
	for _, d := range s.daemons {
		if err := d.Start(); err != nil {
			s.logger.Error("Failed to start daemon", "daemon", d.Name(), "err", err)
			s.stopDaemons(started, cfg.ShutdownGracefulTimeout.Duration)
			s.exitFunc(1)
			return
		}
		s.logger.Info("Daemon started", "daemon", d.Name())
		started = append(started, d)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler,
		ReadTimeout:       cfg.ReadTimeout.Duration,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout.Duration,
		WriteTimeout:      cfg.WriteTimeout.Duration,
		IdleTimeout:       cfg.IdleTimeout.Duration,
	}

	serverError := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("ListenAndServe error", "err", err)
			serverError <- err
		}
	}()

	exitCode := 0
wait:
	for {
		select {
		case sig := <-sigs:
			if sig == syscall.SIGHUP {
				s.logger.Info("Received SIGHUP - reloading configuration")
				if err := s.reloadFunc(); err != nil {
					s.logger.Error("Configuration reload failed", "err", err)
				}
				continue
			}
			s.logger.Info("Received shutdown signal - gracefully shutting down", "signal", sig.String())
			break wait
		case <-serverError:
			s.logger.Error("Server error - initiating shutdown")
			exitCode = 1
			break wait
		}
	}

	timeout := cfg.ShutdownGracefulTimeout.Duration
	gracefulCtx, cancelShutdown := context.WithTimeout(context.Background(), timeout)
	defer cancelShutdown()

	shutdownGroup, _ := errgroup.WithContext(gracefulCtx)

	shutdownGroup.Go(func() error {
		s.logger.Info("Shutting down HTTP server")
		if err := srv.Shutdown(gracefulCtx); err != nil {
			s.logger.Error("HTTP server shutdown error", "err", err)
			return err
		}
		s.logger.Info("HTTP server stopped gracefully")
		return nil
	})

	for _, d := range started {
		shutdownGroup.Go(func() error {
			s.logger.Info("Shutting down daemon", "daemon", d.Name())
			if err := d.Stop(gracefulCtx); err != nil {
				s.logger.Error("Daemon shutdown error", "daemon", d.Name(), "err", err)
				return err
			}
			return nil
		})
	}

	if err := shutdownGroup.Wait(); err != nil {
		s.logger.Error("Error during shutdown", "err", err)
		exitCode = 1
	}

	if exitCode == 0 {
		s.logger.Info("All systems stopped gracefully")
	}
	s.exitFunc(exitCode)
}

// stopDaemons stops daemons in reverse start order.
func (s *Server) stopDaemons(daemons []Daemon, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for i := len(daemons) - 1; i >= 0; i-- {
		if err := daemons[i].Stop(ctx); err != nil {
			s.logger.Error("Daemon shutdown error", "daemon", daemons[i].Name(), "err", err)
		}
	}
}
