package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mlefebvre/plume/internal/config"
)

// Scheduler admits pipeline cycles on a timer and runs the weekly strategy
// optimization on its own slower timer.
type Scheduler struct {
	config         *config.SchedulerConfig
	logger         *zap.Logger
	orchestrator   *Orchestrator
	optimizer      *OptimizerService
	cycleTicker    *time.Ticker
	optimizeTicker *time.Ticker
	stopCh         chan struct{}
}

func NewScheduler(cfg *config.SchedulerConfig, logger *zap.Logger, orchestrator *Orchestrator, optimizer *OptimizerService) *Scheduler {
	return &Scheduler{
		config:       cfg,
		logger:       logger,
		orchestrator: orchestrator,
		optimizer:    optimizer,
		stopCh:       make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Scheduler is disabled")
		return nil
	}

	cycleInterval, err := time.ParseDuration(s.config.CycleInterval)
	if err != nil {
		s.logger.Error("Invalid cycle interval", zap.String("interval", s.config.CycleInterval), zap.Error(err))
		return err
	}
	optimizeInterval, err := time.ParseDuration(s.config.OptimizeInterval)
	if err != nil {
		s.logger.Error("Invalid optimize interval", zap.String("interval", s.config.OptimizeInterval), zap.Error(err))
		return err
	}

	s.logger.Info("Starting scheduler",
		zap.String("cycle_interval", s.config.CycleInterval),
		zap.String("optimize_interval", s.config.OptimizeInterval))

	s.cycleTicker = time.NewTicker(cycleInterval)
	s.optimizeTicker = time.NewTicker(optimizeInterval)

	// Run first cycle immediately
	go func() {
		s.logger.Info("Running initial pipeline cycle")
		s.runCycle(ctx)
	}()

	go func() {
		for {
			select {
			case <-s.cycleTicker.C:
				s.logger.Info("Running scheduled pipeline cycle")
				s.runCycle(ctx)
			case <-s.optimizeTicker.C:
				s.logger.Info("Running scheduled strategy optimization")
				s.runOptimization(ctx)
			case <-s.stopCh:
				s.logger.Info("Scheduler stopped")
				return
			case <-ctx.Done():
				s.logger.Info("Scheduler context cancelled")
				return
			}
		}
	}()

	return nil
}

func (s *Scheduler) Stop() {
	if s.cycleTicker != nil {
		s.cycleTicker.Stop()
	}
	if s.optimizeTicker != nil {
		s.optimizeTicker.Stop()
	}
	close(s.stopCh)
	s.logger.Info("Scheduler shutdown completed")
}

func (s *Scheduler) runCycle(ctx context.Context) {
	start := time.Now()
	if err := s.orchestrator.RunCycle(ctx); err != nil {
		s.logger.Error("Pipeline cycle failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}
	s.logger.Info("Pipeline cycle finished", zap.Duration("duration", time.Since(start)))
}

func (s *Scheduler) runOptimization(ctx context.Context) {
	start := time.Now()
	if err := s.optimizer.AdjustStrategy(ctx); err != nil {
		s.logger.Error("Strategy optimization failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}
	s.logger.Info("Strategy optimization finished", zap.Duration("duration", time.Since(start)))
}
