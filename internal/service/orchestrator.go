package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Stage is one discrete pipeline transformation. Run fetches the articles
// matching the stage's input status and processes each independently; a
// per-article failure never surfaces as a stage error, only batch-level
// problems do.
type Stage interface {
	Name() string
	Run(ctx context.Context) error
}

// Orchestrator drives articles through the fixed stage sequence
// collect -> rewrite -> monetize -> publish -> promote. Stages are not
// user-definable and always run in this order.
type Orchestrator struct {
	stages []Stage
	logger *zap.Logger
	mu     sync.Mutex
}

func NewOrchestrator(logger *zap.Logger, stages ...Stage) *Orchestrator {
	return &Orchestrator{
		stages: stages,
		logger: logger,
	}
}

// RunCycle executes one full pipeline pass. Cycles never overlap: a
// trigger arriving while a cycle runs waits for it to finish. A stage
// failure is logged and the remaining stages still run; only cancellation
// stops the cycle early.
func (o *Orchestrator) RunCycle(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.logger.Info("Pipeline cycle started", zap.Int("stages", len(o.stages)))
	cycleStart := time.Now()

	for _, stage := range o.stages {
		if err := ctx.Err(); err != nil {
			o.logger.Info("Pipeline cycle interrupted", zap.String("stage", stage.Name()))
			return err
		}

		start := time.Now()
		if err := stage.Run(ctx); err != nil {
			o.logger.Error("Stage failed",
				zap.String("stage", stage.Name()),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err))
			continue
		}

		o.logger.Info("Stage completed",
			zap.String("stage", stage.Name()),
			zap.Duration("duration", time.Since(start)))
	}

	o.logger.Info("Pipeline cycle completed", zap.Duration("duration", time.Since(cycleStart)))
	return nil
}
