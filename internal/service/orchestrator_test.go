package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingStage struct {
	name string
	err  error
	log  *[]string
}

func (s *recordingStage) Name() string { return s.name }

func (s *recordingStage) Run(_ context.Context) error {
	*s.log = append(*s.log, s.name)
	return s.err
}

func TestRunCycle_StagesRunInOrder(t *testing.T) {
	var log []string
	o := NewOrchestrator(zap.NewNop(),
		&recordingStage{name: "collect", log: &log},
		&recordingStage{name: "rewrite", log: &log},
		&recordingStage{name: "monetize", log: &log},
		&recordingStage{name: "publish", log: &log},
	)

	require.NoError(t, o.RunCycle(context.Background()))
	assert.Equal(t, []string{"collect", "rewrite", "monetize", "publish"}, log)
}

func TestRunCycle_StageFailureDoesNotAbortCycle(t *testing.T) {
	var log []string
	o := NewOrchestrator(zap.NewNop(),
		&recordingStage{name: "collect", log: &log},
		&recordingStage{name: "rewrite", err: errors.New("backend down"), log: &log},
		&recordingStage{name: "monetize", log: &log},
	)

	require.NoError(t, o.RunCycle(context.Background()))
	assert.Equal(t, []string{"collect", "rewrite", "monetize"}, log, "stages after a failure must still run")
}

func TestRunCycle_CancellationStopsCycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var log []string
	o := NewOrchestrator(zap.NewNop(),
		&recordingStage{name: "collect", log: &log},
	)

	err := o.RunCycle(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, log)
}
