package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/piezasya/loyalty/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingService struct {
	name     string
	startErr error
	block    bool
	mu       *sync.Mutex
	stops    *[]string
}

func (s *recordingService) Name() string { return s.name }

func (s *recordingService) Start(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return nil
	}
	return s.startErr
}

func (s *recordingService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.stops = append(*s.stops, s.name)
	return nil
}

type failingStopService struct {
	err error
}

func (s *failingStopService) Name() string { return "sweeper" }

func (s *failingStopService) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (s *failingStopService) Stop(ctx context.Context) error { return s.err }

func TestRunnerStopsInReverseOrderOnFailure(t *testing.T) {
	var mu sync.Mutex
	var stops []string
	failing := errors.New("boom")

	runner := NewRunner(
		&recordingService{name: "http", block: true, mu: &mu, stops: &stops},
		&recordingService{name: "worker", startErr: failing, mu: &mu, stops: &stops},
		&recordingService{name: "scheduler", block: true, mu: &mu, stops: &stops},
	)
	err := runner.Run(context.Background(), time.Second, zap.NewNop().Sugar())
	require.ErrorIs(t, err, failing)
	assert.Equal(t, []string{"scheduler", "worker", "http"}, stops)
}

func TestRunnerCanceledContextIsCleanExit(t *testing.T) {
	var mu sync.Mutex
	var stops []string
	runner := NewRunner(&recordingService{name: "http", block: true, mu: &mu, stops: &stops})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	assert.NoError(t, runner.Run(ctx, time.Second, nil))
	assert.Equal(t, []string{"http"}, stops)
}

func TestRunnerWithoutServices(t *testing.T) {
	assert.Error(t, NewRunner().Run(context.Background(), time.Second, nil))
	assert.Error(t, RunWithOptions(nil, Options{}))
}

func TestRunnerJoinsStopFailures(t *testing.T) {
	stopErr := errors.New("flush failed")
	runner := NewRunner(&failingStopService{err: stopErr})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := runner.Run(ctx, time.Second, nil)
	require.ErrorIs(t, err, stopErr)
	assert.Contains(t, err.Error(), "stop sweeper")
}

func TestRunnerRejectsNilService(t *testing.T) {
	var mu sync.Mutex
	var stops []string
	err := NewRunner(&recordingService{name: "http", block: true, mu: &mu, stops: &stops}, nil).Run(context.Background(), time.Second, nil)
	assert.Error(t, err)
	assert.Empty(t, stops)
}

func TestNormalizeOptions(t *testing.T) {
	opts := normalizeOptions(Options{})
	assert.Equal(t, ModeAll, opts.Mode)
	assert.Equal(t, 10*time.Second, opts.ShutdownTimeout)
	assert.NotNil(t, opts.Logger)

	cfg := config.Default()
	cfg.Queue.ShutdownTimeoutSeconds = 30
	assert.Equal(t, 32*time.Second, normalizeOptions(Options{Config: cfg, Mode: ModeWorker}).ShutdownTimeout)
	assert.Equal(t, 10*time.Second, normalizeOptions(Options{Config: cfg, Mode: ModeAPI}).ShutdownTimeout)
	assert.Equal(t, 3*time.Second, normalizeOptions(Options{Config: cfg, ShutdownTimeout: 3 * time.Second}).ShutdownTimeout)
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{"": ModeAll, " API ": ModeAPI, "worker": ModeWorker, "all": ModeAll}
	for raw, want := range cases {
		got, err := ParseMode(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	_, err := ParseMode("cron")
	assert.Error(t, err)
}

func TestBuildRunnerValidation(t *testing.T) {
	_, err := BuildRunner(nil, nil, ModeAll)
	assert.Error(t, err)
	_, err = BuildRunner(config.Default(), nil, ModeAll)
	assert.Error(t, err)

	assert.Error(t, Run(Options{Config: config.Default(), Mode: "cron"}))
	assert.Error(t, Run(Options{}))
}
