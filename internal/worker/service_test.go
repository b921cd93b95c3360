package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/piezasya/loyalty/internal/config"
	"github.com/piezasya/loyalty/internal/metrics"
	"github.com/piezasya/loyalty/internal/provider"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskResult(t *testing.T) {
	assert.Equal(t, "ok", taskResult(nil))
	assert.Equal(t, "skipped", taskResult(fmt.Errorf("bad payload: %w", asynq.SkipRetry)))
	assert.Equal(t, "retry", taskResult(errors.New("db down")))
}

func TestObserveTasksRecordsResults(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg, reg)
	require.NoError(t, err)

	failing := errors.New("db down")
	handler := observeTasks(m)(asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
		if string(task.Payload()) == "fail" {
			return failing
		}
		return nil
	}))

	require.NoError(t, handler.ProcessTask(context.Background(), asynq.NewTask("loyalty:stats_refresh", []byte("ok"))))
	assert.ErrorIs(t, handler.ProcessTask(context.Background(), asynq.NewTask("loyalty:stats_refresh", []byte("fail"))), failing)

	count, err := testutil.GatherAndCount(reg, "piezasya_loyalty_tasks_processed_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNewServiceValidation(t *testing.T) {
	_, err := NewService(&config.QueueConfig{Enabled: false}, NewConsumer(&provider.Container{}))
	assert.Error(t, err)
	_, err = NewService(&config.QueueConfig{Enabled: true}, nil)
	assert.Error(t, err)

	var svc *Service
	assert.Error(t, svc.Start(context.Background()))
	assert.NoError(t, svc.Stop(context.Background()))
	assert.Equal(t, "worker", svc.Name())
}
