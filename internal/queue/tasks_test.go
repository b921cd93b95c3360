package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/piezasya/loyalty/internal/config"
)

func TestNewReferralRegisteredTask(t *testing.T) {
	task, err := NewReferralRegisteredTask(ReferralRegisteredPayload{ReferralCode: "ABCD1234", NewUserID: 9})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if task.Type() != TaskReferralRegistered {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	var got ReferralRegisteredPayload
	if err := json.Unmarshal(task.Payload(), &got); err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	if got.NewUserID != 9 || got.ReferralCode != "ABCD1234" {
		t.Fatalf("unexpected payload: %+v", got)
	}

	if _, err := NewReferralRegisteredTask(ReferralRegisteredPayload{NewUserID: 9}); err == nil {
		t.Fatalf("expected error for empty referral code")
	}
}

func TestNewOrderCompletedTaskRequiresOrderRef(t *testing.T) {
	if _, err := NewOrderCompletedTask(OrderCompletedPayload{UserID: 1, Amount: "10.00"}); err == nil {
		t.Fatalf("expected error for empty order ref")
	}
}

func TestDisabledClientSkipsEnqueue(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueueStatsRefresh(StatsRefreshPayload{UserIDs: []uint{1}}); err != nil {
		t.Fatalf("disabled enqueue should be noop: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: " redis ", Port: 6380, DB: 2})
	if opt.Addr != "redis:6380" || opt.DB != 2 {
		t.Fatalf("unexpected redis opt: %+v", opt)
	}
	if cfg.Concurrency != 10 || cfg.Queues[CriticalQueue] <= cfg.Queues[DefaultQueue] {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
	if cfg.ShutdownTimeout != 10*time.Second || cfg.ErrorHandler == nil {
		t.Fatalf("unexpected shutdown or error handler: %+v", cfg)
	}

	opt, cfg = BuildServerConfig(&config.QueueConfig{Concurrency: 4, ShutdownTimeoutSeconds: 3, Queues: map[string]int{DefaultQueue: 1}})
	if opt.Addr != "127.0.0.1:6379" || cfg.Concurrency != 4 || cfg.ShutdownTimeout != 3*time.Second || len(cfg.Queues) != 1 {
		t.Fatalf("unexpected overridden config: %+v %+v", opt, cfg)
	}
}

func TestResolveMaxRetry(t *testing.T) {
	if got := resolveMaxRetry(nil); got != defaultMaxRetry {
		t.Fatalf("nil config want %d got %d", defaultMaxRetry, got)
	}
	if got := resolveMaxRetry(&config.QueueConfig{MaxRetry: 2}); got != 2 {
		t.Fatalf("configured max retry want 2 got %d", got)
	}
}

func TestDisabledClientSkipsAwardTasks(t *testing.T) {
	var client *Client
	if client.Enabled() {
		t.Fatalf("nil client should be disabled")
	}
	if err := client.EnqueueOrderCompleted(OrderCompletedPayload{UserID: 1, OrderRef: "PYA-1", Amount: "5"}); err != nil {
		t.Fatalf("nil client enqueue should be noop: %v", err)
	}
	if err := client.EnqueueReferralRegistered(ReferralRegisteredPayload{ReferralCode: "ABCD1234", NewUserID: 2}); err != nil {
		t.Fatalf("nil client enqueue should be noop: %v", err)
	}
}
