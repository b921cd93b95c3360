package metrics

import (
	"errors"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "piezasya"
const subsystem = "loyalty"

// Metrics 积分计划的 Prometheus 指标集合
type Metrics struct {
	pointsGranted  *prometheus.CounterVec
	pointsSpent    prometheus.Counter
	redemptions    *prometheus.CounterVec
	referralClicks prometheus.Counter
	referralBonus  prometheus.Counter
	reviews        *prometheus.CounterVec
	tasks          *prometheus.CounterVec
	gatherer       prometheus.Gatherer
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default 返回注册在全局 registry 上的指标实例
func Default() *Metrics {
	defaultOnce.Do(func() {
		m, err := New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
		if err != nil {
			panic(err)
		}
		defaultMetrics = m
	})
	return defaultMetrics
}

// New 创建指标并注册到指定 registry，重复注册时复用已有 collector
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	m := &Metrics{gatherer: gatherer}

	var err error
	if m.pointsGranted, err = registerCounterVec(reg, "points_granted_total", "Points credited to users, by reason.", "reason"); err != nil {
		return nil, err
	}
	if m.pointsSpent, err = registerCounter(reg, "points_spent_total", "Points debited from users by redemptions and adjustments."); err != nil {
		return nil, err
	}
	if m.redemptions, err = registerCounterVec(reg, "redemptions_total", "Reward redemption attempts, by result.", "result"); err != nil {
		return nil, err
	}
	if m.referralClicks, err = registerCounter(reg, "referral_clicks_total", "Tracked clicks on referral links."); err != nil {
		return nil, err
	}
	if m.referralBonus, err = registerCounter(reg, "referral_bonuses_total", "Referral bonuses granted."); err != nil {
		return nil, err
	}
	if m.reviews, err = registerCounterVec(reg, "reviews_total", "Reviews accepted, by category.", "category"); err != nil {
		return nil, err
	}
	if m.tasks, err = registerCounterVec(reg, "tasks_processed_total", "Background tasks handled by the worker, by type and result.", "task", "result"); err != nil {
		return nil, err
	}
	return m, nil
}

func registerCounterVec(reg prometheus.Registerer, name, help string, labels ...string) (*prometheus.CounterVec, error) {
	collector := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
	if err := reg.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return collector, nil
}

func registerCounter(reg prometheus.Registerer, name, help string) (prometheus.Counter, error) {
	collector := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	})
	if err := reg.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return collector, nil
}

// Handler 返回 /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// PointsGranted 记录积分发放
func (m *Metrics) PointsGranted(reason string, points int) {
	if m == nil || points <= 0 {
		return
	}
	m.pointsGranted.WithLabelValues(reason).Add(float64(points))
}

// PointsSpent 记录积分消耗
func (m *Metrics) PointsSpent(points int) {
	if m == nil || points <= 0 {
		return
	}
	m.pointsSpent.Add(float64(points))
}

// Redemption 记录兑换结果（success / rejected 原因）
func (m *Metrics) Redemption(result string) {
	if m == nil {
		return
	}
	m.redemptions.WithLabelValues(result).Inc()
}

// ReferralClick 记录推荐链接点击
func (m *Metrics) ReferralClick() {
	if m == nil {
		return
	}
	m.referralClicks.Inc()
}

// ReferralBonus 记录推荐奖励发放
func (m *Metrics) ReferralBonus() {
	if m == nil {
		return
	}
	m.referralBonus.Inc()
}

// Review 记录评价提交
func (m *Metrics) Review(category string) {
	if m == nil {
		return
	}
	m.reviews.WithLabelValues(category).Inc()
}

// TaskProcessed 记录后台任务处理结果（ok / retry / skipped）
func (m *Metrics) TaskProcessed(taskType, result string) {
	if m == nil {
		return
	}
	m.tasks.WithLabelValues(taskType, result).Inc()
}
