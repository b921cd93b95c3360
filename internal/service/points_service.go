package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/piezasya/loyalty/internal/cache"
	"github.com/piezasya/loyalty/internal/logger"
	"github.com/piezasya/loyalty/internal/metrics"
	"github.com/piezasya/loyalty/internal/models"
	"github.com/piezasya/loyalty/internal/queue"
	"github.com/piezasya/loyalty/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PointsService 积分与等级引擎
type PointsService struct {
	userRepo     repository.UserRepository
	activityRepo repository.ActivityRepository
	purchaseRepo repository.PurchaseRepository
	rules        LoyaltyRulesSource
	metrics      *metrics.Metrics
	queueClient  *queue.Client
}

// AddPointsInput 积分变动输入
type AddPointsInput struct {
	UserID      uint
	Points      int
	Description string
	Payload     models.ActivityPayload
}

// PointsChange 积分变动结果
type PointsChange struct {
	User     *models.User
	Activity *models.Activity
}

// PurchaseInput 订单完成入账输入
type PurchaseInput struct {
	UserID   uint
	OrderRef string
	Amount   models.Money
}

// NewPointsService 创建积分服务
func NewPointsService(
	userRepo repository.UserRepository,
	activityRepo repository.ActivityRepository,
	purchaseRepo repository.PurchaseRepository,
	rules LoyaltyRulesSource,
	m *metrics.Metrics,
	queueClient *queue.Client,
) *PointsService {
	if rules == nil {
		rules = StaticRules(DefaultLoyaltyRules())
	}
	return &PointsService{
		userRepo:     userRepo,
		activityRepo: activityRepo,
		purchaseRepo: purchaseRepo,
		rules:        rules,
		metrics:      m,
		queueClient:  queueClient,
	}
}

// Rules 当前生效规则
func (s *PointsService) Rules() LoyaltyRules {
	return s.rules.LoyaltyRules()
}

// AddPoints 在独立事务内增减积分、重算等级并记录活动
func (s *PointsService) AddPoints(ctx context.Context, input AddPointsInput) (*PointsChange, error) {
	var change *PointsChange
	err := s.userRepo.Transaction(func(tx *gorm.DB) error {
		var err error
		change, err = s.AddPointsTx(tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.recordMetrics(change.Activity)
	s.NotifyChanged(ctx, input.UserID)
	return change, nil
}

// AddPointsTx 在调用方事务内增减积分
func (s *PointsService) AddPointsTx(tx *gorm.DB, input AddPointsInput) (*PointsChange, error) {
	if input.Points == 0 {
		return nil, ErrPointsInvalid
	}
	userRepo := s.userRepo.WithTx(tx)
	user, err := userRepo.GetByIDForUpdate(input.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	ok, err := userRepo.AddPoints(user.ID, input.Points)
	if err != nil {
		return nil, fmt.Errorf("update points: %w", err)
	}
	if !ok {
		return nil, ErrInsufficientPoints
	}
	user.Points += input.Points
	if err := s.syncLevelTx(userRepo, user); err != nil {
		return nil, err
	}

	activity, err := s.appendActivityTx(tx, user.ID, input.Points, input.Description, input.Payload)
	if err != nil {
		return nil, err
	}
	logger.Infow("loyalty_points_added",
		"user_id", user.ID,
		"points", input.Points,
		"balance", user.Points,
		"level", user.LoyaltyLevel,
		"type", activity.Type,
	)
	return &PointsChange{User: user, Activity: activity}, nil
}

// AdjustPoints 管理员手动调整积分
func (s *PointsService) AdjustPoints(ctx context.Context, adminID, userID uint, delta int, remark string) (*PointsChange, error) {
	remark = strings.TrimSpace(remark)
	description := "Manual points adjustment"
	if remark != "" {
		description = fmt.Sprintf("%s: %s", description, remark)
	}
	return s.AddPoints(ctx, AddPointsInput{
		UserID:      userID,
		Points:      delta,
		Description: description,
		Payload:     models.PointsAdjustedPayload{AdminID: adminID, Remark: remark},
	})
}

// RecordPurchase 订单完成入账：累计消费并按比例发放积分，按 order_ref 幂等
func (s *PointsService) RecordPurchase(ctx context.Context, input PurchaseInput) (*models.LoyaltyPurchase, bool, error) {
	orderRef := strings.TrimSpace(input.OrderRef)
	if orderRef == "" {
		return nil, false, ErrOrderRefRequired
	}
	amount := input.Amount.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, false, ErrPurchaseAmountInvalid
	}

	var purchase *models.LoyaltyPurchase
	var activity *models.Activity
	created := false
	err := s.userRepo.Transaction(func(tx *gorm.DB) error {
		purchaseRepo := s.purchaseRepo.WithTx(tx)
		existing, err := purchaseRepo.GetByOrderRef(orderRef)
		if err != nil {
			return err
		}
		if existing != nil {
			purchase = existing
			return nil
		}
		userRepo := s.userRepo.WithTx(tx)
		user, err := userRepo.GetByIDForUpdate(input.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		money := models.NewMoneyFromDecimal(amount)
		if err := userRepo.AddPurchase(user.ID, money); err != nil {
			return fmt.Errorf("update purchase totals: %w", err)
		}
		points := s.Rules().PurchasePoints(amount)
		purchase = &models.LoyaltyPurchase{
			OrderRef: orderRef,
			UserID:   user.ID,
			Amount:   money,
			Points:   points,
		}
		if err := purchaseRepo.Create(purchase); err != nil {
			return err
		}
		if points > 0 {
			change, err := s.AddPointsTx(tx, AddPointsInput{
				UserID:      user.ID,
				Points:      points,
				Description: fmt.Sprintf("Purchase reward for order %s", orderRef),
				Payload:     models.PurchaseRewardPayload{OrderRef: orderRef, Amount: money},
			})
			if err != nil {
				return err
			}
			activity = change.Activity
		} else {
			// 无积分时仍需按新的累计消费重算等级
			refreshed, err := userRepo.GetByID(user.ID)
			if err != nil {
				return err
			}
			if err := s.syncLevelTx(userRepo, refreshed); err != nil {
				return err
			}
		}
		created = true
		return nil
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			existing, lookupErr := s.purchaseRepo.GetByOrderRef(orderRef)
			if lookupErr == nil && existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}
	if created {
		s.recordMetrics(activity)
		s.NotifyChanged(ctx, input.UserID)
		logger.Infow("loyalty_purchase_recorded", "user_id", input.UserID, "order_ref", orderRef, "points", purchase.Points)
	}
	return purchase, created, nil
}

// ListActivities 查询用户积分流水
func (s *PointsService) ListActivities(principal Principal, activityType string, page, pageSize int) ([]models.Activity, int64, error) {
	if !principal.Valid() {
		return nil, 0, ErrUserNotFound
	}
	return s.activityRepo.List(repository.ActivityListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   principal.UserID,
		Type:     strings.TrimSpace(activityType),
	})
}

// NotifyChanged 积分相关数据变化后失效统计缓存并异步刷新
func (s *PointsService) NotifyChanged(ctx context.Context, userIDs ...uint) {
	ids := make([]uint, 0, len(userIDs))
	for _, id := range userIDs {
		if id != 0 {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return
	}
	if err := cache.DelLoyaltyStats(ctx, ids...); err != nil {
		logger.Warnw("loyalty_stats_cache_invalidate_failed", "user_ids", ids, "error", err)
	}
	if err := s.queueClient.EnqueueStatsRefresh(queue.StatsRefreshPayload{UserIDs: ids}); err != nil {
		logger.Warnw("loyalty_stats_refresh_enqueue_failed", "user_ids", ids, "error", err)
	}
}

func (s *PointsService) syncLevelTx(userRepo *repository.GormUserRepository, user *models.User) error {
	if user == nil {
		return nil
	}
	level := s.Rules().LevelFor(user.Points, user.TotalSpent.Decimal)
	if level == user.LoyaltyLevel {
		return nil
	}
	if err := userRepo.UpdateLevel(user.ID, level); err != nil {
		return fmt.Errorf("update level: %w", err)
	}
	logger.Infow("loyalty_level_changed", "user_id", user.ID, "from", user.LoyaltyLevel, "to", level)
	user.LoyaltyLevel = level
	return nil
}

func (s *PointsService) appendActivityTx(tx *gorm.DB, userID uint, points int, description string, payload models.ActivityPayload) (*models.Activity, error) {
	activityType, meta, err := models.EncodeActivityPayload(payload)
	if err != nil {
		return nil, err
	}
	activity := &models.Activity{
		UserID:      userID,
		Type:        activityType,
		Description: strings.TrimSpace(description),
		Points:      points,
		Metadata:    meta,
	}
	if err := s.activityRepo.WithTx(tx).Create(activity); err != nil {
		return nil, fmt.Errorf("append activity: %w", err)
	}
	return activity, nil
}

func (s *PointsService) recordMetrics(activity *models.Activity) {
	if activity == nil {
		return
	}
	if activity.Points > 0 {
		s.metrics.PointsGranted(activity.Type, activity.Points)
		return
	}
	s.metrics.PointsSpent(-activity.Points)
}
