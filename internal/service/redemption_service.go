package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/piezasya/loyalty/internal/cache"
	"github.com/piezasya/loyalty/internal/constants"
	"github.com/piezasya/loyalty/internal/logger"
	"github.com/piezasya/loyalty/internal/metrics"
	"github.com/piezasya/loyalty/internal/models"
	"github.com/piezasya/loyalty/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RedemptionService 奖励兑换服务
type RedemptionService struct {
	userRepo       repository.UserRepository
	rewardRepo     repository.RewardRepository
	redemptionRepo repository.RedemptionRepository
	referralRepo   repository.ReferralRepository
	pointsSvc      *PointsService
	metrics        *metrics.Metrics
}

// RedeemInput 兑换输入
type RedeemInput struct {
	RewardID        uint
	ShippingAddress string
}

// UpdateRedemptionInput 管理端更新兑换单输入
type UpdateRedemptionInput struct {
	Status         string
	TrackingNumber string
	AdminNote      string
}

// redemptionTransitions 兑换单允许的状态流转
var redemptionTransitions = map[string][]string{
	constants.RedemptionStatusPending:  {constants.RedemptionStatusApproved, constants.RedemptionStatusRejected},
	constants.RedemptionStatusApproved: {constants.RedemptionStatusShipped, constants.RedemptionStatusRejected},
	constants.RedemptionStatusShipped:  {constants.RedemptionStatusDelivered},
}

// NewRedemptionService 创建兑换服务
func NewRedemptionService(
	userRepo repository.UserRepository,
	rewardRepo repository.RewardRepository,
	redemptionRepo repository.RedemptionRepository,
	referralRepo repository.ReferralRepository,
	pointsSvc *PointsService,
	m *metrics.Metrics,
) *RedemptionService {
	return &RedemptionService{
		userRepo:       userRepo,
		rewardRepo:     rewardRepo,
		redemptionRepo: redemptionRepo,
		referralRepo:   referralRepo,
		pointsSvc:      pointsSvc,
		metrics:        m,
	}
}

// Redeem 兑换奖励：扣积分、减库存、建兑换单与活动记录在同一事务内完成
func (s *RedemptionService) Redeem(ctx context.Context, principal Principal, input RedeemInput) (*models.RewardRedemption, error) {
	if !principal.Valid() {
		return nil, ErrUserNotFound
	}
	var redemption *models.RewardRedemption
	var change *PointsChange
	var referrerID uint
	err := s.userRepo.Transaction(func(tx *gorm.DB) error {
		user, err := s.userRepo.WithTx(tx).GetByIDForUpdate(principal.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		rewardRepo := s.rewardRepo.WithTx(tx)
		reward, err := rewardRepo.GetByIDForUpdate(input.RewardID)
		if err != nil {
			return err
		}
		if reward == nil {
			return ErrRewardNotFound
		}
		now := time.Now()
		if err := checkRedeemable(user, reward, now); err != nil {
			return err
		}

		ok, err := rewardRepo.DecrementStock(reward.ID)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if !ok {
			return ErrRewardOutOfStock
		}

		redemption = &models.RewardRedemption{
			RedemptionNo:    generateRedemptionNo(now),
			UserID:          user.ID,
			RewardID:        reward.ID,
			PointsSpent:     reward.PointsRequired,
			CashSpent:       reward.CashRequired,
			Status:          constants.RedemptionStatusPending,
			ShippingAddress: strings.TrimSpace(input.ShippingAddress),
		}
		if err := s.redemptionRepo.WithTx(tx).Create(redemption); err != nil {
			return fmt.Errorf("create redemption: %w", err)
		}

		if reward.PointsRequired > 0 {
			change, err = s.pointsSvc.AddPointsTx(tx, AddPointsInput{
				UserID:      user.ID,
				Points:      -reward.PointsRequired,
				Description: fmt.Sprintf("Redeemed reward: %s", reward.Name),
				Payload: models.RewardRedeemedPayload{
					RedemptionID: redemption.ID,
					RedemptionNo: redemption.RedemptionNo,
					RewardID:     reward.ID,
					RewardName:   reward.Name,
				},
			})
			if err != nil {
				return err
			}
			if user.ReferredBy != nil {
				referrerID = *user.ReferredBy
				if err := s.referralRepo.WithTx(tx).AddPointsSpent(referrerID, reward.PointsRequired); err != nil {
					return fmt.Errorf("update referral spent: %w", err)
				}
			}
		}
		redemption.Reward = reward
		return nil
	})
	if err != nil {
		s.metrics.Redemption(redemptionResultLabel(err))
		return nil, err
	}

	s.metrics.Redemption("success")
	if change != nil {
		s.pointsSvc.recordMetrics(change.Activity)
	}
	if err := cache.DelRewardCatalog(ctx); err != nil {
		logger.Warnw("loyalty_reward_catalog_cache_invalidate_failed", "error", err)
	}
	s.pointsSvc.NotifyChanged(ctx, principal.UserID, referrerID)
	logger.Infow("reward_redeemed",
		"user_id", principal.UserID,
		"reward_id", input.RewardID,
		"redemption_no", redemption.RedemptionNo,
		"points", redemption.PointsSpent,
	)
	return redemption, nil
}

// ListHistory 当前用户兑换记录
func (s *RedemptionService) ListHistory(principal Principal, page, pageSize int) ([]models.RewardRedemption, int64, error) {
	if !principal.Valid() {
		return nil, 0, ErrUserNotFound
	}
	return s.redemptionRepo.List(repository.RedemptionListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   principal.UserID,
	})
}

// List 管理端兑换单列表
func (s *RedemptionService) List(filter repository.RedemptionListFilter) ([]models.RewardRedemption, int64, error) {
	return s.redemptionRepo.List(filter)
}

// UpdateStatus 管理端推进兑换单状态，驳回时退还积分并回补库存
func (s *RedemptionService) UpdateStatus(ctx context.Context, adminID, id uint, input UpdateRedemptionInput) (*models.RewardRedemption, error) {
	target := strings.ToLower(strings.TrimSpace(input.Status))
	var redemption *models.RewardRedemption
	var change *PointsChange
	var referrerID uint
	err := s.userRepo.Transaction(func(tx *gorm.DB) error {
		redemptionRepo := s.redemptionRepo.WithTx(tx)
		var err error
		redemption, err = redemptionRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if redemption == nil {
			return ErrRedemptionNotFound
		}
		if !canTransitRedemption(redemption.Status, target) {
			return ErrRedemptionStatusInvalid
		}

		if target == constants.RedemptionStatusRejected {
			if err := s.rewardRepo.WithTx(tx).IncrementStock(redemption.RewardID); err != nil {
				return fmt.Errorf("restock reward: %w", err)
			}
			if redemption.PointsSpent > 0 {
				change, err = s.pointsSvc.AddPointsTx(tx, AddPointsInput{
					UserID:      redemption.UserID,
					Points:      redemption.PointsSpent,
					Description: fmt.Sprintf("Refund for redemption %s", redemption.RedemptionNo),
					Payload: models.RedemptionRefundedPayload{
						RedemptionID: redemption.ID,
						RedemptionNo: redemption.RedemptionNo,
						RewardID:     redemption.RewardID,
						AdminID:      adminID,
					},
				})
				if err != nil {
					return err
				}
				if referredBy := change.User.ReferredBy; referredBy != nil {
					referrerID = *referredBy
					if err := s.referralRepo.WithTx(tx).AddPointsSpent(referrerID, -redemption.PointsSpent); err != nil {
						return fmt.Errorf("update referral spent: %w", err)
					}
				}
			}
		}

		now := time.Now()
		redemption.Status = target
		if tracking := strings.TrimSpace(input.TrackingNumber); tracking != "" {
			redemption.TrackingNumber = tracking
		}
		if note := strings.TrimSpace(input.AdminNote); note != "" {
			redemption.AdminNote = note
		}
		redemption.ProcessedBy = &adminID
		redemption.ProcessedAt = &now
		return redemptionRepo.Update(redemption)
	})
	if err != nil {
		return nil, err
	}
	if change != nil {
		s.pointsSvc.recordMetrics(change.Activity)
		if err := cache.DelRewardCatalog(ctx); err != nil {
			logger.Warnw("loyalty_reward_catalog_cache_invalidate_failed", "error", err)
		}
	}
	s.pointsSvc.NotifyChanged(ctx, redemption.UserID, referrerID)
	logger.Infow("loyalty_redemption_status_updated", "redemption_id", id, "status", target, "admin_id", adminID)
	return s.redemptionRepo.GetByID(id)
}

// checkRedeemable 按固定顺序校验兑换前置条件
func checkRedeemable(user *models.User, reward *models.Reward, now time.Time) error {
	if !reward.IsActive {
		return ErrRewardInactive
	}
	if reward.Stock <= 0 {
		return ErrRewardOutOfStock
	}
	if user.Points < reward.PointsRequired {
		return ErrInsufficientPoints
	}
	if reward.NotStarted(now) {
		return ErrRewardNotStarted
	}
	if reward.Expired(now) {
		return ErrRewardExpired
	}
	return nil
}

func canTransitRedemption(from, to string) bool {
	for _, allowed := range redemptionTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func generateRedemptionNo(now time.Time) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("RD%s%s", now.Format("20060102"), id[:16])
}

func redemptionResultLabel(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, ErrRewardNotFound):
		return "reward_not_found"
	case errors.Is(err, ErrRewardInactive):
		return "inactive"
	case errors.Is(err, ErrRewardOutOfStock):
		return "out_of_stock"
	case errors.Is(err, ErrInsufficientPoints):
		return "insufficient_points"
	case errors.Is(err, ErrRewardNotStarted):
		return "not_started"
	case errors.Is(err, ErrRewardExpired):
		return "expired"
	default:
		return "error"
	}
}
