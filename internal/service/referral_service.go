package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/piezasya/loyalty/internal/constants"
	"github.com/piezasya/loyalty/internal/logger"
	"github.com/piezasya/loyalty/internal/metrics"
	"github.com/piezasya/loyalty/internal/models"
	"github.com/piezasya/loyalty/internal/repository"

	"gorm.io/gorm"
)

const referralCodeBytes = 4

// ReferralService 推荐码、分享追踪与推荐奖励服务
type ReferralService struct {
	userRepo     repository.UserRepository
	referralRepo repository.ReferralRepository
	pointsSvc    *PointsService
	metrics      *metrics.Metrics
	randRead     func([]byte) (int, error)
}

// ReferralCodeResult 推荐码信息
type ReferralCodeResult struct {
	ReferralCode string `json:"referral_code"`
	ReferredBy   *uint  `json:"referred_by"`
}

// ReferrerInfo 推荐人公开信息
type ReferrerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ShareInput 分享追踪输入
type ShareInput struct {
	Platform  string
	ShareURL  string
	ShareText string
}

// NewReferralService 创建推荐服务
func NewReferralService(
	userRepo repository.UserRepository,
	referralRepo repository.ReferralRepository,
	pointsSvc *PointsService,
	m *metrics.Metrics,
) *ReferralService {
	return &ReferralService{
		userRepo:     userRepo,
		referralRepo: referralRepo,
		pointsSvc:    pointsSvc,
		metrics:      m,
		randRead:     rand.Read,
	}
}

// GenerateReferralCode 生成未被占用的 8 位大写十六进制推荐码，超过尝试次数返回 ErrReferralCodeExhausted
func (s *ReferralService) GenerateReferralCode() (string, error) {
	attempts := s.pointsSvc.Rules().ReferralCodeMaxAttempts
	if attempts <= 0 {
		attempts = DefaultLoyaltyRules().ReferralCodeMaxAttempts
	}
	for i := 0; i < attempts; i++ {
		code, err := s.randomCode()
		if err != nil {
			return "", err
		}
		exists, err := s.userRepo.ReferralCodeExists(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	logger.Warnw("loyalty_referral_code_exhausted", "attempts", attempts)
	return "", ErrReferralCodeExhausted
}

// GetOrCreateReferralCode 获取用户推荐码，首次访问时生成
func (s *ReferralService) GetOrCreateReferralCode(ctx context.Context, principal Principal) (*ReferralCodeResult, error) {
	user, err := s.userRepo.GetByID(principal.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if code := user.ReferralCodeValue(); code != "" {
		return &ReferralCodeResult{ReferralCode: code, ReferredBy: user.ReferredBy}, nil
	}

	attempts := s.pointsSvc.Rules().ReferralCodeMaxAttempts
	if attempts <= 0 {
		attempts = DefaultLoyaltyRules().ReferralCodeMaxAttempts
	}
	for i := 0; i < attempts; i++ {
		code, err := s.GenerateReferralCode()
		if err != nil {
			return nil, err
		}
		assigned, err := s.userRepo.AssignReferralCode(user.ID, code)
		if err != nil {
			// 并发生成了相同的码，换一个重试
			if repository.IsUniqueViolation(err) {
				continue
			}
			return nil, err
		}
		if !assigned {
			// 其他请求已先一步写入
			current, err := s.userRepo.GetByID(user.ID)
			if err != nil {
				return nil, err
			}
			if current == nil {
				return nil, ErrUserNotFound
			}
			return &ReferralCodeResult{ReferralCode: current.ReferralCodeValue(), ReferredBy: current.ReferredBy}, nil
		}
		logger.Infow("loyalty_referral_code_generated", "user_id", user.ID, "referral_code", code)
		return &ReferralCodeResult{ReferralCode: code, ReferredBy: user.ReferredBy}, nil
	}
	return nil, ErrReferralCodeExhausted
}

// VerifyReferralCode 校验推荐码并返回推荐人信息
func (s *ReferralService) VerifyReferralCode(code string) (*ReferrerInfo, error) {
	code = normalizeReferralCode(code)
	if code == "" {
		return nil, ErrReferralCodeRequired
	}
	referrer, err := s.userRepo.GetByReferralCode(code)
	if err != nil {
		return nil, err
	}
	if referrer == nil {
		return nil, ErrReferralCodeNotFound
	}
	return &ReferrerInfo{Name: referrer.Name(), Email: referrer.Email}, nil
}

// ProcessReferral 独立事务内完成推荐绑定与双方奖励
func (s *ReferralService) ProcessReferral(ctx context.Context, referrerID, newUserID uint) error {
	var changes []*PointsChange
	err := s.userRepo.Transaction(func(tx *gorm.DB) error {
		var err error
		changes, err = s.ProcessReferralTx(tx, referrerID, newUserID, "")
		return err
	})
	if err != nil {
		return err
	}
	s.afterReferral(ctx, referrerID, newUserID, changes)
	return nil
}

// ProcessReferralTx 绑定新用户的推荐人，推荐人与新用户各获得配置的奖励积分
func (s *ReferralService) ProcessReferralTx(tx *gorm.DB, referrerID, newUserID uint, code string) ([]*PointsChange, error) {
	if referrerID == 0 || newUserID == 0 {
		return nil, ErrUserNotFound
	}
	if referrerID == newUserID {
		return nil, ErrReferralSelf
	}
	userRepo := s.userRepo.WithTx(tx)
	referrer, err := userRepo.GetByIDForUpdate(referrerID)
	if err != nil {
		return nil, err
	}
	if referrer == nil {
		return nil, ErrUserNotFound
	}
	newUser, err := userRepo.GetByIDForUpdate(newUserID)
	if err != nil {
		return nil, err
	}
	if newUser == nil {
		return nil, ErrUserNotFound
	}
	if newUser.ReferredBy != nil {
		return nil, ErrReferralAlreadyReferred
	}
	bound, err := userRepo.SetReferredBy(newUser.ID, referrer.ID)
	if err != nil {
		return nil, err
	}
	if !bound {
		return nil, ErrReferralAlreadyReferred
	}
	if code == "" {
		code = referrer.ReferralCodeValue()
	}

	rules := s.pointsSvc.Rules()
	changes := make([]*PointsChange, 0, 2)
	if rules.ReferrerBonusPoints > 0 {
		change, err := s.pointsSvc.AddPointsTx(tx, AddPointsInput{
			UserID:      referrer.ID,
			Points:      rules.ReferrerBonusPoints,
			Description: "Referral bonus",
			Payload:     models.ReferralBonusPayload{NewUserID: newUser.ID, ReferralCode: code},
		})
		if err != nil {
			return nil, err
		}
		changes = append(changes, change)
	}
	if rules.RefereeBonusPoints > 0 {
		change, err := s.pointsSvc.AddPointsTx(tx, AddPointsInput{
			UserID:      newUser.ID,
			Points:      rules.RefereeBonusPoints,
			Description: "Welcome bonus for joining with a referral",
			Payload:     models.ReferralWelcomePayload{ReferrerID: referrer.ID, ReferralCode: code},
		})
		if err != nil {
			return nil, err
		}
		changes = append(changes, change)
	}
	return changes, nil
}

// TrackReferralShare 记录一次分享，同一推荐码只保留一行追踪记录
func (s *ReferralService) TrackReferralShare(ctx context.Context, principal Principal, input ShareInput) (*models.ReferralTracking, error) {
	platform := strings.ToLower(strings.TrimSpace(input.Platform))
	if platform == "" {
		platform = constants.SharePlatformOther
	}
	if !isSharePlatform(platform) {
		return nil, ErrSharePlatformInvalid
	}
	codeResult, err := s.GetOrCreateReferralCode(ctx, principal)
	if err != nil {
		return nil, err
	}

	var tracking *models.ReferralTracking
	upsert := func(tx *gorm.DB) error {
		repo := s.referralRepo.WithTx(tx)
		existing, err := repo.GetTrackingByCodeForUpdate(codeResult.ReferralCode)
		if err != nil {
			return err
		}
		now := time.Now()
		if existing == nil {
			tracking = &models.ReferralTracking{
				ReferralCode: codeResult.ReferralCode,
				ReferrerID:   principal.UserID,
				Platform:     platform,
				ShareURL:     strings.TrimSpace(input.ShareURL),
				ShareText:    strings.TrimSpace(input.ShareText),
				Shares:       1,
				IsActive:     true,
				LastSharedAt: &now,
			}
			return repo.CreateTracking(tracking)
		}
		existing.Platform = platform
		existing.ShareURL = strings.TrimSpace(input.ShareURL)
		existing.ShareText = strings.TrimSpace(input.ShareText)
		existing.Shares++
		existing.IsActive = true
		existing.LastSharedAt = &now
		tracking = existing
		return repo.UpdateTracking(existing)
	}
	err = s.referralRepo.Transaction(upsert)
	if err != nil && repository.IsUniqueViolation(err) {
		// 并发首次分享，另一请求已建行，改为更新
		err = s.referralRepo.Transaction(upsert)
	}
	if err != nil {
		return nil, err
	}
	logger.Infow("loyalty_referral_shared", "user_id", principal.UserID, "referral_code", tracking.ReferralCode, "platform", platform)
	return tracking, nil
}

// TrackReferralClick 原子累加推荐链接点击数
func (s *ReferralService) TrackReferralClick(ctx context.Context, code string) error {
	code = normalizeReferralCode(code)
	if code == "" {
		return ErrReferralCodeRequired
	}
	ok, err := s.referralRepo.IncrementClicks(code)
	if err != nil {
		return err
	}
	if !ok {
		referrer, err := s.userRepo.GetByReferralCode(code)
		if err != nil {
			return err
		}
		if referrer == nil {
			return ErrReferralCodeNotFound
		}
		createErr := s.referralRepo.CreateTracking(&models.ReferralTracking{
			ReferralCode: code,
			ReferrerID:   referrer.ID,
			Platform:     constants.SharePlatformOther,
			Clicks:       1,
			IsActive:     true,
		})
		if createErr != nil {
			if !repository.IsUniqueViolation(createErr) {
				return createErr
			}
			if _, err := s.referralRepo.IncrementClicks(code); err != nil {
				return err
			}
		}
	}
	s.metrics.ReferralClick()
	return nil
}

// TrackSuccessfulReferral 记录推荐注册成功并发放奖励，以新用户 ID 保证只发放一次
func (s *ReferralService) TrackSuccessfulReferral(ctx context.Context, code string, newUserID uint) (*models.ReferralBonus, error) {
	code = normalizeReferralCode(code)
	if code == "" {
		return nil, ErrReferralCodeRequired
	}
	if newUserID == 0 {
		return nil, ErrUserNotFound
	}
	referrer, err := s.userRepo.GetByReferralCode(code)
	if err != nil {
		return nil, err
	}
	if referrer == nil {
		return nil, ErrReferralCodeNotFound
	}

	var bonus *models.ReferralBonus
	var changes []*PointsChange
	err = s.referralRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.referralRepo.WithTx(tx)
		existing, err := repo.GetBonusByNewUser(newUserID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrReferralAlreadyProcessed
		}

		changes, err = s.ProcessReferralTx(tx, referrer.ID, newUserID, code)
		if err != nil {
			return err
		}
		rules := s.pointsSvc.Rules()

		tracking, err := repo.GetTrackingByCodeForUpdate(code)
		if err != nil {
			return err
		}
		if tracking == nil {
			if err := repo.CreateTracking(&models.ReferralTracking{
				ReferralCode: code,
				ReferrerID:   referrer.ID,
				Platform:     constants.SharePlatformOther,
				IsActive:     true,
			}); err != nil {
				return err
			}
		}
		if err := repo.RecordRegistration(code, rules.ReferrerBonusPoints); err != nil {
			return err
		}

		bonus = &models.ReferralBonus{
			NewUserID:      newUserID,
			ReferrerID:     referrer.ID,
			ReferralCode:   code,
			ReferrerPoints: rules.ReferrerBonusPoints,
			RefereePoints:  rules.RefereeBonusPoints,
		}
		return repo.CreateBonus(bonus)
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrReferralAlreadyProcessed
		}
		if errors.Is(err, ErrReferralAlreadyProcessed) {
			logger.Infow("loyalty_referral_replay_ignored", "referral_code", code, "new_user_id", newUserID)
		}
		return nil, err
	}
	s.metrics.ReferralBonus()
	s.afterReferral(ctx, referrer.ID, newUserID, changes)
	logger.Infow("loyalty_referral_completed", "referrer_id", referrer.ID, "new_user_id", newUserID, "referral_code", code)
	return bonus, nil
}

func (s *ReferralService) afterReferral(ctx context.Context, referrerID, newUserID uint, changes []*PointsChange) {
	for _, change := range changes {
		s.pointsSvc.recordMetrics(change.Activity)
	}
	s.pointsSvc.NotifyChanged(ctx, referrerID, newUserID)
}

func (s *ReferralService) randomCode() (string, error) {
	buf := make([]byte, referralCodeBytes)
	if _, err := s.randRead(buf); err != nil {
		return "", fmt.Errorf("generate referral code: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

func normalizeReferralCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
