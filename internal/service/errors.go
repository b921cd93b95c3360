package service

import "errors"

// 账号与认证
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserDisabled       = errors.New("user disabled")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminNotFound      = errors.New("admin not found")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrUserStatusInvalid  = errors.New("invalid user status")
)

// 积分
var (
	ErrPointsInvalid         = errors.New("points delta must be non-zero")
	ErrInsufficientPoints    = errors.New("insufficient points")
	ErrOrderRefRequired      = errors.New("order reference is required")
	ErrPurchaseAmountInvalid = errors.New("purchase amount must be positive")
)

// 奖励与兑换
var (
	ErrRewardNotFound          = errors.New("reward not found")
	ErrRewardInactive          = errors.New("reward is not active")
	ErrRewardOutOfStock        = errors.New("reward out of stock")
	ErrRewardNotStarted        = errors.New("reward is not yet available")
	ErrRewardExpired           = errors.New("reward has expired")
	ErrRewardInvalid           = errors.New("invalid reward")
	ErrRedemptionNotFound      = errors.New("redemption not found")
	ErrRedemptionStatusInvalid = errors.New("invalid redemption status transition")
)

// 评价
var (
	ErrReviewRatingInvalid   = errors.New("rating must be between 1 and 5")
	ErrReviewCommentRequired = errors.New("comment is required")
	ErrReviewCategoryInvalid = errors.New("invalid review category")
	ErrReviewNotFound        = errors.New("review not found")
	ErrReviewAlreadyReported = errors.New("review already reported")
	ErrReviewReportOwn       = errors.New("cannot report own review")
	ErrReviewReplyRequired   = errors.New("reply is required")
)

// 推荐
var (
	ErrReferralCodeRequired     = errors.New("referral code is required")
	ErrReferralCodeNotFound     = errors.New("referral code not found")
	ErrReferralCodeExhausted    = errors.New("referral code space exhausted")
	ErrReferralSelf             = errors.New("cannot refer yourself")
	ErrReferralAlreadyReferred  = errors.New("user already has a referrer")
	ErrReferralAlreadyProcessed = errors.New("referral already processed")
	ErrSharePlatformInvalid     = errors.New("invalid share platform")
)

// 验证码与设置
var (
	ErrCaptchaRequired      = errors.New("captcha is required")
	ErrCaptchaInvalid       = errors.New("captcha is invalid")
	ErrCaptchaConfigInvalid = errors.New("captcha is not configured")
	ErrSettingsInvalid      = errors.New("invalid loyalty settings")
)
