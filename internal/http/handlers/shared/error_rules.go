package shared

import (
	"github.com/piezasya/loyalty/internal/http/response"
	"github.com/piezasya/loyalty/internal/service"

	"github.com/gin-gonic/gin"
)

// LoyaltyErrorRules 积分业务错误映射（前台与后台共用）。
var LoyaltyErrorRules = []MappedError{
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
	{Target: service.ErrUserDisabled, Code: response.CodeForbidden, Key: "error.user_disabled"},
	{Target: service.ErrUserStatusInvalid, Code: response.CodeBadRequest, Key: "error.user_status_invalid"},
	{Target: service.ErrPointsInvalid, Code: response.CodeBadRequest, Key: "error.points_invalid"},
	{Target: service.ErrInsufficientPoints, Code: response.CodeBadRequest, Key: "error.insufficient_points"},
	{Target: service.ErrOrderRefRequired, Code: response.CodeBadRequest, Key: "error.order_ref_required"},
	{Target: service.ErrPurchaseAmountInvalid, Code: response.CodeBadRequest, Key: "error.purchase_amount_invalid"},
	{Target: service.ErrRewardNotFound, Code: response.CodeNotFound, Key: "error.reward_not_found"},
	{Target: service.ErrRewardInactive, Code: response.CodeBadRequest, Key: "error.reward_inactive"},
	{Target: service.ErrRewardOutOfStock, Code: response.CodeBadRequest, Key: "error.reward_out_of_stock"},
	{Target: service.ErrRewardNotStarted, Code: response.CodeBadRequest, Key: "error.reward_not_started"},
	{Target: service.ErrRewardExpired, Code: response.CodeBadRequest, Key: "error.reward_expired"},
	{Target: service.ErrRewardInvalid, Code: response.CodeBadRequest, Key: "error.reward_invalid"},
	{Target: service.ErrRedemptionNotFound, Code: response.CodeNotFound, Key: "error.redemption_not_found"},
	{Target: service.ErrRedemptionStatusInvalid, Code: response.CodeBadRequest, Key: "error.redemption_status_invalid"},
	{Target: service.ErrReviewRatingInvalid, Code: response.CodeBadRequest, Key: "error.review_rating_invalid"},
	{Target: service.ErrReviewCommentRequired, Code: response.CodeBadRequest, Key: "error.review_comment_required"},
	{Target: service.ErrReviewCategoryInvalid, Code: response.CodeBadRequest, Key: "error.review_category_invalid"},
	{Target: service.ErrReviewNotFound, Code: response.CodeNotFound, Key: "error.review_not_found"},
	{Target: service.ErrReviewAlreadyReported, Code: response.CodeBadRequest, Key: "error.review_already_reported"},
	{Target: service.ErrReviewReportOwn, Code: response.CodeBadRequest, Key: "error.review_report_own"},
	{Target: service.ErrReviewReplyRequired, Code: response.CodeBadRequest, Key: "error.review_reply_required"},
	{Target: service.ErrReferralCodeRequired, Code: response.CodeBadRequest, Key: "error.referral_code_required"},
	{Target: service.ErrReferralCodeNotFound, Code: response.CodeNotFound, Key: "error.referral_code_not_found"},
	{Target: service.ErrReferralCodeExhausted, Code: response.CodeInternal, Key: "error.referral_code_exhausted"},
	{Target: service.ErrReferralSelf, Code: response.CodeBadRequest, Key: "error.referral_self"},
	{Target: service.ErrReferralAlreadyReferred, Code: response.CodeBadRequest, Key: "error.referral_already_referred"},
	{Target: service.ErrReferralAlreadyProcessed, Code: response.CodeBadRequest, Key: "error.referral_already_processed"},
	{Target: service.ErrSharePlatformInvalid, Code: response.CodeBadRequest, Key: "error.share_platform_invalid"},
	{Target: service.ErrCaptchaRequired, Code: response.CodeBadRequest, Key: "error.captcha_required"},
	{Target: service.ErrCaptchaInvalid, Code: response.CodeBadRequest, Key: "error.captcha_invalid"},
	{Target: service.ErrCaptchaConfigInvalid, Code: response.CodeInternal, Key: "error.captcha_config_invalid"},
	{Target: service.ErrSettingsInvalid, Code: response.CodeBadRequest, Key: "error.settings_invalid"},
}

// RespondLoyaltyError 按积分业务规则返回错误，未知错误返回 500。
func RespondLoyaltyError(c *gin.Context, err error) {
	RespondWithMappedError(c, err, LoyaltyErrorRules, response.CodeInternal, "error.internal_error")
}

// RedeemErrorRules 兑换接口的映射：用户或奖励不存在属于兑换条件不满足，返回 400。
var RedeemErrorRules = append([]MappedError{
	{Target: service.ErrUserNotFound, Code: response.CodeBadRequest, Key: "error.user_not_found"},
	{Target: service.ErrRewardNotFound, Code: response.CodeBadRequest, Key: "error.reward_not_found"},
}, LoyaltyErrorRules...)

// RespondRedeemError 兑换失败时按 RedeemErrorRules 返回。
func RespondRedeemError(c *gin.Context, err error) {
	RespondWithMappedError(c, err, RedeemErrorRules, response.CodeInternal, "error.internal_error")
}
