package constants

// 会员等级常量（按门槛从高到低评估）
const (
	LoyaltyLevelBronze   = "bronze"
	LoyaltyLevelSilver   = "silver"
	LoyaltyLevelGold     = "gold"
	LoyaltyLevelPlatinum = "platinum"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 积分流水（活动记录）类型常量
const (
	ActivityTypePointsAdjusted     = "points_adjusted"
	ActivityTypeReviewReward       = "review_reward"
	ActivityTypeRewardRedeemed     = "reward_redeemed"
	ActivityTypeRedemptionRefunded = "redemption_refunded"
	ActivityTypeReferralBonus      = "referral_bonus"
	ActivityTypeReferralWelcome    = "referral_welcome"
	ActivityTypePurchaseReward     = "purchase_reward"
)

// 评价类别常量
const (
	ReviewCategoryProduct  = "product"
	ReviewCategoryService  = "service"
	ReviewCategoryDelivery = "delivery"
	ReviewCategoryApp      = "app"
)

// 奖励类别常量
const (
	RewardCategoryDiscount  = "discount"
	RewardCategoryProduct   = "product"
	RewardCategoryService   = "service"
	RewardCategoryShipping  = "shipping"
	RewardCategoryExclusive = "exclusive"
)

// 兑换单状态常量
const (
	RedemptionStatusPending   = "pending"
	RedemptionStatusApproved  = "approved"
	RedemptionStatusRejected  = "rejected"
	RedemptionStatusShipped   = "shipped"
	RedemptionStatusDelivered = "delivered"
)

// 推荐分享平台常量
const (
	SharePlatformWhatsApp  = "whatsapp"
	SharePlatformFacebook  = "facebook"
	SharePlatformTwitter   = "twitter"
	SharePlatformInstagram = "instagram"
	SharePlatformTelegram  = "telegram"
	SharePlatformEmail     = "email"
	SharePlatformSMS       = "sms"
	SharePlatformCopyLink  = "copy_link"
	SharePlatformOther     = "other"
)

// 验证码提供方常量
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 验证码校验场景常量
const (
	CaptchaSceneVerifyReferral = "verify_referral"
	CaptchaSceneAdminLogin     = "admin_login"
)

// 队列常量
const (
	QueueDefault            = "default"
	QueueCritical           = "critical"
	TaskReferralRegistered  = "loyalty:referral_registered"
	TaskOrderCompleted      = "loyalty:order_completed"
	TaskLoyaltyStatsRefresh = "loyalty:stats_refresh"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "pya"
)

// 设置键常量
const (
	SettingKeyLoyaltyConfig = "loyalty_config"
)

// 币种常量
const (
	SiteCurrencyDefault = "EUR"
)

// 站点语言常量
const (
	LocaleEsES = "es-ES"
	LocaleEnUS = "en-US"
	LocaleZhCN = "zh-CN"
)

// SupportedLocales 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleEsES, LocaleEnUS, LocaleZhCN}
