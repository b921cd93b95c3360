package repository

import "time"

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page         int
	PageSize     int
	Keyword      string
	LoyaltyLevel string
	ReferredBy   uint
}

// RewardListFilter 查询奖励列表的过滤条件
type RewardListFilter struct {
	Page      int
	PageSize  int
	Category  string
	Search    string
	IsActive  *bool
	OnlyValid bool      // 仅上架、有库存且在有效期内
	At        time.Time // OnlyValid 的参考时间
}

// RedemptionListFilter 查询兑换单列表的过滤条件
type RedemptionListFilter struct {
	Page         int
	PageSize     int
	UserID       uint
	RewardID     uint
	Status       string
	RedemptionNo string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

// ReviewListFilter 查询评价列表的过滤条件
type ReviewListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	Category string
}

// ActivityListFilter 查询积分流水列表的过滤条件
type ActivityListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	Type     string
}

// RedemptionSummary 用户兑换汇总
type RedemptionSummary struct {
	Count        int64
	PointsSpent  int64
	PendingCount int64
}

// ReviewSummary 用户评价汇总
type ReviewSummary struct {
	Count         int64
	AverageRating float64
	PointsEarned  int64
}
