package cache

import (
	"context"
	"fmt"
	"time"
)

const rewardCatalogKey = "loyalty:rewards:available"

func loyaltyStatsKey(userID uint) string {
	return fmt.Sprintf("loyalty:stats:%d", userID)
}

// GetLoyaltyStats 读取用户积分统计快照
func GetLoyaltyStats(ctx context.Context, userID uint, dest interface{}) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return GetJSON(ctx, loyaltyStatsKey(userID), dest)
}

// SetLoyaltyStats 写入用户积分统计快照
func SetLoyaltyStats(ctx context.Context, userID uint, stats interface{}, ttl time.Duration) error {
	if userID == 0 {
		return nil
	}
	return SetJSON(ctx, loyaltyStatsKey(userID), stats, ttl)
}

// DelLoyaltyStats 删除用户积分统计快照
func DelLoyaltyStats(ctx context.Context, userIDs ...uint) error {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id != 0 {
			keys = append(keys, loyaltyStatsKey(id))
		}
	}
	return Del(ctx, keys...)
}

// GetRewardCatalog 读取可兑换奖励目录
func GetRewardCatalog(ctx context.Context, dest interface{}) (bool, error) {
	return GetJSON(ctx, rewardCatalogKey, dest)
}

// SetRewardCatalog 写入可兑换奖励目录
func SetRewardCatalog(ctx context.Context, catalog interface{}, ttl time.Duration) error {
	return SetJSON(ctx, rewardCatalogKey, catalog, ttl)
}

// DelRewardCatalog 使奖励目录缓存失效
func DelRewardCatalog(ctx context.Context) error {
	return Del(ctx, rewardCatalogKey)
}
