package models

import (
	"time"

	"gorm.io/gorm"
)

// Review 用户评价（提交即发放积分，积分值不再变更）
type Review struct {
	ID           uint           `gorm:"primarykey" json:"id"`                            // 主键
	UserID       uint           `gorm:"not null;index" json:"user_id"`                   // 用户ID
	ProductID    string         `gorm:"type:varchar(64);index" json:"product_id"`        // 商品ID（外部）
	OrderID      string         `gorm:"type:varchar(64);index" json:"order_id"`          // 订单ID（外部）
	Rating       int            `gorm:"not null" json:"rating"`                          // 评分 1-5
	Title        string         `gorm:"type:varchar(200)" json:"title"`                  // 标题
	Comment      string         `gorm:"type:text;not null" json:"comment"`               // 内容
	Category     string         `gorm:"type:varchar(20);not null;index" json:"category"` // 评价类别
	PointsEarned int            `gorm:"not null;default:0" json:"points_earned"`         // 获得积分
	IsVerified   bool           `gorm:"not null;default:false" json:"is_verified"`       // 是否已验证购买
	Reply        string         `gorm:"type:text" json:"reply,omitempty"`                // 商家回复
	RepliedBy    *uint          `json:"replied_by,omitempty"`                            // 回复管理员ID
	RepliedAt    *time.Time     `json:"replied_at,omitempty"`                            // 回复时间
	ReportCount  int            `gorm:"not null;default:0" json:"report_count"`          // 被举报次数
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                         // 创建时间
	UpdatedAt    time.Time      `json:"updated_at"`                                      // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                  // 软删除时间
}

// TableName 指定表名
func (Review) TableName() string {
	return "reviews"
}

// ReviewReport 评价举报（同一用户对同一评价仅可举报一次）
type ReviewReport struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                              // 主键
	ReviewID   uint      `gorm:"not null;index:idx_review_report_unique,unique" json:"review_id"`   // 评价ID
	ReporterID uint      `gorm:"not null;index:idx_review_report_unique,unique" json:"reporter_id"` // 举报人ID
	Reason     string    `gorm:"type:varchar(500);not null" json:"reason"`                          // 举报原因
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                                           // 创建时间
}

// TableName 指定表名
func (ReviewReport) TableName() string {
	return "review_reports"
}
