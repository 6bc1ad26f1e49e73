package models

import (
	"time"

	"gorm.io/gorm"
)

// Cart 购物车快照表。每个购物车令牌对应一行，条目列表以完整 JSON 快照
// 读写（整值覆盖，后写覆盖先写，不做合并）。
type Cart struct {
	ID              uint           `gorm:"primarykey" json:"id"`                    // 主键
	Token           string         `gorm:"uniqueIndex;not null" json:"token"`       // 购物车令牌
	ItemsJSON       string         `gorm:"type:text;not null" json:"items"`         // 条目快照（JSON 数组）
	CheckoutSession string         `gorm:"index" json:"checkout_session,omitempty"` // 进行中的结算会话 ID
	CheckoutStatus  string         `gorm:"type:varchar(20)" json:"checkout_status"` // 结算会话状态
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                 // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                 // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                          // 软删除时间
}

// TableName 指定表名
func (Cart) TableName() string {
	return "carts"
}

// CartLine 购物车条目的规范形态。迁移后快照中的每一项都满足：
// qty 为正整数，price_cents 为非负整数，stripe_price_id 始终存在（可为空串）。
type CartLine struct {
	Key           string `json:"key"`
	ProductID     string `json:"product_id"`
	Title         string `json:"title"`
	Variant       string `json:"variant,omitempty"`
	ThumbnailURL  string `json:"thumbnail_url,omitempty"`
	DetailURL     string `json:"detail_url,omitempty"`
	PriceCents    int64  `json:"price_cents"`
	Quantity      int    `json:"qty"`
	StripePriceID string `json:"stripe_price_id"`
}
