package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表（静态目录，由 cmd/seed 导入）
type Product struct {
	ID            uint           `gorm:"primarykey" json:"id"`                              // 主键
	Slug          string         `gorm:"uniqueIndex;not null" json:"slug"`                  // 唯一标识
	Title         string         `gorm:"type:varchar(200);not null" json:"title"`           // 商品标题
	Description   string         `gorm:"type:text" json:"description"`                      // 商品描述
	Variants      StringArray    `gorm:"type:json" json:"variants"`                         // 可选变体（尺码等）
	PriceAmount   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"` // 价格金额
	PriceCurrency string         `gorm:"type:varchar(10);not null;default:'USD'" json:"price_currency"` // 价格币种
	StripePriceID string         `gorm:"type:varchar(100)" json:"stripe_price_id"`          // 外部价格引用
	ThumbnailURL  string         `gorm:"type:varchar(500)" json:"thumbnail_url"`            // 缩略图
	Images        StringArray    `gorm:"type:json" json:"images"`                           // 图片数组
	Tags          StringArray    `gorm:"type:json" json:"tags"`                             // 标签数组
	MediaAssetID  string         `gorm:"type:varchar(100)" json:"media_asset_id"`           // 3D 试穿素材 ID
	IsActive      bool           `gorm:"default:true;index" json:"is_active"`               // 是否上架
	SortOrder     int            `gorm:"default:0;index" json:"sort_order"`                 // 排序权重
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                           // 创建时间
	UpdatedAt     time.Time      `json:"updated_at"`                                        // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                    // 软删除时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// DetailURL 商品详情页路径
func (p Product) DetailURL() string {
	return "/shop/" + p.Slug
}
