package models

import (
	"time"

	"gorm.io/gorm"
)

// NewsletterSubscriber 邮件订阅记录
type NewsletterSubscriber struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                    // 主键
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`                       // 订阅邮箱
	Status    string         `gorm:"type:varchar(20);not null;default:'pending'" json:"status"` // 投递状态
	SourceTag string         `gorm:"type:varchar(50)" json:"source_tag"`                      // 来源标记
	LastError string         `gorm:"type:text" json:"-"`                                      // 最近一次投递失败原因
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                              // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                          // 软删除时间
}

// TableName 指定表名
func (NewsletterSubscriber) TableName() string {
	return "newsletter_subscribers"
}
