package repository

import (
	"errors"
	"time"

	"github.com/driftwear-shop/driftwear/internal/models"

	"gorm.io/gorm"
)

// NewsletterRepository 邮件订阅数据访问接口
type NewsletterRepository interface {
	GetByEmail(email string) (*models.NewsletterSubscriber, error)
	GetByID(id uint) (*models.NewsletterSubscriber, error)
	Upsert(subscriber *models.NewsletterSubscriber) error
	UpdateStatus(id uint, status, lastError string) error
	WithTx(tx *gorm.DB) NewsletterRepository
}

// GormNewsletterRepository GORM 实现
type GormNewsletterRepository struct {
	db *gorm.DB
}

// NewNewsletterRepository 创建邮件订阅仓库
func NewNewsletterRepository(db *gorm.DB) *GormNewsletterRepository {
	return &GormNewsletterRepository{db: db}
}

// WithTx 绑定事务
func (r *GormNewsletterRepository) WithTx(tx *gorm.DB) NewsletterRepository {
	if tx == nil {
		return r
	}
	return &GormNewsletterRepository{db: tx}
}

// GetByEmail 按邮箱获取订阅记录
func (r *GormNewsletterRepository) GetByEmail(email string) (*models.NewsletterSubscriber, error) {
	var subscriber models.NewsletterSubscriber
	err := r.db.Where("email = ?", email).First(&subscriber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &subscriber, nil
}

// GetByID 按主键获取订阅记录
func (r *GormNewsletterRepository) GetByID(id uint) (*models.NewsletterSubscriber, error) {
	var subscriber models.NewsletterSubscriber
	err := r.db.First(&subscriber, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &subscriber, nil
}

// Upsert 创建或复位订阅记录
func (r *GormNewsletterRepository) Upsert(subscriber *models.NewsletterSubscriber) error {
	if subscriber == nil {
		return nil
	}
	var existing models.NewsletterSubscriber
	err := r.db.Where("email = ?", subscriber.Email).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(subscriber).Error
	}
	if err != nil {
		return err
	}
	subscriber.ID = existing.ID
	return r.db.Model(&existing).Updates(map[string]interface{}{
		"status":     subscriber.Status,
		"source_tag": subscriber.SourceTag,
		"last_error": "",
		"updated_at": time.Now(),
	}).Error
}

// UpdateStatus 更新投递状态
func (r *GormNewsletterRepository) UpdateStatus(id uint, status, lastError string) error {
	return r.db.Model(&models.NewsletterSubscriber{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     status,
		"last_error": lastError,
	}).Error
}
