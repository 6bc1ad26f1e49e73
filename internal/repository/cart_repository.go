package repository

import (
	"errors"
	"time"

	"github.com/driftwear-shop/driftwear/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车快照数据访问接口
type CartRepository interface {
	GetByToken(token string) (*models.Cart, error)
	GetByCheckoutSession(sessionID string) (*models.Cart, error)
	SaveSnapshot(token, itemsJSON string) error
	SetCheckoutSession(token, sessionID, status string) error
	ClearCheckoutSession(token, finalStatus string) error
	DeleteByToken(token string) error
	WithTx(tx *gorm.DB) CartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// GetByToken 按令牌读取购物车快照
func (r *GormCartRepository) GetByToken(token string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Where("token = ?", token).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetByCheckoutSession 按结算会话 ID 反查购物车
func (r *GormCartRepository) GetByCheckoutSession(sessionID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Where("checkout_session = ?", sessionID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// SaveSnapshot 整值覆盖写入购物车快照（后写覆盖先写，不做合并）
func (r *GormCartRepository) SaveSnapshot(token, itemsJSON string) error {
	var existing models.Cart
	err := r.db.Where("token = ?", token).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(&models.Cart{
			Token:     token,
			ItemsJSON: itemsJSON,
		}).Error
	}
	if err != nil {
		return err
	}
	return r.db.Model(&existing).Updates(map[string]interface{}{
		"items_json": itemsJSON,
		"updated_at": time.Now(),
	}).Error
}

// SetCheckoutSession 记录进行中的结算会话
func (r *GormCartRepository) SetCheckoutSession(token, sessionID, status string) error {
	return r.db.Model(&models.Cart{}).Where("token = ?", token).Updates(map[string]interface{}{
		"checkout_session": sessionID,
		"checkout_status":  status,
	}).Error
}

// ClearCheckoutSession 清除结算会话关联并记录最终状态
func (r *GormCartRepository) ClearCheckoutSession(token, finalStatus string) error {
	return r.db.Model(&models.Cart{}).Where("token = ?", token).Updates(map[string]interface{}{
		"checkout_session": "",
		"checkout_status":  finalStatus,
	}).Error
}

// DeleteByToken 删除购物车
func (r *GormCartRepository) DeleteByToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&models.Cart{}).Error
}
