package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"ebay_dev_v1_202608/internal/model"
)

// ==================== 仓储接口 ====================

// SellerRepository 卖家账号仓储接口
type SellerRepository interface {
	Create(ctx context.Context, seller *model.SellerAccount) error
	GetByID(ctx context.Context, id int64) (*model.SellerAccount, error)
	Update(ctx context.Context, seller *model.SellerAccount) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	ListAll(ctx context.Context) ([]model.SellerAccount, error)

	// Token 保活相关
	FindTokenExpiring(ctx context.Context, before time.Time) ([]*model.SellerAccount, error)
	UpdateTokenStatus(ctx context.Context, id int64, status string) error
	UpdateLocationKey(ctx context.Context, id int64, key string) error
}

// ==================== 仓储实现 ====================

type sellerRepo struct {
	db *gorm.DB
}

// NewSellerRepository 创建卖家账号仓储
func NewSellerRepository(db *gorm.DB) SellerRepository {
	return &sellerRepo{db: db}
}

func (r *sellerRepo) Create(ctx context.Context, seller *model.SellerAccount) error {
	return r.db.WithContext(ctx).Create(seller).Error
}

func (r *sellerRepo) GetByID(ctx context.Context, id int64) (*model.SellerAccount, error) {
	var seller model.SellerAccount
	if err := r.db.WithContext(ctx).First(&seller, id).Error; err != nil {
		return nil, err
	}
	return &seller, nil
}

func (r *sellerRepo) Update(ctx context.Context, seller *model.SellerAccount) error {
	return r.db.WithContext(ctx).Save(seller).Error
}

func (r *sellerRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.SellerAccount{}).Where("id = ?", id).Updates(fields).Error
}

func (r *sellerRepo) ListAll(ctx context.Context) ([]model.SellerAccount, error) {
	var sellers []model.SellerAccount
	err := r.db.WithContext(ctx).Find(&sellers).Error
	return sellers, err
}

// FindTokenExpiring 查找访问令牌即将过期的账号
func (r *sellerRepo) FindTokenExpiring(ctx context.Context, before time.Time) ([]*model.SellerAccount, error) {
	var sellers []*model.SellerAccount
	err := r.db.WithContext(ctx).
		Where("access_expires_at < ? AND token_status = ?", before, model.TokenStatusOK).
		Find(&sellers).Error
	return sellers, err
}

// UpdateTokenStatus 更新令牌状态
func (r *sellerRepo) UpdateTokenStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.SellerAccount{}).
		Where("id = ?", id).
		Update("token_status", status).Error
}

// UpdateLocationKey 缓存卖家的库存地点 Key
func (r *sellerRepo) UpdateLocationKey(ctx context.Context, id int64, key string) error {
	return r.db.WithContext(ctx).
		Model(&model.SellerAccount{}).
		Where("id = ?", id).
		Update("merchant_location_key", key).Error
}
