package repository

import (
	"context"

	"gorm.io/gorm"

	"ebay_dev_v1_202608/internal/model"
)

// ==================== 仓储接口 ====================

// ListingRepository 商品仓储接口
type ListingRepository interface {
	Create(ctx context.Context, listing *model.Listing) error
	GetByID(ctx context.Context, id int64) (*model.Listing, error)
	Update(ctx context.Context, listing *model.Listing) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ListingFilter) ([]model.Listing, int64, error)

	// 发布任务相关
	FindPendingPublish(ctx context.Context, limit int) ([]*model.Listing, error)
	MarkPublishing(ctx context.Context, id int64) error
	MarkPublished(ctx context.Context, id int64, sku, offerID, ebayListingID, listingURL string) error
	MarkPublishFailed(ctx context.Context, id int64, sku, offerID, errMsg string) error
}

// ==================== 过滤条件 ====================

// ListingFilter 商品查询条件
type ListingFilter struct {
	SellerID int64
	Status   string
	Page     int
	PageSize int
}

// ==================== 仓储实现 ====================

type listingRepo struct {
	db *gorm.DB
}

// NewListingRepository 创建商品仓储
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepo{db: db}
}

func (r *listingRepo) Create(ctx context.Context, listing *model.Listing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *listingRepo) GetByID(ctx context.Context, id int64) (*model.Listing, error) {
	var listing model.Listing
	if err := r.db.WithContext(ctx).First(&listing, id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepo) Update(ctx context.Context, listing *model.Listing) error {
	return r.db.WithContext(ctx).Save(listing).Error
}

func (r *listingRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Listing{}).Where("id = ?", id).Updates(fields).Error
}

func (r *listingRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Listing{}, id).Error
}

func (r *listingRepo) List(ctx context.Context, filter ListingFilter) ([]model.Listing, int64, error) {
	var listings []model.Listing
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Listing{})

	if filter.SellerID > 0 {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	offset := (filter.Page - 1) * filter.PageSize
	if err := query.Order("created_at DESC").Limit(filter.PageSize).Offset(offset).Find(&listings).Error; err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

// FindPendingPublish 查找待发布的商品
func (r *listingRepo) FindPendingPublish(ctx context.Context, limit int) ([]*model.Listing, error) {
	var listings []*model.Listing
	err := r.db.WithContext(ctx).
		Where("status = ? AND sync_status = ?", model.ListingStatusConfirmed, model.PublishSyncPending).
		Limit(limit).
		Find(&listings).Error
	return listings, err
}

// MarkPublishing 标记发布中（防止下一轮扫描重复拾取）
func (r *listingRepo) MarkPublishing(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Listing{}).
		Where("id = ?", id).
		Update("sync_status", model.PublishSyncNone).Error
}

// MarkPublished 标记发布成功
func (r *listingRepo) MarkPublished(ctx context.Context, id int64, sku, offerID, ebayListingID, listingURL string) error {
	return r.db.WithContext(ctx).
		Model(&model.Listing{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          model.ListingStatusPublished,
			"sync_status":     model.PublishSyncDone,
			"sku":             sku,
			"offer_id":        offerID,
			"ebay_listing_id": ebayListingID,
			"listing_url":     listingURL,
			"publish_error":   "",
		}).Error
}

// MarkPublishFailed 标记发布失败（保留已创建的部分产物，便于人工对账）
func (r *listingRepo) MarkPublishFailed(ctx context.Context, id int64, sku, offerID, errMsg string) error {
	updates := map[string]interface{}{
		"status":        model.ListingStatusFailed,
		"sync_status":   model.PublishSyncFailed,
		"publish_error": errMsg,
	}
	if sku != "" {
		updates["sku"] = sku
	}
	if offerID != "" {
		updates["offer_id"] = offerID
	}
	return r.db.WithContext(ctx).
		Model(&model.Listing{}).
		Where("id = ?", id).
		Updates(updates).Error
}
