package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"ebay_dev_v1_202608/internal/model"
	"ebay_dev_v1_202608/internal/repository"
	"ebay_dev_v1_202608/pkg/ebay"
)

// ==================== 商品服务 ====================

// ErrSellerNotFound 商品关联的卖家账号不存在
var ErrSellerNotFound = errors.New("卖家账号不存在")

// ListingService 商品生命周期：草稿 → 确认 → 发布
type ListingService struct {
	listingRepo repository.ListingRepository
	sellerRepo  repository.SellerRepository
	autofill    *AutofillService
	validator   *ValidatorService
	publisher   *PublishService
	metadata    CategoryMetadataService
	inventory   InventoryAPI
	logger      *zap.Logger
}

// NewListingService 创建商品服务
func NewListingService(
	listingRepo repository.ListingRepository,
	sellerRepo repository.SellerRepository,
	autofill *AutofillService,
	validator *ValidatorService,
	publisher *PublishService,
	metadata CategoryMetadataService,
	inventory InventoryAPI,
	logger *zap.Logger,
) *ListingService {
	return &ListingService{
		listingRepo: listingRepo,
		sellerRepo:  sellerRepo,
		autofill:    autofill,
		validator:   validator,
		publisher:   publisher,
		metadata:    metadata,
		inventory:   inventory,
		logger:      logger,
	}
}

// ==================== 基础 CRUD ====================

// Create 创建草稿
func (s *ListingService) Create(ctx context.Context, listing *model.Listing) error {
	listing.Status = model.ListingStatusDraft
	listing.SyncStatus = model.PublishSyncNone
	return s.listingRepo.Create(ctx, listing)
}

// Get 查询单个商品
func (s *ListingService) Get(ctx context.Context, id int64) (*model.Listing, error) {
	return s.listingRepo.GetByID(ctx, id)
}

// Update 更新草稿内容
func (s *ListingService) Update(ctx context.Context, listing *model.Listing) error {
	return s.listingRepo.Update(ctx, listing)
}

// Delete 删除商品
func (s *ListingService) Delete(ctx context.Context, id int64) error {
	return s.listingRepo.Delete(ctx, id)
}

// List 分页查询
func (s *ListingService) List(ctx context.Context, filter repository.ListingFilter) ([]model.Listing, int64, error) {
	return s.listingRepo.List(ctx, filter)
}

// Confirm 确认草稿，进入待发布队列
func (s *ListingService) Confirm(ctx context.Context, id int64) (*model.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := listing.CanConfirm(); err != nil {
		return nil, err
	}
	listing.MarkConfirmed()
	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// ==================== 属性补全与校验 ====================

// loadWithSeller 取商品及其卖家账号
func (s *ListingService) loadWithSeller(ctx context.Context, id int64) (*model.Listing, *model.SellerAccount, error) {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	seller, err := s.sellerRepo.GetByID(ctx, listing.SellerID)
	if err != nil {
		return nil, nil, ErrSellerNotFound
	}
	return listing, seller, nil
}

// Autofill 用 AI 补全商品缺失的必填属性并落库
// 补全失败时落库的就是原有属性，不报错
func (s *ListingService) Autofill(ctx context.Context, id int64, vision *VisionSignals) (*AutofillResult, error) {
	listing, seller, err := s.loadWithSeller(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.CategoryID == "" {
		return nil, errors.New("请先选择商品分类")
	}

	aspects, err := s.metadata.GetItemAspects(ctx, seller, listing.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("拉取分类属性定义失败: %w", err)
	}

	result := s.autofill.Autofill(ctx, &AutofillInput{
		Title:         listing.Title,
		Description:   listing.Description,
		Aspects:       aspects,
		ItemSpecifics: listing.ItemSpecifics,
		Vision:        vision,
	})

	if len(result.FilledByAI) > 0 {
		listing.ItemSpecifics = result.ItemSpecifics
		listing.AiFilled = result.FilledByAI
		if err := s.listingRepo.Update(ctx, listing); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Validate 执行发布前校验（不发布）
func (s *ListingService) Validate(ctx context.Context, id int64, policies *PolicySet) (*ValidationResult, error) {
	listing, seller, err := s.loadWithSeller(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.validator.Validate(ctx, seller, listing, policies)
}

// RemoteStatus 查询商品在 eBay 端的在售状态
// 只有创建过 Offer 的商品才有远端状态可查
func (s *ListingService) RemoteStatus(ctx context.Context, id int64) (*ebay.GetOfferResp, error) {
	listing, seller, err := s.loadWithSeller(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.OfferID == "" {
		return nil, errors.New("商品尚未创建 Offer，没有远端状态")
	}
	return s.inventory.GetOffer(ctx, seller, listing.OfferID)
}

// ==================== 发布 ====================

// Publish 执行一次发布尝试
// 调用方没传政策时使用商品上保存的三件套（可能为空，走默认政策兜底）
func (s *ListingService) Publish(ctx context.Context, id int64, policies *PolicySet) (*PublishResult, error) {
	listing, seller, err := s.loadWithSeller(ctx, id)
	if err != nil {
		return nil, err
	}

	if policies == nil {
		policies = &PolicySet{
			FulfillmentID: listing.FulfillmentPolicyID,
			PaymentID:     listing.PaymentPolicyID,
			ReturnID:      listing.ReturnPolicyID,
		}
	}

	result := s.publisher.Publish(ctx, seller, listing, policies)

	// 首次发现的地点 Key 缓存到账号，后续发布省一次地点查询
	if key := result.Steps[0].LocationKey; key != "" && seller.MerchantLocationKey == "" {
		if err := s.sellerRepo.UpdateLocationKey(ctx, seller.ID, key); err != nil {
			s.logger.Warn("缓存库存地点 Key 失败", zap.Int64("seller_id", seller.ID), zap.Error(err))
		}
	}

	return result, nil
}
