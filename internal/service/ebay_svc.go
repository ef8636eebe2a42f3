package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"ebay_dev_v1_202608/internal/model"
	"ebay_dev_v1_202608/pkg/ebay"
	"ebay_dev_v1_202608/pkg/utils"
)

// ==================== 服务实现 ====================

// ErrNoLocation 卖家账号下没有任何库存地点
var ErrNoLocation = errors.New("卖家没有任何库存地点")

// DefaultPolicies 卖家的默认政策三件套（任一项可能为空）
type DefaultPolicies struct {
	FulfillmentID string
	PaymentID     string
	ReturnID      string
}

// EbayService eBay Sell API 客户端
// 实现发布流水线与校验器依赖的 LocationService / PolicyService /
// InventoryAPI / CategoryMetadataService 接口
type EbayService struct {
	client        *resty.Client
	marketplaceID string
	logger        *zap.Logger

	// 分类元数据缓存（属性词表、允许成色），与卖家无关
	metaCache *utils.TTLCache
}

// 分类元数据变化极少，缓存 10 分钟足够
const metaCacheTTL = 10 * time.Minute

var (
	_ LocationService         = (*EbayService)(nil)
	_ PolicyService           = (*EbayService)(nil)
	_ InventoryAPI            = (*EbayService)(nil)
	_ CategoryMetadataService = (*EbayService)(nil)
)

// NewEbayService 创建 eBay API 客户端
func NewEbayService(client *resty.Client, marketplaceID string, logger *zap.Logger) *EbayService {
	if marketplaceID == "" {
		marketplaceID = "EBAY_US"
	}
	return &EbayService{
		client:        client,
		marketplaceID: marketplaceID,
		logger:        logger,
		metaCache:     utils.NewTTLCache(),
	}
}

// req 构造带鉴权的请求
func (s *EbayService) req(ctx context.Context, seller *model.SellerAccount) *resty.Request {
	return s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+seller.AccessToken)
}

// ==================== 库存地点 ====================

// EnsureLocationExists 确认卖家有可用库存地点，返回地点 Key
// 优先使用账号上缓存的 Key；没有缓存时拉取地点列表，优先取 ENABLED 的
func (s *EbayService) EnsureLocationExists(ctx context.Context, seller *model.SellerAccount) (string, error) {
	if seller.MerchantLocationKey != "" {
		return seller.MerchantLocationKey, nil
	}

	var res ebay.LocationListResp
	var errResp ebay.ErrorResp

	resp, err := s.req(ctx, seller).
		SetResult(&res).
		SetError(&errResp).
		Get("/sell/inventory/v1/location")
	if err != nil {
		return "", fmt.Errorf("网络请求失败: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", ebay.NewAPIError(resp.StatusCode(), &errResp)
	}

	for _, loc := range res.Locations {
		if loc.MerchantLocationStatus == ebay.LocationStatusEnabled {
			return loc.MerchantLocationKey, nil
		}
	}
	if len(res.Locations) > 0 {
		// 存在但未启用，状态判断交给调用方
		return res.Locations[0].MerchantLocationKey, nil
	}

	return "", ErrNoLocation
}

// GetLocationByKey 查询地点状态（ENABLED / DISABLED）
func (s *EbayService) GetLocationByKey(ctx context.Context, seller *model.SellerAccount, key string) (string, error) {
	var res ebay.InventoryLocation
	var errResp ebay.ErrorResp

	resp, err := s.req(ctx, seller).
		SetResult(&res).
		SetError(&errResp).
		Get("/sell/inventory/v1/location/" + key)
	if err != nil {
		return "", fmt.Errorf("网络请求失败: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", ebay.NewAPIError(resp.StatusCode(), &errResp)
	}

	return res.MerchantLocationStatus, nil
}

// ==================== 默认政策 ====================

// GetDefaultPolicies 拉取卖家站点下的默认政策三件套
// 某一类政策不存在时对应字段留空，由流水线判定 POLICIES_MISSING
func (s *EbayService) GetDefaultPolicies(ctx context.Context, seller *model.SellerAccount) (*DefaultPolicies, error) {
	result := &DefaultPolicies{}

	var fulfillment ebay.FulfillmentPolicyListResp
	if err := s.getPolicyList(ctx, seller, "/sell/account/v1/fulfillment_policy", &fulfillment); err != nil {
		return nil, err
	}
	if len(fulfillment.FulfillmentPolicies) > 0 {
		result.FulfillmentID = fulfillment.FulfillmentPolicies[0].FulfillmentPolicyID
	}

	var payment ebay.PaymentPolicyListResp
	if err := s.getPolicyList(ctx, seller, "/sell/account/v1/payment_policy", &payment); err != nil {
		return nil, err
	}
	if len(payment.PaymentPolicies) > 0 {
		result.PaymentID = payment.PaymentPolicies[0].PaymentPolicyID
	}

	var ret ebay.ReturnPolicyListResp
	if err := s.getPolicyList(ctx, seller, "/sell/account/v1/return_policy", &ret); err != nil {
		return nil, err
	}
	if len(ret.ReturnPolicies) > 0 {
		result.ReturnID = ret.ReturnPolicies[0].ReturnPolicyID
	}

	return result, nil
}

func (s *EbayService) getPolicyList(ctx context.Context, seller *model.SellerAccount, path string, out interface{}) error {
	var errResp ebay.ErrorResp

	resp, err := s.req(ctx, seller).
		SetQueryParam("marketplace_id", s.marketplaceID).
		SetResult(out).
		SetError(&errResp).
		Get(path)
	if err != nil {
		return fmt.Errorf("网络请求失败: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return ebay.NewAPIError(resp.StatusCode(), &errResp)
	}
	return nil
}

// ==================== 库存与 Offer ====================

// CreateOrReplaceInventoryItem 幂等创建/替换库存项（按 SKU）
// 200 或 204 视为成功
func (s *EbayService) CreateOrReplaceInventoryItem(ctx context.Context, seller *model.SellerAccount, sku string, item *ebay.InventoryItem) error {
	var errResp ebay.ErrorResp

	resp, err := s.req(ctx, seller).
		SetHeader("Content-Language", "en-US").
		SetBody(item).
		SetError(&errResp).
		Put("/sell/inventory/v1/inventory_item/" + sku)
	if err != nil {
		return fmt.Errorf("网络请求失败: %w", err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusNoContent {
		return ebay.NewAPIError(resp.StatusCode(), &errResp)
	}
	return nil
}

// CreateOffer 创建 Offer，返回 offerId
func (s *EbayService) CreateOffer(ctx context.Context, seller *model.SellerAccount, req *ebay.CreateOfferReq) (string, error) {
	var res ebay.CreateOfferResp
	var errResp ebay.ErrorResp

	resp, err := s.req(ctx, seller).
		SetHeader("Content-Language", "en-US").
		SetBody(req).
		SetResult(&res).
		SetError(&errResp).
		Post("/sell/inventory/v1/offer")
	if err != nil {
		return "", fmt.Errorf("网络请求失败: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated && resp.StatusCode() != http.StatusOK {
		return "", ebay.NewAPIError(resp.StatusCode(), &errResp)
	}
	return res.OfferID, nil
}

// PublishOffer 发布 Offer，返回 eBay listingId
func (s *EbayService) PublishOffer(ctx context.Context, seller *model.SellerAccount, offerID string) (string, error) {
	var res ebay.PublishOfferResp
	var errResp ebay.ErrorResp

	resp, err := s.req(ctx, seller).
		SetResult(&res).
		SetError(&errResp).
		Post("/sell/inventory/v1/offer/" + offerID + "/publish")
	if err != nil {
		return "", fmt.Errorf("网络请求失败: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", ebay.NewAPIError(resp.StatusCode(), &errResp)
	}
	return res.ListingID, nil
}

// GetOffer 查询 Offer 详情，发布后取在售状态
func (s *EbayService) GetOffer(ctx context.Context, seller *model.SellerAccount, offerID string) (*ebay.GetOfferResp, error) {
	var res ebay.GetOfferResp
	var errResp ebay.ErrorResp

	resp, err := s.req(ctx, seller).
		SetResult(&res).
		SetError(&errResp).
		Get("/sell/inventory/v1/offer/" + offerID)
	if err != nil {
		return nil, fmt.Errorf("网络请求失败: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, ebay.NewAPIError(resp.StatusCode(), &errResp)
	}
	return &res, nil
}

// GetListingFees 费用预估（可选步骤）
func (s *EbayService) GetListingFees(ctx context.Context, seller *model.SellerAccount, offerID string) (*ebay.ListingFeesResp, error) {
	var res ebay.ListingFeesResp
	var errResp ebay.ErrorResp

	resp, err := s.req(ctx, seller).
		SetBody(&ebay.ListingFeesReq{Offers: []ebay.OfferKey{{OfferID: offerID}}}).
		SetResult(&res).
		SetError(&errResp).
		Post("/sell/inventory/v1/offer/get_listing_fees")
	if err != nil {
		return nil, fmt.Errorf("网络请求失败: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, ebay.NewAPIError(resp.StatusCode(), &errResp)
	}
	return &res, nil
}

// ==================== 分类元数据 ====================

// GetItemAspects 拉取分类的物品属性定义（带缓存）
func (s *EbayService) GetItemAspects(ctx context.Context, seller *model.SellerAccount, categoryID string) ([]AspectDefinition, error) {
	cacheKey := "aspects:" + categoryID
	if cached, ok := s.metaCache.Get(cacheKey); ok {
		return cached.([]AspectDefinition), nil
	}

	var res ebay.ItemAspectsResp
	var errResp ebay.ErrorResp

	resp, err := s.req(ctx, seller).
		SetQueryParam("category_id", categoryID).
		SetResult(&res).
		SetError(&errResp).
		Get("/commerce/taxonomy/v1/category_tree/0/get_item_aspects_for_category")
	if err != nil {
		return nil, fmt.Errorf("网络请求失败: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, ebay.NewAPIError(resp.StatusCode(), &errResp)
	}

	aspects := make([]AspectDefinition, 0, len(res.Aspects))
	for _, a := range res.Aspects {
		def := AspectDefinition{
			Name:      a.LocalizedAspectName,
			Required:  a.AspectConstraint.AspectRequired,
			Mode:      a.AspectConstraint.AspectMode,
			MaxLength: a.AspectConstraint.AspectMaxLen,
		}
		for _, v := range a.AspectValues {
			def.AllowedValues = append(def.AllowedValues, v.LocalizedValue)
		}
		aspects = append(aspects, def)
	}
	s.metaCache.Set(cacheKey, aspects, metaCacheTTL)
	return aspects, nil
}

// GetAllowedConditions 拉取分类允许的成色枚举列表（带缓存）
func (s *EbayService) GetAllowedConditions(ctx context.Context, seller *model.SellerAccount, categoryID string) ([]string, error) {
	cacheKey := "conditions:" + categoryID
	if cached, ok := s.metaCache.Get(cacheKey); ok {
		return cached.([]string), nil
	}

	var res ebay.ConditionPoliciesResp
	var errResp ebay.ErrorResp

	resp, err := s.req(ctx, seller).
		SetQueryParam("filter", "categoryIds:{"+categoryID+"}").
		SetResult(&res).
		SetError(&errResp).
		Get("/sell/metadata/v1/marketplace/" + s.marketplaceID + "/get_item_condition_policies")
	if err != nil {
		return nil, fmt.Errorf("网络请求失败: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, ebay.NewAPIError(resp.StatusCode(), &errResp)
	}

	var allowed []string
	for _, policy := range res.ItemConditionPolicies {
		if policy.CategoryID != categoryID {
			continue
		}
		for _, c := range policy.ItemConditions {
			if enum, ok := conditionEnumByNumericID[c.ConditionID]; ok {
				allowed = append(allowed, enum)
			}
		}
	}
	s.metaCache.Set(cacheKey, allowed, metaCacheTTL)
	return allowed, nil
}
