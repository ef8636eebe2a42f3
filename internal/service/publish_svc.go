package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ebay_dev_v1_202608/internal/model"
	"ebay_dev_v1_202608/pkg/ebay"
)

// ==================== 接口依赖 ====================

// LocationService 库存地点服务
type LocationService interface {
	EnsureLocationExists(ctx context.Context, seller *model.SellerAccount) (string, error)
	GetLocationByKey(ctx context.Context, seller *model.SellerAccount, key string) (string, error)
}

// PolicyService 默认政策服务
type PolicyService interface {
	GetDefaultPolicies(ctx context.Context, seller *model.SellerAccount) (*DefaultPolicies, error)
}

// InventoryAPI 远端库存/Offer 接口
type InventoryAPI interface {
	CreateOrReplaceInventoryItem(ctx context.Context, seller *model.SellerAccount, sku string, item *ebay.InventoryItem) error
	CreateOffer(ctx context.Context, seller *model.SellerAccount, req *ebay.CreateOfferReq) (string, error)
	PublishOffer(ctx context.Context, seller *model.SellerAccount, offerID string) (string, error)
	GetOffer(ctx context.Context, seller *model.SellerAccount, offerID string) (*ebay.GetOfferResp, error)
	GetListingFees(ctx context.Context, seller *model.SellerAccount, offerID string) (*ebay.ListingFeesResp, error)
}

// PublishRecorder 发布结果落库
type PublishRecorder interface {
	MarkPublishing(ctx context.Context, id int64) error
	MarkPublished(ctx context.Context, id int64, sku, offerID, ebayListingID, listingURL string) error
	MarkPublishFailed(ctx context.Context, id int64, sku, offerID, errMsg string) error
}

// ==================== 步骤类型 ====================

// 步骤名（固定六步，按序执行）
const (
	StepLocation  = "location"
	StepInventory = "inventory"
	StepPolicies  = "policies"
	StepOffer     = "offer"
	StepFees      = "fees"
	StepPublish   = "publish"
)

// StepNames 固定执行顺序
var StepNames = []string{StepLocation, StepInventory, StepPolicies, StepOffer, StepFees, StepPublish}

// 步骤状态
const (
	StepPending    = "pending"
	StepInProgress = "in_progress"
	StepComplete   = "complete"
	StepFailed     = "failed"
	StepSkipped    = "skipped"
)

// PublishStep 单个发布步骤的状态与产出
type PublishStep struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LocationKey string `json:"location_key,omitempty"`
	SKU         string `json:"sku,omitempty"`
	OfferID     string `json:"offer_id,omitempty"`
	ListingID   string `json:"listing_id,omitempty"`
	FeeTotal    string `json:"fee_total,omitempty"`
	Error       string `json:"error,omitempty"`
}

// PublishResult 一次发布尝试的完整结果
// 失败时步骤数组仍然完整返回，调用方可以精确展示进行到了哪一步
type PublishResult struct {
	Success     bool          `json:"success"`
	Steps       []PublishStep `json:"steps"`
	SKU         string        `json:"sku,omitempty"`
	OfferID     string        `json:"offer_id,omitempty"`
	ListingID   string        `json:"listing_id,omitempty"`
	ListingURL  string        `json:"listing_url,omitempty"`
	TraceID     string        `json:"trace_id"`
	AttemptedAt time.Time     `json:"attempted_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Warnings    []string      `json:"warnings,omitempty"`
	Error       *PublishError `json:"error,omitempty"`
}

// ListingSKU 由商品 ID 推导确定性 SKU
// 同一商品重复发布引用同一个远端库存项
func ListingSKU(listingID int64) string {
	return fmt.Sprintf("eby-item-%d", listingID)
}

// ==================== 发布服务 ====================

// PublishService 六步发布流水线编排
// 每次发布尝试内步骤严格串行；同一商品的并发发布被拒绝
// 不自动重试，不回滚已创建的远端资源（Sell API 没有多资源事务）
type PublishService struct {
	location  LocationService
	policy    PolicyService
	inventory InventoryAPI
	validator *ValidatorService
	recorder  PublishRecorder
	fetchFees bool
	logger    *zap.Logger

	mu       sync.Mutex
	inflight map[int64]struct{}
}

// NewPublishService 创建发布服务
func NewPublishService(
	location LocationService,
	policy PolicyService,
	inventory InventoryAPI,
	validator *ValidatorService,
	recorder PublishRecorder,
	fetchFees bool,
	logger *zap.Logger,
) *PublishService {
	return &PublishService{
		location:  location,
		policy:    policy,
		inventory: inventory,
		validator: validator,
		recorder:  recorder,
		fetchFees: fetchFees,
		logger:    logger,
		inflight:  make(map[int64]struct{}),
	}
}

// Publish 执行一次完整发布尝试
// 任何内部 panic 都会被兜住，以 PUBLISH_ERROR 返回，不向外抛
func (s *PublishService) Publish(ctx context.Context, seller *model.SellerAccount, listing *model.Listing, policies *PolicySet) (result *PublishResult) {
	result = &PublishResult{
		Steps:       newSteps(),
		TraceID:     uuid.New().String(),
		AttemptedAt: time.Now(),
	}
	log := s.logger.With(
		zap.String("trace_id", result.TraceID),
		zap.Int64("listing_id", listing.ID),
	)

	// 并发保护在最前面：被拒绝的尝试不做任何落库
	if !s.acquire(listing.ID) {
		result.Error = NewPublishError(ErrPublishError, "该商品已有发布任务进行中")
		return result
	}
	defer s.release(listing.ID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("发布流水线 panic", zap.Any("panic", r))
			result.Success = false
			result.Error = NewPublishError(ErrPublishError, fmt.Sprintf("发布时发生未知错误: %v", r))
		}
		s.record(ctx, listing.ID, result)
	}()

	// 授权前置检查，不进入任何步骤
	if seller == nil || !seller.IsConnected() {
		result.Error = NewPublishError(ErrEbayNotConnected, "eBay 账号未连接")
		return result
	}
	if seller.NeedsReauth() {
		result.Error = NewPublishError(ErrEbayReauthRequired, "eBay 授权已过期，请重新连接")
		return result
	}

	// 发布前校验：本地 + 分类远程检查，失败不进入步骤 1
	validation, err := s.validator.Validate(ctx, seller, listing, policies)
	if err != nil {
		log.Warn("发布前校验远程调用失败", zap.Error(err))
		result.Error = s.taxonomize(ErrPublishError, err, "")
		return result
	}
	if !validation.Valid {
		result.Error = validationPublishError(validation)
		return result
	}

	// 步骤 1: 库存地点
	step := s.begin(result, 0)
	locationKey, perr := s.runLocation(ctx, seller)
	if perr != nil {
		s.fail(log, result, step, perr)
		return result
	}
	step.LocationKey = locationKey
	step.Status = StepComplete

	// 步骤 2: 库存项（按确定性 SKU 幂等创建/替换）
	step = s.begin(result, 1)
	sku := ListingSKU(listing.ID)
	if err := s.inventory.CreateOrReplaceInventoryItem(ctx, seller, sku, buildInventoryItem(listing)); err != nil {
		s.fail(log, result, step, s.taxonomize(ErrInventoryItemFailed, err, "创建库存项失败"))
		return result
	}
	step.SKU = sku
	result.SKU = sku
	step.Status = StepComplete

	// 步骤 3: 政策
	step = s.begin(result, 2)
	resolved, perr := s.runPolicies(ctx, seller, policies)
	if perr != nil {
		s.fail(log, result, step, perr)
		return result
	}
	step.Status = StepComplete

	// 步骤 4: 创建 Offer
	step = s.begin(result, 3)
	if locationKey == "" {
		// 本地断言，绝不静默漏传地点
		s.fail(log, result, step, NewPublishError(ErrLocationKeyMissing, "库存地点 Key 缺失"))
		return result
	}
	offerID, err := s.inventory.CreateOffer(ctx, seller, buildOfferReq(listing, seller.MarketplaceID, sku, locationKey, resolved))
	if err != nil {
		s.fail(log, result, step, s.taxonomize(ErrOfferCreateFailed, err, "创建 Offer 失败"))
		return result
	}
	step.OfferID = offerID
	result.OfferID = offerID
	step.Status = StepComplete

	// 步骤 5: 费用预估（可选，失败不拦截发布）
	step = s.begin(result, 4)
	if !s.fetchFees {
		step.Status = StepSkipped
	} else if fees, err := s.inventory.GetListingFees(ctx, seller, offerID); err != nil {
		log.Warn("费用预估失败，跳过", zap.Error(err))
		step.Status = StepSkipped
		result.Warnings = append(result.Warnings, "费用预估失败: "+err.Error())
	} else {
		step.FeeTotal = sumFees(fees)
		step.Status = StepComplete
	}

	// 步骤 6: 发布
	step = s.begin(result, 5)
	ebayListingID, err := s.inventory.PublishOffer(ctx, seller, offerID)
	if err != nil {
		s.fail(log, result, step, s.taxonomize(ErrOfferPublishFailed, err, "发布 Offer 失败"))
		return result
	}
	step.ListingID = ebayListingID
	step.Status = StepComplete

	now := time.Now()
	result.Success = true
	result.ListingID = ebayListingID
	result.ListingURL = "https://www.ebay.com/itm/" + ebayListingID
	result.CompletedAt = &now
	log.Info("发布成功",
		zap.String("sku", sku),
		zap.String("offer_id", offerID),
		zap.String("ebay_listing_id", ebayListingID),
	)
	return result
}

// ==================== 步骤实现 ====================

func newSteps() []PublishStep {
	steps := make([]PublishStep, len(StepNames))
	for i, name := range StepNames {
		steps[i] = PublishStep{Name: name, Status: StepPending}
	}
	return steps
}

func (s *PublishService) begin(result *PublishResult, idx int) *PublishStep {
	step := &result.Steps[idx]
	step.Status = StepInProgress
	return step
}

func (s *PublishService) fail(log *zap.Logger, result *PublishResult, step *PublishStep, perr *PublishError) {
	step.Status = StepFailed
	step.Error = perr.Message
	result.Error = perr
	log.Warn("发布步骤失败",
		zap.String("step", step.Name),
		zap.String("code", string(perr.Code)),
		zap.String("message", perr.Message),
	)
}

// runLocation 步骤 1：确认地点存在且处于 ENABLED
// 地点不存在和存在但被禁用是两种错误，恢复动作不同
func (s *PublishService) runLocation(ctx context.Context, seller *model.SellerAccount) (string, *PublishError) {
	key, err := s.location.EnsureLocationExists(ctx, seller)
	if err != nil {
		if err == ErrNoLocation {
			return "", NewPublishError(ErrLocationRequired, "eBay 账号下没有库存地点，请先创建")
		}
		return "", s.taxonomize(ErrLocationRequired, err, "查询库存地点失败")
	}

	status, err := s.location.GetLocationByKey(ctx, seller, key)
	if err != nil {
		return "", s.taxonomize(ErrLocationRequired, err, "查询库存地点状态失败")
	}
	if status != ebay.LocationStatusEnabled {
		return "", NewPublishError(ErrLocationNotEnabled, "库存地点未启用，请在 eBay 后台启用")
	}
	return key, nil
}

// runPolicies 步骤 3：调用方没给齐三件套时回退到卖家默认政策
func (s *PublishService) runPolicies(ctx context.Context, seller *model.SellerAccount, supplied *PolicySet) (*PolicySet, *PublishError) {
	if supplied != nil && supplied.Complete() {
		return supplied, nil
	}

	defaults, err := s.policy.GetDefaultPolicies(ctx, seller)
	if err != nil {
		return nil, s.taxonomize(ErrPoliciesMissing, err, "拉取默认政策失败")
	}

	resolved := &PolicySet{
		FulfillmentID: defaults.FulfillmentID,
		PaymentID:     defaults.PaymentID,
		ReturnID:      defaults.ReturnID,
	}
	if !resolved.Complete() {
		perr := NewPublishError(ErrPoliciesMissing,
			"缺少默认政策: "+strings.Join(resolved.MissingNames(), ", "))
		perr.Details = &PublishErrorDetails{MissingPolicies: resolved.MissingNames()}
		return nil, perr
	}
	return resolved, nil
}

// record 发布结果落库
func (s *PublishService) record(ctx context.Context, listingID int64, result *PublishResult) {
	if s.recorder == nil {
		return
	}
	var err error
	if result.Success {
		err = s.recorder.MarkPublished(ctx, listingID, result.SKU, result.OfferID, result.ListingID, result.ListingURL)
	} else {
		msg := ""
		if result.Error != nil {
			msg = string(result.Error.Code) + ": " + result.Error.Message
		}
		err = s.recorder.MarkPublishFailed(ctx, listingID, result.SKU, result.OfferID, msg)
	}
	if err != nil {
		s.logger.Error("发布结果落库失败", zap.Int64("listing_id", listingID), zap.Error(err))
	}
}

// ==================== 并发保护 ====================

func (s *PublishService) acquire(listingID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[listingID]; busy {
		return false
	}
	s.inflight[listingID] = struct{}{}
	return true
}

func (s *PublishService) release(listingID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, listingID)
}

// ==================== 错误归类 ====================

// taxonomize 把远端/网络错误归入封闭错误码集合
// 401 统一视为需要重新授权；已知错误文案片段替换为可操作的提示，
// 原始信息仍然打进日志
func (s *PublishService) taxonomize(code ErrorCode, err error, prefix string) *PublishError {
	message := err.Error()
	if prefix != "" {
		message = prefix + ": " + message
	}

	if apiErr, ok := err.(*ebay.APIError); ok {
		if apiErr.StatusCode == 401 {
			return NewPublishError(ErrEbayReauthRequired, "eBay 授权已失效，请重新连接")
		}
		if strings.Contains(strings.ToLower(apiErr.Message), "shipping location required") {
			s.logger.Warn("远端返回地点缺失", zap.String("raw", apiErr.Message))
			perr := NewPublishError(ErrLocationRequired, "eBay 要求先配置发货地点，请创建并启用库存地点后重试")
			perr.Details = &PublishErrorDetails{RemoteErrorID: apiErr.RemoteErrorID}
			return perr
		}
		perr := NewPublishError(code, message)
		perr.Details = &PublishErrorDetails{RemoteErrorID: apiErr.RemoteErrorID}
		return perr
	}

	return NewPublishError(code, message)
}

// validationPublishError 把校验结论折叠成一个顶层错误
func validationPublishError(v *ValidationResult) *PublishError {
	code := ErrPublishError
	message := "发布前校验未通过"
	if len(v.MissingAspects) > 0 {
		code = ErrMissingItemSpecifics
		message = "缺少必填物品属性"
	} else if len(v.InvalidAspects) > 0 {
		code = ErrInvalidItemSpecificValue
		message = "物品属性取值不合法"
	} else if len(v.Errors) > 0 {
		code = v.Errors[0].Code
		message = v.Errors[0].Message
	}

	perr := NewPublishError(code, message)
	if len(v.MissingAspects) > 0 || len(v.InvalidAspects) > 0 {
		perr.Details = &PublishErrorDetails{
			MissingAspects: v.MissingAspects,
			InvalidAspects: v.InvalidAspects,
		}
	}
	return perr
}

// ==================== 载荷构造 ====================

// buildInventoryItem 构造库存项载荷，发送前再做一次本地兜底
// （截断超长字段、过滤空值），避免把坏数据打到远端
func buildInventoryItem(listing *model.Listing) *ebay.InventoryItem {
	title := truncateRunes(strings.TrimSpace(listing.Title), MaxTitleLen)
	desc := truncateRunes(strings.TrimSpace(listing.Description), MaxDescriptionLen)

	images := make([]string, 0, len(listing.ImageURLs))
	for _, u := range listing.ImageURLs {
		if strings.TrimSpace(u) != "" {
			images = append(images, u)
		}
	}

	aspects := make(map[string][]string, len(listing.ItemSpecifics))
	for name, value := range listing.ItemSpecifics {
		if strings.TrimSpace(value) == "" {
			continue
		}
		aspects[name] = []string{value}
	}

	condition, _ := ConditionEnum(listing.ConditionID)

	quantity := listing.Quantity
	if quantity < 0 {
		quantity = 0
	}

	item := &ebay.InventoryItem{
		Condition:            condition,
		ConditionDescription: listing.ConditionNote,
	}
	item.Product.Title = title
	item.Product.Description = desc
	item.Product.ImageUrls = images
	item.Product.Aspects = aspects
	item.Product.Brand = listing.ItemSpecifics["Brand"]
	item.Product.MPN = listing.ItemSpecifics["MPN"]
	item.Availability.ShipToLocationAvailability.Quantity = quantity
	return item
}

// truncateRunes 按字符截断，字节截断会把多字节字符切坏
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// buildOfferReq 构造创建 Offer 载荷
func buildOfferReq(listing *model.Listing, marketplaceID, sku, locationKey string, policies *PolicySet) *ebay.CreateOfferReq {
	currency := listing.CurrencyCode
	if currency == "" {
		currency = "USD"
	}
	if marketplaceID == "" {
		marketplaceID = "EBAY_US"
	}

	req := &ebay.CreateOfferReq{
		SKU:                 sku,
		MarketplaceID:       marketplaceID,
		Format:              "FIXED_PRICE",
		AvailableQuantity:   listing.Quantity,
		CategoryID:          listing.CategoryID,
		ListingDescription:  listing.Description,
		MerchantLocationKey: locationKey,
	}
	req.PricingSummary.Price = ebay.Money{
		Value:    fmt.Sprintf("%.2f", listing.GetPrice()),
		Currency: currency,
	}
	req.ListingPolicies.FulfillmentPolicyID = policies.FulfillmentID
	req.ListingPolicies.PaymentPolicyID = policies.PaymentID
	req.ListingPolicies.ReturnPolicyID = policies.ReturnID
	return req
}

// sumFees 汇总费用预估的总额展示串
func sumFees(resp *ebay.ListingFeesResp) string {
	var total float64
	currency := ""
	for _, summary := range resp.FeeSummaries {
		for _, fee := range summary.Fees {
			var v float64
			fmt.Sscanf(fee.Amount.Value, "%f", &v)
			total += v
			if currency == "" {
				currency = fee.Amount.Currency
			}
		}
	}
	if currency == "" {
		return ""
	}
	return fmt.Sprintf("%.2f %s", total, currency)
}
