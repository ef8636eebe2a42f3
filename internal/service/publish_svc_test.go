package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"

	"ebay_dev_v1_202608/internal/model"
	"ebay_dev_v1_202608/pkg/ebay"
)

// ==================== 测试替身 ====================

type mockLocation struct {
	ensureFn func(ctx context.Context, seller *model.SellerAccount) (string, error)
	statusFn func(ctx context.Context, seller *model.SellerAccount, key string) (string, error)
}

func (m *mockLocation) EnsureLocationExists(ctx context.Context, seller *model.SellerAccount) (string, error) {
	if m.ensureFn != nil {
		return m.ensureFn(ctx, seller)
	}
	return "loc-1", nil
}

func (m *mockLocation) GetLocationByKey(ctx context.Context, seller *model.SellerAccount, key string) (string, error) {
	if m.statusFn != nil {
		return m.statusFn(ctx, seller, key)
	}
	return ebay.LocationStatusEnabled, nil
}

type mockPolicy struct {
	defaultsFn func(ctx context.Context, seller *model.SellerAccount) (*DefaultPolicies, error)
}

func (m *mockPolicy) GetDefaultPolicies(ctx context.Context, seller *model.SellerAccount) (*DefaultPolicies, error) {
	if m.defaultsFn != nil {
		return m.defaultsFn(ctx, seller)
	}
	return &DefaultPolicies{FulfillmentID: "f-1", PaymentID: "p-1", ReturnID: "r-1"}, nil
}

type mockInventory struct {
	putFn      func(ctx context.Context, seller *model.SellerAccount, sku string, item *ebay.InventoryItem) error
	offerFn    func(ctx context.Context, seller *model.SellerAccount, req *ebay.CreateOfferReq) (string, error)
	publishFn  func(ctx context.Context, seller *model.SellerAccount, offerID string) (string, error)
	getOfferFn func(ctx context.Context, seller *model.SellerAccount, offerID string) (*ebay.GetOfferResp, error)
	feesFn     func(ctx context.Context, seller *model.SellerAccount, offerID string) (*ebay.ListingFeesResp, error)
}

func (m *mockInventory) CreateOrReplaceInventoryItem(ctx context.Context, seller *model.SellerAccount, sku string, item *ebay.InventoryItem) error {
	if m.putFn != nil {
		return m.putFn(ctx, seller, sku, item)
	}
	return nil
}

func (m *mockInventory) CreateOffer(ctx context.Context, seller *model.SellerAccount, req *ebay.CreateOfferReq) (string, error) {
	if m.offerFn != nil {
		return m.offerFn(ctx, seller, req)
	}
	return "offer-1", nil
}

func (m *mockInventory) PublishOffer(ctx context.Context, seller *model.SellerAccount, offerID string) (string, error) {
	if m.publishFn != nil {
		return m.publishFn(ctx, seller, offerID)
	}
	return "110123456789", nil
}

func (m *mockInventory) GetOffer(ctx context.Context, seller *model.SellerAccount, offerID string) (*ebay.GetOfferResp, error) {
	if m.getOfferFn != nil {
		return m.getOfferFn(ctx, seller, offerID)
	}
	return &ebay.GetOfferResp{OfferID: offerID, Status: ebay.OfferStatusPublished}, nil
}

func (m *mockInventory) GetListingFees(ctx context.Context, seller *model.SellerAccount, offerID string) (*ebay.ListingFeesResp, error) {
	if m.feesFn != nil {
		return m.feesFn(ctx, seller, offerID)
	}
	return &ebay.ListingFeesResp{}, nil
}

type publishFixture struct {
	location  *mockLocation
	policy    *mockPolicy
	inventory *mockInventory
	fetchFees bool
}

func newPublishTest(f publishFixture) *PublishService {
	if f.location == nil {
		f.location = &mockLocation{}
	}
	if f.policy == nil {
		f.policy = &mockPolicy{}
	}
	if f.inventory == nil {
		f.inventory = &mockInventory{}
	}
	validator := NewValidatorService(&mockMetadata{}, zap.NewNop())
	return NewPublishService(f.location, f.policy, f.inventory, validator, nil, f.fetchFees, zap.NewNop())
}

func assertStepStatuses(t *testing.T, steps []PublishStep, want [6]string) {
	t.Helper()
	for i, status := range want {
		if steps[i].Status != status {
			t.Errorf("steps[%d](%s) 状态 %s, 期望 %s", i, steps[i].Name, steps[i].Status, status)
		}
	}
}

// ==================== 用例 ====================

func TestListingSKU_Deterministic(t *testing.T) {
	if ListingSKU(42) != ListingSKU(42) {
		t.Error("同一商品 SKU 必须稳定")
	}
	if ListingSKU(1) == ListingSKU(2) {
		t.Error("不同商品 SKU 必须不同")
	}
}

func TestPublish_Success_FeesDisabled(t *testing.T) {
	svc := newPublishTest(publishFixture{})
	listing := validListing()
	listing.ID = 7

	result := svc.Publish(context.Background(), testSeller(), listing, nil)

	if !result.Success {
		t.Fatalf("期望成功, error=%+v", result.Error)
	}
	// fees 关闭时为 skipped，其余全部 complete
	assertStepStatuses(t, result.Steps, [6]string{
		StepComplete, StepComplete, StepComplete, StepComplete, StepSkipped, StepComplete,
	})
	if result.SKU != ListingSKU(7) {
		t.Errorf("SKU 不符: %s", result.SKU)
	}
	if result.ListingURL != "https://www.ebay.com/itm/110123456789" {
		t.Errorf("listing_url 不符: %s", result.ListingURL)
	}
	if result.CompletedAt == nil {
		t.Error("成功时应有完成时间")
	}
	if result.TraceID == "" {
		t.Error("trace_id 不应为空")
	}
}

func TestPublish_LocationDisabled(t *testing.T) {
	svc := newPublishTest(publishFixture{
		location: &mockLocation{
			statusFn: func(ctx context.Context, seller *model.SellerAccount, key string) (string, error) {
				return ebay.LocationStatusDisabled, nil
			},
		},
	})

	result := svc.Publish(context.Background(), testSeller(), validListing(), nil)

	if result.Success {
		t.Fatal("地点被禁用时不应成功")
	}
	if result.Error.Code != ErrLocationNotEnabled {
		t.Errorf("错误码不符: %s", result.Error.Code)
	}
	if result.Error.SuggestedAction != ActionCreateLocation {
		t.Errorf("建议动作不符: %s", result.Error.SuggestedAction)
	}
	// 第一步失败，后续全部保持 pending
	assertStepStatuses(t, result.Steps, [6]string{
		StepFailed, StepPending, StepPending, StepPending, StepPending, StepPending,
	})
}

func TestPublish_NoLocationAtAll(t *testing.T) {
	svc := newPublishTest(publishFixture{
		location: &mockLocation{
			ensureFn: func(ctx context.Context, seller *model.SellerAccount) (string, error) {
				return "", ErrNoLocation
			},
		},
	})

	result := svc.Publish(context.Background(), testSeller(), validListing(), nil)
	// 没有地点和地点未启用是不同错误，恢复动作不同
	if result.Error == nil || result.Error.Code != ErrLocationRequired {
		t.Errorf("期望 LOCATION_REQUIRED, got %+v", result.Error)
	}
}

func TestPublish_InventoryFailureKeepsLaterStepsPending(t *testing.T) {
	svc := newPublishTest(publishFixture{
		inventory: &mockInventory{
			putFn: func(ctx context.Context, seller *model.SellerAccount, sku string, item *ebay.InventoryItem) error {
				return ebay.NewAPIError(400, &ebay.ErrorResp{
					Errors: []ebay.ErrorItem{{ErrorID: 25002, Message: "Invalid attribute"}},
				})
			},
		},
	})

	result := svc.Publish(context.Background(), testSeller(), validListing(), nil)

	if result.Error.Code != ErrInventoryItemFailed {
		t.Errorf("错误码不符: %s", result.Error.Code)
	}
	if result.Error.Details == nil || result.Error.Details.RemoteErrorID != 25002 {
		t.Errorf("应携带远端错误 ID, details=%+v", result.Error.Details)
	}
	assertStepStatuses(t, result.Steps, [6]string{
		StepComplete, StepFailed, StepPending, StepPending, StepPending, StepPending,
	})
}

func TestPublish_PoliciesMissingAfterDefaulting(t *testing.T) {
	svc := newPublishTest(publishFixture{
		policy: &mockPolicy{
			defaultsFn: func(ctx context.Context, seller *model.SellerAccount) (*DefaultPolicies, error) {
				return &DefaultPolicies{PaymentID: "p-1"}, nil
			},
		},
	})

	result := svc.Publish(context.Background(), testSeller(), validListing(), nil)

	if result.Error.Code != ErrPoliciesMissing {
		t.Errorf("错误码不符: %s", result.Error.Code)
	}
	if result.Error.Details == nil || len(result.Error.Details.MissingPolicies) != 2 {
		t.Errorf("应列出两个缺失政策, details=%+v", result.Error.Details)
	}
	// SKU 已创建，失败结果里仍要带上，便于人工排查
	if result.SKU == "" {
		t.Error("失败结果应保留已产生的 SKU")
	}
}

func TestPublish_SuppliedPoliciesSkipDefaultLookup(t *testing.T) {
	called := false
	svc := newPublishTest(publishFixture{
		policy: &mockPolicy{
			defaultsFn: func(ctx context.Context, seller *model.SellerAccount) (*DefaultPolicies, error) {
				called = true
				return nil, errors.New("不应被调用")
			},
		},
	})

	result := svc.Publish(context.Background(), testSeller(), validListing(),
		&PolicySet{FulfillmentID: "f", PaymentID: "p", ReturnID: "r"})

	if !result.Success {
		t.Fatalf("期望成功, error=%+v", result.Error)
	}
	if called {
		t.Error("三件套齐全时不应拉取默认政策")
	}
}

func TestPublish_ShippingLocationMessageRewritten(t *testing.T) {
	raw := "Listing failed: A shipping location required for this offer."
	svc := newPublishTest(publishFixture{
		inventory: &mockInventory{
			offerFn: func(ctx context.Context, seller *model.SellerAccount, req *ebay.CreateOfferReq) (string, error) {
				return "", &ebay.APIError{StatusCode: 400, Message: raw}
			},
		},
	})

	result := svc.Publish(context.Background(), testSeller(), validListing(), nil)

	if result.Error.Code != ErrLocationRequired {
		t.Errorf("错误码不符: %s", result.Error.Code)
	}
	if strings.Contains(result.Error.Message, raw) {
		t.Error("返回信息应是改写后的提示，不是远端原文")
	}
	if !strings.Contains(result.Error.Message, "库存地点") {
		t.Errorf("改写信息不符: %s", result.Error.Message)
	}
}

func TestPublish_401MapsToReauth(t *testing.T) {
	svc := newPublishTest(publishFixture{
		inventory: &mockInventory{
			putFn: func(ctx context.Context, seller *model.SellerAccount, sku string, item *ebay.InventoryItem) error {
				return &ebay.APIError{StatusCode: 401, Message: "Invalid access token"}
			},
		},
	})

	result := svc.Publish(context.Background(), testSeller(), validListing(), nil)
	if result.Error.Code != ErrEbayReauthRequired {
		t.Errorf("401 应归为重新授权, got %s", result.Error.Code)
	}
	if result.Error.SuggestedAction != ActionReauth {
		t.Errorf("建议动作不符: %s", result.Error.SuggestedAction)
	}
}

func TestPublish_FeesFailureNeverBlocksPublish(t *testing.T) {
	svc := newPublishTest(publishFixture{
		fetchFees: true,
		inventory: &mockInventory{
			feesFn: func(ctx context.Context, seller *model.SellerAccount, offerID string) (*ebay.ListingFeesResp, error) {
				return nil, errors.New("费用接口超时")
			},
		},
	})

	result := svc.Publish(context.Background(), testSeller(), validListing(), nil)

	if !result.Success {
		t.Fatalf("费用失败不应拦截发布, error=%+v", result.Error)
	}
	if result.Steps[4].Status != StepSkipped {
		t.Errorf("fees 步骤应为 skipped, got %s", result.Steps[4].Status)
	}
	if len(result.Warnings) == 0 {
		t.Error("费用失败应记为警告")
	}
}

func TestPublish_NotConnectedShortCircuits(t *testing.T) {
	svc := newPublishTest(publishFixture{})
	seller := &model.SellerAccount{ID: 1} // 无 token

	result := svc.Publish(context.Background(), seller, validListing(), nil)

	if result.Error.Code != ErrEbayNotConnected {
		t.Errorf("错误码不符: %s", result.Error.Code)
	}
	// 任何步骤都不应启动
	assertStepStatuses(t, result.Steps, [6]string{
		StepPending, StepPending, StepPending, StepPending, StepPending, StepPending,
	})
}

func TestPublish_ExpiredTokenShortCircuits(t *testing.T) {
	remoteCalled := false
	svc := newPublishTest(publishFixture{
		location: &mockLocation{
			ensureFn: func(ctx context.Context, seller *model.SellerAccount) (string, error) {
				remoteCalled = true
				return "loc-1", nil
			},
		},
	})
	// 令牌巡检任务标记为 expired 的账号
	seller := testSeller()
	seller.TokenStatus = model.TokenStatusExpired

	result := svc.Publish(context.Background(), seller, validListing(), nil)

	if result.Error == nil || result.Error.Code != ErrEbayReauthRequired {
		t.Fatalf("expired 账号应要求重新授权, got %+v", result.Error)
	}
	if remoteCalled {
		t.Error("expired 账号不应发起任何远程调用")
	}
	assertStepStatuses(t, result.Steps, [6]string{
		StepPending, StepPending, StepPending, StepPending, StepPending, StepPending,
	})
}

func TestPublish_ValidationFailureNeverEntersPipeline(t *testing.T) {
	svc := newPublishTest(publishFixture{})
	listing := validListing()
	listing.Title = strings.Repeat("A", 81)

	result := svc.Publish(context.Background(), testSeller(), listing, nil)

	if result.Success {
		t.Fatal("校验失败不应成功")
	}
	if result.Error.Code != ErrValidationTitleTooLong {
		t.Errorf("错误码不符: %s", result.Error.Code)
	}
	assertStepStatuses(t, result.Steps, [6]string{
		StepPending, StepPending, StepPending, StepPending, StepPending, StepPending,
	})
}

func TestPublish_ConcurrentSameListingRejected(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	// 第三次发布会再次进入 ensureFn，entered 只能关闭一次
	var enteredOnce sync.Once
	svc := newPublishTest(publishFixture{
		location: &mockLocation{
			ensureFn: func(ctx context.Context, seller *model.SellerAccount) (string, error) {
				enteredOnce.Do(func() { close(entered) })
				<-release
				return "loc-1", nil
			},
		},
	})
	listing := validListing()
	listing.ID = 99

	done := make(chan *PublishResult)
	go func() {
		done <- svc.Publish(context.Background(), testSeller(), listing, nil)
	}()
	<-entered

	// 第一次还在进行中，同一商品的第二次调用直接被拒
	second := svc.Publish(context.Background(), testSeller(), listing, nil)
	if second.Error == nil || !strings.Contains(second.Error.Message, "进行中") {
		t.Errorf("并发发布应被拒绝, got %+v", second.Error)
	}

	close(release)
	first := <-done
	if !first.Success {
		t.Errorf("第一次发布应正常完成, error=%+v", first.Error)
	}

	// 第一次结束后可以再次发布
	third := svc.Publish(context.Background(), testSeller(), listing, nil)
	if !third.Success {
		t.Errorf("释放后应允许再次发布, error=%+v", third.Error)
	}
}

func TestPublish_PanicRecovered(t *testing.T) {
	svc := newPublishTest(publishFixture{
		inventory: &mockInventory{
			offerFn: func(ctx context.Context, seller *model.SellerAccount, req *ebay.CreateOfferReq) (string, error) {
				panic("boom")
			},
		},
	})

	result := svc.Publish(context.Background(), testSeller(), validListing(), nil)
	if result.Success {
		t.Fatal("panic 不应成功")
	}
	if result.Error.Code != ErrPublishError {
		t.Errorf("panic 应归为 PUBLISH_ERROR, got %s", result.Error.Code)
	}
}

func TestBuildInventoryItem_Truncation(t *testing.T) {
	listing := validListing()
	listing.Title = strings.Repeat("T", 100)
	listing.Description = strings.Repeat("D", 5000)
	listing.Quantity = -3
	listing.ItemSpecifics = model.StringMap{"Brand": "Canon", "Empty": " "}

	item := buildInventoryItem(listing)

	if len(item.Product.Title) != 80 {
		t.Errorf("标题应截断到 80, got %d", len(item.Product.Title))
	}
	if len(item.Product.Description) != 4000 {
		t.Errorf("描述应截断到 4000, got %d", len(item.Product.Description))
	}
	if item.Availability.ShipToLocationAvailability.Quantity != 0 {
		t.Errorf("负数量应归零, got %d", item.Availability.ShipToLocationAvailability.Quantity)
	}
	if _, exists := item.Product.Aspects["Empty"]; exists {
		t.Error("空白属性值应被过滤")
	}
	if got := item.Product.Aspects["Brand"]; len(got) != 1 || got[0] != "Canon" {
		t.Errorf("属性应转为 name→[values], got %v", got)
	}
	if item.Condition != "USED_GOOD" {
		t.Errorf("成色映射不符: %s", item.Condition)
	}
}

func TestBuildInventoryItem_MultibyteTruncation(t *testing.T) {
	listing := validListing()
	listing.Title = strings.Repeat("相", 100)
	listing.Description = strings.Repeat("机", 5000)

	item := buildInventoryItem(listing)

	if n := utf8.RuneCountInString(item.Product.Title); n != 80 {
		t.Errorf("标题应按字符截断到 80, got %d", n)
	}
	if n := utf8.RuneCountInString(item.Product.Description); n != 4000 {
		t.Errorf("描述应按字符截断到 4000, got %d", n)
	}
	// 截断不能落在多字节字符中间
	if !utf8.ValidString(item.Product.Title) || !utf8.ValidString(item.Product.Description) {
		t.Error("截断后必须仍是合法 UTF-8")
	}
}
