package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ebay_dev_v1_202608/internal/model"
	"ebay_dev_v1_202608/internal/repository"
	"ebay_dev_v1_202608/internal/service"
	"ebay_dev_v1_202608/pkg/ebay"
)

// ==================== 测试替身 ====================

// fakeEbay 同时充当地点/政策/库存/元数据四个接口的测试替身
type fakeEbay struct{}

func (fakeEbay) EnsureLocationExists(ctx context.Context, seller *model.SellerAccount) (string, error) {
	return "warehouse-1", nil
}

func (fakeEbay) GetLocationByKey(ctx context.Context, seller *model.SellerAccount, key string) (string, error) {
	return ebay.LocationStatusEnabled, nil
}

func (fakeEbay) GetDefaultPolicies(ctx context.Context, seller *model.SellerAccount) (*service.DefaultPolicies, error) {
	return &service.DefaultPolicies{FulfillmentID: "f-1", PaymentID: "p-1", ReturnID: "r-1"}, nil
}

func (fakeEbay) CreateOrReplaceInventoryItem(ctx context.Context, seller *model.SellerAccount, sku string, item *ebay.InventoryItem) error {
	return nil
}

func (fakeEbay) CreateOffer(ctx context.Context, seller *model.SellerAccount, req *ebay.CreateOfferReq) (string, error) {
	return "offer-1", nil
}

func (fakeEbay) PublishOffer(ctx context.Context, seller *model.SellerAccount, offerID string) (string, error) {
	return "110555", nil
}

func (fakeEbay) GetOffer(ctx context.Context, seller *model.SellerAccount, offerID string) (*ebay.GetOfferResp, error) {
	return &ebay.GetOfferResp{
		OfferID: offerID,
		Status:  ebay.OfferStatusPublished,
		Listing: ebay.OfferListing{ListingID: "110555", ListingStatus: "ACTIVE"},
	}, nil
}

func (fakeEbay) GetListingFees(ctx context.Context, seller *model.SellerAccount, offerID string) (*ebay.ListingFeesResp, error) {
	return &ebay.ListingFeesResp{}, nil
}

func (fakeEbay) GetItemAspects(ctx context.Context, seller *model.SellerAccount, categoryID string) ([]service.AspectDefinition, error) {
	return nil, nil
}

func (fakeEbay) GetAllowedConditions(ctx context.Context, seller *model.SellerAccount, categoryID string) ([]string, error) {
	return nil, nil
}

type fakeGenerator struct{}

func (fakeGenerator) Generate(ctx context.Context, prompt, systemInstruction string) (string, error) {
	return "{}", nil
}

// ==================== 测试辅助 ====================

func setupListingCtlTest(t *testing.T) (*gin.Engine, repository.ListingRepository, repository.SellerRepository) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.SellerAccount{}, &model.Listing{}); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}

	listingRepo := repository.NewListingRepository(db)
	sellerRepo := repository.NewSellerRepository(db)

	log := zap.NewNop()
	remote := fakeEbay{}
	validator := service.NewValidatorService(remote, log)
	publisher := service.NewPublishService(remote, remote, remote, validator, listingRepo, false, log)
	autofill := service.NewAutofillService(fakeGenerator{}, log)
	listingSvc := service.NewListingService(listingRepo, sellerRepo, autofill, validator, publisher, remote, remote, log)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	ctl := NewListingController(listingSvc)
	api := r.Group("/api")
	listings := api.Group("/listings")
	listings.POST("", ctl.CreateListing)
	listings.GET("/:id", ctl.GetListing)
	listings.GET("/:id/status", ctl.GetListingStatus)
	listings.POST("/:id/confirm", ctl.ConfirmListing)
	listings.POST("/:id/validate", ctl.ValidateListing)
	listings.POST("/:id/publish", ctl.PublishListing)

	return r, listingRepo, sellerRepo
}

func seedSeller(t *testing.T, repo repository.SellerRepository) *model.SellerAccount {
	seller := &model.SellerAccount{
		Name:        "测试账号",
		AccessToken: "token",
		TokenStatus: model.TokenStatusOK,
	}
	if err := repo.Create(context.Background(), seller); err != nil {
		t.Fatalf("创建卖家失败: %v", err)
	}
	return seller
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ==================== 用例 ====================

func TestListingCtl_CreateAndGet(t *testing.T) {
	r, _, sellerRepo := setupListingCtlTest(t)
	seller := seedSeller(t, sellerRepo)

	w := doJSON(r, http.MethodPost, "/api/listings", gin.H{
		"seller_id":   seller.ID,
		"title":       "Canon AE-1 Camera",
		"description": "working",
		"category_id": "625",
		"price":       99.99,
		"quantity":    1,
		"image_urls":  []string{"https://img.example.com/1.jpg"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("创建失败: %d %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			ID    int64   `json:"id"`
			Price float64 `json:"price"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Price != 99.99 {
		t.Errorf("价格不符: %v", resp.Data.Price)
	}

	w = doJSON(r, http.MethodGet, "/api/listings/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("查询失败: %d", w.Code)
	}
}

func TestListingCtl_CreateValidatesBody(t *testing.T) {
	r, _, _ := setupListingCtlTest(t)

	// 缺 seller_id 和图片
	w := doJSON(r, http.MethodPost, "/api/listings", gin.H{
		"title":    "x",
		"price":    1.0,
		"quantity": 1,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400, got %d", w.Code)
	}
}

func TestListingCtl_ValidateReportsTitleTooLong(t *testing.T) {
	r, listingRepo, sellerRepo := setupListingCtlTest(t)
	seller := seedSeller(t, sellerRepo)

	listing := &model.Listing{
		SellerID:    seller.ID,
		Title:       strings.Repeat("A", 81),
		Description: "d",
		CategoryID:  "625",
		ConditionID: "new",
		Quantity:    1,
		ImageURLs:   model.StringSlice{"https://img.example.com/1.jpg"},
	}
	listing.SetPrice(10)
	if err := listingRepo.Create(context.Background(), listing); err != nil {
		t.Fatal(err)
	}

	w := doJSON(r, http.MethodPost, "/api/listings/1/validate", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("校验接口失败: %d %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Valid  bool `json:"valid"`
			Errors []struct {
				Code string `json:"code"`
			} `json:"errors"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Valid {
		t.Error("超长标题不应通过校验")
	}
	found := false
	for _, e := range resp.Data.Errors {
		if e.Code == "VALIDATION_TITLE_TOO_LONG" {
			found = true
		}
	}
	if !found {
		t.Errorf("缺少标题超长错误: %s", w.Body.String())
	}
}

func TestListingCtl_ConfirmAndPublish(t *testing.T) {
	r, listingRepo, sellerRepo := setupListingCtlTest(t)
	seller := seedSeller(t, sellerRepo)

	listing := &model.Listing{
		SellerID:    seller.ID,
		Title:       "Canon AE-1 Camera",
		Description: "working",
		CategoryID:  "625",
		ConditionID: "used_good",
		Quantity:    1,
		ImageURLs:   model.StringSlice{"https://img.example.com/1.jpg"},
		Status:      model.ListingStatusDraft,
	}
	listing.SetPrice(99.99)
	if err := listingRepo.Create(context.Background(), listing); err != nil {
		t.Fatal(err)
	}

	w := doJSON(r, http.MethodPost, "/api/listings/1/confirm", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("确认失败: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodPost, "/api/listings/1/publish", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("发布接口失败: %d %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Success    bool   `json:"success"`
			ListingURL string `json:"listing_url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Data.Success {
		t.Fatalf("发布应成功: %s", w.Body.String())
	}
	if resp.Data.ListingURL != "https://www.ebay.com/itm/110555" {
		t.Errorf("listing_url 不符: %s", resp.Data.ListingURL)
	}

	// 发布结果应落库
	got, err := listingRepo.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.ListingStatusPublished {
		t.Errorf("落库状态不符: %s", got.Status)
	}
	if got.SKU == "" || got.EbayListingID != "110555" {
		t.Errorf("发布产物未落库: sku=%q listing=%q", got.SKU, got.EbayListingID)
	}

	// 发布后可以查到远端在售状态
	w = doJSON(r, http.MethodGet, "/api/listings/1/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("在售状态查询失败: %d %s", w.Code, w.Body.String())
	}
	var statusResp struct {
		Data struct {
			OfferStatus   string `json:"offer_status"`
			ListingStatus string `json:"listing_status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &statusResp); err != nil {
		t.Fatal(err)
	}
	if statusResp.Data.OfferStatus != "PUBLISHED" || statusResp.Data.ListingStatus != "ACTIVE" {
		t.Errorf("在售状态不符: %s", w.Body.String())
	}
}

func TestListingCtl_StatusRequiresOffer(t *testing.T) {
	r, listingRepo, sellerRepo := setupListingCtlTest(t)
	seller := seedSeller(t, sellerRepo)

	// 还没发布过的商品没有 Offer，查状态应报 400
	listing := &model.Listing{
		SellerID:  seller.ID,
		Title:     "Canon AE-1 Camera",
		ImageURLs: model.StringSlice{"https://img.example.com/1.jpg"},
	}
	if err := listingRepo.Create(context.Background(), listing); err != nil {
		t.Fatal(err)
	}

	w := doJSON(r, http.MethodGet, "/api/listings/1/status", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("无 Offer 的商品应报 400, got %d", w.Code)
	}
}
