package ebay

// ==================== Inventory Item ====================

// InventoryItem PUT /sell/inventory/v1/inventory_item/{sku} 请求体
type InventoryItem struct {
	Product              Product      `json:"product"`
	Condition            string       `json:"condition"`
	ConditionDescription string       `json:"conditionDescription,omitempty"`
	Availability         Availability `json:"availability"`
}

// Product 商品主体
type Product struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	ImageUrls   []string            `json:"imageUrls"`
	Aspects     map[string][]string `json:"aspects,omitempty"`
	Brand       string              `json:"brand,omitempty"`
	MPN         string              `json:"mpn,omitempty"`
}

// Availability 库存可用性
type Availability struct {
	ShipToLocationAvailability ShipToLocationAvailability `json:"shipToLocationAvailability"`
}

type ShipToLocationAvailability struct {
	Quantity int `json:"quantity"`
}

// ==================== Offer ====================

// CreateOfferReq POST /sell/inventory/v1/offer 请求体
type CreateOfferReq struct {
	SKU                 string          `json:"sku"`
	MarketplaceID       string          `json:"marketplaceId"`
	Format              string          `json:"format"` // FIXED_PRICE
	AvailableQuantity   int             `json:"availableQuantity"`
	CategoryID          string          `json:"categoryId"`
	ListingDescription  string          `json:"listingDescription,omitempty"`
	MerchantLocationKey string          `json:"merchantLocationKey"`
	PricingSummary      PricingSummary  `json:"pricingSummary"`
	ListingPolicies     ListingPolicies `json:"listingPolicies"`
}

// PricingSummary 定价信息
type PricingSummary struct {
	Price Money `json:"price"`
}

// Money eBay 金额对象（字符串数值 + 货币代码）
type Money struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// ListingPolicies 三件套政策 ID
type ListingPolicies struct {
	FulfillmentPolicyID string `json:"fulfillmentPolicyId"`
	PaymentPolicyID     string `json:"paymentPolicyId"`
	ReturnPolicyID      string `json:"returnPolicyId"`
}

// ==================== Fees ====================

// ListingFeesReq POST /sell/inventory/v1/offer/get_listing_fees 请求体
type ListingFeesReq struct {
	Offers []OfferKey `json:"offers"`
}

type OfferKey struct {
	OfferID string `json:"offerId"`
}
