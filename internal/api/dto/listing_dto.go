package dto

// ==================== 请求 DTO ====================

// CreateListingRequest 创建商品草稿请求
type CreateListingRequest struct {
	SellerID      int64             `json:"seller_id" binding:"required"`
	Title         string            `json:"title" binding:"required,max=80"`
	Description   string            `json:"description"`
	CategoryID    string            `json:"category_id"`
	CategoryName  string            `json:"category_name"`
	ConditionID   string            `json:"condition_id"`
	ConditionNote string            `json:"condition_note"`
	Price         float64           `json:"price" binding:"required,gt=0"`
	CurrencyCode  string            `json:"currency_code"`
	Quantity      int               `json:"quantity" binding:"required,min=1"`
	ImageURLs     []string          `json:"image_urls" binding:"required,min=1,max=12"`
	ItemSpecifics map[string]string `json:"item_specifics"`
}

// UpdateListingRequest 更新草稿请求（指针字段表示是否修改）
type UpdateListingRequest struct {
	Title         *string            `json:"title,omitempty"`
	Description   *string            `json:"description,omitempty"`
	CategoryID    *string            `json:"category_id,omitempty"`
	CategoryName  *string            `json:"category_name,omitempty"`
	ConditionID   *string            `json:"condition_id,omitempty"`
	ConditionNote *string            `json:"condition_note,omitempty"`
	Price         *float64           `json:"price,omitempty"`
	Quantity      *int               `json:"quantity,omitempty"`
	ImageURLs     []string           `json:"image_urls,omitempty"`
	ItemSpecifics *map[string]string `json:"item_specifics,omitempty"`
}

// ListListingsRequest 商品列表请求
type ListListingsRequest struct {
	SellerID int64  `form:"seller_id"`
	Status   string `form:"status"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
}

// PolicySetRequest 政策三件套（要么全给、要么全不给）
type PolicySetRequest struct {
	FulfillmentPolicyID string `json:"fulfillment_policy_id"`
	PaymentPolicyID     string `json:"payment_policy_id"`
	ReturnPolicyID      string `json:"return_policy_id"`
}

// PublishListingRequest 发布请求
type PublishListingRequest struct {
	Policies *PolicySetRequest `json:"policies,omitempty"`
}

// ValidateListingRequest 发布前校验请求
type ValidateListingRequest struct {
	Policies *PolicySetRequest `json:"policies,omitempty"`
}

// AutofillListingRequest AI 补全属性请求
type AutofillListingRequest struct {
	Brand      string            `json:"brand,omitempty"`
	Category   string            `json:"category,omitempty"`
	Color      string            `json:"color,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// ==================== 响应 DTO ====================

// ListingResponse 商品响应
type ListingResponse struct {
	ID            int64             `json:"id"`
	SellerID      int64             `json:"seller_id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	CategoryID    string            `json:"category_id"`
	CategoryName  string            `json:"category_name"`
	ConditionID   string            `json:"condition_id"`
	ConditionNote string            `json:"condition_note"`
	Price         float64           `json:"price"`
	CurrencyCode  string            `json:"currency_code"`
	Quantity      int               `json:"quantity"`
	ImageURLs     []string          `json:"image_urls"`
	ItemSpecifics map[string]string `json:"item_specifics"`
	AiFilled      []string          `json:"ai_filled"`
	Status        string            `json:"status"`
	SyncStatus    int               `json:"sync_status"`
	SKU           string            `json:"sku,omitempty"`
	OfferID       string            `json:"offer_id,omitempty"`
	EbayListingID string            `json:"ebay_listing_id,omitempty"`
	ListingURL    string            `json:"listing_url,omitempty"`
	PublishError  string            `json:"publish_error,omitempty"`
	CreatedAt     string            `json:"created_at"`
	UpdatedAt     string            `json:"updated_at"`
}

// ListingListResponse 列表响应
type ListingListResponse struct {
	Total int64             `json:"total"`
	Items []ListingResponse `json:"items"`
}

// ListingStatusResponse eBay 端在售状态
type ListingStatusResponse struct {
	OfferID       string `json:"offer_id"`
	OfferStatus   string `json:"offer_status"`
	SKU           string `json:"sku,omitempty"`
	ListingID     string `json:"listing_id,omitempty"`
	ListingStatus string `json:"listing_status,omitempty"`
}
