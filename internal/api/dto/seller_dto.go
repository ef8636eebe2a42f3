package dto

// ==================== 请求 DTO ====================

// CreateSellerRequest 录入卖家账号请求
type CreateSellerRequest struct {
	Name          string `json:"name" binding:"required"`
	EbayUserID    string `json:"ebay_user_id"`
	MarketplaceID string `json:"marketplace_id"`
	AccessToken   string `json:"access_token" binding:"required"`
	RefreshToken  string `json:"refresh_token"`
}

// ==================== 响应 DTO ====================

// SellerResponse 卖家账号响应（不含 Token）
type SellerResponse struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	EbayUserID          string `json:"ebay_user_id"`
	MarketplaceID       string `json:"marketplace_id"`
	TokenStatus         string `json:"token_status"`
	MerchantLocationKey string `json:"merchant_location_key,omitempty"`
	Connected           bool   `json:"connected"`
	NeedsReauth         bool   `json:"needs_reauth"`
}
