package ebay

import "fmt"

// ==================== 错误响应 ====================

// ErrorResp eBay 标准错误响应体
// 形如 {"errors":[{"errorId":25001,"domain":"API_INVENTORY","message":"..."}]}
type ErrorResp struct {
	Errors []ErrorItem `json:"errors"`
}

// ErrorItem 单条错误
type ErrorItem struct {
	ErrorID     int64  `json:"errorId"`
	Domain      string `json:"domain"`
	Category    string `json:"category"`
	Message     string `json:"message"`
	LongMessage string `json:"longMessage"`
}

// APIError 结构化远端错误（状态码 + 首条错误明细）
// 调用方可用 errors.As 取出 RemoteErrorID 做错误归类
type APIError struct {
	StatusCode    int
	RemoteErrorID int64
	Message       string
}

func (e *APIError) Error() string {
	if e.RemoteErrorID > 0 {
		return fmt.Sprintf("eBay API 错误 [%d] (errorId=%d): %s", e.StatusCode, e.RemoteErrorID, e.Message)
	}
	return fmt.Sprintf("eBay API 错误 [%d]: %s", e.StatusCode, e.Message)
}

// NewAPIError 从状态码与错误响应体构造 APIError
func NewAPIError(statusCode int, body *ErrorResp) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Message: fmt.Sprintf("HTTP %d", statusCode)}
	if body != nil && len(body.Errors) > 0 {
		first := body.Errors[0]
		apiErr.RemoteErrorID = first.ErrorID
		if first.LongMessage != "" {
			apiErr.Message = first.LongMessage
		} else if first.Message != "" {
			apiErr.Message = first.Message
		}
	}
	return apiErr
}

// ==================== Offer / Publish ====================

// CreateOfferResp POST offer 响应
type CreateOfferResp struct {
	OfferID  string      `json:"offerId"`
	Warnings []ErrorItem `json:"warnings,omitempty"`
}

// PublishOfferResp POST offer/{id}/publish 响应
type PublishOfferResp struct {
	ListingID string      `json:"listingId"`
	Warnings  []ErrorItem `json:"warnings,omitempty"`
}

// Offer 在售状态
const (
	OfferStatusPublished   = "PUBLISHED"
	OfferStatusUnpublished = "UNPUBLISHED"
)

// GetOfferResp GET offer/{id} 响应，发布后对账在售状态用
type GetOfferResp struct {
	OfferID       string       `json:"offerId"`
	SKU           string       `json:"sku"`
	MarketplaceID string       `json:"marketplaceId"`
	Status        string       `json:"status"` // PUBLISHED / UNPUBLISHED
	Listing       OfferListing `json:"listing"`
}

// OfferListing Offer 关联的 listing 信息
type OfferListing struct {
	ListingID     string `json:"listingId"`
	ListingStatus string `json:"listingStatus"`
}

// ==================== Fees ====================

// ListingFeesResp 费用预估响应
type ListingFeesResp struct {
	FeeSummaries []FeeSummary `json:"feeSummaries"`
}

type FeeSummary struct {
	MarketplaceID string `json:"marketplaceId"`
	Fees          []Fee  `json:"fees"`
}

type Fee struct {
	FeeType string `json:"feeType"`
	Amount  Money  `json:"amount"`
}

// ==================== Location ====================

// 库存地点状态
const (
	LocationStatusEnabled  = "ENABLED"
	LocationStatusDisabled = "DISABLED"
)

// InventoryLocation GET location 响应中的单个地点
type InventoryLocation struct {
	MerchantLocationKey    string `json:"merchantLocationKey"`
	Name                   string `json:"name"`
	MerchantLocationStatus string `json:"merchantLocationStatus"`
}

// LocationListResp GET /sell/inventory/v1/location 响应
type LocationListResp struct {
	Locations []InventoryLocation `json:"locations"`
	Total     int                 `json:"total"`
}

// ==================== Account Policies ====================

// FulfillmentPolicyListResp GET /sell/account/v1/fulfillment_policy 响应
type FulfillmentPolicyListResp struct {
	FulfillmentPolicies []struct {
		FulfillmentPolicyID string `json:"fulfillmentPolicyId"`
		Name                string `json:"name"`
	} `json:"fulfillmentPolicies"`
}

// PaymentPolicyListResp GET /sell/account/v1/payment_policy 响应
type PaymentPolicyListResp struct {
	PaymentPolicies []struct {
		PaymentPolicyID string `json:"paymentPolicyId"`
		Name            string `json:"name"`
	} `json:"paymentPolicies"`
}

// ReturnPolicyListResp GET /sell/account/v1/return_policy 响应
type ReturnPolicyListResp struct {
	ReturnPolicies []struct {
		ReturnPolicyID string `json:"returnPolicyId"`
		Name           string `json:"name"`
	} `json:"returnPolicies"`
}

// ==================== Category Metadata ====================

// ItemAspectsResp GET get_item_aspects_for_category 响应
type ItemAspectsResp struct {
	Aspects []CategoryAspect `json:"aspects"`
}

// CategoryAspect 分类属性定义
type CategoryAspect struct {
	LocalizedAspectName string        `json:"localizedAspectName"`
	AspectConstraint    Constraint    `json:"aspectConstraint"`
	AspectValues        []AspectValue `json:"aspectValues,omitempty"`
}

type Constraint struct {
	AspectRequired bool   `json:"aspectRequired"`
	AspectMode     string `json:"aspectMode"` // FREE_TEXT / SELECTION_ONLY
	AspectMaxLen   int    `json:"aspectMaxLength,omitempty"`
}

type AspectValue struct {
	LocalizedValue string `json:"localizedValue"`
}

// ConditionPoliciesResp GET get_item_condition_policies 响应
type ConditionPoliciesResp struct {
	ItemConditionPolicies []struct {
		CategoryID     string `json:"categoryId"`
		ItemConditions []struct {
			ConditionID          string `json:"conditionId"`
			ConditionDescription string `json:"conditionDescription"`
		} `json:"itemConditions"`
	} `json:"itemConditionPolicies"`
}
