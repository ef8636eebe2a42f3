package service

// ==================== 错误码 ====================

// ErrorCode 发布链路错误码（封闭集合）
type ErrorCode string

const (
	// 连接/授权
	ErrEbayNotConnected   ErrorCode = "EBAY_NOT_CONNECTED"
	ErrEbayReauthRequired ErrorCode = "EBAY_REAUTH_REQUIRED"

	// 库存地点
	ErrLocationRequired   ErrorCode = "LOCATION_REQUIRED"
	ErrLocationNotEnabled ErrorCode = "LOCATION_NOT_ENABLED"
	ErrLocationKeyMissing ErrorCode = "EBAY_MERCHANT_LOCATION_KEY_MISSING"

	// 政策
	ErrPoliciesMissing ErrorCode = "POLICIES_MISSING"

	// 本地校验
	ErrValidationTitleRequired       ErrorCode = "VALIDATION_TITLE_REQUIRED"
	ErrValidationTitleTooLong        ErrorCode = "VALIDATION_TITLE_TOO_LONG"
	ErrValidationDescriptionRequired ErrorCode = "VALIDATION_DESCRIPTION_REQUIRED"
	ErrValidationDescriptionTooLong  ErrorCode = "VALIDATION_DESCRIPTION_TOO_LONG"
	ErrValidationImagesRequired      ErrorCode = "VALIDATION_IMAGES_REQUIRED"
	ErrValidationTooManyImages       ErrorCode = "VALIDATION_TOO_MANY_IMAGES"
	ErrValidationConditionRequired   ErrorCode = "VALIDATION_CONDITION_REQUIRED"
	ErrValidationConditionInvalid    ErrorCode = "VALIDATION_CONDITION_INVALID"
	ErrValidationConditionNotAllowed ErrorCode = "VALIDATION_CONDITION_NOT_ALLOWED"
	ErrValidationCategoryRequired    ErrorCode = "VALIDATION_CATEGORY_REQUIRED"
	ErrValidationPriceInvalid        ErrorCode = "VALIDATION_PRICE_INVALID"
	ErrValidationQuantityInvalid     ErrorCode = "VALIDATION_QUANTITY_INVALID"
	ErrValidationPoliciesIncomplete  ErrorCode = "VALIDATION_POLICIES_INCOMPLETE"

	// 物品属性校验
	ErrMissingItemSpecifics     ErrorCode = "MISSING_ITEM_SPECIFICS"
	ErrInvalidItemSpecificValue ErrorCode = "INVALID_ITEM_SPECIFIC_VALUE"

	// 流水线步骤失败
	ErrInventoryItemFailed ErrorCode = "INVENTORY_ITEM_FAILED"
	ErrOfferCreateFailed   ErrorCode = "OFFER_CREATE_FAILED"
	ErrOfferPublishFailed  ErrorCode = "OFFER_PUBLISH_FAILED"

	// 兜底
	ErrPublishError ErrorCode = "PUBLISH_ERROR"
)

// AllErrorCodes 全部错误码（测试用，保证 SuggestedAction 覆盖完整）
var AllErrorCodes = []ErrorCode{
	ErrEbayNotConnected, ErrEbayReauthRequired,
	ErrLocationRequired, ErrLocationNotEnabled, ErrLocationKeyMissing,
	ErrPoliciesMissing,
	ErrValidationTitleRequired, ErrValidationTitleTooLong,
	ErrValidationDescriptionRequired, ErrValidationDescriptionTooLong,
	ErrValidationImagesRequired, ErrValidationTooManyImages,
	ErrValidationConditionRequired, ErrValidationConditionInvalid,
	ErrValidationConditionNotAllowed, ErrValidationCategoryRequired,
	ErrValidationPriceInvalid, ErrValidationQuantityInvalid,
	ErrValidationPoliciesIncomplete,
	ErrMissingItemSpecifics, ErrInvalidItemSpecificValue,
	ErrInventoryItemFailed, ErrOfferCreateFailed, ErrOfferPublishFailed,
	ErrPublishError,
}

// ==================== 建议动作 ====================

// Action 给前端的建议恢复动作
type Action string

const (
	ActionReauth            Action = "reauth"              // 重新连接 eBay
	ActionCreateLocation    Action = "create_location"     // 去创建/启用库存地点
	ActionCheckDetails      Action = "check_details"       // 检查并修改商品信息
	ActionEditItemSpecifics Action = "edit_item_specifics" // 补全物品属性
	ActionRetry             Action = "retry"               // 直接重试
)

// SuggestedAction 错误码 → 建议动作
// 错误语义与展示解耦：前端只根据动作决定渲染哪种控件
func SuggestedAction(code ErrorCode) Action {
	switch code {
	case ErrEbayNotConnected, ErrEbayReauthRequired:
		return ActionReauth
	case ErrLocationRequired, ErrLocationNotEnabled, ErrLocationKeyMissing:
		return ActionCreateLocation
	case ErrMissingItemSpecifics, ErrInvalidItemSpecificValue:
		return ActionEditItemSpecifics
	case ErrValidationTitleRequired, ErrValidationTitleTooLong,
		ErrValidationDescriptionRequired, ErrValidationDescriptionTooLong,
		ErrValidationImagesRequired, ErrValidationTooManyImages,
		ErrValidationConditionRequired, ErrValidationConditionInvalid,
		ErrValidationConditionNotAllowed, ErrValidationCategoryRequired,
		ErrValidationPriceInvalid, ErrValidationQuantityInvalid,
		ErrValidationPoliciesIncomplete,
		ErrPoliciesMissing,
		ErrInventoryItemFailed, ErrOfferCreateFailed:
		return ActionCheckDetails
	case ErrOfferPublishFailed, ErrPublishError:
		return ActionRetry
	}
	return ActionCheckDetails
}

// ==================== 结构化错误 ====================

// InvalidAspectValue 校验出的非法属性取值
type InvalidAspectValue struct {
	Aspect  string   `json:"aspect"`
	Value   string   `json:"value"`
	Allowed []string `json:"allowed"`
}

// PublishErrorDetails 错误附加信息
type PublishErrorDetails struct {
	MissingAspects  []string             `json:"missing_aspects,omitempty"`
	InvalidAspects  []InvalidAspectValue `json:"invalid_aspects,omitempty"`
	MissingPolicies []string             `json:"missing_policies,omitempty"`
	RemoteErrorID   int64                `json:"remote_error_id,omitempty"`
}

// PublishError 返回给调用方的单个结构化发布错误
type PublishError struct {
	Code            ErrorCode            `json:"code"`
	Message         string               `json:"message"`
	SuggestedAction Action               `json:"suggested_action"`
	Details         *PublishErrorDetails `json:"details,omitempty"`
}

// NewPublishError 构造发布错误并填充建议动作
func NewPublishError(code ErrorCode, message string) *PublishError {
	return &PublishError{
		Code:            code,
		Message:         message,
		SuggestedAction: SuggestedAction(code),
	}
}

// ValidationError 单条校验错误
type ValidationError struct {
	Code       ErrorCode `json:"code"`
	Field      string    `json:"field"`
	Message    string    `json:"message"`
	Constraint int       `json:"constraint,omitempty"`
	Actual     int       `json:"actual,omitempty"`
}
