package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"ebay_dev_v1_202608/internal/model"
)

// ==================== 接口依赖 ====================

// CategoryMetadataService 分类元数据（属性词表、允许成色）
type CategoryMetadataService interface {
	GetItemAspects(ctx context.Context, seller *model.SellerAccount, categoryID string) ([]AspectDefinition, error)
	GetAllowedConditions(ctx context.Context, seller *model.SellerAccount, categoryID string) ([]string, error)
}

// ==================== 类型 ====================

// 字段长度与数量上限（Sell API 的硬限制）
const (
	MaxTitleLen       = 80
	MaxDescriptionLen = 4000
	MinImages         = 1
	MaxImages         = 12
)

// PolicySet 调用方显式指定的政策三件套（可选）
type PolicySet struct {
	FulfillmentID string `json:"fulfillment_id"`
	PaymentID     string `json:"payment_id"`
	ReturnID      string `json:"return_id"`
}

// Complete 三项是否全部给齐
func (p *PolicySet) Complete() bool {
	return p.FulfillmentID != "" && p.PaymentID != "" && p.ReturnID != ""
}

// Empty 三项是否全部为空
func (p *PolicySet) Empty() bool {
	return p.FulfillmentID == "" && p.PaymentID == "" && p.ReturnID == ""
}

// MissingNames 缺失项的名字列表
func (p *PolicySet) MissingNames() []string {
	var missing []string
	if p.FulfillmentID == "" {
		missing = append(missing, "fulfillment")
	}
	if p.PaymentID == "" {
		missing = append(missing, "payment")
	}
	if p.ReturnID == "" {
		missing = append(missing, "return")
	}
	return missing
}

// ValidationResult 校验结果
// 本地错误全部累积后一次返回，不做字段级短路
type ValidationResult struct {
	Valid          bool                 `json:"valid"`
	Errors         []ValidationError    `json:"errors"`
	MissingAspects []string             `json:"missing_aspects,omitempty"`
	InvalidAspects []InvalidAspectValue `json:"invalid_aspects,omitempty"`
}

func (r *ValidationResult) addError(code ErrorCode, field, message string) {
	r.Errors = append(r.Errors, ValidationError{Code: code, Field: field, Message: message})
}

func (r *ValidationResult) addLengthError(code ErrorCode, field, message string, constraint, actual int) {
	r.Errors = append(r.Errors, ValidationError{
		Code: code, Field: field, Message: message,
		Constraint: constraint, Actual: actual,
	})
}

// ==================== 校验器 ====================

// ValidatorService 发布前校验
// 本地检查零网络调用；分类相关的两项远程检查只在填了分类时执行
type ValidatorService struct {
	metadata CategoryMetadataService
	logger   *zap.Logger
}

// NewValidatorService 创建校验器
func NewValidatorService(metadata CategoryMetadataService, logger *zap.Logger) *ValidatorService {
	return &ValidatorService{metadata: metadata, logger: logger}
}

// Validate 执行全部本地检查与两项远程检查
// 远程调用本身失败（网络/鉴权）通过 error 返回，与校验结论区分开
func (s *ValidatorService) Validate(ctx context.Context, seller *model.SellerAccount, listing *model.Listing, policies *PolicySet) (*ValidationResult, error) {
	result := &ValidationResult{}

	s.validateLocal(listing, policies, result)

	// 远程检查依赖分类，分类缺失时本地已报错，不再发起远程调用
	if listing.CategoryID != "" {
		if err := s.validateCondition(ctx, seller, listing, result); err != nil {
			return nil, err
		}
		if err := s.validateItemSpecifics(ctx, seller, listing, result); err != nil {
			return nil, err
		}
	}

	result.Valid = len(result.Errors) == 0
	return result, nil
}

// validateLocal 本地检查，每项独立追加错误
func (s *ValidatorService) validateLocal(listing *model.Listing, policies *PolicySet, result *ValidationResult) {
	// 长度上限按字符数算，不是字节数，中文标题 80 字也是合法的
	title := strings.TrimSpace(listing.Title)
	if title == "" {
		result.addError(ErrValidationTitleRequired, "title", "标题不能为空")
	} else if n := utf8.RuneCountInString(title); n > MaxTitleLen {
		result.addLengthError(ErrValidationTitleTooLong, "title",
			fmt.Sprintf("标题超过 %d 字符上限", MaxTitleLen), MaxTitleLen, n)
	}

	desc := strings.TrimSpace(listing.Description)
	if desc == "" {
		result.addError(ErrValidationDescriptionRequired, "description", "描述不能为空")
	} else if n := utf8.RuneCountInString(desc); n > MaxDescriptionLen {
		result.addLengthError(ErrValidationDescriptionTooLong, "description",
			fmt.Sprintf("描述超过 %d 字符上限", MaxDescriptionLen), MaxDescriptionLen, n)
	}

	imageCount := len(listing.ImageURLs)
	if imageCount < MinImages {
		result.addError(ErrValidationImagesRequired, "image_urls", "至少需要一张商品图片")
	} else if imageCount > MaxImages {
		result.addLengthError(ErrValidationTooManyImages, "image_urls",
			fmt.Sprintf("图片不能超过 %d 张", MaxImages), MaxImages, imageCount)
	}

	if listing.ConditionID == "" {
		result.addError(ErrValidationConditionRequired, "condition_id", "成色不能为空")
	} else if _, ok := ConditionEnum(listing.ConditionID); !ok {
		result.addError(ErrValidationConditionInvalid, "condition_id",
			"成色标识不合法: "+listing.ConditionID)
	}

	if listing.CategoryID == "" {
		result.addError(ErrValidationCategoryRequired, "category_id", "分类不能为空")
	}

	if listing.PriceAmount <= 0 {
		result.addError(ErrValidationPriceInvalid, "price", "价格必须大于 0")
	}

	if listing.Quantity < 1 {
		result.addError(ErrValidationQuantityInvalid, "quantity", "数量必须大于等于 1")
	}

	// 政策要么三项全给、要么全不给，给一半无法触发默认政策兜底
	if policies != nil && !policies.Empty() && !policies.Complete() {
		result.Errors = append(result.Errors, ValidationError{
			Code:    ErrValidationPoliciesIncomplete,
			Field:   "policies",
			Message: "政策不完整，缺少: " + strings.Join(policies.MissingNames(), ", "),
		})
	}
}

// validateCondition 远程检查：成色是否被该分类允许
func (s *ValidatorService) validateCondition(ctx context.Context, seller *model.SellerAccount, listing *model.Listing, result *ValidationResult) error {
	enum, ok := ConditionEnum(listing.ConditionID)
	if !ok {
		// 本地已报 VALIDATION_CONDITION_INVALID
		return nil
	}

	allowed, err := s.metadata.GetAllowedConditions(ctx, seller, listing.CategoryID)
	if err != nil {
		return fmt.Errorf("拉取分类允许成色失败: %w", err)
	}
	if len(allowed) == 0 {
		// 元数据接口没给限制时不拦截
		return nil
	}

	for _, a := range allowed {
		if a == enum {
			return nil
		}
	}
	result.addError(ErrValidationConditionNotAllowed, "condition_id",
		fmt.Sprintf("分类 %s 不允许成色 %s", listing.CategoryID, enum))
	return nil
}

// validateItemSpecifics 远程检查：必填属性完整性与受限属性取值合法性
func (s *ValidatorService) validateItemSpecifics(ctx context.Context, seller *model.SellerAccount, listing *model.Listing, result *ValidationResult) error {
	aspects, err := s.metadata.GetItemAspects(ctx, seller, listing.CategoryID)
	if err != nil {
		return fmt.Errorf("拉取分类属性定义失败: %w", err)
	}

	for _, def := range aspects {
		value := strings.TrimSpace(listing.ItemSpecifics[def.Name])

		if value == "" {
			if def.Required {
				result.MissingAspects = append(result.MissingAspects, def.Name)
			}
			continue
		}

		if def.Mode == AspectModeSelectionOnly {
			if _, ok := CoerceAspectValue(value, def.AllowedValues); !ok {
				result.InvalidAspects = append(result.InvalidAspects, InvalidAspectValue{
					Aspect:  def.Name,
					Value:   value,
					Allowed: def.AllowedValues,
				})
			}
		}
	}

	if len(result.MissingAspects) > 0 {
		result.addError(ErrMissingItemSpecifics, "item_specifics",
			"缺少必填属性: "+strings.Join(result.MissingAspects, ", "))
	}
	for _, invalid := range result.InvalidAspects {
		result.addError(ErrInvalidItemSpecificValue, "item_specifics."+invalid.Aspect,
			fmt.Sprintf("属性 %s 的值 %q 不在允许范围内", invalid.Aspect, invalid.Value))
	}
	return nil
}
