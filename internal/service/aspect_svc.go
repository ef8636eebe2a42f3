package service

import "strings"

// ==================== 属性词表类型 ====================

// 属性取值模式
const (
	AspectModeFreeText      = "FREE_TEXT"
	AspectModeSelectionOnly = "SELECTION_ONLY"
)

// AspectDefinition 分类的单个物品属性定义
// 由分类元数据服务提供，一次发布尝试内不可变
type AspectDefinition struct {
	Name          string   `json:"name"`
	Required      bool     `json:"required"`
	Mode          string   `json:"mode"`
	AllowedValues []string `json:"allowed_values,omitempty"` // 仅 SELECTION_ONLY 有
	MaxLength     int      `json:"max_length,omitempty"`     // 仅 FREE_TEXT 有
}

// ==================== 值归一 ====================

// CoerceAspectValue 把自由文本值归一到分类允许的取值词表
// 规则按顺序，命中即返回：
//  1. 词表为空：原样返回（自由文本合法）
//  2. 去空白、忽略大小写的精确匹配：返回词表中的原始写法
//  3. 双向子串匹配（值包含候选，或候选包含值）：按词表原始顺序返回首个命中
//  4. 都不中：返回 ok=false
//
// 纯函数，不做编辑距离等模糊匹配——宁可漏填也不能把似是而非的值
// 写进受限字段
func CoerceAspectValue(value string, allowed []string) (string, bool) {
	if len(allowed) == 0 {
		return value, true
	}

	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "", false
	}

	// 精确匹配优先
	for _, candidate := range allowed {
		if strings.ToLower(strings.TrimSpace(candidate)) == normalized {
			return candidate, true
		}
	}

	// 双向子串匹配
	for _, candidate := range allowed {
		c := strings.ToLower(strings.TrimSpace(candidate))
		if c == "" {
			continue
		}
		if strings.Contains(normalized, c) || strings.Contains(c, normalized) {
			return candidate, true
		}
	}

	return "", false
}
