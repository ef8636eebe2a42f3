package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// ==================== 接口依赖 ====================

// TextGenerator 上游文本生成服务（一次补全调用）
type TextGenerator interface {
	Generate(ctx context.Context, prompt, systemInstruction string) (string, error)
}

// ==================== 输入输出 ====================

// VisionSignals 图像识别给出的线索（可选）
type VisionSignals struct {
	Brand      string            `json:"brand,omitempty"`
	Category   string            `json:"category,omitempty"`
	Color      string            `json:"color,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// AutofillInput 一次自动填充调用的全部输入
type AutofillInput struct {
	Title         string
	Description   string
	Aspects       []AspectDefinition
	ItemSpecifics map[string]string // 已填好的属性，不会被覆盖
	Vision        *VisionSignals
}

// AutofillResult 自动填充结果
type AutofillResult struct {
	ItemSpecifics map[string]string `json:"item_specifics"` // 已填 + 新填
	FilledByAI    []string          `json:"filled_by_ai"`
	StillMissing  []string          `json:"still_missing"`
}

// ==================== 服务 ====================

// 提示词里每个受限属性最多列出的候选值数量
const maxPromptValues = 30

// AutofillService 用 LLM 补全缺失的必填物品属性
// 任何网络/解析失败都退化为"什么都没填上"，不向上抛错
type AutofillService struct {
	generator TextGenerator
	logger    *zap.Logger
}

// NewAutofillService 创建自动填充服务
func NewAutofillService(generator TextGenerator, logger *zap.Logger) *AutofillService {
	return &AutofillService{generator: generator, logger: logger}
}

// Autofill 补全缺失的必填属性
// 每次调用最多触发一次文本生成，内部不重试
func (s *AutofillService) Autofill(ctx context.Context, input *AutofillInput) *AutofillResult {
	result := &AutofillResult{
		ItemSpecifics: make(map[string]string, len(input.ItemSpecifics)),
		FilledByAI:    []string{},
		StillMissing:  []string{},
	}
	for k, v := range input.ItemSpecifics {
		result.ItemSpecifics[k] = v
	}

	// 找出还没填的必填属性
	var unfilled []AspectDefinition
	for _, def := range input.Aspects {
		if !def.Required {
			continue
		}
		if strings.TrimSpace(result.ItemSpecifics[def.Name]) == "" {
			unfilled = append(unfilled, def)
		}
	}
	if len(unfilled) == 0 {
		return result
	}

	text, err := s.generator.Generate(ctx, s.buildPrompt(input, unfilled),
		"你是一个电商商品信息专家。只返回一个 JSON 对象，键为属性名、值为属性值，不要输出任何其他文字。不确定的属性填 \"N/A\"。")
	if err != nil {
		s.logger.Warn("AI 补全调用失败，跳过自动填充", zap.Error(err))
		return s.allMissing(result, unfilled)
	}

	parsed, ok := extractJSONObject(text)
	if !ok {
		s.logger.Warn("AI 返回内容无法解析为 JSON，跳过自动填充", zap.String("raw", text))
		return s.allMissing(result, unfilled)
	}

	for _, def := range unfilled {
		value := lookupAspectValue(parsed, def.Name)
		if value == "" || strings.EqualFold(value, "N/A") {
			result.StillMissing = append(result.StillMissing, def.Name)
			continue
		}

		if def.Mode == AspectModeSelectionOnly {
			coerced, matched := CoerceAspectValue(value, def.AllowedValues)
			if !matched {
				result.StillMissing = append(result.StillMissing, def.Name)
				continue
			}
			value = coerced
		}

		result.ItemSpecifics[def.Name] = value
		result.FilledByAI = append(result.FilledByAI, def.Name)
	}

	return result
}

// allMissing 调用失败时把全部未填属性标记为缺失
func (s *AutofillService) allMissing(result *AutofillResult, unfilled []AspectDefinition) *AutofillResult {
	for _, def := range unfilled {
		result.StillMissing = append(result.StillMissing, def.Name)
	}
	return result
}

// buildPrompt 构造补全提示词
// 受限属性最多列 30 个候选值，超出部分只给数量，控制提示词长度
func (s *AutofillService) buildPrompt(input *AutofillInput, unfilled []AspectDefinition) string {
	var sb strings.Builder

	sb.WriteString("根据下面的商品信息，推断列出的每个商品属性的值。\n\n")
	sb.WriteString("商品标题: " + input.Title + "\n")
	if input.Description != "" {
		desc := input.Description
		if len(desc) > 500 {
			desc = desc[:500]
		}
		sb.WriteString("商品描述: " + desc + "\n")
	}

	if v := input.Vision; v != nil {
		if v.Brand != "" {
			sb.WriteString("识别到的品牌: " + v.Brand + "\n")
		}
		if v.Category != "" {
			sb.WriteString("识别到的类目: " + v.Category + "\n")
		}
		if v.Color != "" {
			sb.WriteString("识别到的颜色: " + v.Color + "\n")
		}
		for name, value := range v.Attributes {
			sb.WriteString("识别到的" + name + ": " + value + "\n")
		}
	}

	sb.WriteString("\n需要推断的属性:\n")
	for _, def := range unfilled {
		if def.Mode == AspectModeSelectionOnly && len(def.AllowedValues) > 0 {
			shown := def.AllowedValues
			omitted := 0
			if len(shown) > maxPromptValues {
				omitted = len(shown) - maxPromptValues
				shown = shown[:maxPromptValues]
			}
			sb.WriteString(fmt.Sprintf("- %s（只能从以下值中选择: %s", def.Name, strings.Join(shown, ", ")))
			if omitted > 0 {
				sb.WriteString(fmt.Sprintf(" (%d more options)", omitted))
			}
			sb.WriteString("）\n")
		} else {
			sb.WriteString("- " + def.Name + "\n")
		}
	}

	return sb.String()
}

// ==================== JSON 提取 ====================

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// extractJSONObject 从可能带说明文字的响应中提取首个 {...} 并解析
func extractJSONObject(text string) (map[string]string, bool) {
	raw := jsonObjectPattern.FindString(text)
	if raw == "" {
		return nil, false
	}

	var generic map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return nil, false
	}

	parsed := make(map[string]string, len(generic))
	for k, v := range generic {
		switch val := v.(type) {
		case string:
			parsed[k] = val
		case float64:
			parsed[k] = strings.TrimSuffix(fmt.Sprintf("%.2f", val), ".00")
		}
	}
	return parsed, true
}

// lookupAspectValue 先按原键、再按忽略大小写的键查找
func lookupAspectValue(parsed map[string]string, name string) string {
	if v, ok := parsed[name]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range parsed {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
