package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ==================== 配置 ====================

// AIConfig AI 服务配置
type AIConfig struct {
	APIKey    string
	TextModel string
}

// ==================== 服务 ====================

// AIService Gemini 文本生成服务，实现 TextGenerator 接口
type AIService struct {
	Config *AIConfig
	client *resty.Client
	logger *zap.Logger
}

var _ TextGenerator = (*AIService)(nil)

// NewAIService 创建 AI 服务
func NewAIService(cfg *AIConfig, logger *zap.Logger) *AIService {
	if cfg.TextModel == "" {
		cfg.TextModel = "gemini-3-flash"
	}

	return &AIService{
		Config: cfg,
		client: resty.New().
			SetBaseURL("https://generativelanguage.googleapis.com").
			SetTimeout(60 * time.Second),
		logger: logger,
	}
}

// ==================== 文本生成 ====================

// Generate 调用 Gemini 生成一段文本
// systemInstruction 用于约束输出格式（如仅返回 JSON）
func (s *AIService) Generate(ctx context.Context, prompt, systemInstruction string) (string, error) {
	if s.Config.APIKey == "" {
		return "", fmt.Errorf("Gemini API Key 未配置")
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]interface{}{{"text": prompt}}},
		},
	}
	if systemInstruction != "" {
		reqBody["systemInstruction"] = map[string]interface{}{
			"parts": []map[string]interface{}{{"text": systemInstruction}},
		}
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("key", s.Config.APIKey).
		SetBody(reqBody).
		SetResult(&geminiResp).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", s.Config.TextModel))
	if err != nil {
		return "", fmt.Errorf("请求失败: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("Gemini API 错误 [%d]: %s", resp.StatusCode(), resp.String())
	}
	if geminiResp.Error != nil {
		return "", fmt.Errorf("Gemini API 错误: %s", geminiResp.Error.Message)
	}

	for _, candidate := range geminiResp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				return part.Text, nil
			}
		}
	}

	return "", fmt.Errorf("无生成结果")
}
