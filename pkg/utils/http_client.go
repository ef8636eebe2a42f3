package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// NewEbayClient 创建统一配置的 eBay Sell API Resty 客户端
// 注意：不开启 Resty 自动重试。发布流水线里 POST offer / publish 不是幂等的，
// 自动重试可能在远端重复建单，重试决策交给调用方（见错误分类的 suggested_action）。
func NewEbayClient(baseURL string) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(20*time.Second).
		SetHeader("User-Agent", "Ebay-Go-App/1.0").
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
}
