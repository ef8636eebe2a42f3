package model

import (
	"time"

	"gorm.io/gorm"
)

// ==================== 状态常量 ====================

const (
	// Token 状态
	TokenStatusOK      = "ok"
	TokenStatusExpired = "expired" // access token 过期，可刷新
	TokenStatusInvalid = "invalid" // refresh token 失效，需重新授权
)

// ==================== 数据库模型 ====================

// SellerAccount 卖家 eBay 账号
type SellerAccount struct {
	ID        int64          `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time      `gorm:"index"`
	UpdatedAt time.Time      `gorm:"index"`
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Name          string `gorm:"size:128;comment:账号别名"`
	EbayUserID    string `gorm:"size:64;index;comment:eBay用户ID"`
	MarketplaceID string `gorm:"size:16;default:EBAY_US;comment:站点"`

	// OAuth 凭证（授权回调链路由外部系统写入）
	AccessToken      string    `gorm:"size:4096;comment:访问令牌"`
	RefreshToken     string    `gorm:"size:2048;comment:刷新令牌"`
	AccessExpiresAt  time.Time `gorm:"comment:访问令牌过期时间"`
	RefreshExpiresAt time.Time `gorm:"comment:刷新令牌过期时间"`
	TokenStatus      string    `gorm:"size:16;default:ok;index;comment:令牌状态"`

	// 发布用缓存
	MerchantLocationKey string `gorm:"size:64;comment:已知的库存地点Key"`
}

func (*SellerAccount) TableName() string {
	return "seller_accounts"
}

// ==================== 辅助方法 ====================

// IsConnected 是否已连接 eBay（有可用访问令牌）
func (s *SellerAccount) IsConnected() bool {
	return s != nil && s.AccessToken != "" && s.TokenStatus != TokenStatusInvalid
}

// NeedsReauth 是否需要重新走授权链路
// expired 由令牌巡检任务写入，同样在进入发布步骤前拦下，
// 刷新动作由外部授权系统完成
func (s *SellerAccount) NeedsReauth() bool {
	return s == nil || s.TokenStatus == TokenStatusInvalid || s.TokenStatus == TokenStatusExpired
}
