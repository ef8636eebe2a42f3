package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ==================== 状态常量 ====================

const (
	// 商品状态
	ListingStatusDraft     = "draft"
	ListingStatusConfirmed = "confirmed"
	ListingStatusPublished = "published"
	ListingStatusFailed    = "failed"

	// 发布同步状态
	PublishSyncNone    = 0 // 未发布
	PublishSyncPending = 1 // 待发布
	PublishSyncDone    = 2 // 已发布
	PublishSyncFailed  = 3 // 发布失败
)

// ==================== JSON 类型 ====================

// StringSlice 字符串切片（JSON 存储）
type StringSlice []string

// Value 必须声明在值接收者上，模型字段是值类型，
// 指针接收者不会被 database/sql 识别为 Valuer
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = []string{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, s)
}

// StringMap 字符串键值对（JSON 存储，物品属性用）
type StringMap map[string]string

func (m StringMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return json.Marshal(m)
}

func (m *StringMap) Scan(value interface{}) error {
	if value == nil {
		*m = make(map[string]string)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, m)
}

// ==================== 数据库模型 ====================

// Listing 待发布商品
type Listing struct {
	ID        int64          `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time      `gorm:"index"`
	UpdatedAt time.Time      `gorm:"index"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
	SellerID  int64          `gorm:"index;not null;comment:卖家账号ID"`

	// 商品内容
	Title         string      `gorm:"size:80;comment:标题"`
	Description   string      `gorm:"type:text;comment:描述"`
	CategoryID    string      `gorm:"size:32;index;comment:eBay分类ID"`
	CategoryName  string      `gorm:"size:255;comment:分类名称"`
	ConditionID   string      `gorm:"size:64;comment:成色ID"`
	ConditionNote string      `gorm:"size:1000;comment:成色补充说明"`
	PriceAmount   int64       `gorm:"comment:价格(分)"`
	PriceDivisor  int64       `gorm:"default:100;comment:价格除数"`
	CurrencyCode  string      `gorm:"size:3;default:USD;comment:货币代码"`
	Quantity      int         `gorm:"default:1;comment:库存数量"`
	ImageURLs     StringSlice `gorm:"type:json;comment:图片URL"`
	ItemSpecifics StringMap   `gorm:"type:json;comment:物品属性"`
	AiFilled      StringSlice `gorm:"type:json;comment:AI填充的属性名"`

	// 政策（三件套要么全有要么全无）
	FulfillmentPolicyID string `gorm:"size:64;comment:物流政策ID"`
	PaymentPolicyID     string `gorm:"size:64;comment:收款政策ID"`
	ReturnPolicyID      string `gorm:"size:64;comment:退货政策ID"`

	// 发布结果
	Status        string `gorm:"size:32;index;default:draft;comment:状态"`
	SyncStatus    int    `gorm:"default:0;index;comment:发布同步状态"`
	SKU           string `gorm:"size:64;index;comment:库存SKU"`
	OfferID       string `gorm:"size:64;comment:eBay offer ID"`
	EbayListingID string `gorm:"size:64;index;comment:eBay listing ID"`
	ListingURL    string `gorm:"size:512;comment:公开链接"`
	PublishError  string `gorm:"size:1024;comment:最近一次发布错误"`

	// 关联
	Seller *SellerAccount `gorm:"foreignKey:SellerID"`
}

func (*Listing) TableName() string {
	return "listings"
}

// ==================== 辅助方法 ====================

// GetPrice 获取价格（浮点数）
func (l *Listing) GetPrice() float64 {
	if l.PriceDivisor == 0 {
		l.PriceDivisor = 100
	}
	return float64(l.PriceAmount) / float64(l.PriceDivisor)
}

// SetPrice 设置价格（浮点数）
func (l *Listing) SetPrice(price float64) {
	l.PriceDivisor = 100
	l.PriceAmount = int64(price*100 + 0.5)
}

// CanConfirm 检查是否可以确认进入发布队列
func (l *Listing) CanConfirm() error {
	if l.Status != ListingStatusDraft {
		return errors.New("当前状态不允许确认")
	}
	if l.Title == "" {
		return errors.New("标题不能为空")
	}
	if l.CategoryID == "" {
		return errors.New("请选择商品分类")
	}
	if len(l.ImageURLs) == 0 {
		return errors.New("至少需要一张图片")
	}
	return nil
}

// MarkConfirmed 标记为已确认（待发布）
func (l *Listing) MarkConfirmed() {
	l.Status = ListingStatusConfirmed
	l.SyncStatus = PublishSyncPending
}
