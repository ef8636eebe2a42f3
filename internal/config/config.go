package config

import (
	"strings"

	"github.com/spf13/viper"
)

// ==================== 配置结构 ====================

// Config 全局配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Ebay     EbayConfig     `mapstructure:"ebay"`
	Tasks    TasksConfig    `mapstructure:"tasks"`
	Debug    bool           `mapstructure:"debug"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// GeminiConfig AI 文案服务配置
type GeminiConfig struct {
	APIKey    string `mapstructure:"api_key"`
	TextModel string `mapstructure:"text_model"`
}

// EbayConfig eBay Sell API 配置
type EbayConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	MarketplaceID string `mapstructure:"marketplace_id"`
	// FetchFees 发布流水线是否请求费用预估（fees 步骤开关）
	FetchFees bool `mapstructure:"fetch_fees"`
}

// TasksConfig 定时任务开关
type TasksConfig struct {
	EnablePublishSweep bool `mapstructure:"enable_publish_sweep"`
	EnableTokenSweep   bool `mapstructure:"enable_token_sweep"`
}

// ==================== 加载 ====================

// Load 加载配置
// 优先级：环境变量 > config.yaml > 默认值
// 环境变量命名：EBAY_APP_ 前缀 + 下划线路径，如 EBAY_APP_DATABASE_DSN
func Load() (*Config, error) {
	v := viper.New()

	// 默认值
	v.SetDefault("server.port", "8080")
	v.SetDefault("database.dsn", "host=localhost user=ebay_admin password=1234 dbname=ebay_lister port=5432 sslmode=disable")
	v.SetDefault("gemini.text_model", "gemini-3-flash")
	v.SetDefault("ebay.base_url", "https://api.ebay.com")
	v.SetDefault("ebay.marketplace_id", "EBAY_US")
	v.SetDefault("ebay.fetch_fees", false)
	v.SetDefault("tasks.enable_publish_sweep", true)
	v.SetDefault("tasks.enable_token_sweep", true)
	v.SetDefault("debug", false)

	// 环境变量
	v.SetEnvPrefix("EBAY_APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 可选配置文件
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		// 配置文件不存在时使用默认值 + 环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
