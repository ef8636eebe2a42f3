package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"ebay_dev_v1_202608/internal/model"
	"ebay_dev_v1_202608/internal/repository"
)

// ==================== TokenTask 令牌巡检任务 ====================

// TokenTask 定时巡检卖家令牌有效期并更新状态
// OAuth 刷新由外部授权系统负责，这里只负责把过期账号标出来，
// 让发布链路在进入步骤前就返回 EBAY_REAUTH_REQUIRED
type TokenTask struct {
	sellerRepo repository.SellerRepository
	logger     *zap.Logger
	cron       *cron.Cron
}

// NewTokenTask 创建令牌巡检任务
func NewTokenTask(sellerRepo repository.SellerRepository, logger *zap.Logger) *TokenTask {
	return &TokenTask{
		sellerRepo: sellerRepo,
		logger:     logger,
		cron:       cron.New(cron.WithSeconds()),
	}
}

// Start 启动定时任务
func (t *TokenTask) Start() {
	// 定时策略：每 10 分钟执行
	_, err := t.cron.AddFunc("0 */10 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		t.execute(ctx)
	})
	if err != nil {
		log.Fatalf("[TokenTask] 无法启动定时任务: %v", err)
	}
	t.cron.Start()
	t.logger.Info("[TokenTask] 令牌巡检任务已启动")
}

// Stop 停止定时任务
func (t *TokenTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	t.logger.Info("[TokenTask] 令牌巡检任务已停止")
}

// execute 执行一轮巡检
func (t *TokenTask) execute(ctx context.Context) {
	// 提前 5 分钟视为过期，避免发布中途 401
	sellers, err := t.sellerRepo.FindTokenExpiring(ctx, time.Now().Add(5*time.Minute))
	if err != nil {
		t.logger.Error("[TokenTask] 查询即将过期账号失败", zap.Error(err))
		return
	}

	for _, seller := range sellers {
		status := model.TokenStatusExpired
		if !seller.RefreshExpiresAt.IsZero() && seller.RefreshExpiresAt.Before(time.Now()) {
			// 刷新令牌也没了，只能重新授权
			status = model.TokenStatusInvalid
		}
		if seller.TokenStatus == status {
			continue
		}
		if err := t.sellerRepo.UpdateTokenStatus(ctx, seller.ID, status); err != nil {
			t.logger.Error("[TokenTask] 更新令牌状态失败",
				zap.Int64("seller_id", seller.ID), zap.Error(err))
			continue
		}
		t.logger.Info("[TokenTask] 令牌状态已更新",
			zap.Int64("seller_id", seller.ID),
			zap.String("status", status),
		)
	}
}
