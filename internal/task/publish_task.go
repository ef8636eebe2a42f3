package task

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"ebay_dev_v1_202608/internal/repository"
	"ebay_dev_v1_202608/internal/service"
)

// ==================== PublishTask 发布扫描任务 ====================

// PublishTask 定时扫描已确认的商品并发布到 eBay
// 不同商品并发发布；同一商品的并发保护由 PublishService 内部兜底
type PublishTask struct {
	listingRepo repository.ListingRepository
	sellerRepo  repository.SellerRepository
	publisher   *service.PublishService
	logger      *zap.Logger
	cron        *cron.Cron

	// 并发控制
	concurrencyLimit int
	batchSize        int
	sleepTime        time.Duration
}

// NewPublishTask 创建发布扫描任务
func NewPublishTask(
	listingRepo repository.ListingRepository,
	sellerRepo repository.SellerRepository,
	publisher *service.PublishService,
	logger *zap.Logger,
) *PublishTask {
	return &PublishTask{
		listingRepo:      listingRepo,
		sellerRepo:       sellerRepo,
		publisher:        publisher,
		logger:           logger,
		cron:             cron.New(cron.WithSeconds()),
		concurrencyLimit: 3, // 发布链路每单 4-5 次远程调用，压低并发
		batchSize:        20,
		sleepTime:        200 * time.Millisecond, // 协程启动间隔
	}
}

// SetConcurrency 设置并发参数
func (t *PublishTask) SetConcurrency(limit, batch int, sleep time.Duration) {
	t.concurrencyLimit = limit
	t.batchSize = batch
	t.sleepTime = sleep
}

// Start 启动定时任务
func (t *PublishTask) Start() {
	// 定时策略：每分钟执行
	_, err := t.cron.AddFunc("0 * * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		t.execute(ctx)
	})
	if err != nil {
		log.Fatalf("[PublishTask] 无法启动定时任务: %v", err)
	}
	t.cron.Start()
	t.logger.Info("[PublishTask] 发布扫描任务已启动")
}

// Stop 停止定时任务
func (t *PublishTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	t.logger.Info("[PublishTask] 发布扫描任务已停止")
}

// execute 执行一轮扫描
func (t *PublishTask) execute(ctx context.Context) {
	listings, err := t.listingRepo.FindPendingPublish(ctx, t.batchSize)
	if err != nil {
		t.logger.Error("[PublishTask] 查询待发布商品失败", zap.Error(err))
		return
	}
	if len(listings) == 0 {
		return
	}
	t.logger.Info("[PublishTask] 开始发布", zap.Int("count", len(listings)))

	sem := make(chan struct{}, t.concurrencyLimit)
	var wg sync.WaitGroup

	for _, listing := range listings {
		if err := t.listingRepo.MarkPublishing(ctx, listing.ID); err != nil {
			t.logger.Warn("[PublishTask] 标记发布中失败，跳过",
				zap.Int64("listing_id", listing.ID), zap.Error(err))
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(id, sellerID int64) {
			defer wg.Done()
			defer func() { <-sem }()
			t.publishOne(ctx, id, sellerID)
		}(listing.ID, listing.SellerID)

		time.Sleep(t.sleepTime)
	}
	wg.Wait()
}

// publishOne 发布单个商品，结果落库由 PublishService 完成
func (t *PublishTask) publishOne(ctx context.Context, listingID, sellerID int64) {
	listing, err := t.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		t.logger.Error("[PublishTask] 读取商品失败", zap.Int64("listing_id", listingID), zap.Error(err))
		return
	}
	seller, err := t.sellerRepo.GetByID(ctx, sellerID)
	if err != nil {
		t.logger.Error("[PublishTask] 读取卖家失败", zap.Int64("seller_id", sellerID), zap.Error(err))
		_ = t.listingRepo.MarkPublishFailed(ctx, listingID, "", "", "卖家账号不存在")
		return
	}

	policies := &service.PolicySet{
		FulfillmentID: listing.FulfillmentPolicyID,
		PaymentID:     listing.PaymentPolicyID,
		ReturnID:      listing.ReturnPolicyID,
	}

	result := t.publisher.Publish(ctx, seller, listing, policies)
	if result.Success {
		t.logger.Info("[PublishTask] 发布成功",
			zap.Int64("listing_id", listingID),
			zap.String("listing_url", result.ListingURL),
		)
	} else if result.Error != nil {
		t.logger.Warn("[PublishTask] 发布失败",
			zap.Int64("listing_id", listingID),
			zap.String("code", string(result.Error.Code)),
			zap.String("message", result.Error.Message),
		)
	}
}
