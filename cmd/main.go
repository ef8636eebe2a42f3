package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ebay_dev_v1_202608/internal/config"
	"ebay_dev_v1_202608/internal/controller"
	"ebay_dev_v1_202608/internal/middleware"
	"ebay_dev_v1_202608/internal/model"
	"ebay_dev_v1_202608/internal/repository"
	"ebay_dev_v1_202608/internal/router"
	"ebay_dev_v1_202608/internal/service"
	"ebay_dev_v1_202608/internal/task"
	"ebay_dev_v1_202608/pkg/database"
	"ebay_dev_v1_202608/pkg/logger"
	"ebay_dev_v1_202608/pkg/utils"
)

func main() {
	// 1. 配置与日志
	cfg, err := config.Load()
	if err != nil {
		panic("加载配置失败: " + err.Error())
	}
	log := logger.New(cfg.Debug)
	defer log.Sync()

	// 2. 数据库
	db, err := database.InitDB(cfg.Database.DSN, cfg.Debug,
		&model.SellerAccount{},
		&model.Listing{},
	)
	if err != nil {
		log.Fatal("数据库初始化失败", zap.Error(err))
	}

	// 3. Repository 层
	listingRepo := repository.NewListingRepository(db)
	sellerRepo := repository.NewSellerRepository(db)

	// 4. Service 层
	ebaySvc := service.NewEbayService(
		utils.NewEbayClient(cfg.Ebay.BaseURL),
		cfg.Ebay.MarketplaceID,
		log,
	)
	aiSvc := service.NewAIService(&service.AIConfig{
		APIKey:    cfg.Gemini.APIKey,
		TextModel: cfg.Gemini.TextModel,
	}, log)

	autofillSvc := service.NewAutofillService(aiSvc, log)
	validatorSvc := service.NewValidatorService(ebaySvc, log)
	publishSvc := service.NewPublishService(
		ebaySvc, ebaySvc, ebaySvc,
		validatorSvc, listingRepo,
		cfg.Ebay.FetchFees, log,
	)
	listingSvc := service.NewListingService(
		listingRepo, sellerRepo,
		autofillSvc, validatorSvc, publishSvc,
		ebaySvc, ebaySvc, log,
	)

	// 5. 定时任务
	var publishTask *task.PublishTask
	if cfg.Tasks.EnablePublishSweep {
		publishTask = task.NewPublishTask(listingRepo, sellerRepo, publishSvc, log)
		publishTask.Start()
	}
	var tokenTask *task.TokenTask
	if cfg.Tasks.EnableTokenSweep {
		tokenTask = task.NewTokenTask(sellerRepo, log)
		tokenTask.Start()
	}

	// 6. HTTP 服务
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(middleware.Recovery(log), middleware.RequestLog(log))

	router.InitRoutes(engine,
		controller.NewListingController(listingSvc),
		controller.NewSellerController(sellerRepo),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: engine,
	}
	go func() {
		log.Info("HTTP 服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP 服务异常退出", zap.Error(err))
		}
	}()

	// 7. 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("收到退出信号，开始关闭")

	if publishTask != nil {
		publishTask.Stop()
	}
	if tokenTask != nil {
		tokenTask.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("HTTP 服务关闭失败", zap.Error(err))
	}
	log.Info("服务已退出")
}
