package router

import (
	"github.com/gin-gonic/gin"

	"ebay_dev_v1_202608/internal/controller"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	listingCtl *controller.ListingController,
	sellerCtl *controller.SellerController) {
	// 健康检查
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API 路由组
	api := r.Group("/api")
	{
		// listing 商品管理与发布
		listings := api.Group("/listings")
		{
			// GET /api/listings
			listings.GET("", listingCtl.ListListings)
			listings.POST("", listingCtl.CreateListing)
			listings.GET("/:id", listingCtl.GetListing)
			listings.PUT("/:id", listingCtl.UpdateListing)
			listings.DELETE("/:id", listingCtl.DeleteListing)
			listings.GET("/:id/status", listingCtl.GetListingStatus)

			// 生命周期操作
			listings.POST("/:id/confirm", listingCtl.ConfirmListing)
			listings.POST("/:id/autofill", listingCtl.AutofillListing)
			listings.POST("/:id/validate", listingCtl.ValidateListing)
			listings.POST("/:id/publish", listingCtl.PublishListing)
		}

		// seller 卖家账号管理
		sellers := api.Group("/sellers")
		{
			sellers.GET("", sellerCtl.ListSellers)
			sellers.POST("", sellerCtl.CreateSeller)
			sellers.GET("/:id", sellerCtl.GetSeller)
		}
	}
}
