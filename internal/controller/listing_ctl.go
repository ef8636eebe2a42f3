package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ebay_dev_v1_202608/internal/api/dto"
	"ebay_dev_v1_202608/internal/model"
	"ebay_dev_v1_202608/internal/repository"
	"ebay_dev_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// ListingController 商品控制器
type ListingController struct {
	listingService *service.ListingService
}

func NewListingController(listingService *service.ListingService) *ListingController {
	return &ListingController{listingService: listingService}
}

// parseID 解析路径里的商品 ID
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的商品ID",
		})
		return 0, false
	}
	return id, true
}

// toPolicySet 请求里的政策三件套转服务层类型
func toPolicySet(req *dto.PolicySetRequest) *service.PolicySet {
	if req == nil {
		return nil
	}
	return &service.PolicySet{
		FulfillmentID: req.FulfillmentPolicyID,
		PaymentID:     req.PaymentPolicyID,
		ReturnID:      req.ReturnPolicyID,
	}
}

// toListingResponse 模型转响应 DTO
func toListingResponse(l *model.Listing) dto.ListingResponse {
	return dto.ListingResponse{
		ID:            l.ID,
		SellerID:      l.SellerID,
		Title:         l.Title,
		Description:   l.Description,
		CategoryID:    l.CategoryID,
		CategoryName:  l.CategoryName,
		ConditionID:   l.ConditionID,
		ConditionNote: l.ConditionNote,
		Price:         l.GetPrice(),
		CurrencyCode:  l.CurrencyCode,
		Quantity:      l.Quantity,
		ImageURLs:     l.ImageURLs,
		ItemSpecifics: l.ItemSpecifics,
		AiFilled:      l.AiFilled,
		Status:        l.Status,
		SyncStatus:    l.SyncStatus,
		SKU:           l.SKU,
		OfferID:       l.OfferID,
		EbayListingID: l.EbayListingID,
		ListingURL:    l.ListingURL,
		PublishError:  l.PublishError,
		CreatedAt:     l.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:     l.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ==================== API 方法 ====================

// CreateListing 创建商品草稿
// @Summary 创建商品草稿
// @Tags Listing
// @Accept json
// @Produce json
// @Param body body dto.CreateListingRequest true "创建请求"
// @Router /api/listings [post]
func (ctrl *ListingController) CreateListing(c *gin.Context) {
	var req dto.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	listing := &model.Listing{
		SellerID:      req.SellerID,
		Title:         req.Title,
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		CategoryName:  req.CategoryName,
		ConditionID:   req.ConditionID,
		ConditionNote: req.ConditionNote,
		CurrencyCode:  req.CurrencyCode,
		Quantity:      req.Quantity,
		ImageURLs:     req.ImageURLs,
		ItemSpecifics: req.ItemSpecifics,
	}
	listing.SetPrice(req.Price)

	if err := ctrl.listingService.Create(c.Request.Context(), listing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "创建失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "success",
		"data":    toListingResponse(listing),
	})
}

// GetListing 获取商品详情
// @Summary 获取商品详情
// @Tags Listing
// @Param id path int true "商品ID"
// @Router /api/listings/{id} [get]
func (ctrl *ListingController) GetListing(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	listing, err := ctrl.listingService.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": "商品不存在",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toListingResponse(listing),
	})
}

// ListListings 商品列表
// @Summary 商品列表
// @Tags Listing
// @Router /api/listings [get]
func (ctrl *ListingController) ListListings(c *gin.Context) {
	var req dto.ListListingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	items, total, err := ctrl.listingService.List(c.Request.Context(), repository.ListingFilter{
		SellerID: req.SellerID,
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "查询失败: " + err.Error(),
		})
		return
	}

	resp := dto.ListingListResponse{Total: total, Items: make([]dto.ListingResponse, 0, len(items))}
	for i := range items {
		resp.Items = append(resp.Items, toListingResponse(&items[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    resp,
	})
}

// UpdateListing 更新商品草稿
// @Summary 更新商品草稿
// @Tags Listing
// @Param id path int true "商品ID"
// @Router /api/listings/{id} [put]
func (ctrl *ListingController) UpdateListing(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	listing, err := ctrl.listingService.Get(ctx, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": "商品不存在",
		})
		return
	}

	if req.Title != nil {
		listing.Title = *req.Title
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}
	if req.CategoryID != nil {
		listing.CategoryID = *req.CategoryID
	}
	if req.CategoryName != nil {
		listing.CategoryName = *req.CategoryName
	}
	if req.ConditionID != nil {
		listing.ConditionID = *req.ConditionID
	}
	if req.ConditionNote != nil {
		listing.ConditionNote = *req.ConditionNote
	}
	if req.Price != nil {
		listing.SetPrice(*req.Price)
	}
	if req.Quantity != nil {
		listing.Quantity = *req.Quantity
	}
	if req.ImageURLs != nil {
		listing.ImageURLs = req.ImageURLs
	}
	if req.ItemSpecifics != nil {
		listing.ItemSpecifics = *req.ItemSpecifics
	}

	if err := ctrl.listingService.Update(ctx, listing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "更新失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toListingResponse(listing),
	})
}

// DeleteListing 删除商品
// @Summary 删除商品
// @Tags Listing
// @Param id path int true "商品ID"
// @Router /api/listings/{id} [delete]
func (ctrl *ListingController) DeleteListing(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := ctrl.listingService.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "删除失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
	})
}

// ConfirmListing 确认草稿进入发布队列
// @Summary 确认草稿进入发布队列
// @Tags Listing
// @Param id path int true "商品ID"
// @Router /api/listings/{id}/confirm [post]
func (ctrl *ListingController) ConfirmListing(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	listing, err := ctrl.listingService.Confirm(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toListingResponse(listing),
	})
}

// GetListingStatus 查询 eBay 端在售状态
// @Summary 查询 eBay 端在售状态
// @Tags Listing
// @Param id path int true "商品ID"
// @Router /api/listings/{id}/status [get]
func (ctrl *ListingController) GetListingStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	offer, err := ctrl.listingService.RemoteStatus(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "查询在售状态失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": dto.ListingStatusResponse{
			OfferID:       offer.OfferID,
			OfferStatus:   offer.Status,
			SKU:           offer.SKU,
			ListingID:     offer.Listing.ListingID,
			ListingStatus: offer.Listing.ListingStatus,
		},
	})
}

// AutofillListing AI 补全缺失的必填属性
// @Summary AI 补全缺失的必填属性
// @Tags Listing
// @Param id path int true "商品ID"
// @Param body body dto.AutofillListingRequest false "识别线索"
// @Router /api/listings/{id}/autofill [post]
func (ctrl *ListingController) AutofillListing(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.AutofillListingRequest
	// body 可以为空
	_ = c.ShouldBindJSON(&req)

	var vision *service.VisionSignals
	if req.Brand != "" || req.Category != "" || req.Color != "" || len(req.Attributes) > 0 {
		vision = &service.VisionSignals{
			Brand:      req.Brand,
			Category:   req.Category,
			Color:      req.Color,
			Attributes: req.Attributes,
		}
	}

	result, err := ctrl.listingService.Autofill(c.Request.Context(), id, vision)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "补全失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    result,
	})
}

// ValidateListing 发布前校验
// @Summary 发布前校验（不发布）
// @Tags Listing
// @Param id path int true "商品ID"
// @Router /api/listings/{id}/validate [post]
func (ctrl *ListingController) ValidateListing(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.ValidateListingRequest
	_ = c.ShouldBindJSON(&req)

	result, err := ctrl.listingService.Validate(c.Request.Context(), id, toPolicySet(req.Policies))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "校验失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    result,
	})
}

// PublishListing 执行发布
// @Summary 发布商品到 eBay
// @Tags Listing
// @Param id path int true "商品ID"
// @Param body body dto.PublishListingRequest false "发布参数"
// @Router /api/listings/{id}/publish [post]
func (ctrl *ListingController) PublishListing(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.PublishListingRequest
	_ = c.ShouldBindJSON(&req)

	result, err := ctrl.listingService.Publish(c.Request.Context(), id, toPolicySet(req.Policies))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
		return
	}

	// 发布失败也是 200：结果里带步骤数组和结构化错误，前端按 suggested_action 渲染
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    result,
	})
}
