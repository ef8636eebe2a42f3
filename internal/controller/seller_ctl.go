package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ebay_dev_v1_202608/internal/api/dto"
	"ebay_dev_v1_202608/internal/model"
	"ebay_dev_v1_202608/internal/repository"
)

// ==================== 控制器 ====================

// SellerController 卖家账号控制器
type SellerController struct {
	sellerRepo repository.SellerRepository
}

func NewSellerController(sellerRepo repository.SellerRepository) *SellerController {
	return &SellerController{sellerRepo: sellerRepo}
}

func toSellerResponse(s *model.SellerAccount) dto.SellerResponse {
	return dto.SellerResponse{
		ID:                  s.ID,
		Name:                s.Name,
		EbayUserID:          s.EbayUserID,
		MarketplaceID:       s.MarketplaceID,
		TokenStatus:         s.TokenStatus,
		MerchantLocationKey: s.MerchantLocationKey,
		Connected:           s.IsConnected(),
		NeedsReauth:         s.NeedsReauth(),
	}
}

// ==================== API 方法 ====================

// CreateSeller 录入卖家账号
// @Summary 录入卖家账号（Token 由外部授权流程获得）
// @Tags Seller
// @Router /api/sellers [post]
func (ctrl *SellerController) CreateSeller(c *gin.Context) {
	var req dto.CreateSellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	seller := &model.SellerAccount{
		Name:          req.Name,
		EbayUserID:    req.EbayUserID,
		MarketplaceID: req.MarketplaceID,
		AccessToken:   req.AccessToken,
		RefreshToken:  req.RefreshToken,
		TokenStatus:   model.TokenStatusOK,
		// 外部授权流程不回传精确有效期时按 2 小时兜底
		AccessExpiresAt: time.Now().Add(2 * time.Hour),
	}

	if err := ctrl.sellerRepo.Create(c.Request.Context(), seller); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "创建失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "success",
		"data":    toSellerResponse(seller),
	})
}

// GetSeller 查询卖家账号
// @Summary 查询卖家账号
// @Tags Seller
// @Router /api/sellers/{id} [get]
func (ctrl *SellerController) GetSeller(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的账号ID",
		})
		return
	}

	seller, err := ctrl.sellerRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": "账号不存在",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toSellerResponse(seller),
	})
}

// ListSellers 卖家账号列表
// @Summary 卖家账号列表
// @Tags Seller
// @Router /api/sellers [get]
func (ctrl *SellerController) ListSellers(c *gin.Context) {
	sellers, err := ctrl.sellerRepo.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "查询失败: " + err.Error(),
		})
		return
	}

	items := make([]dto.SellerResponse, 0, len(sellers))
	for i := range sellers {
		items = append(items, toSellerResponse(&sellers[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    items,
	})
}
