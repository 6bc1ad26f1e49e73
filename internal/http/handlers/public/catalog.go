package public

import (
	"errors"
	"strconv"

	"github.com/driftwear-shop/driftwear/internal/http/response"
	"github.com/driftwear-shop/driftwear/internal/service"

	"github.com/gin-gonic/gin"
)

// ListProducts 商品列表，支持 search / tag / page / page_size 查询参数
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.ProductService.List(service.ProductListInput{
		Search:   c.Query("search"),
		Tag:      c.Query("tag"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "product list failed", err)
		return
	}

	totalPage := int64(0)
	if pageSize > 0 {
		totalPage = (result.Total + int64(pageSize) - 1) / int64(pageSize)
	}
	response.SuccessWithPage(c, result.Items, response.Pagination{
		Page:      result.Page,
		PageSize:  pageSize,
		Total:     result.Total,
		TotalPage: totalPage,
	})
}

// GetProduct 商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	view, err := h.ProductService.Detail(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrProductNotAvailable) {
			respondError(c, response.CodeNotFound, "product not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}
	response.Success(c, view)
}
