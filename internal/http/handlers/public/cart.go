package public

import (
	"strings"

	"github.com/driftwear-shop/driftwear/internal/http/response"
	"github.com/driftwear-shop/driftwear/internal/service"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 加购请求。price_cents 与 price 二选一，都缺省时
// 以商品目录价格为准。
type AddCartItemRequest struct {
	ProductID     string `json:"product_id" binding:"required"`
	Title         string `json:"title"`
	Variant       string `json:"variant"`
	ThumbnailURL  string `json:"thumbnail_url"`
	DetailURL     string `json:"detail_url"`
	PriceCents    *int64 `json:"price_cents"`
	Price         string `json:"price"`
	StripePriceID string `json:"stripe_price_id"`
}

// GetCart 获取购物车视图。surfaces 声明客户端当前挂载的购物车界面，
// 逗号分隔（page / drawer）。
func (h *Handler) GetCart(c *gin.Context) {
	token := cartToken(c)
	lines, err := h.CartService.Load(token)
	if err != nil {
		respondCartError(c, err)
		return
	}
	surfaces := splitSurfaces(c.Query("surfaces"))
	response.Success(c, h.CartViewBuilder.Build(lines, surfaces))
}

// AddCartItem 加入购物车
func (h *Handler) AddCartItem(c *gin.Context) {
	token := cartToken(c)
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	lines, err := h.CartService.AddItem(token, service.AddCartItemInput{
		ProductID:     req.ProductID,
		Title:         req.Title,
		Variant:       req.Variant,
		ThumbnailURL:  req.ThumbnailURL,
		DetailURL:     req.DetailURL,
		PriceCents:    req.PriceCents,
		Price:         req.Price,
		StripePriceID: req.StripePriceID,
	})
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, h.CartViewBuilder.Build(lines, splitSurfaces(c.Query("surfaces"))))
}

// IncrementCartItem 条目数量 +1
func (h *Handler) IncrementCartItem(c *gin.Context) {
	h.adjustCartItem(c, +1)
}

// DecrementCartItem 条目数量 -1，减到 0 时移除
func (h *Handler) DecrementCartItem(c *gin.Context) {
	h.adjustCartItem(c, -1)
}

// RemoveCartItem 删除条目，条目不存在时同样返回成功
func (h *Handler) RemoveCartItem(c *gin.Context) {
	token := cartToken(c)
	lines, err := h.CartService.RemoveItem(token, c.Param("key"))
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, h.CartViewBuilder.Build(lines, splitSurfaces(c.Query("surfaces"))))
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	token := cartToken(c)
	if err := h.CartService.Clear(token); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, h.CartViewBuilder.Build(nil, splitSurfaces(c.Query("surfaces"))))
}

func (h *Handler) adjustCartItem(c *gin.Context, delta int) {
	token := cartToken(c)
	key := c.Param("key")
	adjust := h.CartService.IncrementItem
	if delta < 0 {
		adjust = h.CartService.DecrementItem
	}
	lines, err := adjust(token, key)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, h.CartViewBuilder.Build(lines, splitSurfaces(c.Query("surfaces"))))
}

func splitSurfaces(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	surfaces := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		surfaces = append(surfaces, part)
	}
	return surfaces
}
