package service

import (
	"strings"

	"github.com/driftwear-shop/driftwear/internal/config"
	"github.com/driftwear-shop/driftwear/internal/constants"
	"github.com/driftwear-shop/driftwear/internal/models"

	"github.com/shopspring/decimal"
)

// CartRowView 单条购物车条目的展示形态
type CartRowView struct {
	Key            string `json:"key"`
	ProductID      string `json:"product_id"`
	Title          string `json:"title"`
	Variant        string `json:"variant,omitempty"`
	ThumbnailURL   string `json:"thumbnail_url,omitempty"`
	DetailURL      string `json:"detail_url,omitempty"`
	Quantity       int    `json:"qty"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	UnitPrice      string `json:"unit_price"`
	LineTotalCents int64  `json:"line_total_cents"`
	LineTotal      string `json:"line_total"`
}

// DiscountView 折扣行展示形态
type DiscountView struct {
	Code        string  `json:"code,omitempty"`
	Percent     float64 `json:"percent"`
	AmountCents int64   `json:"amount_cents"`
	Amount      string  `json:"amount"`
}

// CartView 购物车完整展示形态。同一份数据按抽屉与整页两个界面消费，
// 界面优先级：整页 > 抽屉 > 无。
type CartView struct {
	Surface         string        `json:"surface"`
	Empty           bool          `json:"empty"`
	Rows            []CartRowView `json:"rows"`
	BadgeCount      int           `json:"badge_count"`
	SubtotalCents   int64         `json:"subtotal_cents"`
	Subtotal        string        `json:"subtotal"`
	Discount        *DiscountView `json:"discount,omitempty"`
	TotalCents      int64         `json:"total_cents"`
	Total           string        `json:"total"`
	CurrencyCode    string        `json:"currency_code"`
	CheckoutEnabled bool          `json:"checkout_enabled"`
}

// CartViewBuilder 购物车视图构建器
type CartViewBuilder struct {
	carts *CartService
	cfg   config.CartConfig
}

// NewCartViewBuilder 创建购物车视图构建器
func NewCartViewBuilder(carts *CartService, cfg config.CartConfig) *CartViewBuilder {
	return &CartViewBuilder{carts: carts, cfg: cfg}
}

// Build 按声明的界面集合构建购物车视图
func (b *CartViewBuilder) Build(lines []models.CartLine, surfaces []string) CartView {
	view := CartView{
		Surface:      ResolveSurface(surfaces),
		Rows:         make([]CartRowView, 0, len(lines)),
		CurrencyCode: b.cfg.CurrencyCode,
	}

	for _, line := range lines {
		lineTotal := line.PriceCents * int64(line.Quantity)
		view.Rows = append(view.Rows, CartRowView{
			Key:            line.Key,
			ProductID:      line.ProductID,
			Title:          line.Title,
			Variant:        line.Variant,
			ThumbnailURL:   line.ThumbnailURL,
			DetailURL:      line.DetailURL,
			Quantity:       line.Quantity,
			UnitPriceCents: line.PriceCents,
			UnitPrice:      b.FormatCents(line.PriceCents),
			LineTotalCents: lineTotal,
			LineTotal:      b.FormatCents(lineTotal),
		})
	}

	view.BadgeCount = b.carts.ItemCount(lines)
	view.SubtotalCents = b.carts.SubtotalCents(lines)
	view.Subtotal = b.FormatCents(view.SubtotalCents)
	view.Empty = len(lines) == 0

	view.TotalCents = view.SubtotalCents
	if discount := b.carts.ActiveDiscount(view.SubtotalCents); discount != nil {
		view.Discount = &DiscountView{
			Code:        discount.Code,
			Percent:     discount.Percent,
			AmountCents: discount.AmountCents,
			Amount:      b.FormatCents(discount.AmountCents),
		}
		view.TotalCents = view.SubtotalCents - discount.AmountCents
		if view.TotalCents < 0 {
			view.TotalCents = 0
		}
	}
	view.Total = b.FormatCents(view.TotalCents)
	view.CheckoutEnabled = !view.Empty

	return view
}

// FormatCents 最小单位金额格式化为带符号的两位小数字符串
func (b *CartViewBuilder) FormatCents(cents int64) string {
	amount := decimal.NewFromInt(cents).Shift(-2)
	return b.cfg.CurrencySymbol + amount.StringFixed(2)
}

// ResolveSurface 解析客户端声明的界面集合。整页优先于抽屉，
// 都不存在时视为无界面。
func ResolveSurface(surfaces []string) string {
	hasDrawer := false
	for _, surface := range surfaces {
		switch strings.ToLower(strings.TrimSpace(surface)) {
		case constants.CartSurfacePage:
			return constants.CartSurfacePage
		case constants.CartSurfaceDrawer:
			hasDrawer = true
		}
	}
	if hasDrawer {
		return constants.CartSurfaceDrawer
	}
	return constants.CartSurfaceNone
}
