package service

import (
	"strings"

	"github.com/driftwear-shop/driftwear/internal/config"
	"github.com/driftwear-shop/driftwear/internal/models"
	"github.com/driftwear-shop/driftwear/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductView 商品列表与详情的展示形态
type ProductView struct {
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Variants     []string `json:"variants,omitempty"`
	PriceCents   int64    `json:"price_cents"`
	Price        string   `json:"price"`
	CurrencyCode string   `json:"currency_code"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
	Images       []string `json:"images,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	DetailURL    string   `json:"detail_url"`
	HasTryOn     bool     `json:"has_try_on"`
}

// ProductListInput 商品列表查询输入
type ProductListInput struct {
	Search   string
	Tag      string
	Page     int
	PageSize int
}

// ProductListResult 商品列表查询返回
type ProductListResult struct {
	Items []ProductView `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
}

// ProductService 商品目录服务
type ProductService struct {
	repo repository.ProductRepository
	cfg  config.CartConfig
}

// NewProductService 创建商品目录服务
func NewProductService(repo repository.ProductRepository, cfg config.CartConfig) *ProductService {
	return &ProductService{repo: repo, cfg: cfg}
}

// List 商品列表，支持关键字搜索与标签过滤
func (s *ProductService) List(input ProductListInput) (*ProductListResult, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	products, total, err := s.repo.List(repository.ProductListFilter{
		Search:     strings.TrimSpace(input.Search),
		Tag:        strings.TrimSpace(input.Tag),
		OnlyActive: true,
		Page:       page,
		PageSize:   input.PageSize,
	})
	if err != nil {
		return nil, err
	}
	items := make([]ProductView, 0, len(products))
	for i := range products {
		items = append(items, s.toView(&products[i]))
	}
	return &ProductListResult{Items: items, Total: total, Page: page}, nil
}

// Detail 按 slug 取商品详情
func (s *ProductService) Detail(slug string) (*ProductView, error) {
	product, err := s.repo.GetBySlug(strings.TrimSpace(slug), true)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotAvailable
	}
	view := s.toView(product)
	return &view, nil
}

func (s *ProductService) toView(product *models.Product) ProductView {
	cents := product.PriceAmount.MinorUnits()
	return ProductView{
		Slug:         product.Slug,
		Title:        product.Title,
		Description:  product.Description,
		Variants:     product.Variants,
		PriceCents:   cents,
		Price:        s.cfg.CurrencySymbol + decimal.NewFromInt(cents).Shift(-2).StringFixed(2),
		CurrencyCode: s.cfg.CurrencyCode,
		ThumbnailURL: product.ThumbnailURL,
		Images:       product.Images,
		Tags:         product.Tags,
		DetailURL:    product.DetailURL(),
		HasTryOn:     strings.TrimSpace(product.MediaAssetID) != "",
	}
}
