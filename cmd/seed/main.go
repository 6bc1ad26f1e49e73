package main

import (
	"github.com/driftwear-shop/driftwear/internal/config"
	"github.com/driftwear-shop/driftwear/internal/logger"
	"github.com/driftwear-shop/driftwear/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加商品
	products := []models.Product{
		{
			Slug:          "heavyweight-tee",
			Title:         "Heavyweight Cotton Tee",
			Description:   "Garment-dyed 240gsm cotton tee with a boxy fit.",
			Variants:      models.StringArray([]string{"S", "M", "L", "XL"}),
			PriceAmount:   models.NewMoneyFromDecimal(decimal.NewFromFloat(24.99)),
			PriceCurrency: "USD",
			StripePriceID: "price_heavyweight_tee",
			ThumbnailURL:  "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=800",
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=800",
			}),
			Tags:         models.StringArray([]string{"Tops", "Essentials"}),
			MediaAssetID: "asset-heavyweight-tee",
			IsActive:     true,
			SortOrder:    30,
		},
		{
			Slug:          "canvas-bucket-hat",
			Title:         "Canvas Bucket Hat",
			Description:   "Washed canvas bucket hat with embroidered logo.",
			PriceAmount:   models.NewMoneyFromDecimal(decimal.NewFromFloat(18)),
			PriceCurrency: "USD",
			StripePriceID: "price_canvas_bucket_hat",
			ThumbnailURL:  "https://images.unsplash.com/photo-1556306535-0f09a537f0a3?w=800",
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1556306535-0f09a537f0a3?w=800",
			}),
			Tags:      models.StringArray([]string{"Headwear"}),
			IsActive:  true,
			SortOrder: 20,
		},
		{
			Slug:          "oversized-hoodie",
			Title:         "Oversized Fleece Hoodie",
			Description:   "Brushed-back fleece hoodie with dropped shoulders.",
			Variants:      models.StringArray([]string{"S", "M", "L", "XL"}),
			PriceAmount:   models.NewMoneyFromDecimal(decimal.NewFromFloat(64.5)),
			PriceCurrency: "USD",
			StripePriceID: "price_oversized_hoodie",
			ThumbnailURL:  "https://images.unsplash.com/photo-1556821840-3a63f95609a7?w=800",
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1556821840-3a63f95609a7?w=800",
			}),
			Tags:         models.StringArray([]string{"Tops", "Fleece"}),
			MediaAssetID: "asset-oversized-hoodie",
			IsActive:     true,
			SortOrder:    10,
		},
		{
			Slug:          "cargo-pant",
			Title:         "Ripstop Cargo Pant",
			Description:   "Relaxed ripstop cargo pant with adjustable hem.",
			Variants:      models.StringArray([]string{"28", "30", "32", "34", "36"}),
			PriceAmount:   models.NewMoneyFromDecimal(decimal.NewFromFloat(78)),
			PriceCurrency: "USD",
			StripePriceID: "price_cargo_pant",
			ThumbnailURL:  "https://images.unsplash.com/photo-1517445312882-bc9910d016b7?w=800",
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1517445312882-bc9910d016b7?w=800",
			}),
			Tags:      models.StringArray([]string{"Bottoms"}),
			IsActive:  true,
			SortOrder: 5,
		},
	}

	for _, product := range products {
		var existing models.Product
		if err := models.DB.Where("slug = ?", product.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", product.Slug, err)
			} else {
				stdLog.Printf("Created product: %s", product.Slug)
			}
		} else {
			stdLog.Printf("Product already exists: %s", product.Slug)
		}
	}

	stdLog.Printf("Seed finished")
}
