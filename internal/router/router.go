package router

import (
	"fmt"
	"strings"

	"github.com/driftwear-shop/driftwear/internal/cache"
	"github.com/driftwear-shop/driftwear/internal/config"
	publichandlers "github.com/driftwear-shop/driftwear/internal/http/handlers/public"
	"github.com/driftwear-shop/driftwear/internal/logger"
	"github.com/driftwear-shop/driftwear/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "dw"
	}
	redisClient := cache.Client()
	newsletterRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:newsletter", redisPrefix),
		WindowSeconds: cfg.Security.NewsletterRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.NewsletterRateLimit.MaxAttempts,
		Message:       "too many signup attempts",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 店面公开接口
		apiV1.GET("/config", publicHandler.GetConfig)
		apiV1.GET("/products", publicHandler.ListProducts)
		apiV1.GET("/products/:slug", publicHandler.GetProduct)

		// 购物车（以 X-Cart-Token 标识，无需登录）
		cart := apiV1.Group("/cart")
		{
			cart.GET("", publicHandler.GetCart)
			cart.DELETE("", publicHandler.ClearCart)
			cart.POST("/items", publicHandler.AddCartItem)
			cart.POST("/items/:key/increment", publicHandler.IncrementCartItem)
			cart.POST("/items/:key/decrement", publicHandler.DecrementCartItem)
			cart.DELETE("/items/:key", publicHandler.RemoveCartItem)
			cart.POST("/checkout", publicHandler.StartCheckout)
		}

		// Stripe webhook
		apiV1.POST("/checkout/webhook", publicHandler.CheckoutWebhook)

		// 邮件订阅（按邮箱 + IP 限流）
		apiV1.POST("/newsletter/subscribe",
			RateLimitMiddleware(redisClient, newsletterRule, KeyByIPAndJSONField("email")),
			publicHandler.SubscribeNewsletter,
		)

		// 3D 试穿素材：签发需要角色令牌，取回凭签名地址
		media := apiV1.Group("/media")
		{
			media.POST("/:id/sign",
				MediaJWTAuthMiddleware(cfg.Media.JWTSecret, cfg.Media.RequiredRole),
				publicHandler.SignMediaURL,
			)
			media.GET("/:id", publicHandler.ServeMedia)
		}
	}

	return r
}
