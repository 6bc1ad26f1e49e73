package provider

import (
	"github.com/driftwear-shop/driftwear/internal/cache"
	"github.com/driftwear-shop/driftwear/internal/config"
	"github.com/driftwear-shop/driftwear/internal/logger"
	"github.com/driftwear-shop/driftwear/internal/models"
	"github.com/driftwear-shop/driftwear/internal/queue"
	"github.com/driftwear-shop/driftwear/internal/repository"
	"github.com/driftwear-shop/driftwear/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	CartRepo       repository.CartRepository
	ProductRepo    repository.ProductRepository
	NewsletterRepo repository.NewsletterRepository

	// Services
	CartService       *service.CartService
	CartViewBuilder   *service.CartViewBuilder
	CheckoutService   *service.CheckoutService
	ProductService    *service.ProductService
	NewsletterService *service.NewsletterService
	MediaService      *service.MediaService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.CartRepo = repository.NewCartRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.NewsletterRepo = repository.NewNewsletterRepository(db)
}

func (c *Container) initServices() {
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo, c.Config.Cart.Discount)
	c.CartViewBuilder = service.NewCartViewBuilder(c.CartService, c.Config.Cart)
	c.CheckoutService = service.NewCheckoutService(c.CartRepo, c.CartService, c.Config.Checkout, c.QueueClient)
	c.ProductService = service.NewProductService(c.ProductRepo, c.Config.Cart)
	c.NewsletterService = service.NewNewsletterService(c.NewsletterRepo, c.Config.Newsletter, c.QueueClient)
	c.MediaService = service.NewMediaService(c.ProductRepo, c.Config.Media)
}
