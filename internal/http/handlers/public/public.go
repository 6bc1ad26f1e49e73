package public

import (
	"time"

	"github.com/driftwear-shop/driftwear/internal/cache"
	"github.com/driftwear-shop/driftwear/internal/http/response"

	"github.com/gin-gonic/gin"
)

const (
	publicConfigCacheKey = "public:config"
	publicConfigCacheTTL = 60 * time.Second
)

// GetConfig 获取店面全局配置：货币与当前生效的全局折扣
func (h *Handler) GetConfig(c *gin.Context) {
	var cached map[string]interface{}
	if hit, err := cache.GetJSON(c.Request.Context(), publicConfigCacheKey, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	data := map[string]interface{}{
		"currency_code":   h.Config.Cart.CurrencyCode,
		"currency_symbol": h.Config.Cart.CurrencySymbol,
	}
	if h.Config.Cart.Discount.Enabled && h.Config.Cart.Discount.Percent > 0 {
		data["discount"] = map[string]interface{}{
			"code":    h.Config.Cart.Discount.Code,
			"percent": h.Config.Cart.Discount.Percent,
		}
	}

	_ = cache.SetJSON(c.Request.Context(), publicConfigCacheKey, data, publicConfigCacheTTL)
	response.Success(c, data)
}
