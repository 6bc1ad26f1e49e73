package public

import (
	"io"
	"net/http"

	"github.com/driftwear-shop/driftwear/internal/http/response"
	"github.com/driftwear-shop/driftwear/internal/logger"

	"github.com/gin-gonic/gin"
)

// StartCheckout 发起结算。成功时返回 Stripe Checkout 跳转地址，
// 客户端整页跳转；失败时购物车内容保持不变。
func (h *Handler) StartCheckout(c *gin.Context) {
	token := cartToken(c)
	result, err := h.CheckoutService.Start(c.Request.Context(), token)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, result)
}

// CheckoutWebhook 接收 Stripe webhook。签名校验失败返回 400，
// 处理成功始终返回 200 防止重复投递。
func (h *Handler) CheckoutWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.String(http.StatusBadRequest, "read body failed")
		return
	}
	headers := map[string]string{
		"Stripe-Signature": c.GetHeader("Stripe-Signature"),
	}
	result, err := h.CheckoutService.HandleWebhook(headers, body)
	if err != nil {
		logger.Warnw("checkout_webhook_rejected", "error", err)
		c.String(http.StatusBadRequest, "webhook rejected")
		return
	}
	logger.Infow("checkout_webhook_processed", "event_id", result.EventID, "event_type", result.EventType)
	c.String(http.StatusOK, "ok")
}
