package public

import (
	"errors"

	"github.com/driftwear-shop/driftwear/internal/http/response"
	"github.com/driftwear-shop/driftwear/internal/service"

	"github.com/gin-gonic/gin"
)

// NewsletterSubscribeRequest 邮件订阅请求
type NewsletterSubscribeRequest struct {
	Email string `json:"email" binding:"required"`
}

// SubscribeNewsletter 报名邮件订阅。落库即返回，投递异步进行。
func (h *Handler) SubscribeNewsletter(c *gin.Context) {
	var req NewsletterSubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.NewsletterService.Subscribe(req.Email); err != nil {
		if errors.Is(err, service.ErrNewsletterEmailInvalid) {
			respondError(c, response.CodeBadRequest, "email invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "newsletter subscribe failed", err)
		return
	}
	response.SuccessWithMsg(c, "subscribed", nil)
}
