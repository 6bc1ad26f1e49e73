package public

import (
	"errors"

	"github.com/driftwear-shop/driftwear/internal/http/response"
	"github.com/driftwear-shop/driftwear/internal/logger"
	"github.com/driftwear-shop/driftwear/internal/service"

	"github.com/gin-gonic/gin"
)

// respondError 输出统一错误响应，内部错误记录日志但不回传细节
func respondError(c *gin.Context, code int, msg string, err error) {
	if err != nil {
		logger.Warnw("api_request_failed",
			"path", c.FullPath(),
			"code", code,
			"msg", msg,
			"error", err,
		)
	}
	response.Error(c, code, msg)
}

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrCartTokenInvalid, code: response.CodeBadRequest, msg: "cart token invalid"},
	{target: service.ErrCartItemInvalid, code: response.CodeBadRequest, msg: "cart item invalid"},
	{target: service.ErrCartItemNotFound, code: response.CodeNotFound, msg: "cart item not found"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, msg: "product not available"},
}

var checkoutErrorRules = []mappedHandlerError{
	{target: service.ErrCartTokenInvalid, code: response.CodeBadRequest, msg: "cart token invalid"},
	{target: service.ErrCheckoutNoPayableItems, code: response.CodeBadRequest, msg: "no payable items in cart"},
	{target: service.ErrCheckoutInFlight, code: response.CodeConflict, msg: "checkout already in progress"},
	{target: service.ErrCheckoutFailed, code: response.CodeInternal, msg: "checkout session create failed"},
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "cart operation failed")
}

func respondCheckoutError(c *gin.Context, err error) {
	respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "checkout failed")
}
