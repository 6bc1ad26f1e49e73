package public

import (
	"strings"

	"github.com/driftwear-shop/driftwear/internal/constants"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// cartToken 读取请求携带的购物车令牌。未携带时签发新令牌并通过
// 响应头回传，客户端后续请求需原样带回。
func cartToken(c *gin.Context) string {
	token := strings.TrimSpace(c.GetHeader(constants.CartTokenHeader))
	if token == "" {
		token = uuid.NewString()
	}
	c.Header(constants.CartTokenHeader, token)
	return token
}
