package public

import (
	"errors"
	"net/http"
	"os"

	"github.com/driftwear-shop/driftwear/internal/http/response"
	"github.com/driftwear-shop/driftwear/internal/logger"
	"github.com/driftwear-shop/driftwear/internal/service"

	"github.com/gin-gonic/gin"
)

// SignMediaURL 为试穿素材签发短时地址。路由前置了 JWT 角色校验，
// 走到这里的请求已具备访问资格。
func (h *Handler) SignMediaURL(c *gin.Context) {
	signed, err := h.MediaService.SignedURL(c.Param("id"), c.Query("type"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMediaIDInvalid):
			respondError(c, response.CodeBadRequest, "media id invalid", nil)
		case errors.Is(err, service.ErrMediaTypeInvalid):
			respondError(c, response.CodeBadRequest, "media type invalid", nil)
		case errors.Is(err, service.ErrMediaNotFound):
			respondError(c, response.CodeNotFound, "media not found", nil)
		default:
			respondError(c, response.CodeInternal, "media sign failed", err)
		}
		return
	}
	response.Success(c, signed)
}

// ServeMedia 按签名地址提供素材文件。素材由 3D 查看器直接加载，
// 错误以纯文本状态码返回而非统一响应结构。
func (h *Handler) ServeMedia(c *gin.Context) {
	assetID := c.Param("id")
	assetType := c.Query("type")
	err := h.MediaService.VerifySignature(assetID, assetType, c.Query("expires"), c.Query("signature"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMediaIDInvalid):
			c.String(http.StatusBadRequest, "bad request")
		case errors.Is(err, service.ErrMediaURLExpired):
			c.String(http.StatusForbidden, "url expired")
		default:
			c.String(http.StatusForbidden, "forbidden")
		}
		return
	}

	path := h.MediaService.AssetPath(assetID, assetType)
	if _, statErr := os.Stat(path); statErr != nil {
		logger.Warnw("media_asset_missing", "asset_id", assetID, "error", statErr)
		c.String(http.StatusNotFound, "not found")
		return
	}
	c.Header("Cache-Control", "private, max-age=60")
	c.File(path)
}
