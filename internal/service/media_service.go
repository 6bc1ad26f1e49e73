package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/driftwear-shop/driftwear/internal/config"
	"github.com/driftwear-shop/driftwear/internal/repository"
)

// 素材 ID 只允许字母数字、连字符与下划线，防止路径拼接逃逸
var mediaAssetIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// SignedMediaURL 签名素材地址
type SignedMediaURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MediaService 3D 试穿素材服务。素材地址经 HMAC 签名且短时有效，
// 签名覆盖素材 ID、类型与过期时间。
type MediaService struct {
	productRepo repository.ProductRepository
	cfg         config.MediaConfig
	now         func() time.Time
}

// NewMediaService 创建素材服务
func NewMediaService(productRepo repository.ProductRepository, cfg config.MediaConfig) *MediaService {
	return &MediaService{
		productRepo: productRepo,
		cfg:         cfg,
		now:         time.Now,
	}
}

// SignedURL 为素材生成带签名的短时地址。素材必须挂在在售商品上，
// 类型必须匹配配置允许的类型。
func (s *MediaService) SignedURL(assetID, assetType string) (*SignedMediaURL, error) {
	assetID = strings.TrimSpace(assetID)
	if assetID == "" || !mediaAssetIDPattern.MatchString(assetID) {
		return nil, ErrMediaIDInvalid
	}
	assetType = strings.ToLower(strings.TrimSpace(assetType))
	if assetType == "" || assetType != strings.ToLower(strings.TrimSpace(s.cfg.AllowedAssetType)) {
		return nil, ErrMediaTypeInvalid
	}

	product, err := s.productRepo.GetByMediaAssetID(assetID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrMediaNotFound
	}

	ttl := s.cfg.URLTTLSeconds
	if ttl <= 0 {
		ttl = 300
	}
	expiresAt := s.now().Add(time.Duration(ttl) * time.Second)
	expires := strconv.FormatInt(expiresAt.Unix(), 10)
	signature := s.sign(assetID, assetType, expires)

	query := url.Values{}
	query.Set("type", assetType)
	query.Set("expires", expires)
	query.Set("signature", signature)
	base := strings.TrimRight(strings.TrimSpace(s.cfg.BaseURL), "/")
	return &SignedMediaURL{
		URL:       fmt.Sprintf("%s/api/v1/media/%s?%s", base, url.PathEscape(assetID), query.Encode()),
		ExpiresAt: expiresAt,
	}, nil
}

// VerifySignature 校验签名地址是否有效且未过期
func (s *MediaService) VerifySignature(assetID, assetType, expires, signature string) error {
	assetID = strings.TrimSpace(assetID)
	if assetID == "" || !mediaAssetIDPattern.MatchString(assetID) {
		return ErrMediaIDInvalid
	}
	assetType = strings.ToLower(strings.TrimSpace(assetType))
	expiresUnix, err := strconv.ParseInt(strings.TrimSpace(expires), 10, 64)
	if err != nil || expiresUnix <= 0 {
		return ErrMediaSignatureInvalid
	}

	expected := s.sign(assetID, assetType, strings.TrimSpace(expires))
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature)))) {
		return ErrMediaSignatureInvalid
	}
	if s.now().Unix() > expiresUnix {
		return ErrMediaURLExpired
	}
	return nil
}

// AssetPath 返回素材在磁盘上的路径
func (s *MediaService) AssetPath(assetID, assetType string) string {
	filename := assetID + "." + assetType
	return filepath.Join(s.cfg.AssetDir, filepath.Base(filename))
}

func (s *MediaService) sign(assetID, assetType, expires string) string {
	payload := assetID + "|" + assetType + "|" + expires
	h := hmac.New(sha256.New, []byte(s.cfg.SigningSecret))
	_, _ = h.Write([]byte(payload))
	return strings.ToLower(hex.EncodeToString(h.Sum(nil)))
}
