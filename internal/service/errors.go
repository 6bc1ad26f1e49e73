package service

import "errors"

// 业务错误定义，handler 层通过 errors.Is 映射为接口错误响应。
var (
	ErrCartTokenInvalid       = errors.New("cart token invalid")
	ErrCartItemInvalid        = errors.New("cart item invalid")
	ErrCartItemNotFound       = errors.New("cart item not found")
	ErrProductNotAvailable    = errors.New("product not available")
	ErrCheckoutNoPayableItems = errors.New("checkout has no payable items")
	ErrCheckoutInFlight       = errors.New("checkout already in flight")
	ErrCheckoutFailed         = errors.New("checkout session create failed")
	ErrNewsletterEmailInvalid = errors.New("newsletter email invalid")
	ErrMediaIDInvalid         = errors.New("media id invalid")
	ErrMediaTypeInvalid       = errors.New("media type invalid")
	ErrMediaNotFound          = errors.New("media asset not found")
	ErrMediaSignatureInvalid  = errors.New("media signature invalid")
	ErrMediaURLExpired        = errors.New("media url expired")
)
