package constants

// 购物车展示面板常量
const (
	CartSurfacePage   = "page"
	CartSurfaceDrawer = "drawer"
	CartSurfaceNone   = "none"
)

// 购物车项 key 的变体分隔符
const CartKeyVariantSeparator = "__"

// 队列名称常量
const (
	QueueDefault = "default"
)

// 异步任务类型常量
const (
	TaskNewsletterDeliver = "newsletter:deliver"
	TaskCheckoutReconcile = "checkout:reconcile"
)

// 邮件订阅状态常量
const (
	NewsletterStatusPending   = "pending"
	NewsletterStatusDelivered = "delivered"
	NewsletterStatusFailed    = "failed"
)

// 结算会话状态常量
const (
	CheckoutStatusPending = "pending"
	CheckoutStatusSuccess = "success"
	CheckoutStatusExpired = "expired"
	CheckoutStatusFailed  = "failed"
)

// 购物车令牌请求头
const CartTokenHeader = "X-Cart-Token"
