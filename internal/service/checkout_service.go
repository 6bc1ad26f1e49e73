package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/driftwear-shop/driftwear/internal/cache"
	"github.com/driftwear-shop/driftwear/internal/config"
	"github.com/driftwear-shop/driftwear/internal/constants"
	"github.com/driftwear-shop/driftwear/internal/logger"
	"github.com/driftwear-shop/driftwear/internal/models"
	"github.com/driftwear-shop/driftwear/internal/payment/stripe"
	"github.com/driftwear-shop/driftwear/internal/repository"
)

const (
	checkoutLockKeyPrefix  = "checkout:lock:"
	defaultLockTTLSeconds  = 30
	defaultReconcileDelayS = 1800
)

// ReconcileEnqueuer 结算对账任务入队接口，由队列客户端实现
type ReconcileEnqueuer interface {
	EnqueueCheckoutReconcile(sessionID string, delay time.Duration) error
}

// CheckoutResult 发起结算的返回，URL 供客户端整页跳转
type CheckoutResult struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// CheckoutService 结算服务。同一购物车同一时刻只允许一个进行中的
// 结算请求；Stripe 返回失败时购物车内容保持不变。
type CheckoutService struct {
	cartRepo repository.CartRepository
	carts    *CartService
	cfg      config.CheckoutConfig
	enqueuer ReconcileEnqueuer
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewCheckoutService 创建结算服务
func NewCheckoutService(cartRepo repository.CartRepository, carts *CartService, cfg config.CheckoutConfig, enqueuer ReconcileEnqueuer) *CheckoutService {
	return &CheckoutService{
		cartRepo: cartRepo,
		carts:    carts,
		cfg:      cfg,
		enqueuer: enqueuer,
		inFlight: map[string]struct{}{},
	}
}

// PayableLines 过滤出可结算条目：仅保留外部价格引用非空的条目。
func PayableLines(lines []models.CartLine) []models.CartLine {
	payable := make([]models.CartLine, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line.StripePriceID) == "" {
			continue
		}
		payable = append(payable, line)
	}
	return payable
}

// Start 发起结算。可结算条目为空时不触发任何网络请求直接报错；
// 成功创建会话后记录 session 并安排延迟对账。
func (s *CheckoutService) Start(ctx context.Context, token string) (*CheckoutResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrCartTokenInvalid
	}

	lines, err := s.carts.Load(token)
	if err != nil {
		return nil, err
	}
	payable := PayableLines(lines)
	if len(payable) == 0 {
		return nil, ErrCheckoutNoPayableItems
	}

	acquired, err := s.acquireLock(ctx, token)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrCheckoutInFlight
	}
	defer s.releaseLock(ctx, token)

	items := make([]stripe.LineItem, 0, len(payable))
	for _, line := range payable {
		items = append(items, stripe.LineItem{
			PriceID:  line.StripePriceID,
			Quantity: line.Quantity,
		})
	}

	result, err := stripe.CreateCheckoutSession(ctx, s.stripeConfig(), stripe.CreateInput{
		CartToken: token,
		Items:     items,
	})
	if err != nil {
		logger.Warnw("checkout_session_create_failed", "token", token, "error", err)
		return nil, ErrCheckoutFailed
	}

	if err := s.cartRepo.SetCheckoutSession(token, result.SessionID, constants.CheckoutStatusPending); err != nil {
		logger.Errorw("checkout_session_record_failed", "token", token, "session_id", result.SessionID, "error", err)
		return nil, err
	}
	s.scheduleReconcile(result.SessionID)

	logger.Infow("checkout_session_created",
		"token", token,
		"session_id", result.SessionID,
		"line_count", len(items),
	)
	return &CheckoutResult{SessionID: result.SessionID, URL: result.URL}, nil
}

// CompleteSession 依据 webhook 或对账结论落定结算结果。
// 成功时清空对应购物车，其余状态仅记录不动购物车。
func (s *CheckoutService) CompleteSession(sessionID, status string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ErrCheckoutFailed
	}
	cart, err := s.cartRepo.GetByCheckoutSession(sessionID)
	if err != nil {
		return err
	}
	if cart == nil {
		logger.Infow("checkout_session_unknown", "session_id", sessionID, "status", status)
		return nil
	}

	switch status {
	case constants.CheckoutStatusSuccess:
		if err := s.carts.Clear(cart.Token); err != nil {
			return err
		}
		if err := s.cartRepo.ClearCheckoutSession(cart.Token, constants.CheckoutStatusSuccess); err != nil {
			return err
		}
		logger.Infow("checkout_completed", "token", cart.Token, "session_id", sessionID)
	case constants.CheckoutStatusExpired, constants.CheckoutStatusFailed:
		if err := s.cartRepo.ClearCheckoutSession(cart.Token, status); err != nil {
			return err
		}
		logger.Infow("checkout_closed_without_payment", "token", cart.Token, "session_id", sessionID, "status", status)
	default:
		// pending 状态不落定，等待后续事件或对账
	}
	return nil
}

// Reconcile 对账：查询 Stripe 会话当前状态并落定。worker 消费延迟
// 任务时调用，覆盖 webhook 丢失的场景。
func (s *CheckoutService) Reconcile(ctx context.Context, sessionID string) error {
	result, err := stripe.QueryCheckoutSession(ctx, s.stripeConfig(), sessionID)
	if err != nil {
		return err
	}
	return s.CompleteSession(sessionID, result.Status)
}

// HandleWebhook 校验 webhook 签名并落定事件声明的状态
func (s *CheckoutService) HandleWebhook(headers map[string]string, body []byte) (*stripe.WebhookResult, error) {
	result, err := stripe.VerifyAndParseWebhook(s.stripeConfig(), headers, body, time.Now())
	if err != nil {
		return nil, err
	}
	if result.Status == "" || result.SessionID == "" {
		logger.Infow("checkout_webhook_ignored", "event_type", result.EventType, "event_id", result.EventID)
		return result, nil
	}
	if err := s.CompleteSession(result.SessionID, result.Status); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *CheckoutService) stripeConfig() *stripe.Config {
	return &stripe.Config{
		SecretKey:               s.cfg.SecretKey,
		WebhookSecret:           s.cfg.WebhookSecret,
		SuccessURL:              s.cfg.SuccessURL,
		CancelURL:               s.cfg.CancelURL,
		APIBaseURL:              s.cfg.APIBaseURL,
		WebhookToleranceSeconds: s.cfg.WebhookToleranceSeconds,
	}
}

func (s *CheckoutService) lockTTL() time.Duration {
	seconds := s.cfg.LockTTLSeconds
	if seconds <= 0 {
		seconds = defaultLockTTLSeconds
	}
	return time.Duration(seconds) * time.Second
}

// acquireLock 获取结算互斥锁。优先走 redis，redis 未启用时退化为
// 进程内锁表。
func (s *CheckoutService) acquireLock(ctx context.Context, token string) (bool, error) {
	if cache.Enabled() {
		return cache.TryLock(ctx, checkoutLockKeyPrefix+token, s.lockTTL())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[token]; busy {
		return false, nil
	}
	s.inFlight[token] = struct{}{}
	return true, nil
}

func (s *CheckoutService) releaseLock(ctx context.Context, token string) {
	if cache.Enabled() {
		if err := cache.ReleaseLock(ctx, checkoutLockKeyPrefix+token); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warnw("checkout_lock_release_failed", "token", token, "error", err)
		}
		return
	}
	s.mu.Lock()
	delete(s.inFlight, token)
	s.mu.Unlock()
}

func (s *CheckoutService) scheduleReconcile(sessionID string) {
	if s.enqueuer == nil {
		return
	}
	delaySeconds := s.cfg.ReconcileDelaySeconds
	if delaySeconds <= 0 {
		delaySeconds = defaultReconcileDelayS
	}
	if err := s.enqueuer.EnqueueCheckoutReconcile(sessionID, time.Duration(delaySeconds)*time.Second); err != nil {
		logger.Warnw("checkout_reconcile_enqueue_failed", "session_id", sessionID, "error", err)
	}
}
