package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/driftwear-shop/driftwear/internal/logger"
	"github.com/driftwear-shop/driftwear/internal/provider"
	"github.com/driftwear-shop/driftwear/internal/queue"
	"github.com/driftwear-shop/driftwear/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskNewsletterDeliver, c.handleNewsletterDeliver)
	mux.HandleFunc(queue.TaskCheckoutReconcile, c.handleCheckoutReconcile)
}

func (c *Consumer) handleNewsletterDeliver(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_newsletter_deliver_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.NewsletterDeliverPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_newsletter_deliver_unmarshal_failed", "error", err)
		return err
	}
	if payload.SubscriberID == 0 {
		logger.Debugw("worker_newsletter_deliver_skip_invalid_payload", "subscriber_id", payload.SubscriberID)
		return nil
	}
	if c.NewsletterService == nil {
		logger.Warnw("worker_newsletter_deliver_skip_service_nil", "subscriber_id", payload.SubscriberID)
		return nil
	}
	if err := c.NewsletterService.Deliver(ctx, payload.SubscriberID); err != nil {
		logger.Warnw("worker_newsletter_deliver_failed", "subscriber_id", payload.SubscriberID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleCheckoutReconcile(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_checkout_reconcile_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CheckoutReconcilePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_checkout_reconcile_unmarshal_failed", "error", err)
		return err
	}
	if strings.TrimSpace(payload.SessionID) == "" {
		logger.Debugw("worker_checkout_reconcile_skip_invalid_payload")
		return nil
	}
	if c.CheckoutService == nil {
		logger.Warnw("worker_checkout_reconcile_skip_service_nil", "session_id", payload.SessionID)
		return nil
	}
	if err := c.CheckoutService.Reconcile(ctx, payload.SessionID); err != nil {
		if errors.Is(err, service.ErrCheckoutFailed) {
			logger.Debugw("worker_checkout_reconcile_skip_failed_session", "session_id", payload.SessionID)
			return nil
		}
		logger.Warnw("worker_checkout_reconcile_failed", "session_id", payload.SessionID, "error", err)
		return err
	}
	return nil
}
