package queue

import (
	"encoding/json"

	"github.com/driftwear-shop/driftwear/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskNewsletterDeliver 邮件订阅投递任务
	TaskNewsletterDeliver = constants.TaskNewsletterDeliver
	// TaskCheckoutReconcile 结算会话对账任务
	TaskCheckoutReconcile = constants.TaskCheckoutReconcile
)

// NewsletterDeliverPayload 邮件订阅投递任务载荷
type NewsletterDeliverPayload struct {
	SubscriberID uint `json:"subscriber_id"`
}

// CheckoutReconcilePayload 结算对账任务载荷
type CheckoutReconcilePayload struct {
	SessionID string `json:"session_id"`
}

// NewNewsletterDeliverTask 创建邮件订阅投递任务
func NewNewsletterDeliverTask(payload NewsletterDeliverPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNewsletterDeliver, body), nil
}

// NewCheckoutReconcileTask 创建结算对账任务
func NewCheckoutReconcileTask(payload CheckoutReconcilePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCheckoutReconcile, body), nil
}
