package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/driftwear-shop/driftwear/internal/config"
	"github.com/driftwear-shop/driftwear/internal/constants"
	"github.com/driftwear-shop/driftwear/internal/logger"
	"github.com/driftwear-shop/driftwear/internal/models"
	"github.com/driftwear-shop/driftwear/internal/repository"
)

const defaultNewsletterTimeoutS = 10

// NewsletterEnqueuer 邮件订阅投递任务入队接口
type NewsletterEnqueuer interface {
	EnqueueNewsletterDeliver(subscriberID uint) error
}

// NewsletterService 邮件订阅服务。报名立即落库返回，向上游服务商的
// 投递由队列异步完成，失败会按队列策略重试。
type NewsletterService struct {
	repo     repository.NewsletterRepository
	cfg      config.NewsletterConfig
	enqueuer NewsletterEnqueuer
	client   *http.Client
}

// NewNewsletterService 创建邮件订阅服务
func NewNewsletterService(repo repository.NewsletterRepository, cfg config.NewsletterConfig, enqueuer NewsletterEnqueuer) *NewsletterService {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = defaultNewsletterTimeoutS
	}
	return &NewsletterService{
		repo:     repo,
		cfg:      cfg,
		enqueuer: enqueuer,
		client:   &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

// Subscribe 报名订阅。邮箱校验通过即落库并安排异步投递；
// 重复报名会复位状态重新投递。
func (s *NewsletterService) Subscribe(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ErrNewsletterEmailInvalid
	}
	parsed, err := mail.ParseAddress(email)
	if err != nil || parsed.Address != email {
		return ErrNewsletterEmailInvalid
	}

	subscriber := &models.NewsletterSubscriber{
		Email:     email,
		Status:    constants.NewsletterStatusPending,
		SourceTag: s.cfg.SourceTag,
	}
	if err := s.repo.Upsert(subscriber); err != nil {
		return err
	}

	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueNewsletterDeliver(subscriber.ID); err != nil {
			logger.Warnw("newsletter_enqueue_failed", "subscriber_id", subscriber.ID, "error", err)
		}
	}
	logger.Infow("newsletter_subscribed", "subscriber_id", subscriber.ID)
	return nil
}

// Deliver 向上游服务商投递订阅。由 worker 消费队列任务时调用，
// 返回错误触发队列重试。
func (s *NewsletterService) Deliver(ctx context.Context, subscriberID uint) error {
	subscriber, err := s.repo.GetByID(subscriberID)
	if err != nil {
		return err
	}
	if subscriber == nil {
		logger.Warnw("newsletter_subscriber_missing", "subscriber_id", subscriberID)
		return nil
	}
	if subscriber.Status == constants.NewsletterStatusDelivered {
		return nil
	}
	if strings.TrimSpace(s.cfg.ProviderURL) == "" {
		// 未配置服务商时直接视为投递完成，本地留痕
		return s.repo.UpdateStatus(subscriber.ID, constants.NewsletterStatusDelivered, "")
	}

	payload, err := json.Marshal(map[string]string{
		"email":  subscriber.Email,
		"source": subscriber.SourceTag,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.ProviderURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if updateErr := s.repo.UpdateStatus(subscriber.ID, constants.NewsletterStatusFailed, err.Error()); updateErr != nil {
			logger.Errorw("newsletter_status_update_failed", "subscriber_id", subscriber.ID, "error", updateErr)
		}
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		deliverErr := fmt.Errorf("newsletter provider status %d", resp.StatusCode)
		if updateErr := s.repo.UpdateStatus(subscriber.ID, constants.NewsletterStatusFailed, deliverErr.Error()); updateErr != nil {
			logger.Errorw("newsletter_status_update_failed", "subscriber_id", subscriber.ID, "error", updateErr)
		}
		return deliverErr
	}

	logger.Infow("newsletter_delivered", "subscriber_id", subscriber.ID)
	return s.repo.UpdateStatus(subscriber.ID, constants.NewsletterStatusDelivered, "")
}
