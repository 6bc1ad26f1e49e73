package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/driftwear-shop/driftwear/internal/config"
	"github.com/driftwear-shop/driftwear/internal/constants"
	"github.com/driftwear-shop/driftwear/internal/models"
	"github.com/driftwear-shop/driftwear/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type stubNewsletterEnqueuer struct {
	ids []uint
}

func (s *stubNewsletterEnqueuer) EnqueueNewsletterDeliver(subscriberID uint) error {
	s.ids = append(s.ids, subscriberID)
	return nil
}

func newNewsletterFixture(t *testing.T, cfg config.NewsletterConfig) (*NewsletterService, repository.NewsletterRepository, *stubNewsletterEnqueuer) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.NewsletterSubscriber{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	repo := repository.NewNewsletterRepository(db)
	enqueuer := &stubNewsletterEnqueuer{}
	return NewNewsletterService(repo, cfg, enqueuer), repo, enqueuer
}

func TestSubscribeRejectsInvalidEmail(t *testing.T) {
	svc, _, enqueuer := newNewsletterFixture(t, config.NewsletterConfig{})

	for _, email := range []string{"", "   ", "not-an-email", "a b@example.com", "Name <who@example.com>"} {
		if err := svc.Subscribe(email); err != ErrNewsletterEmailInvalid {
			t.Fatalf("Subscribe(%q): expected ErrNewsletterEmailInvalid, got %v", email, err)
		}
	}
	if len(enqueuer.ids) != 0 {
		t.Fatalf("rejected emails must not enqueue, got %v", enqueuer.ids)
	}
}

func TestSubscribeNormalizesAndEnqueues(t *testing.T) {
	svc, repo, enqueuer := newNewsletterFixture(t, config.NewsletterConfig{SourceTag: "footer"})

	if err := svc.Subscribe("  Fan.One@Example.COM  "); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	subscriber, err := repo.GetByEmail("fan.one@example.com")
	if err != nil || subscriber == nil {
		t.Fatalf("expected lowercased subscriber, got %v err=%v", subscriber, err)
	}
	if subscriber.Status != constants.NewsletterStatusPending {
		t.Fatalf("unexpected status %q", subscriber.Status)
	}
	if subscriber.SourceTag != "footer" {
		t.Fatalf("unexpected source tag %q", subscriber.SourceTag)
	}
	if len(enqueuer.ids) != 1 || enqueuer.ids[0] != subscriber.ID {
		t.Fatalf("expected deliver enqueued for %d, got %v", subscriber.ID, enqueuer.ids)
	}
}

func TestSubscribeTwiceResetsExistingRecord(t *testing.T) {
	svc, repo, enqueuer := newNewsletterFixture(t, config.NewsletterConfig{})

	if err := svc.Subscribe("fan.two@example.com"); err != nil {
		t.Fatalf("first subscribe failed: %v", err)
	}
	first, err := repo.GetByEmail("fan.two@example.com")
	if err != nil || first == nil {
		t.Fatalf("get subscriber failed: %v", err)
	}
	if err := repo.UpdateStatus(first.ID, constants.NewsletterStatusFailed, "provider status 500"); err != nil {
		t.Fatalf("update status failed: %v", err)
	}

	if err := svc.Subscribe("fan.two@example.com"); err != nil {
		t.Fatalf("second subscribe failed: %v", err)
	}
	second, err := repo.GetByEmail("fan.two@example.com")
	if err != nil || second == nil {
		t.Fatalf("get subscriber failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("resubscribe must reuse record, got %d and %d", first.ID, second.ID)
	}
	if second.Status != constants.NewsletterStatusPending {
		t.Fatalf("expected status reset to pending, got %q", second.Status)
	}
	if second.LastError != "" {
		t.Fatalf("expected last error cleared, got %q", second.LastError)
	}
	if len(enqueuer.ids) != 2 {
		t.Fatalf("expected two enqueues, got %v", enqueuer.ids)
	}
}

func TestDeliverPostsToProvider(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("unexpected content type %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode payload failed: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	svc, repo, _ := newNewsletterFixture(t, config.NewsletterConfig{ProviderURL: server.URL, SourceTag: "drawer"})
	if err := svc.Subscribe("fan.three@example.com"); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	subscriber, _ := repo.GetByEmail("fan.three@example.com")

	if err := svc.Deliver(context.Background(), subscriber.ID); err != nil {
		t.Fatalf("deliver failed: %v", err)
	}
	if received["email"] != "fan.three@example.com" || received["source"] != "drawer" {
		t.Fatalf("unexpected payload %v", received)
	}

	updated, _ := repo.GetByID(subscriber.ID)
	if updated.Status != constants.NewsletterStatusDelivered {
		t.Fatalf("expected delivered status, got %q", updated.Status)
	}
}

func TestDeliverMarksFailureAndReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc, repo, _ := newNewsletterFixture(t, config.NewsletterConfig{ProviderURL: server.URL})
	if err := svc.Subscribe("fan.four@example.com"); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	subscriber, _ := repo.GetByEmail("fan.four@example.com")

	if err := svc.Deliver(context.Background(), subscriber.ID); err == nil {
		t.Fatalf("expected error so the queue retries")
	}

	updated, _ := repo.GetByID(subscriber.ID)
	if updated.Status != constants.NewsletterStatusFailed {
		t.Fatalf("expected failed status, got %q", updated.Status)
	}
	if updated.LastError == "" {
		t.Fatalf("expected last error recorded")
	}
}

func TestDeliverWithoutProviderMarksDelivered(t *testing.T) {
	svc, repo, _ := newNewsletterFixture(t, config.NewsletterConfig{})
	if err := svc.Subscribe("fan.five@example.com"); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	subscriber, _ := repo.GetByEmail("fan.five@example.com")

	if err := svc.Deliver(context.Background(), subscriber.ID); err != nil {
		t.Fatalf("deliver failed: %v", err)
	}
	updated, _ := repo.GetByID(subscriber.ID)
	if updated.Status != constants.NewsletterStatusDelivered {
		t.Fatalf("expected delivered status, got %q", updated.Status)
	}
}

func TestDeliverSkipsMissingAndDeliveredSubscribers(t *testing.T) {
	svc, repo, _ := newNewsletterFixture(t, config.NewsletterConfig{ProviderURL: "http://127.0.0.1:0"})

	if err := svc.Deliver(context.Background(), 99999); err != nil {
		t.Fatalf("missing subscriber must be a no-op, got %v", err)
	}

	if err := svc.Subscribe("fan.six@example.com"); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	subscriber, _ := repo.GetByEmail("fan.six@example.com")
	if err := repo.UpdateStatus(subscriber.ID, constants.NewsletterStatusDelivered, ""); err != nil {
		t.Fatalf("update status failed: %v", err)
	}

	// 已投递的记录不再触发网络请求
	if err := svc.Deliver(context.Background(), subscriber.ID); err != nil {
		t.Fatalf("delivered subscriber must be a no-op, got %v", err)
	}
}
