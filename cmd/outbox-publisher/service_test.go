package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/lumencart/storefront-backend/pkg/config"
	"github.com/lumencart/storefront-backend/pkg/db/models"
	"github.com/lumencart/storefront-backend/pkg/enums"
	"github.com/lumencart/storefront-backend/pkg/logger"
)

type fakeRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	fetchErr  error
}

func (f *fakeRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if len(f.events) > limit {
		return f.events[:limit], nil
	}
	return f.events, nil
}

func (f *fakeRepo) MarkPublished(id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailed(id uuid.UUID, _ error) error {
	f.failed = append(f.failed, id)
	return nil
}

type fakeResult struct {
	err error
}

func (r fakeResult) Get(context.Context) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "msg-1", nil
}

type fakePublisher struct {
	messages []*gcppubsub.Message
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	f.messages = append(f.messages, msg)
	return fakeResult{err: f.err}
}

func testConfig() *config.Config {
	return &config.Config{
		PubSub: config.PubSubConfig{OrdersTopic: "lc-order-events"},
		Outbox: config.OutboxConfig{BatchSize: 10, PollIntervalMS: 10, MaxAttempts: 3},
	}
}

func testEvent() models.OutboxEvent {
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderSubmitted,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{"order_id":"x"}`),
		CreatedAt:     time.Now().UTC(),
	}
}

func newTestService(t *testing.T, repo outboxRepository, pub publisher) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Config:     testConfig(),
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
		Publisher:  pub,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	event := testEvent()
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{}
	svc := newTestService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to be processed")
	}
	if len(repo.published) != 1 || repo.published[0] != event.ID {
		t.Fatalf("expected event marked published, got %v", repo.published)
	}
	if len(pub.messages) != 1 {
		t.Fatalf("expected 1 message published, got %d", len(pub.messages))
	}

	msg := pub.messages[0]
	if msg.Attributes["event_type"] != string(enums.EventOrderSubmitted) {
		t.Fatalf("unexpected event_type attribute: %s", msg.Attributes["event_type"])
	}
	if msg.Attributes["aggregate_id"] != event.AggregateID.String() {
		t.Fatalf("unexpected aggregate_id attribute: %s", msg.Attributes["aggregate_id"])
	}
}

func TestProcessBatchMarksFailureAndContinues(t *testing.T) {
	first := testEvent()
	second := testEvent()
	repo := &fakeRepo{events: []models.OutboxEvent{first, second}}
	pub := &fakePublisher{err: errors.New("topic unavailable")}
	svc := newTestService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to be processed")
	}
	if len(repo.failed) != 2 {
		t.Fatalf("expected both events marked failed, got %v", repo.failed)
	}
	if len(repo.published) != 0 {
		t.Fatalf("no events should be marked published, got %v", repo.published)
	}
}

func TestProcessBatchEmpty(t *testing.T) {
	svc := newTestService(t, &fakeRepo{}, &fakePublisher{})

	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if processed {
		t.Fatalf("empty batch should not count as processed")
	}
}

func TestProcessBatchFetchError(t *testing.T) {
	repo := &fakeRepo{fetchErr: errors.New("db down")}
	svc := newTestService(t, repo, &fakePublisher{})

	if _, err := svc.processBatch(context.Background()); err == nil {
		t.Fatalf("expected fetch error to propagate")
	}
}

func TestNewServiceValidatesParams(t *testing.T) {
	_, err := NewService(ServiceParams{
		Config: testConfig(),
		Logger: logger.New(logger.Options{ServiceName: "test"}),
	})
	if err == nil {
		t.Fatalf("expected error for missing repository")
	}
}

func TestNextBackoffCapsAtMax(t *testing.T) {
	base := 100 * time.Millisecond
	current := base
	for i := 0; i < 10; i++ {
		current = nextBackoff(current, base, maxBackoff)
	}
	if current != maxBackoff {
		t.Fatalf("expected backoff capped at %v, got %v", maxBackoff, current)
	}
}
