package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumencart/storefront-backend/internal/identity"
	"github.com/lumencart/storefront-backend/pkg/db/models"
	"github.com/lumencart/storefront-backend/pkg/enums"
	pkgerrors "github.com/lumencart/storefront-backend/pkg/errors"
	"github.com/lumencart/storefront-backend/pkg/outbox"
	"github.com/lumencart/storefront-backend/pkg/pagination"
)

type stubRepo struct {
	order      *models.Order
	rows       []models.Order
	nextCursor *string
	err        error
}

func (r *stubRepo) WithTx(tx *gorm.DB) OrderRepository { return r }

func (r *stubRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	return order, nil
}

func (r *stubRepo) Save(ctx context.Context, order *models.Order) (*models.Order, error) {
	r.order = order
	return order, nil
}

func (r *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return r.findOne()
}

func (r *stubRepo) FindByIDForOwner(ctx context.Context, id uuid.UUID, owner identity.Owner) (*models.Order, error) {
	return r.findOne()
}

func (r *stubRepo) FindByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	return r.findOne()
}

func (r *stubRepo) FindByPaymentSessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	return r.findOne()
}

func (r *stubRepo) ListByOwner(ctx context.Context, owner identity.Owner, params pagination.Params) ([]models.Order, *string, error) {
	return r.rows, r.nextCursor, r.err
}

func (r *stubRepo) findOne() (*models.Order, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.order == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.order, nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (e *stubEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	e.events = append(e.events, event)
	return nil
}

func customerOwner() identity.Owner {
	return identity.ForCustomer(uuid.New())
}

func pendingOrder() *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		Number:        "LC-20260901-0001",
		Status:        enums.OrderStatusPendingPayment,
		PaymentStatus: enums.PaymentStatusPending,
		Currency:      enums.CurrencyUSD,
		TotalCents:    4599,
		PlacedAt:      time.Now(),
	}
}

func newTestService(t *testing.T, repo *stubRepo, emitter *stubEmitter) Service {
	t.Helper()
	svc, err := NewService(repo, stubTx{}, emitter)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestListOrders(t *testing.T) {
	cursor := "next"
	repo := &stubRepo{
		rows:       []models.Order{*pendingOrder(), *pendingOrder()},
		nextCursor: &cursor,
	}
	svc := newTestService(t, repo, &stubEmitter{})

	result, err := svc.ListOrders(context.Background(), customerOwner(), pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(result.Orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(result.Orders))
	}
	if result.NextCursor == nil || *result.NextCursor != "next" {
		t.Fatalf("expected cursor passthrough, got %v", result.NextCursor)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, &stubEmitter{})

	_, err := svc.GetOrder(context.Background(), customerOwner(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestGetOrderRejectsNilID(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, &stubEmitter{})

	_, err := svc.GetOrder(context.Background(), customerOwner(), uuid.Nil)
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCancelOrderPendingPayment(t *testing.T) {
	repo := &stubRepo{order: pendingOrder()}
	emitter := &stubEmitter{}
	svc := newTestService(t, repo, emitter)

	dto, err := svc.CancelOrder(context.Background(), customerOwner(), repo.order.ID)
	if err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if dto.Status != enums.OrderStatusCanceled {
		t.Fatalf("expected canceled status, got %s", dto.Status)
	}
	if dto.PaymentStatus != enums.PaymentStatusCanceled {
		t.Fatalf("expected canceled payment status, got %s", dto.PaymentStatus)
	}
	if dto.CanceledAt == nil {
		t.Fatal("expected canceled_at set")
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventOrderCanceled {
		t.Fatalf("expected order.canceled event, got %+v", emitter.events)
	}
}

func TestCancelOrderKeepsPaidPaymentStatus(t *testing.T) {
	order := pendingOrder()
	order.Status = enums.OrderStatusPaid
	order.PaymentStatus = enums.PaymentStatusPaid
	repo := &stubRepo{order: order}
	svc := newTestService(t, repo, &stubEmitter{})

	dto, err := svc.CancelOrder(context.Background(), customerOwner(), order.ID)
	if err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if dto.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("paid payment status should survive cancellation, got %s", dto.PaymentStatus)
	}
}

func TestCancelOrderShippedRejected(t *testing.T) {
	order := pendingOrder()
	order.Status = enums.OrderStatusShipped
	repo := &stubRepo{order: order}
	emitter := &stubEmitter{}
	svc := newTestService(t, repo, emitter)

	_, err := svc.CancelOrder(context.Background(), customerOwner(), order.ID)
	assertCode(t, err, pkgerrors.CodeConflict)
	if len(emitter.events) != 0 {
		t.Fatalf("no events expected, got %+v", emitter.events)
	}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected app error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s", code, appErr.Code())
	}
}
