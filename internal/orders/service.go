package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumencart/storefront-backend/internal/identity"
	"github.com/lumencart/storefront-backend/pkg/enums"
	pkgerrors "github.com/lumencart/storefront-backend/pkg/errors"
	"github.com/lumencart/storefront-backend/pkg/outbox"
	"github.com/lumencart/storefront-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes order history operations. Orders are created by the
// checkout flow; this surface only reads and cancels them.
type Service interface {
	ListOrders(ctx context.Context, owner identity.Owner, params pagination.Params) (*ListResult, error)
	GetOrder(ctx context.Context, owner identity.Owner, id uuid.UUID) (*OrderDTO, error)
	CancelOrder(ctx context.Context, owner identity.Owner, id uuid.UUID) (*OrderDTO, error)
}

type service struct {
	repo   OrderRepository
	tx     txRunner
	events eventEmitter
}

// NewService builds an order service backed by the provided stack.
func NewService(repo OrderRepository, tx txRunner, events eventEmitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	return &service{repo: repo, tx: tx, events: events}, nil
}

// ListOrders pages the owner's order history newest first.
func (s *service) ListOrders(ctx context.Context, owner identity.Owner, params pagination.Params) (*ListResult, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	rows, nextCursor, err := s.repo.ListByOwner(ctx, owner, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	summaries := make([]SummaryDTO, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, toSummary(row))
	}
	return &ListResult{Orders: summaries, NextCursor: nextCursor}, nil
}

// GetOrder loads one order. Ownership is enforced in the query, so another
// owner's order id reads as not found.
func (s *service) GetOrder(ctx context.Context, owner identity.Owner, id uuid.UUID) (*OrderDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	order, err := s.repo.FindByIDForOwner(ctx, id, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return ToDTO(order), nil
}

// CancelOrder marks a still-cancelable order as canceled and queues the
// cancellation event atomically.
func (s *service) CancelOrder(ctx context.Context, owner identity.Owner, id uuid.UUID) (*OrderDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	var canceled *OrderDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		order, err := txRepo.FindByIDForOwner(ctx, id, owner)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return err
		}
		if !order.Status.IsCancelable() {
			return pkgerrors.New(pkgerrors.CodeConflict, "order can no longer be canceled").
				WithDetails(map[string]any{"status": order.Status.String()})
		}

		now := time.Now()
		order.Status = enums.OrderStatusCanceled
		order.CanceledAt = &now
		if order.PaymentStatus == enums.PaymentStatusPending {
			order.PaymentStatus = enums.PaymentStatusCanceled
		}
		if _, err := txRepo.Save(ctx, order); err != nil {
			return err
		}

		if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCanceled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Owner:         ownerRef(owner),
			Data: map[string]any{
				"order_number": order.Number,
				"total_cents":  order.TotalCents,
			},
			Version: 1,
		}); err != nil {
			return err
		}

		canceled = ToDTO(order)
		return nil
	})
	if err != nil {
		var appErr *pkgerrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}
	return canceled, nil
}

func ownerRef(owner identity.Owner) *outbox.OwnerRef {
	ref := &outbox.OwnerRef{SessionID: owner.SessionID}
	if owner.CustomerID != nil {
		id := owner.CustomerID.String()
		ref.CustomerID = &id
	}
	return ref
}
