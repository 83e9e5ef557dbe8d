package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restaurant_manager/constants"
	"restaurant_manager/model"
	"restaurant_manager/notify"
	"restaurant_manager/repository"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var orderStatuses = map[string]bool{
	constants.ORDER_NEW:        true,
	constants.ORDER_PROCESSING: true,
	constants.ORDER_COMPLETED:  true,
	constants.ORDER_REJECTED:   true,
	constants.ORDER_CANCELLED:  true,
}

func IsTerminal(status string) bool {
	return status == constants.ORDER_COMPLETED ||
		status == constants.ORDER_REJECTED ||
		status == constants.ORDER_CANCELLED
}

// CanTransition: trạng thái kết thúc chỉ được "chuyển" về chính nó.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	return !IsTerminal(from)
}

// Awarder là phần cộng điểm mà OrderLifecycle gọi sau khi đơn hoàn thành.
type Awarder interface {
	Award(ctx context.Context, orderID, customerID uint) (AwardResult, error)
}

type TransitionResult struct {
	OrderID  uint         `json:"orderId"`
	Previous string       `json:"previousStatus"`
	Current  string       `json:"status"`
	Award    *AwardResult `json:"award,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
}

type OrderLifecycle struct {
	store  repository.Store
	awards Awarder
	tables *TableReconciler
	clock  clockwork.Clock
	log    *zap.Logger
	pub    notify.Publisher
}

func NewOrderLifecycle(store repository.Store, awards Awarder, tables *TableReconciler, clock clockwork.Clock, log *zap.Logger, pub notify.Publisher) *OrderLifecycle {
	return &OrderLifecycle{store: store, awards: awards, tables: tables, clock: clock, log: log, pub: pub}
}

// Transition đổi trạng thái đơn trong transaction riêng. Bàn và điểm thưởng được xử lý
// sau khi commit; lỗi ở hai bước đó chỉ thành cảnh báo, không hoàn tác trạng thái đơn.
func (l *OrderLifecycle) Transition(ctx context.Context, orderID uint, status string) (*TransitionResult, error) {
	ctx, span := tracer.Start(ctx, "orders.Transition")
	defer span.End()
	span.SetAttributes(attribute.Int64("order_id", int64(orderID)), attribute.String("status", status))

	if !orderStatuses[status] {
		return nil, fmt.Errorf("%q: %w", status, ErrInvalidStatus)
	}

	var order model.Order
	var previous string
	err := l.store.Transaction(ctx, func(tx repository.Store) error {
		current, err := tx.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return notFound(err)
		}
		previous = current.Status
		order = *current
		if previous == status {
			return nil
		}
		if !CanTransition(previous, status) {
			return fmt.Errorf("%s -> %s: %w", previous, status, ErrInvalidTransition)
		}

		var completedAt *time.Time
		if status == constants.ORDER_COMPLETED && current.CompletedAt == nil {
			now := l.clock.Now()
			completedAt = &now
		}
		if err := tx.Orders().UpdateStatus(ctx, orderID, status, completedAt); err != nil {
			return err
		}
		customerID := current.CustomerID
		return tx.Audit().Create(ctx, &model.AuditLog{
			CustomerID:  &customerID,
			ActionType:  "order_status_changed",
			Description: fmt.Sprintf("#%d: %s -> %s", orderID, previous, status),
		})
	})
	if err != nil {
		return nil, err
	}

	result := &TransitionResult{OrderID: orderID, Previous: previous, Current: status}
	if previous == status {
		return result, nil
	}
	l.log.Info("order status changed",
		zap.Uint("order_id", orderID),
		zap.String("previous", previous),
		zap.String("status", status),
	)

	if order.TableID != nil {
		if _, err := l.tables.ReconcileOne(ctx, *order.TableID); err != nil {
			l.log.Warn("reconcile table after transition failed", zap.Uint("table_id", *order.TableID), zap.Error(err))
			result.Warnings = append(result.Warnings, "table occupancy not updated: "+err.Error())
		}
	}

	if previous != constants.ORDER_COMPLETED && status == constants.ORDER_COMPLETED {
		award, err := l.award(ctx, order)
		result.Award = &award
		if err != nil {
			result.Warnings = append(result.Warnings, "loyalty points not awarded: "+err.Error())
		}
	}

	payload := map[string]any{
		"order_id":    orderID,
		"status":      status,
		"previous":    previous,
		"customer_id": order.CustomerID,
	}
	if order.TableID != nil {
		payload["table_id"] = *order.TableID
	}
	notify.Dispatch(l.log, l.pub, notify.Event{Name: constants.EVENT_ORDER_STATUS_UPDATED, Payload: payload})
	return result, nil
}

// award không bao giờ panic ra ngoài: đơn đã commit, điểm chỉ là hiệu ứng phụ.
func (l *OrderLifecycle) award(ctx context.Context, order model.Order) (res AwardResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("loyalty award panicked", zap.Uint("order_id", order.ID), zap.Any("panic", r))
			res = AwardResult{Outcome: AwardFailed, OrderID: order.ID, CustomerID: order.CustomerID, Reason: fmt.Sprint(r)}
			err = ErrAwardFailure
		}
	}()
	if order.CustomerID == 0 {
		return AwardResult{Outcome: AwardSkipped, OrderID: order.ID, Reason: "order has no customer"}, nil
	}
	res, err = l.awards.Award(ctx, order.ID, order.CustomerID)
	if err != nil && !errors.Is(err, ErrAwardFailure) {
		err = fmt.Errorf("%w: %v", ErrAwardFailure, err)
	}
	if err != nil {
		res.Outcome = AwardFailed
	}
	return res, err
}
