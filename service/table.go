package service

import (
	"context"
	"errors"

	"restaurant_manager/constants"
	"restaurant_manager/model"
	"restaurant_manager/notify"
	"restaurant_manager/repository"

	"go.uber.org/zap"
)

// TableReconciler đưa trạng thái bàn về đúng với tập đơn hàng đang hoạt động.
// Bàn reserved do nhân viên đặt tay nên không bao giờ bị đụng tới.
type TableReconciler struct {
	store repository.Store
	log   *zap.Logger
	pub   notify.Publisher
}

func NewTableReconciler(store repository.Store, log *zap.Logger, pub notify.Publisher) *TableReconciler {
	return &TableReconciler{store: store, log: log, pub: pub}
}

func expectedStatus(current string, activeOrders int64) string {
	if current == constants.TABLE_RESERVED {
		return current
	}
	if activeOrders > 0 {
		return constants.TABLE_OCCUPIED
	}
	return constants.TABLE_AVAILABLE
}

// ReconcileOne sửa trạng thái một bàn nếu lệch, trả về thay đổi hoặc nil nếu đã đúng.
func (r *TableReconciler) ReconcileOne(ctx context.Context, tableID uint) (*model.TableStatusChange, error) {
	return r.reconcile(ctx, tableID, false)
}

func (r *TableReconciler) reconcile(ctx context.Context, tableID uint, dryRun bool) (*model.TableStatusChange, error) {
	var change *model.TableStatusChange
	err := r.store.Transaction(ctx, func(tx repository.Store) error {
		var table *model.Table
		var err error
		if dryRun {
			table, err = tx.Tables().FindByID(ctx, tableID)
		} else {
			table, err = tx.Tables().FindByIDForUpdate(ctx, tableID)
		}
		if err != nil {
			return notFound(err)
		}
		active, err := tx.Orders().CountActiveOrdersForTable(ctx, tableID)
		if err != nil {
			return err
		}
		expected := expectedStatus(table.Status, active)
		if expected == table.Status {
			return nil
		}
		change = &model.TableStatusChange{
			TableID:     table.ID,
			TableNumber: table.TableNumber,
			Previous:    table.Status,
			Expected:    expected,
		}
		if dryRun {
			return nil
		}
		if err := tx.Tables().UpdateStatus(ctx, table.ID, expected); err != nil {
			return err
		}
		change.Fixed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if change != nil && change.Fixed {
		r.log.Info("table status corrected",
			zap.Uint("table_id", change.TableID),
			zap.String("previous", change.Previous),
			zap.String("current", change.Expected),
		)
		notify.Dispatch(r.log, r.pub, notify.Event{Name: constants.EVENT_TABLE_STATUS_CHANGED, Payload: map[string]any{
			"table_id": change.TableID,
			"previous": change.Previous,
			"current":  change.Expected,
		}})
	}
	return change, nil
}

// ReconcileAll duyệt mọi bàn, mỗi bàn một transaction. dryRun chỉ báo cáo, không ghi.
func (r *TableReconciler) ReconcileAll(ctx context.Context, dryRun bool) (*model.TableStatusReport, error) {
	ctx, span := tracer.Start(ctx, "tables.ReconcileAll")
	defer span.End()

	tables, err := r.store.Tables().List(ctx)
	if err != nil {
		return nil, err
	}
	report := &model.TableStatusReport{DryRun: dryRun, Changes: []model.TableStatusChange{}}
	for _, t := range tables {
		change, err := r.reconcile(ctx, t.ID, dryRun)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			r.log.Warn("reconcile table failed", zap.Uint("table_id", t.ID), zap.Error(err))
			continue
		}
		if change != nil {
			report.Changes = append(report.Changes, *change)
		}
	}
	report.Occupied, err = r.store.Tables().CountByStatus(ctx, constants.TABLE_OCCUPIED)
	if err != nil {
		return nil, err
	}
	return report, nil
}
