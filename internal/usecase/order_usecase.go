package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"orderservice/internal/domain/model"
	"orderservice/internal/logger"
	repo "orderservice/internal/repository"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

type Clock interface {
	Now() time.Time
}

// 注文集約（注文＋明細）のストア。
// 1操作 = 1トランザクション。明細だけ欠けた注文が外から見えることはない。
type OrderUsecase struct {
	tx    repo.TransactionManager
	clock Clock
	log   *zap.Logger
}

func NewOrderUsecase(tx repo.TransactionManager, clock Clock, log *zap.Logger) *OrderUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderUsecase{tx: tx, clock: clock, log: log}
}

// 注文を作成し、明細をその注文IDで作る。渡されたIDは使わない。
func (u *OrderUsecase) Create(ctx context.Context, order model.Order, items []model.ItemInput) (model.Order, error) {
	order.ID = 0
	if order.DateOrder.IsZero() {
		order.DateOrder = u.clock.Now()
	}
	order.DateOrder = model.NormalizeDateOrder(order.DateOrder)

	var out model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return err
		}

		if err := r.OrderItems().CreateBulk(ctx, orderID, buildItems(orderID, items)); err != nil {
			return err
		}

		created, err := loadAggregate(ctx, r, orderID)
		if err != nil {
			return err
		}

		if err := u.audit(ctx, r, model.AuditActionCreateOrder, orderID, nil, &created); err != nil {
			return err
		}

		out = created
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}

	logger.FromCtx(ctx, u.log).Info("order created",
		zap.Int64("order_id", out.ID),
		zap.Int64("customer_id", out.CustomerID),
		zap.Int("items", len(out.Items)),
	)
	return out, nil
}

// 採番済みの注文を更新する。
// items == nil: 注文の項目だけ更新（明細はそのまま）
// items != nil: 既存明細を全部消して items で作り直す（マージはしない）
func (u *OrderUsecase) Update(ctx context.Context, order model.Order, items []model.ItemInput) (model.Order, error) {
	if order.ID == 0 {
		return model.Order{}, model.ErrInvalidState
	}

	var out model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := loadAggregate(ctx, r, order.ID)
		if err != nil {
			return err
		}

		//date_orderの指定がなければ今の値のまま
		if order.DateOrder.IsZero() {
			order.DateOrder = before.DateOrder
		}
		order.DateOrder = model.NormalizeDateOrder(order.DateOrder)

		if err := r.Orders().UpdateScalars(ctx, order); err != nil {
			return err
		}

		if items != nil {
			if err := replaceItems(ctx, r, order.ID, items); err != nil {
				return err
			}
		}

		updated, err := loadAggregate(ctx, r, order.ID)
		if err != nil {
			return err
		}

		if err := u.audit(ctx, r, model.AuditActionUpdateOrder, order.ID, &before, &updated); err != nil {
			return err
		}

		out = updated
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}

	logger.FromCtx(ctx, u.log).Info("order updated",
		zap.Int64("order_id", out.ID),
		zap.Bool("items_replaced", items != nil),
		zap.Int("items", len(out.Items)),
	)
	return out, nil
}

// 明細だけ総入れ替えする（PUT /orders/:id/items）
func (u *OrderUsecase) ReplaceItems(ctx context.Context, orderID int64, items []model.ItemInput) (model.Order, error) {
	if orderID == 0 {
		return model.Order{}, model.ErrInvalidState
	}
	if items == nil {
		items = []model.ItemInput{}
	}

	var out model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := loadAggregate(ctx, r, orderID)
		if err != nil {
			return err
		}

		if err := replaceItems(ctx, r, orderID, items); err != nil {
			return err
		}

		updated, err := loadAggregate(ctx, r, orderID)
		if err != nil {
			return err
		}

		if err := u.audit(ctx, r, model.AuditActionReplaceOrderItems, orderID, &before, &updated); err != nil {
			return err
		}

		out = updated
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}

	logger.FromCtx(ctx, u.log).Info("order items replaced",
		zap.Int64("order_id", orderID),
		zap.Int("items", len(out.Items)),
	)
	return out, nil
}

// 明細→注文の順に消す。存在しない注文なら何もしない。
func (u *OrderUsecase) Delete(ctx context.Context, orderID int64) error {
	deleted := false

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := loadAggregate(ctx, r, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if _, err := r.OrderItems().DeleteByOrderID(ctx, orderID); err != nil {
			return err
		}
		if _, err := r.Orders().Delete(ctx, orderID); err != nil {
			return err
		}

		if err := u.audit(ctx, r, model.AuditActionDeleteOrder, orderID, &before, nil); err != nil {
			return err
		}

		deleted = true
		return nil
	})
	if err != nil {
		return err
	}

	if deleted {
		logger.FromCtx(ctx, u.log).Info("order deleted", zap.Int64("order_id", orderID))
	}
	return nil
}

// 主キーで検索。明細付き。なければ found=false。
func (u *OrderUsecase) Find(ctx context.Context, orderID int64) (model.Order, bool, error) {
	var (
		out   model.Order
		found bool
	)

	err := u.tx.WithinReadTx(ctx, func(r repo.TxRepos) error {
		o, err := loadAggregate(ctx, r, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		out, found = o, true
		return nil
	})
	if err != nil {
		return model.Order{}, false, err
	}
	return out, found, nil
}

// Find と同じ。なければ ErrNotFound。
func (u *OrderUsecase) FindOr404(ctx context.Context, orderID int64) (model.Order, error) {
	o, found, err := u.Find(ctx, orderID)
	if err != nil {
		return model.Order{}, err
	}
	if !found {
		return model.Order{}, fmt.Errorf("order %d: %w", orderID, model.ErrNotFound)
	}
	return o, nil
}

// 顧客IDで絞り込み。作成順。
func (u *OrderUsecase) FindByCustomer(ctx context.Context, customerID int64) ([]model.Order, error) {
	var outs []model.Order

	err := u.tx.WithinReadTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListByCustomerID(ctx, customerID)
		if err != nil {
			return err
		}
		outs, err = attachItems(ctx, r, orders)
		return err
	})
	if err != nil {
		return []model.Order{}, err
	}
	return outs, nil
}

// 全件。作成順。
func (u *OrderUsecase) All(ctx context.Context) ([]model.Order, error) {
	var outs []model.Order

	err := u.tx.WithinReadTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().List(ctx)
		if err != nil {
			return err
		}
		outs, err = attachItems(ctx, r, orders)
		return err
	})
	if err != nil {
		return []model.Order{}, err
	}
	return outs, nil
}

// 注文の明細一覧。注文がなければ ErrNotFound。
func (u *OrderUsecase) Items(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	var items []model.OrderItem

	err := u.tx.WithinReadTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Orders().FindByID(ctx, orderID); err != nil {
			return err
		}
		var err error
		items, err = r.OrderItems().ListByOrderID(ctx, orderID)
		return err
	})
	if err != nil {
		return []model.OrderItem{}, err
	}
	return items, nil
}

// 変更前後の集約をJSONで残す
func (u *OrderUsecase) audit(ctx context.Context, r repo.TxRepos, action model.AuditAction, orderID int64, before, after *model.Order) error {
	beforeJSON, err := aggregateJSON(before)
	if err != nil {
		return err
	}
	afterJSON, err := aggregateJSON(after)
	if err != nil {
		return err
	}

	return r.AuditLogs().Create(ctx, model.AuditLog{
		RequestID:    logger.RequestIDFrom(ctx),
		Action:       action,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   orderID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		CreatedAt:    u.clock.Now(),
	})
}

func aggregateJSON(o *model.Order) (string, error) {
	if o == nil {
		return "", nil
	}
	b, err := json.Marshal(o.Serialize())
	if err != nil {
		return "", fmt.Errorf("marshal order %d: %w", o.ID, err)
	}
	return string(b), nil
}

// 注文1件を明細付きで読む
func loadAggregate(ctx context.Context, r repo.TxRepos, orderID int64) (model.Order, error) {
	o, err := r.Orders().FindByID(ctx, orderID)
	if err != nil {
		return model.Order{}, err
	}
	items, err := r.OrderItems().ListByOrderID(ctx, orderID)
	if err != nil {
		return model.Order{}, err
	}
	o.Items = items
	return o, nil
}

// 明細をまとめて取って注文ごとに振り分ける
func attachItems(ctx context.Context, r repo.TxRepos, orders []model.Order) ([]model.Order, error) {
	ids := lo.Map(orders, func(o model.Order, _ int) int64 { return o.ID })

	items, err := r.OrderItems().ListByOrderIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byOrder := lo.GroupBy(items, func(it model.OrderItem) int64 { return it.OrderID })

	outs := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		o.Items = byOrder[o.ID]
		if o.Items == nil {
			o.Items = []model.OrderItem{}
		}
		outs = append(outs, o)
	}
	return outs, nil
}

func replaceItems(ctx context.Context, r repo.TxRepos, orderID int64, items []model.ItemInput) error {
	if _, err := r.OrderItems().DeleteByOrderID(ctx, orderID); err != nil {
		return err
	}
	return r.OrderItems().CreateBulk(ctx, orderID, buildItems(orderID, items))
}

func buildItems(orderID int64, items []model.ItemInput) []model.OrderItem {
	return lo.Map(items, func(in model.ItemInput, _ int) model.OrderItem {
		return model.NewOrderItem(orderID, in)
	})
}
