package repository

import (
	"context"

	"orderservice/internal/domain/model"
)

// 見つからないときに返す。usecase側と同じ値。
var ErrNotFound = model.ErrNotFound

// 注文ヘッダの永続化。明細は OrderItemRepository が持つ。
type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	List(ctx context.Context) ([]model.Order, error)
	ListByCustomerID(ctx context.Context, customerID int64) ([]model.Order, error)

	//IDを採番して返す
	Create(ctx context.Context, order model.Order) (int64, error)
	//date_order / customer_id だけ更新する
	UpdateScalars(ctx context.Context, order model.Order) error
	//消した行数を返す（0でもエラーにしない）
	Delete(ctx context.Context, orderID int64) (int64, error)
}
