package repository

import (
	"context"

	"orderservice/internal/domain/model"
)

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	//複数注文の明細をまとめて取る（一覧のN+1回避）
	ListByOrderIDs(ctx context.Context, orderIDs []int64) ([]model.OrderItem, error)
	FindByID(ctx context.Context, itemID int64) (model.OrderItem, error)
	DeleteByOrderID(ctx context.Context, orderID int64) (int64, error)
}
