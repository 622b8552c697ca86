package repository

import (
	"context"
	"errors"
	"fmt"

	"orderservice/internal/domain/model"
	repo "orderservice/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// 明細は載せない（usecaseでまとめて付ける）
func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, fmt.Errorf("find order %d: %w", orderID, err)
	}
	return o, nil
}

func (r *OrderGormRepository) List(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := r.db.WithContext(ctx).Order("id asc").Find(&orders).Error; err != nil {
		return []model.Order{}, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (r *OrderGormRepository) ListByCustomerID(ctx context.Context, customerID int64) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("id asc").
		Find(&orders).Error
	if err != nil {
		return []model.Order{}, fmt.Errorf("list orders of customer %d: %w", customerID, err)
	}
	return orders, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	//IDはDBに採番させる。明細はここでは作らない。
	order.ID = 0
	order.Items = nil
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&order).Error; err != nil {
		return 0, fmt.Errorf("create order: %w", err)
	}
	return order.ID, nil
}

func (r *OrderGormRepository) UpdateScalars(ctx context.Context, order model.Order) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"date_order":  order.DateOrder,
			"customer_id": order.CustomerID,
		})

	if res.Error != nil {
		return fmt.Errorf("update order %d: %w", order.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) Delete(ctx context.Context, orderID int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", orderID).Delete(&model.Order{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete order %d: %w", orderID, res.Error)
	}
	return res.RowsAffected, nil
}
