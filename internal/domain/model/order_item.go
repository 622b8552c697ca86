package model

import "github.com/shopspring/decimal"

type OrderItem struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID         int64           `gorm:"not null;index" json:"order_id"`
	ProductID       int64           `gorm:"not null" json:"product_id"`
	ProductPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"product_price"`
	ProductQuantity int64           `gorm:"not null" json:"product_quantity"`
}

// 入力から明細を組み立てる。order_idは呼び出し側で決まる。
func NewOrderItem(orderID int64, in ItemInput) OrderItem {
	return OrderItem{
		OrderID:         orderID,
		ProductID:       in.ProductID,
		ProductPrice:    in.ProductPrice,
		ProductQuantity: in.ProductQuantity,
	}
}
