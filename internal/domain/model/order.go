package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文ヘッダ。明細(Items)のライフサイクルは注文に従属する。
type Order struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	DateOrder  time.Time `gorm:"not null" json:"date_order"`
	CustomerID int64     `gorm:"not null;index" json:"customer_id"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	//item_listから読んだ明細の入力。永続化しない。
	//nil = 指定なし / 空スライス = 空で指定
	ItemList []ItemInput `gorm:"-" json:"-"`
}

// 注文明細の入力（product_id / product_quantity / product_price）
type ItemInput struct {
	ProductID       int64
	ProductQuantity int64
	ProductPrice    decimal.Decimal
}

// date_orderはUTC・秒単位で持つ。秒未満は文字列表現で往復できないので落とす。
func NormalizeDateOrder(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
