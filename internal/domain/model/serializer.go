package model

import (
	"fmt"
	"net/http"

	"orderservice/internal/validator"

	"github.com/samber/lo"
)

const (
	orderEntity     = "Order"
	orderItemEntity = "OrderItem"
)

// 注文をキー・バリューに変換する。
func (o Order) Serialize() map[string]any {
	items := lo.Map(o.Items, func(it OrderItem, _ int) map[string]any {
		return it.Serialize()
	})

	return map[string]any{
		"id":          o.ID,
		"date_order":  FormatDateOrder(o),
		"customer_id": o.CustomerID,
		"items":       items,
	}
}

// date_orderのテキスト表現（RFC 1123, GMT）
func FormatDateOrder(o Order) string {
	return o.DateOrder.UTC().Format(http.TimeFormat)
}

// date_order / customer_id は必須。item_listは任意で、ItemListに置くだけ（明細は作らない）。
// idは読まない。
func (o *Order) Deserialize(data any) error {
	m, err := validator.Mapping(data)
	if err != nil {
		return toDataValidationError(orderEntity, err)
	}

	dateOrder, err := validator.Time(m, "date_order")
	if err != nil {
		return toDataValidationError(orderEntity, err)
	}
	customerID, err := validator.Int64(m, "customer_id")
	if err != nil {
		return toDataValidationError(orderEntity, err)
	}

	itemList, err := DeserializeItemList(m)
	if err != nil {
		return err
	}

	o.DateOrder = dateOrder
	o.CustomerID = customerID
	o.ItemList = itemList
	return nil
}

// item_listを明細入力に変換する。キーがなければnil。
func DeserializeItemList(m map[string]any) ([]ItemInput, error) {
	raw, ok, err := validator.List(m, "item_list")
	if err != nil {
		return nil, toDataValidationError(orderEntity, err)
	}
	if !ok {
		return nil, nil
	}

	items := make([]ItemInput, 0, len(raw))
	for i, v := range raw {
		in, err := deserializeItemInput(v)
		if err != nil {
			return nil, toDataValidationError(orderEntity, fmt.Errorf("item_list[%d]: %w", i, err))
		}
		items = append(items, in)
	}
	return items, nil
}

// 明細の総入れ替え用。item_listは必須（nullは空扱い）。
func DeserializeItemReplacement(data any) ([]ItemInput, error) {
	m, err := validator.Mapping(data)
	if err != nil {
		return nil, toDataValidationError(orderEntity, err)
	}
	if !validator.Has(m, "item_list") {
		return nil, toDataValidationError(orderEntity, &validator.FieldError{Key: "item_list", Err: validator.ErrMissing})
	}

	items, err := DeserializeItemList(m)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []ItemInput{}
	}
	return items, nil
}

func deserializeItemInput(v any) (ItemInput, error) {
	m, err := validator.Mapping(v)
	if err != nil {
		return ItemInput{}, err
	}
	productID, err := validator.Int64(m, "product_id")
	if err != nil {
		return ItemInput{}, err
	}
	quantity, err := validator.Int64(m, "product_quantity")
	if err != nil {
		return ItemInput{}, err
	}
	price, err := validator.OptionalDecimal(m, "product_price")
	if err != nil {
		return ItemInput{}, err
	}
	return ItemInput{
		ProductID:       productID,
		ProductQuantity: quantity,
		ProductPrice:    price,
	}, nil
}

func (it OrderItem) Serialize() map[string]any {
	return map[string]any{
		"id":               it.ID,
		"order_id":         it.OrderID,
		"product_id":       it.ProductID,
		"product_price":    it.ProductPrice.StringFixed(2),
		"product_quantity": it.ProductQuantity,
	}
}

func (it *OrderItem) Deserialize(data any) error {
	m, err := validator.Mapping(data)
	if err != nil {
		return toDataValidationError(orderItemEntity, err)
	}

	orderID, err := validator.Int64(m, "order_id")
	if err != nil {
		return toDataValidationError(orderItemEntity, err)
	}
	productID, err := validator.Int64(m, "product_id")
	if err != nil {
		return toDataValidationError(orderItemEntity, err)
	}
	price, err := validator.Decimal(m, "product_price")
	if err != nil {
		return toDataValidationError(orderItemEntity, err)
	}
	quantity, err := validator.Int64(m, "product_quantity")
	if err != nil {
		return toDataValidationError(orderItemEntity, err)
	}

	it.OrderID = orderID
	it.ProductID = productID
	it.ProductPrice = price
	it.ProductQuantity = quantity
	return nil
}

// validatorのエラー文言（"missing customer_id" など）をそのまま使う
func toDataValidationError(entity string, err error) error {
	return newDataValidationError(entity, err.Error())
}
