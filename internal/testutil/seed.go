package testutil

import (
	"testing"
	"time"

	"orderservice/internal/domain/model"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// 固定の時刻（秒単位・UTC）
var FixedNow = time.Date(2022, 2, 21, 10, 30, 0, 0, time.UTC)

type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time {
	return c.T
}

// ランダムな明細入力
func FakeItemInput() model.ItemInput {
	return model.ItemInput{
		ProductID:       int64(gofakeit.IntRange(1, 10_000)),
		ProductQuantity: int64(gofakeit.IntRange(1, 20)),
		ProductPrice:    decimal.NewFromFloat(gofakeit.Price(1, 500)).Round(2),
	}
}

func FakeItemInputs(n int) []model.ItemInput {
	out := make([]model.ItemInput, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, FakeItemInput())
	}
	return out
}

// 注文と明細を直接DBに入れる
func SeedOrder(tb testing.TB, gormDB *gorm.DB, customerID int64, items ...model.ItemInput) model.Order {
	tb.Helper()

	o := model.Order{
		DateOrder:  FixedNow,
		CustomerID: customerID,
	}
	require.NoError(tb, gormDB.Omit("Items").Create(&o).Error)

	o.Items = []model.OrderItem{}
	for _, in := range items {
		it := model.NewOrderItem(o.ID, in)
		require.NoError(tb, gormDB.Create(&it).Error)
		o.Items = append(o.Items, it)
	}
	return o
}

func CountRows(tb testing.TB, gormDB *gorm.DB, m any) int64 {
	tb.Helper()

	var n int64
	require.NoError(tb, gormDB.Model(m).Count(&n).Error)
	return n
}
