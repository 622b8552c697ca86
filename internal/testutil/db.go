package testutil

import (
	"testing"

	"orderservice/internal/infra/db"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// テストごとに空のインメモリsqliteを作る。終了時に閉じる。
func NewSQLiteDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	gormDB, err := db.OpenSQLite(":memory:", nil)
	require.NoError(tb, err)
	require.NoError(tb, db.Migrate(gormDB))

	tb.Cleanup(func() {
		_ = db.Close(gormDB)
	})
	return gormDB
}
