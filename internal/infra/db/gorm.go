package db

import (
	"database/sql"
	"fmt"

	"orderservice/internal/config"
	"orderservice/internal/domain/model"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。閉じるのは呼び出し側（Close）。
func Connect(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: newGormLogger(cfg, log)}

	switch cfg.DBDriver {
	case config.DriverSQLite:
		return OpenSQLite(cfg.SQLitePath, gcfg)
	default:
		return OpenPostgres(cfg, gcfg)
	}
}

// pgxのdatabase/sqlドライバでプールを作り、gormに渡す
func OpenPostgres(cfg config.Config, gcfg *gorm.Config) (*gorm.DB, error) {
	if gcfg == nil {
		gcfg = &gorm.Config{Logger: gormlogger.Discard}
	}

	sqlDB, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("sql.Open(pgx): %w", err)
	}
	if cfg.DBMaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gcfg)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("gorm.Open(postgres): %w", err)
	}
	return gormDB, nil
}

// ローカル実行・テスト用。外部キー制約を有効にする。
// ":memory:" のときは接続ごとに別DBになるので接続を1本にする。
func OpenSQLite(path string, gcfg *gorm.Config) (*gorm.DB, error) {
	if gcfg == nil {
		gcfg = &gorm.Config{Logger: gormlogger.Discard}
	}

	gormDB, err := gorm.Open(sqlite.Open(sqliteDSN(path)), gcfg)
	if err != nil {
		return nil, fmt.Errorf("gorm.Open(sqlite): %w", err)
	}
	if path == ":memory:" {
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return gormDB, nil
}

// 外部キー有効・ロック待ち5秒（ファイルDBへの同時書き込みで即エラーにしない）
func sqliteDSN(path string) string {
	return "file:" + path + "?_foreign_keys=on&_busy_timeout=5000"
}

// テーブル作成
func Migrate(gormDB *gorm.DB) error {
	if err := gormDB.AutoMigrate(
		&model.Order{},
		&model.OrderItem{},
		&model.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func Close(gormDB *gorm.DB) error {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// gormのSQLログは開発時だけ出す
func newGormLogger(cfg config.Config, log *zap.Logger) gormlogger.Interface {
	if cfg.IsProduction() || log == nil {
		return gormlogger.Discard
	}
	return gormlogger.New(zap.NewStdLog(log.Named("gorm")), gormlogger.Config{
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}
