package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	AuditLogs() AuditLogRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
type TransactionManager interface {
	//更新系。fnがエラーを返したらrollback。
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
	//参照系。注文と明細を同じスナップショットから読む（read only / repeatable read）。
	WithinReadTx(ctx context.Context, fn func(r TxRepos) error) error
}
