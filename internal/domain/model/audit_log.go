package model

import "time"

// 注文の作成・更新・削除など。
type AuditAction string

const (
	AuditActionCreateOrder AuditAction = "CREATE_ORDER"
	AuditActionUpdateOrder AuditAction = "UPDATE_ORDER"
	//明細の総入れ替え
	AuditActionReplaceOrderItems AuditAction = "REPLACE_ORDER_ITEMS"
	AuditActionDeleteOrder       AuditAction = "DELETE_ORDER"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceOrder AuditResourceType = "order"
)

// 監査ログ（注文の変更履歴）。
// 「どのリクエストが」「何を」「どの対象に」「どう変えたか」を残す。
// 変更と同じトランザクションで書く。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//X-Request-ID。リクエスト外（バッチ等）では空。
	RequestID string `gorm:"type:varchar(64);index" json:"request_id"`

	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   int64             `gorm:"not null;index" json:"resource_id"`

	//シリアライズした集約をJSON文字列で保存する。作成時のBeforeJSON、削除時のAfterJSONは空。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
