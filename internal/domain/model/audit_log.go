package model

import "time"

// 注文配下のエンティティ作成など
type AuditAction string

const (
	//エンティティを作成した操作。
	AuditActionCreateEntity AuditAction = "CREATE_ENTITY"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceItem     AuditResourceType = "item"
	AuditResourceAddress  AuditResourceType = "address"
	AuditResourcePayment  AuditResourceType = "payment"
	AuditResourceNote     AuditResourceType = "note"
	AuditResourceDispatch AuditResourceType = "dispatch"
	AuditResourceRefund   AuditResourceType = "refund"
)

// 監査ログ。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `json:"id"`

	//操作したユーザーのID（不明ならnil）
	ActorUserID *int64 `json:"actor_user_id,omitempty"`

	Action       AuditAction       `json:"action"`
	ResourceType AuditResourceType `json:"resource_type"`

	//対象のID（コミット時に採番IDへ差し替わる）
	ResourceID int64 `json:"resource_id"`
	OrderID    int64 `json:"order_id"`

	//JSON文字列で保存する。
	AfterJSON string `json:"after_json"`

	CreatedAt time.Time `json:"created_at"`
}
