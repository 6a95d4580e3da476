package model

import "time"

// オーナー操作の種類。
type AuditAction string

const (
	AuditActionCreateProduct     AuditAction = "CREATE_PRODUCT"
	AuditActionUpdateProduct     AuditAction = "UPDATE_PRODUCT"
	AuditActionDeleteProduct     AuditAction = "DELETE_PRODUCT"
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceProduct AuditResourceType = "product"
	AuditResourceOrder   AuditResourceType = "order"
)

// 監査ログ（オーナー操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID             int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorProfileID string            `gorm:"type:uuid;not null;index" json:"actor_profile_id"`
	Action         AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType   AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID     string            `gorm:"type:uuid;not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
