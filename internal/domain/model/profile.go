package model

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleOwner    Role = "owner"
)

// 会員プロフィール。ログイン情報と表示用情報をまとめて持つ。
// IDは認証基盤に合わせてUUID文字列。
type Profile struct {
	ID          string  `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string  `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName *string `gorm:"type:varchar(255)" json:"full_name"`

	//customer / owner。ownerだけが管理操作を使える。
	Role Role `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`

	//ハッシュのみ保存（平文は保存しない）
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`

	//強制ログアウト用。ログアウトで+1される。
	TokenVersion int  `gorm:"not null;default:0" json:"-"`
	IsActive     bool `gorm:"not null;default:true" json:"-"`

	LastLoginAt *time.Time `json:"-"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
