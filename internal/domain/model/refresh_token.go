package model

import "time"

// リフレッシュトークン。DBにはsha256ハッシュだけを保存する。
type RefreshToken struct {
	ID        string     `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID string     `gorm:"type:uuid;not null;index" json:"profile_id"`
	TokenHash string     `gorm:"not null;uniqueIndex" json:"-"`
	UserAgent string     `gorm:"type:varchar(512)" json:"user_agent"`
	ExpiresAt time.Time  `gorm:"not null;index" json:"expires_at"`
	UsedAt    *time.Time `gorm:"index" json:"used_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
}
