package repository

import (
	"context"
	"errors"

	"scatch/internal/domain/model"
)

// プロフィールが見つかりませんを統一
var ErrProfileNotFound = errors.New("profile not found")

// 保存・取得を約束
type ProfileRepository interface {
	//新規プロフィール作成
	Create(ctx context.Context, p *model.Profile) error
	// IDから1件取得する。
	FindByID(ctx context.Context, profileID string) (*model.Profile, error)
	//メールから1件取得する。
	FindByEmail(ctx context.Context, email string) (*model.Profile, error)
	// 最終ログインの更新など
	Update(ctx context.Context, p *model.Profile) error
	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, profileID string) error
}
