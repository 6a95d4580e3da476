package auth

import (
	"context"
	"errors"

	"scatch/internal/domain/model"
	"scatch/internal/repository"
)

// オーナー以外が強制ログアウトを呼んだ
var ErrOwnerOnly = errors.New("owner only")

// ログアウト。リフレッシュトークンを全部失効させ、token_versionを+1して
// 既発行のアクセストークンも無効にする。以後このアカウントの状態は
// ローカルに残らない。
type LogoutUsecase struct {
	profileRepo repository.ProfileRepository
	rtRepo      repository.RefreshTokenRepository
	clock       Clock
}

func NewLogoutUsecase(
	profileRepo repository.ProfileRepository,
	rtRepo repository.RefreshTokenRepository,
	clock Clock,
) *LogoutUsecase {
	return &LogoutUsecase{
		profileRepo: profileRepo,
		rtRepo:      rtRepo,
		clock:       clock,
	}
}

func (u *LogoutUsecase) Execute(ctx context.Context, profileID string) error {
	if profileID == "" {
		return ErrInvalidCredentials
	}

	now := u.clock.Now()

	if err := u.rtRepo.RevokeAllByProfileID(ctx, profileID, now); err != nil {
		return err
	}

	return u.profileRepo.IncrementTokenVersion(ctx, profileID)
}

// オーナーによる強制ログアウト。対象アカウントの全refresh tokenを失効し、
// token_versionを+1して既発行のアクセストークンも無効化する。
func (u *LogoutUsecase) ForceLogout(ctx context.Context, actorRole model.Role, targetProfileID string) error {
	if actorRole != model.RoleOwner {
		return ErrOwnerOnly
	}
	if targetProfileID == "" {
		return repository.ErrProfileNotFound
	}

	target, err := u.profileRepo.FindByID(ctx, targetProfileID)
	if err != nil || target == nil {
		return repository.ErrProfileNotFound
	}

	return u.Execute(ctx, target.ID)
}
