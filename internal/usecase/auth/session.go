package auth

import (
	"context"

	"scatch/internal/domain/model"
	"scatch/internal/repository"
)

// セッション確認。画面起動時に呼ばれる。
// この境界からはエラーを外に出さない。何かあったら「未ログイン」として
// nilを返すだけにする。
type SessionUsecase struct {
	profileRepo repository.ProfileRepository
}

func NewSessionUsecase(profileRepo repository.ProfileRepository) *SessionUsecase {
	return &SessionUsecase{profileRepo: profileRepo}
}

// 検証済みトークンのclaimsからプロフィールを引く。
// tokenVersion不一致・停止アカウント・DB障害はすべてnil。
func (u *SessionUsecase) Check(ctx context.Context, profileID string, tokenVersion int) *model.Profile {
	if profileID == "" {
		return nil
	}

	profile, err := u.profileRepo.FindByID(ctx, profileID)
	if err != nil || profile == nil {
		return nil
	}
	if !profile.IsActive {
		return nil
	}
	if profile.TokenVersion != tokenVersion {
		return nil
	}

	safe := safeProfile(profile)
	return &safe
}
