package auth

import (
	"context"
	"errors"
	"time"

	"scatch/internal/repository"
)

// 使用済みトークンの再利用（リプレイ）を検知した
var ErrSecurityIncident = errors.New("security incident")

// リフレッシュトークンのローテーション。
// 旧トークンを使用済みにして新しいAccess/Refreshを発行する。
// 使用済みトークンが再提示されたら盗難とみなし、全トークン失効＋
// token_version+1で全端末ログアウトにする。
type RefreshUsecase struct {
	profileRepo repository.ProfileRepository
	rtRepo      repository.RefreshTokenRepository
	issuer      AccessTokenIssuer
	idGen       IDGenerator
	clock       Clock
	refreshTTL  time.Duration
}

func NewRefreshUsecase(
	profileRepo repository.ProfileRepository,
	rtRepo repository.RefreshTokenRepository,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	clock Clock,
	refreshTTL time.Duration,
) *RefreshUsecase {
	return &RefreshUsecase{
		profileRepo: profileRepo,
		rtRepo:      rtRepo,
		issuer:      issuer,
		idGen:       idGen,
		clock:       clock,
		refreshTTL:  refreshTTL,
	}
}

type RefreshOutput struct {
	Token JwtAccessToken `json:"token"`
}

func (u *RefreshUsecase) Execute(ctx context.Context, plainRefresh string, userAgent string) (RefreshOutput, LoginSideEffect, error) {
	var out RefreshOutput
	var side LoginSideEffect

	if plainRefresh == "" {
		return out, side, ErrInvalidCredentials
	}

	stored, err := u.rtRepo.FindByTokenHash(ctx, hashRefreshToken(plainRefresh))
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return out, side, ErrInvalidCredentials
		}
		return out, side, err
	}

	now := u.clock.Now()

	if stored.RevokedAt != nil || now.After(stored.ExpiresAt) {
		return out, side, ErrInvalidCredentials
	}

	//リプレイ検知：使用済みの再提示は全端末ログアウト
	if stored.UsedAt != nil {
		_ = u.rtRepo.RevokeAllByProfileID(ctx, stored.ProfileID, now)
		_ = u.profileRepo.IncrementTokenVersion(ctx, stored.ProfileID)
		return out, side, ErrSecurityIncident
	}

	profile, err := u.profileRepo.FindByID(ctx, stored.ProfileID)
	if err != nil || profile == nil {
		return out, side, ErrInvalidCredentials
	}
	if !profile.IsActive {
		return out, side, ErrProfileInactive
	}

	//旧トークンを使用済みへ
	if err := u.rtRepo.MarkUsed(ctx, stored.ID, now); err != nil {
		return out, side, err
	}

	token, plainNext, err := issueTokens(ctx, u.rtRepo, u.issuer, u.idGen, profile, userAgent, now, u.refreshTTL)
	if err != nil {
		return out, side, err
	}

	out.Token = token
	side.PlainRefreshToken = plainNext
	return out, side, nil
}
