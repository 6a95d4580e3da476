package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"scatch/internal/domain/model"
	"scatch/internal/repository"
)

// handlerからusecaseに渡す入力
type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
}

// token 形
type JwtAccessToken struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

// handlerがJSONにして返す
type LoginOutput struct {
	Profile model.Profile  `json:"account"`
	Token   JwtAccessToken `json:"token"`
}

// handlerがCookieに詰めるために必要な値
type LoginSideEffect struct {
	PlainRefreshToken string
}

// メールまたはパスワードが違う
var ErrInvalidCredentials = errors.New("invalid credentials")

// 停止済みアカウント
var ErrProfileInactive = errors.New("profile is inactive")

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(profileID string, role model.Role, tokenVersion int, now time.Time) (token string, expiresAt time.Time, err error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

type LoginUsecase struct {
	profileRepo repository.ProfileRepository
	rtRepo      repository.RefreshTokenRepository
	verifier    PasswordVerifier
	issuer      AccessTokenIssuer
	idGen       IDGenerator
	clock       Clock
	refreshTTL  time.Duration
}

func NewLoginUsecase(
	profileRepo repository.ProfileRepository,
	rtRepo repository.RefreshTokenRepository,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	clock Clock,
	refreshTTL time.Duration,
) *LoginUsecase {
	return &LoginUsecase{
		profileRepo: profileRepo,
		rtRepo:      rtRepo,
		verifier:    verifier,
		issuer:      issuer,
		idGen:       idGen,
		clock:       clock,
		refreshTTL:  refreshTTL,
	}
}

// ログイン処理を実行する
func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, LoginSideEffect, error) {
	var out LoginOutput
	var side LoginSideEffect

	//emailでプロフィール取得
	profile, err := u.profileRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return out, side, ErrInvalidCredentials
		}
		return out, side, err
	}

	//停止アカウントはログイン不可
	if !profile.IsActive {
		return out, side, ErrProfileInactive
	}

	//パスワード照合
	if ok := u.verifier.Verify(in.Password, profile.PasswordHash); !ok {
		return out, side, ErrInvalidCredentials
	}

	now := u.clock.Now()

	token, plainRefresh, err := issueTokens(ctx, u.rtRepo, u.issuer, u.idGen, profile, in.UserAgent, now, u.refreshTTL)
	if err != nil {
		return out, side, err
	}

	//最終ログイン時刻更新
	profile.LastLoginAt = &now
	if err := u.profileRepo.Update(ctx, profile); err != nil {
		return out, side, err
	}

	out.Profile = safeProfile(profile)
	out.Token = token
	side.PlainRefreshToken = plainRefresh
	return out, side, nil
}

// AccessToken＋RefreshTokenを発行する共通処理。
// RefreshTokenはDBにsha256ハッシュで保存し、平文はCookie用に返す。
func issueTokens(
	ctx context.Context,
	rtRepo repository.RefreshTokenRepository,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	profile *model.Profile,
	userAgent string,
	now time.Time,
	refreshTTL time.Duration,
) (JwtAccessToken, string, error) {

	accessToken, accessExp, err := issuer.Issue(profile.ID, profile.Role, profile.TokenVersion, now)
	if err != nil {
		return JwtAccessToken{}, "", err
	}

	plainRefresh, err := generateSecureToken(32)
	if err != nil {
		return JwtAccessToken{}, "", err
	}

	refresh := &model.RefreshToken{
		ID:        idGen.NewID(),
		ProfileID: profile.ID,
		TokenHash: hashRefreshToken(plainRefresh),
		UserAgent: userAgent,
		ExpiresAt: now.Add(refreshTTL),
		UsedAt:    nil,
		RevokedAt: nil,
		CreatedAt: now,
	}

	if err := rtRepo.Create(ctx, refresh); err != nil {
		return JwtAccessToken{}, "", err
	}

	token := JwtAccessToken{
		AccessToken:  accessToken,
		ExpiresIn:    int(accessExp.Sub(now).Seconds()),
		TokenVersion: profile.TokenVersion,
	}
	return token, plainRefresh, nil
}

func hashRefreshToken(plain string) string {
	hash := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(hash[:])
}

func generateSecureToken(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		return "", fmt.Errorf("bytesLen must be positive")
	}

	// ランダムなバイト列を作る（OSが持つ安全な乱数）
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
