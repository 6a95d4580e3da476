package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"scatch/internal/domain/model"
	"scatch/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// 会員登録の入力
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	UserAgent   string
}

// 会員登録の出力。登録と同時にログイン状態にする。
type RegisterOutput struct {
	Profile model.Profile  `json:"account"`
	Token   JwtAccessToken `json:"token"`
}

var (
	// 入力が不正
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrWeakPassword       = errors.New("weak password")

	// 競合
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// RegisterUsecaseは会員登録の処理。
type RegisterUsecase struct {
	profileRepo repository.ProfileRepository
	rtRepo      repository.RefreshTokenRepository
	hasher      PasswordHasher
	issuer      AccessTokenIssuer
	idGen       IDGenerator
	clock       Clock
	refreshTTL  time.Duration
}

// DI
func NewRegisterUsecase(
	profileRepo repository.ProfileRepository,
	rtRepo repository.RefreshTokenRepository,
	hasher PasswordHasher,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	clock Clock,
	refreshTTL time.Duration,
) *RegisterUsecase {
	return &RegisterUsecase{
		profileRepo: profileRepo,
		rtRepo:      rtRepo,
		hasher:      hasher,
		issuer:      issuer,
		idGen:       idGen,
		clock:       clock,
		refreshTTL:  refreshTTL,
	}
}

// 会員登録実行
func (u *RegisterUsecase) Execute(ctx context.Context, in RegisterInput) (RegisterOutput, LoginSideEffect, error) {
	var out RegisterOutput
	var side LoginSideEffect

	// emailの形式チェック
	if !isValidEmailFormat(in.Email) {
		return out, side, ErrInvalidEmailFormat
	}

	// passwordの長さチェック（最小8文字）
	if len(in.Password) < 8 {
		return out, side, ErrPasswordTooShort
	}

	// よくある弱いパスワードの拒否
	if isWeakPassword(in.Password) {
		return out, side, ErrWeakPassword
	}

	// email重複チェック
	existing, err := u.profileRepo.FindByEmail(ctx, in.Email)
	if err == nil && existing != nil {
		return out, side, ErrEmailAlreadyExists
	}
	if err != nil && !errors.Is(err, repository.ErrProfileNotFound) {
		return out, side, err
	}

	// パスワードをハッシュ化
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return out, side, err
	}

	now := u.clock.Now()

	var displayName *string
	if name := strings.TrimSpace(in.DisplayName); name != "" {
		displayName = &name
	}

	profile := &model.Profile{
		ID:           u.idGen.NewID(),
		Email:        strings.TrimSpace(in.Email),
		DisplayName:  displayName,
		Role:         model.RoleCustomer, // 初期はcustomer
		PasswordHash: hashed,
		TokenVersion: 0,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// DBへ保存
	if err := u.profileRepo.Create(ctx, profile); err != nil {
		return out, side, err
	}

	//登録と同時にトークン発行（そのままログイン状態へ）
	token, plainRefresh, err := issueTokens(ctx, u.rtRepo, u.issuer, u.idGen, profile, in.UserAgent, now, u.refreshTTL)
	if err != nil {
		return out, side, err
	}

	out.Profile = safeProfile(profile)
	out.Token = token
	side.PlainRefreshToken = plainRefresh
	return out, side, nil
}

// メールチェック
func isValidEmailFormat(email string) bool {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return false
	}
	_, err := mail.ParseAddress(trimmed)
	return err == nil
}

// よくある弱いパスワード
func isWeakPassword(password string) bool {
	normalized := strings.ToLower(strings.TrimSpace(password))

	weak := map[string]struct{}{
		"password":   {},
		"password1":  {},
		"12345678":   {},
		"123456789":  {},
		"1234567890": {},
		"qwertyuiop": {},
		"letmein1":   {},
		"admin123":   {},
	}

	_, ok := weak[normalized]
	return ok
}

// 返すときはハッシュを空にして漏洩防止
func safeProfile(p *model.Profile) model.Profile {
	safe := *p
	safe.PasswordHash = ""
	return safe
}

// bcryptハッシュ化
type BcryptPasswordHasher struct {
	cost int
}

// DI
func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost}
}

func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}

	return string(hashedBytes), nil
}

// bcryptハッシュと平文を比較
type BcryptPasswordVerifier struct{}

// DI
func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}
