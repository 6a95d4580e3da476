package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"scatch/internal/domain/model"
	"scatch/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// =====================
// Mock: ProfileRepository
// =====================

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, p *model.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProfileRepository) FindByID(ctx context.Context, profileID string) (*model.Profile, error) {
	args := m.Called(ctx, profileID)
	p, _ := args.Get(0).(*model.Profile)
	return p, args.Error(1)
}

func (m *MockProfileRepository) FindByEmail(ctx context.Context, email string) (*model.Profile, error) {
	args := m.Called(ctx, email)
	p, _ := args.Get(0).(*model.Profile)
	return p, args.Error(1)
}

func (m *MockProfileRepository) Update(ctx context.Context, p *model.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProfileRepository) IncrementTokenVersion(ctx context.Context, profileID string) error {
	args := m.Called(ctx, profileID)
	return args.Error(0)
}

// =====================
// Mock: RefreshTokenRepository
// =====================

type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	rt, _ := args.Get(0).(*model.RefreshToken)
	return rt, args.Error(1)
}

func (m *MockRefreshTokenRepository) MarkUsed(ctx context.Context, tokenID string, usedAt time.Time) error {
	args := m.Called(ctx, tokenID, usedAt)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) RevokeAllByProfileID(ctx context.Context, profileID string, revokedAt time.Time) error {
	args := m.Called(ctx, profileID, revokedAt)
	return args.Error(0)
}

// =====================
// テスト用の固定部品
// =====================

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

type seqIDGen struct {
	n int
}

func (g *seqIDGen) NewID() string {
	g.n++
	return "id-" + string(rune('0'+g.n))
}

type stubIssuer struct{}

func (s *stubIssuer) Issue(profileID string, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	return "signed-" + profileID, now.Add(15 * time.Minute), nil
}

func testNow() time.Time {
	return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
}

func sha256hex(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

func bcryptHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(h)
}

// =====================
// Register
// =====================

func newRegisterUC(profileRepo *MockProfileRepository, rtRepo *MockRefreshTokenRepository) *RegisterUsecase {
	return NewRegisterUsecase(
		profileRepo, rtRepo,
		NewBcryptPasswordHasher(bcrypt.MinCost),
		&stubIssuer{}, &seqIDGen{}, &fixedClock{now: testNow()},
		14*24*time.Hour,
	)
}

func TestRegister_InvalidEmail(t *testing.T) {
	uc := newRegisterUC(new(MockProfileRepository), new(MockRefreshTokenRepository))

	_, _, err := uc.Execute(context.Background(), RegisterInput{
		Email:    "not-an-email",
		Password: "plant-powered-9",
	})

	assert.ErrorIs(t, err, ErrInvalidEmailFormat)
}

func TestRegister_PasswordTooShort(t *testing.T) {
	uc := newRegisterUC(new(MockProfileRepository), new(MockRefreshTokenRepository))

	_, _, err := uc.Execute(context.Background(), RegisterInput{
		Email:    "vera@example.com",
		Password: "short7!",
	})

	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegister_WeakPassword(t *testing.T) {
	uc := newRegisterUC(new(MockProfileRepository), new(MockRefreshTokenRepository))

	_, _, err := uc.Execute(context.Background(), RegisterInput{
		Email:    "vera@example.com",
		Password: "password1",
	})

	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	rtRepo := new(MockRefreshTokenRepository)
	uc := newRegisterUC(profileRepo, rtRepo)

	profileRepo.On("FindByEmail", mock.Anything, "vera@example.com").
		Return(&model.Profile{ID: "existing"}, nil)

	_, _, err := uc.Execute(context.Background(), RegisterInput{
		Email:    "vera@example.com",
		Password: "plant-powered-9",
	})

	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	profileRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 登録成功でcustomerとして保存され、そのままログイン状態になる
func TestRegister_Success(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	rtRepo := new(MockRefreshTokenRepository)
	uc := newRegisterUC(profileRepo, rtRepo)

	profileRepo.On("FindByEmail", mock.Anything, "vera@example.com").
		Return(nil, repository.ErrProfileNotFound)
	profileRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Profile) bool {
		return p.Role == model.RoleCustomer &&
			p.IsActive &&
			p.TokenVersion == 0 &&
			p.PasswordHash != "" &&
			p.PasswordHash != "plant-powered-9"
	})).Return(nil)
	rtRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, side, err := uc.Execute(context.Background(), RegisterInput{
		Email:       "vera@example.com",
		Password:    "plant-powered-9",
		DisplayName: "Vera",
	})

	assert.NoError(t, err)
	assert.Equal(t, "vera@example.com", out.Profile.Email)
	assert.Empty(t, out.Profile.PasswordHash)
	assert.NotEmpty(t, out.Token.AccessToken)
	assert.NotEmpty(t, side.PlainRefreshToken)
	profileRepo.AssertExpectations(t)
	rtRepo.AssertExpectations(t)
}

// =====================
// Login
// =====================

func newLoginUC(profileRepo *MockProfileRepository, rtRepo *MockRefreshTokenRepository) *LoginUsecase {
	return NewLoginUsecase(
		profileRepo, rtRepo,
		NewBcryptPasswordVerifier(),
		&stubIssuer{}, &seqIDGen{}, &fixedClock{now: testNow()},
		14*24*time.Hour,
	)
}

func TestLogin_UnknownEmail(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	uc := newLoginUC(profileRepo, new(MockRefreshTokenRepository))

	profileRepo.On("FindByEmail", mock.Anything, "ghost@example.com").
		Return(nil, repository.ErrProfileNotFound)

	_, _, err := uc.Execute(context.Background(), LoginInput{
		Email:    "ghost@example.com",
		Password: "whatever123",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_WrongPassword(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	rtRepo := new(MockRefreshTokenRepository)
	uc := newLoginUC(profileRepo, rtRepo)

	profileRepo.On("FindByEmail", mock.Anything, "vera@example.com").Return(&model.Profile{
		ID:           "u1",
		Email:        "vera@example.com",
		PasswordHash: bcryptHash(t, "plant-powered-9"),
		IsActive:     true,
	}, nil)

	_, _, err := uc.Execute(context.Background(), LoginInput{
		Email:    "vera@example.com",
		Password: "wrong-password",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	rtRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin_InactiveProfile(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	uc := newLoginUC(profileRepo, new(MockRefreshTokenRepository))

	profileRepo.On("FindByEmail", mock.Anything, "vera@example.com").Return(&model.Profile{
		ID:           "u1",
		PasswordHash: bcryptHash(t, "plant-powered-9"),
		IsActive:     false,
	}, nil)

	_, _, err := uc.Execute(context.Background(), LoginInput{
		Email:    "vera@example.com",
		Password: "plant-powered-9",
	})

	assert.ErrorIs(t, err, ErrProfileInactive)
}

func TestLogin_Success(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	rtRepo := new(MockRefreshTokenRepository)
	uc := newLoginUC(profileRepo, rtRepo)

	profileRepo.On("FindByEmail", mock.Anything, "vera@example.com").Return(&model.Profile{
		ID:           "u1",
		Email:        "vera@example.com",
		PasswordHash: bcryptHash(t, "plant-powered-9"),
		TokenVersion: 3,
		IsActive:     true,
	}, nil)
	rtRepo.On("Create", mock.Anything, mock.MatchedBy(func(rt *model.RefreshToken) bool {
		// DBには平文ではなくハッシュが入る
		return rt.ProfileID == "u1" && rt.TokenHash != "" && len(rt.TokenHash) == 64
	})).Return(nil)
	profileRepo.On("Update", mock.Anything, mock.MatchedBy(func(p *model.Profile) bool {
		return p.LastLoginAt != nil && p.LastLoginAt.Equal(testNow())
	})).Return(nil)

	out, side, err := uc.Execute(context.Background(), LoginInput{
		Email:    "vera@example.com",
		Password: "plant-powered-9",
	})

	assert.NoError(t, err)
	assert.Equal(t, "signed-u1", out.Token.AccessToken)
	assert.Equal(t, 3, out.Token.TokenVersion)
	assert.Empty(t, out.Profile.PasswordHash)
	assert.NotEmpty(t, side.PlainRefreshToken)
	// 保存されたハッシュは平文のsha256と一致する
	rtRepo.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(rt *model.RefreshToken) bool {
		return rt.TokenHash == sha256hex(side.PlainRefreshToken)
	}))
}

// =====================
// Logout
// =====================

func TestLogout_RevokesAndBumpsVersion(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	rtRepo := new(MockRefreshTokenRepository)
	uc := NewLogoutUsecase(profileRepo, rtRepo, &fixedClock{now: testNow()})

	rtRepo.On("RevokeAllByProfileID", mock.Anything, "u1", testNow()).Return(nil)
	profileRepo.On("IncrementTokenVersion", mock.Anything, "u1").Return(nil)

	err := uc.Execute(context.Background(), "u1")

	assert.NoError(t, err)
	rtRepo.AssertExpectations(t)
	profileRepo.AssertExpectations(t)
}

// オーナーは任意のアカウントを全端末からログアウトさせられる
func TestForceLogout_OwnerRevokesTarget(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	rtRepo := new(MockRefreshTokenRepository)
	uc := NewLogoutUsecase(profileRepo, rtRepo, &fixedClock{now: testNow()})

	profileRepo.On("FindByID", mock.Anything, "u1").
		Return(&model.Profile{ID: "u1", IsActive: true}, nil)
	rtRepo.On("RevokeAllByProfileID", mock.Anything, "u1", testNow()).Return(nil)
	profileRepo.On("IncrementTokenVersion", mock.Anything, "u1").Return(nil)

	err := uc.ForceLogout(context.Background(), model.RoleOwner, "u1")

	assert.NoError(t, err)
	rtRepo.AssertExpectations(t)
	profileRepo.AssertExpectations(t)
}

func TestForceLogout_CustomerRejected(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	rtRepo := new(MockRefreshTokenRepository)
	uc := NewLogoutUsecase(profileRepo, rtRepo, &fixedClock{now: testNow()})

	err := uc.ForceLogout(context.Background(), model.RoleCustomer, "u1")

	assert.ErrorIs(t, err, ErrOwnerOnly)
	rtRepo.AssertNotCalled(t, "RevokeAllByProfileID", mock.Anything, mock.Anything, mock.Anything)
	profileRepo.AssertNotCalled(t, "IncrementTokenVersion", mock.Anything, mock.Anything)
}

func TestForceLogout_UnknownTarget(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	rtRepo := new(MockRefreshTokenRepository)
	uc := NewLogoutUsecase(profileRepo, rtRepo, &fixedClock{now: testNow()})

	profileRepo.On("FindByID", mock.Anything, "missing").
		Return(nil, repository.ErrProfileNotFound)

	err := uc.ForceLogout(context.Background(), model.RoleOwner, "missing")

	assert.ErrorIs(t, err, repository.ErrProfileNotFound)
	rtRepo.AssertNotCalled(t, "RevokeAllByProfileID", mock.Anything, mock.Anything, mock.Anything)
}

// =====================
// Session
// =====================

func TestSessionCheck_ReturnsNilOnFailure(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	uc := NewSessionUsecase(profileRepo)

	//見つからない
	profileRepo.On("FindByID", mock.Anything, "missing").Return(nil, repository.ErrProfileNotFound).Once()
	assert.Nil(t, uc.Check(context.Background(), "missing", 0))

	//停止済み
	profileRepo.On("FindByID", mock.Anything, "inactive").Return(&model.Profile{ID: "inactive", IsActive: false}, nil).Once()
	assert.Nil(t, uc.Check(context.Background(), "inactive", 0))

	//token_versionがズレている（強制ログアウト後の古いtoken）
	profileRepo.On("FindByID", mock.Anything, "u1").Return(&model.Profile{ID: "u1", IsActive: true, TokenVersion: 5}, nil).Once()
	assert.Nil(t, uc.Check(context.Background(), "u1", 4))
}

func TestSessionCheck_ReturnsProfile(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	uc := NewSessionUsecase(profileRepo)

	profileRepo.On("FindByID", mock.Anything, "u1").
		Return(&model.Profile{ID: "u1", IsActive: true, TokenVersion: 5}, nil)

	got := uc.Check(context.Background(), "u1", 5)

	if assert.NotNil(t, got) {
		assert.Equal(t, "u1", got.ID)
	}
}

// =====================
// Refresh
// =====================

func newRefreshUC(profileRepo *MockProfileRepository, rtRepo *MockRefreshTokenRepository) *RefreshUsecase {
	return NewRefreshUsecase(
		profileRepo, rtRepo,
		&stubIssuer{}, &seqIDGen{}, &fixedClock{now: testNow()},
		14*24*time.Hour,
	)
}

func TestRefresh_RotatesToken(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	rtRepo := new(MockRefreshTokenRepository)
	uc := newRefreshUC(profileRepo, rtRepo)

	plain := "old-refresh-token"
	stored := &model.RefreshToken{
		ID:        "rt1",
		ProfileID: "u1",
		TokenHash: sha256hex(plain),
		ExpiresAt: testNow().Add(time.Hour),
	}

	rtRepo.On("FindByTokenHash", mock.Anything, sha256hex(plain)).Return(stored, nil)
	profileRepo.On("FindByID", mock.Anything, "u1").
		Return(&model.Profile{ID: "u1", IsActive: true, TokenVersion: 2}, nil)
	rtRepo.On("MarkUsed", mock.Anything, "rt1", testNow()).Return(nil)
	rtRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, side, err := uc.Execute(context.Background(), plain, "ua")

	assert.NoError(t, err)
	assert.Equal(t, "signed-u1", out.Token.AccessToken)
	assert.NotEmpty(t, side.PlainRefreshToken)
	assert.NotEqual(t, plain, side.PlainRefreshToken)
	rtRepo.AssertExpectations(t)
}

func TestRefresh_ExpiredToken(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	rtRepo := new(MockRefreshTokenRepository)
	uc := newRefreshUC(profileRepo, rtRepo)

	plain := "expired-token"
	rtRepo.On("FindByTokenHash", mock.Anything, sha256hex(plain)).Return(&model.RefreshToken{
		ID:        "rt1",
		ProfileID: "u1",
		ExpiresAt: testNow().Add(-time.Minute),
	}, nil)

	_, _, err := uc.Execute(context.Background(), plain, "ua")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	rtRepo.AssertNotCalled(t, "MarkUsed", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefresh_UnknownToken(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	rtRepo := new(MockRefreshTokenRepository)
	uc := newRefreshUC(profileRepo, rtRepo)

	rtRepo.On("FindByTokenHash", mock.Anything, mock.Anything).
		Return(nil, repository.ErrRefreshTokenNotFound)

	_, _, err := uc.Execute(context.Background(), "never-issued", "ua")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// 使用済みトークンの再提示は盗難扱い。全トークン失効＋token_version+1。
func TestRefresh_ReplayTriggersGlobalLogout(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	rtRepo := new(MockRefreshTokenRepository)
	uc := newRefreshUC(profileRepo, rtRepo)

	plain := "already-used-token"
	usedAt := testNow().Add(-time.Minute)
	rtRepo.On("FindByTokenHash", mock.Anything, sha256hex(plain)).Return(&model.RefreshToken{
		ID:        "rt1",
		ProfileID: "u1",
		ExpiresAt: testNow().Add(time.Hour),
		UsedAt:    &usedAt,
	}, nil)
	rtRepo.On("RevokeAllByProfileID", mock.Anything, "u1", testNow()).Return(nil)
	profileRepo.On("IncrementTokenVersion", mock.Anything, "u1").Return(nil)

	_, _, err := uc.Execute(context.Background(), plain, "ua")

	assert.ErrorIs(t, err, ErrSecurityIncident)
	rtRepo.AssertExpectations(t)
	profileRepo.AssertExpectations(t)
	rtRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
