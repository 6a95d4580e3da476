package main

import (
	"time"

	"scatch/internal/config"
	"scatch/internal/domain/model"
	"scatch/internal/handler"
	"scatch/internal/infra/db"
	infraRepo "scatch/internal/infra/repository"
	"scatch/internal/server"
	"scatch/internal/service"
	"scatch/internal/usecase"
	auth "scatch/internal/usecase/auth"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func newJWTIssuer(secret string) *jwtIssuer {
	//アクセストークン
	return &jwtIssuer{
		secret:    []byte(secret),
		accessTTL: 15 * time.Minute,
	}
}

func (i *jwtIssuer) Issue(profileID string, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  profileID,
		"role": string(role),
		"tv":   tokenVersion,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	//.envはローカル用。無ければ環境変数だけで動く。
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.Profile{},
		&model.RefreshToken{},
		&model.Product{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.AuditLog{},
	); err != nil {
		panic(err)
	}

	//Repository（GORM実装）生成
	profileRepo := infraRepo.NewProfileGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()

	//JWT issuer
	issuer := newJWTIssuer(cfg.JWTSecret)

	//refresh TTL
	refreshTTL := 14 * 24 * time.Hour

	//商品画像アップロード（CLOUDINARY_URL未設定なら無効）
	cld, err := service.NewCloudinaryUploader(cfg.CloudinaryURL, "products")
	if err != nil {
		panic(err)
	}
	var uploader service.ImageUploader
	if cld != nil {
		uploader = cld
	}

	//Usecase生成
	registerUC := auth.NewRegisterUsecase(profileRepo, rtRepo, hasher, issuer, idGen, clock, refreshTTL)
	loginUC := auth.NewLoginUsecase(profileRepo, rtRepo, verifier, issuer, idGen, clock, refreshTTL)
	refreshUC := auth.NewRefreshUsecase(profileRepo, rtRepo, issuer, idGen, clock, refreshTTL)
	logoutUC := auth.NewLogoutUsecase(profileRepo, rtRepo, clock)
	sessionUC := auth.NewSessionUsecase(profileRepo)

	productUC := usecase.NewProductUsecase(productRepo, auditRepo)
	cartUC := usecase.NewCartUsecase(cartItemRepo, productRepo)
	orderUC := usecase.NewOrderUsecase(txManager)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, auditRepo)

	//Handler生成
	handlers := server.Handlers{
		Auth:         handler.NewAuthHandler(registerUC, loginUC, refreshUC, logoutUC, sessionUC, cfg, refreshTTL),
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC, uploader),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(orderUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		AdminProfile: handler.NewAdminProfileHandler(logoutUC),
	}

	//Server起動
	e := server.New(cfg)
	server.RegisterRoutes(e, cfg, profileRepo, handlers)

	if err := e.Start(":" + cfg.Port); err != nil {
		e.Logger.Fatal(err)
	}
}
