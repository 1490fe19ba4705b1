package main

import (
	"strconv"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/usecase"
	auth "app/internal/usecase/auth_usecase"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
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

func (i *jwtIssuer) Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
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
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load("../.env")

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.Category{},
		&model.Supplier{},
		&model.Item{},
		&model.Transaction{},
		&model.User{},
		&model.RefreshToken{},
		&model.AuditLog{},
	); err != nil {
		logger.Fatal("migrate failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	itemRepo := infraRepo.NewItemGormRepository(gormDB)
	txRepo := infraRepo.NewTransactionGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	supplierRepo := infraRepo.NewSupplierGormRepository(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenGormRepository(gormDB)
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

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, clock)
	loginUC := auth.NewLoginUsecase(userRepo, rtRepo, verifier, issuer, idGen, clock, refreshTTL)
	refreshUC := auth.NewRefreshUsecase(userRepo, rtRepo, issuer, idGen, clock, refreshTTL)
	logoutUC := auth.NewLogoutUsecase(rtRepo, clock)

	ledgerUC := usecase.NewLedgerUsecase(txManager)
	itemUC := usecase.NewItemUsecase(txManager, itemRepo, auditRepo)
	transactionUC := usecase.NewTransactionUsecase(txRepo)
	reorderUC := usecase.NewReorderUsecase(itemRepo)
	reportUC := usecase.NewReportUsecase(itemRepo, txRepo)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo, itemRepo)
	supplierUC := usecase.NewSupplierUsecase(supplierRepo, itemRepo, txRepo)
	userUC := usecase.NewUserUsecase(userRepo, rtRepo, auditRepo)

	//Handler生成
	handlers := server.Handlers{
		Auth:        handler.NewAuthHandler(registerUC, loginUC, refreshUC, logoutUC, refreshTTL),
		Item:        handler.NewItemHandler(itemUC, reorderUC),
		Transaction: handler.NewTransactionHandler(ledgerUC, transactionUC),
		Report:      handler.NewReportHandler(reportUC),
		Category:    handler.NewCategoryHandler(categoryUC),
		Supplier:    handler.NewSupplierHandler(supplierUC),
		AdminUser:   handler.NewAdminUserHandler(userUC),
	}

	//Server起動
	e := server.New(cfg, logger, handlers, userRepo)

	logger.Info("starting server", zap.String("port", cfg.Port))
	if err := server.Start(e, cfg); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
