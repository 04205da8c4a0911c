package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/leemaz/marketplace-api/internal/config"
	"github.com/leemaz/marketplace-api/internal/database"
	"github.com/leemaz/marketplace-api/internal/handler"
	"github.com/leemaz/marketplace-api/internal/middleware"
	"github.com/leemaz/marketplace-api/internal/queue"
	"github.com/leemaz/marketplace-api/internal/repository"
	"github.com/leemaz/marketplace-api/internal/router"
)

func main() {
	// .env is a development convenience; in production the variables come
	// from the environment and the file is simply absent.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	// Redis is optional: with no client the rate limiter degrades to a
	// pass-through and the login lockout remains the security boundary.
	rdb := config.NewRedisClient()
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	codes := repository.NewVerificationRepo(db)
	shops := repository.NewShopRepo(db)
	products := repository.NewProductRepo(db)
	reviews := repository.NewReviewRepo(db)
	credits := repository.NewCreditRepo(db)
	favorites := repository.NewFavoriteRepo(db)
	chats := repository.NewChatRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens, codes, credits)
	shopH := handler.NewShopHandler(shops, products)
	productH := handler.NewProductHandler(cfg, users, shops, products, credits)
	reviewH := handler.NewReviewHandler(users, products, reviews)
	creditH := handler.NewCreditHandler(users, credits)
	favoriteH := handler.NewFavoriteHandler(products, favorites)
	chatH := handler.NewChatHandler(users, chats)
	adminH := handler.NewAdminHandler(users, shops, credits)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret, users, limiter)
	router.RegisterPublic(e, shopH, productH, reviewH)
	router.RegisterSeller(e, shopH, productH, cfg.JWTSecret, users)
	router.RegisterBuyer(e, reviewH, favoriteH, cfg.JWTSecret, users)
	router.RegisterShared(e, creditH, chatH, cfg.JWTSecret, users)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret, users)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
